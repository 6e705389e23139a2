package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-uistate/pkg/config"
)

type cli struct {
	Config string `type:"path" env:"GO_UISTATE_CONFIG" help:"Path to the TOML configuration file."`

	Scaffold scaffoldCmd `cmd:"" help:"Add or replace a widget entry in a catalog manifest."`
	Validate validateCmd `cmd:"" help:"Validate persisted dashboard snapshots."`
	Defaults defaultsCmd `cmd:"" help:"Print the built-in catalog as a manifest."`
	Show     showCmd     `cmd:"" name:"config" help:"Print the resolved configuration."`
}

// env carries what every subcommand needs.
type env struct {
	out    io.Writer
	cfg    config.Config
	logger *slog.Logger
}

func main() {
	var root cli
	kctx := kong.Parse(&root,
		kong.Description("State tooling for go-uistate catalogs, snapshots and configuration."),
		kong.UsageOnError(),
	)
	cfg, err := config.Load(root.Config)
	kctx.FatalIfErrorf(err)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	err = kctx.Run(&env{out: os.Stdout, cfg: cfg, logger: logger})
	kctx.FatalIfErrorf(err)
}
