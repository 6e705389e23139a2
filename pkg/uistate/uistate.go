// Package uistate re-exports the engines and wires them from configuration.
package uistate

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/language"

	"github.com/goliatone/go-uistate/components/dashboard"
	"github.com/goliatone/go-uistate/components/interaction"
	"github.com/goliatone/go-uistate/components/table"
	"github.com/goliatone/go-uistate/components/toast"
	"github.com/goliatone/go-uistate/pkg/config"
)

type (
	// Service exposes the underlying components/dashboard.Service type.
	Service = dashboard.Service
	// Options re-export for convenience.
	Options           = dashboard.Options
	ViewerContext     = dashboard.ViewerContext
	Customizer        = dashboard.Customizer
	InteractionConfig = interaction.Config
	InteractionStore  = interaction.Store
	ToastOptions      = toast.Options
	ToastQueue        = toast.Queue
	TableOptions      = table.Options
	TableEngine       = table.Engine
)

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return dashboard.NewService(opts)
}

// NewInteraction proxies to interaction.New.
func NewInteraction(cfg InteractionConfig) (*InteractionStore, error) {
	return interaction.New(cfg)
}

// NewToastQueue proxies to toast.NewQueue.
func NewToastQueue(opts ToastOptions) *ToastQueue {
	return toast.NewQueue(opts)
}

// NewTable proxies to table.NewEngine.
func NewTable(opts TableOptions) (*TableEngine, error) {
	return table.NewEngine(opts)
}

// Runtime bundles the shared collaborators built from a Config.
type Runtime struct {
	Config    config.Config
	Logger    *slog.Logger
	Registry  *dashboard.Registry
	Toasts    *toast.Queue
	Broadcast *dashboard.BroadcastHook
	Service   *dashboard.Service

	tableDefaults TableOptions
	closeStore    func() error
}

// Open builds the registry, storage backend, remote mirror, toast queue and
// customizer service described by cfg. Callers must Close the runtime.
func Open(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := dashboard.NewRegistry()
	if cfg.Catalog.Manifest != "" {
		if _, err := registry.LoadManifestFile(cfg.Catalog.Manifest); err != nil {
			return nil, fmt.Errorf("uistate: load manifest: %w", err)
		}
	}
	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("uistate: open store: %w", err)
	}
	client, err := cfg.RemoteClient()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("uistate: remote client: %w", err), closeStore())
	}

	telemetry := dashboard.SlogTelemetry{Logger: logger, Level: slog.LevelInfo}
	toasts := toast.NewQueue(cfg.ToastOptions())
	hook := dashboard.NewBroadcastHook()
	opts := dashboard.Options{
		Registry:      registry,
		Storage:       store,
		Codec:         cfg.Codec(),
		Notifier:      dashboard.ToastNotifier{Queue: toasts},
		Broadcast:     hook,
		Telemetry:     telemetry,
		DefaultLayout: cfg.Catalog.DefaultLayout,
		DefaultTheme:  cfg.Catalog.DefaultTheme,
	}
	if client != nil {
		opts.RemoteFactory = func(dashboard.ViewerContext) dashboard.SnapshotStore {
			return dashboard.RemoteSnapshotStore{Client: client}
		}
	}
	toasts.Subscribe(hook.Publish)

	return &Runtime{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Toasts:    toasts,
		Broadcast: hook,
		Service:   dashboard.NewService(opts),
		tableDefaults: TableOptions{
			PageSize:  cfg.Table.PageSize,
			Formatter: table.NewFormatter(parseLocale(cfg.Table.Locale)),
			Store:     store,
			Codec:     cfg.Codec(),
		},
		closeStore: closeStore,
	}, nil
}

// NewTable builds a table engine sharing the runtime's storage, page size
// and locale. Fields set in opts win.
func (r *Runtime) NewTable(opts TableOptions) (*TableEngine, error) {
	defaults := r.tableDefaults
	if opts.PageSize == 0 {
		opts.PageSize = defaults.PageSize
	}
	if opts.Formatter == nil {
		opts.Formatter = defaults.Formatter
	}
	if opts.Store == nil {
		opts.Store = defaults.Store
	}
	if opts.Codec == nil {
		opts.Codec = defaults.Codec
	}
	if opts.Notifier == nil {
		opts.Notifier = dashboard.ToastNotifier{Queue: r.Toasts}
	}
	return table.NewEngine(opts)
}

// Close stops pending toast timers and releases the storage backend.
func (r *Runtime) Close() error {
	r.Toasts.Close()
	if r.closeStore == nil {
		return nil
	}
	return r.closeStore()
}

func parseLocale(raw string) language.Tag {
	tag, err := language.Parse(raw)
	if err != nil {
		return table.DefaultLocale
	}
	return tag
}
