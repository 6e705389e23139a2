package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

// SeedDashboardInput controls bootstrap behavior. Without WidgetIDs the
// role's starter widgets are used.
type SeedDashboardInput struct {
	Viewer    dashboard.ViewerContext `json:"viewer"`
	WidgetIDs []string                `json:"widget_ids,omitempty"`
}

// SeedDashboardCommand places starter widgets and saves them.
type SeedDashboardCommand struct {
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedDashboardCommand wires dependencies.
func NewSeedDashboardCommand(service *dashboard.Service, telemetry Telemetry) *SeedDashboardCommand {
	return &SeedDashboardCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedDashboardInput] = (*SeedDashboardCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedDashboardCommand) Execute(ctx context.Context, msg SeedDashboardInput) error {
	if c.service == nil {
		return errors.New("seed command requires service")
	}
	ids := msg.WidgetIDs
	if len(ids) == 0 {
		ids = dashboard.DefaultSeedWidgets(msg.Viewer.PrimaryRole())
	}
	if err := dashboard.SeedLayout(ctx, c.service, msg.Viewer, ids...); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.seed", map[string]any{"widgets": len(ids)})
	return nil
}
