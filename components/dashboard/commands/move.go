package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

// MoveWidgetInput reorders a placed widget.
type MoveWidgetInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	WidgetID string                  `json:"widget_id"`
	ColumnID string                  `json:"column_id"`
	Index    int                     `json:"index"`
}

type moveService interface {
	MoveWidget(ctx context.Context, viewer dashboard.ViewerContext, widgetID, column string, index int) error
}

// MoveWidgetCommand wraps Service.MoveWidget.
type MoveWidgetCommand struct {
	service   moveService
	telemetry Telemetry
}

// NewMoveWidgetCommand creates the command.
func NewMoveWidgetCommand(service moveService, telemetry Telemetry) *MoveWidgetCommand {
	return &MoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveWidgetInput] = (*MoveWidgetCommand)(nil)

// Execute persists the new widget order.
func (c *MoveWidgetCommand) Execute(ctx context.Context, msg MoveWidgetInput) error {
	if c.service == nil {
		return errors.New("move command requires service")
	}
	if msg.WidgetID == "" || msg.ColumnID == "" {
		return errors.New("move command requires widget id and column id")
	}
	if err := c.service.MoveWidget(ctx, msg.Viewer, msg.WidgetID, msg.ColumnID, msg.Index); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.move", map[string]any{
		"widget_id": msg.WidgetID,
		"column_id": msg.ColumnID,
		"index":     msg.Index,
	})
	return nil
}
