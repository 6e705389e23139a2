package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

// RemoveWidgetInput identifies the widget to take off the dashboard.
type RemoveWidgetInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	WidgetID string                  `json:"widget_id"`
}

type removeService interface {
	RemoveWidget(ctx context.Context, viewer dashboard.ViewerContext, widgetID string) error
}

// RemoveWidgetCommand wraps Service.RemoveWidget.
type RemoveWidgetCommand struct {
	service   removeService
	telemetry Telemetry
}

// NewRemoveWidgetCommand creates the command.
func NewRemoveWidgetCommand(service removeService, telemetry Telemetry) *RemoveWidgetCommand {
	return &RemoveWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveWidgetInput] = (*RemoveWidgetCommand)(nil)

// Execute removes the widget.
func (c *RemoveWidgetCommand) Execute(ctx context.Context, msg RemoveWidgetInput) error {
	if c.service == nil {
		return errors.New("remove command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("remove command requires widget id")
	}
	if err := c.service.RemoveWidget(ctx, msg.Viewer, msg.WidgetID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.remove", map[string]any{"widget_id": msg.WidgetID})
	return nil
}
