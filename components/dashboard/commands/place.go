package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

// PlaceWidgetInput places a catalog widget on the viewer's dashboard. An
// empty ColumnID uses the fewest-children column.
type PlaceWidgetInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	WidgetID string                  `json:"widget_id"`
	ColumnID string                  `json:"column_id,omitempty"`
}

type placeService interface {
	AddWidget(ctx context.Context, viewer dashboard.ViewerContext, widgetID, column string) error
}

// PlaceWidgetCommand wraps Service.AddWidget so transports can place widgets
// without linking directly against the service.
type PlaceWidgetCommand struct {
	service   placeService
	telemetry Telemetry
}

// NewPlaceWidgetCommand creates a command instance.
func NewPlaceWidgetCommand(service placeService, telemetry Telemetry) *PlaceWidgetCommand {
	return &PlaceWidgetCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PlaceWidgetInput] = (*PlaceWidgetCommand)(nil)

// Execute delegates to the dashboard service.
func (c *PlaceWidgetCommand) Execute(ctx context.Context, msg PlaceWidgetInput) error {
	if c.service == nil {
		return errors.New("place command requires service")
	}
	if msg.WidgetID == "" {
		return errors.New("place command requires widget id")
	}
	if err := c.service.AddWidget(ctx, msg.Viewer, msg.WidgetID, msg.ColumnID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.place", map[string]any{
		"widget_id": msg.WidgetID,
		"column_id": msg.ColumnID,
	})
	return nil
}
