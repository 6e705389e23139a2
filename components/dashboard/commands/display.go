package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

// ChangeLayoutInput switches the grid template.
type ChangeLayoutInput struct {
	Viewer   dashboard.ViewerContext `json:"viewer"`
	LayoutID string                  `json:"layout_id"`
}

// UpdateDisplayInput changes the theme and display toggles. Nil toggles are
// left as they are.
type UpdateDisplayInput struct {
	Viewer      dashboard.ViewerContext `json:"viewer"`
	Theme       string                  `json:"theme,omitempty"`
	DarkMode    *bool                   `json:"dark_mode,omitempty"`
	CompactMode *bool                   `json:"compact_mode,omitempty"`
}

type displayService interface {
	ChangeLayout(ctx context.Context, viewer dashboard.ViewerContext, layoutID string) error
	UpdateDisplay(ctx context.Context, viewer dashboard.ViewerContext, update dashboard.DisplayUpdate) error
}

// ChangeLayoutCommand wraps Service.ChangeLayout.
type ChangeLayoutCommand struct {
	service   displayService
	telemetry Telemetry
}

// NewChangeLayoutCommand creates the command.
func NewChangeLayoutCommand(service displayService, telemetry Telemetry) *ChangeLayoutCommand {
	return &ChangeLayoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ChangeLayoutInput] = (*ChangeLayoutCommand)(nil)

// Execute applies the layout.
func (c *ChangeLayoutCommand) Execute(ctx context.Context, msg ChangeLayoutInput) error {
	if c.service == nil {
		return errors.New("layout command requires service")
	}
	if msg.LayoutID == "" {
		return errors.New("layout command requires layout id")
	}
	if err := c.service.ChangeLayout(ctx, msg.Viewer, msg.LayoutID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.layout", map[string]any{"layout_id": msg.LayoutID})
	return nil
}

// UpdateDisplayCommand wraps Service.UpdateDisplay.
type UpdateDisplayCommand struct {
	service   displayService
	telemetry Telemetry
}

// NewUpdateDisplayCommand creates the command.
func NewUpdateDisplayCommand(service displayService, telemetry Telemetry) *UpdateDisplayCommand {
	return &UpdateDisplayCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateDisplayInput] = (*UpdateDisplayCommand)(nil)

// Execute applies theme and display mode changes.
func (c *UpdateDisplayCommand) Execute(ctx context.Context, msg UpdateDisplayInput) error {
	if c.service == nil {
		return errors.New("display command requires service")
	}
	update := dashboard.DisplayUpdate{Theme: msg.Theme, DarkMode: msg.DarkMode, CompactMode: msg.CompactMode}
	if err := c.service.UpdateDisplay(ctx, msg.Viewer, update); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.display", map[string]any{"theme": msg.Theme})
	return nil
}
