package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

// SaveCustomizationInput persists the viewer's dashboard.
type SaveCustomizationInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
}

// ResetCustomizationInput restores the viewer's defaults. Save also persists
// the reset state.
type ResetCustomizationInput struct {
	Viewer dashboard.ViewerContext `json:"viewer"`
	Save   bool                    `json:"save"`
}

type persistenceService interface {
	Save(ctx context.Context, viewer dashboard.ViewerContext) error
	Reset(ctx context.Context, viewer dashboard.ViewerContext) error
}

// SaveCustomizationCommand wraps Service.Save.
type SaveCustomizationCommand struct {
	service   persistenceService
	telemetry Telemetry
}

// NewSaveCustomizationCommand creates the command.
func NewSaveCustomizationCommand(service persistenceService, telemetry Telemetry) *SaveCustomizationCommand {
	return &SaveCustomizationCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveCustomizationInput] = (*SaveCustomizationCommand)(nil)

// Execute saves the customization.
func (c *SaveCustomizationCommand) Execute(ctx context.Context, msg SaveCustomizationInput) error {
	if c.service == nil {
		return errors.New("save command requires service")
	}
	if err := c.service.Save(ctx, msg.Viewer); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.save", map[string]any{"user_id": msg.Viewer.UserID})
	return nil
}

// ResetCustomizationCommand wraps Service.Reset.
type ResetCustomizationCommand struct {
	service   persistenceService
	telemetry Telemetry
}

// NewResetCustomizationCommand creates the command.
func NewResetCustomizationCommand(service persistenceService, telemetry Telemetry) *ResetCustomizationCommand {
	return &ResetCustomizationCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ResetCustomizationInput] = (*ResetCustomizationCommand)(nil)

// Execute resets and optionally saves.
func (c *ResetCustomizationCommand) Execute(ctx context.Context, msg ResetCustomizationInput) error {
	if c.service == nil {
		return errors.New("reset command requires service")
	}
	if err := c.service.Reset(ctx, msg.Viewer); err != nil {
		return err
	}
	if msg.Save {
		if err := c.service.Save(ctx, msg.Viewer); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "dashboard.command.reset", map[string]any{"user_id": msg.Viewer.UserID, "saved": msg.Save})
	return nil
}
