package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ViewResolver produces the customizer view for a viewer. *Service satisfies it.
type ViewResolver interface {
	View(ctx context.Context, viewer ViewerContext) (View, error)
}

// ControllerOptions configures the HTML/JSON controller.
type ControllerOptions struct {
	Service    ViewResolver
	Renderer   Renderer
	Template   string
	Translator TranslationService
}

// Controller renders customizer views for HTTP transports.
type Controller struct {
	opts ControllerOptions
}

// NewController wires the resolver and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = "customizer"
	}
	return &Controller{opts: opts}
}

// LayoutPayload returns the template context for viewer.
func (c *Controller) LayoutPayload(ctx context.Context, viewer ViewerContext) (map[string]any, error) {
	if c.opts.Service == nil {
		return nil, errors.New("dashboard: controller has no view resolver")
	}
	view, err := c.opts.Service.View(ctx, viewer)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"view":   view,
		"viewer": viewer,
		"title":  translateOrFallback(ctx, c.opts.Translator, "customizer.title", viewer.Locale, "Customize Dashboard", nil),
		"labels": map[string]string{
			"save":      translateOrFallback(ctx, c.opts.Translator, "customizer.save", viewer.Locale, "Save", nil),
			"reset":     translateOrFallback(ctx, c.opts.Translator, "customizer.reset", viewer.Locale, "Reset to default", nil),
			"available": translateOrFallback(ctx, c.opts.Translator, "customizer.available", viewer.Locale, "Available widgets", nil),
		},
		"theme_style": view.Theme.CSSVariablesInline(),
		"body_class":  view.Theme.BodyClasses(),
	}, nil
}

// RenderTemplate renders the customizer page into out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Renderer == nil {
		return errors.New("dashboard: controller has no renderer")
	}
	payload, err := c.LayoutPayload(ctx, viewer)
	if err != nil {
		return err
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.opts.Template, err)
	}
	return nil
}
