package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-uistate/components/dashboard"
	"github.com/goliatone/go-uistate/components/dashboard/commands"
	"github.com/goliatone/go-uistate/components/dashboard/httpapi"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the customizer controller, APIs, and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            *httpapi.Handlers
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for customizer endpoints.
type RouteConfig struct {
	HTML      string
	View      string
	Snapshot  string
	Widgets   string
	WidgetID  string
	Move      string
	Layout    string
	Theme     string
	Save      string
	Reset     string
	WebSocket string
}

// Register mounts customizer routes (HTML, JSON, REST, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		body, err := renderPage(ctx.Context(), cfg.Controller, viewerResolver(ctx))
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(body)
	}))

	group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.LayoutPayload(ctx.Context(), viewerResolver(ctx))
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, endpoints{api: cfg.API}, viewerResolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func renderPage(ctx context.Context, controller *dashboard.Controller, viewer dashboard.ViewerContext) ([]byte, error) {
	var buf bytes.Buffer
	if err := controller.RenderTemplate(ctx, viewer, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func registerAPI[T any](r router.Router[T], api endpoints, resolver ViewerResolver, routes RouteConfig) {
	reply := func(handle func(context.Context, dashboard.ViewerContext, router.Context) (int, any)) router.HandlerFunc {
		return router.WrapHandler(func(ctx router.Context) error {
			status, payload := handle(ctx.Context(), resolver(ctx), ctx)
			return ctx.JSON(status, payload)
		})
	}

	r.Get(routes.Snapshot, reply(func(c context.Context, v dashboard.ViewerContext, _ router.Context) (int, any) {
		return api.snapshot(c, v)
	}))
	r.Post(routes.Widgets, reply(func(c context.Context, v dashboard.ViewerContext, ctx router.Context) (int, any) {
		return api.place(c, v, ctx.Body())
	}))
	r.Post(routes.Move, reply(func(c context.Context, v dashboard.ViewerContext, ctx router.Context) (int, any) {
		return api.move(c, v, ctx.Body())
	}))
	r.Delete(routes.WidgetID, reply(func(c context.Context, v dashboard.ViewerContext, ctx router.Context) (int, any) {
		return api.remove(c, v, ctx.Param("id"))
	}))
	r.Post(routes.Layout, reply(func(c context.Context, v dashboard.ViewerContext, ctx router.Context) (int, any) {
		return api.layout(c, v, ctx.Body())
	}))
	r.Post(routes.Theme, reply(func(c context.Context, v dashboard.ViewerContext, ctx router.Context) (int, any) {
		return api.display(c, v, ctx.Body())
	}))
	r.Post(routes.Save, reply(func(c context.Context, v dashboard.ViewerContext, _ router.Context) (int, any) {
		return api.save(c, v)
	}))
	r.Post(routes.Reset, reply(func(c context.Context, v dashboard.ViewerContext, ctx router.Context) (int, any) {
		return api.reset(c, v, ctx.Query("save") == "true")
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.SubscribeContext(ws.Context())
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// endpoints holds the transport-independent request handling so each route
// reduces to a status code and a JSON payload.
type endpoints struct {
	api *httpapi.Handlers
}

func (e endpoints) snapshot(ctx context.Context, viewer dashboard.ViewerContext) (int, any) {
	snap, err := e.api.Snapshot.Query(ctx, viewer)
	if err != nil {
		return errorPayload(httpapi.StatusFor(err), err)
	}
	return http.StatusOK, snap
}

func (e endpoints) place(ctx context.Context, viewer dashboard.ViewerContext, body []byte) (int, any) {
	var payload commands.PlaceWidgetInput
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorPayload(http.StatusBadRequest, err)
	}
	payload.Viewer = viewer
	return e.result(e.api.Place.Execute(ctx, payload), http.StatusCreated, "placed")
}

func (e endpoints) move(ctx context.Context, viewer dashboard.ViewerContext, body []byte) (int, any) {
	var payload commands.MoveWidgetInput
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorPayload(http.StatusBadRequest, err)
	}
	payload.Viewer = viewer
	return e.result(e.api.Move.Execute(ctx, payload), http.StatusOK, "moved")
}

func (e endpoints) remove(ctx context.Context, viewer dashboard.ViewerContext, id string) (int, any) {
	if id == "" {
		return errorPayload(http.StatusBadRequest, errors.New("widget id is required"))
	}
	return e.result(e.api.Remove.Execute(ctx, commands.RemoveWidgetInput{Viewer: viewer, WidgetID: id}), http.StatusOK, "removed")
}

func (e endpoints) layout(ctx context.Context, viewer dashboard.ViewerContext, body []byte) (int, any) {
	var payload commands.ChangeLayoutInput
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorPayload(http.StatusBadRequest, err)
	}
	payload.Viewer = viewer
	return e.result(e.api.Layout.Execute(ctx, payload), http.StatusOK, "updated")
}

func (e endpoints) display(ctx context.Context, viewer dashboard.ViewerContext, body []byte) (int, any) {
	var payload commands.UpdateDisplayInput
	if err := json.Unmarshal(body, &payload); err != nil {
		return errorPayload(http.StatusBadRequest, err)
	}
	payload.Viewer = viewer
	return e.result(e.api.Display.Execute(ctx, payload), http.StatusOK, "updated")
}

func (e endpoints) save(ctx context.Context, viewer dashboard.ViewerContext) (int, any) {
	return e.result(e.api.Save.Execute(ctx, commands.SaveCustomizationInput{Viewer: viewer}), http.StatusAccepted, "saved")
}

func (e endpoints) reset(ctx context.Context, viewer dashboard.ViewerContext, save bool) (int, any) {
	return e.result(e.api.Reset.Execute(ctx, commands.ResetCustomizationInput{Viewer: viewer, Save: save}), http.StatusOK, "reset")
}

func (e endpoints) result(err error, status int, label string) (int, any) {
	if err != nil {
		return errorPayload(httpapi.StatusFor(err), err)
	}
	return status, map[string]string{"status": label}
}

func errorPayload(status int, err error) (int, any) {
	return status, map[string]string{"error": err.Error()}
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if v, ok := ctx.Locals("session_id").(string); ok {
		viewer.SessionID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	set := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}
	set(&routes.HTML, "/dashboard/customize")
	set(&routes.View, "/dashboard/customize/_view")
	set(&routes.Snapshot, "/dashboard/customize/_snapshot")
	set(&routes.Widgets, "/dashboard/customize/widgets")
	set(&routes.WidgetID, "/dashboard/customize/widgets/:id")
	set(&routes.Move, "/dashboard/customize/widgets/move")
	set(&routes.Layout, "/dashboard/customize/layout")
	set(&routes.Theme, "/dashboard/customize/theme")
	set(&routes.Save, "/dashboard/customize/save")
	set(&routes.Reset, "/dashboard/customize/reset")
	set(&routes.WebSocket, "/dashboard/customize/ws")
	return routes
}
