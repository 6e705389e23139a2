package gorouter

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uistate/components/dashboard"
	"github.com/goliatone/go-uistate/components/dashboard/httpapi"
)

type stubRenderer struct {
	calls int
	err   error
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	html := "<main>" + name + "</main>"
	for _, w := range out {
		_, _ = io.WriteString(w, html)
	}
	return html, nil
}

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	if err == nil {
		t.Fatalf("expected error when router/controller missing")
	}
}

func TestDefaultRouteConfigKeepsOverrides(t *testing.T) {
	routes := defaultRouteConfig(RouteConfig{HTML: "/customize"})
	assert.Equal(t, "/customize", routes.HTML)
	assert.Equal(t, "/dashboard/customize/_snapshot", routes.Snapshot)
	assert.Equal(t, "/dashboard/customize/widgets/:id", routes.WidgetID)
	assert.Equal(t, "/dashboard/customize/ws", routes.WebSocket)
}

func TestParseAcceptLanguage(t *testing.T) {
	cases := map[string]string{
		"":                        "",
		"es-MX,es;q=0.9,en;q=0.8": "es-mx",
		" fr;q=0.7 , en":          "fr",
		",,de":                    "de",
	}
	for header, want := range cases {
		assert.Equal(t, want, parseAcceptLanguage(header), "header %q", header)
	}
}

func TestRenderPage(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	renderer := &stubRenderer{}
	controller := dashboard.NewController(dashboard.ControllerOptions{Service: service, Renderer: renderer})

	body, err := renderPage(context.Background(), controller, dashboard.ViewerContext{UserID: "page"})
	require.NoError(t, err)
	assert.Equal(t, "<main>customizer</main>", string(body))
	assert.Equal(t, 1, renderer.calls)

	renderer.err = errors.New("boom")
	_, err = renderPage(context.Background(), controller, dashboard.ViewerContext{UserID: "page"})
	assert.Error(t, err)
}

func TestEndpointsDriveService(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	api := endpoints{api: httpapi.NewHandlers(service, nil)}
	viewer := dashboard.ViewerContext{UserID: "router"}
	ctx := context.Background()

	status, _ := api.place(ctx, viewer, []byte(`{"widget_id":"recent-activity","column_id":"col-2"}`))
	assert.Equal(t, http.StatusCreated, status)

	status, payload := api.place(ctx, viewer, []byte(`{"widget_id":"recent-activity"}`))
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, payload.(map[string]string)["error"], "not applied")

	status, _ = api.place(ctx, viewer, []byte(`{`))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.display(ctx, viewer, []byte(`{"theme":"purple","dark_mode":true}`))
	assert.Equal(t, http.StatusOK, status)

	status, _ = api.save(ctx, viewer)
	assert.Equal(t, http.StatusAccepted, status)

	status, payload = api.snapshot(ctx, viewer)
	require.Equal(t, http.StatusOK, status)
	snap := payload.(dashboard.Snapshot)
	assert.Equal(t, "purple", snap.Theme)
	assert.True(t, snap.DarkMode)
	assert.Equal(t, []string{"recent-activity"}, snap.Columns[1])

	status, _ = api.remove(ctx, viewer, "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = api.remove(ctx, viewer, "recent-activity")
	assert.Equal(t, http.StatusOK, status)

	status, _ = api.layout(ctx, viewer, []byte(`{"layout_id":"missing"}`))
	assert.Equal(t, http.StatusConflict, status)

	status, payload = api.reset(ctx, viewer, false)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]string{"status": "reset"}, payload)
}

func TestEndpointsReportCommandErrors(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	handlers := httpapi.NewHandlers(service, nil)
	api := endpoints{api: handlers}

	status, payload := api.move(context.Background(), dashboard.ViewerContext{}, []byte(`{"widget_id":"ghost","column_id":"col-1"}`))
	assert.Equal(t, http.StatusConflict, status)
	assert.True(t, strings.HasPrefix(payload.(map[string]string)["error"], "dashboard:"))
}
