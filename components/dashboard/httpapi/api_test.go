package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-uistate/components/dashboard"
	"github.com/goliatone/go-uistate/components/dashboard/commands"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func withViewer(req *http.Request, id string) *http.Request {
	return req.WithContext(dashboard.ContextWithViewer(req.Context(), dashboard.ViewerContext{UserID: id}))
}

func TestHandlePlaceWidget(t *testing.T) {
	place := &stubCommander[commands.PlaceWidgetInput]{}
	api := &Handlers{Place: place}
	buf, _ := json.Marshal(map[string]string{"widget_id": "ticket-alerts", "column_id": "col-2"})
	req := withViewer(httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewReader(buf)), "u1")
	rec := httptest.NewRecorder()
	api.HandlePlaceWidget(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if place.last.WidgetID != "ticket-alerts" || place.last.Viewer.UserID != "u1" {
		t.Fatalf("expected payload and viewer propagation, got %#v", place.last)
	}
}

func TestHandlePlaceWidgetBadPayload(t *testing.T) {
	api := &Handlers{Place: &stubCommander[commands.PlaceWidgetInput]{}}
	req := httptest.NewRequest(http.MethodPost, "/widgets", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	api.HandlePlaceWidget(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleRemoveWidget(t *testing.T) {
	remove := &stubCommander[commands.RemoveWidgetInput]{}
	api := &Handlers{Remove: remove}
	req := httptest.NewRequest(http.MethodDelete, "/widgets/w1", nil)
	rec := httptest.NewRecorder()
	api.HandleRemoveWidget(rec, req, "w1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.WidgetID != "w1" {
		t.Fatalf("expected widget id propagation")
	}
}

func TestHandleNotAppliedIsConflict(t *testing.T) {
	api := &Handlers{Layout: &stubCommander[commands.ChangeLayoutInput]{err: dashboard.ErrNotApplied}}
	req := httptest.NewRequest(http.MethodPost, "/layout", bytes.NewReader([]byte(`{"layout_id":"grid-9"}`)))
	rec := httptest.NewRecorder()
	api.HandleChangeLayout(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegisterServesServiceBackedRoutes(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	api := NewHandlers(service, nil)
	api.Viewer = func(*http.Request) dashboard.ViewerContext { return dashboard.ViewerContext{UserID: "mux"} }
	mux := http.NewServeMux()
	api.Register(mux, "/admin/dashboard/customize/")
	server := httptest.NewServer(mux)
	defer server.Close()

	post := func(path, body string) int {
		resp, err := http.Post(server.URL+path, "application/json", bytes.NewReader([]byte(body)))
		if err != nil {
			t.Fatalf("POST %s: %v", path, err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}
	if code := post("/admin/dashboard/customize/widgets", `{"widget_id":"recent-activity"}`); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if code := post("/admin/dashboard/customize/widgets", `{"widget_id":"recent-activity"}`); code != http.StatusConflict {
		t.Fatalf("expected 409 for placed widget, got %d", code)
	}
	if code := post("/admin/dashboard/customize/theme", `{"theme":"green","compact_mode":true}`); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := post("/admin/dashboard/customize/save", ``); code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", code)
	}

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/admin/dashboard/customize/widgets/recent-activity", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/admin/dashboard/customize/_snapshot")
	if err != nil {
		t.Fatalf("GET snapshot: %v", err)
	}
	defer resp.Body.Close()
	var snap dashboard.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.Theme != "green" || !snap.CompactMode {
		t.Fatalf("unexpected snapshot %#v", snap)
	}
	for _, col := range snap.Columns {
		if len(col) != 0 {
			t.Fatalf("expected empty columns after removal, got %#v", snap.Columns)
		}
	}
}

func TestStatusForAnonymousViewer(t *testing.T) {
	if got := StatusFor(fmt.Errorf("save: %w", dashboard.ErrAnonymousViewer)); got != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", got)
	}
	if got := StatusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", got)
	}
}
