package commands

import (
	"context"
	"errors"
	"testing"

	dashboard "github.com/goliatone/go-uistate/components/dashboard"
)

type stubService struct {
	placeCalls   int
	removeCalls  int
	moveCalls    int
	layoutCalls  int
	displayCalls int
	saveCalls    int
	resetCalls   int
	lastColumn   string
	lastDisplay  dashboard.DisplayUpdate
	err          error
}

func (s *stubService) AddWidget(_ context.Context, _ dashboard.ViewerContext, _ string, column string) error {
	s.placeCalls++
	s.lastColumn = column
	return s.err
}

func (s *stubService) RemoveWidget(context.Context, dashboard.ViewerContext, string) error {
	s.removeCalls++
	return s.err
}

func (s *stubService) MoveWidget(context.Context, dashboard.ViewerContext, string, string, int) error {
	s.moveCalls++
	return s.err
}

func (s *stubService) ChangeLayout(context.Context, dashboard.ViewerContext, string) error {
	s.layoutCalls++
	return s.err
}

func (s *stubService) UpdateDisplay(_ context.Context, _ dashboard.ViewerContext, update dashboard.DisplayUpdate) error {
	s.displayCalls++
	s.lastDisplay = update
	return s.err
}

func (s *stubService) Save(context.Context, dashboard.ViewerContext) error {
	s.saveCalls++
	return s.err
}

func (s *stubService) Reset(context.Context, dashboard.ViewerContext) error {
	s.resetCalls++
	return s.err
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}

func TestPlaceWidgetCommand(t *testing.T) {
	service := &stubService{}
	telemetry := &stubTelemetry{}
	cmd := NewPlaceWidgetCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), PlaceWidgetInput{WidgetID: "ticket-alerts", ColumnID: "col-2"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.placeCalls != 1 || service.lastColumn != "col-2" {
		t.Fatalf("expected place call into col-2, got %d %q", service.placeCalls, service.lastColumn)
	}
	if telemetry.calls != 1 {
		t.Fatalf("expected telemetry to record events")
	}
	if err := cmd.Execute(context.Background(), PlaceWidgetInput{}); err == nil {
		t.Fatalf("expected error without widget id")
	}
}

func TestPlaceWidgetCommandPropagatesErrors(t *testing.T) {
	service := &stubService{err: dashboard.ErrNotApplied}
	telemetry := &stubTelemetry{}
	cmd := NewPlaceWidgetCommand(service, telemetry)
	err := cmd.Execute(context.Background(), PlaceWidgetInput{WidgetID: "ticket-alerts"})
	if !errors.Is(err, dashboard.ErrNotApplied) {
		t.Fatalf("expected ErrNotApplied, got %v", err)
	}
	if telemetry.calls != 0 {
		t.Fatalf("expected no telemetry on failure")
	}
}

func TestRemoveAndMoveWidgetCommands(t *testing.T) {
	service := &stubService{}
	if err := NewRemoveWidgetCommand(service, nil).Execute(context.Background(), RemoveWidgetInput{WidgetID: "w1"}); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if err := NewMoveWidgetCommand(service, nil).Execute(context.Background(), MoveWidgetInput{WidgetID: "w1", ColumnID: "col-1", Index: 2}); err != nil {
		t.Fatalf("move returned error: %v", err)
	}
	if err := NewMoveWidgetCommand(service, nil).Execute(context.Background(), MoveWidgetInput{WidgetID: "w1"}); err == nil {
		t.Fatalf("expected move to require a column")
	}
	if service.removeCalls != 1 || service.moveCalls != 1 {
		t.Fatalf("unexpected calls remove=%d move=%d", service.removeCalls, service.moveCalls)
	}
}

func TestLayoutAndDisplayCommands(t *testing.T) {
	service := &stubService{}
	if err := NewChangeLayoutCommand(service, nil).Execute(context.Background(), ChangeLayoutInput{LayoutID: "grid-2"}); err != nil {
		t.Fatalf("layout returned error: %v", err)
	}
	dark := true
	if err := NewUpdateDisplayCommand(service, nil).Execute(context.Background(), UpdateDisplayInput{Theme: "teal", DarkMode: &dark}); err != nil {
		t.Fatalf("display returned error: %v", err)
	}
	if service.layoutCalls != 1 || service.displayCalls != 1 {
		t.Fatalf("unexpected calls layout=%d display=%d", service.layoutCalls, service.displayCalls)
	}
	if service.lastDisplay.Theme != "teal" || service.lastDisplay.DarkMode == nil || !*service.lastDisplay.DarkMode {
		t.Fatalf("unexpected display update %#v", service.lastDisplay)
	}
}

func TestSaveAndResetCommands(t *testing.T) {
	service := &stubService{}
	if err := NewSaveCustomizationCommand(service, nil).Execute(context.Background(), SaveCustomizationInput{}); err != nil {
		t.Fatalf("save returned error: %v", err)
	}
	if err := NewResetCustomizationCommand(service, nil).Execute(context.Background(), ResetCustomizationInput{Save: true}); err != nil {
		t.Fatalf("reset returned error: %v", err)
	}
	if service.saveCalls != 2 || service.resetCalls != 1 {
		t.Fatalf("unexpected calls save=%d reset=%d", service.saveCalls, service.resetCalls)
	}
}

func TestSeedDashboardCommand(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	telemetry := &stubTelemetry{}
	viewer := dashboard.ViewerContext{UserID: "seed", Roles: []string{"agent"}}
	cmd := NewSeedDashboardCommand(service, telemetry)
	if err := cmd.Execute(context.Background(), SeedDashboardInput{Viewer: viewer}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	snap, err := service.Snapshot(context.Background(), viewer)
	if err != nil {
		t.Fatalf("Snapshot returned error: %v", err)
	}
	placed := 0
	for _, col := range snap.Columns {
		placed += len(col)
	}
	if placed != len(dashboard.DefaultSeedWidgets("agent")) {
		t.Fatalf("expected %d seeded widgets, got %d", len(dashboard.DefaultSeedWidgets("agent")), placed)
	}
	if telemetry.calls == 0 {
		t.Fatalf("expected telemetry to record events")
	}
	if err := NewSeedDashboardCommand(nil, nil).Execute(context.Background(), SeedDashboardInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}
