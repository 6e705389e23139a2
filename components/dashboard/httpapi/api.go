package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-uistate/components/dashboard"
	"github.com/goliatone/go-uistate/components/dashboard/commands"
	"github.com/goliatone/go-uistate/components/dashboard/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Place    gocommand.Commander[commands.PlaceWidgetInput]
	Remove   gocommand.Commander[commands.RemoveWidgetInput]
	Move     gocommand.Commander[commands.MoveWidgetInput]
	Layout   gocommand.Commander[commands.ChangeLayoutInput]
	Display  gocommand.Commander[commands.UpdateDisplayInput]
	Save     gocommand.Commander[commands.SaveCustomizationInput]
	Reset    gocommand.Commander[commands.ResetCustomizationInput]
	Snapshot gocommand.Querier[dashboard.ViewerContext, dashboard.Snapshot]
	// Viewer resolves the caller. Defaults to dashboard.ViewerFromContext.
	Viewer func(*http.Request) dashboard.ViewerContext
}

// NewHandlers wires every handler to the commands and queries built on service.
func NewHandlers(service *dashboard.Service, telemetry commands.Telemetry) *Handlers {
	return &Handlers{
		Place:    commands.NewPlaceWidgetCommand(service, telemetry),
		Remove:   commands.NewRemoveWidgetCommand(service, telemetry),
		Move:     commands.NewMoveWidgetCommand(service, telemetry),
		Layout:   commands.NewChangeLayoutCommand(service, telemetry),
		Display:  commands.NewUpdateDisplayCommand(service, telemetry),
		Save:     commands.NewSaveCustomizationCommand(service, telemetry),
		Reset:    commands.NewResetCustomizationCommand(service, telemetry),
		Snapshot: queries.NewSnapshotQuery(service),
	}
}

// Register mounts the handlers on mux under prefix.
func (h *Handlers) Register(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	mux.HandleFunc("GET "+prefix+"/_snapshot", h.HandleSnapshot)
	mux.HandleFunc("POST "+prefix+"/widgets", h.HandlePlaceWidget)
	mux.HandleFunc("DELETE "+prefix+"/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleRemoveWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST "+prefix+"/widgets/move", h.HandleMoveWidget)
	mux.HandleFunc("POST "+prefix+"/layout", h.HandleChangeLayout)
	mux.HandleFunc("POST "+prefix+"/theme", h.HandleUpdateDisplay)
	mux.HandleFunc("POST "+prefix+"/save", h.HandleSave)
	mux.HandleFunc("POST "+prefix+"/reset", h.HandleReset)
}

func (h *Handlers) viewer(r *http.Request) dashboard.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	viewer, _ := dashboard.ViewerFromContext(r.Context())
	return viewer
}

func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Snapshot.Query(r.Context(), h.viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

func (h *Handlers) HandlePlaceWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.PlaceWidgetInput
	if !decode(w, r, &payload) {
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.Place.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleRemoveWidget(w http.ResponseWriter, r *http.Request, widgetID string) {
	input := commands.RemoveWidgetInput{Viewer: h.viewer(r), WidgetID: widgetID}
	if err := h.Remove.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleMoveWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.MoveWidgetInput
	if !decode(w, r, &payload) {
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.Move.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleChangeLayout(w http.ResponseWriter, r *http.Request) {
	var payload commands.ChangeLayoutInput
	if !decode(w, r, &payload) {
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.Layout.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleUpdateDisplay(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateDisplayInput
	if !decode(w, r, &payload) {
		return
	}
	payload.Viewer = h.viewer(r)
	if err := h.Display.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.Save.Execute(r.Context(), commands.SaveCustomizationInput{Viewer: h.viewer(r)}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	input := commands.ResetCustomizationInput{Viewer: h.viewer(r), Save: r.URL.Query().Get("save") == "true"}
	if err := h.Reset.Execute(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// StatusFor maps service errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrNotApplied):
		return http.StatusConflict
	case errors.Is(err, dashboard.ErrAnonymousViewer):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}
