package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uistate/pkg/clock"
	"github.com/goliatone/go-uistate/pkg/events"
)

func fruitStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(Config{
		ID: "fruit",
		Options: []Option{
			{ID: "a", Label: "Apple"},
			{ID: "b", Label: "Banana", Disabled: true},
		},
		Searchable: true,
		Scheduler:  clock.NewManual(time.Unix(0, 0)),
	})
	require.NoError(t, err)
	return store
}

func TestDropdownSearchSelectAndClose(t *testing.T) {
	store := fruitStore(t)
	store.Open()
	store.SetSearch("an")

	visible := store.VisibleOptions()
	require.Len(t, visible, 1)
	assert.Equal(t, "Banana", visible[0].Label)

	assert.Equal(t, Ignored, store.Select("b"))
	assert.Empty(t, store.Selected())

	assert.Equal(t, Selected, store.Select("a"))
	assert.Equal(t, []string{"a"}, store.Selected())
	assert.False(t, store.IsOpen())
	assert.Empty(t, store.SearchTerm())
}

func TestMultiSelectRespectsCapacity(t *testing.T) {
	store, err := New(Config{
		Mode:          ModeMulti,
		MaxSelections: 2,
		Options:       []Option{{ID: "x"}, {ID: "y"}, {ID: "z"}},
	})
	require.NoError(t, err)
	rec := &events.Recorder{}
	store.Subscribe(rec.Record)

	assert.Equal(t, Selected, store.Select("x"))
	assert.Equal(t, Selected, store.Select("y"))
	assert.Equal(t, LimitReached, store.Select("z"))
	assert.Equal(t, []string{"x", "y"}, store.Selected())
	assert.True(t, store.AtCapacity())
	assert.Equal(t, []string{EventSelectionChanged, EventSelectionChanged, EventLimitReached}, rec.Names())

	assert.Equal(t, Deselected, store.Select("x"))
	assert.Equal(t, Selected, store.Select("z"))
	assert.Equal(t, []string{"y", "z"}, store.Selected())
}

func TestSelectionStaysWithinOptions(t *testing.T) {
	store, err := New(Config{
		Mode:          ModeMulti,
		MaxSelections: 3,
		Options:       []Option{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4", Disabled: true}},
		Initial:       []string{"2", "ghost", "4"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, store.Selected())

	known := map[string]bool{"1": true, "2": true, "3": true, "4": true}
	for _, id := range []string{"1", "9", "3", "4", "2", "1", "1", "3", "2", "7"} {
		store.Select(id)
		selected := store.Selected()
		assert.LessOrEqual(t, len(selected), 3)
		for _, s := range selected {
			assert.True(t, known[s], "unexpected id %s", s)
		}
	}
}

func TestSetSearchIsIdempotent(t *testing.T) {
	store := fruitStore(t)
	rec := &events.Recorder{}
	store.Subscribe(rec.Record)

	store.SetSearch("ap")
	first := store.VisibleOptions()
	store.SetSearch("ap")
	assert.Equal(t, first, store.VisibleOptions())
	assert.Equal(t, []string{EventSearchChanged}, rec.Names())
	assert.Len(t, store.Options(), 2)
}

func TestEscapeAndOutsideClickKeepSelection(t *testing.T) {
	falseVal := false
	store, err := New(Config{
		Options:       []Option{{ID: "a", Label: "Apple"}, {ID: "c", Label: "Cherry"}},
		CloseOnSelect: &falseVal,
	})
	require.NoError(t, err)

	store.Open()
	store.Select("c")
	assert.True(t, store.IsOpen())
	store.HandleKey(KeyEscape)
	assert.False(t, store.IsOpen())
	assert.Equal(t, []string{"c"}, store.Selected())

	store.Open()
	store.SetSearch("app")
	store.OutsideClick()
	assert.Equal(t, []string{"c"}, store.Selected())

	store.Open()
	assert.Empty(t, store.SearchTerm())
	assert.Len(t, store.VisibleOptions(), 2)
}

func TestKeyboardNavigationWrapsAndSkipsDisabled(t *testing.T) {
	store, err := New(Config{
		Options: []Option{
			{ID: "a", Label: "Alpha"},
			{ID: "b", Label: "Beta", Disabled: true},
			{ID: "c", Label: "Gamma"},
		},
	})
	require.NoError(t, err)

	store.HandleKey(KeyArrowDown)
	_, ok := store.ActiveOption()
	assert.False(t, ok, "cursor only moves while open")

	store.HandleKey(KeyEnter)
	require.True(t, store.IsOpen())

	store.HandleKey(KeyArrowDown)
	active, _ := store.ActiveOption()
	assert.Equal(t, "a", active.ID)
	store.HandleKey(KeyArrowDown)
	active, _ = store.ActiveOption()
	assert.Equal(t, "c", active.ID)
	store.HandleKey(KeyArrowDown)
	active, _ = store.ActiveOption()
	assert.Equal(t, "a", active.ID)
	store.HandleKey(KeyArrowUp)
	active, _ = store.ActiveOption()
	assert.Equal(t, "c", active.ID)
	assert.Equal(t, "c", store.ARIA().ActiveDescendant)

	store.HandleKey(KeyEnter)
	assert.Equal(t, []string{"c"}, store.Selected())
	assert.False(t, store.ARIA().Expanded)
}

func TestOpenSchedulesFocusAndTeardownCancelsIt(t *testing.T) {
	sched := clock.NewManual(time.Unix(0, 0))
	store, err := New(Config{Options: []Option{{ID: "a"}}, Searchable: true, Scheduler: sched})
	require.NoError(t, err)
	rec := &events.Recorder{}
	store.Subscribe(rec.Record)

	store.Open()
	store.Open()
	sched.Advance(0)
	assert.Equal(t, []string{EventOpened, EventFocusSearch}, rec.Names())

	store.Close()
	store.Open()
	store.Teardown()
	sched.Advance(time.Second)
	assert.Equal(t, []string{EventOpened, EventFocusSearch, EventClosed, EventOpened}, rec.Names())
	assert.Equal(t, 0, sched.Pending())
	assert.Equal(t, Ignored, store.Select("a"))
}

func TestSelectionEventPayloads(t *testing.T) {
	store, err := New(Config{Options: []Option{{ID: "nyc", Value: "New York"}}})
	require.NoError(t, err)
	rec := &events.Recorder{}
	store.Subscribe(rec.Record)

	store.Select("nyc")
	store.Clear()
	store.Clear()

	evts := rec.Events()
	require.Len(t, evts, 2)
	assert.Equal(t, map[string]any{"value": "nyc", "text": "New York"}, evts[0].Payload)
	assert.Equal(t, map[string]any{"value": "", "text": ""}, evts[1].Payload)
}

func TestNewRejectsMisuse(t *testing.T) {
	_, err := New(Config{Options: []Option{{ID: ""}}})
	assert.Error(t, err)
	_, err = New(Config{Options: []Option{{ID: "a"}, {ID: "a"}}})
	assert.Error(t, err)
	_, err = New(Config{Mode: ModeMulti, MaxSelections: -1})
	assert.Error(t, err)
	_, err = New(Config{Mode: "tree"})
	assert.Error(t, err)
}

func TestSearchFoldsCaseAndAccents(t *testing.T) {
	store, err := New(Config{
		Options: []Option{
			{ID: "atm", Label: "Atlético Madrid"},
			{ID: "ars", Label: "Arsenal"},
		},
		Searchable: true,
		Scheduler:  clock.NewManual(time.Unix(0, 0)),
	})
	require.NoError(t, err)

	store.SetSearch("ATLÉTICO")
	visible := store.VisibleOptions()
	require.Len(t, visible, 1)
	assert.Equal(t, "atm", visible[0].ID)
}
