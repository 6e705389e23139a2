package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-uistate/pkg/clock"
)

func TestRenderChartTypes(t *testing.T) {
	e := newTicketEngine(t)
	for _, kind := range []ChartType{ChartBar, ChartLine, ChartPie} {
		html, err := e.RenderChart(ChartOptions{Type: kind, Title: "Ticket prices", LabelKey: "event", ValueKeys: []string{"price"}})
		require.NoError(t, err, kind)
		assert.Contains(t, html, "echarts")
		assert.Contains(t, html, "Ticket prices")
	}
}

func TestRenderChartErrors(t *testing.T) {
	e := newTicketEngine(t)
	_, err := e.RenderChart(ChartOptions{Type: ChartBar, LabelKey: "event", ValueKeys: []string{"missing"}})
	require.ErrorIs(t, err, ErrUnknownColumn)
	_, err = e.RenderChart(ChartOptions{Type: "radar", LabelKey: "event", ValueKeys: []string{"price"}})
	require.ErrorIs(t, err, ErrUnsupportedChart)
}

func TestRenderChartCachedPerRevision(t *testing.T) {
	cache := NewChartCache(time.Minute)
	e, err := NewEngine(Options{Columns: ticketColumns(), Rows: ticketRows(), Cache: cache})
	require.NoError(t, err)
	chart := ChartOptions{Type: ChartBar, LabelKey: "event", ValueKeys: []string{"price"}}

	first, err := e.RenderChart(chart)
	require.NoError(t, err)
	second, err := e.RenderChart(chart)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())

	e.SetGlobalSearch("chelsea")
	_, err = e.RenderChart(chart)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())
}

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	val1, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	val2, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", val1)
	assert.Equal(t, val1, val2)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpires(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cache := NewChartCacheWithClock(time.Second, clk.Now)
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}

	_, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	clk.Advance(2 * time.Second)
	_, err = cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestChartCacheDisabled(t *testing.T) {
	cache := NewChartCache(0)
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := cache.GetOrRender("key", func() (string, error) {
			calls++
			return "x", nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}
