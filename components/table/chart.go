package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// ChartType selects the echarts series type.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
	ChartPie  ChartType = "pie"
)

var (
	// ErrUnsupportedChart is returned for chart types other than bar, line and pie.
	ErrUnsupportedChart = errors.New("table: unsupported chart type")
	// ErrUnknownColumn is returned when a chart references an undeclared column.
	ErrUnknownColumn = errors.New("table: unknown column")
)

// ChartOptions describes how filtered rows become a chart.
type ChartOptions struct {
	Type       ChartType `json:"type"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle,omitempty"`
	LabelKey   string    `json:"label_key"`
	ValueKeys  []string  `json:"value_keys"`
	Theme      string    `json:"theme,omitempty"`
	AssetsHost string    `json:"assets_host,omitempty"`
}

// RenderChart renders the filtered rows, in their current sort order, to
// echarts HTML. Output is cached per view revision.
func (e *Engine) RenderChart(chart ChartOptions) (string, error) {
	chart.Type = ChartType(strings.ToLower(string(chart.Type)))
	if chart.Theme == "" {
		chart.Theme = types.ThemeWesteros
	}

	e.mu.Lock()
	for _, key := range append([]string{chart.LabelKey}, chart.ValueKeys...) {
		if _, ok := e.index[key]; !ok {
			e.mu.Unlock()
			return "", fmt.Errorf("%w: %q", ErrUnknownColumn, key)
		}
	}
	rows := append([]Row(nil), e.filtered...)
	labels := make(map[string]string, len(e.columns))
	for _, col := range e.columns {
		labels[col.Key] = col.Label
	}
	key := fmt.Sprintf("%s:%d:%s", e.id, e.revision, configHash(chart))
	cache := e.opts.Cache
	e.mu.Unlock()

	render := func() (string, error) {
		return renderRows(chart, rows, labels)
	}
	return cache.GetOrRender(key, render)
}

func renderRows(chart ChartOptions, rows []Row, labels map[string]string) (string, error) {
	if len(chart.ValueKeys) == 0 {
		return "", fmt.Errorf("table: chart needs at least one value column")
	}
	axis := make([]string, len(rows))
	for i, row := range rows {
		axis[i] = stringify(row[chart.LabelKey])
		if axis[i] == "" {
			axis[i] = fmt.Sprintf("Item %d", i+1)
		}
	}
	values := func(key string) []float64 {
		out := make([]float64, len(rows))
		for i, row := range rows {
			out[i], _ = toFloat(row[key])
		}
		return out
	}

	switch chart.Type {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(globalChartOptions(chart)...)
		bar.SetXAxis(axis)
		for _, key := range chart.ValueKeys {
			points := values(key)
			data := make([]opts.BarData, len(points))
			for i, v := range points {
				data[i] = opts.BarData{Name: axis[i], Value: v}
			}
			bar.AddSeries(labels[key], data)
		}
		return renderChart(bar)
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(globalChartOptions(chart)...)
		line.SetXAxis(axis)
		for _, key := range chart.ValueKeys {
			points := values(key)
			data := make([]opts.LineData, len(points))
			for i, v := range points {
				data[i] = opts.LineData{Name: axis[i], Value: v}
			}
			line.AddSeries(labels[key], data)
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(globalChartOptions(chart)...)
		key := chart.ValueKeys[0]
		points := values(key)
		data := make([]opts.PieData, len(points))
		for i, v := range points {
			data[i] = opts.PieData{Name: axis[i], Value: v}
		}
		pie.AddSeries(labels[key], data)
		return renderChart(pie)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedChart, chart.Type)
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func globalChartOptions(chart ChartOptions) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  chart.Theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if chart.AssetsHost != "" {
		initOpts.AssetsHost = chart.AssetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: chart.Title, Subtitle: chart.Subtitle}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}
