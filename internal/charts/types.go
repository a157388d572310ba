// Package charts turns purchase tables into declarative chart
// descriptions that the browser renders. A nil *Chart means "no chart".
package charts

import (
	"errors"

	"compras/internal/core"
)

// Kind names a chart builder.
type Kind string

const (
	KindMonthly    Kind = "monthly"
	KindPlatforms  Kind = "platforms"
	KindCategories Kind = "categories"
	KindWeekly     Kind = "weekly"
	KindPrices     Kind = "prices"
	KindTop        Kind = "top"
	KindHeatmap    Kind = "heatmap"
)

// Kinds lists every chart in display order.
var Kinds = []Kind{KindMonthly, KindPlatforms, KindCategories, KindWeekly, KindPrices, KindTop, KindHeatmap}

// Chart types understood by the front end.
const (
	TypeLine      = "line"
	TypePie       = "pie"
	TypeBar       = "bar"
	TypeHBar      = "hbar"
	TypeHistogram = "histogram"
	TypeHeatmap   = "heatmap"
)

var ErrUnknownKind = errors.New("unknown chart kind")

// Chart is a renderer-neutral chart description.
type Chart struct {
	Kind       Kind     `json:"kind"`
	Type       string   `json:"chartType"`
	Title      string   `json:"title"`
	XAxis      string   `json:"xAxis,omitempty"`
	YAxis      string   `json:"yAxis,omitempty"`
	Series     []Series `json:"series,omitempty"`
	Heatmap    *Heatmap `json:"heatmap,omitempty"`
	Bins       []Bin    `json:"bins,omitempty"`
	Hole       float64  `json:"hole,omitempty"`
	Colors     []string `json:"colors,omitempty"`
	ShowLegend bool     `json:"showLegend"`
	ShowGrid   bool     `json:"showGrid"`
}

// Series is one named data series.
type Series struct {
	Name  string  `json:"name"`
	Data  []Point `json:"data"`
	Color string  `json:"color,omitempty"`
}

// Point is a labeled value. Tag carries secondary context such as the
// platform of a ranked purchase.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Tag   string  `json:"tag,omitempty"`
}

// Bin is one histogram bucket over [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Heatmap is a Rows x Cols matrix of values.
type Heatmap struct {
	Rows   []string    `json:"rows"`
	Cols   []string    `json:"cols"`
	Values [][]float64 `json:"values"`
}

// Options carry the presentation settings shared by all builders.
type Options struct {
	Currency string
	Locale   core.Locale
	TopN     int
}

func (o Options) withDefaults() Options {
	if o.Currency == "" {
		o.Currency = "$"
	}
	if o.Locale == "" {
		o.Locale = core.LocaleES
	}
	if o.TopN <= 0 {
		o.TopN = 10
	}
	return o
}

var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

func colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}
