package charts

import (
	"github.com/dalemusser/staydesk/internal/app/system/aggregate"
)

// Palette cycles across bars by index.
var Palette = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#06B6D4"}

// Chart canvas, in SVG user units.
const (
	ChartWidth   = 640
	ChartHeight  = 260
	chartPadTop  = 24
	chartPadBot  = 40
	chartPadSide = 16
	barFill      = 0.7
)

// Bar is one rendered bar with its geometry.
type Bar struct {
	Label  string
	Total  int
	Color  string
	X      float64
	Y      float64
	Width  float64
	Height float64
	// LabelX is the horizontal centre of the bar, for the text anchors.
	LabelX float64
	// BaseY is the y of the category axis.
	BaseY float64
}

// BarChartVM is a chart ready for the template, plus the same data in the
// row shape the JSON endpoint serves.
type BarChartVM struct {
	Title      string
	Width      int
	Height     int
	Bars       []Bar
	Rows       []map[string]any
	LabelField string
	ValueField string
	Empty      bool
	Failed     bool
}

// BarChart lays out s as vertical bars scaled to the largest total.
func BarChart(title string, s aggregate.Series, labelField, valueField string) BarChartVM {
	vm := BarChartVM{
		Title:      title,
		Width:      ChartWidth,
		Height:     ChartHeight,
		Bars:       make([]Bar, 0, len(s)),
		Rows:       s.Rows(labelField, valueField),
		LabelField: labelField,
		ValueField: valueField,
		Empty:      len(s) == 0,
	}
	if vm.Empty {
		return vm
	}

	maxTotal := 0
	for _, g := range s {
		maxTotal = max(maxTotal, g.Total)
	}

	plotW := float64(ChartWidth - 2*chartPadSide)
	plotH := float64(ChartHeight - chartPadTop - chartPadBot)
	baseY := float64(ChartHeight - chartPadBot)
	slot := plotW / float64(len(s))
	width := slot * barFill

	for i, g := range s {
		h := 0.0
		if maxTotal > 0 {
			h = plotH * float64(g.Total) / float64(maxTotal)
		}
		x := float64(chartPadSide) + slot*float64(i) + (slot-width)/2
		vm.Bars = append(vm.Bars, Bar{
			Label:  g.Label,
			Total:  g.Total,
			Color:  Palette[i%len(Palette)],
			X:      x,
			Y:      baseY - h,
			Width:  width,
			Height: h,
			LabelX: x + width/2,
			BaseY:  baseY,
		})
	}
	return vm
}
