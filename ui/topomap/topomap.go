package topomap

import (
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"dipole-explorer/internal/sensors"
)

// Map is a widget showing one sensor kind's topomap.
type Map struct {
	widget.BaseWidget

	channels []sensors.Channel
	values   []float64

	raster *fynecanvas.Raster
}

// NewMap creates an empty topomap widget.
func NewMap() *Map {
	m := &Map{}
	m.raster = fynecanvas.NewRaster(m.draw)
	m.ExtendBaseWidget(m)
	return m
}

// SetData replaces the displayed channels and values and redraws.
func (m *Map) SetData(channels []sensors.Channel, values []float64) {
	m.channels = channels
	m.values = values
	m.Refresh()
}

// Refresh redraws the raster.
func (m *Map) Refresh() {
	m.raster.Refresh()
	m.BaseWidget.Refresh()
}

// MinSize keeps the head outline legible.
func (m *Map) MinSize() fyne.Size {
	return fyne.NewSize(180, 180)
}

// CreateRenderer implements fyne.Widget.
func (m *Map) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.raster)
}

func (m *Map) draw(w, h int) image.Image {
	size := w
	if h < size {
		size = h
	}
	return Render(m.channels, m.values, size)
}
