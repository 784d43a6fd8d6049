package panels

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dipole-explorer/internal/forward"
	"dipole-explorer/internal/sensors"
	"dipole-explorer/ui/topomap"
)

// SensorPanel shows one topomap per channel kind. It starts out with the
// evoked measurement topographies and switches to the simulated dipole
// field once one has been computed.
type SensorPanel struct {
	layout *sensors.Layout
	evoked *sensors.Evoked

	maps   map[sensors.Kind]*topomap.Map
	titles map[sensors.Kind]*widget.Label

	container fyne.CanvasObject
}

// NewSensorPanel builds the panel and shows the evoked defaults.
func NewSensorPanel(layout *sensors.Layout, evoked *sensors.Evoked) *SensorPanel {
	p := &SensorPanel{
		layout: layout,
		evoked: evoked,
		maps:   make(map[sensors.Kind]*topomap.Map),
		titles: make(map[sensors.Kind]*widget.Label),
	}

	var columns []fyne.CanvasObject
	for _, kind := range sensors.Kinds {
		m := topomap.NewMap()
		title := widget.NewLabelWithStyle(kind.Label(), fyne.TextAlignCenter, fyne.TextStyle{})
		p.maps[kind] = m
		p.titles[kind] = title
		columns = append(columns, container.NewBorder(title, nil, nil, nil, m))
	}
	p.container = container.NewGridWithColumns(len(columns), columns...)

	p.ShowEvoked()
	return p
}

// Container returns the panel's layout root.
func (p *SensorPanel) Container() fyne.CanvasObject {
	return p.container
}

// ShowEvoked displays the measured topographies at the evoked peak.
func (p *SensorPanel) ShowEvoked() {
	sample := p.evoked.PeakSample()
	for _, kind := range sensors.Kinds {
		chs := p.layout.ByKind(kind)
		p.titles[kind].SetText(kind.Label())
		p.maps[kind].SetData(chs, p.evoked.ValuesAt(sample, chs))
	}
}

// ShowResult displays a computed dipole field.
func (p *SensorPanel) ShowResult(res *forward.Result) {
	for _, kind := range sensors.Kinds {
		chs, vals := res.ByKind(kind)
		p.titles[kind].SetText(strings.Replace(kind.Label(), "Evoked", "Dipole", 1))
		p.maps[kind].SetData(chs, vals)
	}
}
