// Package panels provides the control sidebar and the sensor map panel.
package panels

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dipole-explorer/internal/app"
	"dipole-explorer/internal/config"
	"dipole-explorer/pkg/geometry"
)

// ControlPanel holds the interaction controls: the mode selector, the
// amplitude slider, the exact-solution toggle, the dipole readouts, and
// the reset button.
type ControlPanel struct {
	state *app.State

	modeRadio      *widget.RadioGroup
	amplitude      *widget.Slider
	amplitudeLabel *widget.Label
	exactCheck     *widget.Check
	posLabel       *widget.Label
	oriLabel       *widget.Label

	container fyne.CanvasObject
}

var modeOptions = []string{
	app.ModeBrowsing.String(),
	app.ModeSettingPosition.String(),
	app.ModeSettingOrientation.String(),
}

// NewControlPanel builds the panel and wires it to the state.
func NewControlPanel(state *app.State, cfg *config.Config) *ControlPanel {
	p := &ControlPanel{state: state}

	p.modeRadio = widget.NewRadioGroup(modeOptions, func(selected string) {
		for i, opt := range modeOptions {
			if opt == selected {
				state.SetMode(app.Mode(i))
				return
			}
		}
	})
	p.modeRadio.SetSelected(modeOptions[app.ModeBrowsing])

	p.amplitude = widget.NewSlider(cfg.Dipole.AmplitudeMinNAm, cfg.Dipole.AmplitudeMaxNAm)
	p.amplitude.Step = cfg.Dipole.AmplitudeStepNAm
	p.amplitude.Value = cfg.Dipole.AmplitudeNAm
	p.amplitudeLabel = widget.NewLabel(formatAmplitude(cfg.Dipole.AmplitudeNAm))
	p.amplitude.OnChanged = func(v float64) {
		p.amplitudeLabel.SetText(formatAmplitude(v))
		state.SetAmplitudeNAm(v)
	}

	p.exactCheck = widget.NewCheck("Exact solution (slow!)", func(on bool) {
		state.SetExact(on)
	})

	p.posLabel = widget.NewLabel("Position: not set")
	p.oriLabel = widget.NewLabel("Orientation: not set")

	resetBtn := widget.NewButton("Reset", func() {
		state.Reset()
	})

	p.container = container.NewVBox(
		widget.NewLabelWithStyle("Mode", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.modeRadio,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Dipole amplitude", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.amplitude,
		p.amplitudeLabel,
		p.exactCheck,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Dipole", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.posLabel,
		p.oriLabel,
		widget.NewSeparator(),
		resetBtn,
	)

	p.setupEventHandlers()
	return p
}

// Container returns the panel's layout root.
func (p *ControlPanel) Container() fyne.CanvasObject {
	return p.container
}

func (p *ControlPanel) setupEventHandlers() {
	p.state.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(app.Mode); ok {
			if p.modeRadio.Selected != m.String() {
				p.modeRadio.SetSelected(m.String())
			}
		}
	})

	p.state.On(app.EventDipoleChanged, func(interface{}) {
		p.updateReadouts()
	})

	p.state.On(app.EventReset, func(interface{}) {
		p.modeRadio.SetSelected(modeOptions[app.ModeBrowsing])
		p.amplitude.SetValue(p.state.AmplitudeNAm())
		p.amplitudeLabel.SetText(formatAmplitude(p.state.AmplitudeNAm()))
		p.exactCheck.SetChecked(false)
		p.updateReadouts()
	})
}

func (p *ControlPanel) updateReadouts() {
	p.posLabel.SetText("Position: " + formatPoint(p.state.DipolePos()))
	p.oriLabel.SetText("Orientation: " + formatPoint(p.state.DipoleOri()))
}

func formatAmplitude(nam float64) string {
	return fmt.Sprintf("%.0f nAm", nam)
}

func formatPoint(p *geometry.Vec3) string {
	if p == nil {
		return "not set"
	}
	return fmt.Sprintf("(%.0f, %.0f, %.0f) mm", p.X, p.Y, p.Z)
}
