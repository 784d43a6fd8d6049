// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dipole-explorer/internal/app"
	"dipole-explorer/internal/config"
	"dipole-explorer/internal/forward"
	"dipole-explorer/internal/logging"
	"dipole-explorer/internal/mri"
	"dipole-explorer/internal/sensors"
	"dipole-explorer/internal/version"
	"dipole-explorer/pkg/geometry"
	"dipole-explorer/ui/canvas"
	"dipole-explorer/ui/panels"
	"dipole-explorer/ui/prefs"
)

// Deps bundles everything the window needs from main.
type Deps struct {
	Config *config.Config
	State  *app.State
	Router *app.Router
	Volume *mri.Volume
	Layout *sensors.Layout
	Evoked *sensors.Evoked
	Prefs  *prefs.Prefs

	// LogSink feeds the Log tab.
	LogSink *logging.RingWriter
}

// MainWindow is the primary application window: the simulator tab with
// the three slice views, plus log, help, and about tabs.
type MainWindow struct {
	fyne.Window
	app  fyne.App
	deps Deps

	views       [3]*canvas.SliceView
	viewTitles  [3]*widget.Label
	controls    *panels.ControlPanel
	sensorPanel *panels.SensorPanel
	statusBar   *widget.Label
	logView     *widget.Label
}

// New creates the main window.
func New(fyneApp fyne.App, deps Deps) *MainWindow {
	win := fyneApp.NewWindow(version.AppName)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		deps:   deps,
	}

	mw.setupUI()
	mw.setupEventHandlers()
	mw.restoreWindowSize()

	return mw
}

// sliceExtent bounds one view's in-plane region by the companion axes'
// browse ranges.
func (mw *MainWindow) sliceExtent(axis geometry.Axis) mri.SliceExtent {
	hAxis, vAxis := axis.InPlane()
	h := mw.deps.State.Slice(hAxis)
	v := mw.deps.State.Slice(vAxis)
	return mri.SliceExtent{HMin: h.Min, HMax: h.Max, VMin: v.Min, VMax: v.Max}
}

func (mw *MainWindow) setupUI() {
	enhance := mw.deps.Prefs.Bool(prefs.KeyEnhance, mw.deps.Config.MRI.Enhance)

	var viewRow []fyne.CanvasObject
	for _, axis := range geometry.Axes {
		sv := canvas.NewSliceView(axis, mw.deps.Volume, mw.sliceExtent(axis))
		sv.SetEnhance(enhance, mw.deps.Config.MRI.ClipLimit)
		sv.SetCrosshair(mw.deps.State.Crosshair())
		sv.OnClick(mw.deps.Router.HandleClick)

		title := widget.NewLabelWithStyle(sv.Title(), fyne.TextAlignCenter, fyne.TextStyle{})
		mw.views[axis] = sv
		mw.viewTitles[axis] = title
		viewRow = append(viewRow, container.NewBorder(title, nil, nil, nil, sv))
	}

	mw.controls = panels.NewControlPanel(mw.deps.State, mw.deps.Config)
	mw.sensorPanel = panels.NewSensorPanel(mw.deps.Layout, mw.deps.Evoked)
	mw.statusBar = widget.NewLabel("Ready.")

	slices := container.NewGridWithColumns(len(viewRow), viewRow...)
	plots := container.NewVSplit(slices, mw.sensorPanel.Container())
	plots.SetOffset(0.6)

	split := container.NewHSplit(mw.controls.Container(), plots)
	split.SetOffset(0.22)

	simulator := container.NewBorder(nil, container.NewPadded(mw.statusBar), nil, nil, split)

	mw.logView = widget.NewLabel("")
	mw.logView.Wrapping = fyne.TextWrapWord
	mw.logView.TextStyle = fyne.TextStyle{Monospace: true}
	logScroll := container.NewScroll(mw.logView)
	if sink := mw.deps.LogSink; sink != nil {
		mw.logView.SetText(sink.String())
		// Handlers run on the event thread, so the sink is written there too.
		sink.OnWrite(func() {
			mw.logView.SetText(sink.String())
			logScroll.ScrollToBottom()
		})
	}

	tabs := container.NewAppTabs(
		container.NewTabItem("Dipole Simulator", simulator),
		container.NewTabItem("Log", logScroll),
		container.NewTabItem("Help", helpContent()),
		container.NewTabItem("About", mw.aboutContent()),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	mw.SetContent(tabs)
}

func (mw *MainWindow) setupEventHandlers() {
	state := mw.deps.State

	state.On(app.EventSliceChanged, func(data interface{}) {
		axis, ok := data.(geometry.Axis)
		if !ok {
			return
		}
		mw.views[axis].SetSlicePos(state.Slice(axis).Val)
		mw.viewTitles[axis].SetText(mw.views[axis].Title())
		cross := state.Crosshair()
		for _, sv := range mw.views {
			sv.SetCrosshair(cross)
		}
	})

	state.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(app.Mode); ok {
			mw.updateStatus(m.String())
		}
	})

	state.On(app.EventDipoleChanged, func(interface{}) {
		for _, sv := range mw.views {
			sv.SetMarkers(state.DipolePos(), state.DipoleOri())
		}
	})

	state.On(app.EventBusyChanged, func(data interface{}) {
		if busy, ok := data.(bool); ok && busy {
			mw.updateStatus("Updating…")
		} else {
			mw.updateStatus("Ready.")
		}
	})

	state.On(app.EventFieldComputed, func(data interface{}) {
		if res, ok := data.(*forward.Result); ok {
			mw.sensorPanel.ShowResult(res)
		}
	})

	state.On(app.EventReset, func(interface{}) {
		for _, axis := range geometry.Axes {
			mw.views[axis].SetSlicePos(state.Slice(axis).Val)
			mw.viewTitles[axis].SetText(mw.views[axis].Title())
			mw.views[axis].SetCrosshair(state.Crosshair())
			mw.views[axis].SetMarkers(nil, nil)
		}
		mw.sensorPanel.ShowEvoked()
		mw.updateStatus("Ready.")
	})
}

func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) restoreWindowSize() {
	w := float32(mw.deps.Prefs.Float(prefs.KeyWindowWidth, 1200))
	h := float32(mw.deps.Prefs.Float(prefs.KeyWindowHeight, 800))
	mw.Resize(fyne.NewSize(w, h))

	mw.SetOnClosed(func() {
		size := mw.Canvas().Size()
		mw.deps.Prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
		mw.deps.Prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
		_ = mw.deps.Prefs.Save()
	})
}

func helpContent() fyne.CanvasObject {
	text := `Browsing
  Click any slice view to move the other two slices to that point.

Placing a dipole
  1. Switch the mode to "Set dipole position" and click where the
     dipole sits.
  2. Switch to "Set dipole orientation" and click the point it should
     point toward.
  Once both are set and distinct, the sensor maps below update with
  the simulated field. Changing the amplitude or the exact-solution
  toggle recomputes it.

Exact solution
  By default fields come from a precomputed lookup table on a coarse
  grid. "Exact solution (slow!)" evaluates the spherical conductor
  model at the exact position instead.

Reset
  Clears the dipole, restores the default slices and amplitude, and
  brings back the evoked topographies.`

	lbl := widget.NewLabel(text)
	lbl.Wrapping = fyne.TextWrapWord
	return container.NewScroll(lbl)
}

func (mw *MainWindow) aboutContent() fyne.CanvasObject {
	text := fmt.Sprintf(`%s v%s

Interactive dipole field simulator: browse a head MRI, place a current
dipole, and inspect the predicted MEG/EEG sensor topographies.

Subject: %s
Built: %s
Commit: %s`,
		version.AppName, version.Version,
		mw.deps.Config.Subject,
		version.BuildTime, version.GitCommit)

	lbl := widget.NewLabel(text)
	lbl.Wrapping = fyne.TextWrapWord
	return container.NewScroll(lbl)
}
