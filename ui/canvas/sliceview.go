package canvas

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"dipole-explorer/internal/mri"
	"dipole-explorer/pkg/geometry"
)

// SliceView displays one orthogonal MRI cross-section with the dipole
// glyphs and the browse crosshair. Clicks are reported in slice-local
// RAS mm for the plane's horizontal and vertical axes.
type SliceView struct {
	widget.BaseWidget

	axis geometry.Axis
	vol  *mri.Volume
	ext  mri.SliceExtent

	pos       float64
	crossH    float64
	crossV    float64
	markers   MarkerSet
	enhance   bool
	clipLimit float64

	raster *fynecanvas.Raster

	onClick func(axis geometry.Axis, h, v float64)
}

// NewSliceView creates the view for one axis. ext bounds the browsable
// in-plane region in mm.
func NewSliceView(axis geometry.Axis, vol *mri.Volume, ext mri.SliceExtent) *SliceView {
	sv := &SliceView{
		axis: axis,
		vol:  vol,
		ext:  ext,
	}
	sv.raster = fynecanvas.NewRaster(sv.draw)
	sv.raster.ScaleMode = fynecanvas.ImageScalePixels
	sv.ExtendBaseWidget(sv)
	return sv
}

// Axis returns the axis this view slices along.
func (sv *SliceView) Axis() geometry.Axis {
	return sv.axis
}

// Title returns the header for this view, e.g. "sagittal (x = 10 mm)".
func (sv *SliceView) Title() string {
	return fmt.Sprintf("%s (%s = %.0f mm)", sv.axis.PlaneName(), sv.axis, sv.pos)
}

// SetSlicePos moves the rendered cross-section along the view's axis.
func (sv *SliceView) SetSlicePos(pos float64) {
	sv.pos = pos
	sv.Refresh()
}

// SetCrosshair places the browse crosshair from a 3-D browsed position.
func (sv *SliceView) SetCrosshair(p geometry.Vec3) {
	hAxis, vAxis := sv.axis.InPlane()
	sv.crossH = p.Component(hAxis)
	sv.crossV = p.Component(vAxis)
	sv.Refresh()
}

// SetMarkers updates the dipole glyphs. Nil clears a glyph.
func (sv *SliceView) SetMarkers(pos, ori *geometry.Vec3) {
	sv.markers.Pos = pos
	sv.markers.Ori = ori
	sv.Refresh()
}

// SetEnhance toggles CLAHE contrast enhancement of the rendered slice.
func (sv *SliceView) SetEnhance(on bool, clipLimit float64) {
	sv.enhance = on
	sv.clipLimit = clipLimit
	sv.Refresh()
}

// OnClick sets the callback for clicks inside the view. Coordinates are
// in-plane mm.
func (sv *SliceView) OnClick(cb func(axis geometry.Axis, h, v float64)) {
	sv.onClick = cb
}

// Tapped converts a click to in-plane mm and reports it.
func (sv *SliceView) Tapped(ev *fyne.PointEvent) {
	if sv.onClick == nil {
		return
	}
	size := sv.Size()
	if size.Width < 2 || size.Height < 2 {
		return
	}
	// Events can arrive with positions outside the widget; drop them.
	bounds := geometry.NewRect(0, 0, float64(size.Width), float64(size.Height))
	if !bounds.Contains(geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))) {
		return
	}

	h := sv.ext.HMin + (sv.ext.HMax-sv.ext.HMin)*float64(ev.Position.X)/float64(size.Width-1)
	v := sv.ext.VMax - (sv.ext.VMax-sv.ext.VMin)*float64(ev.Position.Y)/float64(size.Height-1)
	sv.onClick(sv.axis, h, v)
}

// Refresh redraws the raster.
func (sv *SliceView) Refresh() {
	sv.raster.Refresh()
	sv.BaseWidget.Refresh()
}

// MinSize keeps the views usable for clicking.
func (sv *SliceView) MinSize() fyne.Size {
	return fyne.NewSize(240, 240)
}

// CreateRenderer implements fyne.Widget.
func (sv *SliceView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(sv.raster)
}

// project maps in-plane mm to pixel coordinates for the given output size.
func (sv *SliceView) project(w, h int) func(hmm, vmm float64) (int, int) {
	return func(hmm, vmm float64) (int, int) {
		px := int((hmm - sv.ext.HMin) / (sv.ext.HMax - sv.ext.HMin) * float64(w-1))
		py := int((sv.ext.VMax - vmm) / (sv.ext.VMax - sv.ext.VMin) * float64(h-1))
		return px, py
	}
}

// draw is the raster drawing function.
func (sv *SliceView) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w < 2 || h < 2 || sv.vol == nil {
		return out
	}
	// Render at 1 px/mm so the CLAHE tile grid is independent of the
	// widget size, then scale up to the output.
	mmW := int(sv.ext.HMax-sv.ext.HMin) + 1
	mmH := int(sv.ext.VMax-sv.ext.VMin) + 1
	gray := sv.vol.RenderSlice(sv.axis, sv.pos, sv.ext, mmW, mmH)
	if sv.enhance {
		if enhanced, err := mri.EnhanceContrast(gray, sv.clipLimit); err == nil {
			gray = enhanced
		}
	}
	xdraw.BiLinear.Scale(out, out.Bounds(), gray, gray.Bounds(), xdraw.Src, nil)

	project := sv.project(w, h)

	// Crosshair at the browsed in-plane position.
	cx, cy := project(sv.crossH, sv.crossV)
	for y := 0; y < h; y++ {
		setPixel(out, cx, y, crosshairColor)
	}
	for x := 0; x < w; x++ {
		setPixel(out, x, cy, crosshairColor)
	}

	hAxis, vAxis := sv.axis.InPlane()
	sv.markers.Draw(out, hAxis, vAxis, project)

	return out
}
