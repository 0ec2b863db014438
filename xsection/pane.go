// xsection/pane.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmp/xsect/log"
	"github.com/mmp/xsect/math"
	"github.com/mmp/xsect/platform"
	"github.com/mmp/xsect/renderer"
	"github.com/mmp/xsect/wx"

	"github.com/AllenDang/cimgui-go/imgui"
)

// Context bundles the per-frame state the host hands to the pane's Draw
// method.
type Context struct {
	PaneExtent     math.Extent2D
	DisplaySize    [2]float32
	DPIScale       float32
	DrawPixelScale float32
	Renderer       renderer.Renderer
	Platform       platform.Platform
	Mouse          *platform.MouseState
	Keyboard       *platform.KeyboardState
	Now            time.Time
	Lg             *log.Logger
}

// WindowToPane converts a window coordinate (origin upper-left, y down)
// to pane coordinates (origin at the pane's lower-left, y up).
func (ctx *Context) WindowToPane(p [2]float32) [2]float32 {
	return [2]float32{
		p[0] - ctx.PaneExtent.P0[0],
		ctx.DisplaySize[1] - 1 - ctx.PaneExtent.P0[1] - p[1],
	}
}

// InitializeMouse fetches the current mouse state and converts its
// position to pane coordinates.
func (ctx *Context) InitializeMouse() {
	ms := ctx.Platform.GetMouse()
	ms.Pos = ctx.WindowToPane(ms.Pos)
	ctx.Mouse = ms
}

// SetWindowCoordinateMatrices sets up projection and modelview matrices
// so that drawing commands are specified in pane pixel coordinates.
func (ctx *Context) SetWindowCoordinateMatrices(cb *renderer.CommandBuffer) {
	w := float32(int(ctx.PaneExtent.Width() + 0.5))
	h := float32(int(ctx.PaneExtent.Height() + 0.5))
	cb.LoadProjectionMatrix(math.Identity3x3().Ortho(0, w, 0, h))
	cb.LoadModelViewMatrix(math.Identity3x3())
}

var (
	chartBackgroundColor = renderer.RGB{R: .07, G: .08, B: .10}
	plotBackgroundColor  = renderer.RGB{R: .10, G: .11, B: .13}
	crosshairColor       = renderer.RGB{R: .85, G: .85, B: .88}
	selectionColor       = renderer.RGB{R: .35, G: .75, B: .95}
	tooltipTextColor     = renderer.RGB{R: .85, G: .87, B: .90}
	tooltipBackground    = renderer.RGB{R: .13, G: .14, B: .17}
)

// XSectionPane renders the weather cross-section chart. The expensive
// layer pipeline draws into a cached command buffer that is rebuilt only
// when the dataset, settings, or pane size change; pointer interaction
// (crosshair, tooltip, selection indicator) is drawn fresh each frame on
// top of the cached buffer, so hover never re-runs the layers.
type XSectionPane struct {
	ds       *wx.ChartDataset
	settings ViewSettings

	selected int // sample index, -1 for none
	onSelect func(int)

	base       renderer.CommandBuffer
	baseValid  bool
	baseExtent math.Extent2D
	baseScale  float32

	fontID      renderer.FontIdentifier
	font        *renderer.Font
	labelFont   *renderer.Font
	tooltipFont *renderer.Font
	lg          *log.Logger
}

func NewXSectionPane() *XSectionPane {
	return &XSectionPane{
		settings: DefaultViewSettings(),
		selected: -1,
	}
}

// Activate gives the pane its fonts; it must be called once after the
// renderer and font atlas are initialized and before the first Draw.
func (xp *XSectionPane) Activate(r renderer.Renderer, p platform.Platform, lg *log.Logger) {
	xp.lg = lg
	xp.fontID = renderer.FontIdentifier{Name: "Roboto Regular", Size: 12}
	xp.setFonts(renderer.GetFont(xp.fontID))
}

// setFonts derives the label and tooltip fonts from the main chart font:
// axis labels one step smaller, tooltips in the mono face so the figures
// line up.
func (xp *XSectionPane) setFonts(f *renderer.Font) {
	if f == nil {
		f = renderer.GetDefaultFont()
	}
	xp.font = f

	labelSize := xp.fontID.Size
	for _, s := range renderer.AvailableFontSizes(xp.fontID.Name) {
		if s < xp.fontID.Size {
			labelSize = s // sizes are sorted, so this ends at the largest smaller one
		}
	}
	xp.labelFont = renderer.GetFont(renderer.FontIdentifier{Name: xp.fontID.Name, Size: labelSize})
	if xp.labelFont == nil {
		xp.labelFont = xp.font
	}

	xp.tooltipFont = renderer.GetMonoFont(xp.fontID.Size)
	if xp.tooltipFont == nil {
		xp.tooltipFont = xp.font
	}
}

// SetDataset replaces the chart data and schedules a full redraw.
func (xp *XSectionPane) SetDataset(ds *wx.ChartDataset) {
	xp.ds = ds
	xp.selected = -1
	xp.baseValid = false
}

// SetViewSettings replaces the render mode and layer toggles.
func (xp *XSectionPane) SetViewSettings(s ViewSettings) {
	xp.settings = MergeViewSettings(DefaultViewSettings(), s)
	xp.baseValid = false
}

func (xp *XSectionPane) ViewSettings() ViewSettings { return xp.settings }

// SetSelectedIndex highlights the given sample, for selection driven from
// outside the pane. Only the overlay is affected.
func (xp *XSectionPane) SetSelectedIndex(i int) {
	if xp.ds == nil || i < 0 || i >= len(xp.ds.Samples) {
		xp.selected = -1
	} else {
		xp.selected = i
	}
}

func (xp *XSectionPane) SelectedIndex() int { return xp.selected }

// OnSelect registers the callback fired with a sample index when the user
// clicks in the plot.
func (xp *XSectionPane) OnSelect(cb func(int)) { xp.onSelect = cb }

// Draw renders the chart into cb. The cached base buffer is replayed and
// the interaction overlay drawn on top of it.
func (xp *XSectionPane) Draw(ctx *Context, cb *renderer.CommandBuffer) {
	if xp.ds == nil || len(xp.ds.Samples) == 0 ||
		ctx.PaneExtent.Width() <= 0 || ctx.PaneExtent.Height() <= 0 {
		return
	}

	// Pixel scale must be reapplied on every redraw since a resize resets
	// it.
	if !xp.baseValid || ctx.PaneExtent != xp.baseExtent || ctx.DrawPixelScale != xp.baseScale {
		xp.rebuildBase(ctx)
	}
	cb.Call(xp.base)

	xp.drawOverlay(ctx, cb)
}

func (xp *XSectionPane) rebuildBase(ctx *Context) {
	xp.base.Reset()
	xp.baseExtent = ctx.PaneExtent
	xp.baseScale = ctx.DrawPixelScale
	xp.baseValid = true

	cb := &xp.base
	ctx.SetWindowCoordinateMatrices(cb)

	paneRect := math.Extent2D{P1: [2]float32{ctx.PaneExtent.Width(), ctx.PaneExtent.Height()}}
	tr := MakeTransform(xp.ds, paneRect)

	bg := renderer.GetTrianglesDrawBuilder()
	defer renderer.ReturnTrianglesDrawBuilder(bg)
	bg.AddQuad(paneRect.P0, [2]float32{paneRect.P1[0], paneRect.P0[1]},
		paneRect.P1, [2]float32{paneRect.P0[0], paneRect.P1[1]})
	cb.SetRGB(chartBackgroundColor)
	bg.GenerateCommands(cb)

	plot := tr.PlotRect()
	tint := renderer.GetTrianglesDrawBuilder()
	defer renderer.ReturnTrianglesDrawBuilder(tint)
	tint.AddQuad(plot.P0, [2]float32{plot.P1[0], plot.P0[1]},
		plot.P1, [2]float32{plot.P0[0], plot.P1[1]})
	cb.SetRGB(plotBackgroundColor)
	tint.GenerateCommands(cb)

	lctx := &layerContext{
		ds:    xp.ds,
		tr:    &tr,
		mode:  xp.settings.Mode,
		cb:    cb,
		font:  xp.labelFont,
		scale: ctx.DrawPixelScale,
	}

	drawAxes(lctx)

	// Layers may not paint over the axis labels.
	cb.SetScissorBounds(plot, ctx.DrawPixelScale)
	for _, l := range chartLayers {
		if xp.settings.Enabled(l.Id) {
			l.Draw(lctx)
		}
	}
	cb.ResetState()
	ctx.SetWindowCoordinateMatrices(cb)
}

// nearestSample returns the index of the sample closest to the given
// distance; on an exact tie the lower index wins.
func (xp *XSectionPane) nearestSample(d float32) int {
	best, bestDelta := 0, math.Abs(xp.ds.Samples[0].DistanceNM-d)
	for i := 1; i < len(xp.ds.Samples); i++ {
		if delta := math.Abs(xp.ds.Samples[i].DistanceNM - d); delta < bestDelta {
			best, bestDelta = i, delta
		}
	}
	return best
}

func (xp *XSectionPane) drawOverlay(ctx *Context, cb *renderer.CommandBuffer) {
	paneRect := math.Extent2D{P1: [2]float32{ctx.PaneExtent.Width(), ctx.PaneExtent.Height()}}
	tr := MakeTransform(xp.ds, paneRect)
	plot := tr.PlotRect()

	ld := renderer.GetLinesDrawBuilder()
	defer renderer.ReturnLinesDrawBuilder(ld)

	if xp.selected >= 0 {
		x := tr.DistanceToX(xp.ds.Samples[xp.selected].DistanceNM)
		ld.AddLine([2]float32{x, plot.P0[1]}, [2]float32{x, plot.P1[1]})
		cb.SetRGB(selectionColor)
		cb.LineWidth(2, ctx.DrawPixelScale)
		ld.GenerateCommands(cb)
		ld.Reset()
	}

	mouse := ctx.Mouse
	if mouse == nil || !plot.Inside(mouse.Pos) {
		return
	}

	ld.AddLine([2]float32{mouse.Pos[0], plot.P0[1]}, [2]float32{mouse.Pos[0], plot.P1[1]})
	cb.SetRGB(crosshairColor)
	cb.LineWidth(1, ctx.DrawPixelScale)
	ld.GenerateCommands(cb)

	idx := xp.nearestSample(tr.XToDistance(mouse.Pos[0]))
	if mouse.Clicked[platform.MouseButtonPrimary] {
		xp.selected = idx
		if xp.onSelect != nil {
			xp.onSelect(idx)
		}
	}

	xp.drawTooltip(ctx, cb, idx, mouse.Pos)
}

func (xp *XSectionPane) drawTooltip(ctx *Context, cb *renderer.CommandBuffer, idx int, pos [2]float32) {
	if xp.tooltipFont == nil {
		return
	}
	s := &xp.ds.Samples[idx]
	text := strings.Join(xp.tooltipLines(idx, s), "\n")

	td := renderer.GetTextDrawBuilder()
	defer renderer.ReturnTextDrawBuilder(td)
	style := renderer.TextStyle{
		Font:            xp.tooltipFont,
		Color:           tooltipTextColor,
		DrawBackground:  true,
		BackgroundColor: tooltipBackground,
	}

	w, _ := xp.tooltipFont.BoundText(text, 0)
	p := [2]float32{pos[0] + 12, pos[1] - 8}
	if p[0]+float32(w) > ctx.PaneExtent.Width() {
		// Flip to the left of the pointer rather than overflowing the
		// right edge.
		p[0] = pos[0] - 12 - float32(w)
	}
	td.AddText(text, p, style)
	td.GenerateCommands(cb)
}

// Waypoints and samples come from independent sources, so idents are
// matched within a small distance rather than by exact equality.
const waypointMatchNM = 0.5

func (xp *XSectionPane) tooltipLines(idx int, s *wx.ChartSample) []string {
	title := fmt.Sprintf("Sample %d", idx)
	closest := float32(waypointMatchNM)
	for _, w := range xp.ds.Waypoints {
		if d := math.Abs(w.DistanceNM - s.DistanceNM); d <= closest && w.Ident != "" {
			title, closest = w.Ident, d
		}
	}

	lines := []string{
		title,
		fmt.Sprintf("%.0f nm", s.DistanceNM),
	}
	if !s.Time.IsZero() {
		lines = append(lines, s.Time.UTC().Format("15:04Z"))
	}
	if s.FreezingLevel != nil {
		lines = append(lines, fmt.Sprintf("0°C %.0f ft", *s.FreezingLevel))
	}
	if s.IsothermM10 != nil {
		lines = append(lines, fmt.Sprintf("-10°C %.0f ft", *s.IsothermM10))
	}
	if s.IsothermM20 != nil {
		lines = append(lines, fmt.Sprintf("-20°C %.0f ft", *s.IsothermM20))
	}
	if n := len(s.CloudLayers); n == 1 {
		lines = append(lines, "1 cloud layer")
	} else if n > 1 {
		lines = append(lines, fmt.Sprintf("%d cloud layers", n))
	}
	if risk := wx.WorstIcing(s); risk > wx.IcingNone {
		lines = append(lines, "Icing: "+risk.String())
	}
	if s.Convective > wx.ConvectiveNone {
		lines = append(lines, "Convective: "+s.Convective.String())
	}
	return lines
}

var layerGroupIcons = map[string]string{
	"Chart":       renderer.FontAwesomeIconMountain,
	"Hazards":     renderer.FontAwesomeIconExclamationTriangle,
	"Temperature": renderer.FontAwesomeIconSnowflake,
	"Stability":   renderer.FontAwesomeIconWind,
	"Reference":   renderer.FontAwesomeIconPlaneDeparture,
}

// DrawUI renders the imgui control panel for the pane: the render mode
// selector, chart font size, and the per-layer visibility toggles,
// grouped. It returns true if anything changed, in which case updated
// settings should be persisted by the host.
func (xp *XSectionPane) DrawUI() bool {
	changed := false

	if imgui.BeginCombo("Render mode", string(xp.settings.Mode)) {
		for _, mode := range []RenderMode{RenderSmooth, RenderColumns} {
			if imgui.SelectableBoolV(string(mode), mode == xp.settings.Mode, 0, imgui.Vec2{}) &&
				mode != xp.settings.Mode {
				xp.settings.Mode = mode
				changed = true
			}
		}
		imgui.EndCombo()
	}

	if newFont, ok := renderer.DrawFontSizeSelector(&xp.fontID); ok {
		xp.setFonts(newFont)
		changed = true
	}

	imgui.Separator()
	imgui.Text(renderer.FontAwesomeIconLayerGroup + " Layers")

	for _, group := range LayerGroups() {
		if icon, ok := layerGroupIcons[group]; ok {
			imgui.Text(icon + " " + group)
		} else {
			imgui.Text(group)
		}
		for _, l := range chartLayers {
			if l.Group != group {
				continue
			}
			en := xp.settings.Enabled(l.Id)
			if imgui.Checkbox(l.Name, &en) {
				xp.settings.Layers[l.Id] = en
				changed = true
			}
		}
	}

	imgui.Separator()
	if imgui.Button(renderer.FontAwesomeIconRedo + " Reset") {
		xp.settings = DefaultViewSettings()
		changed = true
	}

	if changed {
		xp.baseValid = false
	}
	return changed
}
