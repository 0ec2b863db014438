// xsection/layers.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"sort"

	"github.com/mmp/xsect/math"
	"github.com/mmp/xsect/renderer"
	"github.com/mmp/xsect/wx"
)

// layerContext carries everything a layer needs for one draw call. Layers
// are stateless: every call recomputes output from the dataset and
// transform alone.
type layerContext struct {
	ds    *wx.ChartDataset
	tr    *Transform
	mode  RenderMode
	cb    *renderer.CommandBuffer
	font  *renderer.Font
	scale float32 // device pixel scale for line widths and scissoring
}

// Layer describes one independently-toggleable chart layer. The z-order of
// the chart is the registration order in chartLayers; it is fixed and not
// user-configurable.
type Layer struct {
	Id             LayerId
	Name           string
	Group          string
	DefaultEnabled bool
	Draw           func(*layerContext)
}

var chartLayers = []Layer{
	{Id: LayerTerrain, Name: "Terrain", Group: "Chart", DefaultEnabled: true, Draw: drawTerrain},
	{Id: LayerConvective, Name: "Convective", Group: "Hazards", DefaultEnabled: true, Draw: drawConvective},
	{Id: LayerClouds, Name: "Clouds", Group: "Hazards", DefaultEnabled: true, Draw: drawClouds},
	{Id: LayerIcing, Name: "Icing", Group: "Hazards", DefaultEnabled: true, Draw: drawIcing},
	{Id: LayerTurbulence, Name: "Turbulence", Group: "Hazards", DefaultEnabled: true, Draw: drawTurbulence},
	{Id: LayerInversions, Name: "Inversions", Group: "Hazards", DefaultEnabled: false, Draw: drawInversions},
	{Id: LayerFreezingLevel, Name: "Freezing level", Group: "Temperature", DefaultEnabled: true,
		Draw: markerLineLayer(func(c *wx.Conditions) *float32 { return c.FreezingLevel }, freezingColor, "0°C")},
	{Id: LayerIsothermM10, Name: "-10°C", Group: "Temperature", DefaultEnabled: true,
		Draw: markerLineLayer(func(c *wx.Conditions) *float32 { return c.IsothermM10 }, isoM10Color, "-10°C")},
	{Id: LayerIsothermM20, Name: "-20°C", Group: "Temperature", DefaultEnabled: true,
		Draw: markerLineLayer(func(c *wx.Conditions) *float32 { return c.IsothermM20 }, isoM20Color, "-20°C")},
	{Id: LayerLCL, Name: "LCL", Group: "Stability", DefaultEnabled: false,
		Draw: markerLineLayer(func(c *wx.Conditions) *float32 { return c.LCL }, lclColor, "LCL")},
	{Id: LayerLFC, Name: "LFC", Group: "Stability", DefaultEnabled: false,
		Draw: markerLineLayer(func(c *wx.Conditions) *float32 { return c.LFC }, lfcColor, "LFC")},
	{Id: LayerEL, Name: "EL", Group: "Stability", DefaultEnabled: false,
		Draw: markerLineLayer(func(c *wx.Conditions) *float32 { return c.EL }, elColor, "EL")},
	{Id: LayerCruise, Name: "Cruise altitude", Group: "Reference", DefaultEnabled: true, Draw: drawCruise},
	{Id: LayerCeiling, Name: "Ceiling", Group: "Reference", DefaultEnabled: true, Draw: drawCeiling},
}

// LayerGroups returns the distinct group tags in registration order, for
// building the control panel.
func LayerGroups() []string {
	var groups []string
	seen := make(map[string]interface{})
	for _, l := range chartLayers {
		if _, ok := seen[l.Group]; !ok {
			seen[l.Group] = nil
			groups = append(groups, l.Group)
		}
	}
	return groups
}

// Layers returns the registered layers in z-order.
func Layers() []Layer { return chartLayers }

///////////////////////////////////////////////////////////////////////////
// Palette

var (
	terrainFillColor    = renderer.RGBFromHex(0x4a3b2a)
	terrainOutlineColor = renderer.RGBFromHex(0x6e5a40)

	cloudColor = renderer.RGBFromHex(0x9aa4ae)

	freezingColor = renderer.RGBFromHex(0x63b3ed)
	isoM10Color   = renderer.RGBFromHex(0x4c86c8)
	isoM20Color   = renderer.RGBFromHex(0x9f7aea)
	lclColor      = renderer.RGBFromHex(0x68d391)
	lfcColor      = renderer.RGBFromHex(0xf6ad55)
	elColor       = renderer.RGBFromHex(0xfc8181)
	cruiseColor   = renderer.RGBFromHex(0x4fd1c5)
	ceilingColor  = renderer.RGBFromHex(0xa0aec0)
)

func withAlpha(c renderer.RGB, a float32) renderer.RGBA {
	return renderer.RGBA{R: c.R, G: c.G, B: c.B, A: a}
}

func cloudFill(sev int) renderer.RGBA {
	alpha := [...]float32{0, .20, .32, .45, .60}
	return withAlpha(cloudColor, alpha[math.Clamp(sev, 0, len(alpha)-1)])
}

func icingFill(sev int) renderer.RGBA {
	switch wx.IcingRisk(sev) {
	case wx.IcingTrace:
		return withAlpha(renderer.RGBFromHex(0x63b3ed), .30)
	case wx.IcingLight:
		return withAlpha(renderer.RGBFromHex(0x4299e1), .40)
	case wx.IcingModerate:
		return withAlpha(renderer.RGBFromHex(0x805ad5), .50)
	default:
		return withAlpha(renderer.RGBFromHex(0xd53f8c), .55)
	}
}

func turbulenceFill(sev int) renderer.RGBA {
	switch wx.TurbRisk(sev) {
	case wx.TurbLight:
		return withAlpha(renderer.RGBFromHex(0xecc94b), .35)
	case wx.TurbModerate:
		return withAlpha(renderer.RGBFromHex(0xed8936), .45)
	default:
		return withAlpha(renderer.RGBFromHex(0xe53e3e), .55)
	}
}

func inversionFill(sev int) renderer.RGBA {
	a := math.Clamp(.2+.05*float32(sev), .2, .5)
	return withAlpha(renderer.RGBFromHex(0xd6a756), a)
}

///////////////////////////////////////////////////////////////////////////
// Interval band layers

func cloudIntervals(c *wx.Conditions) []interval {
	var iv []interval
	for _, l := range c.CloudLayers {
		if l.Coverage > wx.CoverageNone {
			iv = append(iv, interval{Base: l.Base, Top: l.Top, Severity: int(l.Coverage)})
		}
	}
	return iv
}

func icingIntervals(c *wx.Conditions) []interval {
	var iv []interval
	for _, z := range c.IcingZones {
		if z.Risk > wx.IcingNone {
			iv = append(iv, interval{Base: z.Base, Top: z.Top, Severity: int(z.Risk)})
		}
	}
	return iv
}

func turbulenceIntervals(c *wx.Conditions) []interval {
	var iv []interval
	for _, l := range c.CATLayers {
		if l.Risk > wx.TurbNone {
			iv = append(iv, interval{Base: l.Base, Top: l.Top, Severity: int(l.Risk)})
		}
	}
	return iv
}

func inversionIntervals(c *wx.Conditions) []interval {
	var iv []interval
	for _, l := range c.Inversions {
		if l.Strength > 0 {
			iv = append(iv, interval{Base: l.Base, Top: l.Top,
				Severity: math.Clamp(int(l.Strength+0.5), 1, 8)})
		}
	}
	return iv
}

func drawClouds(ctx *layerContext)     { drawIntervalBands(ctx, cloudIntervals, cloudFill) }
func drawIcing(ctx *layerContext)      { drawIntervalBands(ctx, icingIntervals, icingFill) }
func drawTurbulence(ctx *layerContext) { drawIntervalBands(ctx, turbulenceIntervals, turbulenceFill) }
func drawInversions(ctx *layerContext) { drawIntervalBands(ctx, inversionIntervals, inversionFill) }

// drawIntervalBands renders one interval-carrying hazard category. In
// columns mode each sample's intervals become filled rectangles over the
// sample's distance span; in smooth mode adjacent samples' intervals are
// paired by matchIntervals and drawn as connecting band segments.
func drawIntervalBands(ctx *layerContext, intervalsAt func(*wx.Conditions) []interval,
	fill func(sev int) renderer.RGBA) {
	samples := ctx.ds.Samples

	perSample := make([][]interval, len(samples))
	haveAny := false
	for i := range samples {
		perSample[i] = intervalsAt(&samples[i].Conditions)
		haveAny = haveAny || len(perSample[i]) > 0
	}
	if !haveAny {
		return
	}

	// One triangle builder per severity so each gets its own fill color.
	builders := make(map[int]*renderer.TrianglesDrawBuilder)
	quads := func(sev int) *renderer.TrianglesDrawBuilder {
		tb, ok := builders[sev]
		if !ok {
			tb = renderer.GetTrianglesDrawBuilder()
			builders[sev] = tb
		}
		return tb
	}

	if ctx.mode == RenderColumns || len(samples) == 1 {
		xs := make([]float32, len(samples))
		for i := range samples {
			xs[i] = ctx.tr.DistanceToX(samples[i].DistanceNM)
		}
		for i := range samples {
			x0, x1 := columnSpan(xs, i)
			for _, iv := range perSample[i] {
				yb, yt := ctx.tr.AltitudeToY(iv.Base), ctx.tr.AltitudeToY(iv.Top)
				quads(iv.Severity).AddQuad([2]float32{x0, yb}, [2]float32{x1, yb},
					[2]float32{x1, yt}, [2]float32{x0, yt})
			}
		}
	} else {
		for i := 0; i+1 < len(samples); i++ {
			shapes := bandShapes(ctx.tr, samples[i].DistanceNM, samples[i+1].DistanceNM,
				perSample[i], perSample[i+1])
			for _, s := range shapes {
				if s.X1 <= s.X0 {
					// Coincident samples leave no horizontal extent.
					continue
				}
				drawBandStrip(quads(s.Severity), []float32{s.X0, s.X1},
					[]float32{s.Base0, s.Base1}, []float32{s.Top0, s.Top1})
			}
		}
	}

	// Lower severities first so the worse hazards draw on top.
	sevs := make([]int, 0, len(builders))
	for sev := range builders {
		sevs = append(sevs, sev)
	}
	sort.Ints(sevs)

	ctx.cb.Blend()
	for _, sev := range sevs {
		ctx.cb.SetRGBA(fill(sev))
		builders[sev].GenerateCommands(ctx.cb)
		renderer.ReturnTrianglesDrawBuilder(builders[sev])
	}
	ctx.cb.DisableBlend()
}

///////////////////////////////////////////////////////////////////////////
// Terrain

func drawTerrain(ctx *layerContext) {
	prof := ctx.ds.Terrain
	if prof == nil || len(prof.DistanceNM) == 0 {
		return
	}

	top := make([][2]float32, len(prof.DistanceNM))
	bottom := make([][2]float32, len(prof.DistanceNM))
	y0 := ctx.tr.AltitudeToY(0)
	for i, d := range prof.DistanceNM {
		x := ctx.tr.DistanceToX(d)
		top[i] = [2]float32{x, ctx.tr.AltitudeToY(prof.Elevation[i])}
		bottom[i] = [2]float32{x, y0}
	}

	tb := renderer.GetTrianglesDrawBuilder()
	defer renderer.ReturnTrianglesDrawBuilder(tb)
	tb.AddQuadStrip(top, bottom)
	ctx.cb.SetRGB(terrainFillColor)
	tb.GenerateCommands(ctx.cb)

	ld := renderer.GetLinesDrawBuilder()
	defer renderer.ReturnLinesDrawBuilder(ld)
	ld.AddLineStrip(top)
	ctx.cb.SetRGB(terrainOutlineColor)
	ctx.cb.LineWidth(1, ctx.scale)
	ld.GenerateCommands(ctx.cb)
}

///////////////////////////////////////////////////////////////////////////
// Altitude marker lines

// markerLineLayer builds the draw operation for one optional altitude
// marker (freezing level, isotherms, LCL/LFC/EL): a line through the
// samples that have the value, split at samples that don't, labeled at
// the right end of the plot.
func markerLineLayer(value func(*wx.Conditions) *float32, color renderer.RGB, label string) func(*layerContext) {
	return func(ctx *layerContext) {
		samples := ctx.ds.Samples
		cond := func(s *wx.ChartSample) *float32 { return value(&s.Conditions) }

		var lastY float32
		have := false
		for i := range samples {
			if v := cond(&samples[i]); v != nil {
				lastY = ctx.tr.AltitudeToY(*v)
				have = true
			}
		}
		if !have {
			return
		}

		ld := renderer.GetLinesDrawBuilder()
		defer renderer.ReturnLinesDrawBuilder(ld)
		drawValueLine(ld, ctx.tr, ctx.mode, samples, cond)
		ctx.cb.SetRGB(color)
		ctx.cb.LineWidth(1, ctx.scale)
		ld.GenerateCommands(ctx.cb)

		if ctx.font != nil {
			td := renderer.GetTextDrawBuilder()
			defer renderer.ReturnTextDrawBuilder(td)
			w, h := ctx.font.BoundText(label, 0)
			p := [2]float32{ctx.tr.PlotRect().P1[0] - float32(w) - 2, lastY + float32(h) + 1}
			td.AddText(label, p, renderer.TextStyle{Font: ctx.font, Color: color})
			td.GenerateCommands(ctx.cb)
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Reference lines

func drawCruise(ctx *layerContext) {
	drawReferenceLine(ctx, ctx.ds.CruiseAltitude, cruiseColor, "CRZ", false)
}

func drawCeiling(ctx *layerContext) {
	drawReferenceLine(ctx, ctx.ds.Ceiling, ceilingColor, "CEIL", true)
}

func drawReferenceLine(ctx *layerContext, alt float32, color renderer.RGB, label string, dashed bool) {
	if alt <= 0 {
		return
	}
	plot := ctx.tr.PlotRect()
	y := ctx.tr.AltitudeToY(alt)

	ld := renderer.GetLinesDrawBuilder()
	defer renderer.ReturnLinesDrawBuilder(ld)
	if dashed {
		addDashedHorizontal(ld, plot.P0[0], plot.P1[0], y, 6, 4)
	} else {
		ld.AddLine([2]float32{plot.P0[0], y}, [2]float32{plot.P1[0], y})
	}
	ctx.cb.SetRGB(color)
	ctx.cb.LineWidth(1, ctx.scale)
	ld.GenerateCommands(ctx.cb)

	if ctx.font != nil {
		td := renderer.GetTextDrawBuilder()
		defer renderer.ReturnTextDrawBuilder(td)
		_, h := ctx.font.BoundText(label, 0)
		td.AddText(label, [2]float32{plot.P0[0] + 2, y + float32(h) + 1},
			renderer.TextStyle{Font: ctx.font, Color: color})
		td.GenerateCommands(ctx.cb)
	}
}

func addDashedHorizontal(ld *renderer.LinesDrawBuilder, x0, x1, y, dash, gap float32) {
	for x := x0; x < x1; x += dash + gap {
		ld.AddLine([2]float32{x, y}, [2]float32{math.Min(x+dash, x1), y})
	}
}
