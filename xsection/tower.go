// xsection/tower.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"math/bits"
	"strings"

	"github.com/mmp/xsect/math"
	"github.com/mmp/xsect/renderer"
	"github.com/mmp/xsect/wx"
)

// Minimum believable tower depth; below this the thermodynamic EL is
// treated as unreliable and a proxy top is substituted.
const minTowerDepth = 3000

// towerHatch is a 32x32 diagonal-stripe stipple pattern used to
// distinguish the convective column from the plain hazard bands.
var towerHatch [32]uint32

func init() {
	for i := range towerHatch {
		towerHatch[i] = bits.RotateLeft32(0x08080808, i%8)
	}
	// glPolygonStipple expects the bits in each byte reversed with respect
	// to how the pattern reads in source.
	for i, p := range towerHatch {
		towerHatch[i] = uint32(bits.Reverse8(uint8(p)))<<24 |
			uint32(bits.Reverse8(uint8(p>>8)))<<16 |
			uint32(bits.Reverse8(uint8(p>>16)))<<8 |
			uint32(bits.Reverse8(uint8(p>>24)))
	}
}

// towerExtent returns the altitude extent of the convective tower for one
// sample. The base is the LFC when resolved, else the LCL. Shallow towers
// (EL less than 3,000 ft above the base) get a proxy top appropriate to
// the risk level, but the visual top never drops below the thermodynamic
// EL. bounded is false when the base or EL is missing; the caller then
// draws a full-height column instead.
func towerExtent(c *wx.Conditions) (base, top float32, bounded bool) {
	b := c.LFC
	if b == nil {
		b = c.LCL
	}
	if b == nil || c.EL == nil {
		return 0, 0, false
	}

	base = *b
	el := *c.EL
	if el-base >= minTowerDepth {
		return base, el, true
	}

	proxy := base + 4000
	if c.Convective <= wx.ConvectiveLow {
		if c.FreezingLevel != nil {
			proxy = *c.FreezingLevel + 2000
		}
	} else if c.IsothermM20 != nil {
		proxy = *c.IsothermM20
	} else if c.IsothermM10 != nil {
		proxy = *c.IsothermM10
	}

	return base, math.Max(proxy, el), true
}

func convectiveColor(r wx.ConvectiveRisk) renderer.RGB {
	switch r {
	case wx.ConvectiveMarginal:
		return renderer.RGBFromHex(0xf6e05e)
	case wx.ConvectiveLow:
		return renderer.RGBFromHex(0xf6ad55)
	case wx.ConvectiveModerate:
		return renderer.RGBFromHex(0xed8936)
	default:
		return renderer.RGBFromHex(0xe53e3e)
	}
}

// drawConvective draws a column for every sample whose convective risk is
// above none: a translucent wash, a diagonal hatch, an outline, and for a
// bounded tower a highlighted anvil strip at the top plus a text badge at
// moderate-or-higher risk.
func drawConvective(ctx *layerContext) {
	samples := ctx.ds.Samples
	haveAny := false
	for i := range samples {
		haveAny = haveAny || samples[i].Convective > wx.ConvectiveNone
	}
	if !haveAny {
		return
	}

	xs := make([]float32, len(samples))
	for i := range samples {
		xs[i] = ctx.tr.DistanceToX(samples[i].DistanceNM)
	}

	plot := ctx.tr.PlotRect()

	// Outlines carry per-tower risk colors, so they batch into a single
	// colored draw after the fills.
	outlines := renderer.GetColoredLinesDrawBuilder()
	defer renderer.ReturnColoredLinesDrawBuilder(outlines)

	for i := range samples {
		c := &samples[i].Conditions
		if c.Convective == wx.ConvectiveNone {
			continue
		}

		x0, x1 := columnSpan(xs, i)
		base, top, bounded := towerExtent(c)
		yb, yt := plot.P0[1], plot.P1[1]
		if bounded {
			yb, yt = ctx.tr.AltitudeToY(base), ctx.tr.AltitudeToY(top)
		}

		color := convectiveColor(c.Convective)
		p := [4][2]float32{{x0, yb}, {x1, yb}, {x1, yt}, {x0, yt}}

		tb := renderer.GetTrianglesDrawBuilder()
		tb.AddQuad(p[0], p[1], p[2], p[3])

		ctx.cb.Blend()
		ctx.cb.SetRGBA(withAlpha(color, .15))
		tb.GenerateCommands(ctx.cb)

		ctx.cb.EnablePolygonStipple()
		ctx.cb.PolygonStipple(towerHatch)
		ctx.cb.SetRGBA(withAlpha(color, .5))
		tb.GenerateCommands(ctx.cb)
		ctx.cb.DisablePolygonStipple()
		renderer.ReturnTrianglesDrawBuilder(tb)

		if bounded {
			// Anvil strip just under the tower top.
			anvil := renderer.GetTrianglesDrawBuilder()
			ah := math.Min[float32](5, yt-yb)
			anvil.AddQuad([2]float32{x0, yt - ah}, [2]float32{x1, yt - ah},
				[2]float32{x1, yt}, [2]float32{x0, yt})
			ctx.cb.SetRGBA(withAlpha(color, .6))
			anvil.GenerateCommands(ctx.cb)
			renderer.ReturnTrianglesDrawBuilder(anvil)
		}
		ctx.cb.DisableBlend()

		outlines.AddLineLoop(color, p[:])

		if c.Convective >= wx.ConvectiveModerate && ctx.font != nil {
			td := renderer.GetTextDrawBuilder()
			badge := strings.ToUpper(c.Convective.String())
			td.AddTextCentered(badge, [2]float32{(x0 + x1) / 2, yt + 12},
				renderer.TextStyle{Font: ctx.font, Color: color,
					DrawBackground: true, BackgroundColor: renderer.RGB{R: .05, G: .05, B: .07}})
			td.GenerateCommands(ctx.cb)
			renderer.ReturnTextDrawBuilder(td)
		}
	}

	ctx.cb.LineWidth(1, ctx.scale)
	outlines.GenerateCommands(ctx.cb)
	ctx.cb.DisableColorArray()
}
