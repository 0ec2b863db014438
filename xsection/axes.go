// xsection/axes.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"strconv"

	"github.com/mmp/xsect/renderer"
)

// distanceTickInterval returns the distance between ticks along the route
// axis, in nm, chosen so label density stays reasonable for any route
// length.
func distanceTickInterval(totalDistance float32) float32 {
	switch {
	case totalDistance <= 50:
		return 10
	case totalDistance <= 150:
		return 25
	case totalDistance <= 300:
		return 50
	case totalDistance <= 600:
		return 100
	default:
		return 200
	}
}

// altitudeTickInterval returns the spacing of the altitude gridlines in
// feet.
func altitudeTickInterval(axisMax float32) float32 {
	switch {
	case axisMax > 15000:
		return 5000
	case axisMax > 8000:
		return 2000
	default:
		return 1000
	}
}

// tickValues returns the multiples of step from 0 through limit,
// inclusive. The ticks come from an integer counter rather than repeated
// addition so accumulated rounding can't drop the final tick.
func tickValues(limit, step float32) []float32 {
	var ticks []float32
	for i := 0; ; i++ {
		v := float32(i) * step
		if v > limit {
			return ticks
		}
		ticks = append(ticks, v)
	}
}

var (
	gridColor     = renderer.RGB{R: .18, G: .20, B: .24}
	borderColor   = renderer.RGB{R: .40, G: .42, B: .48}
	axisTextColor = renderer.RGB{R: .65, G: .68, B: .72}
	waypointColor = renderer.RGB{R: .52, G: .46, B: .62}
)

// drawAxes draws the gridlines, tick labels, waypoint markers, and plot
// border. It is not part of the layer registry: the labels live in the
// margins, so it runs before the plot-rectangle scissor is set.
func drawAxes(ctx *layerContext) {
	plot := ctx.tr.PlotRect()
	grid := renderer.GetLinesDrawBuilder()
	defer renderer.ReturnLinesDrawBuilder(grid)
	td := renderer.GetTextDrawBuilder()
	defer renderer.ReturnTextDrawBuilder(td)
	style := renderer.TextStyle{Font: ctx.font, Color: axisTextColor}

	if dt := distanceTickInterval(ctx.ds.TotalDistance); ctx.ds.TotalDistance > 0 {
		for _, d := range tickValues(ctx.ds.TotalDistance, dt) {
			x := ctx.tr.DistanceToX(d)
			grid.AddLine([2]float32{x, plot.P0[1]}, [2]float32{x, plot.P1[1]})
			if ctx.font != nil {
				label := strconv.Itoa(int(d))
				w, _ := ctx.font.BoundText(label, 0)
				td.AddText(label, [2]float32{x - float32(w)/2, plot.P0[1] - 4}, style)
			}
		}
	}

	axisMax := ctx.ds.AltitudeMax()
	if at := altitudeTickInterval(axisMax); axisMax > 0 {
		for _, alt := range tickValues(axisMax, at) {
			y := ctx.tr.AltitudeToY(alt)
			grid.AddLine([2]float32{plot.P0[0], y}, [2]float32{plot.P1[0], y})
			if ctx.font != nil {
				label := strconv.Itoa(int(alt))
				w, h := ctx.font.BoundText(label, 0)
				td.AddText(label, [2]float32{plot.P0[0] - 4 - float32(w), y + float32(h)/2}, style)
			}
		}
	}

	ctx.cb.SetRGB(gridColor)
	ctx.cb.LineWidth(1, ctx.scale)
	grid.GenerateCommands(ctx.cb)

	if len(ctx.ds.Waypoints) > 0 {
		wp := renderer.GetLinesDrawBuilder()
		defer renderer.ReturnLinesDrawBuilder(wp)
		wpStyle := renderer.TextStyle{Font: ctx.font, Color: waypointColor}
		for _, w := range ctx.ds.Waypoints {
			x := ctx.tr.DistanceToX(w.DistanceNM)
			wp.AddLine([2]float32{x, plot.P0[1]}, [2]float32{x, plot.P1[1]})
			if ctx.font != nil && w.Ident != "" {
				td.AddTextCentered(w.Ident, [2]float32{x, plot.P1[1] - 2}, wpStyle)
			}
		}
		ctx.cb.SetRGB(waypointColor)
		wp.GenerateCommands(ctx.cb)
	}

	border := renderer.GetLinesDrawBuilder()
	defer renderer.ReturnLinesDrawBuilder(border)
	border.AddLineLoop([][2]float32{
		{plot.P0[0], plot.P0[1]}, {plot.P1[0], plot.P0[1]},
		{plot.P1[0], plot.P1[1]}, {plot.P0[0], plot.P1[1]},
	})
	ctx.cb.SetRGB(borderColor)
	border.GenerateCommands(ctx.cb)

	td.GenerateCommands(ctx.cb)
}
