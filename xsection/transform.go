// xsection/transform.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"github.com/mmp/xsect/math"
	"github.com/mmp/xsect/wx"
)

// Margins reserved for the axis labels, in pixels: the wide left margin
// holds the altitude labels, the bottom margin the distance labels.
const (
	marginLeft   = 48
	marginRight  = 12
	marginTop    = 10
	marginBottom = 26
)

// Transform maps between chart quantities (distance in nm, altitude in
// feet) and pane pixel coordinates. Pane coordinates have y increasing
// upward, so altitude 0 maps to the bottom of the plot rectangle and the
// axis maximum to its top.
//
// A Transform is an ephemeral value: it is recomputed whenever the pane
// size or the dataset changes and must never be cached across resizes.
type Transform struct {
	plot          math.Extent2D
	totalDistance float32
	altitudeMax   float32
}

// MakeTransform computes the transform for the given dataset and pane
// extent, in pane-local coordinates starting at (0,0).
func MakeTransform(ds *wx.ChartDataset, paneExtent math.Extent2D) Transform {
	w, h := paneExtent.Width(), paneExtent.Height()
	plot := math.Extent2D{
		P0: [2]float32{marginLeft, marginBottom},
		P1: [2]float32{max(w-marginRight, marginLeft), max(h-marginTop, marginBottom)},
	}
	return Transform{
		plot:          plot,
		totalDistance: ds.TotalDistance,
		altitudeMax:   ds.AltitudeMax(),
	}
}

// PlotRect returns the pixel region inside the axis margins where data is
// drawn.
func (t *Transform) PlotRect() math.Extent2D { return t.plot }

func (t *Transform) DistanceToX(d float32) float32 {
	if t.totalDistance == 0 {
		return t.plot.P0[0]
	}
	return t.plot.P0[0] + d/t.totalDistance*t.plot.Width()
}

func (t *Transform) XToDistance(x float32) float32 {
	if t.plot.Width() == 0 {
		return 0
	}
	return (x - t.plot.P0[0]) / t.plot.Width() * t.totalDistance
}

func (t *Transform) AltitudeToY(alt float32) float32 {
	if t.altitudeMax == 0 {
		return t.plot.P0[1]
	}
	return t.plot.P0[1] + alt/t.altitudeMax*t.plot.Height()
}

func (t *Transform) YToAltitude(y float32) float32 {
	if t.plot.Height() == 0 {
		return 0
	}
	return (y - t.plot.P0[1]) / t.plot.Height() * t.altitudeMax
}

// ToPoint maps a (distance, altitude) pair to pane pixels.
func (t *Transform) ToPoint(d, alt float32) [2]float32 {
	return [2]float32{t.DistanceToX(d), t.AltitudeToY(alt)}
}
