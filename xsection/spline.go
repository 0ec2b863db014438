// xsection/spline.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"github.com/mmp/xsect/math"
	"github.com/mmp/xsect/renderer"
	"github.com/mmp/xsect/wx"
)

// Number of line segments used to flatten each cubic segment.
const splineSegments = 8

// Half-width in pixels of the column drawn for a sample with no neighbors.
const isolatedColumnHalfWidth = 5

// monotoneTangents computes per-knot tangents for Fritsch-Carlson monotone
// cubic interpolation: each interior tangent starts as the average of its
// adjacent secants (zero if they change sign, which preserves local
// monotonicity), then tangents are rescaled where alpha^2+beta^2 > 9 to
// prevent overshoot.
func monotoneTangents(xs, ys []float32) []float32 {
	n := len(xs)
	m := make([]float32, n)
	if n < 2 {
		return m
	}

	// Secant slopes per segment.
	d := make([]float32, n-1)
	for i := 0; i < n-1; i++ {
		dx := xs[i+1] - xs[i]
		if dx != 0 {
			d[i] = (ys[i+1] - ys[i]) / dx
		}
	}

	m[0], m[n-1] = d[0], d[n-2]
	for i := 1; i < n-1; i++ {
		if d[i-1]*d[i] <= 0 {
			m[i] = 0
		} else {
			m[i] = (d[i-1] + d[i]) / 2
		}
	}

	for i := 0; i < n-1; i++ {
		if d[i] == 0 {
			m[i], m[i+1] = 0, 0
			continue
		}
		alpha, beta := m[i]/d[i], m[i+1]/d[i]
		if s := math.Sqr(alpha) + math.Sqr(beta); s > 9 {
			tau := 3 / math.Sqrt(s)
			m[i] = tau * alpha * d[i]
			m[i+1] = tau * beta * d[i]
		}
	}

	return m
}

// sampleMonotoneCubic flattens the monotone cubic through the given knots
// into a polyline. The curve passes through every knot exactly; the cubic
// Hermite evaluated here is the same curve as the Bezier whose control
// points sit at one third of the horizontal span, scaled by the tangents.
func sampleMonotoneCubic(xs, ys []float32, segs int) [][2]float32 {
	n := len(xs)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return [][2]float32{{xs[0], ys[0]}}
	}

	m := monotoneTangents(xs, ys)

	pts := make([][2]float32, 0, (n-1)*segs+1)
	pts = append(pts, [2]float32{xs[0], ys[0]})
	for i := 0; i < n-1; i++ {
		dx := xs[i+1] - xs[i]
		for j := 1; j <= segs; j++ {
			if j == segs {
				// Knots are hit exactly; don't let the Hermite evaluation
				// introduce roundoff at t=1.
				pts = append(pts, [2]float32{xs[i+1], ys[i+1]})
				break
			}
			t := float32(j) / float32(segs)
			h00 := (1 + 2*t) * math.Sqr(1-t)
			h10 := t * math.Sqr(1-t)
			h01 := math.Sqr(t) * (3 - 2*t)
			h11 := math.Sqr(t) * (t - 1)
			y := h00*ys[i] + h10*dx*m[i] + h01*ys[i+1] + h11*dx*m[i+1]
			pts = append(pts, [2]float32{xs[i] + t*dx, y})
		}
	}
	return pts
}

// valueRun is a maximal run of consecutive samples that all carry a value
// for some optional quantity, already mapped to pixel coordinates.
type valueRun struct {
	xs, ys []float32 // pixel coordinates
}

// pixelRuns splits the samples into runs wherever the value is missing;
// gaps are never bridged.
func pixelRuns(samples []wx.ChartSample, t *Transform, value func(*wx.ChartSample) *float32) []valueRun {
	var runs []valueRun
	var cur valueRun
	flush := func() {
		if len(cur.xs) > 0 {
			runs = append(runs, cur)
			cur = valueRun{}
		}
	}
	for i := range samples {
		v := value(&samples[i])
		if v == nil {
			flush()
			continue
		}
		cur.xs = append(cur.xs, t.DistanceToX(samples[i].DistanceNM))
		cur.ys = append(cur.ys, t.AltitudeToY(*v))
	}
	flush()
	return runs
}

// columnSpan returns the pixel x extent that the i'th point of a run owns:
// halfway to each neighbor (a 1-D Voronoi partition along distance), with
// a fixed fallback width for an isolated point.
func columnSpan(xs []float32, i int) (float32, float32) {
	var left, right float32
	switch {
	case len(xs) == 1:
		left, right = isolatedColumnHalfWidth, isolatedColumnHalfWidth
	case i == 0:
		right = (xs[1] - xs[0]) / 2
		left = right
	case i == len(xs)-1:
		left = (xs[i] - xs[i-1]) / 2
		right = left
	default:
		left = (xs[i] - xs[i-1]) / 2
		right = (xs[i+1] - xs[i]) / 2
	}
	return xs[i] - left, xs[i] + right
}

// drawValueLine draws an optional per-sample scalar (already in feet) as
// either a smooth spline or a horizontal step line, split into runs at
// missing values.
func drawValueLine(ld *renderer.LinesDrawBuilder, t *Transform, mode RenderMode,
	samples []wx.ChartSample, value func(*wx.ChartSample) *float32) {
	for _, run := range pixelRuns(samples, t, value) {
		if mode == RenderColumns {
			for i := range run.xs {
				x0, x1 := columnSpan(run.xs, i)
				ld.AddLine([2]float32{x0, run.ys[i]}, [2]float32{x1, run.ys[i]})
				if i+1 < len(run.xs) {
					// Vertical riser connecting adjacent steps.
					ld.AddLine([2]float32{x1, run.ys[i]}, [2]float32{x1, run.ys[i+1]})
				}
			}
		} else if len(run.xs) == 1 {
			x0, x1 := columnSpan(run.xs, 0)
			ld.AddLine([2]float32{x0, run.ys[0]}, [2]float32{x1, run.ys[0]})
		} else {
			ld.AddLineStrip(sampleMonotoneCubic(run.xs, run.ys, splineSegments))
		}
	}
}

// drawBandStrip fills the region between two monotone cubics, one through
// the base altitudes and one through the tops, sampled at shared x
// positions.
func drawBandStrip(tb *renderer.TrianglesDrawBuilder, xs, base, top []float32) {
	if len(xs) == 0 {
		return
	}
	if len(xs) == 1 {
		x0, x1 := columnSpan(xs, 0)
		tb.AddQuad([2]float32{x0, base[0]}, [2]float32{x1, base[0]},
			[2]float32{x1, top[0]}, [2]float32{x0, top[0]})
		return
	}
	topPts := sampleMonotoneCubic(xs, top, splineSegments)
	basePts := sampleMonotoneCubic(xs, base, splineSegments)
	tb.AddQuadStrip(topPts, basePts)
}
