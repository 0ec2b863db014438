// xsection/bands.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"github.com/mmp/xsect/math"
)

// interval is a vertical extent at one sample, with a severity rank used
// both for matching tie-breaks and for coloring the resulting band. It is
// the common currency for cloud layers, icing zones, turbulence layers,
// and inversions.
type interval struct {
	Base, Top float32 // feet MSL
	Severity  int
}

// bandMatch pairs an interval at the current sample with one at the next.
// Curr or Next is -1 for an interval that found no positive-overlap
// partner and tapers out instead.
type bandMatch struct {
	Curr, Next int
}

// Winner returns the index pair's higher-severity side; the band takes its
// color from that interval. With only one side present that side wins.
func (m bandMatch) Winner(curr, next []interval) (fromCurr bool, idx int) {
	switch {
	case m.Next == -1:
		return true, m.Curr
	case m.Curr == -1:
		return false, m.Next
	case next[m.Next].Severity > curr[m.Curr].Severity:
		return false, m.Next
	default:
		return true, m.Curr
	}
}

// matchIntervals greedily pairs intervals at one sample with intervals at
// the following sample. Each interval in curr, in order, claims the
// unclaimed next-side interval it overlaps the most (ties go to the higher
// severity candidate); no global optimum is sought, so an early interval
// can take a match a later one would have preferred. Unmatched intervals
// on either side appear with -1 on the missing side. Every interval shows
// up in exactly one match.
func matchIntervals(curr, next []interval) []bandMatch {
	claimed := make([]bool, len(next))
	matches := make([]bandMatch, 0, len(curr)+len(next))

	for i := range curr {
		best, bestOverlap := -1, float32(0)
		for j := range next {
			if claimed[j] {
				continue
			}
			overlap := math.Min(curr[i].Top, next[j].Top) - math.Max(curr[i].Base, next[j].Base)
			if overlap <= 0 {
				continue
			}
			if best == -1 || overlap > bestOverlap ||
				(overlap == bestOverlap && next[j].Severity > next[best].Severity) {
				best, bestOverlap = j, overlap
			}
		}
		if best != -1 {
			claimed[best] = true
		}
		matches = append(matches, bandMatch{Curr: i, Next: best})
	}

	for j := range next {
		if !claimed[j] {
			matches = append(matches, bandMatch{Curr: -1, Next: j})
		}
	}

	return matches
}

// bandShape is one drawable band segment between two adjacent samples, in
// pixel coordinates: a quad from (x0, base0..top0) to (x1, base1..top1).
// A tapered shape has a zero-height end at the midpoint.
type bandShape struct {
	X0, X1                   float32
	Base0, Top0, Base1, Top1 float32
	Severity                 int
	FromCurr                 bool // which side supplied the color
	Idx                      int  // index of the winning interval on that side
}

// bandShapes runs the matching for one adjacent sample pair and converts
// the result to pixel-space shapes. Matched pairs span the full distance
// between the samples; an unmatched current-side interval tapers to a
// zero-height point at the midpoint distance and its own midpoint
// altitude, and an unmatched next-side interval grows symmetrically from
// the midpoint.
func bandShapes(t *Transform, dCurr, dNext float32, curr, next []interval) []bandShape {
	x0 := t.DistanceToX(dCurr)
	x1 := t.DistanceToX(dNext)
	xMid := (x0 + x1) / 2

	var shapes []bandShape
	for _, m := range matchIntervals(curr, next) {
		fromCurr, idx := m.Winner(curr, next)
		var sev int
		if fromCurr {
			sev = curr[idx].Severity
		} else {
			sev = next[idx].Severity
		}

		switch {
		case m.Curr != -1 && m.Next != -1:
			shapes = append(shapes, bandShape{
				X0: x0, X1: x1,
				Base0: t.AltitudeToY(curr[m.Curr].Base), Top0: t.AltitudeToY(curr[m.Curr].Top),
				Base1: t.AltitudeToY(next[m.Next].Base), Top1: t.AltitudeToY(next[m.Next].Top),
				Severity: sev, FromCurr: fromCurr, Idx: idx,
			})
		case m.Next == -1:
			yMid := t.AltitudeToY((curr[m.Curr].Base + curr[m.Curr].Top) / 2)
			shapes = append(shapes, bandShape{
				X0: x0, X1: xMid,
				Base0: t.AltitudeToY(curr[m.Curr].Base), Top0: t.AltitudeToY(curr[m.Curr].Top),
				Base1: yMid, Top1: yMid,
				Severity: sev, FromCurr: fromCurr, Idx: idx,
			})
		default:
			yMid := t.AltitudeToY((next[m.Next].Base + next[m.Next].Top) / 2)
			shapes = append(shapes, bandShape{
				X0: xMid, X1: x1,
				Base0: yMid, Top0: yMid,
				Base1: t.AltitudeToY(next[m.Next].Base), Top1: t.AltitudeToY(next[m.Next].Top),
				Severity: sev, FromCurr: fromCurr, Idx: idx,
			})
		}
	}
	return shapes
}
