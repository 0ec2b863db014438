// xsection/xsection_test.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import (
	"slices"
	"testing"

	"github.com/mmp/xsect/math"
	"github.com/mmp/xsect/renderer"
	"github.com/mmp/xsect/wx"
)

func fp(v float32) *float32 { return &v }

func testDataset() *wx.ChartDataset {
	return &wx.ChartDataset{
		Samples: []wx.ChartSample{
			{DistanceNM: 0},
			{DistanceNM: 120},
			{DistanceNM: 240},
		},
		CruiseAltitude: 11000,
		Ceiling:        18000,
		TotalDistance:  240,
	}
}

func TestTransformRoundTrip(t *testing.T) {
	ds := testDataset()
	tr := MakeTransform(ds, math.Extent2D{P1: [2]float32{800, 600}})

	plot := tr.PlotRect()
	for _, x := range []float32{plot.P0[0], plot.P0[0] + 100, plot.Center()[0], plot.P1[0]} {
		if got := tr.DistanceToX(tr.XToDistance(x)); math.Abs(got-x) > 1e-3 {
			t.Errorf("x %v: round trip gave %v", x, got)
		}
	}
	for _, y := range []float32{plot.P0[1], plot.P0[1] + 50, plot.Center()[1], plot.P1[1]} {
		if got := tr.AltitudeToY(tr.YToAltitude(y)); math.Abs(got-y) > 1e-3 {
			t.Errorf("y %v: round trip gave %v", y, got)
		}
	}
}

func TestTransformAxisEndpoints(t *testing.T) {
	ds := testDataset()
	tr := MakeTransform(ds, math.Extent2D{P1: [2]float32{800, 600}})
	plot := tr.PlotRect()

	if got := tr.AltitudeToY(0); got != plot.P0[1] {
		t.Errorf("altitude 0 mapped to %v, want plot bottom %v", got, plot.P0[1])
	}
	if got := tr.AltitudeToY(ds.AltitudeMax()); got != plot.P1[1] {
		t.Errorf("axis max mapped to %v, want plot top %v", got, plot.P1[1])
	}
	if got := tr.DistanceToX(0); got != plot.P0[0] {
		t.Errorf("distance 0 mapped to %v, want plot left %v", got, plot.P0[0])
	}
	if got := tr.DistanceToX(ds.TotalDistance); got != plot.P1[0] {
		t.Errorf("total distance mapped to %v, want plot right %v", got, plot.P1[0])
	}
}

func TestTickIntervals(t *testing.T) {
	for _, tc := range []struct {
		total, want float32
	}{
		{30, 10}, {50, 10}, {51, 25}, {150, 25}, {151, 50}, {300, 50},
		{301, 100}, {600, 100}, {601, 200}, {2500, 200},
	} {
		if got := distanceTickInterval(tc.total); got != tc.want {
			t.Errorf("distanceTickInterval(%v) = %v, want %v", tc.total, got, tc.want)
		}
	}

	for _, tc := range []struct {
		axisMax, want float32
	}{
		{6000, 1000}, {8000, 1000}, {8001, 2000}, {15000, 2000}, {15001, 5000}, {45000, 5000},
	} {
		if got := altitudeTickInterval(tc.axisMax); got != tc.want {
			t.Errorf("altitudeTickInterval(%v) = %v, want %v", tc.axisMax, got, tc.want)
		}
	}
}

func TestMatchIntervalsExample(t *testing.T) {
	curr := []interval{{Base: 2000, Top: 4000, Severity: int(wx.IcingModerate)}}
	next := []interval{{Base: 2500, Top: 4500, Severity: int(wx.IcingSevere)}}

	matches := matchIntervals(curr, next)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Curr != 0 || m.Next != 0 {
		t.Errorf("got match %+v, want curr 0 matched to next 0", m)
	}
	fromCurr, idx := m.Winner(curr, next)
	if fromCurr || idx != 0 {
		t.Errorf("winner (%v, %d): want the severe next-side interval", fromCurr, idx)
	}
}

func TestMatchIntervalsConservation(t *testing.T) {
	for _, tc := range []struct {
		curr, next []interval
	}{
		{
			curr: []interval{{Base: 1000, Top: 3000, Severity: 1}, {Base: 5000, Top: 8000, Severity: 2}},
			next: []interval{{Base: 2000, Top: 4000, Severity: 1}},
		},
		{
			curr: []interval{{Base: 1000, Top: 2000, Severity: 1}},
			next: []interval{{Base: 5000, Top: 6000, Severity: 1}, {Base: 8000, Top: 9000, Severity: 2}},
		},
		{
			curr: nil,
			next: []interval{{Base: 1000, Top: 2000, Severity: 1}},
		},
		{
			curr: []interval{
				{Base: 1000, Top: 4000, Severity: 1},
				{Base: 2000, Top: 5000, Severity: 2},
				{Base: 7000, Top: 9000, Severity: 3},
			},
			next: []interval{
				{Base: 1500, Top: 4500, Severity: 1},
				{Base: 6500, Top: 8000, Severity: 2},
			},
		},
	} {
		matches := matchIntervals(tc.curr, tc.next)

		seenCurr := make(map[int]int)
		seenNext := make(map[int]int)
		for _, m := range matches {
			if m.Curr != -1 {
				seenCurr[m.Curr]++
			}
			if m.Next != -1 {
				seenNext[m.Next]++
			}
		}
		for i := range tc.curr {
			if seenCurr[i] != 1 {
				t.Errorf("curr interval %d appears %d times", i, seenCurr[i])
			}
		}
		for j := range tc.next {
			if seenNext[j] != 1 {
				t.Errorf("next interval %d appears %d times", j, seenNext[j])
			}
		}
	}
}

func TestMatchIntervalsGreedyOrder(t *testing.T) {
	// The first current-side interval claims its best match even if a
	// later interval overlaps that candidate more.
	curr := []interval{
		{Base: 1000, Top: 5000, Severity: 1},
		{Base: 1500, Top: 5000, Severity: 1},
	}
	next := []interval{{Base: 1000, Top: 5000, Severity: 1}}

	matches := matchIntervals(curr, next)
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Curr != 0 || matches[0].Next != 0 {
		t.Errorf("first interval should claim the match: %+v", matches[0])
	}
	if matches[1].Curr != 1 || matches[1].Next != -1 {
		t.Errorf("second interval should be left unmatched: %+v", matches[1])
	}
}

func TestUnmatchedTaper(t *testing.T) {
	ds := testDataset()
	tr := MakeTransform(ds, math.Extent2D{P1: [2]float32{800, 600}})

	curr := []interval{
		{Base: 2000, Top: 4000, Severity: 1},
		{Base: 8000, Top: 10000, Severity: 2},
	}
	shapes := bandShapes(&tr, 0, 120, curr, nil)
	if len(shapes) != 2 {
		t.Fatalf("got %d shapes, want 2", len(shapes))
	}

	xMid := (tr.DistanceToX(0) + tr.DistanceToX(120)) / 2
	for i, s := range shapes {
		if s.X1 != xMid {
			t.Errorf("shape %d tapers to x %v, want midpoint %v", i, s.X1, xMid)
		}
		if s.Base1 != s.Top1 {
			t.Errorf("shape %d not zero-height at the taper end", i)
		}
		wantY := tr.AltitudeToY((curr[i].Base + curr[i].Top) / 2)
		if s.Base1 != wantY {
			t.Errorf("shape %d tapers to y %v, want own midpoint altitude %v", i, s.Base1, wantY)
		}
	}

	// Symmetric: next-side leftovers grow from the midpoint.
	shapes = bandShapes(&tr, 0, 120, nil, curr)
	if len(shapes) != 2 {
		t.Fatalf("got %d shapes, want 2", len(shapes))
	}
	for i, s := range shapes {
		if s.X0 != xMid || s.Base0 != s.Top0 {
			t.Errorf("shape %d should grow from a zero-height midpoint: %+v", i, s)
		}
	}
}

func TestMonotoneSplineKnotExactness(t *testing.T) {
	xs := []float32{0, 10, 25, 40, 80}
	ys := []float32{100, 240, 180, 180, 900}

	pts := sampleMonotoneCubic(xs, ys, 8)
	for i := range xs {
		found := false
		for _, p := range pts {
			if p[0] == xs[i] && p[1] == ys[i] {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("curve misses knot (%v, %v)", xs[i], ys[i])
		}
	}
}

func TestMonotoneTangents(t *testing.T) {
	// At a local extremum the adjacent secants change sign and the
	// tangent must be zero so the curve stays inside the data.
	m := monotoneTangents([]float32{0, 1, 2}, []float32{0, 10, 0})
	if m[1] != 0 {
		t.Errorf("tangent at extremum is %v, want 0", m[1])
	}

	// Monotone data keeps all tangents non-negative.
	m = monotoneTangents([]float32{0, 1, 2, 3}, []float32{0, 1, 5, 6})
	for i, v := range m {
		if v < 0 {
			t.Errorf("tangent %d is %v for increasing data", i, v)
		}
	}
}

func TestTowerExtent(t *testing.T) {
	for _, tc := range []struct {
		name        string
		c           wx.Conditions
		wantBase    float32
		wantTop     float32
		wantBounded bool
	}{
		{
			name: "deep tower trusts EL",
			c: wx.Conditions{Convective: wx.ConvectiveHigh,
				LCL: fp(3000), EL: fp(30000)},
			wantBase: 3000, wantTop: 30000, wantBounded: true,
		},
		{
			name: "LFC preferred over LCL",
			c: wx.Conditions{Convective: wx.ConvectiveModerate,
				LCL: fp(3000), LFC: fp(4000), EL: fp(20000)},
			wantBase: 4000, wantTop: 20000, wantBounded: true,
		},
		{
			name: "shallow marginal uses freezing level proxy",
			c: wx.Conditions{Convective: wx.ConvectiveMarginal,
				LCL: fp(3000), EL: fp(4000), FreezingLevel: fp(9000)},
			wantBase: 3000, wantTop: 11000, wantBounded: true,
		},
		{
			name: "shallow moderate uses -20C",
			c: wx.Conditions{Convective: wx.ConvectiveModerate,
				LCL: fp(3000), EL: fp(4000), IsothermM10: fp(12000), IsothermM20: fp(18000)},
			wantBase: 3000, wantTop: 18000, wantBounded: true,
		},
		{
			name: "shallow moderate falls back to -10C",
			c: wx.Conditions{Convective: wx.ConvectiveModerate,
				LCL: fp(3000), EL: fp(4000), IsothermM10: fp(12000)},
			wantBase: 3000, wantTop: 12000, wantBounded: true,
		},
		{
			name: "no proxy level available",
			c: wx.Conditions{Convective: wx.ConvectiveMarginal,
				LCL: fp(3000), EL: fp(4000)},
			wantBase: 3000, wantTop: 7000, wantBounded: true,
		},
		{
			name: "proxy never lowers the top below EL",
			c: wx.Conditions{Convective: wx.ConvectiveMarginal,
				LCL: fp(3000), EL: fp(5500), FreezingLevel: fp(2000)},
			wantBase: 3000, wantTop: 5500, wantBounded: true,
		},
		{
			name:        "missing EL is unbounded",
			c:           wx.Conditions{Convective: wx.ConvectiveLow, LCL: fp(3000)},
			wantBounded: false,
		},
		{
			name:        "missing base is unbounded",
			c:           wx.Conditions{Convective: wx.ConvectiveLow, EL: fp(20000)},
			wantBounded: false,
		},
	} {
		base, top, bounded := towerExtent(&tc.c)
		if bounded != tc.wantBounded {
			t.Errorf("%s: bounded %v, want %v", tc.name, bounded, tc.wantBounded)
			continue
		}
		if !bounded {
			continue
		}
		if base != tc.wantBase || top != tc.wantTop {
			t.Errorf("%s: got [%v, %v], want [%v, %v]", tc.name, base, top, tc.wantBase, tc.wantTop)
		}
		if tc.c.EL != nil && top < *tc.c.EL {
			t.Errorf("%s: visual top %v below thermodynamic EL %v", tc.name, top, *tc.c.EL)
		}
	}
}

func TestNearestSampleTieBreak(t *testing.T) {
	xp := NewXSectionPane()
	xp.SetDataset(testDataset())

	// 60 nm is exactly between the samples at 0 and 120; the lower index
	// wins.
	if got := xp.nearestSample(60); got != 0 {
		t.Errorf("equidistant lookup returned %d, want 0", got)
	}
	if got := xp.nearestSample(61); got != 1 {
		t.Errorf("lookup at 61 returned %d, want 1", got)
	}
	if got := xp.nearestSample(500); got != 2 {
		t.Errorf("lookup past the end returned %d, want 2", got)
	}
}

func TestColumnSpan(t *testing.T) {
	xs := []float32{100, 200, 400}

	if x0, x1 := columnSpan(xs, 1); x0 != 150 || x1 != 300 {
		t.Errorf("middle span [%v, %v], want [150, 300]", x0, x1)
	}
	if x0, x1 := columnSpan(xs, 0); x0 != 50 || x1 != 150 {
		t.Errorf("first span [%v, %v], want [50, 150]", x0, x1)
	}
	if x0, x1 := columnSpan(xs, 2); x0 != 300 || x1 != 500 {
		t.Errorf("last span [%v, %v], want [300, 500]", x0, x1)
	}

	// An isolated point gets the fixed fallback width.
	x0, x1 := columnSpan([]float32{100}, 0)
	if x0 != 100-isolatedColumnHalfWidth || x1 != 100+isolatedColumnHalfWidth {
		t.Errorf("isolated span [%v, %v]", x0, x1)
	}
}

func TestPixelRuns(t *testing.T) {
	ds := &wx.ChartDataset{
		Samples: []wx.ChartSample{
			{DistanceNM: 0, Conditions: wx.Conditions{FreezingLevel: fp(8000)}},
			{DistanceNM: 50, Conditions: wx.Conditions{FreezingLevel: fp(8500)}},
			{DistanceNM: 100},
			{DistanceNM: 150, Conditions: wx.Conditions{FreezingLevel: fp(9000)}},
		},
		TotalDistance:  150,
		CruiseAltitude: 10000,
		Ceiling:        10000,
	}
	tr := MakeTransform(ds, math.Extent2D{P1: [2]float32{800, 600}})

	runs := pixelRuns(ds.Samples, &tr, func(s *wx.ChartSample) *float32 { return s.FreezingLevel })
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2: missing values must split, not bridge", len(runs))
	}
	if len(runs[0].xs) != 2 || len(runs[1].xs) != 1 {
		t.Errorf("run lengths %d, %d, want 2, 1", len(runs[0].xs), len(runs[1].xs))
	}
}

func TestMergeViewSettings(t *testing.T) {
	defaults := DefaultViewSettings()

	stored := ViewSettings{
		Mode: RenderColumns,
		Layers: map[LayerId]bool{
			LayerIcing:         false,
			LayerId("retired"): true,
		},
	}
	merged := MergeViewSettings(defaults, stored)

	if merged.Mode != RenderColumns {
		t.Errorf("stored mode not applied")
	}
	if merged.Enabled(LayerIcing) {
		t.Errorf("stored icing toggle not applied")
	}
	if _, ok := merged.Layers["retired"]; ok {
		t.Errorf("stale layer id kept through merge")
	}

	// An invalid stored mode keeps the default.
	merged = MergeViewSettings(defaults, ViewSettings{Mode: "fancy"})
	if merged.Mode != defaults.Mode {
		t.Errorf("invalid stored mode %q overrode the default", merged.Mode)
	}
}

func TestSingleSampleBand(t *testing.T) {
	ds := &wx.ChartDataset{
		Samples: []wx.ChartSample{{DistanceNM: 0, Conditions: wx.Conditions{
			CloudLayers: []wx.CloudLayer{{Base: 2000, Top: 6000, Coverage: wx.CoverageBroken}},
		}}},
		CruiseAltitude: 8000,
		Ceiling:        8000,
	}
	tr := MakeTransform(ds, math.Extent2D{P1: [2]float32{800, 600}})

	// A one-sample dataset must still produce sensible column geometry
	// rather than degenerate spans.
	x := tr.DistanceToX(0)
	x0, x1 := columnSpan([]float32{x}, 0)
	if x1-x0 != 2*isolatedColumnHalfWidth {
		t.Errorf("isolated column width %v", x1-x0)
	}
}

func testLayerContext(ds *wx.ChartDataset, mode RenderMode) *layerContext {
	tr := MakeTransform(ds, math.Extent2D{P1: [2]float32{640, 480}})
	return &layerContext{
		ds:    ds,
		tr:    &tr,
		mode:  mode,
		cb:    renderer.GetCommandBuffer(),
		scale: 1,
	}
}

func TestDrawIntervalBands(t *testing.T) {
	single := &wx.ChartDataset{
		Samples: []wx.ChartSample{{DistanceNM: 0, Conditions: wx.Conditions{
			CloudLayers: []wx.CloudLayer{{Base: 2000, Top: 6000, Coverage: wx.CoverageBroken}},
		}}},
		CruiseAltitude: 8000,
		Ceiling:        8000,
	}
	ctx := testLayerContext(single, RenderSmooth)
	drawIntervalBands(ctx, cloudIntervals, cloudFill)
	if len(ctx.cb.Buf) == 0 {
		t.Errorf("single-sample dataset emitted no band geometry")
	}
	renderer.ReturnCommandBuffer(ctx.cb)

	multi := testDataset()
	multi.Samples[0].CloudLayers = []wx.CloudLayer{{Base: 2000, Top: 4000, Coverage: wx.CoverageScattered}}
	multi.Samples[1].CloudLayers = []wx.CloudLayer{{Base: 2500, Top: 4500, Coverage: wx.CoverageBroken}}
	for _, mode := range []RenderMode{RenderSmooth, RenderColumns} {
		ctx = testLayerContext(multi, mode)
		drawIntervalBands(ctx, cloudIntervals, cloudFill)
		if len(ctx.cb.Buf) == 0 {
			t.Errorf("%s mode emitted no band geometry", mode)
		}
		renderer.ReturnCommandBuffer(ctx.cb)
	}

	// No intervals, no commands.
	ctx = testLayerContext(testDataset(), RenderSmooth)
	drawIntervalBands(ctx, cloudIntervals, cloudFill)
	if len(ctx.cb.Buf) != 0 {
		t.Errorf("cloudless dataset emitted %d words of commands", len(ctx.cb.Buf))
	}
	renderer.ReturnCommandBuffer(ctx.cb)
}

func TestDrawConvective(t *testing.T) {
	ds := testDataset()
	ds.Samples[1].Convective = wx.ConvectiveModerate
	ds.Samples[1].LFC = fp(4000)
	ds.Samples[1].EL = fp(20000)

	ctx := testLayerContext(ds, RenderSmooth)
	drawConvective(ctx)
	if len(ctx.cb.Buf) == 0 {
		t.Errorf("convective sample emitted no tower geometry")
	}
	renderer.ReturnCommandBuffer(ctx.cb)

	ctx = testLayerContext(testDataset(), RenderSmooth)
	drawConvective(ctx)
	if len(ctx.cb.Buf) != 0 {
		t.Errorf("convective-free dataset emitted %d words of commands", len(ctx.cb.Buf))
	}
	renderer.ReturnCommandBuffer(ctx.cb)
}

func TestTooltipWaypointMatch(t *testing.T) {
	ds := testDataset()
	ds.Waypoints = []wx.Waypoint{
		{DistanceNM: 120.2, Ident: "ALB"}, // close to the 120 nm sample, not exact
		{DistanceNM: 240, Ident: "KORD"},
	}
	xp := &XSectionPane{ds: ds, selected: -1}

	if lines := xp.tooltipLines(1, &ds.Samples[1]); lines[0] != "ALB" {
		t.Errorf("nearby waypoint not matched: title %q", lines[0])
	}
	if lines := xp.tooltipLines(2, &ds.Samples[2]); lines[0] != "KORD" {
		t.Errorf("exact waypoint not matched: title %q", lines[0])
	}
	if lines := xp.tooltipLines(0, &ds.Samples[0]); lines[0] != "Sample 0" {
		t.Errorf("distant waypoint matched: title %q", lines[0])
	}
}

func TestTickValues(t *testing.T) {
	if got := tickValues(600, 100); !slices.Equal(got, []float32{0, 100, 200, 300, 400, 500, 600}) {
		t.Errorf("tickValues(600, 100) = %v", got)
	}
	// A limit that isn't a multiple of the step stops short of it.
	if got := tickValues(240, 50); !slices.Equal(got, []float32{0, 50, 100, 150, 200}) {
		t.Errorf("tickValues(240, 50) = %v", got)
	}
	// The final tick must survive at altitude-axis magnitudes.
	ticks := tickValues(23000, 5000)
	if n := len(ticks); n == 0 || ticks[n-1] != 20000 {
		t.Errorf("tickValues(23000, 5000) = %v", ticks)
	}
}
