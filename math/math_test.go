// math/math_test.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 {
		t.Errorf("Clamp below")
	}
	if Clamp(2, 0, 1) != 1 {
		t.Errorf("Clamp above")
	}
	if Clamp(0.5, float32(0), float32(1)) != 0.5 {
		t.Errorf("Clamp inside")
	}
}

func TestLerp(t *testing.T) {
	if l := Lerp(0, 1, 10); l != 1 {
		t.Errorf("Lerp(0, 1, 10) = %g, want 1", l)
	}
	if l := Lerp(1, 1, 10); l != 10 {
		t.Errorf("Lerp(1, 1, 10) = %g, want 10", l)
	}
	if l := Lerp(0.5, 0, 10); l != 5 {
		t.Errorf("Lerp(0.5, 0, 10) = %g, want 5", l)
	}
}

func TestExtent2D(t *testing.T) {
	e := Extent2DFromPoints([][2]float32{{1, 1}, {3, 2}, {2, 5}})
	if e.P0 != [2]float32{1, 1} || e.P1 != [2]float32{3, 5} {
		t.Errorf("unexpected bounds: %+v", e)
	}
	if e.Width() != 2 || e.Height() != 4 {
		t.Errorf("width/height: %g %g", e.Width(), e.Height())
	}
	if !e.Inside([2]float32{2, 2}) {
		t.Errorf("(2,2) should be inside %+v", e)
	}
	if e.Inside([2]float32{0, 2}) {
		t.Errorf("(0,2) should be outside %+v", e)
	}
}

func TestMatrix3Ortho(t *testing.T) {
	// An ortho projection should map the given bounds to [-1,1]^2.
	m := Identity3x3().Ortho(0, 100, 0, 50)
	for _, c := range []struct {
		p, want [2]float32
	}{
		{p: [2]float32{0, 0}, want: [2]float32{-1, -1}},
		{p: [2]float32{100, 50}, want: [2]float32{1, 1}},
		{p: [2]float32{50, 25}, want: [2]float32{0, 0}},
	} {
		got := m.TransformPoint(c.p)
		if Abs(got[0]-c.want[0]) > 1e-6 || Abs(got[1]-c.want[1]) > 1e-6 {
			t.Errorf("TransformPoint(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}
