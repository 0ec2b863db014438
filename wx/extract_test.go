// wx/extract_test.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"bytes"
	"slices"
	"testing"
	"time"
)

func fp(v float32) *float32 { return &v }

func testForecast() *RouteForecast {
	t0 := time.Date(2025, 8, 12, 18, 0, 0, 0, time.UTC)
	return &RouteForecast{
		Route:          "KBOS-KORD",
		Generated:      t0,
		CruiseAltitude: 11000,
		Ceiling:        18000,
		Waypoints: []Waypoint{
			{DistanceNM: 0, Ident: "KBOS"},
			{DistanceNM: 120, Ident: "ALB"},
			{DistanceNM: 240, Ident: "KORD"},
		},
		Points: []RoutePoint{
			{DistanceNM: 0, Analyses: map[string]Conditions{
				"GFS": {
					Time:          t0,
					FreezingLevel: fp(8000),
					CloudLayers:   []CloudLayer{{Base: 3000, Top: 7000, Coverage: CoverageBroken}},
					IcingZones:    []IcingZone{{Base: 6000, Top: 9000, Risk: IcingLight, Type: IceRime}},
				},
				"NAM": {Time: t0},
			}},
			{DistanceNM: 120, Analyses: map[string]Conditions{
				"GFS": {
					Time:          t0.Add(30 * time.Minute),
					FreezingLevel: fp(7500),
					CloudLayers: []CloudLayer{
						{Base: 2500, Top: 6000, Coverage: CoverageOvercast},
						{Base: 9000, Top: 9000, Coverage: CoverageFew}, // malformed
					},
				},
			}},
			{DistanceNM: 240, Analyses: map[string]Conditions{
				"GFS": {Time: t0.Add(time.Hour), Convective: ConvectiveModerate},
			}},
		},
		Terrain: &ElevationProfile{
			DistanceNM: []float32{0, 100, 240},
			Elevation:  []float32{20, 1200, 650},
		},
	}
}

func TestExtractDataset(t *testing.T) {
	f := testForecast()

	ds, err := ExtractDataset(f, "GFS")
	if err != nil {
		t.Fatalf("ExtractDataset: %v", err)
	}

	if len(ds.Samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(ds.Samples))
	}
	for i := 1; i < len(ds.Samples); i++ {
		if ds.Samples[i].DistanceNM < ds.Samples[i-1].DistanceNM {
			t.Errorf("samples out of order at index %d", i)
		}
	}
	if ds.TotalDistance != 240 {
		t.Errorf("total distance: got %v, expected 240", ds.TotalDistance)
	}
	if amax := ds.AltitudeMax(); amax != 23000 {
		t.Errorf("altitude max: got %v, expected 23000", amax)
	}

	// The base==top cloud layer at the second point should have been dropped.
	if n := len(ds.Samples[1].CloudLayers); n != 1 {
		t.Errorf("expected 1 valid cloud layer at sample 1, got %d", n)
	}

	// NAM only covers the first point.
	nam, err := ExtractDataset(f, "NAM")
	if err != nil {
		t.Fatalf("ExtractDataset: %v", err)
	}
	if len(nam.Samples) != 1 {
		t.Errorf("expected 1 NAM sample, got %d", len(nam.Samples))
	}
}

func TestExtractDatasetOutOfOrder(t *testing.T) {
	f := testForecast()
	f.Points[1].DistanceNM = 500

	if _, err := ExtractDataset(f, "GFS"); err == nil {
		t.Errorf("expected error for out-of-order route points")
	}
}

func TestExtractorCache(t *testing.T) {
	f := testForecast()
	ex := NewExtractor()

	ds0, err := ex.Dataset(f, "GFS")
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	ds1, err := ex.Dataset(f, "GFS")
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if ds0 != ds1 {
		t.Errorf("expected cached dataset on second lookup")
	}

	nam, err := ex.Dataset(f, "NAM")
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if nam == ds0 {
		t.Errorf("expected distinct dataset for different model")
	}
}

func TestForecastRoundTrip(t *testing.T) {
	f := testForecast()

	var buf bytes.Buffer
	if err := f.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ck, err := LoadRouteForecast(&buf)
	if err != nil {
		t.Fatalf("LoadRouteForecast: %v", err)
	}

	if ck.Route != f.Route || !ck.Generated.Equal(f.Generated) {
		t.Errorf("metadata mismatch: %s/%v vs %s/%v", ck.Route, ck.Generated, f.Route, f.Generated)
	}
	if len(ck.Points) != len(f.Points) {
		t.Fatalf("point count mismatch: %d vs %d", len(ck.Points), len(f.Points))
	}
	gfs := ck.Points[0].Analyses["GFS"]
	if gfs.FreezingLevel == nil || *gfs.FreezingLevel != 8000 {
		t.Errorf("freezing level did not round trip: %v", gfs.FreezingLevel)
	}
	if len(gfs.IcingZones) != 1 || gfs.IcingZones[0].Risk != IcingLight {
		t.Errorf("icing zones did not round trip: %+v", gfs.IcingZones)
	}

	models := ck.Models()
	if len(models) != 2 || models[0] != "GFS" || models[1] != "NAM" {
		t.Errorf("models: got %v, expected [GFS NAM]", models)
	}

	// The delta-encoded terrain profile must come back bit-exact.
	if ck.Terrain == nil {
		t.Fatalf("terrain did not round trip")
	}
	if !slices.Equal(ck.Terrain.DistanceNM, f.Terrain.DistanceNM) ||
		!slices.Equal(ck.Terrain.Elevation, f.Terrain.Elevation) {
		t.Errorf("terrain mismatch: %+v vs %+v", ck.Terrain, f.Terrain)
	}
}

func TestElevationProfileFractionalRoundTrip(t *testing.T) {
	// Values that aren't integers in float32 stress the bit-pattern delta
	// encoding.
	f := testForecast()
	f.Terrain = &ElevationProfile{
		DistanceNM: []float32{0, 0.1, 33.3333, 239.99},
		Elevation:  []float32{-2.5, 1187.3, 650.05, 12.75},
	}

	var buf bytes.Buffer
	if err := f.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ck, err := LoadRouteForecast(&buf)
	if err != nil {
		t.Fatalf("LoadRouteForecast: %v", err)
	}
	if !slices.Equal(ck.Terrain.DistanceNM, f.Terrain.DistanceNM) ||
		!slices.Equal(ck.Terrain.Elevation, f.Terrain.Elevation) {
		t.Errorf("terrain mismatch: %+v vs %+v", ck.Terrain, f.Terrain)
	}
}

func TestElevationAt(t *testing.T) {
	e := &ElevationProfile{
		DistanceNM: []float32{0, 100, 200},
		Elevation:  []float32{0, 1000, 500},
	}

	for _, tc := range []struct {
		d, expected float32
	}{
		{-10, 0},
		{0, 0},
		{50, 500},
		{100, 1000},
		{150, 750},
		{200, 500},
		{300, 500},
	} {
		if got := e.ElevationAt(tc.d); got != tc.expected {
			t.Errorf("ElevationAt(%v): got %v, expected %v", tc.d, got, tc.expected)
		}
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(CoverageNone < CoverageFew && CoverageFew < CoverageScattered &&
		CoverageScattered < CoverageBroken && CoverageBroken < CoverageOvercast) {
		t.Errorf("cloud coverage ordering broken")
	}
	if !(IcingNone < IcingTrace && IcingTrace < IcingLight &&
		IcingLight < IcingModerate && IcingModerate < IcingSevere) {
		t.Errorf("icing risk ordering broken")
	}
	if !(TurbNone < TurbLight && TurbLight < TurbModerate && TurbModerate < TurbSevere) {
		t.Errorf("turbulence risk ordering broken")
	}
	if !(ConvectiveNone < ConvectiveMarginal && ConvectiveMarginal < ConvectiveLow &&
		ConvectiveLow < ConvectiveModerate && ConvectiveModerate < ConvectiveHigh) {
		t.Errorf("convective risk ordering broken")
	}
}

func TestWorstIcing(t *testing.T) {
	s := &ChartSample{}
	if r := WorstIcing(s); r != IcingNone {
		t.Errorf("empty sample: got %v", r)
	}

	s.IcingZones = []IcingZone{
		{Base: 2000, Top: 4000, Risk: IcingTrace},
		{Base: 6000, Top: 9000, Risk: IcingModerate},
		{Base: 10000, Top: 12000, Risk: IcingLight},
	}
	if r := WorstIcing(s); r != IcingModerate {
		t.Errorf("got %v, expected moderate", r)
	}
}
