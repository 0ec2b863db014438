// wx/types.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"time"

	"github.com/mmp/xsect/math"
)

// CloudCoverage gives the fractional sky cover category for a cloud layer.
// The zero value is CoverageNone; larger values are more severe.
type CloudCoverage int

const (
	CoverageNone CloudCoverage = iota
	CoverageFew
	CoverageScattered
	CoverageBroken
	CoverageOvercast
)

func (c CloudCoverage) String() string {
	return [...]string{"none", "few", "scattered", "broken", "overcast"}[c]
}

// IcingRisk categorizes structural icing severity within an icing zone.
type IcingRisk int

const (
	IcingNone IcingRisk = iota
	IcingTrace
	IcingLight
	IcingModerate
	IcingSevere
)

func (r IcingRisk) String() string {
	return [...]string{"none", "trace", "light", "moderate", "severe"}[r]
}

// IceType describes the expected ice accretion type.
type IceType int

const (
	IceRime IceType = iota
	IceMixed
	IceClear
)

func (t IceType) String() string {
	return [...]string{"rime", "mixed", "clear"}[t]
}

// TurbRisk categorizes turbulence severity within a CAT layer.
type TurbRisk int

const (
	TurbNone TurbRisk = iota
	TurbLight
	TurbModerate
	TurbSevere
)

func (r TurbRisk) String() string {
	return [...]string{"none", "light", "moderate", "severe"}[r]
}

// ConvectiveRisk categorizes the convective outlook at a route point.
type ConvectiveRisk int

const (
	ConvectiveNone ConvectiveRisk = iota
	ConvectiveMarginal
	ConvectiveLow
	ConvectiveModerate
	ConvectiveHigh
)

func (r ConvectiveRisk) String() string {
	return [...]string{"none", "marginal", "low", "moderate", "high"}[r]
}

// CloudLayer is a single cloud deck; altitudes are feet MSL with Base < Top.
type CloudLayer struct {
	Base, Top float32
	Coverage  CloudCoverage
}

// IcingZone is a vertical interval carrying an icing risk.
type IcingZone struct {
	Base, Top float32
	Risk      IcingRisk
	Type      IceType
}

// CATLayer is a vertical interval carrying a turbulence risk.
type CATLayer struct {
	Base, Top float32
	Risk      TurbRisk
}

// InversionLayer is a temperature inversion; Strength is the temperature
// increase across the layer in degrees C.
type InversionLayer struct {
	Base, Top float32
	Strength  float32
}

// Conditions holds the forecast quantities at a single route point for a
// single weather model. The altitude markers are optional: a nil pointer
// means the model did not resolve that level at this point, which breaks
// any interpolated line through it.
type Conditions struct {
	Time time.Time

	// Altitude markers, feet MSL.
	FreezingLevel *float32
	IsothermM10   *float32
	IsothermM20   *float32
	LCL           *float32
	LFC           *float32
	EL            *float32

	CloudLayers []CloudLayer
	IcingZones  []IcingZone
	CATLayers   []CATLayer
	Inversions  []InversionLayer

	Convective ConvectiveRisk

	// Flat scalars; used by the map view, not the cross-section.
	LowCloudCover  float32
	MidCloudCover  float32
	HighCloudCover float32
	WindU, WindV   float32 // m/s, eastward/northward
	CAPE           float32 // J/kg
}

// ChartSample is one forecast point along the route, ready for rendering.
type ChartSample struct {
	DistanceNM float32
	Conditions
}

// Waypoint marks a named fix along the route for vertical reference lines.
type Waypoint struct {
	DistanceNM float32
	Ident      string
}

// ElevationProfile is an ordered sequence of terrain elevations along the
// route, sampled independently of the forecast points.
type ElevationProfile struct {
	DistanceNM []float32
	Elevation  []float32 // feet MSL
}

// ElevationAt returns the linearly-interpolated terrain elevation at the
// given distance, clamping to the profile's endpoints.
func (e *ElevationProfile) ElevationAt(d float32) float32 {
	n := len(e.DistanceNM)
	if n == 0 {
		return 0
	}
	if d <= e.DistanceNM[0] {
		return e.Elevation[0]
	}
	if d >= e.DistanceNM[n-1] {
		return e.Elevation[n-1]
	}
	for i := 1; i < n; i++ {
		if d <= e.DistanceNM[i] {
			d0, d1 := e.DistanceNM[i-1], e.DistanceNM[i]
			if d1 == d0 {
				return e.Elevation[i]
			}
			t := (d - d0) / (d1 - d0)
			return math.Lerp(t, e.Elevation[i-1], e.Elevation[i])
		}
	}
	return e.Elevation[n-1]
}

// ChartDataset is everything the cross-section needs to draw: the ordered
// samples plus the route-level scalars.
type ChartDataset struct {
	Samples []ChartSample

	CruiseAltitude float32
	Ceiling        float32
	TotalDistance  float32
	Waypoints      []Waypoint
	Terrain        *ElevationProfile
}

// AltitudeMax returns the top of the vertical axis: the higher of the
// flight ceiling and the cruise altitude, plus headroom for the labels.
func (ds *ChartDataset) AltitudeMax() float32 {
	return max(ds.Ceiling, ds.CruiseAltitude) + 5000
}

// WorstIcing returns the most severe icing risk among the sample's zones.
func WorstIcing(s *ChartSample) IcingRisk {
	risk := IcingNone
	for _, z := range s.IcingZones {
		if z.Risk > risk {
			risk = z.Risk
		}
	}
	return risk
}

// WorstTurbulence returns the most severe turbulence risk among the
// sample's CAT layers.
func WorstTurbulence(s *ChartSample) TurbRisk {
	risk := TurbNone
	for _, l := range s.CATLayers {
		if l.Risk > risk {
			risk = l.Risk
		}
	}
	return risk
}
