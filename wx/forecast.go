// wx/forecast.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"fmt"
	"io"
	"maps"
	gomath "math"
	"slices"
	"time"

	"github.com/mmp/xsect/util"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// ForecastFilenameSuffix is the standard suffix for serialized route
// forecasts.
const ForecastFilenameSuffix = ".msgpack.zst"

// RoutePoint is one point along the route in a forecast manifest; each
// weather model that covers the point contributes its own analysis.
type RoutePoint struct {
	DistanceNM float32
	Analyses   map[string]Conditions // keyed by model name ("GFS", "NAM", ...)
}

// RouteForecast is the manifest handed to the extraction step: ordered
// per-point analyses keyed by weather model, plus the route metadata the
// chart needs.
type RouteForecast struct {
	Route     string // e.g. "KBOS-KORD"
	Generated time.Time

	CruiseAltitude float32
	Ceiling        float32

	Waypoints []Waypoint
	Points    []RoutePoint
	Terrain   *ElevationProfile
}

// Models returns the sorted names of all weather models that appear in at
// least one route point.
func (f *RouteForecast) Models() []string {
	seen := make(map[string]interface{})
	for _, p := range f.Points {
		for model := range p.Analyses {
			seen[model] = nil
		}
	}
	models := slices.Collect(maps.Keys(seen))
	slices.Sort(models)
	return models
}

// TotalDistance returns the distance of the last route point.
func (f *RouteForecast) TotalDistance() float32 {
	if len(f.Points) == 0 {
		return 0
	}
	return f.Points[len(f.Points)-1].DistanceNM
}

var (
	_ msgpack.CustomEncoder = (*ElevationProfile)(nil)
	_ msgpack.CustomDecoder = (*ElevationProfile)(nil)
)

// Terrain profiles are long and vary slowly, so their arrays are stored
// with the float bit patterns delta encoded: consecutive elevations share
// their high bits, which makes the deltas small and much more
// compressible. uint32 wraparound keeps the round trip exact.
func packFloats(v []float32) []uint32 {
	b := make([]uint32, len(v))
	for i, f := range v {
		b[i] = gomath.Float32bits(f)
	}
	return util.DeltaEncode(b)
}

func unpackFloats(b []uint32) []float32 {
	d := util.DeltaDecode(b)
	v := make([]float32, len(d))
	for i, bits := range d {
		v[i] = gomath.Float32frombits(bits)
	}
	return v
}

func (e *ElevationProfile) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.Encode(packFloats(e.DistanceNM)); err != nil {
		return err
	}
	return enc.Encode(packFloats(e.Elevation))
}

func (e *ElevationProfile) DecodeMsgpack(dec *msgpack.Decoder) error {
	var dist, elev []uint32
	if err := dec.Decode(&dist); err != nil {
		return err
	}
	if err := dec.Decode(&elev); err != nil {
		return err
	}
	e.DistanceNM = unpackFloats(dist)
	e.Elevation = unpackFloats(elev)
	return nil
}

// LoadRouteForecast reads a forecast from an io.Reader. The format is a
// msgpack-encoded RouteForecast, compressed with zstd.
func LoadRouteForecast(r io.Reader) (*RouteForecast, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var f RouteForecast
	if err := msgpack.NewDecoder(zr).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode route forecast: %w", err)
	}

	return &f, nil
}

// Save writes the forecast to an io.Writer in the standard format
// (msgpack + zstd compression).
func (f *RouteForecast) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(f); err != nil {
		return fmt.Errorf("failed to encode route forecast: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}

	return nil
}
