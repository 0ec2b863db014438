// wx/extract.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package wx

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ExtractDataset converts a route forecast plus a chosen weather model
// into an ordered ChartDataset. Route points where the model contributed
// no analysis are skipped; malformed hazard intervals (base >= top) are
// dropped. The returned samples are guaranteed to be ordered by
// non-decreasing distance.
func ExtractDataset(f *RouteForecast, model string) (*ChartDataset, error) {
	ds := &ChartDataset{
		CruiseAltitude: f.CruiseAltitude,
		Ceiling:        f.Ceiling,
		TotalDistance:  f.TotalDistance(),
		Waypoints:      f.Waypoints,
		Terrain:        f.Terrain,
	}

	lastDist := float32(0)
	for i, p := range f.Points {
		if i > 0 && p.DistanceNM < lastDist {
			return nil, fmt.Errorf("%s: route points out of order at %.1f nm (previous %.1f nm)",
				f.Route, p.DistanceNM, lastDist)
		}
		lastDist = p.DistanceNM

		cond, ok := p.Analyses[model]
		if !ok {
			continue
		}

		sample := ChartSample{DistanceNM: p.DistanceNM, Conditions: cond}
		sample.CloudLayers = validLayers(cond.CloudLayers,
			func(l CloudLayer) (float32, float32) { return l.Base, l.Top })
		sample.IcingZones = validLayers(cond.IcingZones,
			func(z IcingZone) (float32, float32) { return z.Base, z.Top })
		sample.CATLayers = validLayers(cond.CATLayers,
			func(l CATLayer) (float32, float32) { return l.Base, l.Top })
		sample.Inversions = validLayers(cond.Inversions,
			func(l InversionLayer) (float32, float32) { return l.Base, l.Top })

		ds.Samples = append(ds.Samples, sample)
	}

	return ds, nil
}

// validLayers filters out intervals that do not satisfy base < top.
func validLayers[L any](layers []L, baseTop func(L) (float32, float32)) []L {
	var valid []L
	for _, l := range layers {
		if base, top := baseTop(l); base < top {
			valid = append(valid, l)
		}
	}
	return valid
}

// Extractor caches extracted datasets so that switching between models
// (or re-rendering after a settings change) doesn't redo the conversion.
// Entries expire so that stale forecasts age out.
type Extractor struct {
	cache *expirable.LRU[string, *ChartDataset]
}

func NewExtractor() *Extractor {
	return &Extractor{
		cache: expirable.NewLRU[string, *ChartDataset](16, nil, 4*time.Hour),
	}
}

// Dataset returns the ChartDataset for the given forecast and model,
// extracting it on a cache miss.
func (e *Extractor) Dataset(f *RouteForecast, model string) (*ChartDataset, error) {
	key := fmt.Sprintf("%s/%d/%s", f.Route, f.Generated.Unix(), model)
	if ds, ok := e.cache.Get(key); ok {
		return ds, nil
	}

	ds, err := ExtractDataset(f, model)
	if err != nil {
		return nil, err
	}

	e.cache.Add(key, ds)
	return ds, nil
}
