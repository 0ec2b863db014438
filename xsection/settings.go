// xsection/settings.go
// Copyright(c) 2025 xsect contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xsection

import "maps"

// LayerId identifies one of the cross-section layers; used as the key for
// the visibility toggles in ViewSettings.
type LayerId string

const (
	LayerTerrain       LayerId = "terrain"
	LayerConvective    LayerId = "convective"
	LayerClouds        LayerId = "clouds"
	LayerIcing         LayerId = "icing"
	LayerTurbulence    LayerId = "turbulence"
	LayerInversions    LayerId = "inversions"
	LayerFreezingLevel LayerId = "freezing_level"
	LayerIsothermM10   LayerId = "isotherm_m10"
	LayerIsothermM20   LayerId = "isotherm_m20"
	LayerLCL           LayerId = "lcl"
	LayerLFC           LayerId = "lfc"
	LayerEL            LayerId = "el"
	LayerCruise        LayerId = "cruise"
	LayerCeiling       LayerId = "ceiling"
)

// RenderMode selects the interpolation family used for lines and bands.
type RenderMode string

const (
	RenderSmooth  RenderMode = "smooth"
	RenderColumns RenderMode = "columns"
)

// ViewSettings is the chart configuration the host persists and hands
// back on each render.
type ViewSettings struct {
	Mode   RenderMode       `json:"mode"`
	Layers map[LayerId]bool `json:"layers"`
}

// Enabled reports whether the given layer should be drawn; layers absent
// from the map fall back to their registered default.
func (s *ViewSettings) Enabled(id LayerId) bool {
	if en, ok := s.Layers[id]; ok {
		return en
	}
	for _, l := range chartLayers {
		if l.Id == id {
			return l.DefaultEnabled
		}
	}
	return false
}

// DefaultViewSettings returns settings with every layer at its registered
// default.
func DefaultViewSettings() ViewSettings {
	s := ViewSettings{Mode: RenderSmooth, Layers: make(map[LayerId]bool)}
	for _, l := range chartLayers {
		s.Layers[l.Id] = l.DefaultEnabled
	}
	return s
}

// MergeViewSettings overlays stored settings on top of defaults: the
// stored mode wins when valid and stored layer toggles win for layers the
// defaults know about. Stale layer ids from old stored settings are
// dropped.
func MergeViewSettings(defaults, stored ViewSettings) ViewSettings {
	merged := ViewSettings{Mode: defaults.Mode, Layers: maps.Clone(defaults.Layers)}
	if merged.Layers == nil {
		merged.Layers = make(map[LayerId]bool)
	}

	if stored.Mode == RenderSmooth || stored.Mode == RenderColumns {
		merged.Mode = stored.Mode
	}
	for id, en := range stored.Layers {
		if _, ok := merged.Layers[id]; ok {
			merged.Layers[id] = en
		}
	}
	return merged
}
