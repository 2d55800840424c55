// internal/risk/weights.go
package risk

import (
	"fmt"
	"strings"
)

// BaseScore is the heuristic score before terrain and type adjustments.
const BaseScore = 0.5

// Type tables selectable through configuration.
const (
	TypeTableProject = "project"
	TypeTableGrid    = "grid"
)

// Weights holds the additive adjustments of the heuristic estimate.
// Unknown keys weigh 0.
type Weights struct {
	Terrain map[string]float64
	Type    map[string]float64
}

// DefaultTerrainWeights is the terrain table of the intake form.
func DefaultTerrainWeights() map[string]float64 {
	return map[string]float64{
		"flat":        0,
		"hilly":       0.10,
		"mountainous": 0.20,
		"urban":       0.15,
		"na_software": 0,
	}
}

// ProjectTypeWeights is the table for the intake form's project types.
func ProjectTypeWeights() map[string]float64 {
	return map[string]float64{
		"Construction":   0.12,
		"Software":       0.05,
		"Infrastructure": 0.15,
		"IT":             0.07,
		"Engineering":    0.10,
	}
}

// GridTypeWeights is the table used for power transmission projects.
func GridTypeWeights() map[string]float64 {
	return map[string]float64{
		"substation":        0.10,
		"overhead_line":     0.15,
		"underground_cable": 0.20,
	}
}

// DefaultWeights returns fresh copies of the default tables.
func DefaultWeights() Weights {
	return Weights{Terrain: DefaultTerrainWeights(), Type: ProjectTypeWeights()}
}

// NewWeights starts from the named type table and applies overrides.
// Override keys match existing entries case-insensitively, because
// configuration keys arrive lower-cased; new keys are added as given.
func NewWeights(typeTable string, terrain, types map[string]float64) (Weights, error) {
	w := DefaultWeights()
	switch typeTable {
	case "", TypeTableProject:
	case TypeTableGrid:
		w.Type = GridTypeWeights()
	default:
		return Weights{}, fmt.Errorf("unknown risk type table %q", typeTable)
	}

	merge(w.Terrain, terrain)
	merge(w.Type, types)
	return w, nil
}

func merge(dst, overrides map[string]float64) {
	for key, value := range overrides {
		target := key
		for existing := range dst {
			if strings.EqualFold(existing, key) {
				target = existing
				break
			}
		}
		dst[target] = value
	}
}

func (w Weights) terrain(name string) float64 { return w.Terrain[name] }

func (w Weights) projectType(name string) float64 { return w.Type[name] }
