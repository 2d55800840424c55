// internal/risk/estimator.go

// Package risk scores a project's delivery risk in [0, 1], either from the
// track record in historical rows or from form-field heuristics.
package risk

import (
	"math"

	"chronocost/internal/historical"
)

// Method records which basis produced a score.
type Method string

const (
	MethodHistorical Method = "historical"
	MethodHeuristic  Method = "heuristic"
)

// Input is the subset of the form the heuristic needs.
type Input struct {
	ProjectType string
	Terrain     string
}

// Estimate is a score tagged with the basis that produced it.
type Estimate struct {
	Score  float64 `json:"riskScore"`
	Method Method  `json:"riskMethod"`
}

type Estimator struct {
	weights Weights
}

func NewEstimator(weights Weights) *Estimator {
	return &Estimator{weights: weights}
}

// FromHistory averages the delay frequency and the cost overrun
// frequency. rows must not be empty.
func (e *Estimator) FromHistory(rows []historical.Row) Estimate {
	delay := historical.DelayFrequency(rows)
	overrun := historical.CostOverrunFrequency(rows)
	return Estimate{Score: (delay + overrun) / 2, Method: MethodHistorical}
}

// FromForm applies the terrain and type adjustments to the base score.
func (e *Estimator) FromForm(in Input) Estimate {
	score := BaseScore + e.weights.terrain(in.Terrain) + e.weights.projectType(in.ProjectType)
	return Estimate{Score: clamp(score), Method: MethodHeuristic}
}

// Estimate uses the history when any row exists, the form otherwise.
func (e *Estimator) Estimate(in Input, rows []historical.Row) Estimate {
	if len(rows) > 0 {
		return e.FromHistory(rows)
	}
	return e.FromForm(in)
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
