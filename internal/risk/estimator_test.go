// internal/risk/estimator_test.go
package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronocost/internal/historical"
)

func TestEstimate_FromHistory(t *testing.T) {
	rows := []historical.Row{
		historical.NewRow("duration", "10", "cost", "1000", "delayed", "true", "actualCost", "1200", "estimatedCost", "1000"),
		historical.NewRow("duration", "20", "cost", "2000", "delayed", "false", "actualCost", "2000", "estimatedCost", "2000"),
	}

	got := NewEstimator(DefaultWeights()).Estimate(Input{ProjectType: "Construction", Terrain: "mountainous"}, rows)

	assert.Equal(t, MethodHistorical, got.Method)
	assert.InDelta(t, 0.5, got.Score, 1e-9)
}

func TestEstimate_FromForm(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{"construction on flat", Input{ProjectType: "Construction", Terrain: "flat"}, 0.62},
		{"infrastructure in mountains", Input{ProjectType: "Infrastructure", Terrain: "mountainous"}, 0.85},
		{"software", Input{ProjectType: "Software", Terrain: "na_software"}, 0.55},
		{"unknown keys weigh nothing", Input{ProjectType: "Shipbuilding", Terrain: "swamp"}, 0.5},
		{"empty input", Input{}, 0.5},
	}

	est := NewEstimator(DefaultWeights())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := est.Estimate(tt.in, nil)
			assert.Equal(t, MethodHeuristic, got.Method)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
		})
	}
}

func TestEstimate_Clamped(t *testing.T) {
	est := NewEstimator(Weights{
		Terrain: map[string]float64{"cliff": 0.9},
		Type:    map[string]float64{"Tunnel": 0.9, "Refit": -0.9},
	})

	assert.Equal(t, 1.0, est.FromForm(Input{ProjectType: "Tunnel", Terrain: "cliff"}).Score)
	assert.Equal(t, 0.0, est.FromForm(Input{ProjectType: "Refit", Terrain: "flat"}).Score)
}

func TestEstimate_AlwaysInRange(t *testing.T) {
	est := NewEstimator(DefaultWeights())
	inputs := []string{"true", "1", "false", "", "yes"}
	costs := []string{"0", "abc", "1200", "-5", "Infinity"}

	var rows []historical.Row
	for i := range inputs {
		rows = append(rows, historical.NewRow("delayed", inputs[i], "actualCost", costs[i], "estimatedCost", "1000"))
		got := est.Estimate(Input{}, rows)
		assert.GreaterOrEqual(t, got.Score, 0.0)
		assert.LessOrEqual(t, got.Score, 1.0)
	}
}

func TestEstimate_Idempotent(t *testing.T) {
	est := NewEstimator(DefaultWeights())
	rows := historical.Ingest("delayed,actualCost,estimatedCost\ntrue,1500,1000\nfalse,900,1000")
	in := Input{ProjectType: "IT", Terrain: "urban"}

	first := est.Estimate(in, rows)
	assert.Equal(t, first, est.Estimate(in, rows))
	assert.Equal(t, est.FromForm(in), est.FromForm(in))
}

func TestEstimate_RowsWithoutRecognizedColumns(t *testing.T) {
	rows := historical.Ingest("projectName\nAlpha")

	got := NewEstimator(DefaultWeights()).Estimate(Input{ProjectType: "Construction", Terrain: "flat"}, rows)

	assert.Equal(t, MethodHistorical, got.Method)
	assert.Equal(t, 0.0, got.Score)
}

func TestNewWeights(t *testing.T) {
	w, err := NewWeights("", map[string]float64{"swamp": 0.3}, map[string]float64{"construction": 0.2})
	require.NoError(t, err)

	assert.InDelta(t, 0.3, w.Terrain["swamp"], 1e-9)
	assert.InDelta(t, 0.2, w.Type["Construction"], 1e-9)
	_, lowered := w.Type["construction"]
	assert.False(t, lowered)

	est := NewEstimator(w)
	assert.InDelta(t, 1.0, est.FromForm(Input{ProjectType: "Construction", Terrain: "swamp"}).Score, 1e-9)
}

func TestNewWeights_GridTable(t *testing.T) {
	w, err := NewWeights(TypeTableGrid, nil, nil)
	require.NoError(t, err)

	est := NewEstimator(w)
	assert.InDelta(t, 0.9, est.FromForm(Input{ProjectType: "underground_cable", Terrain: "mountainous"}).Score, 1e-9)
	assert.InDelta(t, 0.5, est.FromForm(Input{ProjectType: "Construction", Terrain: "flat"}).Score, 1e-9)

	_, err = NewWeights("offshore", nil, nil)
	assert.Error(t, err)
}

func TestDefaultWeights_AreCopies(t *testing.T) {
	a := DefaultWeights()
	a.Terrain["flat"] = 1
	assert.Equal(t, 0.0, DefaultWeights().Terrain["flat"])
}
