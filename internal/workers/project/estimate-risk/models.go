// internal/workers/project/estimate-risk/models.go
package estimaterisk

import (
	"chronocost/internal/historical"
	"chronocost/internal/models"
)

type Input struct {
	Form           models.FormInput `json:"form"`
	HistoricalRows []historical.Row `json:"historicalRows"`
}

// Output mirrors the risk and historical fields of the stored record;
// the historical values are null without rows.
type Output struct {
	RiskScore                float64  `json:"riskScore"`
	RiskMethod               string   `json:"riskMethod"`
	HistoricalProjectCount   *int     `json:"historicalProjectCount"`
	HistoricalAvgDuration    *float64 `json:"historicalAvgDuration"`
	HistoricalAvgCost        *float64 `json:"historicalAvgCost"`
	HistoricalDelayFrequency *float64 `json:"historicalDelayFrequency"`
}
