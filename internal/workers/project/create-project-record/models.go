// internal/workers/project/create-project-record/models.go
package createprojectrecord

import "chronocost/internal/models"

type Input struct {
	// ProjectID is optional; a new id is generated when empty.
	ProjectID  string           `json:"projectId,omitempty"`
	UserID     string           `json:"userId"`
	Form       models.FormInput `json:"form"`
	RiskScore  float64          `json:"riskScore"`
	RiskMethod string           `json:"riskMethod"`

	HistoricalProjectCount   *int     `json:"historicalProjectCount"`
	HistoricalAvgDuration    *float64 `json:"historicalAvgDuration"`
	HistoricalAvgCost        *float64 `json:"historicalAvgCost"`
	HistoricalDelayFrequency *float64 `json:"historicalDelayFrequency"`
}

type Output struct {
	ProjectID string `json:"projectId"`
	Location  string `json:"location"`
	CreatedAt string `json:"createdAt"` // ISO 8601
}
