// internal/models/project.go
package models

import (
	"chronocost/internal/historical"
)

// Project types offered by the intake form.
const (
	ProjectTypeConstruction   = "Construction"
	ProjectTypeSoftware       = "Software"
	ProjectTypeInfrastructure = "Infrastructure"
	ProjectTypeIT             = "IT"
	ProjectTypeEngineering    = "Engineering"
)

// Terrains. TerrainNotApplicable is only valid for software projects.
const (
	TerrainFlat          = "flat"
	TerrainHilly         = "hilly"
	TerrainMountainous   = "mountainous"
	TerrainUrban         = "urban"
	TerrainNotApplicable = "na_software"
)

var (
	ProjectTypes    = []string{ProjectTypeConstruction, ProjectTypeSoftware, ProjectTypeInfrastructure, ProjectTypeIT, ProjectTypeEngineering}
	Regions         = []string{"Delhi", "Mumbai", "Bangalore", "Chennai", "Kolkata", "Hyderabad"}
	PhysicalTerrain = []string{TerrainFlat, TerrainHilly, TerrainMountainous, TerrainUrban}
	Categories      = []string{"Residential", "Commercial", "Industrial", "Web", "Mobile", "Road", "Bridge"}
)

// FormInput is the form as typed. Budget and duration stay text until the
// record is built.
type FormInput struct {
	CompanyName       string `json:"companyName"`
	ProjectName       string `json:"projectName"`
	ProjectType       string `json:"projectType"`
	Location          string `json:"location"`
	Terrain           string `json:"terrain"`
	EstimatedBudget   string `json:"estimatedBudget"`
	EstimatedDuration string `json:"estimatedDuration"`
	ScopeDescription  string `json:"scopeDescription"`
	RiskFactors       string `json:"riskFactors"`
	HasHistoricalData bool   `json:"hasHistoricalData"`
	Categories        string `json:"categories"`
}

// ProjectRecord is the document persisted for a submission. The
// historical fields are all null when no history was supplied; averages
// are null when nothing in the column parsed.
type ProjectRecord struct {
	UserID            string   `json:"userId"`
	CompanyName       string   `json:"companyName"`
	ProjectName       string   `json:"projectName"`
	ProjectType       string   `json:"projectType"`
	Location          string   `json:"location"`
	Terrain           string   `json:"terrain"`
	Categories        string   `json:"categories"`
	EstimatedBudget   *float64 `json:"estimatedBudget"`
	EstimatedDuration *int     `json:"estimatedDuration"`
	ScopeDescription  string   `json:"scopeDescription"`
	RiskFactors       string   `json:"riskFactors"`
	HasHistoricalData bool     `json:"hasHistoricalData"`
	RiskScore         float64  `json:"riskScore"`
	RiskMethod        string   `json:"riskMethod,omitempty"`

	HistoricalProjectCount   *int     `json:"historicalProjectCount"`
	HistoricalAvgDuration    *float64 `json:"historicalAvgDuration"`
	HistoricalAvgCost        *float64 `json:"historicalAvgCost"`
	HistoricalDelayFrequency *float64 `json:"historicalDelayFrequency"`
}

// NewProjectRecord merges the form fields with the estimate. summary is
// nil when no historical rows were supplied.
func NewProjectRecord(userID string, in FormInput, riskScore float64, riskMethod string, summary *historical.Summary) ProjectRecord {
	rec := ProjectRecord{
		UserID:            userID,
		CompanyName:       in.CompanyName,
		ProjectName:       in.ProjectName,
		ProjectType:       in.ProjectType,
		Location:          in.Location,
		Terrain:           in.Terrain,
		Categories:        in.Categories,
		EstimatedBudget:   historical.Nullable(historical.ParseDecimalString(in.EstimatedBudget)),
		ScopeDescription:  in.ScopeDescription,
		RiskFactors:       in.RiskFactors,
		HasHistoricalData: in.HasHistoricalData,
		RiskScore:         riskScore,
		RiskMethod:        riskMethod,
	}
	if d, ok := historical.ParseInteger(in.EstimatedDuration); ok {
		rec.EstimatedDuration = &d
	}
	if summary != nil {
		count := summary.ProjectCount
		rec.HistoricalProjectCount = &count
		rec.HistoricalAvgDuration = historical.Nullable(summary.AverageDuration)
		rec.HistoricalAvgCost = historical.Nullable(summary.AverageCost)
		rec.HistoricalDelayFrequency = historical.Nullable(summary.DelayFrequency)
	}
	return rec
}

// Project is a stored record with its document metadata.
type Project struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	ProjectRecord
}
