// internal/common/validation/project_form.go
package validation

import (
	"regexp"
	"strconv"
	"strings"

	"chronocost/internal/models"
)

var (
	decimalInput = regexp.MustCompile(`^-?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)
	integerInput = regexp.MustCompile(`^-?\d+$`)
)

// ProjectFormSchema expresses the intake form's constraints: required
// fields, pick lists, budget >= 0, duration >= 1, terrain matching the
// project type, and a file when historical data is claimed.
func ProjectFormSchema() JSONSchema {
	nonEmpty := Int(1)
	software := &JSONSchema{Properties: map[string]Property{
		"projectType": {Const: models.ProjectTypeSoftware},
	}}

	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"companyName":       {Type: "string", MinLength: nonEmpty},
			"projectName":       {Type: "string", MinLength: nonEmpty},
			"projectType":       {Type: "string", Enum: models.ProjectTypes},
			"location":          {Type: "string", Enum: models.Regions},
			"terrain":           {Type: "string"},
			"estimatedBudget":   {Type: "number", Minimum: Float(0)},
			"estimatedDuration": {Type: "integer", Minimum: Float(1)},
			"scopeDescription":  {Type: "string"},
			"riskFactors":       {Type: "string"},
			"hasHistoricalData": {Type: "boolean"},
			"categories":        {Type: "string", Enum: append([]string{""}, models.Categories...)},
			"csvAttached":       {Type: "boolean"},
		},
		Required: []string{
			"companyName", "projectName", "projectType", "location",
			"terrain", "estimatedBudget", "estimatedDuration",
		},
		AllOf: []Condition{
			{
				If: software,
				Then: &JSONSchema{Properties: map[string]Property{
					"terrain": {Const: models.TerrainNotApplicable},
				}},
				Else: &JSONSchema{Properties: map[string]Property{
					"terrain": {Enum: models.PhysicalTerrain},
				}},
			},
			{
				If: &JSONSchema{Properties: map[string]Property{
					"hasHistoricalData": {Const: true},
				}},
				Then: &JSONSchema{Properties: map[string]Property{
					"csvAttached": {Const: true},
				}},
			},
		},
	}
}

// ValidateProjectForm checks a form the way the browser did before
// letting it submit. Budget must be a plain decimal and duration a whole
// number, as number inputs with step 1 accept.
func ValidateProjectForm(in models.FormInput, csvAttached bool) *ValidationResult {
	doc := map[string]interface{}{
		"companyName":       in.CompanyName,
		"projectName":       in.ProjectName,
		"projectType":       in.ProjectType,
		"location":          in.Location,
		"terrain":           in.Terrain,
		"estimatedBudget":   nil,
		"estimatedDuration": nil,
		"scopeDescription":  in.ScopeDescription,
		"riskFactors":       in.RiskFactors,
		"hasHistoricalData": in.HasHistoricalData,
		"categories":        in.Categories,
		"csvAttached":       csvAttached,
	}
	if budget := strings.TrimSpace(in.EstimatedBudget); decimalInput.MatchString(budget) {
		if v, err := strconv.ParseFloat(budget, 64); err == nil {
			doc["estimatedBudget"] = v
		}
	}
	if duration := strings.TrimSpace(in.EstimatedDuration); integerInput.MatchString(duration) {
		if v, err := strconv.Atoi(duration); err == nil {
			doc["estimatedDuration"] = v
		}
	}
	return ValidateInput(doc, ProjectFormSchema())
}
