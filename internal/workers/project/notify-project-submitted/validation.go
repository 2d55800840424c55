// internal/workers/project/notify-project-submitted/validation.go
package notifyprojectsubmitted

import "chronocost/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	nonEmpty := validation.Int(1)
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"projectId":   {Type: "string", MinLength: nonEmpty},
			"userId":      {Type: "string", MinLength: nonEmpty},
			"projectName": {Type: "string"},
			"projectType": {Type: "string"},
			"riskScore":   {Type: "number", Minimum: validation.Float(0), Maximum: validation.Float(1)},
		},
		Required: []string{"projectId", "userId", "projectName", "riskScore"},
	}
}
