// internal/workers/project/ingest-historical-csv/validation.go
package ingesthistoricalcsv

import "chronocost/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"contentType": {Type: "string", Description: "MIME type reported for the upload"},
			"csvContent":  {Type: "string"},
		},
		Required: []string{"contentType", "csvContent"},
	}
}
