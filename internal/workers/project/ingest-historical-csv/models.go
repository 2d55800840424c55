// internal/workers/project/ingest-historical-csv/models.go
package ingesthistoricalcsv

import "chronocost/internal/historical"

type Input struct {
	ContentType string `json:"contentType"`
	CSVContent  string `json:"csvContent"`
}

type Output struct {
	HistoricalRows []historical.Row `json:"historicalRows"`
	RowCount       int              `json:"rowCount"`
}
