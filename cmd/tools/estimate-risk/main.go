// cmd/tools/estimate-risk/main.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chronocost/internal/historical"
	"chronocost/internal/models"
	"chronocost/internal/risk"
)

type options struct {
	csvPath     string
	projectType string
	terrain     string
	typeTable   string
}

type result struct {
	RiskScore  float64             `json:"riskScore"`
	RiskMethod risk.Method         `json:"riskMethod"`
	Rows       int                 `json:"rows"`
	Summary    *historical.Summary `json:"summary,omitempty"`
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "estimate-risk",
		Short: "Estimate project risk from a historical CSV or the project profile",
		Long: `Print the risk estimate the intake would store for a project.

With --csv the score comes from the delay and cost overrun rates of the
historical rows; without it from the project type and terrain.

Examples:
  estimate-risk --project-type Construction --terrain hilly
  estimate-risk --csv history.csv
  estimate-risk --type-table grid --project-type overhead_line --terrain mountainous`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "historical projects CSV")
	cmd.Flags().StringVar(&opts.projectType, "project-type", models.ProjectTypeConstruction, "project type")
	cmd.Flags().StringVar(&opts.terrain, "terrain", models.TerrainFlat, "terrain")
	cmd.Flags().StringVar(&opts.typeTable, "type-table", risk.TypeTableProject, "type weight table (project or grid)")
	return cmd
}

func run(out io.Writer, opts *options) error {
	weights, err := risk.NewWeights(opts.typeTable, nil, nil)
	if err != nil {
		return err
	}

	var rows []historical.Row
	if opts.csvPath != "" {
		rows, err = readCSV(opts.csvPath)
		if err != nil {
			return err
		}
	}

	estimate := risk.NewEstimator(weights).Estimate(risk.Input{
		ProjectType: opts.projectType,
		Terrain:     opts.terrain,
	}, rows)

	res := result{RiskScore: estimate.Score, RiskMethod: estimate.Method, Rows: len(rows)}
	if len(rows) > 0 {
		summary, err := historical.Summarize(rows)
		if err != nil {
			return err
		}
		res.Summary = &summary
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// readCSV treats the extension as the file's content type.
func readCSV(path string) ([]historical.Row, error) {
	contentType := "application/octet-stream"
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		contentType = historical.CSVContentType
	}
	if err := historical.CheckContentType(contentType); err != nil {
		return nil, fmt.Errorf("%s: please upload a CSV file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return historical.IngestReader(contentType, f)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
