// cmd/tools/estimate-risk/main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (map[string]interface{}, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	return doc, nil
}

func TestEstimateRisk_Heuristic(t *testing.T) {
	doc, err := execute(t, "--project-type", "Infrastructure", "--terrain", "mountainous")
	require.NoError(t, err)

	assert.InDelta(t, 0.85, doc["riskScore"], 1e-9)
	assert.Equal(t, "heuristic", doc["riskMethod"])
	assert.NotContains(t, doc, "summary")
}

func TestEstimateRisk_FromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte("duration,cost,delayed\n10,100,true\n20,300,false\n"), 0o644))

	doc, err := execute(t, "--csv", path)
	require.NoError(t, err)

	assert.Equal(t, "historical", doc["riskMethod"])
	// the trailing newline adds a third, mostly empty row
	assert.Equal(t, float64(3), doc["rows"])
	summary := doc["summary"].(map[string]interface{})
	assert.Equal(t, float64(3), summary["projectCount"])
}

func TestEstimateRisk_RejectsNonCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))

	_, err := execute(t, "--csv", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please upload a CSV file")
}

func TestEstimateRisk_UnknownTypeTable(t *testing.T) {
	_, err := execute(t, "--type-table", "marine")
	assert.Error(t, err)
}
