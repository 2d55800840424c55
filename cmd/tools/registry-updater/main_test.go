// cmd/tools/registry-updater/main_test.go
package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronocost/pkg/registry"
)

func TestRegistryUpdater_AddUpdateList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")
	var out bytes.Buffer

	require.NoError(t, run("add", []string{
		"-path", path,
		"-id", "estimate-risk",
		"-displayName", "Estimate Risk",
		"-description", "Scores delivery risk",
		"-category", "project",
	}, &out))
	assert.Contains(t, out.String(), "Added activity: estimate-risk")

	require.NoError(t, run("update", []string{"-path", path, "-id", "estimate-risk", "-field", "status", "-value", registry.StatusCompleted}, &out))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	activity, ok := reg.FindByTaskType("estimate-risk")
	require.True(t, ok)
	assert.Equal(t, registry.StatusCompleted, activity.ImplementationStatus)

	out.Reset()
	require.NoError(t, run("list", []string{"-path", path}, &out))
	assert.Contains(t, out.String(), "estimate-risk")
	assert.Contains(t, out.String(), registry.StatusCompleted)

	require.NoError(t, run("validate", []string{"-path", path}, &out))
}

func TestRegistryUpdater_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	var out bytes.Buffer

	assert.Error(t, run("add", []string{"-path", path, "-id", "estimate-risk"}, &out))
	assert.Error(t, run("update", []string{"-path", path, "-id", "x", "-field", "status", "-value", "done"}, &out))
	assert.Error(t, run("rename", nil, &out))
}
