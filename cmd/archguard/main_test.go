package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roblaszczak/go-cleanarch/cleanarch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWhenMissing(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "modules", cfg.Root)

	layers := cfg.layers()
	assert.Equal(t, cleanarch.LayerDomain, layers["domain"])
	assert.Equal(t, cleanarch.LayerApplication, layers["services"])
	assert.Equal(t, cleanarch.LayerInterfaces, layers["presentation"])
	assert.Equal(t, cleanarch.LayerInfrastructure, layers["infrastructure"])
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".gocleanarch.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: internal
ignore_tests: true
shared_modules: [shared]
layers:
  application: [usecases]
`), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "internal", cfg.Root)
	assert.True(t, cfg.IgnoreTests)
	layers := cfg.layers()
	assert.Equal(t, cleanarch.LayerApplication, layers["usecases"])
	_, ok := layers["services"]
	assert.False(t, ok)
}

func TestFilterViolations(t *testing.T) {
	cfg := &config{
		SharedModules:     []string{"hris"},
		AllowedViolations: []string{"metrics.go"},
	}
	got := filterViolations([]string{
		"cannot import between billing and hris modules",
		"cannot import between billing and payroll modules",
		"domain cannot depend on infrastructure in metrics.go",
		"domain cannot depend on infrastructure in employee.go",
	}, cfg)
	assert.Equal(t, []string{
		"cannot import between billing and payroll modules",
		"domain cannot depend on infrastructure in employee.go",
	}, got)
}
