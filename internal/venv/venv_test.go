package venv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pydeploy/internal/config"
	"pydeploy/internal/runner"
)

func testConfig(t *testing.T) *config.DeploymentConfig {
	t.Helper()
	dir := t.TempDir()
	return &config.DeploymentConfig{
		ProjectDir: dir,
		VenvDir:    filepath.Join(dir, "venv"),
	}
}

func TestEnsure_CreatesMissingVenv(t *testing.T) {
	cfg := testConfig(t)
	sr := runner.NewScriptedRunner()

	err := NewProvisioner(sr).Ensure(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.True(t, sr.Ran("python3 -m venv "+cfg.VenvDir))
	assert.True(t, sr.Ran("install --upgrade pip"))
	assert.True(t, sr.Ran("gunicorn=="))
}

func TestEnsure_ReusesExistingVenv(t *testing.T) {
	cfg := testConfig(t)
	binDir := filepath.Join(cfg.VenvDir, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "python"), []byte("#!/bin/sh\n"), 0o755))

	sr := runner.NewScriptedRunner()
	err := NewProvisioner(sr).Ensure(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.False(t, sr.Ran("-m venv"), "existing virtualenv must not be recreated")
	assert.True(t, sr.Ran("install"), "dependencies are still installed on reuse")
}

func TestEnsure_InstallFailureIsFatal(t *testing.T) {
	cfg := testConfig(t)
	sr := runner.NewScriptedRunner(runner.Result{
		Match: "flask==",
		Err:   errors.New("exit status 1"),
	})

	err := NewProvisioner(sr).Ensure(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDependencyInstall)
}
