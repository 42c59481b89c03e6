package model_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CZERTAINLY/Rotator/internal/model"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	yml := `
version: 0
input: hosts.csv
tool:
  binary: /usr/local/bin/ipmitool
  timeout: 30s
rotation:
  service_account: svc
logs:
  success: ok.log
`
	path := filepath.Join(t.TempDir(), "rotator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("ROTATOR_TOOL_MAX_CONCURRENT", "4")

	cfg, err := model.LoadConfig(model.NewViper(), path)
	require.NoError(t, err)
	require.Equal(t, "hosts.csv", cfg.Input)
	require.Equal(t, "/usr/local/bin/ipmitool", cfg.Tool.Binary)
	require.Equal(t, "lanplus", cfg.Tool.Interface)
	require.Equal(t, 30*time.Second, cfg.Tool.Timeout)
	require.Equal(t, 4, cfg.Tool.MaxConcurrent)
	require.Equal(t, "svc", cfg.Rotation.ServiceAccount)
	require.Equal(t, 1, cfg.Rotation.Retries)
	require.Equal(t, "ok.log", cfg.Logs.Success)
	require.Equal(t, "failure.log", cfg.Logs.Failure)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := model.LoadConfig(model.NewViper(), "")
	require.NoError(t, err)
	require.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfig_Fail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rotation:\n  retries: -1\n"), 0o600))

	_, err := model.LoadConfig(model.NewViper(), path)
	require.Error(t, err)
	details := model.ValidationErrDetails(err)
	require.Len(t, details, 1)
	require.Equal(t, "rotation.retries: must be at least 0, got -1", details[0].String())

	_, err = model.LoadConfig(model.NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestConfigYAML(t *testing.T) {
	t.Parallel()
	b, err := yaml.Marshal(model.DefaultConfig())
	require.NoError(t, err)
	require.Contains(t, string(b), "timeout: 15s")
	require.Contains(t, string(b), "max_concurrent: 10")
}
