package model_test

import (
	"testing"
	"time"

	"github.com/CZERTAINLY/Rotator/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "ipmitool", cfg.Tool.Binary)
	require.Equal(t, "lanplus", cfg.Tool.Interface)
	require.Equal(t, 15*time.Second, cfg.Tool.Timeout)
	require.Equal(t, 10, cfg.Tool.MaxConcurrent)
	require.Equal(t, 1, cfg.Rotation.Retries)
	require.Equal(t, "2", cfg.Rotation.AdminSlot)
}

func TestConfig_Fail(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Tool.MaxConcurrent = 0
	cfg.Tool.Binary = ""
	cfg.Rotation.AdminSlot = "two"

	err := cfg.Validate()
	require.Error(t, err)

	details := model.ValidationErrDetails(err)
	require.Len(t, details, 3)

	got := make(map[string]string, len(details))
	for _, d := range details {
		got[d.Path] = d.Code
	}
	require.Equal(t, map[string]string{
		"tool.binary":         "required",
		"tool.max_concurrent": "min",
		"rotation.admin_slot": "numeric",
	}, got)
}
