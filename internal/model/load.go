package model

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "rotator"

// NewViper returns a viper instance with all defaults registered and
// ROTATOR_* environment variables enabled (tool.timeout -> ROTATOR_TOOL_TIMEOUT).
func NewViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("input", d.Input)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("color", d.Color)
	v.SetDefault("tool.binary", d.Tool.Binary)
	v.SetDefault("tool.interface", d.Tool.Interface)
	v.SetDefault("tool.timeout", d.Tool.Timeout)
	v.SetDefault("tool.max_concurrent", d.Tool.MaxConcurrent)
	v.SetDefault("rotation.retries", d.Rotation.Retries)
	v.SetDefault("rotation.service_account", d.Rotation.ServiceAccount)
	v.SetDefault("rotation.admin_slot", d.Rotation.AdminSlot)
	v.SetDefault("rotation.channel", d.Rotation.Channel)
	v.SetDefault("rotation.privilege", d.Rotation.Privilege)
	v.SetDefault("logs.success", d.Logs.Success)
	v.SetDefault("logs.failure", d.Logs.Failure)
	v.SetDefault("logs.badlines", d.Logs.BadLines)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file at path, merges it with the
// sources already registered in v and validates the result.
func LoadConfig(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
