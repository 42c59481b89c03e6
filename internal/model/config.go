package model

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultBinary         = "ipmitool"
	DefaultInterface      = "lanplus"
	DefaultTimeout        = 15 * time.Second
	DefaultMaxConcurrent  = 10
	DefaultRetries        = 1
	DefaultServiceAccount = "user"
	DefaultAdminSlot      = "2"
	DefaultChannel        = "1"
	DefaultPrivilege      = 3

	DefaultSuccessLog  = "success.log"
	DefaultFailureLog  = "failure.log"
	DefaultBadLinesLog = "badlines.log"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"field", "mapstructure"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
}

type Config struct {
	Version  int      `mapstructure:"version" yaml:"version" validate:"eq=0"`
	Input    string   `mapstructure:"input" yaml:"input"`
	Verbose  bool     `mapstructure:"verbose" yaml:"verbose"`
	Color    bool     `mapstructure:"color" yaml:"color"`
	Tool     Tool     `mapstructure:"tool" yaml:"tool"`
	Rotation Rotation `mapstructure:"rotation" yaml:"rotation"`
	Logs     Logs     `mapstructure:"logs" yaml:"logs"`
	Metrics  Metrics  `mapstructure:"metrics" yaml:"metrics"`
}

// Tool describes how the management CLI is invoked.
type Tool struct {
	Binary        string        `mapstructure:"binary" yaml:"binary" validate:"required"`
	Interface     string        `mapstructure:"interface" yaml:"interface" validate:"required"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"gt=0"`
	MaxConcurrent int           `mapstructure:"max_concurrent" yaml:"max_concurrent" validate:"min=1,max=1000"`
}

// Rotation holds the account policy applied to every target.
type Rotation struct {
	Retries        int    `mapstructure:"retries" yaml:"retries" validate:"min=0,max=10"`
	ServiceAccount string `mapstructure:"service_account" yaml:"service_account" validate:"required,max=16"`
	AdminSlot      string `mapstructure:"admin_slot" yaml:"admin_slot" validate:"required,numeric"`
	Channel        string `mapstructure:"channel" yaml:"channel" validate:"required,numeric"`
	Privilege      int    `mapstructure:"privilege" yaml:"privilege" validate:"min=1,max=15"`
}

// Logs are the append-only result files, truncated on each run.
type Logs struct {
	Success  string `mapstructure:"success" yaml:"success" validate:"required"`
	Failure  string `mapstructure:"failure" yaml:"failure" validate:"required"`
	BadLines string `mapstructure:"badlines" yaml:"badlines" validate:"required"`
}

type Metrics struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: 0,
		Color:   true,
		Tool: Tool{
			Binary:        DefaultBinary,
			Interface:     DefaultInterface,
			Timeout:       DefaultTimeout,
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Rotation: Rotation{
			Retries:        DefaultRetries,
			ServiceAccount: DefaultServiceAccount,
			AdminSlot:      DefaultAdminSlot,
			Channel:        DefaultChannel,
			Privilege:      DefaultPrivilege,
		},
		Logs: Logs{
			Success:  DefaultSuccessLog,
			Failure:  DefaultFailureLog,
			BadLines: DefaultBadLinesLog,
		},
	}
}

// Validate checks the decoded configuration. Use ValidationErrDetails
// to get a per-field explanation of the returned error.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// MarshalYAML keeps the timeout human readable ("15s") in dumped configs.
func (t Tool) MarshalYAML() (any, error) {
	return struct {
		Binary        string `yaml:"binary"`
		Interface     string `yaml:"interface"`
		Timeout       string `yaml:"timeout"`
		MaxConcurrent int    `yaml:"max_concurrent"`
	}{t.Binary, t.Interface, t.Timeout.String(), t.MaxConcurrent}, nil
}
