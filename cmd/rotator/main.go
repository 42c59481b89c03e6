package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/CZERTAINLY/Rotator/internal/log"
	"github.com/CZERTAINLY/Rotator/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	userConfigPath string // /default/config/path/rotator on given OS
	configPath     string // actual config file used (if loaded)
	config         model.Config

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
	flagNoColor        bool   // value of --no-color flag
)

// flag name -> config key
var flagKeys = map[string]string{
	"input":            "input",
	"timeout":          "tool.timeout",
	"max-concurrent":   "tool.max_concurrent",
	"retries":          "rotation.retries",
	"metrics-textfile": "metrics.textfile",
}

func init() {
	d, err := os.UserConfigDir()
	if err != nil {
		d = "."
	}
	userConfigPath = filepath.Join(d, "rotator")
}

func main() {
	// root flags
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "Config file to load - default is rotator.yaml in current directory or in "+userConfigPath)
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored console output")

	runCmd.Flags().StringP("input", "i", "", "CSV file with targets (default input.csv)")
	runCmd.Flags().Duration("timeout", model.DefaultTimeout, "timeout of a single ipmitool invocation")
	runCmd.Flags().Int("max-concurrent", model.DefaultMaxConcurrent, "maximum number of ipmitool processes running at once")
	runCmd.Flags().Int("retries", model.DefaultRetries, "retries of a failed password change")
	runCmd.Flags().String("metrics-textfile", "", "write prometheus metrics to this file after the run")

	// never print messages
	rootCmd.SilenceErrors = true

	// parse config, setup logging
	rootCmd.PersistentPreRunE = initRotator

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("rotator failed", "err", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "rotator",
	Short:        "Bulk IPMI credential rotation",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run [input.csv]",
	Short: "rotate admin and service account passwords of all targets in the input file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  doRun,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", configPath)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(config); err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		return enc.Close()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provide version of a rotator",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("rotator: version info not available")
			return
		}

		if configPath != "" {
			fmt.Printf("config:  %s\n", configPath)
		}
		fmt.Printf("rotator: %s\n", info.Main.Version)
		fmt.Printf("go:      %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit:  %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:    %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:   %s\n", s.Value)
			}
		}
		fmt.Println()
	},
}

func initRotator(cmd *cobra.Command, _ []string) error {
	if envConfig, ok := os.LookupEnv("ROTATORCONFIG"); ok {
		configPath = envConfig
	} else if flagConfigFilePath != "" {
		configPath = flagConfigFilePath
	} else {
		for _, d := range []string{".", userConfigPath} {
			path := filepath.Join(d, "rotator.yaml")
			if exists(path) {
				configPath = path
				break
			}
		}
	}

	v := model.NewViper()
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	var err error
	config, err = model.LoadConfig(v, configPath)
	if err != nil {
		for _, d := range model.ValidationErrDetails(err) {
			slog.Error("invalid configuration", d.Attr("detail"))
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// --verbose and --no-color have a precedence over config file
	if flagVerbose {
		config.Verbose = true
	}
	if flagNoColor || color.NoColor {
		config.Color = false
	}

	slog.SetDefault(log.New(config.Verbose, os.Stderr))

	slog.Debug("rotator run", "configPath", configPath)
	slog.Debug("rotator run", "config", config)
	return nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
