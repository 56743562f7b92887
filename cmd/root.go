package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/steelpath/engine/config"
	"github.com/steelpath/engine/infra/logger"
)

var (
	cfgPath string
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "steelpath",
	Short: "Steel sector decarbonization simulator",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "conf", "c", "scenario.yaml", "scenario configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "directory relative data file paths resolve against")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig reads the scenario file and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}
	cfg.Data.ResolveDir(dataDir)
	return cfg, nil
}
