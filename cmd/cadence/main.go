// Command cadence is the adaptive daily-capacity decision engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cadencehq/cadence/internal/config"
	"github.com/cadencehq/cadence/internal/history"
)

var (
	cfgPath string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Adaptive daily-capacity decision engine",
	Long: `Cadence decides how much of your day each activity domain deserves.

Give it a health snapshot (sleep, energy, stress, available time) and the
day's planned tasks; it derives active constraints, reweights domain
priorities, runs a four-profile consensus council, applies the safety
circuit breaker, and produces the adjusted schedule with every decision
recorded for audit.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultPath("config.yaml"), "path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultPath("history.db"), "path to the decision history database")
}

func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cadence", name)
	}
	return filepath.Join(home, ".cadence", name)
}

// loadConfig reads the configured file, falling back to defaults when
// it doesn't exist yet.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	return cfg, nil
}

// openStore opens the persistent decision history.
func openStore() (history.Store, error) {
	store, err := history.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", dbPath, err)
	}
	return store, nil
}
