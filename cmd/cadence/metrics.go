package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadencehq/cadence/internal/risk"
	"github.com/cadencehq/cadence/internal/types"
)

var (
	metricsSleep  float64
	metricsEnergy int
	metricsStress string
	metricsTime   float64
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute derived health metrics for a snapshot",
	Long: `Compute readiness, sleep score, and burnout risk for a snapshot
without running a full decision cycle.

Example:
  cadence metrics --sleep 5.5 --energy 4 --stress high --time 1`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		state := types.HealthState{
			SleepHours:    metricsSleep,
			EnergyLevel:   metricsEnergy,
			StressLevel:   types.StressLevel(strings.ToLower(metricsStress)),
			AvailableTime: metricsTime,
		}
		if err := state.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		m := risk.New(cfg).ComputeMetrics(&state)

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n", cyan("Computed metrics"))
		fmt.Printf("  Readiness:     %.1f / 100\n", m.ReadinessScore)
		fmt.Printf("  Sleep score:   %.1f / 100\n", m.SleepScore)
		fmt.Printf("  Burnout risk:  %.1f / 100 (%s)\n", m.BurnoutRiskScore, riskColor(m.BurnoutRiskLabel)(string(m.BurnoutRiskLabel)))
		fmt.Printf("  Primary factor: %s\n", m.PrimaryFactor)
		fmt.Printf("  %s\n\n", gray(fmt.Sprintf("With a full night's sleep, readiness recovers to %.0f", m.ProjectedReadiness)))
	},
}

func init() {
	metricsCmd.Flags().Float64Var(&metricsSleep, "sleep", 7, "hours slept last night")
	metricsCmd.Flags().IntVar(&metricsEnergy, "energy", 5, "energy level 1-10")
	metricsCmd.Flags().StringVar(&metricsStress, "stress", "medium", "stress level: low, medium, high")
	metricsCmd.Flags().Float64Var(&metricsTime, "time", 2, "available time in hours")
	rootCmd.AddCommand(metricsCmd)
}
