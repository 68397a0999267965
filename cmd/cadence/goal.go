package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadencehq/cadence/internal/reasoning"
	"github.com/cadencehq/cadence/internal/types"
)

var (
	goalSleep  float64
	goalEnergy int
	goalStress string
)

var goalCmd = &cobra.Command{
	Use:   "goal <text>",
	Short: "Evaluate a goal for biological realism and safety",
	Long: `Evaluate a free-text goal against safety heuristics (and the
reasoning service when enabled). Unsafe goals get a counter-proposal
instead of a rubber stamp.

Examples:
  cadence goal "lose 10kg in 4 weeks"
  cadence goal "run every day for a year"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		client, err := reasoning.New(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: reasoning unavailable, using heuristics: %v\n", err)
			client = nil
		}

		state := types.HealthState{
			SleepHours:  goalSleep,
			EnergyLevel: goalEnergy,
			StressLevel: types.StressLevel(strings.ToLower(goalStress)),
		}

		goal := strings.Join(args, " ")
		assessment, degraded := client.EvaluateGoal(context.Background(), goal, &state)

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		var verdict string
		switch assessment.Status {
		case reasoning.GoalAccepted:
			verdict = green(string(assessment.Status))
		case reasoning.GoalNegotiate:
			verdict = yellow(string(assessment.Status))
		default:
			verdict = red(string(assessment.Status))
		}

		fmt.Printf("\n%s (risk %.2f)\n", verdict, assessment.RiskScore)
		fmt.Printf("  %s\n", assessment.Reasoning)
		if assessment.CounterProposal != "" {
			fmt.Printf("  Counter-proposal: %s\n", assessment.CounterProposal)
		}
		if degraded {
			fmt.Printf("  %s\n", gray("(heuristic evaluation)"))
		}
		fmt.Println()
	},
}

func init() {
	goalCmd.Flags().Float64Var(&goalSleep, "sleep", 7, "hours slept last night")
	goalCmd.Flags().IntVar(&goalEnergy, "energy", 5, "energy level 1-10")
	goalCmd.Flags().StringVar(&goalStress, "stress", "medium", "stress level: low, medium, high")
	rootCmd.AddCommand(goalCmd)
}
