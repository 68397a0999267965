package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadencehq/cadence/internal/council"
	"github.com/cadencehq/cadence/internal/engine"
	"github.com/cadencehq/cadence/internal/reasoning"
	"github.com/cadencehq/cadence/internal/safety"
	"github.com/cadencehq/cadence/internal/session"
	"github.com/cadencehq/cadence/internal/types"
)

var (
	decideSleep     float64
	decideEnergy    int
	decideStress    string
	decideTime      float64
	decideTasks     []string
	decideOverrides []string
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Run one decision cycle over today's snapshot and schedule",
	Long: `Run the full decision pipeline: constraints, priority allocation,
council consensus, circuit breaker, and plan adjustment.

Tasks are given as title:domain:minutes[:intensity], repeatable:

  cadence decide --sleep 4 --energy 2 --stress high --time 2 \
    --task "Morning run:fitness:45:0.8" \
    --task "Meal prep:nutrition:30:0.2"`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		tasks, err := parseTasks(decideTasks)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		var rationalizer council.Rationalizer
		if client, err := reasoning.New(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: reasoning unavailable, using templated rationales: %v\n", err)
		} else if client != nil {
			rationalizer = client
		}

		sess := session.New(store)
		if err := sess.UpdateHealth(types.HealthState{
			SleepHours:    decideSleep,
			EnergyLevel:   decideEnergy,
			StressLevel:   types.StressLevel(strings.ToLower(decideStress)),
			AvailableTime: decideTime,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		sess.SetTasks(tasks)

		result, err := engine.New(cfg, rationalizer).RunCycle(context.Background(), sess)
		if err != nil && result == nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if result.Conservative {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}

		if err := applyOverrides(result.Schedule, decideOverrides); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		printCycle(result)
	},
}

func parseTasks(specs []string) ([]types.Task, error) {
	tasks := make([]types.Task, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("task %q must be title:domain:minutes[:intensity]", spec)
		}
		domain := types.Domain(strings.ToLower(parts[1]))
		if !domain.IsValid() {
			return nil, fmt.Errorf("task %q: unknown domain %q", spec, parts[1])
		}
		minutes, err := strconv.Atoi(parts[2])
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("task %q: minutes must be a positive integer", spec)
		}
		intensity := 0.5
		if len(parts) == 4 {
			intensity, err = strconv.ParseFloat(parts[3], 64)
			if err != nil || intensity < 0 || intensity > 1 {
				return nil, fmt.Errorf("task %q: intensity must be in [0,1]", spec)
			}
		}
		tasks = append(tasks, types.Task{
			Title:           parts[0],
			Domain:          domain,
			DurationMinutes: minutes,
			Intensity:       intensity,
		})
	}
	return tasks, nil
}

// applyOverrides clears blocks on specific task instances, given as
// title=justification. A justification is mandatory; overriding a task
// that isn't blocked is an error.
func applyOverrides(schedule []types.Task, overrides []string) error {
	for _, o := range overrides {
		title, justification, ok := strings.Cut(o, "=")
		if !ok {
			return fmt.Errorf("override %q must be title=justification", o)
		}
		found := false
		for i := range schedule {
			if schedule[i].Title == title {
				found = true
				if err := safety.Override(&schedule[i], justification); err != nil {
					return err
				}
			}
		}
		if !found {
			return fmt.Errorf("override %q: no task titled %q in the schedule", o, title)
		}
	}
	return nil
}

func printCycle(r *engine.CycleResult) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Printf("\n%s\n", cyan("Metrics"))
	fmt.Printf("  Readiness %.0f/100, sleep score %.0f, burnout risk %.0f (%s, driven by %s)\n",
		r.Metrics.ReadinessScore, r.Metrics.SleepScore, r.Metrics.BurnoutRiskScore,
		riskColor(r.Metrics.BurnoutRiskLabel)(string(r.Metrics.BurnoutRiskLabel)), r.Metrics.PrimaryFactor)

	if r.Constraints.Len() > 0 {
		fmt.Printf("\n%s\n", cyan("Active constraints"))
		for _, c := range r.Constraints.Constraints {
			fmt.Printf("  %s %s (severity %.1f): %s\n", yellow("!"), c.Kind, c.Severity, c.Trigger)
		}
	}

	fmt.Printf("\n%s\n", cyan("Allocation"))
	for _, d := range r.TradeOffs {
		marker := green("•")
		switch d.Action {
		case types.ActionSkip:
			marker = red("✗")
		case types.ActionDowngrade:
			marker = yellow("↓")
		case types.ActionPrioritize:
			marker = green("★")
		}
		fmt.Printf("  %s %-13s %-10s %3d min  %s\n", marker, d.Domain, d.Action, d.AllocatedMinutes, gray(d.Reasoning))
	}

	if r.Consensus != nil {
		fmt.Printf("\n%s %s (severity %.2f, confidence %.2f",
			cyan("Council:"), r.Consensus.Vote, r.Consensus.AggregateSeverity, r.Consensus.AggregateConfidence)
		if r.Consensus.Degraded {
			fmt.Printf(", %s", yellow("degraded"))
		}
		fmt.Println(")")
		for _, v := range r.Consensus.Votes {
			fmt.Printf("  %-18s %-7s %.2f  %s\n", v.ProfileID, v.Vote, v.Confidence, gray(v.Rationale))
		}
	}

	if r.Breaker.Engaged {
		fmt.Printf("\n%s %s\n", red("Circuit breaker engaged:"), r.Breaker.Reason)
	}

	if len(r.Schedule) > 0 {
		fmt.Printf("\n%s\n", cyan("Schedule"))
		for _, t := range r.Schedule {
			switch {
			case t.IsBlocked:
				fmt.Printf("  %s %s (%d min) blocked: %s\n", red("✗"), t.Title, t.DurationMinutes, t.BlockReason)
			case t.Skipped:
				fmt.Printf("  %s %s (%d min) skipped: %s\n", gray("-"), t.Title, t.DurationMinutes, t.AdjustReason)
			case t.Substituted:
				fmt.Printf("  %s %s (%d min) replaces %s\n", yellow("↓"), t.Title, t.DurationMinutes, t.SubstituteFor)
			default:
				fmt.Printf("  %s %s (%d min)\n", green("✓"), t.Title, t.DurationMinutes)
			}
		}
	}

	if len(r.FutureImpacts) > 0 {
		fmt.Printf("\n%s\n", cyan("Looking ahead"))
		for _, impact := range r.FutureImpacts {
			fmt.Printf("  %s %s (%d days)\n", gray("→"), impact.Description, impact.DaysAffected)
		}
	}
	fmt.Println()
}

func riskColor(label types.RiskLabel) func(a ...interface{}) string {
	switch label {
	case types.RiskHigh:
		return color.New(color.FgRed).SprintFunc()
	case types.RiskModerate:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgGreen).SprintFunc()
	}
}

func init() {
	decideCmd.Flags().Float64Var(&decideSleep, "sleep", 7, "hours slept last night")
	decideCmd.Flags().IntVar(&decideEnergy, "energy", 5, "energy level 1-10")
	decideCmd.Flags().StringVar(&decideStress, "stress", "medium", "stress level: low, medium, high")
	decideCmd.Flags().Float64Var(&decideTime, "time", 2, "available time in hours")
	decideCmd.Flags().StringArrayVar(&decideTasks, "task", nil, "planned task as title:domain:minutes[:intensity] (repeatable)")
	decideCmd.Flags().StringArrayVar(&decideOverrides, "override", nil, "clear a block as title=justification (repeatable)")
	rootCmd.AddCommand(decideCmd)
}
