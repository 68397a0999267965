package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadencehq/cadence/internal/risk"
	"github.com/cadencehq/cadence/internal/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize recent adherence and detected patterns",
	Long: `Summarize the recent decision window: completion rate, per-domain
and per-weekday skip rates, and any adaptive signals that will reshape
upcoming priorities.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
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

		entries, err := store.Snapshot(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		report := risk.New(cfg).Report(entries, time.Now())

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s (last %d days)\n", cyan("Adherence report"), report.WindowDays)
		if report.TotalDecisions == 0 {
			fmt.Printf("  %s\n\n", gray("No decisions recorded in the window yet."))
			return
		}
		fmt.Printf("  %d decisions, %.0f%% completed\n", report.TotalDecisions, report.CompletionRate*100)

		if len(report.DomainSkipRates) > 0 {
			fmt.Printf("\n%s\n", cyan("Skip rate by domain"))
			domains := make([]types.Domain, 0, len(report.DomainSkipRates))
			for d := range report.DomainSkipRates {
				domains = append(domains, d)
			}
			sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })
			for _, d := range domains {
				fmt.Printf("  %-13s %5.0f%%\n", d, report.DomainSkipRates[d]*100)
			}
		}

		if len(report.ConstraintCounts) > 0 {
			fmt.Printf("\n%s\n", cyan("Constraint frequency"))
			kinds := make([]types.ConstraintKind, 0, len(report.ConstraintCounts))
			for k := range report.ConstraintCounts {
				kinds = append(kinds, k)
			}
			sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
			for _, k := range kinds {
				fmt.Printf("  %-16s %d\n", k, report.ConstraintCounts[k])
			}
		}

		if len(report.WeekdaySkipRates) > 0 {
			fmt.Printf("\n%s\n", cyan("Skip rate by weekday"))
			for day := time.Sunday; day <= time.Saturday; day++ {
				if rate, ok := report.WeekdaySkipRates[day]; ok {
					fmt.Printf("  %-10s %5.0f%%\n", day, rate*100)
				}
			}
		}

		if len(report.Signals) > 0 {
			fmt.Printf("\n%s\n", cyan("Adaptive signals"))
			for _, s := range report.Signals {
				fmt.Printf("  %s %s\n", yellow("!"), s.Reason)
			}
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
