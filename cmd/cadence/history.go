package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadencehq/cadence/internal/types"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent decision history",
	Run: func(cmd *cobra.Command, args []string) {
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
		if len(entries) == 0 {
			fmt.Println("No decisions recorded yet.")
			return
		}
		if historyLimit > 0 && len(entries) > historyLimit {
			entries = entries[len(entries)-historyLimit:]
		}

		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, d := range entries {
			marker := green("✓")
			switch d.Action {
			case types.DecisionModified:
				marker = yellow("~")
			case types.DecisionRejected:
				marker = red("✗")
			}
			fmt.Printf("%s %s  %-12s %-9s %s\n", marker,
				d.Timestamp.Local().Format("2006-01-02 15:04"), d.Domain, d.Action, d.Activity)
			if d.Reasoning != "" {
				fmt.Printf("    %s\n", gray(d.Reasoning))
			}
		}
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show (0 = all)")
	rootCmd.AddCommand(historyCmd)
}
