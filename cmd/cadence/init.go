package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadencehq/cadence/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration and create the history database",
	Long: `Initialize cadence by writing the default configuration file and
creating an empty decision history database.

Example:
  cadence init
  cadence init --config ./cadence.yaml --db ./history.db`,
	Run: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(cfgPath); err == nil && !initForce {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", cfgPath)
			os.Exit(1)
		}

		if err := config.Default().Save(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write config: %v\n", err)
			os.Exit(1)
		}

		store, err := openStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		_ = store.Close()

		green := color.New(color.FgGreen).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s Initialized cadence\n\n", green("✓"))
		fmt.Printf("  Config:  %s\n", cyan(cfgPath))
		fmt.Printf("  History: %s\n", cyan(dbPath))
		fmt.Println()
		fmt.Printf("%s Next steps:\n", gray("→"))
		fmt.Printf("  %s\n", gray(`cadence decide --sleep 7 --energy 6 --stress low --time 2.5 --task "Morning run:fitness:45:0.8"`))
		fmt.Printf("  %s\n", gray("cadence metrics --sleep 7 --energy 6 --stress low --time 2.5"))
		fmt.Println()
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
	rootCmd.AddCommand(initCmd)
}
