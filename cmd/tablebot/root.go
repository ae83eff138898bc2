package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tablebot",
	Short: "Tablebot runs conversational bots defined in a CSV rule table",
	Long: `Tablebot turns a CSV table of (state, trigger) rows into a running
chat bot. Analysts edit the table; tablebot handles matching, guards,
effects, templating and session persistence.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the YAML config file")
	rootCmd.PersistentFlags().String("table", "", "Path to the CSV rule table (overrides config)")
}
