package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"

	"github.com/leonidyasin/tablebot/internal/logging"
	"github.com/leonidyasin/tablebot/pkg/domain"
	"github.com/leonidyasin/tablebot/pkg/table"
)

var validateCmd = &cobra.Command{
	Use:   "validate [table.csv]",
	Short: "Check a rule table and print its states and commands",
	Long: `Parses the rule table, reports rows that would be dropped or fail
closed, and prints the discovered states and command menu. Exit status is
non-zero when the table cannot be loaded at all.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "table.csv"
		if t, _ := cmd.Flags().GetString("table"); t != "" {
			path = t
		}
		if len(args) == 1 {
			path = args[0]
		}
		return validateTable(cmd, path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateTable(cmd *cobra.Command, path string) error {
	// Diagnostics for dropped rows go to stderr through the logger.
	rules, err := table.Load(path, logging.New(slog.LevelWarn))
	if err != nil {
		return err
	}
	snap := domain.NewSnapshot(rules)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "table: %s\n", path)
	fmt.Fprintf(out, "rules: %d\n", len(snap.Rules()))

	states := snap.States()
	sort.Strings(states)
	fmt.Fprintf(out, "states (%d):\n", len(states))
	for _, s := range states {
		fmt.Fprintf(out, "  %s\n", s)
	}

	commands := snap.Commands()
	fmt.Fprintf(out, "commands (%d):\n", len(commands))
	for _, c := range commands {
		fmt.Fprintf(out, "  /%s - %s\n", c.Command, c.Description)
	}

	warnInvalid(out, snap.Rules())
	return nil
}

func warnInvalid(out io.Writer, rules []domain.Rule) {
	for _, r := range rules {
		if r.Condition.Kind == domain.CondInvalid {
			fmt.Fprintf(out, "warning: rule %d has a malformed condition %q (fails closed)\n",
				r.Index, r.Condition.Raw)
		}
		if r.Condition.Kind == domain.CondUnknown {
			fmt.Fprintf(out, "warning: rule %d has an unknown condition %q (never skips)\n",
				r.Index, r.Condition.Raw)
		}
		for _, a := range r.Actions {
			if a.Kind == domain.ActionUnknown {
				fmt.Fprintf(out, "warning: rule %d has an unknown action %q (ignored)\n",
					r.Index, a.Raw)
			}
		}
	}
}
