package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonidyasin/tablebot"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tablebot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tablebot version %s\n", strings.TrimSpace(tablebot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
