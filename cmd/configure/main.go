package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/focusflow/focusflow/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "focusflow-configure",
		Short: "Configuration tool for FocusFlow API",
		Long:  "CLI tool for inspecting and updating FocusFlow settings and running maintenance tasks",
	}

	rootCmd.AddCommand(commands.NewSettingsCmd())
	rootCmd.AddCommand(commands.NewRolloverCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
