package main

import (
	"fmt"
	"os"

	"github.com/helmcode/pestscan/cmd"
	"github.com/helmcode/pestscan/pkg/version"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pestscan",
		Short: "AI-powered pest identification reports",
		Long: `pestscan turns a photo of a suspected pest into a structured professional
report: identification, risks, causes, an inspection checklist and an IPM plan.

Run "pestscan serve" for the report bridge and "pestscan analyze PHOTO" to use it.`,
		SilenceUsage: true,
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Add subcommands
	rootCmd.AddCommand(
		cmd.NewServeCmd(),
		cmd.NewAnalyzeCmd(),
		cmd.NewSchemaCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pestscan version %s\n", version.Get("pestscan"))
		},
	}
}
