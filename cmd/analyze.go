package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/helmcode/pestscan/pkg/bridgeclient"
	"github.com/helmcode/pestscan/pkg/formatter"
	"github.com/helmcode/pestscan/pkg/upload"
	"github.com/spf13/cobra"
)

var (
	bridgeURL    string
	outputFormat string
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze PHOTO",
		Short: "Identify the pest in a photo and print the report",
		Long: `Send a photo to the report bridge and print the professional pest report.

The photo must be an image of at most MAX_IMAGE_SIZE (8Mi by default).

Examples:
  # Analyze a photo with a local bridge
  pestscan analyze rat.jpg

  # Use a remote bridge and print JSON
  pestscan analyze droppings.png --bridge https://pestscan.example/api/analyze -o json`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVar(&bridgeURL, "bridge", "", "Report bridge URL (overrides PESTSCAN_BRIDGE_URL)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "human", "Output format (human, json, yaml)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(outputFormat); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if bridgeURL != "" {
		cfg.BridgeURL = bridgeURL
	}

	// Keep stdout clean for machine-readable output.
	var status io.Writer = os.Stdout
	if outputFormat != "human" {
		status = os.Stderr
	}

	printHeader(status, cfg.BridgeURL)

	session := upload.NewSession(bridgeclient.New(cfg.BridgeURL), cfg.MaxImageSize.Value())
	if err := session.Pick(args[0]); err != nil {
		printError(status, err.Error())
		return fmt.Errorf("photo rejected: %w", err)
	}
	formatter.DisplayFileInfo(status, session.State().Image)

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(status))
	s.Suffix = " Analyzing with AI..."
	s.Start()

	report, err := session.Analyze(cmd.Context())
	s.Stop()
	if err != nil {
		printError(status, err.Error())
		return fmt.Errorf("AI analysis failed: %w", err)
	}
	printSuccess(status, "Analysis complete")

	return formatter.DisplayResults(report, outputFormat)
}

func printHeader(w io.Writer, bridge string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🔍 Pest Scan")
	fmt.Fprintf(w, "🌐 Bridge: %s\n", bridge)
}
