package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
	"github.com/fatih/color"
	"github.com/helmcode/pestscan/pkg/config"
)

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}

// loadConfig reads .env files and the environment.
func loadConfig() (*config.Config, error) {
	if _, err := config.LoadEnvFiles(); err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	switch cfg.LogFormat {
	case "json":
		log.SetHandler(json.New(os.Stderr))
	default:
		log.SetHandler(text.New(os.Stderr))
	}
	log.SetLevelFromString(cfg.LogLevel)
}

func validateOutputFormat(format string) error {
	switch format {
	case "human", "json", "yaml":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml)", format)
	}
}
