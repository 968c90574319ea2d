package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/helmcode/pestscan/pkg/llm"
	"github.com/helmcode/pestscan/pkg/schema"
	"github.com/helmcode/pestscan/pkg/server"
	"github.com/spf13/cobra"
)

var servePort string

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the report bridge",
		Long: `Run the HTTP bridge that turns a pest photo into a structured report.

The bridge accepts POST /api/analyze with {"imageDataUrl": "data:image/..."}
and answers with a report that matches the output schema.

Errors are JSON objects of the form {"error": "..."}:
  405  any method other than POST (with Allow: POST)
  400  missing, non-string or undecodable imageDataUrl
  413  request body larger than MAX_BODY_SIZE
  500  missing provider key, provider failure or output outside the schema

Examples:
  # Serve with OpenAI (OPENAI_API_KEY must be set)
  pestscan serve

  # Serve with Anthropic on another port
  LLM_PROVIDER=claude pestscan serve --port 9090

  # Serve canned reports for local development
  LLM_PROVIDER=stub pestscan serve`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	setupLogging(cfg)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}

	factory := llm.NewFactory(cfg.LLM)
	if provider, err := factory.Create(); err != nil {
		if !errors.Is(err, llm.ErrMissingAPIKey) {
			return err
		}
		// Requests fail with "Server misconfigured" until the key is provided.
		log.WithError(err).Warn("bridge.start.missing_credential")
	} else {
		log.WithFields(log.Fields{
			"provider": provider.Name(),
			"model":    provider.GetModel(),
			"language": cfg.ReportLanguage,
		}).Info("bridge.start")
	}

	handlers := server.NewHandlers(factory, validator, cfg.ReportLanguage, cfg.MaxBodySize.Value())
	router := server.NewRouter(handlers, cfg.AllowedOrigins)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, ":"+cfg.Port, router)
}
