package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/helmcode/pestscan/pkg/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var schemaFormat string

func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the report output schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := renderSchema(schemaFormat)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&schemaFormat, "output", "o", "json", "Output format (json, yaml)")

	return cmd
}

func renderSchema(format string) (string, error) {
	switch format {
	case "json":
		out, err := json.MarshalIndent(schema.Report(), "", "  ")
		if err != nil {
			return "", err
		}
		return string(out) + "\n", nil
	case "yaml":
		out, err := yaml.Marshal(schema.Report())
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (supported: json, yaml)", format)
	}
}
