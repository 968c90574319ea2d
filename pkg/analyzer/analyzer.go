package analyzer

import (
	"context"
	"fmt"

	"github.com/helmcode/pestscan/pkg/llm"
	"github.com/helmcode/pestscan/pkg/model"
	"github.com/helmcode/pestscan/pkg/parser"
	"github.com/helmcode/pestscan/pkg/prompts"
	"github.com/helmcode/pestscan/pkg/schema"
)

type Analyzer struct {
	llm       llm.LLM
	validator *schema.Validator
	language  string
}

func NewWithLLM(l llm.LLM, validator *schema.Validator) *Analyzer {
	return &Analyzer{llm: l, validator: validator, language: prompts.DefaultLanguage}
}

// WithLanguage sets the language the report text is written in.
func (a *Analyzer) WithLanguage(language string) *Analyzer {
	if language != "" {
		a.language = language
	}
	return a
}

// Analyze produces a report for one inline-encoded image with a single
// provider call.
func (a *Analyzer) Analyze(ctx context.Context, imageDataURL string) (*model.Report, error) {
	req := llm.ReportRequest{
		Instructions: prompts.BuildInstructions(a.language),
		Prompt:       prompts.UserPrompt,
		ImageDataURL: imageDataURL,
		SchemaName:   schema.Name,
		Schema:       schema.Report(),
	}

	raw, err := a.llm.GenerateReport(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM report: %w", err)
	}

	return parser.ParseReport(raw, a.validator)
}
