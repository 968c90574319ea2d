package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/helmcode/pestscan/pkg/llm"
	"github.com/helmcode/pestscan/pkg/parser"
	"github.com/helmcode/pestscan/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLLM struct {
	calls int
	req   llm.ReportRequest
	out   []byte
	err   error
}

func (r *recordingLLM) GenerateReport(ctx context.Context, req llm.ReportRequest) ([]byte, error) {
	r.calls++
	r.req = req
	return r.out, r.err
}

func (r *recordingLLM) Name() string     { return "recording" }
func (r *recordingLLM) GetModel() string { return "test" }

func TestAnalyze(t *testing.T) {
	stubOut, err := llm.NewStub().GenerateReport(context.Background(), llm.ReportRequest{})
	require.NoError(t, err)

	fake := &recordingLLM{out: stubOut}
	a := NewWithLLM(fake, schema.MustNewValidator()).WithLanguage("German")

	report, err := a.Analyze(context.Background(), "data:image/png;base64,iVBORw0KGgo=")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "low", report.Risk.Urgency)

	assert.Equal(t, schema.Name, fake.req.SchemaName)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", fake.req.ImageDataURL)
	assert.Contains(t, fake.req.Instructions, "in German.")
	assert.NotEmpty(t, fake.req.Prompt)
	assert.Equal(t, false, fake.req.Schema["additionalProperties"])
}

func TestAnalyzeErrors(t *testing.T) {
	t.Run("provider error is wrapped", func(t *testing.T) {
		apiErr := &llm.APIError{Provider: "OpenAI", StatusCode: 429, Message: "Rate limit reached"}
		a := NewWithLLM(&recordingLLM{err: apiErr}, schema.MustNewValidator())

		_, err := a.Analyze(context.Background(), "data:image/png;base64,AA==")
		var got *llm.APIError
		require.True(t, errors.As(err, &got))
		assert.Equal(t, "Rate limit reached", got.Message)
	})

	t.Run("malformed output is rejected", func(t *testing.T) {
		a := NewWithLLM(&recordingLLM{out: []byte(`{"pest": {}}`)}, schema.MustNewValidator())

		report, err := a.Analyze(context.Background(), "data:image/png;base64,AA==")
		assert.Nil(t, report)
		assert.ErrorIs(t, err, parser.ErrInvalidReport)
	})
}
