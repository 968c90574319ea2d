package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-5-mini"
)

type OpenAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

func NewOpenAI(apiKey string) *OpenAI {
	return NewOpenAIWithModel(apiKey, DefaultOpenAIModel)
}

func NewOpenAIWithModel(apiKey, model string) *OpenAI {
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: DefaultOpenAIBaseURL,
		client:  &http.Client{},
		model:   model,
	}
}

// WithBaseURL points the client at another Responses API compatible endpoint.
func (o *OpenAI) WithBaseURL(baseURL string) *OpenAI {
	if baseURL != "" {
		o.baseURL = strings.TrimRight(baseURL, "/")
	}
	return o
}

type responsesRequest struct {
	Model        string           `json:"model"`
	Instructions string           `json:"instructions"`
	Input        []responsesInput `json:"input"`
	Text         responsesText    `json:"text"`
}

type responsesInput struct {
	Role    string         `json:"role"`
	Content []inputContent `json:"content"`
}

type inputContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

type responsesText struct {
	Format textFormat `json:"format"`
}

type textFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

// ResponsesEnvelope is the part of a Responses API reply the bridge reads.
type ResponsesEnvelope struct {
	Output []OutputItem `json:"output"`
	// OutputText is a convenience field some API versions and SDKs add.
	OutputText string `json:"output_text,omitempty"`
	Error      *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type OutputItem struct {
	Type    string          `json:"type"`
	Content []OutputContent `json:"content,omitempty"`
}

type OutputContent struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

func (o *OpenAI) GenerateReport(ctx context.Context, req ReportRequest) ([]byte, error) {
	body := responsesRequest{
		Model:        o.model,
		Instructions: req.Instructions,
		Input: []responsesInput{{
			Role: "user",
			Content: []inputContent{
				{Type: "input_text", Text: req.Prompt},
				{Type: "input_image", ImageURL: req.ImageDataURL, Detail: "high"},
			},
		}},
		Text: responsesText{Format: textFormat{
			Type:   "json_schema",
			Name:   req.SchemaName,
			Schema: req.Schema,
			Strict: true,
		}},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/responses", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", o.apiKey))

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var envelope ResponsesEnvelope
	decodeErr := json.Unmarshal(respBytes, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "OpenAI error"
		if decodeErr == nil && envelope.Error != nil && envelope.Error.Message != "" {
			msg = envelope.Error.Message
		}
		return nil, &APIError{Provider: "OpenAI", StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("parse response: %w", decodeErr)
	}

	text, err := ExtractOutputText(&envelope)
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}

// ExtractOutputText finds the structured text in a Responses API envelope:
// the first output_text entry of a message output item. The top-level
// output_text field is only a fallback since not every API version sets it.
func ExtractOutputText(envelope *ResponsesEnvelope) (string, error) {
	var refusal string
	for _, item := range envelope.Output {
		if item.Type != "message" {
			continue
		}
		for _, content := range item.Content {
			switch content.Type {
			case "output_text":
				if content.Text != "" {
					return content.Text, nil
				}
			case "refusal":
				if refusal == "" {
					refusal = content.Refusal
				}
			}
		}
	}

	if envelope.OutputText != "" {
		return envelope.OutputText, nil
	}
	if refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", ErrNoStructuredOutput, refusal)
	}
	return "", ErrNoStructuredOutput
}

func (o *OpenAI) Name() string {
	return "openai"
}

// GetModel returns the model being used by this OpenAI client
func (o *OpenAI) GetModel() string {
	return o.model
}
