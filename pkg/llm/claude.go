package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultClaudeBaseURL = "https://api.anthropic.com/v1"
	DefaultClaudeModel   = "claude-sonnet-4-20250514"
)

type Claude struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

func NewClaude(apiKey string) *Claude {
	return NewClaudeWithModel(apiKey, DefaultClaudeModel)
}

func NewClaudeWithModel(apiKey, model string) *Claude {
	return &Claude{
		apiKey:  apiKey,
		baseURL: DefaultClaudeBaseURL,
		client:  &http.Client{},
		model:   model,
	}
}

func (c *Claude) WithBaseURL(baseURL string) *Claude {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

type claudeImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeContent struct {
	Type   string             `json:"type"`
	Text   string             `json:"text,omitempty"`
	Source *claudeImageSource `json:"source,omitempty"`
}

type claudeTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// GenerateReport forces a single tool call whose input schema is the report
// schema; the tool input is the structured report.
func (c *Claude) GenerateReport(ctx context.Context, req ReportRequest) ([]byte, error) {
	mediaType, image, err := DecodeImageDataURL(req.ImageDataURL)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"model":      c.model,
		"max_tokens": 4096,
		"system":     req.Instructions,
		"messages": []map[string]interface{}{{
			"role": "user",
			"content": []claudeContent{
				{Type: "image", Source: &claudeImageSource{
					Type:      "base64",
					MediaType: mediaType,
					Data:      base64.StdEncoding.EncodeToString(image),
				}},
				{Type: "text", Text: req.Prompt},
			},
		}},
		"tools": []claudeTool{{
			Name:        req.SchemaName,
			Description: "Record the structured pest report.",
			InputSchema: req.Schema,
		}},
		"tool_choice": map[string]string{"type": "tool", "name": req.SchemaName},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var claudeResp struct {
		Content []struct {
			Type  string          `json:"type"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeErr := json.Unmarshal(respBytes, &claudeResp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "Claude error"
		if decodeErr == nil && claudeResp.Error.Message != "" {
			msg = claudeResp.Error.Message
		}
		return nil, &APIError{Provider: "Claude", StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("parse response: %w", decodeErr)
	}

	for _, block := range claudeResp.Content {
		if block.Type == "tool_use" && block.Name == req.SchemaName && len(block.Input) > 0 {
			return block.Input, nil
		}
	}
	return nil, ErrNoStructuredOutput
}

func (c *Claude) Name() string {
	return "claude"
}

func (c *Claude) GetModel() string {
	return c.model
}
