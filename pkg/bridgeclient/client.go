package bridgeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/helmcode/pestscan/pkg/model"
)

// ErrAnalysisFailed is returned for a non-success bridge response that
// carries no error message of its own.
var ErrAnalysisFailed = errors.New("analysis failed")

// Client posts photos to a running report bridge.
type Client struct {
	url    string
	client *http.Client
}

func New(url string) *Client {
	return &Client{
		url:    strings.TrimSpace(url),
		client: &http.Client{},
	}
}

type analyzeRequest struct {
	ImageDataURL string `json:"imageDataUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Analyze sends one data URL to the bridge and decodes the report it returns.
func (c *Client) Analyze(ctx context.Context, imageDataURL string) (*model.Report, error) {
	payload, err := json.Marshal(analyzeRequest{ImageDataURL: imageDataURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach bridge: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return nil, errors.New(errResp.Error)
		}
		return nil, ErrAnalysisFailed
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	var report model.Report
	if err := dec.Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}
