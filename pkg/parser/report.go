package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/helmcode/pestscan/pkg/model"
	"github.com/helmcode/pestscan/pkg/schema"
)

// ErrInvalidReport wraps every reason a payload is rejected as a report.
var ErrInvalidReport = errors.New("invalid report")

// ParseReport turns a structured output payload into a report. The payload
// must match the schema exactly; nothing is filled in or repaired.
func ParseReport(raw []byte, validator *schema.Validator) (*model.Report, error) {
	cleaned := []byte(stripFences(string(raw)))
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidReport)
	}

	if err := validator.Validate(cleaned); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}

	dec := json.NewDecoder(bytes.NewReader(cleaned))
	dec.DisallowUnknownFields()
	var report model.Report
	if err := dec.Decode(&report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return &report, nil
}

// stripFences removes one markdown code fence wrapping the whole payload,
// such as ```json ... ```. Backticks inside the payload are left alone.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < 6 || !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	inner := text[3 : len(text)-3]
	// Drop the info string (json, JSON, ...) up to the first newline.
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 && !strings.ContainsAny(inner[:nl], "{[\"") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}
