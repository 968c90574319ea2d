package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Stub is a deterministic, no-network provider for local runs and CI.
// It returns a schema-valid report so the whole bridge path is exercised.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) GenerateReport(ctx context.Context, req ReportRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256([]byte(req.ImageDataURL))
	short := hex.EncodeToString(sum[:4])

	out := map[string]any{
		"pest": map[string]any{
			"name":         fmt.Sprintf("Stub pest (%s)", short),
			"confidence":   0.5,
			"alternatives": []string{},
			"evidence":     []string{"stub provider: no image was analyzed"},
		},
		"risk": map[string]any{
			"urgency":        "low",
			"health_notes":   []string{},
			"property_notes": []string{},
		},
		"causes":     []string{},
		"inspection": []string{"Inspect the area where the photo was taken."},
		"plan": []map[string]string{{
			"title":         "Inspection",
			"priority":      "high",
			"detail":        "Confirm the identification on site before any treatment.",
			"safety":        "Wear gloves.",
			"documentation": "Record location, date and findings.",
		}},
		"followup":    []string{},
		"limitations": []string{"Generated by the stub provider."},
	}

	return json.Marshal(out)
}

func (s *Stub) Name() string { return "stub" }

func (s *Stub) GetModel() string { return "stub" }
