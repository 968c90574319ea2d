package formatter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/helmcode/pestscan/pkg/model"
	"github.com/helmcode/pestscan/pkg/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func init() {
	color.NoColor = true
}

func sampleReport() *model.Report {
	return &model.Report{
		Pest: model.Pest{
			Name:         "Brown rat",
			Confidence:   0.876,
			Alternatives: []string{"Black rat"},
			Evidence:     []string{"blunt snout", "small hairy ears"},
		},
		Risk: model.Risk{
			Urgency:       "high",
			HealthNotes:   []string{"Leptospirosis"},
			PropertyNotes: []string{"Gnawed cables"},
		},
		Causes:     []string{"Open drains"},
		Inspection: []string{"Look for burrows along walls"},
		Plan: []model.Step{
			{Title: "Proofing", Priority: "high", Detail: "Seal gaps above 10 mm.", Safety: "Gloves", Documentation: "Photograph sealed entry points"},
			{Title: "Monitoring", Detail: "Place non-toxic monitoring blocks."},
		},
		Followup:    []string{"Check stations weekly"},
		Limitations: []string{"Single photo only"},
	}
}

func TestRenderHuman(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), "human"))
	out := buf.String()

	assert.Contains(t, out, "PEST: Brown rat")
	assert.Contains(t, out, "CONFIDENCE: 88%")
	assert.Contains(t, out, "URGENCY: HIGH")
	assert.Contains(t, out, "Alternatives: Black rat")
	assert.Contains(t, out, "1. Proofing")
	assert.Contains(t, out, "priority: high")
	assert.Contains(t, out, "Safety/PPE: Gloves")
	assert.Contains(t, out, "Documentation: Photograph sealed entry points")
	assert.Contains(t, out, "2. Monitoring")
	assert.Contains(t, out, "A photo alone can mislead.")

	// Optional step lines are omitted when empty.
	monitoring := out[strings.Index(out, "2. Monitoring"):]
	monitoring = monitoring[:strings.Index(monitoring, "LIMITATIONS")]
	assert.NotContains(t, monitoring, "priority:")
	assert.NotContains(t, monitoring, "Safety/PPE")
	assert.NotContains(t, monitoring, "Documentation")

	order := []string{"PEST:", "EVIDENCE", "CAUSES", "INSPECTION", "IPM ACTION PLAN", "LIMITATIONS", "FOLLOW-UP", "A photo alone"}
	last := -1
	for _, marker := range order {
		idx := strings.Index(out, marker)
		require.NotEqual(t, -1, idx, marker)
		assert.Greater(t, idx, last, marker)
		last = idx
	}
}

func TestRenderHumanEmptyReport(t *testing.T) {
	report := &model.Report{
		Pest:        model.Pest{Alternatives: []string{}, Evidence: []string{}},
		Risk:        model.Risk{HealthNotes: []string{}, PropertyNotes: []string{}},
		Causes:      []string{},
		Inspection:  []string{},
		Plan:        []model.Step{},
		Followup:    []string{},
		Limitations: []string{},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, report, "human"))
	out := buf.String()

	assert.Contains(t, out, "PEST: —")
	assert.Contains(t, out, "CONFIDENCE: 0%")
	assert.Contains(t, out, "URGENCY: —")
	assert.NotContains(t, out, "Alternatives:")
	assert.Contains(t, out, "IPM ACTION PLAN")
}

func TestRenderHumanNilSlices(t *testing.T) {
	var buf bytes.Buffer
	assert.NotPanics(t, func() {
		require.NoError(t, Render(&buf, &model.Report{}, ""))
	})
	assert.Contains(t, buf.String(), "LIMITATIONS")
}

func TestRenderMachineReadable(t *testing.T) {
	report := sampleReport()

	var jsonBuf bytes.Buffer
	require.NoError(t, Render(&jsonBuf, report, "json"))
	var fromJSON model.Report
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &fromJSON))
	assert.Equal(t, *report, fromJSON)
	assert.Contains(t, jsonBuf.String(), `"health_notes"`)

	var yamlBuf bytes.Buffer
	require.NoError(t, Render(&yamlBuf, report, "yaml"))
	var fromYAML model.Report
	require.NoError(t, yaml.Unmarshal(yamlBuf.Bytes(), &fromYAML))
	assert.Equal(t, *report, fromYAML)
	assert.Contains(t, yamlBuf.String(), "property_notes:")
}

func TestRenderUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, sampleReport(), "xml")
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestDisplayFileInfo(t *testing.T) {
	var buf bytes.Buffer
	DisplayFileInfo(&buf, &upload.Image{Name: "rat.jpg", MediaType: "image/jpeg", Size: 1572864})

	out := buf.String()
	assert.Contains(t, out, "File: rat.jpg")
	assert.Contains(t, out, "Type: image/jpeg")
	assert.Contains(t, out, "Size: 1.50 MB")
}

func TestConfidencePercent(t *testing.T) {
	assert.Equal(t, 0, ConfidencePercent(0))
	assert.Equal(t, 50, ConfidencePercent(0.5))
	assert.Equal(t, 88, ConfidencePercent(0.876))
	assert.Equal(t, 100, ConfidencePercent(1))
}

func TestWrapText(t *testing.T) {
	wrapped := wrapText(strings.Repeat("word ", 30), 20, "  ")
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len(line), 20)
		assert.True(t, strings.HasPrefix(line, "  "))
	}

	long := wrapText(strings.Repeat("x", 30), 10, "")
	assert.Equal(t, strings.Repeat("x", 30), long)
}
