package model

import "fmt"

// Report is the structured pest report returned by the model.
type Report struct {
	Pest        Pest     `json:"pest" yaml:"pest"`
	Risk        Risk     `json:"risk" yaml:"risk"`
	Causes      []string `json:"causes" yaml:"causes"`
	Inspection  []string `json:"inspection" yaml:"inspection"`
	Plan        []Step   `json:"plan" yaml:"plan"`
	Followup    []string `json:"followup" yaml:"followup"`
	Limitations []string `json:"limitations" yaml:"limitations"`
}

type Pest struct {
	Name         string   `json:"name" yaml:"name"`
	Confidence   float64  `json:"confidence" yaml:"confidence"`
	Alternatives []string `json:"alternatives" yaml:"alternatives"`
	Evidence     []string `json:"evidence" yaml:"evidence"`
}

type Risk struct {
	Urgency       string   `json:"urgency" yaml:"urgency"`
	HealthNotes   []string `json:"health_notes" yaml:"health_notes"`
	PropertyNotes []string `json:"property_notes" yaml:"property_notes"`
}

// Step is one remediation step of the IPM plan.
type Step struct {
	Title         string `json:"title" yaml:"title"`
	Priority      string `json:"priority" yaml:"priority"`
	Detail        string `json:"detail" yaml:"detail"`
	Safety        string `json:"safety" yaml:"safety"`
	Documentation string `json:"documentation" yaml:"documentation"`
}

// Validate checks the constraints the provider schema does not express.
func (r *Report) Validate() error {
	if r.Pest.Confidence < 0 || r.Pest.Confidence > 1 {
		return fmt.Errorf("pest.confidence must be between 0 and 1, got %v", r.Pest.Confidence)
	}
	return nil
}
