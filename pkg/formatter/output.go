package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/helmcode/pestscan/pkg/model"
	"github.com/helmcode/pestscan/pkg/upload"
	"gopkg.in/yaml.v3"
)

const (
	lineWidth   = 80
	placeholder = "—"
	disclaimer  = "A photo alone can mislead. For real jobs always assess infestation signs, " +
		"surroundings, droppings and tracks, customer information and monitoring data as well."
)

// DisplayResults formats and displays the report on stdout
func DisplayResults(report *model.Report, format string) error {
	return Render(os.Stdout, report, format)
}

// Render writes the report to w as human, json or yaml output.
func Render(w io.Writer, report *model.Report, format string) error {
	switch format {
	case "json":
		return renderJSON(w, report)
	case "yaml":
		return renderYAML(w, report)
	case "human", "":
		renderHuman(w, report)
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json, yaml)", format)
	}
}

// DisplayFileInfo prints name, media type and size of the selected photo.
func DisplayFileInfo(w io.Writer, img *upload.Image) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w)
	bold.Fprint(w, "📄 File: ")
	fmt.Fprintln(w, img.Name)
	bold.Fprint(w, "🏷️  Type: ")
	fmt.Fprintln(w, img.MediaType)
	bold.Fprint(w, "📦 Size: ")
	fmt.Fprintf(w, "%s MB\n\n", img.SizeMB())
}

func renderJSON(w io.Writer, report *model.Report) error {
	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func renderYAML(w io.Writer, report *model.Report) error {
	output, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func renderHuman(w io.Writer, report *model.Report) {
	// Colors
	cyan := color.New(color.FgCyan, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	// Pills
	cyan.Fprint(w, "🐛 PEST: ")
	fmt.Fprintln(w, orPlaceholder(report.Pest.Name))
	cyan.Fprint(w, "📊 CONFIDENCE: ")
	fmt.Fprintf(w, "%d%%\n", ConfidencePercent(report.Pest.Confidence))
	urgencyColor := getUrgencyColor(report.Risk.Urgency)
	urgencyColor.Fprintf(w, "%s URGENCY: %s\n", getUrgencyIcon(report.Risk.Urgency), strings.ToUpper(orPlaceholder(report.Risk.Urgency)))
	if len(report.Pest.Alternatives) > 0 {
		fmt.Fprintf(w, "   Alternatives: %s\n", strings.Join(report.Pest.Alternatives, ", "))
	}
	fmt.Fprintln(w)

	section(w, white, "🔎 EVIDENCE (VISUAL FEATURES):", report.Pest.Evidence)
	section(w, yellow, "⚠️  HEALTH RISKS:", report.Risk.HealthNotes)
	section(w, yellow, "🏚️  PROPERTY RISKS:", report.Risk.PropertyNotes)
	section(w, white, "🚪 TYPICAL CAUSES & ENTRY PATHS:", report.Causes)
	section(w, white, "📋 INSPECTION CHECKLIST:", report.Inspection)

	// Plan
	green.Fprintln(w, "🛠️  IPM ACTION PLAN:")
	if len(report.Plan) == 0 {
		fmt.Fprintf(w, "   %s\n\n", placeholder)
	}
	for i, step := range report.Plan {
		fmt.Fprintf(w, "   %d. %s", i+1, step.Title)
		if step.Priority != "" {
			fmt.Fprintf(w, "  %s %s", getPriorityIcon(step.Priority), color.CyanString("priority: %s", step.Priority))
		}
		fmt.Fprintln(w)
		if step.Detail != "" {
			fmt.Fprintln(w, wrapText(step.Detail, lineWidth, "      "))
		}
		if step.Safety != "" {
			fmt.Fprintf(w, "      🦺 Safety/PPE: %s\n", color.YellowString(step.Safety))
		}
		if step.Documentation != "" {
			fmt.Fprintf(w, "      📝 Documentation: %s\n", step.Documentation)
		}
		fmt.Fprintln(w)
	}

	section(w, yellow, "🚧 LIMITATIONS:", report.Limitations)
	section(w, cyan, "🔁 FOLLOW-UP / SUCCESS CHECK:", report.Followup)

	// Footer
	fmt.Fprintln(w, strings.Repeat("─", lineWidth))
	fmt.Fprintln(w, color.HiBlackString(wrapText("💡 "+disclaimer, lineWidth, "")))
}

// ConfidencePercent converts a 0..1 confidence to a rounded percentage.
func ConfidencePercent(confidence float64) int {
	if math.IsNaN(confidence) {
		return 0
	}
	return int(math.Round(confidence * 100))
}

func section(w io.Writer, c *color.Color, title string, items []string) {
	c.Fprintln(w, title)
	if len(items) == 0 {
		fmt.Fprintf(w, "   %s\n\n", placeholder)
		return
	}
	for _, item := range items {
		fmt.Fprintln(w, wrapText("• "+item, lineWidth, "   "))
	}
	fmt.Fprintln(w)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func getUrgencyColor(urgency string) *color.Color {
	switch strings.ToLower(urgency) {
	case "critical", "very high":
		return color.New(color.FgRed, color.Bold)
	case "high":
		return color.New(color.FgRed)
	case "medium", "moderate":
		return color.New(color.FgYellow)
	case "low":
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func getUrgencyIcon(urgency string) string {
	switch strings.ToLower(urgency) {
	case "critical", "very high":
		return "🔴"
	case "high":
		return "🟠"
	case "medium", "moderate":
		return "🟡"
	case "low":
		return "🟢"
	default:
		return "⚪"
	}
}

func getPriorityIcon(priority string) string {
	switch strings.ToLower(priority) {
	case "high", "immediate":
		return "⚡"
	case "medium":
		return "🔹"
	case "low":
		return "▫️"
	default:
		return "•"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if currentLine != indent && len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
