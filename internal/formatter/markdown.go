package formatter

import (
	"fmt"
	"strings"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	// Header with generation timestamp
	b.WriteString("# Image Forensics Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	f.writeInputTable(&b, report)

	if report.Analysis != nil {
		f.writeVerdictSection(&b, report.Analysis)
	}

	if report.Error != "" {
		b.WriteString("## Error\n\n")
		fmt.Fprintf(&b, "> %s\n\n", report.Error)
	}

	return []byte(b.String()), nil
}

// writeInputTable writes the input summary table
func (f *markdownFormatter) writeInputTable(b *strings.Builder, report *Report) {
	b.WriteString("## Input\n\n")
	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| File | `%s` |\n", escapeMarkdownCell(report.File.Name))
	fmt.Fprintf(b, "| Type | %s |\n", report.File.MediaType)
	fmt.Fprintf(b, "| Size | %s |\n", formatSize(report.File.Size))
	if report.Service != "" {
		fmt.Fprintf(b, "| Service | %s |\n", report.Service)
	}
	if report.Duration != "" {
		fmt.Fprintf(b, "| Duration | %s |\n", report.Duration)
	}
	fmt.Fprintf(b, "| State | %s |\n", report.State)
	if report.PreviewRef != "" {
		fmt.Fprintf(b, "| Preview | [preview](%s) |\n", report.PreviewRef)
	}
	b.WriteString("\n")
}

// writeVerdictSection writes the verdict and both image links
func (f *markdownFormatter) writeVerdictSection(b *strings.Builder, v *Verdict) {
	b.WriteString("## Verdict\n\n")
	fmt.Fprintf(b, "**%s** (%s confidence, %s)\n\n", v.Result, v.ConfidenceText, verdictLabel(v))
	fmt.Fprintf(b, "- Original image: [%s](%s)\n", "original", v.OriginalImage)
	fmt.Fprintf(b, "- ELA image: [%s](%s)\n\n", "ela", v.ELAImage)
}

// escapeMarkdownCell keeps a value from breaking the table layout
func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
