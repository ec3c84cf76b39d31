package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true
	return &terminalFormatter{opts: opts}
}

// NewTerminalWithOptions creates a terminal formatter with explicit options
func NewTerminalWithOptions(color, emoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = emoji
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	f.writeFile(&b, report)

	if report.Analysis != nil {
		f.writeVerdict(&b, report.Analysis)
	}
	if report.Error != "" {
		f.writeError(&b, report.Error)
	}

	return []byte(b.String()), nil
}

// writeHeader writes a header with box drawing
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Image Forensics Report"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeFile writes the input file section with tree-style formatting
func (f *terminalFormatter) writeFile(b *strings.Builder, report *Report) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Input\n")

	items := []termfmt.TreeItem{
		{Label: "File", Value: report.File.Name},
		{Label: "Type", Value: report.File.MediaType},
		{Label: "Size", Value: formatSize(report.File.Size)},
	}
	if report.Service != "" {
		items = append(items, termfmt.TreeItem{Label: "Service", Value: report.Service})
	}
	if report.PreviewRef != "" {
		items = append(items, termfmt.TreeItem{Label: "Preview", Value: report.PreviewRef})
	}
	items = append(items, termfmt.TreeItem{Label: "State", Value: report.State, Last: true})

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeVerdict writes the verdict with a confidence indicator
func (f *terminalFormatter) writeVerdict(b *strings.Builder, v *Verdict) {
	symbol := termfmt.GetEmoji("target", f.opts)
	b.WriteString(symbol + " Verdict\n")

	items := []termfmt.TreeItem{
		{
			Label: fmt.Sprintf("%s %s", getVerdictEmoji(v, f.opts), v.Result),
			Value: fmt.Sprintf("(%s confidence)", v.ConfidenceText),
			Children: []termfmt.TreeItem{
				{Label: createConfidenceBar(v.Confidence, f.opts) + " " + verdictLabel(v), Value: ""},
			},
		},
		{Label: "Original", Value: v.OriginalImage},
		{Label: "ELA", Value: v.ELAImage, Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeError writes the inline analysis error
func (f *terminalFormatter) writeError(b *strings.Builder, message string) {
	symbol := termfmt.GetEmoji("error", f.opts)
	fmt.Fprintf(b, "%s %s\n", symbol, message)
}
