package formatter

import (
	"time"

	"github.com/yildizm/elacheck/internal/controller"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// Report is the outcome of one select, preview and analyze session
type Report struct {
	File        FileInfo  `json:"file"`
	Service     string    `json:"service"`
	State       string    `json:"state"`
	PreviewRef  string    `json:"preview_image,omitempty"`
	Analysis    *Verdict  `json:"analysis,omitempty"`
	Error       string    `json:"error,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
	Duration    string    `json:"duration,omitempty"`
}

// FileInfo describes the analyzed file
type FileInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	MediaType string `json:"media_type"`
	Size      int64  `json:"size"`
}

// Verdict is the analysis part of a report with references resolved
type Verdict struct {
	OriginalImage  string  `json:"original_image"`
	ELAImage       string  `json:"ela_image"`
	Result         string  `json:"result"`
	Confidence     float64 `json:"confidence"`
	ConfidenceText string  `json:"confidence_text"`
	Authentic      bool    `json:"authentic"`
}

// NewReport builds a report from the controller's final view. previewRef
// is the preview captured before analysis replaced the panel.
func NewReport(sel controller.Selection, state controller.State, previewRef string, results controller.Results, resolve func(string) string) *Report {
	if resolve == nil {
		resolve = func(ref string) string { return ref }
	}

	report := &Report{
		File: FileInfo{
			Name:      sel.Name,
			Path:      sel.Path,
			MediaType: sel.MediaType,
			Size:      sel.Size,
		},
		State:       state.String(),
		Error:       results.Error,
		GeneratedAt: time.Now(),
	}

	if results.PreviewRef != "" {
		previewRef = results.PreviewRef
	}
	if previewRef != "" {
		report.PreviewRef = resolve(previewRef)
	}

	if a := results.Analysis; a != nil {
		report.Analysis = &Verdict{
			OriginalImage:  resolve(a.OriginalImageRef),
			ELAImage:       resolve(a.ELAImageRef),
			Result:         a.Verdict,
			Confidence:     a.Confidence,
			ConfidenceText: a.ConfidenceText(),
			Authentic:      a.Class() == controller.VerdictPositive,
		}
	}

	return report
}

// Succeeded reports whether the session produced a verdict
func (r *Report) Succeeded() bool {
	return r.Analysis != nil
}

// New returns the formatter for the given format name
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	case "text", "terminal", "":
		return NewTerminal(color), nil
	default:
		return nil, &UnknownFormatError{Format: format}
	}
}

// UnknownFormatError is returned by New for an unsupported format name
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return "unknown format: " + e.Format + " (must be one of: text, json, markdown, csv)"
}
