package controller

import (
	"strconv"
	"strings"
)

// PreviewResult is the reply of the Preview remote operation: either a
// reference to the normalized rendering or a server-reported error.
type PreviewResult struct {
	PreviewImageRef string `json:"preview_image_ref,omitempty"`
	Error           string `json:"error,omitempty"`
}

// AnalysisResult is the reply of the Analyze remote operation.
type AnalysisResult struct {
	OriginalImageRef string  `json:"original_image_ref"`
	ELAImageRef      string  `json:"ela_image_ref"`
	Verdict          string  `json:"verdict"`
	Confidence       float64 `json:"confidence"`
}

// VerdictClass is the display class derived from a verdict string.
type VerdictClass int

const (
	VerdictNegative VerdictClass = iota
	VerdictPositive
)

// ClassifyVerdict maps "real" in any case to the positive class and every
// other string to the negative class.
func ClassifyVerdict(verdict string) VerdictClass {
	if strings.EqualFold(verdict, "real") {
		return VerdictPositive
	}
	return VerdictNegative
}

// Class returns the display class of the verdict.
func (r *AnalysisResult) Class() VerdictClass {
	return ClassifyVerdict(r.Verdict)
}

// ConfidenceText renders the confidence as a plain number with a "%" suffix.
func (r *AnalysisResult) ConfidenceText() string {
	return FormatConfidence(r.Confidence)
}

// FormatConfidence renders 87.5 as "87.5%" and 90 as "90%".
func FormatConfidence(confidence float64) string {
	return strconv.FormatFloat(confidence, 'f', -1, 64) + "%"
}

// Panel is what the results area currently shows. Exactly one panel is
// active at any time.
type Panel int

const (
	PanelEmpty Panel = iota
	PanelProgress
	PanelPreview
	PanelResult
	PanelError
)

// String returns the panel name
func (p Panel) String() string {
	switch p {
	case PanelEmpty:
		return "empty"
	case PanelProgress:
		return "progress"
	case PanelPreview:
		return "preview"
	case PanelResult:
		return "result"
	case PanelError:
		return "error"
	default:
		return "unknown"
	}
}

// Results is a snapshot of the results area.
//
// PreviewRef is set for PanelPreview, and for PanelError when the inline
// analysis error sits over a held preview. Analysis is set only for
// PanelResult.
type Results struct {
	Panel      Panel
	Progress   string
	PreviewRef string
	Analysis   *AnalysisResult
	Error      string
}

// Notice is a blocking message the user must acknowledge.
type Notice struct {
	Title   string
	Message string
	Err     error
}
