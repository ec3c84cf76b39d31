package formatter

import (
	"github.com/dustin/go-humanize"
	"github.com/yildizm/go-termfmt"
)

// formatSize renders a byte count for humans
func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// getVerdictEmoji returns the marker for a verdict using go-termfmt
func getVerdictEmoji(v *Verdict, opts *termfmt.TerminalOptions) string {
	if !v.Authentic {
		return termfmt.GetEmoji("error", opts)
	}
	if symbol := termfmt.GetEmoji("success", opts); symbol != "" {
		return symbol
	}
	return termfmt.GetEmoji("info", opts) // Fallback
}

// createConfidenceBar creates a bar for a 0-100 confidence using go-termfmt
func createConfidenceBar(confidence float64, opts *termfmt.TerminalOptions) string {
	ratio := confidence / 100
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return termfmt.CreateConfidenceBar(ratio, opts)
}

// verdictLabel names the verdict class
func verdictLabel(v *Verdict) string {
	if v.Authentic {
		return "authentic"
	}
	return "manipulated"
}
