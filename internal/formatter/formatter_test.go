package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/yildizm/elacheck/internal/controller"
)

func sampleReport(t *testing.T, verdict string, confidence float64) *Report {
	t.Helper()
	sel := controller.Selection{Generation: 1, Name: "cat.jpg", Path: "/tmp/cat.jpg", MediaType: "image/jpeg", Size: 2048}
	results := controller.Results{
		Panel: controller.PanelResult,
		Analysis: &controller.AnalysisResult{
			OriginalImageRef: "/static/uploads/cat.jpg",
			ELAImageRef:      "/static/processed/ela_cat.jpg",
			Verdict:          verdict,
			Confidence:       confidence,
		},
	}
	resolve := func(ref string) string { return "http://ela.test" + ref }
	report := NewReport(sel, controller.StateResultShown, "/static/uploads/cat.jpg?v=9", results, resolve)
	report.Service = "http://ela.test"
	return report
}

func TestNewReport(t *testing.T) {
	report := sampleReport(t, "real", 87.5)

	if report.File.Name != "cat.jpg" || report.File.Size != 2048 {
		t.Errorf("Unexpected file info %+v", report.File)
	}
	if report.State != "ResultShown" {
		t.Errorf("Expected ResultShown, got %s", report.State)
	}
	if report.PreviewRef != "http://ela.test/static/uploads/cat.jpg?v=9" {
		t.Errorf("Unexpected preview ref %s", report.PreviewRef)
	}
	if !report.Succeeded() {
		t.Fatal("Expected a verdict")
	}
	v := report.Analysis
	if !v.Authentic {
		t.Error("Expected real in any case to be authentic")
	}
	if v.ConfidenceText != "87.5%" {
		t.Errorf("Expected 87.5%%, got %s", v.ConfidenceText)
	}
	if v.ELAImage != "http://ela.test/static/processed/ela_cat.jpg" {
		t.Errorf("Unexpected ELA ref %s", v.ELAImage)
	}
}

func TestNewReportWithInlineError(t *testing.T) {
	sel := controller.Selection{Name: "cat.jpg", MediaType: "image/jpeg"}
	results := controller.Results{
		Panel:      controller.PanelError,
		PreviewRef: "/p.jpg",
		Error:      "Error analyzing image: boom",
	}

	report := NewReport(sel, controller.StatePreviewShown, "", results, nil)
	if report.Succeeded() {
		t.Error("Expected no verdict")
	}
	if report.PreviewRef != "/p.jpg" || report.Error != "Error analyzing image: boom" {
		t.Errorf("Unexpected report %+v", report)
	}
}

func TestNew(t *testing.T) {
	for _, format := range []string{"text", "terminal", "", "json", "markdown", "md", "csv"} {
		if _, err := New(format, false); err != nil {
			t.Errorf("New(%q) failed: %v", format, err)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestTerminalFormat(t *testing.T) {
	out, err := NewTerminal(false).Format(sampleReport(t, "Fake", 90))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)

	for _, want := range []string{"Image Forensics Report", "cat.jpg", "Fake", "(90% confidence)", "manipulated", "ela_cat.jpg", "2.0 kB"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
}

func TestTerminalFormatError(t *testing.T) {
	report := &Report{
		File:  FileInfo{Name: "x.png", MediaType: "image/png"},
		State: "ErrorShown",
		Error: "Error analyzing image: connection refused",
	}
	out, err := NewTerminalWithOptions(false, false).Format(report)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(string(out), "connection refused") {
		t.Errorf("Expected error in output:\n%s", out)
	}
	if strings.Contains(string(out), "Verdict") {
		t.Error("Did not expect a verdict section")
	}
}

func TestJSONFormat(t *testing.T) {
	out, err := NewJSON().Format(sampleReport(t, "Real", 12.5))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded struct {
		File     FileInfo `json:"file"`
		Analysis *Verdict `json:"analysis"`
		Error    string   `json:"error"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.Analysis == nil || decoded.Analysis.Confidence != 12.5 || decoded.Analysis.Result != "Real" {
		t.Errorf("Unexpected analysis %+v", decoded.Analysis)
	}
	if decoded.File.MediaType != "image/jpeg" {
		t.Errorf("Unexpected file %+v", decoded.File)
	}
}

func TestMarkdownFormat(t *testing.T) {
	out, err := NewMarkdown().Format(sampleReport(t, "Real", 99))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	text := string(out)
	for _, want := range []string{"# Image Forensics Report", "| File | `cat.jpg` |", "**Real** (99% confidence, authentic)", "(http://ela.test/static/processed/ela_cat.jpg)"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output:\n%s", want, text)
		}
	}
}

func TestCSVFormat(t *testing.T) {
	out, err := NewCSV().Format(sampleReport(t, "Fake", 66.6))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	if err != nil {
		t.Fatalf("Output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header and one record, got %d rows", len(records))
	}
	row := records[1]
	if row[0] != "cat.jpg" || row[4] != "Fake" || row[5] != "66.6" {
		t.Errorf("Unexpected record %v", row)
	}
}
