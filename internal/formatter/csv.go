package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"
)

// csvFormatter formats a report as a single CSV record
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(report *Report) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	// CSV headers
	headers := []string{
		"File",
		"Media Type",
		"Size",
		"State",
		"Result",
		"Confidence",
		"Original Image",
		"ELA Image",
		"Preview Image",
		"Error",
		"Generated At",
	}

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	record := []string{
		report.File.Name,
		report.File.MediaType,
		strconv.FormatInt(report.File.Size, 10),
		report.State,
		"",
		"",
		"",
		"",
		report.PreviewRef,
		report.Error,
		formatCSVTime(report.GeneratedAt),
	}
	if v := report.Analysis; v != nil {
		record[4] = v.Result
		record[5] = strconv.FormatFloat(v.Confidence, 'f', -1, 64)
		record[6] = v.OriginalImage
		record[7] = v.ELAImage
	}

	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return b.Bytes(), nil
}

// formatCSVTime formats time for CSV output
func formatCSVTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
