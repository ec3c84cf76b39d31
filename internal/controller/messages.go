package controller

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Service is the remote Analysis Service.
type Service interface {
	Preview(ctx context.Context, file *File) (*PreviewResult, error)
	Analyze(ctx context.Context, file *File) (*AnalysisResult, error)
}

// PreviewCompleteMsg carries a Preview reply back into the event loop,
// tagged with the selection generation active when the call was issued.
type PreviewCompleteMsg struct {
	Generation uint64
	Result     *PreviewResult
	Err        error
}

// AnalysisCompleteMsg carries an Analyze reply back into the event loop.
type AnalysisCompleteMsg struct {
	Generation uint64
	Result     *AnalysisResult
	Err        error
}

// createPreviewCommand runs Preview off the event loop. Only values are
// captured so the command never touches controller state.
func createPreviewCommand(ctx context.Context, svc Service, file *File, generation uint64) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Preview(ctx, file)
		return PreviewCompleteMsg{
			Generation: generation,
			Result:     result,
			Err:        err,
		}
	}
}

// createAnalysisCommand runs Analyze off the event loop.
func createAnalysisCommand(ctx context.Context, svc Service, file *File, generation uint64) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Analyze(ctx, file)
		return AnalysisCompleteMsg{
			Generation: generation,
			Result:     result,
			Err:        err,
		}
	}
}
