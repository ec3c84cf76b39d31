package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeService records calls and answers from per-file canned replies.
type fakeService struct {
	mu           sync.Mutex
	previewCalls []string
	analyzeCalls []string

	previews map[string]*PreviewResult
	analyses map[string]*AnalysisResult
	errs     map[string]error
}

func newFakeService() *fakeService {
	return &fakeService{
		previews: make(map[string]*PreviewResult),
		analyses: make(map[string]*AnalysisResult),
		errs:     make(map[string]error),
	}
}

func (s *fakeService) Preview(ctx context.Context, file *File) (*PreviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previewCalls = append(s.previewCalls, file.Name)
	if err := s.errs["preview:"+file.Name]; err != nil {
		return nil, err
	}
	if r, ok := s.previews[file.Name]; ok {
		return r, nil
	}
	return &PreviewResult{PreviewImageRef: "/static/uploads/preview_" + file.Name}, nil
}

func (s *fakeService) Analyze(ctx context.Context, file *File) (*AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyzeCalls = append(s.analyzeCalls, file.Name)
	if err := s.errs["analyze:"+file.Name]; err != nil {
		return nil, err
	}
	if r, ok := s.analyses[file.Name]; ok {
		return r, nil
	}
	return &AnalysisResult{
		OriginalImageRef: "/static/uploads/" + file.Name,
		ELAImageRef:      "/static/processed/ela_" + file.Name,
		Verdict:          "Real",
		Confidence:       12.5,
	}, nil
}

func imageFile(name string) *File {
	return FromBytes(name, "image/jpeg", []byte("fake jpeg bytes"))
}

func newTestController(svc Service) *Controller {
	return New(context.Background(), svc, nil)
}

// run executes a command the way the event loop would and returns its message.
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	return cmd()
}

func TestSelectFileRejectsNonImages(t *testing.T) {
	inputs := []*File{
		FromBytes("notes.txt", "text/plain", []byte("hello")),
		FromBytes("doc.pdf", "application/pdf", []byte("%PDF")),
		FromBytes("clip.mp4", "video/mp4", nil),
		FromBytes("blank", "", nil),
		FromBytes("tricky.png", "imagex/png", nil),
	}

	for _, input := range inputs {
		t.Run(input.Name, func(t *testing.T) {
			svc := newFakeService()
			c := newTestController(svc)

			// Establish a live selection first so "unchanged" is meaningful.
			msg := run(t, mustSelect(t, c, imageFile("kept.jpg")))
			c.Handle(msg)
			c.DismissNotice()
			before, _ := c.Selected()
			stateBefore := c.State()
			resultsBefore := c.Results()

			cmd, err := c.SelectFile(input)
			if cmd != nil {
				t.Error("Expected no command for a rejected file")
			}
			if !IsValidationError(err) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			after, _ := c.Selected()
			if after != before {
				t.Errorf("Selection changed: %+v -> %+v", before, after)
			}
			if c.State() != stateBefore {
				t.Errorf("State changed: %s -> %s", stateBefore, c.State())
			}
			if c.Results() != resultsBefore {
				t.Errorf("Results changed: %+v -> %+v", resultsBefore, c.Results())
			}
			if c.Notice() == nil {
				t.Error("Expected a blocking notice")
			}
			if len(svc.previewCalls) != 1 {
				t.Errorf("Expected only the initial preview call, got %v", svc.previewCalls)
			}
		})
	}
}

func TestSelectFileRejectsNonImageFromIdle(t *testing.T) {
	c := newTestController(newFakeService())

	_, err := c.SelectFile(FromBytes("a.txt", "text/plain", nil))
	if !IsValidationError(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if _, ok := c.Selected(); ok {
		t.Error("Expected no selection")
	}
	if c.State() != StateIdle {
		t.Errorf("Expected Idle, got %s", c.State())
	}
}

func mustSelect(t *testing.T, c *Controller, f *File) tea.Cmd {
	t.Helper()
	cmd, err := c.SelectFile(f)
	if err != nil {
		t.Fatalf("SelectFile(%s) failed: %v", f.Name, err)
	}
	return cmd
}

func TestSelectFileIssuesOnePreviewCall(t *testing.T) {
	mediaTypes := []string{"image/jpeg", "image/png", "IMAGE/GIF", "image/svg+xml", "image/webp; q=1"}

	for i, mt := range mediaTypes {
		t.Run(mt, func(t *testing.T) {
			svc := newFakeService()
			c := newTestController(svc)
			name := fmt.Sprintf("img%d", i)

			cmd := mustSelect(t, c, FromBytes(name, mt, []byte{1, 2, 3}))
			if c.State() != StatePreviewing {
				t.Errorf("Expected Previewing, got %s", c.State())
			}
			if len(svc.previewCalls) != 0 {
				t.Error("Preview must run inside the command, not synchronously")
			}

			msg, ok := run(t, cmd).(PreviewCompleteMsg)
			if !ok {
				t.Fatalf("Expected PreviewCompleteMsg")
			}
			sel, _ := c.Selected()
			if msg.Generation != sel.Generation {
				t.Errorf("Preview tagged with generation %d, selection is %d", msg.Generation, sel.Generation)
			}
			if len(svc.previewCalls) != 1 || svc.previewCalls[0] != name {
				t.Errorf("Expected exactly one preview call for %s, got %v", name, svc.previewCalls)
			}
		})
	}
}

func TestPreviewSuccessShowsPreview(t *testing.T) {
	c := newTestController(newFakeService())

	c.Handle(run(t, mustSelect(t, c, imageFile("cat.jpg"))))

	if c.State() != StatePreviewShown {
		t.Fatalf("Expected PreviewShown, got %s", c.State())
	}
	r := c.Results()
	if r.Panel != PanelPreview {
		t.Errorf("Expected preview panel, got %s", r.Panel)
	}
	if r.PreviewRef != "/static/uploads/preview_cat.jpg" {
		t.Errorf("Unexpected preview ref %q", r.PreviewRef)
	}
	if c.Notice() != nil {
		t.Errorf("Unexpected notice %+v", c.Notice())
	}
}

func TestPreviewErrorRaisesNoticeAndReturnsToIdle(t *testing.T) {
	svc := newFakeService()
	svc.previews["bad.jpg"] = &PreviewResult{Error: "corrupt file"}
	c := newTestController(svc)

	c.Handle(run(t, mustSelect(t, c, imageFile("bad.jpg"))))

	if c.State() != StateIdle {
		t.Errorf("Expected Idle, got %s", c.State())
	}
	notice := c.Notice()
	if notice == nil || !strings.Contains(notice.Message, "corrupt file") {
		t.Fatalf("Expected notice containing 'corrupt file', got %+v", notice)
	}
	r := c.Results()
	if r.Panel != PanelEmpty || r.PreviewRef != "" {
		t.Errorf("Expected nothing rendered, got %+v", r)
	}
}

func TestPreviewTransportFailure(t *testing.T) {
	svc := newFakeService()
	svc.errs["preview:x.jpg"] = errors.New("connection refused")
	c := newTestController(svc)

	c.Handle(run(t, mustSelect(t, c, imageFile("x.jpg"))))

	if c.State() != StateIdle {
		t.Errorf("Expected Idle, got %s", c.State())
	}
	if n := c.Notice(); n == nil || !strings.Contains(n.Message, "connection refused") {
		t.Errorf("Expected transport error in notice, got %+v", n)
	}
}

func TestTriggerAnalysisWithoutSelection(t *testing.T) {
	svc := newFakeService()
	c := newTestController(svc)

	cmd, err := c.TriggerAnalysis()
	if cmd != nil {
		t.Error("Expected no command")
	}
	if !IsMissingInputError(err) {
		t.Fatalf("Expected MissingInputError, got %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("Expected Idle, got %s", c.State())
	}
	if c.Notice() == nil {
		t.Error("Expected a blocking notice")
	}
	if len(svc.previewCalls)+len(svc.analyzeCalls) != 0 {
		t.Error("Expected zero remote calls")
	}
}

func TestTriggerAnalysisWhilePreviewingIsRejected(t *testing.T) {
	svc := newFakeService()
	c := newTestController(svc)
	pending := mustSelect(t, c, imageFile("a.jpg"))

	cmd, err := c.TriggerAnalysis()
	if cmd != nil || !IsBusyError(err) {
		t.Fatalf("Expected BusyError and no command, got %v", err)
	}
	if c.State() != StatePreviewing {
		t.Errorf("Expected Previewing, got %s", c.State())
	}
	c.DismissNotice()

	c.Handle(run(t, pending))
	if c.State() != StatePreviewShown {
		t.Errorf("Expected PreviewShown, got %s", c.State())
	}
	if len(svc.analyzeCalls) != 0 {
		t.Errorf("Expected no analyze calls, got %v", svc.analyzeCalls)
	}
}

func TestTriggerAnalysisWhileAnalyzingIsRejected(t *testing.T) {
	c := newTestController(newFakeService())
	c.Handle(run(t, mustSelect(t, c, imageFile("a.jpg"))))

	if _, err := c.TriggerAnalysis(); err != nil {
		t.Fatalf("TriggerAnalysis failed: %v", err)
	}
	cmd, err := c.TriggerAnalysis()
	if cmd != nil || !IsBusyError(err) {
		t.Fatalf("Expected BusyError, got %v", err)
	}
	if c.State() != StateAnalyzing {
		t.Errorf("Expected Analyzing, got %s", c.State())
	}
}

func TestAnalysisRoundTripRendering(t *testing.T) {
	svc := newFakeService()
	svc.analyses["photo.jpg"] = &AnalysisResult{
		OriginalImageRef: "a.jpg",
		Verdict:          "Fake",
		Confidence:       87.5,
		ELAImageRef:      "b.jpg",
	}
	c := newTestController(svc)
	c.Handle(run(t, mustSelect(t, c, imageFile("photo.jpg"))))

	cmd, err := c.TriggerAnalysis()
	if err != nil {
		t.Fatalf("TriggerAnalysis failed: %v", err)
	}
	if c.State() != StateAnalyzing {
		t.Errorf("Expected Analyzing, got %s", c.State())
	}
	if r := c.Results(); r.Panel != PanelProgress || r.Progress == "" {
		t.Errorf("Expected in-progress notice, got %+v", r)
	}

	c.Handle(run(t, cmd))

	if c.State() != StateResultShown {
		t.Fatalf("Expected ResultShown, got %s", c.State())
	}
	r := c.Results()
	if r.Panel != PanelResult || r.Analysis == nil {
		t.Fatalf("Expected result panel, got %+v", r)
	}
	if r.Analysis.Verdict != "Fake" {
		t.Errorf("Expected verdict text 'Fake', got %q", r.Analysis.Verdict)
	}
	if r.Analysis.Class() != VerdictNegative {
		t.Error("Expected negative class for 'Fake'")
	}
	if got := r.Analysis.ConfidenceText(); got != "87.5%" {
		t.Errorf("Expected confidence '87.5%%', got %q", got)
	}
	if r.Analysis.OriginalImageRef != "a.jpg" || r.Analysis.ELAImageRef != "b.jpg" {
		t.Errorf("Unexpected refs %+v", r.Analysis)
	}
}

func TestClassifyVerdict(t *testing.T) {
	tests := []struct {
		verdict string
		want    VerdictClass
	}{
		{"real", VerdictPositive},
		{"REAL", VerdictPositive},
		{"Real", VerdictPositive},
		{"rEaL", VerdictPositive},
		{"fake", VerdictNegative},
		{"Fake", VerdictNegative},
		{"real ", VerdictNegative},
		{"unknown", VerdictNegative},
		{"", VerdictNegative},
	}

	for _, tt := range tests {
		t.Run(tt.verdict, func(t *testing.T) {
			if got := ClassifyVerdict(tt.verdict); got != tt.want {
				t.Errorf("ClassifyVerdict(%q) = %v, want %v", tt.verdict, got, tt.want)
			}
		})
	}
}

func TestFormatConfidence(t *testing.T) {
	tests := map[float64]string{
		87.5:  "87.5%",
		90:    "90%",
		0:     "0%",
		100:   "100%",
		12.34: "12.34%",
	}
	for in, want := range tests {
		if got := FormatConfidence(in); got != want {
			t.Errorf("FormatConfidence(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestAnalysisFailureStaysInlineOverPreview(t *testing.T) {
	svc := newFakeService()
	svc.errs["analyze:a.jpg"] = errors.New("model not loaded")
	c := newTestController(svc)
	c.Handle(run(t, mustSelect(t, c, imageFile("a.jpg"))))

	cmd, _ := c.TriggerAnalysis()
	c.Handle(run(t, cmd))

	if c.State() != StatePreviewShown {
		t.Errorf("Expected PreviewShown, got %s", c.State())
	}
	if c.Notice() != nil {
		t.Error("Analysis failures must not raise a blocking notice")
	}
	r := c.Results()
	if r.Panel != PanelError || !strings.Contains(r.Error, "model not loaded") {
		t.Errorf("Expected inline error, got %+v", r)
	}
	if r.PreviewRef == "" {
		t.Error("Expected the preview to stay under the inline error")
	}
	if r.Analysis != nil {
		t.Error("Expected no partial result")
	}

	// Retry is allowed from here.
	if _, err := c.TriggerAnalysis(); err != nil {
		t.Errorf("Expected retry to be allowed, got %v", err)
	}
}

func TestAnalysisFailureWithoutPreviewGoesToErrorShown(t *testing.T) {
	svc := newFakeService()
	svc.previews["a.jpg"] = &PreviewResult{Error: "cannot convert"}
	svc.errs["analyze:a.jpg"] = errors.New("boom")
	c := newTestController(svc)

	c.Handle(run(t, mustSelect(t, c, imageFile("a.jpg"))))
	c.DismissNotice()
	if c.State() != StateIdle {
		t.Fatalf("Expected Idle, got %s", c.State())
	}

	cmd, err := c.TriggerAnalysis()
	if err != nil {
		t.Fatalf("Expected analysis to be allowed with a held file, got %v", err)
	}
	c.Handle(run(t, cmd))

	if c.State() != StateErrorShown {
		t.Errorf("Expected ErrorShown, got %s", c.State())
	}
	if r := c.Results(); r.Panel != PanelError || r.PreviewRef != "" {
		t.Errorf("Expected bare inline error, got %+v", r)
	}
}

func TestStalePreviewIsDiscarded(t *testing.T) {
	svc := newFakeService()
	c := newTestController(svc)

	first := mustSelect(t, c, imageFile("first.jpg"))
	second := mustSelect(t, c, imageFile("second.jpg"))

	// Resolve out of order: second lands, then the stale first.
	if !c.Handle(run(t, second)) {
		t.Fatal("Expected current preview to apply")
	}
	before := c.Results()
	stateBefore := c.State()

	if c.Handle(run(t, first)) {
		t.Error("Expected stale preview to be discarded")
	}
	if c.Results() != before || c.State() != stateBefore {
		t.Errorf("Stale reply changed render: %+v -> %+v", before, c.Results())
	}
	if c.Results().PreviewRef != "/static/uploads/preview_second.jpg" {
		t.Errorf("Expected second preview, got %q", c.Results().PreviewRef)
	}
}

func TestStalePreviewBeforeCurrentArrives(t *testing.T) {
	c := newTestController(newFakeService())

	first := mustSelect(t, c, imageFile("first.jpg"))
	second := mustSelect(t, c, imageFile("second.jpg"))

	if c.Handle(run(t, first)) {
		t.Error("Expected stale preview to be discarded")
	}
	if c.State() != StatePreviewing {
		t.Errorf("Expected still Previewing, got %s", c.State())
	}
	if r := c.Results(); r.Panel != PanelProgress {
		t.Errorf("Expected progress panel, got %+v", r)
	}

	c.Handle(run(t, second))
	if c.State() != StatePreviewShown {
		t.Errorf("Expected PreviewShown, got %s", c.State())
	}
}

func TestStaleAnalysisIsDiscarded(t *testing.T) {
	svc := newFakeService()
	svc.analyses["old.jpg"] = &AnalysisResult{Verdict: "Fake", Confidence: 99}
	c := newTestController(svc)

	c.Handle(run(t, mustSelect(t, c, imageFile("old.jpg"))))
	analysis, err := c.TriggerAnalysis()
	if err != nil {
		t.Fatalf("TriggerAnalysis failed: %v", err)
	}

	// User replaces the file while analysis is in flight.
	preview := mustSelect(t, c, imageFile("new.jpg"))

	if c.Handle(run(t, analysis)) {
		t.Error("Expected stale analysis to be discarded")
	}
	if c.State() != StatePreviewing {
		t.Errorf("Expected Previewing, got %s", c.State())
	}
	if r := c.Results(); r.Analysis != nil {
		t.Error("Stale analysis must not render")
	}

	c.Handle(run(t, preview))
	if r := c.Results(); r.PreviewRef != "/static/uploads/preview_new.jpg" {
		t.Errorf("Expected new preview, got %+v", r)
	}
}

func TestStaleFailureIsDiscardedSilently(t *testing.T) {
	svc := newFakeService()
	svc.previews["bad.jpg"] = &PreviewResult{Error: "corrupt file"}
	c := newTestController(svc)

	stale := mustSelect(t, c, imageFile("bad.jpg"))
	current := mustSelect(t, c, imageFile("good.jpg"))
	c.Handle(run(t, current))

	c.Handle(run(t, stale))
	if c.Notice() != nil {
		t.Errorf("Stale failure raised a notice: %+v", c.Notice())
	}
	if c.State() != StatePreviewShown {
		t.Errorf("Expected PreviewShown, got %s", c.State())
	}
}

func TestReselectingSameFileIsNewIdentity(t *testing.T) {
	c := newTestController(newFakeService())
	f := imageFile("same.jpg")

	first := mustSelect(t, c, f)
	second := mustSelect(t, c, f)

	if c.Handle(run(t, first)) {
		t.Error("Expected first selection's reply to be stale")
	}
	if !c.Handle(run(t, second)) {
		t.Error("Expected second selection's reply to apply")
	}
}

func TestResultIsReplacedByNewSelection(t *testing.T) {
	c := newTestController(newFakeService())
	c.Handle(run(t, mustSelect(t, c, imageFile("a.jpg"))))
	cmd, _ := c.TriggerAnalysis()
	c.Handle(run(t, cmd))
	if c.State() != StateResultShown {
		t.Fatalf("Expected ResultShown, got %s", c.State())
	}

	mustSelect(t, c, imageFile("b.jpg"))
	r := c.Results()
	if r.Panel != PanelProgress || r.Analysis != nil || r.PreviewRef != "" {
		t.Errorf("Expected prior content cleared, got %+v", r)
	}
}

// TestConvergence drives alternating successes, failures and supersessions
// and checks that every observed snapshot is one of the named states with a
// consistent panel.
func TestConvergence(t *testing.T) {
	svc := newFakeService()
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("f%d.jpg", i)
		switch i % 4 {
		case 1:
			svc.previews[name] = &PreviewResult{Error: "corrupt file"}
		case 2:
			svc.errs["analyze:"+name] = errors.New("server exploded")
		case 3:
			svc.analyses[name] = &AnalysisResult{Verdict: "REAL", Confidence: 3}
		}
	}
	c := newTestController(svc)

	var pending []tea.Cmd
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("f%d.jpg", i)
		cmd := mustSelect(t, c, imageFile(name))
		checkConsistent(t, c)

		if i%5 == 4 {
			// Leave this one in flight and move on.
			pending = append(pending, cmd)
			continue
		}
		c.Handle(run(t, cmd))
		c.DismissNotice()
		checkConsistent(t, c)

		if cmd, err := c.TriggerAnalysis(); err == nil {
			checkConsistent(t, c)
			c.Handle(run(t, cmd))
		}
		c.DismissNotice()
		checkConsistent(t, c)
	}

	// f19 is still the live selection, so only a newer one makes every
	// parked reply stale.
	final := mustSelect(t, c, imageFile("final.jpg"))
	for _, cmd := range pending {
		if c.Handle(run(t, cmd)) {
			t.Error("Expected late replies to be stale")
		}
		checkConsistent(t, c)
	}
	if c.State() != StatePreviewing {
		t.Fatalf("Stale replies must not move the state, got %s", c.State())
	}

	if !c.Handle(run(t, final)) {
		t.Fatal("Expected the live reply to apply")
	}
	if c.State() != StatePreviewShown {
		t.Errorf("Expected PreviewShown, got %s", c.State())
	}
	checkConsistent(t, c)
}

func TestLastParkedReplyIsCurrent(t *testing.T) {
	c := newTestController(newFakeService())

	older := mustSelect(t, c, imageFile("f14.jpg"))
	latest := mustSelect(t, c, imageFile("f19.jpg"))

	if c.Handle(run(t, older)) {
		t.Error("Expected the superseded reply to be discarded")
	}
	if !c.Handle(run(t, latest)) {
		t.Fatal("Expected the reply for the live selection to apply")
	}
	if c.State() != StatePreviewShown {
		t.Errorf("Expected PreviewShown, got %s", c.State())
	}
}

func checkConsistent(t *testing.T, c *Controller) {
	t.Helper()
	r := c.Results()
	allowed := map[State][]Panel{
		StateIdle:         {PanelEmpty},
		StatePreviewing:   {PanelProgress},
		StatePreviewShown: {PanelPreview, PanelError},
		StateAnalyzing:    {PanelProgress},
		StateResultShown:  {PanelResult},
		StateErrorShown:   {PanelError},
	}
	panels, ok := allowed[c.State()]
	if !ok {
		t.Fatalf("Unknown state %v", c.State())
	}
	found := false
	for _, p := range panels {
		if p == r.Panel {
			found = true
		}
	}
	if !found {
		t.Errorf("State %s with panel %s", c.State(), r.Panel)
	}
	if r.Panel == PanelError && c.State() == StatePreviewShown && r.PreviewRef == "" {
		t.Error("Inline error in PreviewShown must keep the preview")
	}
	if r.Panel != PanelResult && r.Analysis != nil {
		t.Errorf("Partial result rendered in %s", r.Panel)
	}
}
