package controller

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/elacheck/internal/logger"
)

const (
	progressPreview = "Generating preview..."
	progressAnalyze = "Analyzing... Please wait."
)

// selectedFile is the live selection. A new selection replaces the pointer;
// the old value is simply dropped.
type selectedFile struct {
	file       *File
	generation uint64
}

// Selection is a read-only view of the live selection.
type Selection struct {
	Generation uint64
	Name       string
	Path       string
	MediaType  string
	Size       int64
}

// Controller owns the interaction state of one upload session. It must only
// be used from a single goroutine (the UI event loop); remote calls run as
// commands and report back through PreviewCompleteMsg and AnalysisCompleteMsg.
type Controller struct {
	ctx context.Context
	svc Service
	log *logger.Logger

	state      State
	selected   *selectedFile
	generation uint64

	preview  *PreviewResult
	analysis *AnalysisResult

	panel     Panel
	progress  string
	inlineErr string

	notice *Notice
}

// New creates a controller. ctx bounds every remote call for the lifetime
// of the session; superseded calls are not cancelled.
func New(ctx context.Context, svc Service, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		ctx:   ctx,
		svc:   svc,
		log:   log.WithComponent("controller"),
		state: StateIdle,
		panel: PanelEmpty,
	}
}

// State returns the current interaction state.
func (c *Controller) State() State {
	return c.state
}

// Selected returns the live selection, if any.
func (c *Controller) Selected() (Selection, bool) {
	if c.selected == nil {
		return Selection{}, false
	}
	f := c.selected.file
	return Selection{
		Generation: c.selected.generation,
		Name:       f.Name,
		Path:       f.Path,
		MediaType:  f.MediaType,
		Size:       f.Size,
	}, true
}

// Notice returns the pending blocking notice, or nil.
func (c *Controller) Notice() *Notice {
	if c.notice == nil {
		return nil
	}
	n := *c.notice
	return &n
}

// DismissNotice acknowledges the pending blocking notice.
func (c *Controller) DismissNotice() {
	c.notice = nil
}

// Results returns a snapshot of the results area.
func (c *Controller) Results() Results {
	r := Results{Panel: c.panel}
	switch c.panel {
	case PanelProgress:
		r.Progress = c.progress
	case PanelPreview:
		r.PreviewRef = c.preview.PreviewImageRef
	case PanelResult:
		a := *c.analysis
		r.Analysis = &a
	case PanelError:
		r.Error = c.inlineErr
		if c.preview != nil {
			r.PreviewRef = c.preview.PreviewImageRef
		}
	}
	return r
}

// SelectPath resolves a path from the selection surface and selects it.
func (c *Controller) SelectPath(path string) (tea.Cmd, error) {
	file, err := FromPath(path)
	if err != nil {
		c.raise("Cannot use file", err)
		return nil, err
	}
	return c.SelectFile(file)
}

// SelectFile makes file the live selection and issues exactly one Preview
// call tagged with it. A non-image file raises a ValidationError notice and
// leaves everything else untouched.
func (c *Controller) SelectFile(file *File) (tea.Cmd, error) {
	if file == nil {
		err := NewValidationError("", "", "no file provided")
		c.raise("Invalid file", err)
		return nil, err
	}
	if !IsImageMediaType(file.MediaType) {
		err := NewValidationError(file.Name, file.MediaType, "Only image files are allowed!")
		c.log.DebugWithFields("rejected selection", []logger.Field{
			logger.F("name", file.Name),
			logger.F("media_type", file.MediaType),
		})
		c.raise("Invalid file", err)
		return nil, err
	}

	c.generation++
	c.selected = &selectedFile{file: file, generation: c.generation}
	c.preview = nil
	c.analysis = nil
	c.inlineErr = ""
	c.showProgress(progressPreview)
	c.transition(StatePreviewing)

	c.log.InfoWithFields("file selected", []logger.Field{
		logger.Generation(c.generation),
		logger.F("name", file.Name),
		logger.F("media_type", file.MediaType),
		logger.F("size", file.Size),
	})

	return createPreviewCommand(c.ctx, c.svc, file, c.generation), nil
}

// TriggerAnalysis issues exactly one Analyze call for the live selection.
func (c *Controller) TriggerAnalysis() (tea.Cmd, error) {
	if c.selected == nil {
		err := &MissingInputError{}
		c.raise("No image selected", err)
		return nil, err
	}
	if c.state.Busy() {
		err := &BusyError{State: c.state}
		c.raise("Please wait", err)
		return nil, err
	}

	c.analysis = nil
	c.inlineErr = ""
	c.showProgress(progressAnalyze)
	c.transition(StateAnalyzing)

	sel := c.selected
	c.log.InfoWithFields("analysis requested", []logger.Field{
		logger.Generation(sel.generation),
		logger.F("name", sel.file.Name),
	})

	return createAnalysisCommand(c.ctx, c.svc, sel.file, sel.generation), nil
}

// Handle routes a completion message to its callback. It reports whether
// the message changed the controller.
func (c *Controller) Handle(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case PreviewCompleteMsg:
		return c.OnPreviewComplete(msg)
	case AnalysisCompleteMsg:
		return c.OnAnalysisComplete(msg)
	}
	return false
}

// OnPreviewComplete applies a Preview reply unless it is stale.
func (c *Controller) OnPreviewComplete(msg PreviewCompleteMsg) bool {
	if !c.isCurrent(msg.Generation, StatePreviewing) {
		c.discard("preview", msg.Generation)
		return false
	}

	switch {
	case msg.Err != nil:
		c.failPreview(fmt.Sprintf("Error generating preview: %v", msg.Err), msg.Err)
	case msg.Result == nil:
		c.failPreview("Error generating preview.", nil)
	case msg.Result.Error != "":
		c.failPreview("Preview error: "+msg.Result.Error, nil)
	default:
		result := *msg.Result
		c.preview = &result
		c.panel = PanelPreview
		c.transition(StatePreviewShown)
	}
	return true
}

// OnAnalysisComplete applies an Analyze reply unless it is stale. Failures
// stay inline in the results area instead of raising a notice.
func (c *Controller) OnAnalysisComplete(msg AnalysisCompleteMsg) bool {
	if !c.isCurrent(msg.Generation, StateAnalyzing) {
		c.discard("analysis", msg.Generation)
		return false
	}

	if msg.Err != nil || msg.Result == nil {
		text := "Error analyzing image."
		if msg.Err != nil {
			text = fmt.Sprintf("Error analyzing image: %v", msg.Err)
		}
		c.log.WarnWithFields("analysis failed", []logger.Field{
			logger.Generation(msg.Generation),
			logger.Error(msg.Err),
		})
		c.inlineErr = text
		c.panel = PanelError
		if c.preview != nil {
			c.transition(StatePreviewShown)
		} else {
			c.transition(StateErrorShown)
		}
		return true
	}

	result := *msg.Result
	c.analysis = &result
	c.panel = PanelResult
	c.transition(StateResultShown)
	c.log.InfoWithFields("analysis complete", []logger.Field{
		logger.Generation(msg.Generation),
		logger.F("verdict", result.Verdict),
		logger.F("confidence", result.Confidence),
	})
	return true
}

// isCurrent reports whether a reply belongs to the live selection and to
// the call the controller is waiting on.
func (c *Controller) isCurrent(generation uint64, waiting State) bool {
	return c.selected != nil && c.selected.generation == generation && c.state == waiting
}

func (c *Controller) discard(kind string, generation uint64) {
	current := uint64(0)
	if c.selected != nil {
		current = c.selected.generation
	}
	c.log.DebugWithFields("discarding stale %s reply", []logger.Field{
		logger.Generation(generation),
		logger.F("current", current),
		logger.F("state", c.state),
	}, kind)
}

func (c *Controller) failPreview(text string, cause error) {
	c.log.WarnWithFields("preview failed", []logger.Field{
		logger.Generation(c.selected.generation),
		logger.F("message", text),
	})
	c.preview = nil
	c.panel = PanelEmpty
	c.progress = ""
	c.transition(StateIdle)
	c.notice = &Notice{Title: "Preview failed", Message: text, Err: cause}
}

func (c *Controller) showProgress(text string) {
	c.panel = PanelProgress
	c.progress = text
}

func (c *Controller) raise(title string, err error) {
	c.notice = &Notice{Title: title, Message: err.Error(), Err: err}
}

func (c *Controller) transition(to State) {
	if c.state != to {
		c.log.Debug("state %s -> %s", c.state, to)
	}
	c.state = to
}
