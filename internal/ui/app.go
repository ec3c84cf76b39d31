package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/yildizm/elacheck/internal/controller"
	"github.com/yildizm/elacheck/internal/emoji"
	"github.com/yildizm/elacheck/internal/logger"
	"github.com/yildizm/elacheck/internal/ui/components"
)

const meterWidth = 24

// Options wires the upload screen to its collaborators
type Options struct {
	// ServiceURL is shown in the header
	ServiceURL string

	// Resolve turns a returned reference into an openable URL
	Resolve func(ref string) string

	// OpenURL opens a URL in the system browser
	OpenURL func(url string) error

	// Drops delivers paths from the watched drop folder, nil when disabled
	Drops   <-chan string
	DropDir string

	// StartDir is where the file picker opens
	StartDir string

	// InitialPath is selected as soon as the screen starts
	InitialPath string

	Log *logger.Logger
}

// App is the upload screen. It owns the controller and is the only code
// that touches it; every remote completion arrives through Update.
type App struct {
	ctrl   *controller.Controller
	opts   Options
	log    *logger.Logger
	styles *Styles
	keys   keyMap

	spinner spinner.Model
	picker  filepicker.Model
	help    help.Model
	meter   *components.ConfidenceMeter

	width    int
	height   int
	picking  bool
	quitting bool

	// pendingDrop holds a drop that arrived while a notice was up
	pendingDrop string
	status      string
}

// NewApp creates the upload screen around ctrl
func NewApp(ctrl *controller.Controller, opts Options) *App {
	if opts.Log == nil {
		opts.Log = logger.Discard()
	}
	if opts.Resolve == nil {
		opts.Resolve = func(ref string) string { return ref }
	}
	if opts.StartDir == "" {
		opts.StartDir = "."
	}

	styles := GetStyles()

	picker := filepicker.New()
	picker.CurrentDirectory = opts.StartDir
	picker.ShowHidden = false
	picker.DirAllowed = false
	picker.FileAllowed = true

	meter := components.NewConfidenceMeter(meterWidth)
	meter.Plain = IsColorDisabled()

	return &App{
		ctrl:   ctrl,
		opts:   opts,
		log:    opts.Log.WithComponent("ui"),
		styles: styles,
		keys:   defaultKeyMap(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.Progress),
		),
		picker: picker,
		help:   help.New(),
		meter:  meter,
	}
}

// Init starts listening on the drop folder and selects the initial path
func (m *App) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForDrop(m.opts.Drops)}
	if m.opts.InitialPath != "" {
		cmds = append(cmds, m.selectPath(m.opts.InitialPath))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case controller.PreviewCompleteMsg, controller.AnalysisCompleteMsg:
		m.ctrl.Handle(msg)
		return m, nil

	case dropMsg:
		return m, tea.Batch(m.handleDrop(msg.path), waitForDrop(m.opts.Drops))

	case openResultMsg:
		if msg.err != nil {
			m.log.Warn("failed to open %s: %v", msg.url, msg.err)
			m.status = fmt.Sprintf("Could not open %s: %v", msg.label, msg.err)
		} else {
			m.status = fmt.Sprintf("Opened %s", msg.label)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.State().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Directory listings and other picker internals
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return tea.Quit
	}

	// A pending notice swallows everything but its dismissal
	if m.ctrl.Notice() != nil {
		if key.Matches(msg, m.keys.Dismiss) {
			m.ctrl.DismissNotice()
			if path := m.pendingDrop; path != "" {
				m.pendingDrop = ""
				return m.selectPath(path)
			}
		}
		return nil
	}

	if msg.Paste {
		m.picking = false
		return m.selectPath(cleanDroppedPath(string(msg.Runes)))
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit

	case key.Matches(msg, m.keys.Browse):
		m.picking = true
		m.status = ""
		return m.picker.Init()

	case key.Matches(msg, m.keys.Analyze):
		cmd, err := m.ctrl.TriggerAnalysis()
		if err != nil {
			return nil
		}
		m.status = ""
		return tea.Batch(cmd, m.spinner.Tick)

	case key.Matches(msg, m.keys.OpenOriginal):
		if r := m.ctrl.Results(); r.Analysis != nil {
			return m.openRef("original image", r.Analysis.OriginalImageRef)
		}

	case key.Matches(msg, m.keys.OpenELA):
		if r := m.ctrl.Results(); r.Analysis != nil {
			return m.openRef("ELA image", r.Analysis.ELAImageRef)
		}

	case key.Matches(msg, m.keys.OpenPreview):
		if r := m.ctrl.Results(); r.PreviewRef != "" {
			return m.openRef("preview", r.PreviewRef)
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return nil
}

func (m *App) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Back) {
		m.picking = false
		return nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return tea.Batch(cmd, m.selectPath(path))
	}
	return cmd
}

func (m *App) handleDrop(path string) tea.Cmd {
	if m.ctrl.Notice() != nil {
		m.log.Debug("holding drop %s until the notice is dismissed", path)
		m.pendingDrop = path
		return nil
	}
	m.picking = false
	return m.selectPath(path)
}

// selectPath hands a path to the controller. A rejected path leaves a
// notice on the controller and issues nothing.
func (m *App) selectPath(path string) tea.Cmd {
	cmd, err := m.ctrl.SelectPath(path)
	if err != nil {
		m.log.Debug("selection rejected: %v", err)
		return nil
	}
	m.status = ""
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *App) openRef(label, ref string) tea.Cmd {
	if m.opts.OpenURL == nil || ref == "" {
		return nil
	}
	return openRefCommand(m.opts.OpenURL, label, m.opts.Resolve(ref))
}

// View renders the upload screen
func (m *App) View() string {
	if m.quitting {
		return ""
	}

	if n := m.ctrl.Notice(); n != nil {
		return m.renderNotice(n)
	}

	sections := []string{
		m.renderHeader(),
		m.renderSelection(),
	}
	if m.picking {
		sections = append(sections, m.renderPicker())
	} else {
		sections = append(sections, m.renderResults())
	}
	if m.status != "" {
		sections = append(sections, m.styles.Muted.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *App) renderHeader() string {
	title := m.styles.Title.Render(emoji.GetEmoji("image") + " ELA Image Check")
	if m.opts.ServiceURL == "" {
		return title
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, m.styles.Muted.Render(" "+m.opts.ServiceURL))
}

// renderSelection is the drop/selection surface
func (m *App) renderSelection() string {
	var lines []string

	if sel, ok := m.ctrl.Selected(); ok {
		lines = append(lines, fmt.Sprintf("%s %s", emoji.GetEmoji("target"), m.styles.Header.Render(sel.Name)))
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("%s, %s", sel.MediaType, humanize.Bytes(uint64(sel.Size)))))
	} else {
		lines = append(lines, m.styles.Muted.Render("No image selected"))
	}

	hint := fmt.Sprintf("%s press %s to browse or drag a file onto this window",
		emoji.GetEmoji("drop"), m.styles.Key.Render("b"))
	lines = append(lines, m.styles.Muted.Render(hint))
	if m.opts.DropDir != "" {
		lines = append(lines, m.styles.Muted.Render(fmt.Sprintf("%s drop folder: %s", emoji.GetEmoji("folder"), m.opts.DropDir)))
	}

	return m.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (m *App) renderPicker() string {
	title := m.styles.Header.Render(emoji.GetEmoji("folder") + " " + filepath.Clean(m.picker.CurrentDirectory))
	return m.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.picker.View()))
}

// renderResults draws exactly one panel of the results area
func (m *App) renderResults() string {
	r := m.ctrl.Results()

	var body string
	switch r.Panel {
	case controller.PanelProgress:
		body = m.renderProgress(r)
	case controller.PanelPreview:
		body = m.renderPreview(r.PreviewRef)
	case controller.PanelResult:
		body = m.renderAnalysis(r.Analysis)
	case controller.PanelError:
		body = m.renderError(r)
	default:
		body = m.styles.Muted.Render("Results will appear here.")
	}

	return m.styles.Box.Render(body)
}

func (m *App) renderProgress(r controller.Results) string {
	return fmt.Sprintf("%s %s %s", m.spinner.View(), emoji.GetEmoji("hourglass"), r.Progress)
}

func (m *App) renderPreview(ref string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(emoji.GetEmoji("preview")+" Preview"),
		m.renderRef(ref),
		"",
		m.styles.Muted.Render("press a to analyze, p to open the preview"),
	)
}

func (m *App) renderAnalysis(a *controller.AnalysisResult) string {
	verdictStyle := m.styles.Negative
	marker := emoji.GetEmoji("fake")
	if a.Class() == controller.VerdictPositive {
		verdictStyle = m.styles.Positive
		marker = emoji.GetEmoji("real")
	}

	m.meter.SetValue(a.Confidence)
	m.meter.Label = a.ConfidenceText()
	m.meter.FillStyle = verdictStyle

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(emoji.GetEmoji("analysis")+" Analysis"),
		"",
		fmt.Sprintf("Original:   %s", m.renderRef(a.OriginalImageRef)),
		fmt.Sprintf("Result:     %s %s", marker, verdictStyle.Render(a.Verdict)),
		fmt.Sprintf("Confidence: %s", m.meter.Render()),
		fmt.Sprintf("%s  %s", emoji.GetEmoji("ela")+" ELA:", m.renderRef(a.ELAImageRef)),
		"",
		m.styles.Muted.Render("press o to open the original, e to open the ELA image"),
	)
}

func (m *App) renderError(r controller.Results) string {
	errLine := m.styles.Error.Render(emoji.GetEmoji("error") + " " + r.Error)
	if r.PreviewRef == "" {
		return errLine
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderPreview(r.PreviewRef), "", errLine)
}

func (m *App) renderRef(ref string) string {
	return m.styles.Info.Render(emoji.GetEmoji("link") + " " + m.opts.Resolve(ref))
}

func (m *App) renderNotice(n *controller.Notice) string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Warning.Render(emoji.GetEmoji("warning")+" "+n.Title),
		"",
		n.Message,
		"",
		m.styles.Muted.Render("press enter to continue"),
	)
	box := m.styles.Modal.Render(content)
	if m.width == 0 || m.height == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
