package ui

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// dropMsg carries a path that landed in the watched drop folder
type dropMsg struct {
	path string
}

// openResultMsg reports the outcome of opening a reference in the browser
type openResultMsg struct {
	label string
	url   string
	err   error
}

// waitForDrop blocks on the drop channel and hands the next path to the
// event loop. A closed channel ends the loop.
func waitForDrop(drops <-chan string) tea.Cmd {
	if drops == nil {
		return nil
	}
	return func() tea.Msg {
		path, ok := <-drops
		if !ok {
			return nil
		}
		return dropMsg{path: path}
	}
}

// openRefCommand opens url with the system browser off the event loop
func openRefCommand(open func(string) error, label, target string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{label: label, url: target, err: open(target)}
	}
}

// cleanDroppedPath turns what a terminal pastes for a dragged file into a
// filesystem path. Only the first file of a multi-file drop is kept.
func cleanDroppedPath(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}

	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}

	if strings.HasPrefix(s, "file://") {
		if u, err := url.Parse(s); err == nil && u.Path != "" {
			return filepath.FromSlash(u.Path)
		}
	}

	if runtime.GOOS != "windows" && strings.Contains(s, `\`) {
		var b strings.Builder
		escaped := false
		for _, r := range s {
			if r == '\\' && !escaped {
				escaped = true
				continue
			}
			escaped = false
			b.WriteRune(r)
		}
		s = b.String()
	}

	return s
}
