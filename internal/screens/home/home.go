// Package home lists the loaded topics and opens new documents.
package home

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/router"
	"github.com/abhisek/studyscout/internal/screen"
	"github.com/abhisek/studyscout/internal/screens/history"
	"github.com/abhisek/studyscout/internal/screens/topic"
	"github.com/abhisek/studyscout/internal/store"
	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/ui/components"
	"github.com/abhisek/studyscout/internal/ui/layout"
	"github.com/abhisek/studyscout/internal/ui/theme"
)

const title = "S T U D Y S C O U T"

// Options configures the home screen.
type Options struct {
	// Events enables the history screen; nil hides it.
	Events store.EventRepo
	Topic  topic.Options
	// IngestTimeout bounds loading one document; 0 means no limit.
	IngestTimeout time.Duration
}

type topicOpenedMsg struct {
	Topic string
	Err   error
}

// HomeScreen is the main home screen of the application.
type HomeScreen struct {
	store *study.Store
	opts  Options

	menu    components.Menu
	input   components.TextInput
	opening bool
	loading string
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.EscapeHandler = (*HomeScreen)(nil)

func New(st *study.Store, opts Options) *HomeScreen {
	h := &HomeScreen{
		store: st,
		opts:  opts,
		input: components.NewTextInput("path/to/notes.pdf", false, 0),
	}
	h.input.Blur()
	h.rebuildMenu()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Refresh rebuilds the topic list when the home screen is shown again.
func (h *HomeScreen) Refresh() tea.Cmd {
	h.rebuildMenu()
	return nil
}

func (h *HomeScreen) Title() string {
	return "Topics"
}

func (h *HomeScreen) CapturesEscape() bool {
	return h.opening || h.loading != ""
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	switch {
	case h.loading != "":
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	case h.opening:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Open"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "O", Description: "Open PDF"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (h *HomeScreen) rebuildMenu() {
	var items []components.MenuItem
	for _, name := range h.store.Topics() {
		// Lookup never waits on a topic that is busy answering.
		detail := ""
		if ts, err := h.store.Lookup(name); err == nil && ts.Knowledge != nil {
			detail = fmt.Sprintf("%d pages", ts.Knowledge.Pages)
		}
		if name == h.store.Current() {
			detail += "  (current)"
		}
		items = append(items, components.MenuItem{
			Label:  name,
			Detail: strings.TrimSpace(detail),
			Action: h.selectTopic(name),
		})
	}

	items = append(items, components.MenuItem{Label: "Open a PDF…", Action: func() tea.Cmd {
		return h.startOpening()
	}})
	if h.opts.Events != nil {
		items = append(items, components.MenuItem{Label: "Quiz history", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(h.opts.Events)}
			}
		}})
	}
	items = append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
		return tea.Quit
	}})
	h.menu.SetItems(items)
}

func (h *HomeScreen) selectTopic(name string) func() tea.Cmd {
	return func() tea.Cmd {
		if _, err := h.store.Select(name); err != nil {
			h.errMsg = err.Error()
			h.rebuildMenu()
			return nil
		}
		h.errMsg = ""
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: topic.New(h.store, name, h.opts.Topic)}
		}
	}
}

func (h *HomeScreen) startOpening() tea.Cmd {
	h.opening = true
	h.errMsg = ""
	h.input.Reset()
	return h.input.Focus()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case topicOpenedMsg:
		h.loading = ""
		h.rebuildMenu()
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: topic.New(h.store, msg.Topic, h.opts.Topic)}
		}

	case tea.KeyMsg:
		if h.loading != "" {
			return h, nil
		}
		if h.opening {
			return h, h.handleInputKey(msg)
		}
		if msg.String() == "o" {
			return h, h.startOpening()
		}
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}

	if h.opening {
		var cmd tea.Cmd
		h.input, cmd = h.input.Update(msg)
		return h, cmd
	}
	return h, nil
}

func (h *HomeScreen) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		h.opening = false
		h.input.Blur()
		return nil
	case "enter":
		path := expandHome(h.input.Value())
		if path == "" {
			return nil
		}
		h.opening = false
		h.input.Blur()
		h.loading = path
		h.errMsg = ""
		return h.openCmd(path)
	}
	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	return cmd
}

// openCmd reads path and loads it as a topic named after the file.
func (h *HomeScreen) openCmd(path string) tea.Cmd {
	return func() tea.Msg {
		name := knowledge.TopicFromFilename(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return topicOpenedMsg{Topic: name, Err: err}
		}

		ctx := context.Background()
		if h.opts.IngestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.opts.IngestTimeout)
			defer cancel()
		}
		ts, err := h.store.GetOrCreate(ctx, name, knowledge.Document{Name: filepath.Base(path), Data: data})
		if err != nil {
			return topicOpenedMsg{Topic: name, Err: err}
		}
		return topicOpenedMsg{Topic: ts.Name}
	}
}

func expandHome(path string) string {
	path = strings.Trim(strings.TrimSpace(path), `"'`)
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(max(width-8, 20), 70)
	center := func(s string) string { return lipgloss.PlaceHorizontal(width, lipgloss.Center, s) }

	var sections []string
	sections = append(sections, center(theme.Title.Render(title)))
	if !layout.IsCompactHeight(height + 6) {
		sections = append(sections, center(theme.Subtitle.Render("Chat with your documents. Quiz yourself on them.")))
	}

	switch {
	case h.loading != "":
		sections = append(sections, center(theme.Hint.Render(
			fmt.Sprintf("Reading %s and building its index...", filepath.Base(h.loading)))))
	case h.opening:
		box := theme.Card.Width(cw).BorderForeground(theme.Primary).
			Render(theme.Hint.Render("Path to a PDF or text file") + "\n" + h.input.View())
		sections = append(sections, center(box))
	default:
		if len(h.store.Topics()) == 0 {
			sections = append(sections, center(theme.Hint.Render("No topics yet. Open a PDF to get started.")))
		}
		sections = append(sections, center(theme.Card.Width(cw).Render(h.menu.View())))
	}

	if h.errMsg != "" {
		sections = append(sections, center(theme.ErrorText.Width(cw).Render("Error: "+h.errMsg)))
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
