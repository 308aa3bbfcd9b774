package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studyscout/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// EscapeHandler is implemented by screens that use Esc themselves, for
// example to leave an input. While CapturesEscape reports true the app
// forwards Esc instead of navigating back.
type EscapeHandler interface {
	CapturesEscape() bool
}

// TopicProvider is implemented by screens bound to a topic so the header
// can show it.
type TopicProvider interface {
	HeaderInfo() layout.HeaderInfo
}
