// Package tui provides the interactive knowledge-map terminal UI using
// bubbletea.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mindtrail/mindtrail/internal/config"
	"github.com/mindtrail/mindtrail/internal/mapclient"
)

// TUI is the interactive knowledge-map explorer.
type TUI struct {
	client       mapclient.Client
	cfg          *config.Config
	initialQuery string
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a new TUI backed by the given client.
func New(client mapclient.Client, cfg *config.Config, opts ...Option) *TUI {
	t := &TUI{
		client: client,
		cfg:    cfg,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithInitialQuery sets a concept to map immediately on startup.
func WithInitialQuery(query string) Option {
	return func(t *TUI) {
		t.initialQuery = query
	}
}

// Run starts the TUI and blocks until it exits.
func (t *TUI) Run() error {
	m := newModel(t.client, t.cfg, t.initialQuery)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
