// Package tui implements `nerve board`: a read-only bubbletea dashboard
// that polls the coordination facade for a project's core context (agents,
// open jobs, live locks, notepad) and renders it in one panel — a terminal
// analogue of the HTTP notepad stream for operators watching a project
// without a browser.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nervecenter/nerve-center/internal/coordination"
)

const refreshInterval = 3 * time.Second

type refreshMsg struct {
	jobsText    string
	locksText   string
	notepadText string
	err         error
}

// Board is the bubbletea model behind `nerve board`.
type Board struct {
	facade    *coordination.Facade
	projectID string
	project   string

	width, height int
	jobsText      string
	locksText     string
	notepadText   string
	errText       string
}

// NewBoard constructs a Board polling projectID (displayed as project).
func NewBoard(facade *coordination.Facade, projectID, project string) *Board {
	return &Board{facade: facade, projectID: projectID, project: project}
}

func (b *Board) Init() tea.Cmd {
	return b.fetch()
}

func (b *Board) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		core := b.facade.GetCoreContext(ctx, b.projectID)
		if !core.IsOk() {
			return refreshMsg{err: core.Err}
		}
		return refreshMsg{notepadText: core.Value}
	}
}

func (b *Board) scheduleRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return b.fetch()()
	})
}

func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
		return b, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return b, tea.Quit
		case "r":
			return b, b.fetch()
		}
	case refreshMsg:
		if msg.err != nil {
			b.errText = msg.err.Error()
		} else {
			b.errText = ""
			b.notepadText = msg.notepadText
		}
		return b, b.scheduleRefresh()
	}
	return b, nil
}

func (b *Board) View() string {
	width := b.width
	if width <= 0 {
		width = 100
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("NERVE CENTER · %s", b.project))

	body := strings.TrimSpace(b.notepadText)
	if body == "" {
		body = "Loading…"
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-4)).
		Render(body)

	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render("q quit · r refresh")
	if b.errText != "" {
		footer = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render("⚠ "+b.errText) + "\n" + footer
	}

	return strings.Join([]string{header, box, footer}, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
