package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/exam"
)

// ExamModel is the Bubble Tea model for taking a quiz. The attempt state lives
// in the exam.Controller; the model only holds screen state.
type ExamModel struct {
	ctx   context.Context
	ctrl  *exam.Controller
	ticks <-chan int

	// Screen state
	confirming bool
	submitting bool
	quitting   bool
	width      int

	// Outcome
	result    *api.ExamResult
	lastError string
	errCode   errors.ErrorCode

	help     help.Model
	progress progress.Model
	styles   Styles
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Success     lipgloss.Style
	Warning     lipgloss.Style
	Muted       lipgloss.Style
	Border      lipgloss.Style
	Highlighted lipgloss.Style
	Selected    lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")). // Purple
			Padding(1, 2),
		Highlighted: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).  // Purple
			Foreground(lipgloss.Color("230")). // Light yellow
			Bold(true).
			Padding(0, 1),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
	}
}

// NewExamModel creates the exam screen for ctrl. ticks, if not nil, carries
// the controller's elapsed time after every tick so the clock redraws.
func NewExamModel(ctx context.Context, ctrl *exam.Controller, ticks <-chan int) ExamModel {
	return ExamModel{
		ctx:      ctx,
		ctrl:     ctrl,
		ticks:    ticks,
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		styles:   DefaultStyles(),
	}
}

// TickMsg reports the attempt clock after a tick
type TickMsg struct {
	Elapsed int
}

// submitDoneMsg carries the outcome of a submission
type submitDoneMsg struct {
	result *api.ExamResult
	err    error
}

// Init initializes the TUI model (required by Bubble Tea)
func (m ExamModel) Init() tea.Cmd {
	return m.waitForTick()
}

func (m ExamModel) waitForTick() tea.Cmd {
	if m.ticks == nil {
		return nil
	}
	ticks := m.ticks
	return func() tea.Msg {
		elapsed, ok := <-ticks
		if !ok {
			return nil
		}
		return TickMsg{Elapsed: elapsed}
	}
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m ExamModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.quitting {
			return m, nil
		}
		return m, m.waitForTick()

	case submitDoneMsg:
		m.submitting = false
		if msg.err != nil {
			m.lastError = msg.err.Error()
			m.errCode = errors.CodeOf(msg.err)
			return m, nil
		}
		m.result = msg.result
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m ExamModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// Nothing but ctrl+c while the grader is working
	if m.submitting {
		return m, nil
	}

	if m.confirming {
		switch {
		case key.Matches(msg, examKeys.Confirm):
			m.confirming = false
			return m.submit()
		case key.Matches(msg, examKeys.Cancel):
			m.confirming = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, examKeys.Quit):
		return m.quit()

	case key.Matches(msg, examKeys.Previous):
		m.ctrl.Previous()

	case key.Matches(msg, examKeys.Next):
		m.ctrl.Next()

	case key.Matches(msg, examKeys.Jump):
		index := int(msg.String()[0] - '1')
		if index < m.ctrl.Total() {
			_ = m.ctrl.GoTo(index)
		}

	case key.Matches(msg, examKeys.Select):
		m.selectOption(int(strings.ToLower(msg.String())[0] - 'a'))

	case key.Matches(msg, examKeys.Submit):
		if !m.ctrl.Complete() {
			m.confirming = true
			return m, nil
		}
		return m.submit()
	}

	return m, nil
}

func (m *ExamModel) selectOption(index int) {
	q := m.ctrl.CurrentQuestion()
	if index < 0 || index >= len(q.Options) {
		return
	}
	if err := m.ctrl.SelectAnswer(q.ID, q.Options[index].ID); err != nil {
		m.lastError = err.Error()
		m.errCode = errors.CodeOf(err)
		return
	}
	m.lastError = ""
	m.errCode = ""
}

func (m ExamModel) submit() (tea.Model, tea.Cmd) {
	m.submitting = true
	m.lastError = ""
	m.errCode = ""

	ctx, ctrl := m.ctx, m.ctrl
	return m, func() tea.Msg {
		result, err := ctrl.Submit(ctx)
		return submitDoneMsg{result: result, err: err}
	}
}

// quit tears the attempt down. An in-flight submission is left to finish
// without touching the closed controller.
func (m ExamModel) quit() (tea.Model, tea.Cmd) {
	m.ctrl.Close()
	m.quitting = true
	return m, tea.Quit
}

// Result is the graded result if the attempt was submitted, else nil
func (m ExamModel) Result() *api.ExamResult {
	return m.result
}

// Aborted reports whether the user left without a graded result
func (m ExamModel) Aborted() bool {
	return m.quitting && m.result == nil
}
