package tui

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/studydash/internal/errors"
)

// View renders the TUI (required by Bubble Tea)
func (m ExamModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.progress.ViewAs(m.ctrl.Progress() / 100))
	b.WriteString("\n\n")
	b.WriteString(m.renderNavigator())
	b.WriteString("\n\n")
	b.WriteString(m.styles.Border.Render(m.renderQuestion()))
	b.WriteString("\n")

	switch {
	case m.submitting:
		b.WriteString("\n" + m.styles.Status.Render("Submitting answers..."))
	case m.confirming:
		unanswered := m.ctrl.Total() - m.ctrl.Answered()
		b.WriteString("\n" + m.styles.Warning.Render(
			fmt.Sprintf("%d question(s) unanswered. Submit anyway? (y/n)", unanswered)))
	case m.lastError != "":
		b.WriteString("\n" + m.renderError())
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(examKeys))
	return b.String()
}

// renderHeader renders title, difficulty, clock and answered count
func (m ExamModel) renderHeader() string {
	title := m.styles.Title.Render(m.ctrl.Title())
	meta := m.styles.Subtitle.Render(fmt.Sprintf("  %s  ·  %d/%d answered",
		m.ctrl.Difficulty(), m.ctrl.Answered(), m.ctrl.Total()))
	clock := m.styles.Status.Render("  ⏱ " + m.ctrl.ElapsedString())
	return title + meta + clock
}

// renderNavigator renders one numbered cell per question
func (m ExamModel) renderNavigator() string {
	current := m.ctrl.Current()
	cells := make([]string, m.ctrl.Total())
	for i := range cells {
		label := fmt.Sprintf("%d", i+1)
		q, _ := m.ctrl.Question(i)
		_, answered := m.ctrl.Answer(q.ID)

		switch {
		case i == current:
			cells[i] = m.styles.Highlighted.Render(label)
		case answered:
			cells[i] = m.styles.Success.Render(" " + label + " ")
		default:
			cells[i] = m.styles.Muted.Render(" " + label + " ")
		}
	}
	return strings.Join(cells, "")
}

// renderQuestion renders the current question and its options
func (m ExamModel) renderQuestion() string {
	var b strings.Builder
	index := m.ctrl.Current()
	q := m.ctrl.CurrentQuestion()
	selected, _ := m.ctrl.Answer(q.ID)

	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Question %d of %d", index+1, m.ctrl.Total())))
	b.WriteString("\n\n")
	b.WriteString(q.Text)
	b.WriteString("\n")

	for i, opt := range q.Options {
		letter := string(rune('a' + i))
		marker := "○"
		line := fmt.Sprintf("%s %s) %s", marker, letter, opt.Text)
		if opt.ID == selected {
			marker = "●"
			line = m.styles.Selected.Render(fmt.Sprintf("%s %s) %s", marker, letter, opt.Text))
		}
		b.WriteString("\n" + line)
	}
	return b.String()
}

// renderError renders the last error, worded by its kind
func (m ExamModel) renderError() string {
	switch m.errCode {
	case errors.ErrCodeExamSubmitFailed:
		return m.styles.Error.Render("Submission failed. ") +
			m.styles.Muted.Render("Your answers are kept and the clock is stopped; press enter to retry.") +
			"\n" + m.styles.Muted.Render(m.lastError)
	case errors.ErrCodeAuthSessionExpired:
		return m.styles.Error.Render("Your session has expired. ") +
			m.styles.Muted.Render("Log in again with 'studydash auth login'.")
	default:
		return m.styles.Error.Render("Error: ") + m.lastError
	}
}
