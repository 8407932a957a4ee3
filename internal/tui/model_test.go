package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/exam"
	"github.com/felixgeelhaar/studydash/internal/log"
	"github.com/felixgeelhaar/studydash/internal/schedule"
)

type staticQuiz struct{ quiz *api.Quiz }

func (s staticQuiz) GetQuiz(context.Context, string, bool) (*api.Quiz, error) { return s.quiz, nil }

type recordingGrader struct {
	mu    sync.Mutex
	err   error
	calls []api.ExamSubmission
}

func (g *recordingGrader) SubmitExam(_ context.Context, s api.ExamSubmission) (*api.ExamResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, s)
	if g.err != nil {
		return nil, g.err
	}
	return &api.ExamResult{ID: "r1", CorrectAnswers: 1, TotalQuestions: 3}, nil
}

func newTestModel(t *testing.T, grader *recordingGrader) (ExamModel, *exam.Controller, *schedule.ManualTicker) {
	t.Helper()
	opts := []api.AnswerOption{{ID: "A", Text: "alpha"}, {ID: "B", Text: "beta"}, {ID: "C", Text: "gamma"}}
	quiz := &api.Quiz{
		ID:         "quiz-1",
		Title:      "Cells",
		Difficulty: api.DifficultyEasy,
		Questions: []api.Question{
			{ID: "q1", Text: "One?", Options: opts},
			{ID: "q2", Text: "Two?", Options: opts},
			{ID: "q3", Text: "Three?", Options: opts},
		},
	}

	ticker := schedule.NewManualTicker()
	ctrl, err := exam.Load(context.Background(), "quiz-1", staticQuiz{quiz}, grader,
		exam.WithTicker(ticker.Func()), exam.WithLogger(log.Discard()))
	if err != nil {
		t.Fatalf("exam.Load() error = %v", err)
	}
	t.Cleanup(ctrl.Close)

	return NewExamModel(context.Background(), ctrl, nil), ctrl, ticker
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m ExamModel, msg tea.KeyMsg) (ExamModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(ExamModel), cmd
}

// run executes cmd and feeds its message back into the model
func run(t *testing.T, m ExamModel, cmd tea.Cmd) (ExamModel, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	updated, next := m.Update(cmd())
	return updated.(ExamModel), next
}

func TestNavigationKeys(t *testing.T) {
	m, ctrl, _ := newTestModel(t, &recordingGrader{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if ctrl.Current() != 1 {
		t.Errorf("right: expected question index 1, got %d", ctrl.Current())
	}

	m, _ = press(t, m, runes("l"))
	m, _ = press(t, m, runes("l"))
	if ctrl.Current() != 2 {
		t.Errorf("next at end should stay on last question, got %d", ctrl.Current())
	}

	m, _ = press(t, m, runes("h"))
	if ctrl.Current() != 1 {
		t.Errorf("h: expected question index 1, got %d", ctrl.Current())
	}

	m, _ = press(t, m, runes("1"))
	if ctrl.Current() != 0 {
		t.Errorf("1: expected question index 0, got %d", ctrl.Current())
	}

	m, _ = press(t, m, runes("9"))
	if ctrl.Current() != 0 {
		t.Errorf("9 beyond the quiz should be ignored, got %d", ctrl.Current())
	}

	_, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if ctrl.Current() != 0 {
		t.Errorf("previous at start should stay on first question, got %d", ctrl.Current())
	}
}

func TestSelectKeysRecordOptionIDs(t *testing.T) {
	m, ctrl, _ := newTestModel(t, &recordingGrader{})

	m, _ = press(t, m, runes("b"))
	if got, _ := ctrl.Answer("q1"); got != "B" {
		t.Errorf("b: expected answer B, got %q", got)
	}

	m, _ = press(t, m, runes("C"))
	if got, _ := ctrl.Answer("q1"); got != "C" {
		t.Errorf("C: expected answer C, got %q", got)
	}

	_, _ = press(t, m, runes("d"))
	if got, _ := ctrl.Answer("q1"); got != "C" {
		t.Errorf("d has no option on this question, answer should stay C, got %q", got)
	}
	if ctrl.Current() != 0 {
		t.Errorf("selecting should not advance")
	}
}

func TestPartialSubmitNeedsConfirmation(t *testing.T) {
	grader := &recordingGrader{}
	m, ctrl, _ := newTestModel(t, grader)

	m, _ = press(t, m, runes("a"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || !m.confirming {
		t.Fatal("partial submit should ask for confirmation first")
	}
	if !strings.Contains(m.View(), "2 question(s) unanswered") {
		t.Errorf("confirmation should count unanswered questions:\n%s", m.View())
	}

	m, _ = press(t, m, runes("n"))
	if m.confirming || ctrl.Status() != exam.StatusActive {
		t.Fatal("n should cancel the confirmation")
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, cmd = press(t, m, runes("y"))
	if !m.submitting {
		t.Fatal("y should start submitting")
	}

	m, cmd = run(t, m, cmd)
	if m.Result() == nil || m.Result().ID != "r1" {
		t.Fatalf("expected result r1, got %+v", m.Result())
	}
	if cmd == nil {
		t.Error("successful submit should quit")
	}
	if m.Aborted() {
		t.Error("submitted attempt is not aborted")
	}

	if len(grader.calls) != 1 || len(grader.calls[0].Answers) != 3 {
		t.Errorf("expected one submission with 3 answers, got %+v", grader.calls)
	}
}

func TestCompleteSubmitSkipsConfirmation(t *testing.T) {
	m, _, _ := newTestModel(t, &recordingGrader{})

	for i := 0; i < 3; i++ {
		m, _ = press(t, m, runes("a"))
		m, _ = press(t, m, runes("l"))
	}

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.confirming {
		t.Fatal("complete attempt should submit without confirmation")
	}
	m, _ = run(t, m, cmd)
	if m.Result() == nil {
		t.Fatal("expected a result")
	}
}

func TestSubmitFailureKeepsAttemptAndFreezesClock(t *testing.T) {
	grader := &recordingGrader{err: errors.New(errors.ErrCodeAPITransport, "connection refused")}
	m, ctrl, ticker := newTestModel(t, grader)

	for i := 0; i < 4; i++ {
		if !ticker.Tick() {
			t.Fatalf("tick %d not handled", i+1)
		}
	}

	for i := 0; i < 3; i++ {
		m, _ = press(t, m, runes("a"))
		m, _ = press(t, m, runes("l"))
	}
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = run(t, m, cmd)

	if m.errCode != errors.ErrCodeExamSubmitFailed {
		t.Errorf("expected EXAM-001, got %s", m.errCode)
	}
	if !strings.Contains(m.View(), "Submission failed") {
		t.Errorf("view should show a submission failure:\n%s", m.View())
	}
	if ctrl.Status() != exam.StatusActive {
		t.Errorf("attempt should be active again, got %s", ctrl.Status())
	}
	if ticker.Tick() || ctrl.Elapsed() != 4 {
		t.Errorf("clock should stay frozen at 4s, got %d", ctrl.Elapsed())
	}
	if !strings.Contains(m.View(), "0:04") {
		t.Errorf("view should show frozen clock 0:04:\n%s", m.View())
	}

	grader.mu.Lock()
	grader.err = nil
	grader.mu.Unlock()

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = run(t, m, cmd)
	if m.Result() == nil {
		t.Fatal("retry should succeed")
	}
	if grader.calls[1].TimeTaken != 4 {
		t.Errorf("retry should send frozen time 4, got %d", grader.calls[1].TimeTaken)
	}
}

func TestQuitClosesAttempt(t *testing.T) {
	for _, k := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		t.Run(k.String(), func(t *testing.T) {
			m, ctrl, ticker := newTestModel(t, &recordingGrader{})

			m, cmd := press(t, m, k)
			if cmd == nil {
				t.Error("quit should return tea.Quit")
			}
			if !ctrl.Closed() {
				t.Error("quit should close the controller")
			}
			if ticker.Tick() {
				t.Error("clock should stop on quit")
			}
			if !m.Aborted() {
				t.Error("quit without result is aborted")
			}
		})
	}
}

func TestKeysIgnoredWhileSubmitting(t *testing.T) {
	m, ctrl, _ := newTestModel(t, &recordingGrader{})
	m.submitting = true

	m, _ = press(t, m, runes("l"))
	m, _ = press(t, m, runes("q"))
	if ctrl.Current() != 0 || ctrl.Closed() || m.quitting {
		t.Error("keys other than ctrl+c should be ignored while submitting")
	}
}

func TestTickMsgResubscribes(t *testing.T) {
	ticks := make(chan int, 1)
	m, _, _ := newTestModel(t, &recordingGrader{})
	m.ticks = ticks

	ticks <- 7
	msg := m.Init()()
	if tick, ok := msg.(TickMsg); !ok || tick.Elapsed != 7 {
		t.Fatalf("expected TickMsg{7}, got %#v", msg)
	}

	_, cmd := m.Update(msg)
	if cmd == nil {
		t.Error("tick should wait for the next one")
	}

	close(ticks)
	if got := cmd(); got != nil {
		t.Errorf("closed tick channel should end the subscription, got %#v", got)
	}
}

func TestViewShowsQuestionAndNavigator(t *testing.T) {
	m, _, _ := newTestModel(t, &recordingGrader{})
	m, _ = press(t, m, runes("b"))

	view := m.View()
	for _, want := range []string{"Cells", "easy", "1/3 answered", "0:00", "Question 1 of 3", "One?", "a) alpha", "b) beta"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if !strings.Contains(view, "● b) beta") {
		t.Errorf("selected option should be marked:\n%s", view)
	}
}
