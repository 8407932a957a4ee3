// Package exam drives a single timed quiz attempt from load to graded submission.
package exam

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/errors"
	"github.com/felixgeelhaar/studydash/internal/log"
	"github.com/felixgeelhaar/studydash/internal/schedule"
)

// TickInterval is how often the attempt clock advances
const TickInterval = time.Second

// Status is the state of an attempt
type Status string

const (
	StatusActive     Status = "active"
	StatusSubmitting Status = "submitting"
	StatusSubmitted  Status = "submitted"
)

// QuizSource fetches quiz content for an attempt
type QuizSource interface {
	GetQuiz(ctx context.Context, quizID string, includeAnswers bool) (*api.Quiz, error)
}

// Grader grades a finished attempt
type Grader interface {
	SubmitExam(ctx context.Context, submission api.ExamSubmission) (*api.ExamResult, error)
}

// Controller owns one attempt. Its methods are safe for concurrent use, so a
// UI goroutine and the clock goroutine can both touch it.
type Controller struct {
	quiz      api.Quiz
	questions []api.Question
	index     map[string]int
	grader    Grader
	logger    *log.Logger
	onTick    func(elapsed int)

	mu       sync.Mutex
	answers  map[string]string
	current  int
	elapsed  int
	status   Status
	ticking  bool
	closed   bool
	resultID string
	clock    *schedule.Repeater
}

type options struct {
	ticker schedule.TickerFunc
	logger *log.Logger
	onTick func(int)
}

// Option configures Load
type Option func(*options)

// WithTicker replaces the wall-clock ticker, for tests
func WithTicker(tf schedule.TickerFunc) Option {
	return func(o *options) { o.ticker = tf }
}

// WithLogger sets the controller's logger
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTickHandler registers fn to be called with the new elapsed time after
// every tick. fn runs on the clock goroutine and must not block.
func WithTickHandler(fn func(elapsed int)) Option {
	return func(o *options) { o.onTick = fn }
}

// Load fetches the quiz without answer keys and starts an active attempt with
// its clock running. No controller exists if the fetch fails or the quiz has
// no questions.
func Load(ctx context.Context, quizID string, src QuizSource, grader Grader, opts ...Option) (*Controller, error) {
	o := options{logger: log.DefaultLogger()}
	for _, opt := range opts {
		opt(&o)
	}

	quiz, err := src.GetQuiz(ctx, quizID, false)
	if err != nil {
		return nil, errors.NewQuizLoadError(quizID, err)
	}
	if len(quiz.Questions) == 0 {
		return nil, errors.New(errors.ErrCodeQuizInvalid, fmt.Sprintf("quiz %s has no questions", quizID))
	}

	index := make(map[string]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		if _, dup := index[q.ID]; dup {
			return nil, errors.New(errors.ErrCodeQuizInvalid, fmt.Sprintf("quiz %s repeats question %s", quizID, q.ID))
		}
		index[q.ID] = i
	}

	c := &Controller{
		quiz:      *quiz,
		questions: quiz.Questions,
		index:     index,
		grader:    grader,
		logger:    o.logger.With("component", "exam", "quiz_id", quizID),
		onTick:    o.onTick,
		answers:   make(map[string]string),
		status:    StatusActive,
		ticking:   true,
	}
	c.quiz.Questions = nil
	if c.quiz.ID == "" {
		c.quiz.ID = quizID
	}

	c.clock = schedule.Start(context.Background(), TickInterval, o.ticker, c.tick)
	c.logger.Debug("attempt started", "questions", len(c.questions))
	return c, nil
}

func (c *Controller) tick(time.Time) {
	c.mu.Lock()
	if !c.ticking || c.closed || c.status != StatusActive {
		c.mu.Unlock()
		return
	}
	c.elapsed++
	elapsed := c.elapsed
	onTick := c.onTick
	c.mu.Unlock()

	if onTick != nil {
		onTick(elapsed)
	}
}

// stopClock freezes elapsed time for good. Callers hold c.mu.
func (c *Controller) stopClock() {
	c.ticking = false
	c.clock.Stop()
}

// SelectAnswer records optionID for questionID, replacing any earlier choice.
// An empty optionID is rejected. It never moves the current question.
func (c *Controller) SelectAnswer(questionID, optionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkActive(); err != nil {
		return err
	}
	if _, ok := c.index[questionID]; !ok {
		return errors.New(errors.ErrCodeExamUnknownQuestion, fmt.Sprintf("question %s is not part of this quiz", questionID))
	}
	if optionID == "" {
		return errors.New(errors.ErrCodeExamUnknownQuestion, fmt.Sprintf("no option selected for question %s", questionID))
	}

	c.answers[questionID] = optionID
	return nil
}

// GoTo makes index the current question
func (c *Controller) GoTo(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errClosed()
	}
	if index < 0 || index >= len(c.questions) {
		return errors.New(errors.ErrCodeExamIndexOutOfRange,
			fmt.Sprintf("question %d out of range 1-%d", index+1, len(c.questions)))
	}
	c.current = index
	return nil
}

// Next moves to the following question. It does nothing on the last one.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed && c.current < len(c.questions)-1 {
		c.current++
	}
}

// Previous moves to the preceding question. It does nothing on the first one.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed && c.current > 0 {
		c.current--
	}
}

// Submit freezes the clock and sends every question, in order, to the grader.
// Partial answer sets are accepted; confirming them is up to the caller.
//
// A second Submit while one is in flight returns EXAM-002. On grader failure
// the attempt is active again, the clock stays frozen, and the returned
// EXAM-001 error wraps the cause; calling Submit again retries.
func (c *Controller) Submit(ctx context.Context) (*api.ExamResult, error) {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return nil, errClosed()
	case c.status == StatusSubmitting:
		c.mu.Unlock()
		return nil, errors.New(errors.ErrCodeExamSubmitting, "submission already in progress")
	case c.status == StatusSubmitted:
		c.mu.Unlock()
		return nil, errors.New(errors.ErrCodeExamSubmitted, "attempt already submitted")
	}

	c.stopClock()
	c.status = StatusSubmitting
	payload := c.payloadLocked()
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "submitting attempt", "answered", c.answeredIn(payload), "time_taken", payload.TimeTaken)
	result, err := c.grader.SubmitExam(ctx, payload)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		c.logger.Debug("discarding submission response for closed attempt")
		return nil, errClosed()
	}

	if err != nil {
		c.status = StatusActive
		c.logger.WithError(err).Warn("submission failed")
		return nil, errors.NewSubmitFailedError(c.quiz.ID, err)
	}

	c.status = StatusSubmitted
	c.resultID = result.ID
	c.logger.Info("attempt submitted", "result_id", result.ID)
	return result, nil
}

// Close ends the attempt from any state and stops its clock. A submission
// still in flight finishes without touching the attempt. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopClock()
}

// Payload builds the submission for the current answers without sending it
func (c *Controller) Payload() api.ExamSubmission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payloadLocked()
}

func (c *Controller) payloadLocked() api.ExamSubmission {
	answers := make([]api.ExamAnswer, len(c.questions))
	for i, q := range c.questions {
		answers[i] = api.ExamAnswer{
			QuestionID:     q.ID,
			SelectedAnswer: c.answers[q.ID],
		}
	}
	return api.ExamSubmission{
		QuizID:    c.quiz.ID,
		Answers:   answers,
		TimeTaken: c.elapsed,
	}
}

func (c *Controller) answeredIn(p api.ExamSubmission) int {
	n := 0
	for _, a := range p.Answers {
		if a.SelectedAnswer != "" {
			n++
		}
	}
	return n
}

func (c *Controller) checkActive() error {
	if c.closed {
		return errClosed()
	}
	if c.status != StatusActive {
		return errors.New(errors.ErrCodeExamNotActive, fmt.Sprintf("attempt is %s", c.status))
	}
	return nil
}

func errClosed() error {
	return errors.New(errors.ErrCodeExamClosed, "attempt has been closed")
}
