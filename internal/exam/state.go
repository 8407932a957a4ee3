package exam

import (
	"fmt"

	"github.com/felixgeelhaar/studydash/internal/api"
)

// QuizID identifies the quiz being attempted
func (c *Controller) QuizID() string { return c.quiz.ID }

// Title is the quiz title
func (c *Controller) Title() string { return c.quiz.Title }

// Difficulty is the quiz difficulty
func (c *Controller) Difficulty() api.Difficulty { return c.quiz.Difficulty }

// Total is the number of questions
func (c *Controller) Total() int { return len(c.questions) }

// Question returns the question at index in load order
func (c *Controller) Question(index int) (api.Question, bool) {
	if index < 0 || index >= len(c.questions) {
		return api.Question{}, false
	}
	return c.questions[index], true
}

// Current returns the index of the displayed question
func (c *Controller) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CurrentQuestion returns the displayed question
func (c *Controller) CurrentQuestion() api.Question {
	return c.questions[c.Current()]
}

// Answer returns the option selected for questionID
func (c *Controller) Answer(questionID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.answers[questionID]
	return a, ok
}

// Answered is the number of questions with a selection
func (c *Controller) Answered() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.answers)
}

// Complete reports whether every question has a selection
func (c *Controller) Complete() bool {
	return c.Answered() == len(c.questions)
}

// Progress is the answered share in percent, computed on every call
func (c *Controller) Progress() float64 {
	return float64(c.Answered()) / float64(len(c.questions)) * 100
}

// Elapsed returns the attempt time in seconds
func (c *Controller) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// ElapsedString returns Elapsed formatted as m:ss
func (c *Controller) ElapsedString() string {
	return FormatElapsed(c.Elapsed())
}

// Status returns the attempt status
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Closed reports whether Close has been called
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// ResultID is the graded result's identifier once submitted, else ""
func (c *Controller) ResultID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resultID
}

// FormatElapsed renders seconds as minutes:seconds. Minutes are not capped at 59.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
