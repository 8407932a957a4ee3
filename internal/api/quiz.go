package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Difficulty is a quiz difficulty level
type Difficulty string

// Difficulty levels
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// AnswerOption is one labelled answer choice of a question
type AnswerOption struct {
	ID   string `json:"option_id" yaml:"option_id" validate:"required"`
	Text string `json:"option_text" yaml:"option_text"`
}

// Question is a quiz question. CorrectAnswer and Explanation are empty when
// the quiz was fetched without answers.
type Question struct {
	ID            string         `json:"id" yaml:"id" validate:"required"`
	Text          string         `json:"question_text" yaml:"question_text"`
	Options       []AnswerOption `json:"options" yaml:"options" validate:"min=1,dive"`
	CorrectAnswer string         `json:"correct_answer,omitempty" yaml:"correct_answer,omitempty"`
	Explanation   string         `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Quiz is a generated quiz with its questions in presentation order
type Quiz struct {
	ID            string     `json:"id" yaml:"id" validate:"required"`
	UserID        string     `json:"user_id" yaml:"user_id"`
	DocumentID    string     `json:"document_id" yaml:"document_id"`
	Title         string     `json:"title" yaml:"title"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	QuestionCount int        `json:"question_count" yaml:"question_count"`
	Questions     []Question `json:"questions" yaml:"questions" validate:"dive"`
	CreatedAt     Timestamp  `json:"created_at" yaml:"created_at"`
}

// QuizList is the response of the quiz listing endpoint
type QuizList struct {
	Quizzes []Quiz `json:"quizzes" yaml:"quizzes" validate:"dive"`
	Total   int    `json:"total" yaml:"total"`
}

// QuizCreate asks the backend to generate a quiz from a document
type QuizCreate struct {
	DocumentID    string     `json:"document_id"`
	Title         string     `json:"title"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionCount int        `json:"question_count"`
}

// ExamAnswer is one entry of a submission
type ExamAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer string `json:"selected_answer"`
}

// ExamSubmission is the graded payload of a finished attempt
type ExamSubmission struct {
	QuizID    string       `json:"quiz_id"`
	Answers   []ExamAnswer `json:"answers"`
	TimeTaken int          `json:"time_taken"`
}

// AnswerDetail is the graded outcome of one question
type AnswerDetail struct {
	QuestionID     string `json:"question_id" yaml:"question_id"`
	QuestionText   string `json:"question_text" yaml:"question_text"`
	SelectedAnswer string `json:"selected_answer" yaml:"selected_answer"`
	CorrectAnswer  string `json:"correct_answer" yaml:"correct_answer"`
	IsCorrect      bool   `json:"is_correct" yaml:"is_correct"`
	Explanation    string `json:"explanation" yaml:"explanation"`
}

// ExamResult is the backend's grading of a submission
type ExamResult struct {
	ID              string         `json:"id" yaml:"id" validate:"required"`
	UserID          string         `json:"user_id" yaml:"user_id"`
	QuizID          string         `json:"quiz_id" yaml:"quiz_id"`
	DocumentID      string         `json:"document_id" yaml:"document_id"`
	QuizTitle       string         `json:"quiz_title" yaml:"quiz_title"`
	TotalQuestions  int            `json:"total_questions" yaml:"total_questions"`
	CorrectAnswers  int            `json:"correct_answers" yaml:"correct_answers"`
	WrongAnswers    int            `json:"wrong_answers" yaml:"wrong_answers"`
	ScorePercentage float64        `json:"score_percentage" yaml:"score_percentage"`
	TimeTaken       int            `json:"time_taken" yaml:"time_taken"`
	Difficulty      Difficulty     `json:"difficulty" yaml:"difficulty"`
	Answers         []AnswerDetail `json:"answers" yaml:"answers"`
	WeakTopics      []string       `json:"weak_topics" yaml:"weak_topics"`
	CompletedAt     Timestamp      `json:"completed_at" yaml:"completed_at"`
}

// ExamResultList is the response of the results listing endpoint
type ExamResultList struct {
	Results []ExamResult `json:"results" yaml:"results" validate:"dive"`
	Total   int          `json:"total" yaml:"total"`
}

// GetQuiz fetches a quiz. With includeAnswers false the backend withholds answer keys.
func (c *Client) GetQuiz(ctx context.Context, quizID string, includeAnswers bool) (*Quiz, error) {
	path := fmt.Sprintf("/api/quiz/%s?include_answers=%s", url.PathEscape(quizID), strconv.FormatBool(includeAnswers))

	var quiz Quiz
	if err := c.do(ctx, http.MethodGet, path, nil, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ListQuizzes lists the user's quizzes, optionally for one document
func (c *Client) ListQuizzes(ctx context.Context, documentID string) (*QuizList, error) {
	path := "/api/quiz/"
	if documentID != "" {
		path += "?document_id=" + url.QueryEscape(documentID)
	}

	var list QuizList
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateQuiz asks the backend to generate a new quiz
func (c *Client) CreateQuiz(ctx context.Context, req QuizCreate) (*Quiz, error) {
	var quiz Quiz
	if err := c.do(ctx, http.MethodPost, "/api/quiz/create", req, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// SubmitExam sends a finished attempt for grading
func (c *Client) SubmitExam(ctx context.Context, submission ExamSubmission) (*ExamResult, error) {
	var result ExamResult
	if err := c.do(ctx, http.MethodPost, "/api/quiz/submit", submission, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListResults lists the user's graded attempts
func (c *Client) ListResults(ctx context.Context) (*ExamResultList, error) {
	var list ExamResultList
	if err := c.do(ctx, http.MethodGet, "/api/quiz/results/all", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetResult fetches one graded attempt
func (c *Client) GetResult(ctx context.Context, resultID string) (*ExamResult, error) {
	var result ExamResult
	if err := c.do(ctx, http.MethodGet, "/api/quiz/results/"+url.PathEscape(resultID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
