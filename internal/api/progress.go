package api

import (
	"context"
	"net/http"
)

// DailyStat is one day of study activity
type DailyStat struct {
	Date              string `json:"date" yaml:"date"`
	DocumentsUploaded int    `json:"documents_uploaded" yaml:"documents_uploaded"`
	QuizzesTaken      int    `json:"quizzes_taken" yaml:"quizzes_taken"`
	QuestionsAnswered int    `json:"questions_answered" yaml:"questions_answered"`
	CorrectAnswers    int    `json:"correct_answers" yaml:"correct_answers"`
	StudyTime         int    `json:"study_time" yaml:"study_time"`
}

// ProgressOverview is the dashboard summary of a user's learning progress
type ProgressOverview struct {
	TotalDocuments    int         `json:"total_documents" yaml:"total_documents" validate:"gte=0"`
	TotalQuizzesTaken int         `json:"total_quizzes_taken" yaml:"total_quizzes_taken" validate:"gte=0"`
	AverageScore      float64     `json:"average_score" yaml:"average_score" validate:"gte=0,lte=100"`
	StudyStreak       int         `json:"study_streak" yaml:"study_streak" validate:"gte=0"`
	RecentActivity    []DailyStat `json:"recent_activity" yaml:"recent_activity"`
}

// GetProgressOverview returns the current user's progress summary
func (c *Client) GetProgressOverview(ctx context.Context) (*ProgressOverview, error) {
	var overview ProgressOverview
	if err := c.do(ctx, http.MethodGet, "/api/progress/overview", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// TopicProgress is the mastery of one topic across graded questions
type TopicProgress struct {
	Topic          string  `json:"topic" yaml:"topic" validate:"required"`
	TotalQuestions int     `json:"total_questions" yaml:"total_questions" validate:"gte=0"`
	CorrectAnswers int     `json:"correct_answers" yaml:"correct_answers" validate:"gte=0"`
	MasteryLevel   float64 `json:"mastery_level" yaml:"mastery_level" validate:"gte=0,lte=100"`
}

// Achievement is a milestone the user has earned
type Achievement struct {
	Type        string    `json:"type" yaml:"type"`
	Title       string    `json:"title" yaml:"title" validate:"required"`
	Description string    `json:"description" yaml:"description"`
	EarnedAt    Timestamp `json:"earned_at" yaml:"earned_at"`
}

// LearningProgress is the full progress record behind the overview.
// TotalStudyTime is in minutes.
type LearningProgress struct {
	UserID         string          `json:"user_id" yaml:"user_id" validate:"required"`
	DailyStats     []DailyStat     `json:"daily_stats" yaml:"daily_stats"`
	TopicProgress  []TopicProgress `json:"topic_progress" yaml:"topic_progress" validate:"dive"`
	Achievements   []Achievement   `json:"achievements" yaml:"achievements" validate:"dive"`
	TotalStudyTime int             `json:"total_study_time" yaml:"total_study_time" validate:"gte=0"`
	AverageScore   float64         `json:"average_score" yaml:"average_score" validate:"gte=0,lte=100"`
	CurrentStreak  int             `json:"current_streak" yaml:"current_streak" validate:"gte=0"`
	BestStreak     int             `json:"best_streak" yaml:"best_streak" validate:"gte=0"`
	TotalDocuments int             `json:"total_documents" yaml:"total_documents" validate:"gte=0"`
	TotalQuizzes   int             `json:"total_quizzes" yaml:"total_quizzes" validate:"gte=0"`
	UpdatedAt      Timestamp       `json:"updated_at" yaml:"updated_at"`
}

// GetProgressDetailed returns the current user's per-day, per-topic and achievement history
func (c *Client) GetProgressDetailed(ctx context.Context) (*LearningProgress, error) {
	var progress LearningProgress
	if err := c.do(ctx, http.MethodGet, "/api/progress/detailed", nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}
