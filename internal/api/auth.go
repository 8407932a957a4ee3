package api

import (
	"context"
	"net/http"

	"github.com/felixgeelhaar/studydash/internal/errors"
)

// Credentials is the login request body
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewUser is the registration request body
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /api/auth/me. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// User is the backend's user record
type User struct {
	ID                     string    `json:"id" yaml:"id" validate:"required"`
	Email                  string    `json:"email" yaml:"email" validate:"required"`
	Name                   string    `json:"name" yaml:"name"`
	AvatarURL              *string   `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	CreatedAt              Timestamp `json:"created_at" yaml:"created_at"`
	TotalDocuments         int       `json:"total_documents" yaml:"total_documents"`
	TotalQuizzesTaken      int       `json:"total_quizzes_taken" yaml:"total_quizzes_taken"`
	TotalCorrectAnswers    int       `json:"total_correct_answers" yaml:"total_correct_answers"`
	TotalQuestionsAnswered int       `json:"total_questions_answered" yaml:"total_questions_answered"`
	StudyStreak            int       `json:"study_streak" yaml:"study_streak"`
}

// DisplayName returns the user's name, falling back to the email address
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// TokenResponse is returned by login and register
type TokenResponse struct {
	AccessToken string `json:"access_token" validate:"required"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user" validate:"required"`
}

// Login authenticates with email and password
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &resp); err != nil {
		return nil, credentialError(err)
	}
	return &resp, nil
}

// Register creates an account; the backend logs the new user in directly
func (c *Client) Register(ctx context.Context, user NewUser) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", user, &resp); err != nil {
		return nil, credentialError(err)
	}
	return &resp, nil
}

// GetProfile returns the user owning the current bearer token
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the current user's name or avatar
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPut, "/api/auth/me", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// credentialError turns a rejected login or register into an invalid-credentials
// error carrying the backend's message. Transport failures pass through.
func credentialError(err error) error {
	switch StatusOf(err) {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
		return errors.NewInvalidCredentialsError(MessageOf(err), err)
	default:
		return err
	}
}
