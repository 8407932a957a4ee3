package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ProcessingStatus is the summarisation state of an uploaded document
type ProcessingStatus string

// Processing states
const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// Terminal reports whether processing has finished, successfully or not
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Document is an uploaded study document
type Document struct {
	ID               string           `json:"id" yaml:"id" validate:"required"`
	UserID           string           `json:"user_id" yaml:"user_id"`
	Title            string           `json:"title" yaml:"title"`
	FileType         string           `json:"file_type" yaml:"file_type"`
	FileSize         int64            `json:"file_size" yaml:"file_size"`
	Summary          *string          `json:"summary,omitempty" yaml:"summary,omitempty"`
	EasyExplanation  *string          `json:"easy_explanation,omitempty" yaml:"easy_explanation,omitempty"`
	KeyConcepts      []string         `json:"key_concepts" yaml:"key_concepts"`
	PageCount        int              `json:"page_count" yaml:"page_count"`
	ProcessingStatus ProcessingStatus `json:"processing_status" yaml:"processing_status"`
	CreatedAt        Timestamp        `json:"created_at" yaml:"created_at"`
	UpdatedAt        Timestamp        `json:"updated_at" yaml:"updated_at"`
}

// DocumentList is one page of documents
type DocumentList struct {
	Documents []Document `json:"documents" yaml:"documents" validate:"dive"`
	Total     int        `json:"total" yaml:"total"`
	Page      int        `json:"page" yaml:"page"`
	Limit     int        `json:"limit" yaml:"limit"`
}

// ListDocuments returns one page of the user's documents
func (c *Client) ListDocuments(ctx context.Context, page, limit int) (*DocumentList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var list DocumentList
	path := fmt.Sprintf("/api/documents/?page=%d&limit=%d", page, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetDocument fetches one document
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	if err := c.do(ctx, http.MethodGet, "/api/documents/"+url.PathEscape(documentID), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ReprocessDocument resets a document to pending and restarts summarisation
func (c *Client) ReprocessDocument(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	path := "/api/documents/" + url.PathEscape(documentID) + "/reprocess"
	if err := c.do(ctx, http.MethodPost, path, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	return c.do(ctx, http.MethodDelete, "/api/documents/"+url.PathEscape(documentID), nil, nil)
}
