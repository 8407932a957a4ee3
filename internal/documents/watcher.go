// Package documents follows server-side processing of uploaded documents.
package documents

import (
	"context"
	"sync"
	"time"

	"github.com/felixgeelhaar/studydash/internal/api"
	"github.com/felixgeelhaar/studydash/internal/log"
	"github.com/felixgeelhaar/studydash/internal/schedule"
)

// DefaultPollInterval matches the dashboard's document detail refresh
const DefaultPollInterval = 5 * time.Second

// Fetcher loads a single document
type Fetcher interface {
	GetDocument(ctx context.Context, documentID string) (*api.Document, error)
}

// Watcher polls a document until its processing finishes
type Watcher struct {
	fetcher  Fetcher
	interval time.Duration
	ticker   schedule.TickerFunc
	logger   *log.Logger
}

// Option configures a Watcher
type Option func(*Watcher)

// WithInterval sets the poll interval
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithTicker replaces the wall-clock ticker, for tests
func WithTicker(tf schedule.TickerFunc) Option {
	return func(w *Watcher) { w.ticker = tf }
}

// WithLogger sets the watcher's logger
func WithLogger(l *log.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// NewWatcher creates a Watcher polling every DefaultPollInterval
func NewWatcher(f Fetcher, opts ...Option) *Watcher {
	w := &Watcher{
		fetcher:  f,
		interval: DefaultPollInterval,
		logger:   log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch fetches the document now and then on every interval until its status
// is completed or failed, calling onChange whenever the status differs from
// the last one seen. It returns the final document, the first fetch error, or
// ctx.Err() when cancelled.
func (w *Watcher) Watch(ctx context.Context, documentID string, onChange func(*api.Document)) (*api.Document, error) {
	logger := w.logger.With("document_id", documentID)

	doc, err := w.fetcher.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if onChange != nil {
		onChange(doc)
	}
	if doc.ProcessingStatus.Terminal() {
		return doc, nil
	}

	var (
		mu      sync.Mutex
		last    = doc
		lastErr error
		r       *schedule.Repeater
	)
	started := make(chan struct{})

	r = schedule.Start(ctx, w.interval, w.ticker, func(time.Time) {
		<-started

		next, err := w.fetcher.GetDocument(ctx, documentID)

		mu.Lock()
		defer mu.Unlock()

		if err != nil {
			lastErr = err
			r.Stop()
			return
		}

		changed := next.ProcessingStatus != last.ProcessingStatus
		last = next
		if changed {
			logger.Debug("document status changed", "status", next.ProcessingStatus)
			if onChange != nil {
				onChange(next)
			}
		}
		if next.ProcessingStatus.Terminal() {
			r.Stop()
		}
	})
	close(started)
	r.Wait()

	mu.Lock()
	defer mu.Unlock()

	if lastErr != nil {
		return nil, lastErr
	}
	if !last.ProcessingStatus.Terminal() {
		return last, ctx.Err()
	}
	return last, nil
}
