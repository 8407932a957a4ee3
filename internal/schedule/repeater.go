// Package schedule runs cancellable repeating tasks.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Ticker is the subset of time.Ticker a Repeater needs
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d
type TickerFunc func(d time.Duration) Ticker

// RealTicker is the TickerFunc backed by time.NewTicker
func RealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// acker is implemented by tickers that want to know when a tick has been handled
type acker interface {
	ack()
}

// Repeater calls a function on every tick until it is stopped or its context ends.
type Repeater struct {
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// Start launches fn every interval on its own goroutine. A nil newTicker uses RealTicker.
// fn never runs concurrently with itself.
func Start(ctx context.Context, interval time.Duration, newTicker TickerFunc, fn func(time.Time)) *Repeater {
	if newTicker == nil {
		newTicker = RealTicker
	}

	r := &Repeater{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	ticker := newTicker(interval)
	go r.loop(ctx, ticker, fn)

	return r
}

func (r *Repeater) loop(ctx context.Context, ticker Ticker, fn func(time.Time)) {
	defer close(r.done)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			// A tick and a stop can be ready together; stop wins.
			select {
			case <-r.stop:
				return
			default:
			}
			fn(now)
			if a, ok := ticker.(acker); ok {
				a.ack()
			}
		}
	}
}

// Stop cancels the repeater. It is safe to call more than once and from
// inside fn. It does not wait for the goroutine; use Wait for that.
func (r *Repeater) Stop() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

// Wait blocks until the repeater goroutine has exited
func (r *Repeater) Wait() {
	<-r.done
}

// Done is closed once the repeater goroutine has exited
func (r *Repeater) Done() <-chan struct{} {
	return r.done
}
