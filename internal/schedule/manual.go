package schedule

import (
	"sync"
	"time"
)

// ManualTicker is a Ticker driven by explicit Tick calls, for deterministic tests.
type ManualTicker struct {
	c        chan time.Time
	acks     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	created int
	period  time.Duration
}

// NewManualTicker creates a ManualTicker
func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		c:       make(chan time.Time),
		acks:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Func returns a TickerFunc that hands out this ticker
func (m *ManualTicker) Func() TickerFunc {
	return func(d time.Duration) Ticker {
		m.mu.Lock()
		m.created++
		m.period = d
		m.mu.Unlock()
		return m
	}
}

// C implements Ticker
func (m *ManualTicker) C() <-chan time.Time { return m.c }

// Stop implements Ticker
func (m *ManualTicker) Stop() {
	m.stopOnce.Do(func() { close(m.stopped) })
}

func (m *ManualTicker) ack() {
	select {
	case m.acks <- struct{}{}:
	case <-m.stopped:
	}
}

// Tick fires once and waits until the tick has been handled. It returns
// false if the ticker was stopped before the tick was delivered or handled.
func (m *ManualTicker) Tick() bool {
	select {
	case m.c <- time.Now():
	case <-m.stopped:
		return false
	}

	select {
	case <-m.acks:
		return true
	case <-m.stopped:
		return false
	}
}

// Stopped reports whether Stop has been called
func (m *ManualTicker) Stopped() bool {
	select {
	case <-m.stopped:
		return true
	default:
		return false
	}
}

// Created returns how many times the TickerFunc was invoked
func (m *ManualTicker) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// Period returns the interval most recently requested
func (m *ManualTicker) Period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.period
}
