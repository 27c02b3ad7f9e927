/*
 * MIT License
 *
 * Copyright (c) 2026 Nguyen Thanh Phuong
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrLoopStopped is returned by Call once the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

type entry struct {
	timer    *time.Timer
	interval time.Duration // Zero for one-shot callbacks
	fn       func()
}

// Loop is a single-goroutine event loop backed by real timers.
type Loop struct {
	queue  chan func()
	done   chan struct{}
	logger *slog.Logger

	mu      sync.Mutex
	next    Handle
	entries map[Handle]*entry
	stopped bool
}

// NewLoop creates a loop. Callbacks queue until Run is called.
func NewLoop(logger *slog.Logger) *Loop {
	return &Loop{
		queue:   make(chan func(), 64),
		done:    make(chan struct{}),
		logger:  logger,
		entries: make(map[Handle]*entry),
	}
}

// Run executes queued callbacks until ctx is cancelled. All timers are
// stopped before it returns.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Debug("Event loop started")

	defer func() {
		l.mu.Lock()
		l.stopped = true
		for h, e := range l.entries {
			e.timer.Stop()
			delete(l.entries, h)
		}
		l.mu.Unlock()
		close(l.done)
		l.logger.Debug("Event loop stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.queue:
			l.invoke(fn)
		}
	}
}

// invoke runs a callback, turning panics into log entries so a faulty
// callback cannot take the loop down.
func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// Post queues fn to run on the loop. It never blocks after the loop stops.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	wrapped := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.queue <- wrapped:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule runs fn on the loop every interval.
func (l *Loop) Schedule(interval time.Duration, fn func()) Handle {
	return l.add(interval, interval, fn)
}

// After runs fn on the loop once, after delay.
func (l *Loop) After(delay time.Duration, fn func()) Handle {
	return l.add(delay, 0, fn)
}

func (l *Loop) add(delay, interval time.Duration, fn func()) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.stopped {
		return 0
	}

	l.next++
	h := l.next
	e := &entry{interval: interval, fn: fn}
	e.timer = time.AfterFunc(delay, func() { l.fire(h) })
	l.entries[h] = e
	return h
}

// fire runs on the timer goroutine and forwards to the loop.
func (l *Loop) fire(h Handle) {
	l.Post(func() { l.dispatch(h) })
}

// dispatch runs on the loop. The registration check makes a Cancel issued
// earlier on the loop win over a timer that already fired.
func (l *Loop) dispatch(h Handle) {
	l.mu.Lock()
	e, ok := l.entries[h]
	if ok {
		if e.interval == 0 {
			delete(l.entries, h)
		} else {
			// Re-arm first so a panicking callback keeps its schedule.
			e.timer.Reset(e.interval)
		}
	}
	l.mu.Unlock()

	if !ok {
		return
	}

	e.fn()
}

// Cancel stops a scheduled callback.
func (l *Loop) Cancel(h Handle) {
	if h == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[h]; ok {
		e.timer.Stop()
		delete(l.entries, h)
	}
}

// Pending returns the number of live handles.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
