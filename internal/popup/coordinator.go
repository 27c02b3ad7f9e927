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

// Package popup debounces hover events into detail popup show/hide calls
// shared across all indicators.
package popup

import (
	"log/slog"
	"time"

	"github.com/phuonguno98/panelstat/internal/scheduler"
)

// DefaultDelay is the hover debounce delay.
const DefaultDelay = 300 * time.Millisecond

// Target is something with a detail popup.
type Target interface {
	ID() string
	ShowPopup() error
	HidePopup() error
}

// Coordinator serializes hover events for all targets. At most one popup is
// visible at a time. While a popup session is active (a popup is showing, or
// was hidden less than one delay ago) a newly hovered target shows at once.
// It must only be used from the scheduler's goroutine.
type Coordinator struct {
	sched  scheduler.Scheduler
	delay  time.Duration
	logger *slog.Logger

	showing bool
	visible Target

	pending       Target
	pendingHandle scheduler.Handle
	resetHandle   scheduler.Handle
}

// NewCoordinator creates a coordinator. A non-positive delay uses DefaultDelay.
func NewCoordinator(sched scheduler.Scheduler, delay time.Duration, logger *slog.Logger) *Coordinator {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Coordinator{
		sched:  sched,
		delay:  delay,
		logger: logger,
	}
}

// Visible returns the target whose popup is shown, or nil.
func (c *Coordinator) Visible() Target { return c.visible }

// Showing reports whether a popup session is active.
func (c *Coordinator) Showing() bool { return c.showing }

// HoverIn schedules t's popup.
func (c *Coordinator) HoverIn(t Target) {
	c.cancelReset()

	if c.pending != nil {
		if c.pending == t {
			return
		}
		c.cancelPending()
	}

	if c.visible == t {
		return
	}

	delay := c.delay
	if c.showing {
		delay = 0
	}

	c.pending = t
	c.pendingHandle = c.sched.After(delay, func() {
		c.pending = nil
		c.pendingHandle = 0
		c.show(t)
	})
}

// HoverOut cancels a pending show of t, hides it, and starts the session
// reset timer.
func (c *Coordinator) HoverOut(t Target) {
	if c.pending == t {
		c.cancelPending()
	}

	if c.visible == t {
		c.hide(t)
	}

	c.cancelReset()
	c.resetHandle = c.sched.After(c.delay, func() {
		c.resetHandle = 0
		c.showing = false
	})
}

// Forget drops every reference to t. Used when its controller is destroyed.
func (c *Coordinator) Forget(t Target) {
	if c.pending == t {
		c.cancelPending()
	}
	if c.visible == t {
		c.visible = nil
	}
}

func (c *Coordinator) show(t Target) {
	if c.visible != nil && c.visible != t {
		c.hide(c.visible)
	}

	if err := t.ShowPopup(); err != nil {
		c.logger.Debug("Popup show skipped", "target", t.ID(), "error", err)
		return
	}

	c.visible = t
	c.showing = true
}

func (c *Coordinator) hide(t Target) {
	if err := t.HidePopup(); err != nil {
		c.logger.Debug("Popup hide skipped", "target", t.ID(), "error", err)
	}
	if c.visible == t {
		c.visible = nil
	}
}

func (c *Coordinator) cancelPending() {
	c.sched.Cancel(c.pendingHandle)
	c.pending = nil
	c.pendingHandle = 0
}

func (c *Coordinator) cancelReset() {
	if c.resetHandle != 0 {
		c.sched.Cancel(c.resetHandle)
		c.resetHandle = 0
	}
}
