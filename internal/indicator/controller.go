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

package indicator

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phuonguno98/panelstat/internal/scheduler"
	"github.com/phuonguno98/panelstat/internal/series"
)

// DefaultBarRetention is the number of points kept per bar series.
const DefaultBarRetention = 3

// State is the lifecycle state of a controller.
type State int

const (
	StateUninitialized State = iota
	StateDisabled
	StateReady
	StateDestroyed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return "uninitialized"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Options configures a controller.
type Options struct {
	Interval     time.Duration
	BarRetention int
}

// Controller owns one indicator's series and drives it from a scheduler.
// It is not safe for concurrent use; every call must come from the
// scheduler's goroutine.
type Controller struct {
	id     string
	ind    Indicator
	sched  scheduler.Scheduler
	sink   RenderSink
	logger *slog.Logger

	interval     time.Duration
	barRetention int

	bars         *series.Store
	state        State
	handle       scheduler.Handle
	popupVisible bool
	onDestroy    []func()

	ticks    uint64
	failures uint64
}

// NewController creates a controller in the Uninitialized state.
func NewController(ind Indicator, sched scheduler.Scheduler, sink RenderSink, opts Options, logger *slog.Logger) *Controller {
	if opts.BarRetention < 1 {
		opts.BarRetention = DefaultBarRetention
	}

	id := uuid.New().String()

	return &Controller{
		id:           id,
		ind:          ind,
		sched:        sched,
		sink:         sink,
		logger:       logger.With("indicator", ind.Name(), "id", id),
		interval:     opts.Interval,
		barRetention: opts.BarRetention,
		bars:         series.NewStore(),
	}
}

// ID returns the controller's unique identifier.
func (c *Controller) ID() string { return c.id }

// Name returns the indicator name.
func (c *Controller) Name() string { return c.ind.Name() }

// Indicator returns the wrapped indicator.
func (c *Controller) Indicator() Indicator { return c.ind }

// State returns the current lifecycle state.
func (c *Controller) State() State { return c.state }

// Bars exposes the bar series.
func (c *Controller) Bars() *series.Store { return c.bars }

// PopupVisible reports whether the detail popup is shown.
func (c *Controller) PopupVisible() bool { return c.popupVisible }

// Init allocates series and primes counters. The controller starts Disabled.
func (c *Controller) Init() error {
	switch c.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateUninitialized:
	default:
		return nil
	}

	if err := c.ind.InitValues(c.bars); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", c.ind.Name(), err)
	}

	c.state = StateDisabled
	c.logger.Debug("Indicator initialized", "interval", c.interval)
	return nil
}

// Enable starts the periodic trigger.
func (c *Controller) Enable() error {
	switch c.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateUninitialized:
		return ErrNotInitialized
	case StateReady:
		return nil
	}

	c.handle = c.sched.Schedule(c.interval, c.tick)
	c.state = StateReady
	c.logger.Debug("Indicator enabled")
	return nil
}

// Disable suspends the periodic trigger. Series keep their contents.
func (c *Controller) Disable() error {
	switch c.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateUninitialized:
		return ErrNotInitialized
	case StateDisabled:
		return nil
	}

	c.sched.Cancel(c.handle)
	c.handle = 0
	c.state = StateDisabled
	c.logger.Debug("Indicator disabled")
	return nil
}

// OnDestroy registers fn to run when the controller is destroyed.
func (c *Controller) OnDestroy(fn func()) {
	c.onDestroy = append(c.onDestroy, fn)
}

// Destroy cancels the trigger, runs destroy hooks and releases the
// indicator's subscriptions.
func (c *Controller) Destroy() error {
	if c.state == StateDestroyed {
		return ErrDestroyed
	}

	c.sched.Cancel(c.handle)
	c.handle = 0

	for _, fn := range c.onDestroy {
		fn()
	}
	c.onDestroy = nil

	if cl, ok := c.ind.(closer); ok {
		cl.Close()
	}

	c.popupVisible = false
	c.state = StateDestroyed
	c.logger.Debug("Indicator destroyed", "ticks", c.ticks, "failures", c.failures)
	return nil
}

// ShowPopup marks the popup visible and enables the detail graph.
func (c *Controller) ShowPopup() error {
	if c.state == StateDestroyed {
		return ErrDestroyed
	}
	c.popupVisible = true
	c.syncGraph()
	return nil
}

// HidePopup marks the popup hidden and disables the detail graph.
func (c *Controller) HidePopup() error {
	if c.state == StateDestroyed {
		return ErrDestroyed
	}
	c.popupVisible = false
	c.syncGraph()
	return nil
}

func (c *Controller) syncGraph() {
	g := c.ind.Graph()
	if g == nil {
		return
	}
	if c.popupVisible {
		g.Enable()
	} else {
		g.Disable()
	}
}

// tick runs one sampling step. Ticks outside Ready are ignored.
func (c *Controller) tick() {
	if c.state != StateReady {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			c.failures++
			c.logger.Error("Indicator update panicked", "panic", fmt.Sprint(r))
		}
	}()

	c.ticks++
	if err := c.ind.UpdateValues(c.bars); err != nil {
		c.failures++
		c.logger.Warn("Failed to update indicator", "error", err)
		return
	}

	c.bars.Truncate(c.barRetention)
	if g := c.ind.Graph(); g != nil {
		g.Tick()
	}
	c.syncGraph()

	if c.sink != nil {
		c.sink.OnSeriesUpdated(c.id)
	}
}
