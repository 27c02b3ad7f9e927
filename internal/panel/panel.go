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

// Package panel assembles the four indicators, their controllers and the
// popup coordinator, and exposes them to other goroutines.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phuonguno98/panelstat/internal/config"
	"github.com/phuonguno98/panelstat/internal/indicator"
	"github.com/phuonguno98/panelstat/internal/netmgr"
	"github.com/phuonguno98/panelstat/internal/popup"
	"github.com/phuonguno98/panelstat/internal/scheduler"
	"github.com/phuonguno98/panelstat/internal/source"
)

// ErrUnknownIndicator is returned for names that match no controller.
var ErrUnknownIndicator = errors.New("unknown indicator")

// Executor is a scheduler that other goroutines can hand work to.
// *scheduler.Loop implements it.
type Executor interface {
	scheduler.Scheduler
	Post(fn func())
	Call(ctx context.Context, fn func()) error
}

// watcher is implemented by managers that poll for device changes.
type watcher interface {
	Watch(ctx context.Context, interval time.Duration)
}

// Panel owns the controllers. Exported methods other than OnSeriesUpdated,
// Lookup and Controllers are safe to call from any goroutine.
type Panel struct {
	cfg    *config.Config
	exec   Executor
	mgr    netmgr.Manager
	logger *slog.Logger

	coord       *popup.Coordinator
	controllers []*indicator.Controller
	byName      map[string]*indicator.Controller
	byID        map[string]*indicator.Controller
	sinks       []indicator.RenderSink
}

// New builds the CPU, memory, swap and network controllers.
func New(cfg *config.Config, exec Executor, src source.CounterSource, mgr netmgr.Manager, logger *slog.Logger) *Panel {
	p := &Panel{
		cfg:    cfg,
		exec:   exec,
		mgr:    mgr,
		logger: logger,
		coord:  popup.NewCoordinator(exec, cfg.HoverDelay, logger),
		byName: make(map[string]*indicator.Controller),
		byID:   make(map[string]*indicator.Controller),
	}

	network := indicator.NewNetwork(src, mgr, indicator.NetworkOptions{
		Interval:   cfg.Intervals.Network,
		Horizon:    cfg.Network.Horizon,
		Residual:   cfg.Network.Residual,
		Baseline:   cfg.Network.Baseline,
		GraphWidth: cfg.GraphWidth,
		Filter:     cfg.Network.ShouldMonitor,
		Dispatch:   exec.Post,
	}, logger)

	p.add(indicator.NewCPU(src, cfg.CPUDecay, cfg.GraphWidth, logger), cfg.Intervals.CPU)
	p.add(indicator.NewMemory(src, cfg.GraphWidth, logger), cfg.Intervals.Memory)
	p.add(indicator.NewSwap(src, cfg.GraphWidth, logger), cfg.Intervals.Swap)
	p.add(network, cfg.Intervals.Network)

	return p
}

func (p *Panel) add(ind indicator.Indicator, interval time.Duration) {
	c := indicator.NewController(ind, p.exec, p, indicator.Options{
		Interval:     interval,
		BarRetention: p.cfg.BarRetention,
	}, p.logger)
	c.OnDestroy(func() { p.coord.Forget(c) })

	p.controllers = append(p.controllers, c)
	p.byName[ind.Name()] = c
	p.byID[c.ID()] = c
}

// AddSink registers a sink. Call it before Start.
func (p *Panel) AddSink(s indicator.RenderSink) {
	p.sinks = append(p.sinks, s)
}

// OnSeriesUpdated implements indicator.RenderSink by forwarding to every
// registered sink.
func (p *Panel) OnSeriesUpdated(id string) {
	for _, s := range p.sinks {
		s.OnSeriesUpdated(id)
	}
}

// Lookup implements sink.Resolver. Loop goroutine only.
func (p *Panel) Lookup(id string) (*indicator.Controller, bool) {
	c, ok := p.byID[id]
	return c, ok
}

// Controllers implements sink.Resolver. Loop goroutine only.
func (p *Panel) Controllers() []*indicator.Controller {
	out := make([]*indicator.Controller, len(p.controllers))
	copy(out, p.controllers)
	return out
}

// Start initializes and enables every controller, and starts the device
// watcher when the manager supports one. The watcher runs until ctx is done.
func (p *Panel) Start(ctx context.Context) error {
	startErr, err := call(ctx, p.exec, func() error {
		var errs []error
		for _, c := range p.controllers {
			if err := c.Init(); err != nil {
				errs = append(errs, err)
				continue
			}
			if err := c.Enable(); err != nil {
				errs = append(errs, fmt.Errorf("failed to enable %s: %w", c.Name(), err))
			}
		}
		return errors.Join(errs...)
	})
	if err != nil {
		return fmt.Errorf("failed to start panel: %w", err)
	}
	if startErr != nil {
		return startErr
	}

	if w, ok := p.mgr.(watcher); ok {
		go w.Watch(ctx, p.cfg.Network.WatchInterval)
	}

	p.logger.Info("Panel started", "indicators", len(p.controllers))
	return nil
}

// Stop destroys every controller.
func (p *Panel) Stop(ctx context.Context) error {
	err := p.exec.Call(ctx, func() {
		for _, c := range p.controllers {
			if err := c.Destroy(); err != nil && !errors.Is(err, indicator.ErrDestroyed) {
				p.logger.Warn("Failed to destroy indicator", "indicator", c.Name(), "error", err)
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to stop panel: %w", err)
	}

	p.logger.Info("Panel stopped")
	return nil
}

// Names returns the indicator names in panel order.
func (p *Panel) Names() []string {
	names := make([]string, len(p.controllers))
	for i, c := range p.controllers {
		names[i] = c.Name()
	}
	return names
}

// Snapshots returns the state of every controller. Graphs are included only
// for visible popups.
func (p *Panel) Snapshots(ctx context.Context) ([]indicator.Snapshot, error) {
	return call(ctx, p.exec, func() []indicator.Snapshot {
		out := make([]indicator.Snapshot, 0, len(p.controllers))
		for _, c := range p.controllers {
			out = append(out, c.Snapshot(false))
		}
		return out
	})
}

// Snapshot returns one controller's state including its graph frame.
func (p *Panel) Snapshot(ctx context.Context, name string) (indicator.Snapshot, error) {
	c, err := p.controller(name)
	if err != nil {
		return indicator.Snapshot{}, err
	}

	return call(ctx, p.exec, func() indicator.Snapshot {
		return c.Snapshot(true)
	})
}

// SnapshotByID is Snapshot for callers already on the loop, such as sinks.
func (p *Panel) SnapshotByID(id string) (indicator.Snapshot, bool) {
	c, ok := p.byID[id]
	if !ok {
		return indicator.Snapshot{}, false
	}
	return c.Snapshot(false), true
}

// Hover forwards a pointer enter (in) or leave event to the popup coordinator.
func (p *Panel) Hover(ctx context.Context, name string, in bool) error {
	c, err := p.controller(name)
	if err != nil {
		return err
	}

	result, err := call(ctx, p.exec, func() error {
		if c.State() == indicator.StateDestroyed {
			return indicator.ErrDestroyed
		}
		if in {
			p.coord.HoverIn(c)
		} else {
			p.coord.HoverOut(c)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return result
}

// SetEnabled enables or disables a controller's periodic trigger.
func (p *Panel) SetEnabled(ctx context.Context, name string, enabled bool) error {
	c, err := p.controller(name)
	if err != nil {
		return err
	}

	result, err := call(ctx, p.exec, func() error {
		if enabled {
			return c.Enable()
		}
		return c.Disable()
	})
	if err != nil {
		return err
	}
	return result
}

// call runs fn on the loop and hands its result back over a channel. After
// a ctx error fn may still run, but nothing it returns reaches the caller.
func call[T any](ctx context.Context, exec Executor, fn func() T) (T, error) {
	result := make(chan T, 1)
	if err := exec.Call(ctx, func() { result <- fn() }); err != nil {
		var zero T
		return zero, err
	}
	return <-result, nil
}

// controller resolves a name. byName is fixed after New, so no loop hop.
func (p *Panel) controller(name string) (*indicator.Controller, error) {
	c, ok := p.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}
	return c, nil
}
