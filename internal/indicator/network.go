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
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/phuonguno98/panelstat/internal/decay"
	"github.com/phuonguno98/panelstat/internal/netmgr"
	"github.com/phuonguno98/panelstat/internal/series"
	"github.com/phuonguno98/panelstat/internal/source"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

// Network series names.
const (
	NetInSeries  = "network-in-used"
	NetOutSeries = "network-out-used"
)

// NetworkOptions configures the network indicator.
type NetworkOptions struct {
	Interval   time.Duration // Tick interval, used to derive the decay factor
	Horizon    time.Duration
	Residual   float64
	Baseline   float64 // Priming peak for the traffic components
	GraphWidth int

	// Filter reports whether an interface is monitored. Nil monitors all.
	Filter func(name string) bool
	// Dispatch runs fn on the scheduler goroutine. Nil runs it inline.
	Dispatch func(fn func())
}

// Network shows inbound and outbound traffic relative to a decayed peak.
type Network struct {
	src    source.CounterSource
	mgr    netmgr.Manager
	opts   NetworkOptions
	logger *slog.Logger
	now    func() time.Time

	tracker *decay.Tracker
	graph   *series.Graph

	ifaces      []string
	speed       int64 // Summed link speed of known interfaces, Mbit/s
	last        metrics.NetAccum
	lastTime    time.Time
	lastSet     string // Interfaces present in last, comma-joined
	rebase      bool   // last is not a valid baseline
	stale       bool   // Device list changed since the last refresh
	closed      bool
	rates       metrics.NetAccum
	unsubscribe func()
}

// NewNetwork creates a network indicator. mgr may be nil, in which case no
// interfaces are monitored.
func NewNetwork(src source.CounterSource, mgr netmgr.Manager, opts NetworkOptions, logger *slog.Logger) *Network {
	if opts.Horizon <= 0 {
		opts.Horizon = decay.DefaultHorizon
	}
	if opts.Residual <= 0 || opts.Residual >= 1 {
		opts.Residual = decay.DefaultResidual
	}
	if opts.Baseline <= 0 {
		opts.Baseline = decay.DefaultBaseline
	}

	baselines := make([]float64, metrics.NetComponents)
	baselines[metrics.NetBytesIn] = opts.Baseline
	baselines[metrics.NetBytesOut] = opts.Baseline

	return &Network{
		src:     src,
		mgr:     mgr,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		tracker: decay.NewTracker(decay.LambdaFor(opts.Interval, opts.Horizon, opts.Residual), baselines),
		graph: series.NewGraph(series.GraphOptions{
			Width:   opts.GraphWidth,
			Units:   "b/s",
			ShowMax: true,
		}),
	}
}

// Name implements Indicator.
func (n *Network) Name() string { return "network" }

// Label implements Indicator.
func (n *Network) Label() string { return "Network" }

// Graph implements Indicator.
func (n *Network) Graph() *series.Graph { return n.graph }

// Interfaces returns the monitored interface names.
func (n *Network) Interfaces() []string {
	out := make([]string, len(n.ifaces))
	copy(out, n.ifaces)
	return out
}

// Rates returns the last computed per-second rates.
func (n *Network) Rates() metrics.NetAccum { return n.rates }

// Tracker exposes the decayed peaks.
func (n *Network) Tracker() *decay.Tracker { return n.tracker }

// InitValues registers series, subscribes to device changes and takes the
// first counter snapshot.
func (n *Network) InitValues(bars *series.Store) error {
	for _, name := range []string{NetInSeries, NetOutSeries} {
		if err := bars.AddDataSet(name, metrics.StatusOK); err != nil {
			return err
		}
		if err := n.graph.AddDataSet(name, metrics.StatusOK); err != nil {
			return err
		}
	}

	if n.mgr != nil {
		n.unsubscribe = n.mgr.Subscribe(func() {
			n.dispatch(n.markStale)
		})
	}

	n.RefreshInterfaces()
	return nil
}

// markStale defers the interface refresh to the next tick, so a disabled or
// closed indicator keeps its details.
func (n *Network) markStale() {
	if !n.closed {
		n.stale = true
	}
}

func (n *Network) dispatch(fn func()) {
	if n.opts.Dispatch != nil {
		n.opts.Dispatch(fn)
		return
	}
	fn()
}

// RefreshInterfaces reloads the activated interface list and rebases the
// counters so the set change does not show up as traffic. When the counters
// cannot be read the baseline is marked invalid and the next tick rebases.
func (n *Network) RefreshInterfaces() {
	if n.closed {
		return
	}
	n.ifaces = nil
	n.speed = 0

	if n.mgr != nil {
		devices, err := n.mgr.ListDevices()
		if err != nil {
			n.logger.Warn("Failed to list network devices", "error", err)
		}

		for _, d := range devices {
			if d.State != netmgr.StateActivated {
				continue
			}
			iface := d.Iface()
			if n.opts.Filter != nil && !n.opts.Filter(iface) {
				continue
			}
			n.ifaces = append(n.ifaces, iface)
			if d.Speed > 0 {
				n.speed += d.Speed
			}
		}
	}

	n.logger.Debug("Network interfaces refreshed", "interfaces", n.ifaces, "speed_mbps", n.speed)

	accum, present, err := n.sample()
	if err != nil {
		n.logger.Warn("Failed to sample network counters", "error", err)
		n.rebase = true
		return
	}
	n.setBaseline(accum, present, n.now())
}

// setBaseline makes accum the reference for the next rate computation.
func (n *Network) setBaseline(accum metrics.NetAccum, present string, now time.Time) {
	n.last = accum
	n.lastSet = present
	n.lastTime = now
	n.rebase = false
}

// sample sums counters over the monitored interfaces that still exist and
// reports which ones were read.
func (n *Network) sample() (metrics.NetAccum, string, error) {
	var accum metrics.NetAccum
	if len(n.ifaces) == 0 {
		return accum, "", nil
	}

	counters, err := n.src.SampleInterfaces(n.ifaces)
	if err != nil {
		return metrics.NetAccum{}, "", err
	}

	present := make([]string, 0, len(n.ifaces))
	for _, iface := range n.ifaces {
		c, ok := counters[iface]
		if !ok {
			continue
		}
		accum.Add(c)
		present = append(present, iface)
	}
	return accum, strings.Join(present, ","), nil
}

// UpdateValues converts counter deltas into rates, feeds the decay envelope
// and, once primed, pushes ratios to the bars and bit rates to the graph.
// A tick that follows a device change or a failed baseline only rebases.
func (n *Network) UpdateValues(bars *series.Store) error {
	if n.stale {
		n.stale = false
		n.RefreshInterfaces()
		return nil
	}

	accum, present, err := n.sample()
	if err != nil {
		return err
	}

	now := n.now()
	if n.rebase || present != n.lastSet {
		if present != n.lastSet {
			n.logger.Debug("Monitored interface set changed", "previous", n.lastSet, "current", present)
		}
		n.setBaseline(accum, present, now)
		return nil
	}

	rates, ok := metrics.CalculateNetworkRates(n.last, accum, now.Sub(n.lastTime).Seconds())
	if !ok {
		return nil
	}
	for i := range rates {
		rates[i] = math.Max(rates[i], 0)
	}
	n.rates = rates
	n.setBaseline(accum, present, now)

	if n.tracker.Update(rates[:]) {
		in, out := rates[metrics.NetBytesIn], rates[metrics.NetBytesOut]

		if err := bars.AddDataPoint(NetInSeries, n.tracker.Ratio(metrics.NetBytesIn, in)); err != nil {
			return err
		}
		if err := bars.AddDataPoint(NetOutSeries, n.tracker.Ratio(metrics.NetBytesOut, out)); err != nil {
			return err
		}
		if err := n.graph.AddDataPoint(NetInSeries, in); err != nil {
			return err
		}
		if err := n.graph.AddDataPoint(NetOutSeries, out); err != nil {
			return err
		}
	}

	collisions := n.tracker.Peak(metrics.NetCollisions)
	inStatus := metrics.ClassifyNetwork(n.tracker.Peak(metrics.NetErrorsIn), collisions)
	outStatus := metrics.ClassifyNetwork(n.tracker.Peak(metrics.NetErrorsOut), collisions)

	if err := bars.SetStatus(NetInSeries, inStatus); err != nil {
		return err
	}
	if err := bars.SetStatus(NetOutSeries, outStatus); err != nil {
		return err
	}
	_ = n.graph.Store().SetStatus(NetInSeries, inStatus)
	_ = n.graph.Store().SetStatus(NetOutSeries, outStatus)

	return nil
}

// Summary implements Indicator. It is empty until the envelope is primed.
func (n *Network) Summary() []SummaryLine {
	if !n.tracker.Primed() {
		return nil
	}

	maximum := sectionMaximum(n.opts.Horizon)
	return []SummaryLine{
		{Section: SectionCurrent, Label: "Inbound", Value: metrics.FormatMetricPretty(n.rates[metrics.NetBytesIn], "b/s")},
		{Section: SectionCurrent, Label: "Outbound", Value: metrics.FormatMetricPretty(n.rates[metrics.NetBytesOut], "b/s")},
		{Section: maximum, Label: "Inbound", Value: metrics.FormatMetricPretty(n.tracker.Peak(metrics.NetBytesIn), "b/s")},
		{Section: maximum, Label: "Outbound", Value: metrics.FormatMetricPretty(n.tracker.Peak(metrics.NetBytesOut), "b/s")},
	}
}

// Details exposes the monitored interfaces and their summed link speed.
func (n *Network) Details() map[string]any {
	return map[string]any{
		"interfaces":      n.Interfaces(),
		"link_speed_mbps": n.speed,
	}
}

// Close drops the device subscription. Refreshes already queued become no-ops.
func (n *Network) Close() {
	n.closed = true
	n.stale = false
	if n.unsubscribe != nil {
		n.unsubscribe()
		n.unsubscribe = nil
	}
}
