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
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phuonguno98/panelstat/internal/netmgr"
	"github.com/phuonguno98/panelstat/internal/scheduler"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

func newSwapController(t *testing.T, src *fakeSource) (*Controller, *scheduler.Manual, *recordingSink) {
	t.Helper()
	sched := scheduler.NewManual()
	sink := &recordingSink{}
	c := NewController(NewSwap(src, 10, discardLogger()), sched, sink,
		Options{Interval: 2 * time.Second}, discardLogger())
	return c, sched, sink
}

func TestController_Lifecycle(t *testing.T) {
	src := &fakeSource{swap: metrics.SwapFields{Used: 100, Total: 1000}}
	c, sched, sink := newSwapController(t, src)

	if _, err := uuid.Parse(c.ID()); err != nil {
		t.Errorf("ID() = %q is not a UUID: %v", c.ID(), err)
	}
	if c.State() != StateUninitialized {
		t.Fatalf("initial state = %v", c.State())
	}

	if err := c.Enable(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Enable() before Init error = %v, want ErrNotInitialized", err)
	}

	if err := c.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if c.State() != StateDisabled {
		t.Errorf("state after Init = %v, want disabled", c.State())
	}

	// Disabled: ticks do nothing.
	sched.Advance(10 * time.Second)
	if len(sink.updates) != 0 {
		t.Errorf("sink notified %d times while disabled", len(sink.updates))
	}

	if err := c.Enable(); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	sched.Advance(6 * time.Second)
	if len(sink.updates) != 3 {
		t.Errorf("sink notified %d times, want 3", len(sink.updates))
	}
	for _, id := range sink.updates {
		if id != c.ID() {
			t.Errorf("sink notified with id %q, want %q", id, c.ID())
		}
	}

	if err := c.Disable(); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}
	before := c.Bars().Values(SwapUsedSeries)
	sched.Advance(10 * time.Second)
	after := c.Bars().Values(SwapUsedSeries)
	if len(before) != len(after) {
		t.Errorf("series changed while disabled: %v -> %v", before, after)
	}

	if err := c.Enable(); err != nil {
		t.Fatalf("re-Enable() error = %v", err)
	}
	if err := c.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if sched.Pending() != 0 {
		t.Errorf("Pending() after Destroy = %d, want 0", sched.Pending())
	}

	n := len(sink.updates)
	sched.Advance(10 * time.Second)
	if len(sink.updates) != n {
		t.Error("destroyed controller still ticking")
	}

	for name, op := range map[string]func() error{
		"Init":      c.Init,
		"Enable":    c.Enable,
		"Disable":   c.Disable,
		"Destroy":   c.Destroy,
		"ShowPopup": c.ShowPopup,
		"HidePopup": c.HidePopup,
	} {
		if err := op(); !errors.Is(err, ErrDestroyed) {
			t.Errorf("%s() after Destroy error = %v, want ErrDestroyed", name, err)
		}
	}
}

func TestController_BarsTruncatedToRetention(t *testing.T) {
	src := &fakeSource{swap: metrics.SwapFields{Used: 100, Total: 1000}}
	c, sched, _ := newSwapController(t, src)
	_ = c.Init()
	_ = c.Enable()

	for i := 1; i <= 5; i++ {
		src.swap.Used = uint64(i * 100)
		sched.Advance(2 * time.Second)
	}

	got := c.Bars().Values(SwapUsedSeries)
	want := []float64{0.3, 0.4, 0.5}
	if len(got) != len(want) {
		t.Fatalf("bar values = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bar[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	g := c.Indicator().Graph()
	if n := len(g.Store().Values(SwapUsedSeries)); n != 5 {
		t.Errorf("graph points = %d, want 5 (width 10 keeps 11)", n)
	}
}

func TestController_SourceFailureKeepsStaleData(t *testing.T) {
	src := &fakeSource{swap: metrics.SwapFields{Used: 100, Total: 1000}}
	c, sched, sink := newSwapController(t, src)
	_ = c.Init()
	_ = c.Enable()

	sched.Advance(2 * time.Second)
	src.err = errFake
	sched.Advance(4 * time.Second)

	if got := len(c.Bars().Values(SwapUsedSeries)); got != 1 {
		t.Errorf("bar points = %d, want 1", got)
	}
	if len(sink.updates) != 1 {
		t.Errorf("sink notified %d times, want 1", len(sink.updates))
	}
	if c.State() != StateReady {
		t.Errorf("state = %v, want ready", c.State())
	}
}

func TestController_PanicIsRecovered(t *testing.T) {
	sched := scheduler.NewManual()
	src := &fakeSource{cores: 1, cpu: []metrics.CPUTicks{{Total: 100, Idle: 50}}}
	c := NewController(NewCPU(src, 0.2, 10, discardLogger()), sched, nil,
		Options{Interval: 250 * time.Millisecond}, discardLogger())
	_ = c.Init()
	_ = c.Enable()

	src.panicOn = true
	sched.Advance(time.Second)

	src.panicOn = false
	src.cpu = []metrics.CPUTicks{{Total: 200, Idle: 100}}
	sched.Advance(250 * time.Millisecond)

	if got := len(c.Bars().Values(CPUCoreSeries(0))); got != 1 {
		t.Errorf("bar points after recovery = %d, want 1", got)
	}
}

func TestController_PopupTogglesGraph(t *testing.T) {
	src := &fakeSource{swap: metrics.SwapFields{Used: 250, Total: 1000}}
	c, sched, _ := newSwapController(t, src)
	_ = c.Init()
	_ = c.Enable()
	sched.Advance(2 * time.Second)

	if snap := c.Snapshot(false); snap.Graph != nil {
		t.Error("graph frame computed while popup hidden")
	}
	if snap := c.Snapshot(true); snap.Graph == nil {
		t.Error("graph frame missing when explicitly requested")
	}

	_ = c.ShowPopup()
	snap := c.Snapshot(false)
	if !snap.PopupVisible || snap.Graph == nil {
		t.Fatalf("snapshot with popup = %+v", snap)
	}
	if snap.Graph.Max != 1000 || snap.Graph.Units != "B" {
		t.Errorf("graph max/units = %v/%q, want 1000/B", snap.Graph.Max, snap.Graph.Units)
	}

	_ = c.HidePopup()
	if c.Indicator().Graph().Enabled() {
		t.Error("graph still enabled after HidePopup")
	}
}

func TestController_Snapshot(t *testing.T) {
	src := &fakeSource{swap: metrics.SwapFields{Used: 600, Total: 1000}}
	c, sched, _ := newSwapController(t, src)
	_ = c.Init()
	_ = c.Enable()
	sched.Advance(2 * time.Second)

	snap := c.Snapshot(false)
	if snap.Name != "swap" || snap.Label != "Swap" || snap.State != StateReady {
		t.Errorf("snapshot header = %q/%q/%v", snap.Name, snap.Label, snap.State)
	}
	if len(snap.Bars) != 1 || snap.Bars[0].Status != metrics.StatusBad {
		t.Fatalf("bars = %+v, want one BAD series", snap.Bars)
	}
	if len(snap.Summary) != 1 || snap.Summary[0].Value != "600.00 B" {
		t.Errorf("summary = %+v", snap.Summary)
	}

	// Snapshots are copies.
	snap.Bars[0].Values[0] = 42
	if c.Bars().Values(SwapUsedSeries)[0] == 42 {
		t.Error("snapshot aliases controller state")
	}
}

func TestController_OnDestroyHooksAndClose(t *testing.T) {
	sched := scheduler.NewManual()
	mgr := newFakeManager()
	n := NewNetwork(&fakeSource{}, mgr, NetworkOptions{Interval: 250 * time.Millisecond, GraphWidth: 10}, discardLogger())
	c := NewController(n, sched, nil, Options{Interval: 250 * time.Millisecond}, discardLogger())
	_ = c.Init()

	if len(mgr.subs) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(mgr.subs))
	}

	hooked := false
	c.OnDestroy(func() { hooked = true })
	_ = c.Destroy()

	if !hooked {
		t.Error("destroy hook not run")
	}
	if len(mgr.subs) != 0 {
		t.Error("network subscription not released on Destroy")
	}
}

func TestController_AutoscaleKeepsPeakWhileHidden(t *testing.T) {
	mgr := newFakeManager(netmgr.Device{Name: "eth0", State: netmgr.StateActivated})
	src := &fakeSource{ifaces: map[string]metrics.InterfaceCounters{"eth0": {}}}
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	n := NewNetwork(src, mgr, NetworkOptions{Interval: time.Second, GraphWidth: 3}, discardLogger())
	n.now = clock.now

	sched := scheduler.NewManual()
	c := NewController(n, sched, nil, Options{Interval: time.Second}, discardLogger())
	_ = c.Init()
	_ = c.Enable()

	var bytesIn uint64
	for i := 1; i <= 15; i++ {
		if i == 3 {
			bytesIn += 1e6
		}
		src.ifaces["eth0"] = metrics.InterfaceCounters{BytesIn: bytesIn}
		clock.advance(time.Second)
		sched.Advance(time.Second)
	}

	_ = c.ShowPopup()
	snap := c.Snapshot(false)
	if snap.Graph == nil {
		t.Fatal("graph frame missing with popup visible")
	}
	if snap.Graph.Max < 8e6 {
		t.Errorf("autoscale max = %v, want at least 8e6", snap.Graph.Max)
	}
	if got := len(snap.Graph.Series[0].Values); got != 4 {
		t.Errorf("graph kept %d points, want 4", got)
	}
}
