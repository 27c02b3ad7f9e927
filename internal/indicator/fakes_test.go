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
	"io"
	"log/slog"

	"github.com/phuonguno98/panelstat/internal/netmgr"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

var errFake = errors.New("counter unavailable")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource returns whatever its fields hold; a non-nil err fails every call.
type fakeSource struct {
	cores    int
	coresErr error
	cpu      []metrics.CPUTicks
	mem      metrics.MemoryFields
	swap     metrics.SwapFields
	ifaces   map[string]metrics.InterfaceCounters
	err      error
	panicOn  bool
}

func (f *fakeSource) SampleCPU() ([]metrics.CPUTicks, error) {
	if f.panicOn {
		panic("driver exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make([]metrics.CPUTicks, len(f.cpu))
	copy(out, f.cpu)
	return out, nil
}

func (f *fakeSource) SampleMemory() (metrics.MemoryFields, error) {
	if f.err != nil {
		return metrics.MemoryFields{}, f.err
	}
	return f.mem, nil
}

func (f *fakeSource) SampleSwap() (metrics.SwapFields, error) {
	if f.err != nil {
		return metrics.SwapFields{}, f.err
	}
	return f.swap, nil
}

// SampleInterfaces leaves out names missing from ifaces.
func (f *fakeSource) SampleInterfaces(names []string) (map[string]metrics.InterfaceCounters, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]metrics.InterfaceCounters, len(names))
	for _, name := range names {
		if c, ok := f.ifaces[name]; ok {
			out[name] = c
		}
	}
	return out, nil
}

func (f *fakeSource) CoreCount() (int, error) {
	if f.coresErr != nil {
		return 0, f.coresErr
	}
	return f.cores, nil
}

// fakeManager is a netmgr.Manager with a mutable device list.
type fakeManager struct {
	devices []netmgr.Device
	err     error
	subs    map[int]func()
	nextID  int
}

func newFakeManager(devices ...netmgr.Device) *fakeManager {
	return &fakeManager{devices: devices, subs: make(map[int]func())}
}

func (m *fakeManager) ListDevices() ([]netmgr.Device, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.devices, nil
}

func (m *fakeManager) Subscribe(fn func()) func() {
	m.nextID++
	id := m.nextID
	m.subs[id] = fn
	return func() { delete(m.subs, id) }
}

func (m *fakeManager) notify() {
	for _, fn := range m.subs {
		fn()
	}
}

// recordingSink remembers every notification.
type recordingSink struct {
	updates []string
}

func (r *recordingSink) OnSeriesUpdated(id string) {
	r.updates = append(r.updates, id)
}
