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
	"math"
	"testing"

	"github.com/phuonguno98/panelstat/internal/series"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

func TestMemory_UpdateValues(t *testing.T) {
	src := &fakeSource{mem: metrics.MemoryFields{
		User: 6144, Slab: 1024, HasSlab: true, Buffer: 2048, Cached: 1048576,
		Free: 512, Total: 10240,
	}}
	m := NewMemory(src, 100, discardLogger())
	bars := series.NewStore()

	if err := m.InitValues(bars); err != nil {
		t.Fatalf("InitValues() error = %v", err)
	}
	if m.Graph() == nil || m.Graph().Scaler().Max() != 10240 {
		t.Fatal("graph should be fixed at total memory after InitValues")
	}

	if err := m.UpdateValues(bars); err != nil {
		t.Fatalf("UpdateValues() error = %v", err)
	}

	if v, _ := bars.Latest(MemUsedSeries); math.Abs(v-0.5) > 0.00001 {
		t.Errorf("mem-used bar = %v, want 0.5", v)
	}
	if v, _ := m.Graph().Store().Latest(MemUsedSeries); v != 5120 {
		t.Errorf("mem-used graph = %v, want 5120", v)
	}

	lines := m.Summary()
	want := map[string]string{
		"Total memory usage": "5.00 KiB",
		"Total buffer usage": "2.00 KiB",
		"Total cache usage":  "1.00 MiB",
		"Total slab usage":   "1.00 KiB",
		"Total free usage":   "512.00 B",
		"Total RAM present":  "10.00 KiB",
	}
	got := make(map[string]string, len(lines))
	for _, l := range lines {
		got[l.Label] = l.Value
	}
	for label, value := range want {
		if got[label] != value {
			t.Errorf("summary %q = %q, want %q", label, got[label], value)
		}
	}
	if len(lines) != 8 {
		t.Errorf("summary lines = %d, want 8", len(lines))
	}
}

func TestMemory_NoSlab(t *testing.T) {
	src := &fakeSource{mem: metrics.MemoryFields{User: 4096, Slab: 1024, Total: 8192}}
	m := NewMemory(src, 100, discardLogger())
	bars := series.NewStore()
	_ = m.InitValues(bars)
	_ = m.UpdateValues(bars)

	if v, _ := bars.Latest(MemUsedSeries); math.Abs(v-0.5) > 0.00001 {
		t.Errorf("mem-used bar = %v, want 0.5 without slab subtraction", v)
	}
	for _, l := range m.Summary() {
		if l.Label == "Total slab usage" {
			t.Error("slab line present without slab support")
		}
	}
	if len(m.Summary()) != 7 {
		t.Errorf("summary lines = %d, want 7", len(m.Summary()))
	}
}

func TestMemory_DeferredGraph(t *testing.T) {
	src := &fakeSource{err: errFake}
	m := NewMemory(src, 100, discardLogger())
	bars := series.NewStore()

	if err := m.InitValues(bars); err != nil {
		t.Fatalf("InitValues() error = %v", err)
	}
	if m.Graph() != nil {
		t.Fatal("graph created without a known total")
	}
	if m.Summary() != nil {
		t.Error("summary should be empty before the first sample")
	}

	if err := m.UpdateValues(bars); err == nil {
		t.Error("UpdateValues() should propagate source errors")
	}

	src.err = nil
	src.mem = metrics.MemoryFields{User: 1, Total: 4}
	if err := m.UpdateValues(bars); err != nil {
		t.Fatalf("UpdateValues() error = %v", err)
	}
	if m.Graph() == nil || m.Graph().Scaler().Max() != 4 {
		t.Error("graph not created on first successful sample")
	}
}

func TestMemory_ZeroTotal(t *testing.T) {
	src := &fakeSource{mem: metrics.MemoryFields{User: 100}}
	m := NewMemory(src, 100, discardLogger())
	bars := series.NewStore()
	_ = m.InitValues(bars)
	_ = m.UpdateValues(bars)

	if v, _ := bars.Latest(MemUsedSeries); v != 0 {
		t.Errorf("mem-used bar = %v, want 0 for zero total", v)
	}
	if m.Graph().Frame().Series[0].Scaled != nil {
		t.Error("zero-max graph should have nothing to render")
	}
}
