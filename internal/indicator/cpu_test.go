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

func TestCPU_UpdateValues(t *testing.T) {
	src := &fakeSource{
		cores: 2,
		cpu:   []metrics.CPUTicks{{Total: 1000, Idle: 500}, {Total: 1000, Idle: 900}},
	}
	cpu := NewCPU(src, 0.2, 100, discardLogger())
	bars := series.NewStore()

	if err := cpu.InitValues(bars); err != nil {
		t.Fatalf("InitValues() error = %v", err)
	}
	if got := bars.Names(); len(got) != 2 || got[0] != "cpu_0" || got[1] != "cpu_1" {
		t.Fatalf("bar series = %v, want [cpu_0 cpu_1]", got)
	}

	// Core 0: 100 total, 40 idle -> 0.6. Core 1: 100 total, 100 idle -> 0.
	src.cpu = []metrics.CPUTicks{{Total: 1100, Idle: 540}, {Total: 1100, Idle: 1000}}
	if err := cpu.UpdateValues(bars); err != nil {
		t.Fatalf("UpdateValues() error = %v", err)
	}

	if v, _ := bars.Latest("cpu_0"); math.Abs(v-0.6) > 0.00001 {
		t.Errorf("cpu_0 = %v, want 0.6", v)
	}
	if v, _ := bars.Latest("cpu_1"); v != 0 {
		t.Errorf("cpu_1 = %v, want 0", v)
	}
	if math.Abs(cpu.Usage()-30) > 0.00001 {
		t.Errorf("Usage() = %v, want 30", cpu.Usage())
	}
	if v, _ := cpu.Graph().Store().Latest(CPUUsageSeries); math.Abs(v-30) > 0.00001 {
		t.Errorf("graph cpu-usage = %v, want 30", v)
	}

	// Idle tick: core 0 decays to 0.6*0.2 instead of dropping to zero.
	src.cpu = []metrics.CPUTicks{{Total: 1200, Idle: 640}, {Total: 1200, Idle: 1100}}
	_ = cpu.UpdateValues(bars)
	if v, _ := bars.Latest("cpu_0"); math.Abs(v-0.12) > 0.00001 {
		t.Errorf("cpu_0 after idle tick = %v, want 0.12", v)
	}
	if cpu.Usage() != 0 {
		t.Errorf("Usage() after idle tick = %v, want 0 (mean of raw readings)", cpu.Usage())
	}

	lines := cpu.Summary()
	if len(lines) != 1 || lines[0].Label != "Total CPU usage" || lines[0].Value != "0.00 %" {
		t.Errorf("Summary() = %+v", lines)
	}
}

func TestCPU_CoreCountFallback(t *testing.T) {
	src := &fakeSource{
		coresErr: errFake,
		cpu:      []metrics.CPUTicks{{Total: 10, Idle: 5}, {Total: 10, Idle: 5}},
	}
	cpu := NewCPU(src, 0.2, 100, discardLogger())
	bars := series.NewStore()

	if err := cpu.InitValues(bars); err != nil {
		t.Fatalf("InitValues() error = %v", err)
	}
	if cpu.Cores() != 1 || bars.Len() != 1 {
		t.Errorf("cores = %d, series = %d, want 1 and 1", cpu.Cores(), bars.Len())
	}
}

func TestCPU_MissingCoresReadZero(t *testing.T) {
	src := &fakeSource{cores: 2, cpu: []metrics.CPUTicks{{Total: 10, Idle: 5}}}
	cpu := NewCPU(src, 0.2, 100, discardLogger())
	bars := series.NewStore()
	_ = cpu.InitValues(bars)

	src.cpu = []metrics.CPUTicks{{Total: 20, Idle: 5}}
	if err := cpu.UpdateValues(bars); err != nil {
		t.Fatalf("UpdateValues() error = %v", err)
	}
	if v, _ := bars.Latest("cpu_1"); v != 0 {
		t.Errorf("cpu_1 = %v, want 0 for a core absent from the snapshot", v)
	}
}

func TestCPU_GraphIsFixedPercent(t *testing.T) {
	cpu := NewCPU(&fakeSource{cores: 1}, 0.2, 100, discardLogger())
	sc := cpu.Graph().Scaler()
	if sc.Autoscale() || sc.Max() != 100 {
		t.Errorf("scaler autoscale=%v max=%v, want fixed 100", sc.Autoscale(), sc.Max())
	}
	if cpu.Graph().MaxLabel() != "" {
		t.Errorf("MaxLabel() = %q, want hidden", cpu.Graph().MaxLabel())
	}
}
