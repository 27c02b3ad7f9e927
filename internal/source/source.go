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

// Package source reads raw cumulative OS counters for the indicators.
package source

import (
	"fmt"
	"runtime"

	"github.com/phuonguno98/panelstat/pkg/metrics"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

// CounterSource is a pollable set of raw OS counters.
type CounterSource interface {
	SampleCPU() ([]metrics.CPUTicks, error)
	SampleMemory() (metrics.MemoryFields, error)
	SampleSwap() (metrics.SwapFields, error)
	// SampleInterfaces reads the named interfaces in one pass. Names that
	// no longer exist are left out of the result.
	SampleInterfaces(names []string) (map[string]metrics.InterfaceCounters, error)
	CoreCount() (int, error)
}

// Dependency injection points for testing
var (
	cpuTimes     = cpu.Times
	cpuCounts    = cpu.Counts
	virtualMem   = mem.VirtualMemory
	swapMem      = mem.SwapMemory
	netCounters  = net.IOCounters
	platformGOOS = runtime.GOOS
)

// System reads counters from the running host through gopsutil.
type System struct{}

// NewSystem creates a host counter source.
func NewSystem() *System {
	return &System{}
}

// SampleCPU returns per-core cumulative busy and idle time.
func (s *System) SampleCPU() ([]metrics.CPUTicks, error) {
	times, err := cpuTimes(true)
	if err != nil {
		return nil, fmt.Errorf("failed to get CPU times: %w", err)
	}

	if len(times) == 0 {
		return nil, fmt.Errorf("no CPU time stats available")
	}

	ticks := make([]metrics.CPUTicks, len(times))
	for i := range times {
		t := &times[i]
		ticks[i] = metrics.CPUTicks{
			Total: t.User + t.Nice + t.System + t.Idle + t.Iowait + t.Irq + t.Softirq + t.Steal,
			Idle:  t.Idle,
		}
	}

	return ticks, nil
}

// CoreCount returns the number of logical cores.
func (s *System) CoreCount() (int, error) {
	n, err := cpuCounts(true)
	if err != nil {
		return 0, fmt.Errorf("failed to get CPU count: %w", err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid CPU count: %d", n)
	}
	return n, nil
}

// SampleMemory returns the current memory breakdown.
func (s *System) SampleMemory() (metrics.MemoryFields, error) {
	vm, err := virtualMem()
	if err != nil {
		return metrics.MemoryFields{}, fmt.Errorf("failed to get memory stats: %w", err)
	}

	return metrics.MemoryFields{
		User:   vm.Used,
		Buffer: vm.Buffers,
		Shared: vm.Shared,
		Cached: vm.Cached,
		Slab:   vm.Slab,
		// Slab accounting only exists in Linux meminfo.
		HasSlab: platformGOOS == "linux",
		Locked:  vm.Wired,
		Free:    vm.Free,
		Total:   vm.Total,
	}, nil
}

// SampleSwap returns the current swap usage.
func (s *System) SampleSwap() (metrics.SwapFields, error) {
	sw, err := swapMem()
	if err != nil {
		return metrics.SwapFields{}, fmt.Errorf("failed to get swap stats: %w", err)
	}

	return metrics.SwapFields{
		Used:  sw.Used,
		Total: sw.Total,
	}, nil
}

// SampleInterfaces returns the cumulative counters of the named interfaces.
// gopsutil does not expose collisions, so they are reported as zero.
func (s *System) SampleInterfaces(names []string) (map[string]metrics.InterfaceCounters, error) {
	out := make(map[string]metrics.InterfaceCounters, len(names))
	if len(names) == 0 {
		return out, nil
	}

	counters, err := netCounters(true)
	if err != nil {
		return nil, fmt.Errorf("failed to get network I/O counters: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	for i := range counters {
		c := &counters[i]
		if !wanted[c.Name] {
			continue
		}
		out[c.Name] = metrics.InterfaceCounters{
			BytesIn:   c.BytesRecv,
			BytesOut:  c.BytesSent,
			ErrorsIn:  c.Errin,
			ErrorsOut: c.Errout,
		}
	}

	return out, nil
}
