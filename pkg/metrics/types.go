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

package metrics

// Status classifies the latest reading of a series for rendering.
type Status int

// Status values, ordered by severity.
const (
	StatusOK Status = iota
	StatusWarn
	StatusBad
)

// String returns the lowercase status name used in snapshots and CSV rows.
func (s Status) String() string {
	switch s {
	case StatusWarn:
		return "warn"
	case StatusBad:
		return "bad"
	default:
		return "ok"
	}
}

// MarshalText implements encoding.TextMarshaler so JSON carries the name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CPUTicks holds cumulative tick counters for a single core.
type CPUTicks struct {
	Total float64
	Idle  float64
}

// MemoryFields is one memory usage breakdown, in bytes.
type MemoryFields struct {
	User    uint64 // Memory used by processes
	Buffer  uint64
	Shared  uint64
	Cached  uint64
	Slab    uint64 // Valid only when HasSlab is set
	HasSlab bool
	Locked  uint64
	Free    uint64
	Total   uint64
}

// SwapFields is one swap usage reading, in bytes.
type SwapFields struct {
	Used  uint64
	Total uint64
}

// InterfaceCounters holds cumulative counters for one network interface.
type InterfaceCounters struct {
	BytesIn    uint64
	BytesOut   uint64
	ErrorsIn   uint64
	ErrorsOut  uint64
	Collisions uint64
}

// Network rate components, in accumulator order.
const (
	NetBytesIn = iota
	NetErrorsIn
	NetBytesOut
	NetErrorsOut
	NetCollisions

	NetComponents
)

// NetAccum is the per-tick sum of interface counters across active interfaces.
type NetAccum [NetComponents]float64

// Add sums a single interface's counters into the accumulator.
func (a *NetAccum) Add(c InterfaceCounters) {
	a[NetBytesIn] += float64(c.BytesIn)
	a[NetErrorsIn] += float64(c.ErrorsIn)
	a[NetBytesOut] += float64(c.BytesOut)
	a[NetErrorsOut] += float64(c.ErrorsOut)
	a[NetCollisions] += float64(c.Collisions)
}
