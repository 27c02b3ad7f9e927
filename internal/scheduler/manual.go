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

package scheduler

import (
	"sort"
	"time"
)

// Manual is a virtual-time Scheduler for deterministic tests. Callbacks run
// synchronously inside Advance, in due-time order.
type Manual struct {
	now     time.Duration
	next    Handle
	entries map[Handle]*manualEntry
}

type manualEntry struct {
	due      time.Duration
	interval time.Duration
	seq      Handle
	fn       func()
}

// NewManual creates a manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{entries: make(map[Handle]*manualEntry)}
}

// Now returns the elapsed virtual time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Schedule registers a periodic callback.
func (m *Manual) Schedule(interval time.Duration, fn func()) Handle {
	return m.add(interval, interval, fn)
}

// After registers a one-shot callback.
func (m *Manual) After(delay time.Duration, fn func()) Handle {
	return m.add(delay, 0, fn)
}

func (m *Manual) add(delay, interval time.Duration, fn func()) Handle {
	m.next++
	m.entries[m.next] = &manualEntry{
		due:      m.now + delay,
		interval: interval,
		seq:      m.next,
		fn:       fn,
	}
	return m.next
}

// Cancel removes a callback.
func (m *Manual) Cancel(h Handle) {
	delete(m.entries, h)
}

// Pending returns the number of live handles.
func (m *Manual) Pending() int {
	return len(m.entries)
}

// Advance moves virtual time forward by d, running every callback that
// becomes due along the way.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d

	for {
		h, e := m.earliest(target)
		if e == nil {
			break
		}

		m.now = e.due
		if e.interval > 0 {
			e.due += e.interval
		} else {
			delete(m.entries, h)
		}
		e.fn()
	}

	m.now = target
}

func (m *Manual) earliest(limit time.Duration) (Handle, *manualEntry) {
	due := make([]*manualEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.due <= limit {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return 0, nil
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})
	return due[0].seq, due[0]
}
