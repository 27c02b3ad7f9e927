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

// Package series holds the named, ordered value buffers shared between the
// samplers and whatever renders them, plus the scaling applied before render.
package series

import (
	"errors"
	"fmt"

	"github.com/phuonguno98/panelstat/pkg/metrics"
)

var (
	// ErrDuplicateSeries is returned when a name is registered twice.
	ErrDuplicateSeries = errors.New("series already registered")
	// ErrUnknownSeries is returned for operations on an unregistered name.
	ErrUnknownSeries = errors.New("series not registered")
)

// Series is one named sequence of readings, oldest first.
type Series struct {
	Name   string
	Status metrics.Status
	values []float64
}

// Store is a set of named series kept in registration order.
// It is not safe for concurrent use; a single controller owns it.
type Store struct {
	order []string
	stats map[string]*Series
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		stats: make(map[string]*Series),
	}
}

// AddDataSet registers a new series. Registering an existing name fails and
// leaves its history untouched.
func (s *Store) AddDataSet(name string, status metrics.Status) error {
	if _, exists := s.stats[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSeries, name)
	}

	s.order = append(s.order, name)
	s.stats[name] = &Series{Name: name, Status: status}
	return nil
}

// AddDataPoint appends a reading to the named series.
func (s *Store) AddDataPoint(name string, value float64) error {
	stat, ok := s.stats[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSeries, name)
	}

	stat.values = append(stat.values, value)
	return nil
}

// SetStatus reassigns the status tag of a series.
func (s *Store) SetStatus(name string, status metrics.Status) error {
	stat, ok := s.stats[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSeries, name)
	}

	stat.Status = status
	return nil
}

// Status returns the status tag of a series.
func (s *Store) Status(name string) (metrics.Status, bool) {
	stat, ok := s.stats[name]
	if !ok {
		return metrics.StatusOK, false
	}
	return stat.Status, true
}

// Truncate keeps only the most recent keep points of every series.
func (s *Store) Truncate(keep int) {
	if keep < 0 {
		keep = 0
	}

	for _, name := range s.order {
		stat := s.stats[name]
		if n := len(stat.values); n > keep {
			// Copy so the dropped prefix can be collected.
			trimmed := make([]float64, keep, keep+1)
			copy(trimmed, stat.values[n-keep:])
			stat.values = trimmed
		}
	}
}

// Names returns series names in registration order.
func (s *Store) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Len returns the number of registered series.
func (s *Store) Len() int {
	return len(s.order)
}

// Values returns a copy of the readings of a series, oldest first.
func (s *Store) Values(name string) []float64 {
	stat, ok := s.stats[name]
	if !ok {
		return nil
	}

	values := make([]float64, len(stat.values))
	copy(values, stat.values)
	return values
}

// Latest returns the most recent reading of a series.
func (s *Store) Latest(name string) (float64, bool) {
	stat, ok := s.stats[name]
	if !ok || len(stat.values) == 0 {
		return 0, false
	}
	return stat.values[len(stat.values)-1], true
}

// Max returns the largest reading currently held by a series, or 0 when empty.
func (s *Store) Max(name string) float64 {
	stat, ok := s.stats[name]
	if !ok {
		return 0
	}

	max := 0.0
	for _, v := range stat.values {
		if v > max {
			max = v
		}
	}
	return max
}
