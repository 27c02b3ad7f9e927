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

// Package indicator turns raw counters into per-family series and drives
// them from a periodic trigger.
package indicator

import (
	"errors"
	"fmt"
	"time"

	"github.com/phuonguno98/panelstat/internal/series"
)

var (
	// ErrDestroyed is returned by every operation on a destroyed controller.
	ErrDestroyed = errors.New("indicator destroyed")
	// ErrNotInitialized is returned when enabling before Init.
	ErrNotInitialized = errors.New("indicator not initialized")
)

// Indicator is one metric family: CPU, memory, swap or network.
// All methods run on the scheduler's goroutine.
type Indicator interface {
	// Name is the stable identifier used in routes and records.
	Name() string
	// Label is the short panel caption.
	Label() string
	// InitValues registers bar series and primes counters.
	InitValues(bars *series.Store) error
	// UpdateValues samples once and appends to the bar series and graph.
	UpdateValues(bars *series.Store) error
	// Summary returns the popup text lines.
	Summary() []SummaryLine
	// Graph returns the detail graph, or nil while it is not available yet.
	Graph() *series.Graph
}

// closer is implemented by indicators holding subscriptions.
type closer interface {
	Close()
}

// detailer is implemented by indicators exposing extra snapshot fields.
type detailer interface {
	Details() map[string]any
}

// RenderSink is notified after each successful tick.
type RenderSink interface {
	OnSeriesUpdated(controllerID string)
}

// SummaryLine is one "description: value" row of a popup.
type SummaryLine struct {
	Section string `json:"section"`
	Label   string `json:"label"`
	Value   string `json:"value"`
}

// Popup section titles.
const (
	SectionCurrent = "Current"
)

// sectionMaximum titles the decayed-peak section for a given horizon.
func sectionMaximum(horizon time.Duration) string {
	return fmt.Sprintf("Maximum (over %s)", formatHorizon(horizon))
}

func formatHorizon(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d > time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d hours", d/time.Hour)
	case d == time.Minute:
		return "1 minute"
	case d > time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	default:
		return d.String()
	}
}
