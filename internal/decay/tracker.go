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

// Package decay keeps exponentially decaying peak envelopes that stand in for
// "maximum over the last few hours" without keeping sample history.
package decay

import (
	"math"
	"time"

	"github.com/phuonguno98/panelstat/pkg/metrics"
)

// Defaults matching a two hour envelope at a 250ms tick.
const (
	DefaultHorizon  = 2 * time.Hour
	DefaultResidual = 0.056
	// DefaultBaseline is the priming peak for byte rate components (56 KiB/s).
	DefaultBaseline = 56 * 1024
)

// LambdaFor returns the per-tick decay factor such that a peak shrinks to
// residual of its value after horizon worth of ticks: lambda^N = residual.
func LambdaFor(interval, horizon time.Duration, residual float64) float64 {
	if interval <= 0 || horizon <= 0 || residual <= 0 || residual >= 1 {
		return 0
	}

	ticks := float64(horizon) / float64(interval)
	if ticks < 1 {
		ticks = 1
	}
	return math.Pow(residual, 1/ticks)
}

// Tracker holds one decayed peak per rate component.
type Tracker struct {
	lambda    float64
	baselines []float64 // Priming value per component; <= 0 means "use the rate"
	peaks     []float64
	primed    bool
}

// NewTracker creates a tracker for len(baselines) components.
func NewTracker(lambda float64, baselines []float64) *Tracker {
	b := make([]float64, len(baselines))
	copy(b, baselines)

	return &Tracker{
		lambda:    lambda,
		baselines: b,
		peaks:     make([]float64, len(baselines)),
	}
}

// Lambda returns the per-tick decay factor.
func (t *Tracker) Lambda() float64 {
	return t.lambda
}

// Primed reports whether the priming update has happened.
func (t *Tracker) Primed() bool {
	return t.primed
}

// Update folds a new set of rates into the envelope.
//
// The first call after construction or Reset is the priming step: peaks are
// seeded from the baselines (or the rates, for components without one) and
// primed is returned false so callers skip ratio output for that tick.
// Every later call applies peak = max(rate, lambda*peak) and returns true.
func (t *Tracker) Update(rates []float64) (primed bool) {
	if !t.primed {
		for i := range t.peaks {
			switch {
			case t.baselines[i] > 0:
				t.peaks[i] = t.baselines[i]
			case i < len(rates):
				t.peaks[i] = sanitize(rates[i])
			}
		}
		t.primed = true
		return false
	}

	for i := range t.peaks {
		rate := 0.0
		if i < len(rates) {
			rate = sanitize(rates[i])
		}
		t.peaks[i] = math.Max(rate, t.lambda*t.peaks[i])
	}
	return true
}

// Peak returns the decayed peak of component i.
func (t *Tracker) Peak(i int) float64 {
	if i < 0 || i >= len(t.peaks) {
		return 0
	}
	return t.peaks[i]
}

// Ratio returns rate over the decayed peak of component i, or 0 while unprimed.
func (t *Tracker) Ratio(i int, rate float64) float64 {
	if !t.primed {
		return 0
	}
	return metrics.SafeRatio(rate, t.Peak(i))
}

// Reset returns the tracker to its unprimed state.
func (t *Tracker) Reset() {
	for i := range t.peaks {
		t.peaks[i] = 0
	}
	t.primed = false
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
