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

package series

// MinRenderableMax is the threshold under which a scale maximum is treated as
// empty; series scaled against it are not rendered.
const MinRenderableMax = 0.00001

// Scaler computes the normalization maximum for a set of series.
//
// In fixed mode the maximum is set once at construction. In autoscale mode it
// is a ratchet: it grows to cover new peaks and never shrinks, which keeps the
// graph from rescaling every time an old peak scrolls out of the window.
type Scaler struct {
	autoscale bool
	max       float64
}

// NewFixedScaler returns a scaler pinned to max.
func NewFixedScaler(max float64) *Scaler {
	if max < 0 {
		max = 0
	}
	return &Scaler{max: max}
}

// NewAutoScaler returns a scaler whose maximum follows observed data.
func NewAutoScaler() *Scaler {
	return &Scaler{autoscale: true}
}

// Autoscale reports whether the scaler derives its maximum from data.
func (sc *Scaler) Autoscale() bool {
	return sc.autoscale
}

// Max returns the current normalization maximum.
func (sc *Scaler) Max() float64 {
	return sc.max
}

// Update recomputes the maximum from the per-series maxima of store.
// Fixed scalers ignore it. It returns true if the maximum changed.
func (sc *Scaler) Update(store *Store) bool {
	if !sc.autoscale {
		return false
	}

	candidate := 0.0
	for _, name := range store.order {
		if m := store.Max(name); m > candidate {
			candidate = m
		}
	}

	if candidate > sc.max {
		sc.max = candidate
		return true
	}
	return false
}

// Renderable reports whether the maximum is large enough to scale against.
func (sc *Scaler) Renderable() bool {
	return sc.max > MinRenderableMax
}

// Scale divides values by the maximum. It returns nil when the maximum is
// too close to zero to render.
func (sc *Scaler) Scale(values []float64) []float64 {
	if !sc.Renderable() {
		return nil
	}

	scaled := make([]float64, len(values))
	for i, v := range values {
		scaled[i] = v / sc.max
	}
	return scaled
}
