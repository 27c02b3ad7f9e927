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

import (
	"math"
	"testing"

	"github.com/phuonguno98/panelstat/pkg/metrics"
)

func TestScaler_Fixed(t *testing.T) {
	sc := NewFixedScaler(100)
	s := NewStore()
	_ = s.AddDataSet("cpu-usage", metrics.StatusOK)
	_ = s.AddDataPoint("cpu-usage", 250)

	if changed := sc.Update(s); changed {
		t.Error("Update() on fixed scaler reported a change")
	}
	if sc.Max() != 100 {
		t.Errorf("Max() = %v, want 100", sc.Max())
	}
	if sc.Autoscale() {
		t.Error("Autoscale() = true, want false")
	}
}

func TestScaler_AutoscaleRatchet(t *testing.T) {
	sc := NewAutoScaler()
	s := NewStore()
	_ = s.AddDataSet("in", metrics.StatusOK)
	_ = s.AddDataSet("out", metrics.StatusOK)

	points := []struct {
		in, out float64
	}{
		{1, 2}, {5, 1}, {3, 3}, {0, 0}, {2, 8}, {1, 1}, {0.5, 0.5},
	}

	prev := sc.Max()
	for i, p := range points {
		_ = s.AddDataPoint("in", p.in)
		_ = s.AddDataPoint("out", p.out)
		// Keep a short window so old peaks fall out of the store.
		s.Truncate(2)
		sc.Update(s)

		if sc.Max() < prev {
			t.Fatalf("step %d: Max() decreased from %v to %v", i, prev, sc.Max())
		}
		prev = sc.Max()
	}

	if sc.Max() != 8 {
		t.Errorf("final Max() = %v, want 8", sc.Max())
	}
}

func TestScaler_ScaleNearZero(t *testing.T) {
	sc := NewAutoScaler()
	if sc.Renderable() {
		t.Error("Renderable() on empty scaler = true, want false")
	}
	if got := sc.Scale([]float64{0, 0}); got != nil {
		t.Errorf("Scale() with ~0 max = %v, want nil", got)
	}

	fixed := NewFixedScaler(0.000001)
	if got := fixed.Scale([]float64{1}); got != nil {
		t.Errorf("Scale() with max below epsilon = %v, want nil", got)
	}
}

func TestScaler_Scale(t *testing.T) {
	sc := NewFixedScaler(200)
	got := sc.Scale([]float64{0, 50, 200})
	want := []float64{0, 0.25, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 0.00001 {
			t.Errorf("Scale()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
