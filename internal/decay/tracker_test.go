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

package decay

import (
	"math"
	"testing"
	"time"
)

func TestLambdaFor(t *testing.T) {
	got := LambdaFor(250*time.Millisecond, DefaultHorizon, DefaultResidual)
	if math.Abs(got-0.9999) > 0.000001 {
		t.Errorf("LambdaFor(250ms, 2h) = %v, want ~0.9999", got)
	}

	// A slower tick needs a smaller lambda to cover the same horizon.
	slow := LambdaFor(time.Second, DefaultHorizon, DefaultResidual)
	if slow >= got {
		t.Errorf("LambdaFor(1s) = %v, want < %v", slow, got)
	}

	// lambda^N must reproduce the residual.
	n := float64(DefaultHorizon / time.Second)
	if r := math.Pow(slow, n); math.Abs(r-DefaultResidual) > 0.0001 {
		t.Errorf("lambda^N = %v, want %v", r, DefaultResidual)
	}

	if LambdaFor(0, DefaultHorizon, DefaultResidual) != 0 {
		t.Error("LambdaFor(interval=0) should return 0")
	}
	if LambdaFor(time.Second, DefaultHorizon, 1) != 0 {
		t.Error("LambdaFor(residual=1) should return 0")
	}
}

func TestTracker_PrimingSuppressesFirstUpdate(t *testing.T) {
	tr := NewTracker(0.9999, []float64{DefaultBaseline, 0, DefaultBaseline, 0, 0})

	if tr.Primed() {
		t.Fatal("new tracker Primed() = true")
	}
	if got := tr.Ratio(0, 1000); got != 0 {
		t.Errorf("Ratio() before priming = %v, want 0", got)
	}

	if primed := tr.Update([]float64{1e6, 3, 2e6, 0, 0}); primed {
		t.Error("first Update() returned primed = true, want false")
	}

	// Components with a baseline take it; others take the rate.
	if tr.Peak(0) != DefaultBaseline {
		t.Errorf("Peak(0) = %v, want baseline %v", tr.Peak(0), DefaultBaseline)
	}
	if tr.Peak(1) != 3 {
		t.Errorf("Peak(1) = %v, want 3", tr.Peak(1))
	}

	for i := 0; i < 5; i++ {
		if primed := tr.Update([]float64{100, 0, 100, 0, 0}); !primed {
			t.Fatalf("Update() #%d after priming returned false", i+2)
		}
	}
}

func TestTracker_Envelope(t *testing.T) {
	const lambda = 0.5
	tr := NewTracker(lambda, []float64{0})
	tr.Update([]float64{10})

	steps := []struct {
		rate float64
		want float64
	}{
		{4, 5},      // max(4, 0.5*10)
		{1, 2.5},    // max(1, 0.5*5)
		{20, 20},    // new peak wins immediately
		{0, 10},     // decays, never instantly resets
		{0, 5},
		{6, 6},
	}

	for i, s := range steps {
		tr.Update([]float64{s.rate})
		if math.Abs(tr.Peak(0)-s.want) > 0.00001 {
			t.Errorf("step %d: Peak = %v, want %v", i, tr.Peak(0), s.want)
		}
	}

	if got := tr.Ratio(0, 3); math.Abs(got-0.5) > 0.00001 {
		t.Errorf("Ratio(3) = %v, want 0.5", got)
	}
}

func TestTracker_Convergence(t *testing.T) {
	lambda := LambdaFor(250*time.Millisecond, DefaultHorizon, DefaultResidual)
	tr := NewTracker(lambda, []float64{0})
	tr.Update([]float64{1000})

	ticks := int(DefaultHorizon / (250 * time.Millisecond))
	for i := 0; i < ticks; i++ {
		tr.Update([]float64{0})
	}

	want := 1000 * DefaultResidual
	if math.Abs(tr.Peak(0)-want) > 1 {
		t.Errorf("Peak after horizon = %v, want ~%v", tr.Peak(0), want)
	}
	if tr.Peak(0) <= 0 {
		t.Error("Peak decayed to zero; envelope must approach but not reset")
	}
}

func TestTracker_ZeroPeakRatio(t *testing.T) {
	tr := NewTracker(0.9, []float64{0})
	tr.Update([]float64{0})
	tr.Update([]float64{0})

	if got := tr.Ratio(0, 0); got != 0 || math.IsNaN(got) {
		t.Errorf("Ratio() with zero peak = %v, want 0", got)
	}
}

func TestTracker_SanitizesRates(t *testing.T) {
	tr := NewTracker(0.9, []float64{0})
	tr.Update([]float64{math.NaN()})
	if tr.Peak(0) != 0 {
		t.Errorf("Peak after NaN priming = %v, want 0", tr.Peak(0))
	}
	tr.Update([]float64{math.Inf(1)})
	if tr.Peak(0) != 0 {
		t.Errorf("Peak after Inf = %v, want 0", tr.Peak(0))
	}
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(0.9, []float64{0})
	tr.Update([]float64{5})
	tr.Update([]float64{5})
	tr.Reset()

	if tr.Primed() || tr.Peak(0) != 0 {
		t.Errorf("after Reset: Primed=%v Peak=%v, want false, 0", tr.Primed(), tr.Peak(0))
	}
	if primed := tr.Update([]float64{1}); primed {
		t.Error("Update() after Reset should be a priming step")
	}
}
