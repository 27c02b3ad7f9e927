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

import "math"

// MaxSmoothedCPU caps the decayed CPU floor so a fully busy core still decays.
const MaxSmoothedCPU = 0.999999999

// Swap classification thresholds. Comparisons are strict.
const (
	SwapBadFraction  = 0.5
	SwapWarnFraction = 0.25
)

// CalculateCPUReading calculates the busy fraction of one core between two snapshots.
// Formula: 1 - ΔIdle / ΔTotal, with negative deltas (counter reset) treated as zero.
func CalculateCPUReading(prev, current CPUTicks) float64 {
	deltaTotal := math.Max(current.Total-prev.Total, 0)
	deltaIdle := math.Max(current.Idle-prev.Idle, 0)

	if deltaTotal <= 0 {
		return 0.0
	}

	reading := 1.0 - deltaIdle/deltaTotal
	if reading < 0 {
		return 0.0
	}
	return reading
}

// SmoothCPU applies the fast-rise, slow-fall envelope to a raw CPU reading.
// The previous smoothed value is scaled by decay and capped below 1.
func SmoothCPU(raw, prevSmoothed, decay float64) float64 {
	decayed := math.Min(prevSmoothed*decay, MaxSmoothedCPU)
	return math.Max(raw, decayed)
}

// CalculateCPUUsage returns the mean of per-core readings as a percentage.
func CalculateCPUUsage(readings []float64) float64 {
	if len(readings) == 0 {
		return 0.0
	}

	var sum float64
	for _, r := range readings {
		sum += r
	}
	return sum / float64(len(readings)) * 100.0
}

// MemoryUsedBytes returns process memory minus slab, when slab is reported.
func MemoryUsedBytes(m MemoryFields) float64 {
	used := float64(m.User)
	if m.HasSlab {
		used -= float64(m.Slab)
	}
	if used < 0 {
		return 0.0
	}
	return used
}

// MemoryUsedFraction returns MemoryUsedBytes over total memory.
func MemoryUsedFraction(m MemoryFields) float64 {
	if m.Total == 0 {
		return 0.0
	}
	return MemoryUsedBytes(m) / float64(m.Total)
}

// SwapUsedFraction returns used over total swap, or 0 with no swap configured.
func SwapUsedFraction(s SwapFields) float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Used) / float64(s.Total)
}

// ClassifySwap maps a swap fraction to a status band.
func ClassifySwap(fraction float64) Status {
	switch {
	case fraction > SwapBadFraction:
		return StatusBad
	case fraction > SwapWarnFraction:
		return StatusWarn
	default:
		return StatusOK
	}
}

// CalculateNetworkRates converts two accumulator snapshots into per-second rates.
// Byte components are converted to bits. ok is false when elapsed is not positive,
// in which case the caller keeps its previous rates.
func CalculateNetworkRates(last, current NetAccum, elapsedSeconds float64) (rates NetAccum, ok bool) {
	if elapsedSeconds <= 0 {
		return rates, false
	}

	for i := range current {
		rates[i] = (current[i] - last[i]) / elapsedSeconds
	}

	rates[NetBytesIn] *= 8
	rates[NetBytesOut] *= 8

	return rates, true
}

// ClassifyNetwork reports BAD for a direction once its error or collision peak is non-zero.
func ClassifyNetwork(errorPeak, collisionPeak float64) Status {
	if errorPeak > 0 || collisionPeak > 0 {
		return StatusBad
	}
	return StatusOK
}

// SafeRatio divides num by den, returning 0 for degenerate input.
func SafeRatio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0.0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0.0
	}
	return r
}
