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

package indicator

import (
	"fmt"
	"log/slog"

	"github.com/phuonguno98/panelstat/internal/series"
	"github.com/phuonguno98/panelstat/internal/source"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

// CPU series names.
const (
	CPUUsageSeries = "cpu-usage"
	cpuCorePrefix  = "cpu_"
)

// CPUCoreSeries returns the bar series name of core i.
func CPUCoreSeries(i int) string {
	return fmt.Sprintf("%s%d", cpuCorePrefix, i)
}

// CPU shows one smoothed bar per core and an aggregate usage graph.
type CPU struct {
	src    source.CounterSource
	decay  float64
	logger *slog.Logger

	graph    *series.Graph
	ncpu     int
	prev     []metrics.CPUTicks
	smoothed []float64
	usage    float64
}

// NewCPU creates a CPU indicator. decay scales the previous smoothed value
// each tick; graphWidth sizes the detail graph.
func NewCPU(src source.CounterSource, decay float64, graphWidth int, logger *slog.Logger) *CPU {
	return &CPU{
		src:    src,
		decay:  decay,
		logger: logger,
		graph: series.NewGraph(series.GraphOptions{
			Width: graphWidth,
			Units: "%",
			Fixed: true,
			Max:   100,
		}),
	}
}

// Name implements Indicator.
func (c *CPU) Name() string { return "cpu" }

// Label implements Indicator.
func (c *CPU) Label() string { return "CPU" }

// Graph implements Indicator.
func (c *CPU) Graph() *series.Graph { return c.graph }

// Cores returns the number of cores being tracked.
func (c *CPU) Cores() int { return c.ncpu }

// InitValues registers one series per core and takes the first snapshot.
func (c *CPU) InitValues(bars *series.Store) error {
	n, err := c.src.CoreCount()
	if err != nil {
		c.logger.Warn("Failed to get core count, assuming 1", "error", err)
		n = 1
	}
	c.ncpu = n
	c.smoothed = make([]float64, n)

	prev, err := c.src.SampleCPU()
	if err != nil {
		c.logger.Warn("Failed to take initial CPU snapshot", "error", err)
		prev = nil
	}
	c.prev = prev

	for i := 0; i < n; i++ {
		if err := bars.AddDataSet(CPUCoreSeries(i), metrics.StatusOK); err != nil {
			return err
		}
	}

	return c.graph.AddDataSet(CPUUsageSeries, metrics.StatusOK)
}

// UpdateValues pushes one smoothed reading per core and the mean usage.
func (c *CPU) UpdateValues(bars *series.Store) error {
	current, err := c.src.SampleCPU()
	if err != nil {
		return err
	}

	readings := make([]float64, c.ncpu)
	for i := 0; i < c.ncpu; i++ {
		reading := metrics.CalculateCPUReading(ticksAt(c.prev, i), ticksAt(current, i))
		readings[i] = reading

		value := metrics.SmoothCPU(reading, c.smoothed[i], c.decay)
		c.smoothed[i] = value

		if err := bars.AddDataPoint(CPUCoreSeries(i), value); err != nil {
			return err
		}
	}

	c.usage = metrics.CalculateCPUUsage(readings)
	if err := c.graph.AddDataPoint(CPUUsageSeries, c.usage); err != nil {
		return err
	}

	c.prev = current
	return nil
}

// Usage returns the last aggregate usage percentage.
func (c *CPU) Usage() float64 { return c.usage }

// Summary implements Indicator.
func (c *CPU) Summary() []SummaryLine {
	return []SummaryLine{
		{Section: SectionCurrent, Label: "Total CPU usage", Value: metrics.FormatMetricPretty(c.usage, "") + "%"},
	}
}

// ticksAt returns the ticks of core i, or zero when the snapshot has fewer cores.
func ticksAt(ticks []metrics.CPUTicks, i int) metrics.CPUTicks {
	if i < len(ticks) {
		return ticks[i]
	}
	return metrics.CPUTicks{}
}
