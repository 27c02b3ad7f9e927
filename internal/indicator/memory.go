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
	"log/slog"

	"github.com/phuonguno98/panelstat/internal/series"
	"github.com/phuonguno98/panelstat/internal/source"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

// MemUsedSeries is the bar and graph series of the memory indicator.
const MemUsedSeries = "mem-used"

// Memory shows used memory as a fraction of total.
type Memory struct {
	src        source.CounterSource
	graphWidth int
	logger     *slog.Logger

	graph   *series.Graph
	mem     metrics.MemoryFields
	sampled bool
}

// NewMemory creates a memory indicator.
func NewMemory(src source.CounterSource, graphWidth int, logger *slog.Logger) *Memory {
	return &Memory{
		src:        src,
		graphWidth: graphWidth,
		logger:     logger,
	}
}

// Name implements Indicator.
func (m *Memory) Name() string { return "memory" }

// Label implements Indicator.
func (m *Memory) Label() string { return "Memory" }

// Graph implements Indicator. It is nil until total memory is known.
func (m *Memory) Graph() *series.Graph { return m.graph }

// InitValues registers the bar series and sizes the graph when possible.
func (m *Memory) InitValues(bars *series.Store) error {
	if err := bars.AddDataSet(MemUsedSeries, metrics.StatusOK); err != nil {
		return err
	}

	mem, err := m.src.SampleMemory()
	if err != nil {
		m.logger.Warn("Failed to read memory size, deferring graph", "error", err)
		return nil
	}
	return m.ensureGraph(mem.Total)
}

// ensureGraph creates the detail graph fixed at total bytes.
func (m *Memory) ensureGraph(total uint64) error {
	if m.graph != nil {
		return nil
	}
	m.graph = series.NewGraph(series.GraphOptions{
		Width:   m.graphWidth,
		Units:   "B",
		ShowMax: true,
		Fixed:   true,
		Max:     float64(total),
	})
	return m.graph.AddDataSet(MemUsedSeries, metrics.StatusOK)
}

// UpdateValues pushes the used fraction to the bar and used bytes to the graph.
func (m *Memory) UpdateValues(bars *series.Store) error {
	mem, err := m.src.SampleMemory()
	if err != nil {
		return err
	}
	if err := m.ensureGraph(mem.Total); err != nil {
		return err
	}

	if err := bars.AddDataPoint(MemUsedSeries, metrics.MemoryUsedFraction(mem)); err != nil {
		return err
	}
	if err := m.graph.AddDataPoint(MemUsedSeries, metrics.MemoryUsedBytes(mem)); err != nil {
		return err
	}

	m.mem = mem
	m.sampled = true
	return nil
}

// Summary implements Indicator.
func (m *Memory) Summary() []SummaryLine {
	if !m.sampled {
		return nil
	}

	line := func(label string, v float64) SummaryLine {
		return SummaryLine{Section: SectionCurrent, Label: label, Value: metrics.FormatMetricPretty(v, "B")}
	}

	lines := []SummaryLine{
		line("Total memory usage", metrics.MemoryUsedBytes(m.mem)),
		line("Total buffer usage", float64(m.mem.Buffer)),
		line("Total shared usage", float64(m.mem.Shared)),
		line("Total cache usage", float64(m.mem.Cached)),
	}
	if m.mem.HasSlab {
		lines = append(lines, line("Total slab usage", float64(m.mem.Slab)))
	}
	return append(lines,
		line("Total locked usage", float64(m.mem.Locked)),
		line("Total free usage", float64(m.mem.Free)),
		line("Total RAM present", float64(m.mem.Total)),
	)
}
