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

// SwapUsedSeries is the bar and graph series of the swap indicator.
const SwapUsedSeries = "swap-used"

// Swap shows used swap with a status band.
type Swap struct {
	src        source.CounterSource
	graphWidth int
	logger     *slog.Logger

	graph   *series.Graph
	swap    metrics.SwapFields
	sampled bool
}

// NewSwap creates a swap indicator.
func NewSwap(src source.CounterSource, graphWidth int, logger *slog.Logger) *Swap {
	return &Swap{
		src:        src,
		graphWidth: graphWidth,
		logger:     logger,
	}
}

// Name implements Indicator.
func (s *Swap) Name() string { return "swap" }

// Label implements Indicator.
func (s *Swap) Label() string { return "Swap" }

// Graph implements Indicator. It is nil until total swap is known.
func (s *Swap) Graph() *series.Graph { return s.graph }

// InitValues registers the bar series and sizes the graph when possible.
func (s *Swap) InitValues(bars *series.Store) error {
	if err := bars.AddDataSet(SwapUsedSeries, metrics.StatusOK); err != nil {
		return err
	}

	sw, err := s.src.SampleSwap()
	if err != nil {
		s.logger.Warn("Failed to read swap size, deferring graph", "error", err)
		return nil
	}
	return s.ensureGraph(sw.Total)
}

func (s *Swap) ensureGraph(total uint64) error {
	if s.graph != nil {
		return nil
	}
	s.graph = series.NewGraph(series.GraphOptions{
		Width:   s.graphWidth,
		Units:   "B",
		ShowMax: true,
		Fixed:   true,
		Max:     float64(total),
	})
	return s.graph.AddDataSet(SwapUsedSeries, metrics.StatusOK)
}

// UpdateValues pushes the used fraction, reclassifies it, and graphs used bytes.
func (s *Swap) UpdateValues(bars *series.Store) error {
	sw, err := s.src.SampleSwap()
	if err != nil {
		return err
	}
	if err := s.ensureGraph(sw.Total); err != nil {
		return err
	}

	fraction := metrics.SwapUsedFraction(sw)
	if err := bars.AddDataPoint(SwapUsedSeries, fraction); err != nil {
		return err
	}
	if err := bars.SetStatus(SwapUsedSeries, metrics.ClassifySwap(fraction)); err != nil {
		return err
	}
	if err := s.graph.AddDataPoint(SwapUsedSeries, float64(sw.Used)); err != nil {
		return err
	}

	s.swap = sw
	s.sampled = true
	return nil
}

// Summary implements Indicator.
func (s *Swap) Summary() []SummaryLine {
	if !s.sampled {
		return nil
	}
	return []SummaryLine{
		{Section: SectionCurrent, Label: "Total swap usage", Value: metrics.FormatMetricPretty(float64(s.swap.Used), "B")},
	}
}
