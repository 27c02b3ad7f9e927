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
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

// GraphOptions configures a scrolling line graph.
type GraphOptions struct {
	Width   int     // Render width; the graph keeps Width+1 points
	Units   string  // Units appended to the max label
	ShowMax bool    // Whether the max label is shown
	Fixed   bool    // Fixed maximum instead of autoscale
	Max     float64 // Maximum when Fixed is set
}

// Graph is a line graph: a store of series scaled against one maximum.
type Graph struct {
	store   *Store
	scaler  *Scaler
	opts    GraphOptions
	enabled bool
}

// SeriesFrame is one series prepared for rendering.
type SeriesFrame struct {
	Name   string         `json:"name"`
	Status metrics.Status `json:"status"`
	Values []float64      `json:"values"`
	Scaled []float64      `json:"scaled,omitempty"`
}

// Frame is the render-ready state of a graph.
type Frame struct {
	Units     string        `json:"units"`
	Autoscale bool          `json:"autoscale"`
	Max       float64       `json:"max"`
	MaxLabel  string        `json:"max_label,omitempty"`
	Series    []SeriesFrame `json:"series"`
}

// NewGraph creates a graph with the given options.
func NewGraph(opts GraphOptions) *Graph {
	if opts.Width < 1 {
		opts.Width = 1
	}

	scaler := NewAutoScaler()
	if opts.Fixed {
		scaler = NewFixedScaler(opts.Max)
	}

	return &Graph{
		store:  NewStore(),
		scaler: scaler,
		opts:   opts,
	}
}

// AddDataSet registers a series on the graph.
func (g *Graph) AddDataSet(name string, status metrics.Status) error {
	return g.store.AddDataSet(name, status)
}

// AddDataPoint appends a raw (unscaled) value.
func (g *Graph) AddDataPoint(name string, value float64) error {
	return g.store.AddDataPoint(name, value)
}

// Store exposes the graph's series, mainly for status updates.
func (g *Graph) Store() *Store {
	return g.store
}

// Scaler exposes the graph's scaler.
func (g *Graph) Scaler() *Scaler {
	return g.scaler
}

// Retention is the number of points a render pass keeps per series.
func (g *Graph) Retention() int {
	return g.opts.Width + 1
}

// Enable marks the graph as visible.
func (g *Graph) Enable() { g.enabled = true }

// Disable marks the graph as hidden.
func (g *Graph) Disable() { g.enabled = false }

// Enabled reports whether the graph is visible.
func (g *Graph) Enabled() bool { return g.enabled }

// MaxLabel formats the current maximum, or returns "" when hidden.
func (g *Graph) MaxLabel() string {
	if !g.opts.ShowMax {
		return ""
	}
	return metrics.FormatMetricPretty(g.scaler.Max(), g.opts.Units)
}

// Tick runs the per-sample bookkeeping: the autoscale maximum sees every
// point before the store drops the ones past the graph width.
func (g *Graph) Tick() {
	g.scaler.Update(g.store)
	g.store.Truncate(g.Retention())
}

// Frame runs one render pass: truncate to the graph width, update the
// autoscale maximum, and scale every series against it.
func (g *Graph) Frame() Frame {
	g.store.Truncate(g.Retention())
	g.scaler.Update(g.store)

	frame := Frame{
		Units:     g.opts.Units,
		Autoscale: g.scaler.Autoscale(),
		Max:       g.scaler.Max(),
		MaxLabel:  g.MaxLabel(),
		Series:    make([]SeriesFrame, 0, g.store.Len()),
	}

	for _, name := range g.store.order {
		stat := g.store.stats[name]
		values := g.store.Values(name)
		frame.Series = append(frame.Series, SeriesFrame{
			Name:   name,
			Status: stat.Status,
			Values: values,
			Scaled: g.scaler.Scale(values),
		})
	}

	return frame
}
