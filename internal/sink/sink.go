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

// Package sink holds render sinks that consume indicator updates.
package sink

import (
	"context"
	"log/slog"

	"github.com/phuonguno98/panelstat/internal/indicator"
)

// Resolver maps controller IDs back to controllers. It is only used from
// the scheduler's goroutine.
type Resolver interface {
	Lookup(id string) (*indicator.Controller, bool)
	Controllers() []*indicator.Controller
}

// Multi fans one update out to several sinks.
type Multi []indicator.RenderSink

// OnSeriesUpdated implements indicator.RenderSink.
func (m Multi) OnSeriesUpdated(id string) {
	for _, s := range m {
		s.OnSeriesUpdated(id)
	}
}

// Log records every update at debug level.
type Log struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewLog creates a logging sink.
func NewLog(resolver Resolver, logger *slog.Logger) *Log {
	return &Log{resolver: resolver, logger: logger}
}

// OnSeriesUpdated implements indicator.RenderSink.
func (l *Log) OnSeriesUpdated(id string) {
	if !l.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	c, ok := l.resolver.Lookup(id)
	if !ok {
		l.logger.Debug("Update for unknown indicator", "id", id)
		return
	}

	attrs := []any{"indicator", c.Name()}
	bars := c.Bars()
	for _, name := range bars.Names() {
		if v, ok := bars.Latest(name); ok {
			attrs = append(attrs, name, v)
		}
	}
	l.logger.Debug("Series updated", attrs...)
}
