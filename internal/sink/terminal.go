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

package sink

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

// Terminal colors, one per status.
const (
	colorOK    = lipgloss.Color("#22C55E") // Green
	colorWarn  = lipgloss.Color("#EAB308") // Yellow
	colorBad   = lipgloss.Color("#EF4444") // Red
	colorMuted = lipgloss.Color("#6B7280") // Gray
)

// Terminal redraws a single status line with the latest bar values of every
// controller.
type Terminal struct {
	resolver Resolver
	out      io.Writer

	label  lipgloss.Style
	styles map[metrics.Status]lipgloss.Style
}

// NewTerminal creates a terminal sink writing to out.
func NewTerminal(resolver Resolver, out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		resolver: resolver,
		out:      out,
		label:    r.NewStyle().Bold(true).Foreground(colorMuted),
		styles: map[metrics.Status]lipgloss.Style{
			metrics.StatusOK:   r.NewStyle().Foreground(colorOK),
			metrics.StatusWarn: r.NewStyle().Foreground(colorWarn),
			metrics.StatusBad:  r.NewStyle().Foreground(colorBad).Bold(true),
		},
	}
}

// OnSeriesUpdated implements indicator.RenderSink.
func (t *Terminal) OnSeriesUpdated(string) {
	fmt.Fprint(t.out, "\r\033[K"+t.Line())
}

// Line renders the current status line.
func (t *Terminal) Line() string {
	var parts []string
	for _, c := range t.resolver.Controllers() {
		bars := c.Bars()
		var values []string
		for _, name := range bars.Names() {
			v, ok := bars.Latest(name)
			if !ok {
				continue
			}
			status, _ := bars.Status(name)
			values = append(values, t.styles[status].Render(fmt.Sprintf("%3.0f%%", v*100)))
		}
		if len(values) == 0 {
			continue
		}
		parts = append(parts, t.label.Render(c.Indicator().Label())+" "+strings.Join(values, " "))
	}
	return strings.Join(parts, "  ")
}
