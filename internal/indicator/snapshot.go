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
	"github.com/phuonguno98/panelstat/internal/series"
)

// Snapshot is a copy of a controller's presentation state.
type Snapshot struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Label        string               `json:"label"`
	State        State                `json:"state"`
	PopupVisible bool                 `json:"popup_visible"`
	Bars         []series.SeriesFrame `json:"bars"`
	Graph        *series.Frame        `json:"graph,omitempty"`
	Summary      []SummaryLine        `json:"summary"`
	Details      map[string]any       `json:"details,omitempty"`
}

// Snapshot copies the current state. The graph frame is computed only while
// the popup is visible, or when withGraph is set.
func (c *Controller) Snapshot(withGraph bool) Snapshot {
	snap := Snapshot{
		ID:           c.id,
		Name:         c.ind.Name(),
		Label:        c.ind.Label(),
		State:        c.state,
		PopupVisible: c.popupVisible,
		Bars:         make([]series.SeriesFrame, 0, c.bars.Len()),
	}

	for _, name := range c.bars.Names() {
		status, _ := c.bars.Status(name)
		snap.Bars = append(snap.Bars, series.SeriesFrame{
			Name:   name,
			Status: status,
			Values: c.bars.Values(name),
		})
	}

	if c.state == StateDestroyed {
		return snap
	}

	snap.Summary = c.ind.Summary()

	if g := c.ind.Graph(); g != nil && (withGraph || g.Enabled()) {
		frame := g.Frame()
		snap.Graph = &frame
	}

	if d, ok := c.ind.(detailer); ok {
		snap.Details = d.Details()
	}

	return snap
}
