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

import "testing"

func TestFormatMetricPretty(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		units string
		want  string
	}{
		{"Kibi", 2048, "", "2.00 Ki"},
		{"Mebi boundary", 1048576, "", "1.00 Mi"},
		{"Raw", 512, "", "512.00 "},
		{"Kibi boundary", 1024, "B", "1.00 KiB"},
		{"Bits per second", 1.5 * 1024 * 1024, "b/s", "1.50 Mib/s"},
		{"Zero", 0, "%", "0.00 %"},
		{"Just below Kibi", 1023, "B", "1023.00 B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatMetricPretty(tt.value, tt.units); got != tt.want {
				t.Errorf("FormatMetricPretty(%v, %q) = %q, want %q", tt.value, tt.units, got, tt.want)
			}
		})
	}
}
