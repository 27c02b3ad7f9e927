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

import "fmt"

const (
	kibi = 1024
	mebi = 1024 * 1024
)

// FormatMetricPretty renders a value with a binary prefix chosen by magnitude.
// Values are always printed with two decimals followed by a space, the prefix
// and the units, e.g. "2.00 KiB", "1.00 Mib/s" or "512.00 ".
func FormatMetricPretty(value float64, units string) string {
	prefix := ""

	switch {
	case value >= mebi:
		value /= mebi
		prefix = "Mi"
	case value >= kibi:
		value /= kibi
		prefix = "Ki"
	}

	return fmt.Sprintf("%.2f %s%s", value, prefix, units)
}
