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

package netmgr

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatDevicesTable formats network devices as a table.
func FormatDevicesTable(devices []Device) string {
	var sb strings.Builder

	sb.WriteString("\nNetwork Devices:\n")
	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%-20s %-13s %-12s %-17s %s\n", "DEVICE", "STATE", "SPEED", "MAC ADDRESS", "IP ADDRESSES"))
	sb.WriteString(strings.Repeat("-", 80))
	sb.WriteString("\n")

	for _, d := range devices {
		mac := d.MAC
		if mac == "" {
			mac = "N/A"
		}

		firstIP := "N/A"
		if len(d.Addrs) > 0 {
			firstIP = d.Addrs[0]
		}

		sb.WriteString(fmt.Sprintf("%-20s %-13s %-12s %-17s %s\n",
			truncate(d.Name, 20),
			d.State,
			FormatSpeed(d.Speed),
			mac,
			firstIP,
		))

		// Additional addresses on their own lines
		for i := 1; i < len(d.Addrs); i++ {
			sb.WriteString(fmt.Sprintf("%-20s %-13s %-12s %-17s %s\n", "", "", "", "", d.Addrs[i]))
		}
	}

	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")

	return sb.String()
}

// FormatSpeed renders a link speed given in Mbit/s.
func FormatSpeed(mbps int64) string {
	if mbps < 0 {
		return "N/A"
	}
	value, prefix := humanize.ComputeSI(float64(mbps) * 1e6)
	return fmt.Sprintf("%.0f %sb/s", value, prefix)
}

// truncate shortens s to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
