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

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/phuonguno98/panelstat/internal/netmgr"
	"github.com/phuonguno98/panelstat/internal/source"
	"github.com/spf13/cobra"
)

var listDevicesCmd = &cobra.Command{
	Use:   "list-devices",
	Short: "List network devices and system capacity",
	Long: `List network devices with their activation state and link speed, plus the
core count and memory/swap totals the indicators will scale against.
This helps to configure include/exclude filters accurately.

Examples:
  # List all available devices
  panelstat list-devices

  # Use the output to configure filters
  panelstat run --exclude-networks="docker0"`,
	RunE: runListDevices,
}

func init() {
	rootCmd.AddCommand(listDevicesCmd)
}

func runListDevices(cmd *cobra.Command, _ []string) error {
	logger := InitLogger(logLevel, logFile)
	return listDevices(cmd.OutOrStdout(), source.NewSystem(), netmgr.NewSystem(logger))
}

// listDevices writes the capacity summary and the device table to w.
func listDevices(w io.Writer, src source.CounterSource, mgr netmgr.Manager) error {
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintln(w, "   panelstat - Available Devices")
	fmt.Fprintln(w, "========================================")

	fmt.Fprintln(w, "\nSystem:")
	if cores, err := src.CoreCount(); err != nil {
		fmt.Fprintf(os.Stderr, "Error counting cores: %v\n", err)
	} else {
		fmt.Fprintf(w, "  CPU cores: %d\n", cores)
	}
	if mem, err := src.SampleMemory(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading memory: %v\n", err)
	} else {
		fmt.Fprintf(w, "  Memory:    %s\n", humanize.IBytes(mem.Total))
	}
	if swap, err := src.SampleSwap(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading swap: %v\n", err)
	} else if swap.Total == 0 {
		fmt.Fprintln(w, "  Swap:      none")
	} else {
		fmt.Fprintf(w, "  Swap:      %s\n", humanize.IBytes(swap.Total))
	}

	devices, err := mgr.ListDevices()
	switch {
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error listing network devices: %v\n", err)
	case len(devices) == 0:
		fmt.Fprintln(w, "\nNo network devices found.")
	default:
		fmt.Fprint(w, netmgr.FormatDevicesTable(devices))
		fmt.Fprintln(w, "\nExample usage:")
		fmt.Fprintf(w, "  panelstat run --include-networks=\"%s\"\n", devices[0].Iface())
		if len(devices) > 1 {
			fmt.Fprintf(w, "  panelstat run --exclude-networks=\"%s\"\n", devices[1].Iface())
		}
	}

	fmt.Fprintln(w, "\nNotes:")
	fmt.Fprintln(w, "  - Only activated devices are sampled by the network indicator")
	fmt.Fprintln(w, "  - Use comma to separate multiple devices: --exclude-networks=\"dev1,dev2\"")
	fmt.Fprintln(w, "  - Exclude filters take priority over include filters")
	fmt.Fprintln(w)

	return nil
}
