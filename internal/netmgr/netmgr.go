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

// Package netmgr enumerates network devices and reports activation changes.
package netmgr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/net"
)

// DeviceState is the activation state of a device.
type DeviceState int

const (
	StateUnknown DeviceState = iota
	StateUnavailable
	StateDisconnected
	StateActivated
)

// String returns the lowercase state name.
func (s DeviceState) String() string {
	switch s {
	case StateUnavailable:
		return "unavailable"
	case StateDisconnected:
		return "disconnected"
	case StateActivated:
		return "activated"
	default:
		return "unknown"
	}
}

// Device is one network device as seen by the manager.
type Device struct {
	Name    string
	IPIface string // Layer 3 interface name when it differs from Name
	State   DeviceState
	Speed   int64 // Mbit/s, -1 when unknown
	MAC     string
	Addrs   []string
}

// Iface returns the interface name to read counters from.
func (d Device) Iface() string {
	if d.IPIface != "" {
		return d.IPIface
	}
	return d.Name
}

// Manager lists devices and notifies on state changes.
type Manager interface {
	ListDevices() ([]Device, error)
	Subscribe(fn func()) (unsubscribe func())
}

// Dependency injection points for testing
var (
	netInterfaces = net.Interfaces
	readSpeed     = readSysfsSpeed
)

const sysClassNet = "/sys/class/net"

// readSysfsSpeed returns the link speed the kernel reports, or -1.
func readSysfsSpeed(name string) int64 {
	data, err := os.ReadFile(filepath.Join(sysClassNet, name, "speed"))
	if err != nil {
		return -1
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil || v < 0 {
		return -1
	}
	return v
}

// System is a Manager backed by the host interface table.
type System struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func()
	last   string
	seen   bool
}

// NewSystem creates a host device manager.
func NewSystem(logger *slog.Logger) *System {
	return &System{
		logger: logger,
		subs:   make(map[int]func()),
	}
}

// ListDevices returns all interfaces sorted by name.
func (s *System) ListDevices() ([]Device, error) {
	ifaces, err := netInterfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	devices := make([]Device, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, addr := range iface.Addrs {
			addrs = append(addrs, addr.Addr)
		}

		devices = append(devices, Device{
			Name:  iface.Name,
			State: stateFromFlags(iface.Flags),
			Speed: readSpeed(iface.Name),
			MAC:   iface.HardwareAddr,
			Addrs: addrs,
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Name < devices[j].Name
	})

	return devices, nil
}

func stateFromFlags(flags []string) DeviceState {
	if len(flags) == 0 {
		return StateUnknown
	}
	if slices.Contains(flags, "loopback") {
		return StateUnavailable
	}
	if slices.Contains(flags, "up") {
		return StateActivated
	}
	return StateDisconnected
}

// Subscribe registers fn to run after each detected state change. fn runs
// on the watcher goroutine.
func (s *System) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Watch polls the device list every interval until ctx is done.
func (s *System) Watch(ctx context.Context, interval time.Duration) {
	s.poll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll()
		}
	}
}

// poll notifies subscribers when the (name, state) set has changed.
func (s *System) poll() {
	devices, err := s.ListDevices()
	if err != nil {
		s.logger.Warn("Device enumeration failed", "error", err)
		return
	}

	fp := Fingerprint(devices)

	s.mu.Lock()
	if s.seen && fp == s.last {
		s.mu.Unlock()
		return
	}
	first := !s.seen
	s.seen = true
	s.last = fp
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if first {
		return
	}

	s.logger.Info("Network devices changed", "devices", len(devices))
	for _, fn := range subs {
		fn()
	}
}

// Fingerprint summarizes the name and state of every device.
func Fingerprint(devices []Device) string {
	parts := make([]string, len(devices))
	for i, d := range devices {
		parts[i] = d.Iface() + "=" + d.State.String()
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
