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

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Intervals holds the tick interval of each indicator.
type Intervals struct {
	CPU     time.Duration `yaml:"cpu"`
	Memory  time.Duration `yaml:"memory"`
	Swap    time.Duration `yaml:"swap"`
	Network time.Duration `yaml:"network"`
}

// NetworkConfig controls interface selection and the decayed peak envelope.
type NetworkConfig struct {
	Horizon       time.Duration `yaml:"horizon"`  // Window the peak decays over
	Residual      float64       `yaml:"residual"` // Fraction of the peak left after Horizon
	Baseline      float64       `yaml:"baseline"` // Priming peak for traffic
	WatchInterval time.Duration `yaml:"watch_interval"`
	Include       []string      `yaml:"include"` // Interfaces to monitor (empty = all)
	Exclude       []string      `yaml:"exclude"` // Interfaces to exclude
}

// RecordConfig controls the CSV recorder.
type RecordConfig struct {
	Path          string        `yaml:"path"` // Empty disables recording
	BufferSize    int           `yaml:"buffer_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	MaxFileSize   int64         `yaml:"max_file_size"`
}

// Config represents application configuration.
type Config struct {
	Intervals    Intervals     `yaml:"intervals"`
	CPUDecay     float64       `yaml:"cpu_decay"`
	GraphWidth   int           `yaml:"graph_width"`
	BarRetention int           `yaml:"bar_retention"`
	HoverDelay   time.Duration `yaml:"hover_delay"`

	Network NetworkConfig `yaml:"network"`
	Record  RecordConfig  `yaml:"record"`

	Listen   string `yaml:"listen"`   // HTTP dashboard address (empty = disabled)
	Terminal bool   `yaml:"terminal"` // Print a status line on every tick

	// Logging
	LogLevel string `yaml:"log_level"` // Log level: debug, info, warn, error
	LogFile  string `yaml:"log_file"`  // Log file path (empty = stdout)

	// Timezone
	Timezone string `yaml:"timezone"` // Timezone for recorded timestamps (e.g., "Asia/Ho_Chi_Minh", "Local")
}

// Default configuration values.
const (
	DefaultCPUInterval       = 250 * time.Millisecond
	DefaultMemoryInterval    = 1 * time.Second
	DefaultSwapInterval      = 2 * time.Second
	DefaultNetworkInterval   = 250 * time.Millisecond
	DefaultCPUDecay          = 0.2
	DefaultGraphWidth        = 100
	DefaultBarRetention      = 3
	DefaultHoverDelay        = 300 * time.Millisecond
	DefaultHorizon           = 2 * time.Hour
	DefaultResidual          = 0.056
	DefaultBaseline          = 56 * 1024
	DefaultWatchInterval     = 2 * time.Second
	DefaultListen            = "127.0.0.1:8090"
	DefaultBufferSize        = 100
	DefaultFlushInterval     = 5 * time.Second
	DefaultLogLevel          = "info"
	DefaultMaxOutputFileSize = 150 * 1024 * 1024 // 150MB

	minInterval = 50 * time.Millisecond
	maxInterval = 1 * time.Hour
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Intervals: Intervals{
			CPU:     DefaultCPUInterval,
			Memory:  DefaultMemoryInterval,
			Swap:    DefaultSwapInterval,
			Network: DefaultNetworkInterval,
		},
		CPUDecay:     DefaultCPUDecay,
		GraphWidth:   DefaultGraphWidth,
		BarRetention: DefaultBarRetention,
		HoverDelay:   DefaultHoverDelay,
		Network: NetworkConfig{
			Horizon:       DefaultHorizon,
			Residual:      DefaultResidual,
			Baseline:      DefaultBaseline,
			WatchInterval: DefaultWatchInterval,
		},
		Record: RecordConfig{
			BufferSize:    DefaultBufferSize,
			FlushInterval: DefaultFlushInterval,
			MaxFileSize:   DefaultMaxOutputFileSize,
		},
		Listen:   DefaultListen,
		LogLevel: DefaultLogLevel,
		Timezone: "Local",
	}
}

// LoadFile overlays the YAML file at path on the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// GetDefaultOutputPath generates default output path: <hostname>_<timestamp>.csv
func GetDefaultOutputPath() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	// Clean hostname (remove invalid filename characters)
	hostname = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, hostname)

	timestamp := time.Now().Format("20060102150405")
	return fmt.Sprintf("%s_%s.csv", hostname, timestamp)
}

// ParseCommaSeparated parses a comma-separated string into a slice of trimmed strings.
func ParseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// ShouldMonitor checks if an interface passes the include/exclude filters.
// Exclusion wins; an empty include list admits everything else.
func (n *NetworkConfig) ShouldMonitor(name string) bool {
	if slices.Contains(n.Exclude, name) {
		return false
	}
	if len(n.Include) == 0 {
		return true
	}
	return slices.Contains(n.Include, name)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	intervals := []struct {
		name  string
		value time.Duration
	}{
		{"cpu", c.Intervals.CPU},
		{"memory", c.Intervals.Memory},
		{"swap", c.Intervals.Swap},
		{"network", c.Intervals.Network},
	}
	for _, iv := range intervals {
		if iv.value < minInterval {
			return fmt.Errorf("%s interval must be at least %v", iv.name, minInterval)
		}
		if iv.value > maxInterval {
			return fmt.Errorf("%s interval must not exceed %v", iv.name, maxInterval)
		}
	}

	if c.CPUDecay < 0 || c.CPUDecay >= 1 {
		return fmt.Errorf("cpu decay must be in [0, 1): %v", c.CPUDecay)
	}

	if c.GraphWidth < 1 {
		return errors.New("graph width must be at least 1")
	}

	if c.BarRetention < 1 {
		return errors.New("bar retention must be at least 1")
	}

	if c.HoverDelay < 0 {
		return errors.New("hover delay must not be negative")
	}

	if c.Network.Horizon <= 0 {
		return errors.New("network horizon must be positive")
	}

	if c.Network.Residual <= 0 || c.Network.Residual >= 1 {
		return fmt.Errorf("network residual must be in (0, 1): %v", c.Network.Residual)
	}

	if c.Network.Baseline <= 0 {
		return errors.New("network baseline must be positive")
	}

	if c.Network.WatchInterval < 1*time.Second {
		return errors.New("network watch interval must be at least 1 second")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	// Validate Timezone
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone: %s (%w)", c.Timezone, err)
		}
	}

	if c.Record.Path != "" {
		if c.Record.BufferSize < 1 {
			return errors.New("record buffer size must be at least 1")
		}

		if c.Record.FlushInterval < 1*time.Second {
			return errors.New("record flush interval must be at least 1 second")
		}

		if c.Record.MaxFileSize < 1 {
			return errors.New("record max file size must be positive")
		}

		// Check if output directory exists
		if err := c.ensureOutputDir(); err != nil {
			return fmt.Errorf("output directory check failed: %w", err)
		}
	}

	return nil
}

// ensureOutputDir checks if the recording directory exists.
func (c *Config) ensureOutputDir() error {
	dir := filepath.Dir(c.Record.Path)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
		return err
	}

	if !info.IsDir() {
		return fmt.Errorf("output path parent is not a directory: %s", dir)
	}

	return nil
}

// Location returns the configured timezone, falling back to local time.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// String returns a human-readable representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{CPU=%v, Memory=%v, Swap=%v, Network=%v, Listen=%q, Record=%q, Timezone=%s}",
		c.Intervals.CPU, c.Intervals.Memory, c.Intervals.Swap, c.Intervals.Network,
		c.Listen, c.Record.Path, c.Timezone)
}
