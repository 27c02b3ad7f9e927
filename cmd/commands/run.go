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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/phuonguno98/panelstat/internal/config"
	"github.com/phuonguno98/panelstat/internal/netmgr"
	"github.com/phuonguno98/panelstat/internal/panel"
	"github.com/phuonguno98/panelstat/internal/scheduler"
	"github.com/phuonguno98/panelstat/internal/server"
	"github.com/phuonguno98/panelstat/internal/sink"
	"github.com/phuonguno98/panelstat/internal/source"
	"github.com/phuonguno98/panelstat/pkg/version"
	"github.com/spf13/cobra"
)

const recordAuto = "auto"

var (
	// Run command specific flags
	listenAddr      string
	recordPath      string
	terminalOutput  bool
	cpuInterval     time.Duration
	memoryInterval  time.Duration
	swapInterval    time.Duration
	networkInterval time.Duration
	bufferSize      int
	flushInterval   time.Duration
	includeNetworks string
	excludeNetworks string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start sampling and publishing indicators",
	Long: `Start the CPU, memory, swap and network indicators.
Series are served on the web dashboard and can also be printed as a terminal
status line or recorded to CSV.

Examples:
  # Dashboard on the default address
  panelstat run

  # Terminal status line only, recording to an auto-named CSV file
  panelstat run --listen "" --terminal --record

  # Faster network sampling, ignoring the docker bridge
  panelstat run --network-interval 100ms --exclude-networks "docker0"`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&listenAddr, "listen", config.DefaultListen,
		"Dashboard listen address (empty = disabled)")
	runCmd.Flags().StringVarP(&recordPath, "record", "o", "",
		"Record series to this CSV file (without a value: <hostname>_<timestamp>.csv)")
	runCmd.Flags().Lookup("record").NoOptDefVal = recordAuto
	runCmd.Flags().BoolVar(&terminalOutput, "terminal", false,
		"Print a colored status line on every tick")

	runCmd.Flags().DurationVar(&cpuInterval, "cpu-interval", config.DefaultCPUInterval,
		"CPU sampling interval")
	runCmd.Flags().DurationVar(&memoryInterval, "memory-interval", config.DefaultMemoryInterval,
		"Memory sampling interval")
	runCmd.Flags().DurationVar(&swapInterval, "swap-interval", config.DefaultSwapInterval,
		"Swap sampling interval")
	runCmd.Flags().DurationVar(&networkInterval, "network-interval", config.DefaultNetworkInterval,
		"Network sampling interval")

	runCmd.Flags().IntVar(&bufferSize, "buffer-size", config.DefaultBufferSize,
		"Buffer size for CSV writer")
	runCmd.Flags().DurationVar(&flushInterval, "flush-interval", config.DefaultFlushInterval,
		"Flush interval for CSV writer")

	// Filter flags
	runCmd.Flags().StringVar(&includeNetworks, "include-networks", "",
		"Comma-separated list of network interfaces to monitor (empty = all)")
	runCmd.Flags().StringVar(&excludeNetworks, "exclude-networks", "",
		"Comma-separated list of network interfaces to exclude")
}

// buildConfig merges the config file with the flags the user set.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Listen = listenAddr
	}
	if flags.Changed("record") {
		cfg.Record.Path = recordPath
	}
	if cfg.Record.Path == recordAuto {
		cfg.Record.Path = config.GetDefaultOutputPath()
	}
	if flags.Changed("terminal") {
		cfg.Terminal = terminalOutput
	}
	if flags.Changed("cpu-interval") {
		cfg.Intervals.CPU = cpuInterval
	}
	if flags.Changed("memory-interval") {
		cfg.Intervals.Memory = memoryInterval
	}
	if flags.Changed("swap-interval") {
		cfg.Intervals.Swap = swapInterval
	}
	if flags.Changed("network-interval") {
		cfg.Intervals.Network = networkInterval
	}
	if flags.Changed("buffer-size") {
		cfg.Record.BufferSize = bufferSize
	}
	if flags.Changed("flush-interval") {
		cfg.Record.FlushInterval = flushInterval
	}

	// Parse filter lists
	if flags.Changed("include-networks") {
		cfg.Network.Include = config.ParseCommaSeparated(includeNetworks)
	}
	if flags.Changed("exclude-networks") {
		cfg.Network.Exclude = config.ParseCommaSeparated(excludeNetworks)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// runRun is the main monitoring entry point.
func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger := InitLogger(cfg.LogLevel, cfg.LogFile)

	logger.Info("Starting panelstat",
		"version", version.Info(),
		"os", runtime.GOOS,
		"arch", runtime.GOARCH,
	)
	logger.Info("Configuration loaded", "config", cfg.String())

	checkPlatformCapabilities(logger)

	// The loop outlives the signal context so the panel can be torn down on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	var wg sync.WaitGroup
	loop := scheduler.NewLoop(logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := loop.Run(loopCtx); err != nil {
			logger.Error("Event loop stopped with error", "error", err)
		}
	}()

	p := panel.New(cfg, loop, source.NewSystem(), netmgr.NewSystem(logger), logger)
	p.AddSink(sink.NewLog(p, logger))

	if cfg.Record.Path != "" {
		recorder, err := sink.NewRecorder(sink.RecorderOptions{
			Path:          cfg.Record.Path,
			BufferSize:    cfg.Record.BufferSize,
			FlushInterval: cfg.Record.FlushInterval,
			MaxFileSize:   cfg.Record.MaxFileSize,
			Location:      cfg.Location(),
		}, p, logger)
		if err != nil {
			logger.Error("Failed to create CSV recorder", "error", err)
			return err
		}
		p.AddSink(recorder)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := recorder.Start(loopCtx); err != nil {
				logger.Error("Recorder stopped with error", "error", err)
			}
			if err := recorder.Close(); err != nil {
				logger.Error("Failed to close recorder", "error", err)
			}
		}()
	}

	if cfg.Terminal {
		p.AddSink(sink.NewTerminal(p, os.Stderr))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("Received signal, initiating shutdown", "signal", sig)
		cancel()
	}()

	var httpServer *http.Server
	var hub *server.Hub
	if cfg.Listen != "" {
		hub = server.NewHub(p, logger)
		p.AddSink(hub)

		httpServer = &http.Server{
			Addr:              cfg.Listen,
			Handler:           server.NewServer(p, hub, logger),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
	}

	if err := p.Start(ctx); err != nil {
		cancel()
		stopLoop()
		wg.Wait()
		return fmt.Errorf("failed to start indicators: %w", err)
	}

	if httpServer != nil {
		go func() {
			logger.Info("Dashboard listening", "url", "http://"+cfg.Listen)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Server error", "error", err)
				cancel()
			}
		}()
	}

	logger.Info("panelstat is running")
	<-ctx.Done()

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		hub.Close()
	}

	if err := p.Stop(shutdownCtx); err != nil {
		logger.Error("Failed to stop indicators", "error", err)
	}

	stopLoop()
	wg.Wait()

	if cfg.Terminal {
		fmt.Fprintln(os.Stderr)
	}
	logger.Info("Shutdown complete")
	return nil
}

// checkPlatformCapabilities logs platform-specific capability warnings.
func checkPlatformCapabilities(logger *slog.Logger) {
	switch runtime.GOOS {
	case osLinux:
		logger.Info("Running on Linux: All metrics available")
	case osDarwin:
		logger.Info("Running on macOS: slab memory and link speeds are not reported")
	case osWindows:
		logger.Warn("Running on Windows: slab memory and link speeds are not reported")
	default:
		logger.Warn("Running on unsupported platform, some metrics may not work", "os", runtime.GOOS)
	}
}
