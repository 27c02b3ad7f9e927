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
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/phuonguno98/panelstat/internal/indicator"
	"github.com/phuonguno98/panelstat/pkg/metrics"
)

// Record is one series value at one tick.
type Record struct {
	Timestamp time.Time
	Indicator string
	Series    string
	Value     float64
	Status    metrics.Status
}

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	Path          string
	BufferSize    int           // Records written before a forced flush
	FlushInterval time.Duration // Maximum time before a flush
	MaxFileSize   int64         // Rotation threshold in bytes
	Location      *time.Location
}

var recordHeader = []string{"Timestamp", "Indicator", "Series", "Value", "Status"}

// Recorder appends the latest value of every series to a CSV file with
// buffering and size-based rotation.
type Recorder struct {
	opts     RecorderOptions
	resolver Resolver
	logger   *slog.Logger
	now      func() time.Time

	records chan []Record

	file          *os.File
	csvWriter     *csv.Writer
	bufWriter     *bufio.Writer
	recordCount   int
	headerWritten bool
	currentSize   int64 // Current file size in bytes
	fileIndex     int   // Index for file rotation
	rotateFailed  bool

	openFile func(name string, flag int, perm os.FileMode) (*os.File, error)
}

// NewRecorder opens (or appends to) the output file.
func NewRecorder(opts RecorderOptions, resolver Resolver, logger *slog.Logger) (*Recorder, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.BufferSize < 1 {
		opts.BufferSize = 1
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = time.Second
	}

	file, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}

	// Get initial file size (if appending)
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bufWriter := bufio.NewWriterSize(file, 8192)

	return &Recorder{
		opts:          opts,
		resolver:      resolver,
		logger:        logger,
		now:           time.Now,
		records:       make(chan []Record, 64),
		file:          file,
		bufWriter:     bufWriter,
		csvWriter:     csv.NewWriter(bufWriter),
		currentSize:   stat.Size(),
		headerWritten: stat.Size() > 0,
		openFile:      os.OpenFile,
	}, nil
}

// OnSeriesUpdated implements indicator.RenderSink. It never blocks; batches
// are dropped while the writer is behind.
func (r *Recorder) OnSeriesUpdated(id string) {
	c, ok := r.resolver.Lookup(id)
	if !ok {
		return
	}

	batch := CollectRecords(c, r.now())
	if len(batch) == 0 {
		return
	}

	select {
	case r.records <- batch:
	default:
		r.logger.Warn("Recorder queue full, dropping records", "indicator", c.Name())
	}
}

// CollectRecords returns the latest value of each bar series, followed by
// graph-only series.
func CollectRecords(c *indicator.Controller, ts time.Time) []Record {
	var out []Record

	bars := c.Bars()
	seen := make(map[string]bool)
	for _, name := range bars.Names() {
		seen[name] = true
		v, ok := bars.Latest(name)
		if !ok {
			continue
		}
		status, _ := bars.Status(name)
		out = append(out, Record{Timestamp: ts, Indicator: c.Name(), Series: name, Value: v, Status: status})
	}

	if g := c.Indicator().Graph(); g != nil {
		store := g.Store()
		for _, name := range store.Names() {
			if seen[name] {
				continue
			}
			v, ok := store.Latest(name)
			if !ok {
				continue
			}
			status, _ := store.Status(name)
			out = append(out, Record{Timestamp: ts, Indicator: c.Name(), Series: name, Value: v, Status: status})
		}
	}

	return out
}

// Start writes queued records until ctx is cancelled.
func (r *Recorder) Start(ctx context.Context) error {
	r.logger.Info("Starting CSV recorder", "output", r.opts.Path, "timezone", r.opts.Location.String())

	flushTicker := time.NewTicker(r.opts.FlushInterval)
	defer flushTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.drain()
			r.logger.Info("CSV recorder stopping...")
			return r.flush()

		case batch := <-r.records:
			r.writeBatch(batch)

		case <-flushTicker.C:
			// Time-based flush
			if r.recordCount > 0 {
				if err := r.flush(); err != nil {
					r.logger.Error("Failed to flush", "error", err)
				}
				r.recordCount = 0
			}
		}
	}
}

// drain writes whatever is still queued.
func (r *Recorder) drain() {
	for {
		select {
		case batch := <-r.records:
			r.writeBatch(batch)
		default:
			return
		}
	}
}

func (r *Recorder) writeBatch(batch []Record) {
	for _, rec := range batch {
		if err := r.write(rec); err != nil {
			r.logger.Error("Failed to write record", "error", err)
			continue
		}
		r.recordCount++
	}

	// Flush if buffer size reached
	if r.recordCount >= r.opts.BufferSize {
		if err := r.flush(); err != nil {
			r.logger.Error("Failed to flush", "error", err)
		}
		r.recordCount = 0
	}
}

// write writes a single record, rotating first when the file is full.
func (r *Recorder) write(rec Record) error {
	if r.opts.MaxFileSize > 0 && r.currentSize >= r.opts.MaxFileSize && !r.rotateFailed {
		if err := r.rotateFile(); err != nil {
			r.rotateFailed = true
			r.logger.Error("Failed to rotate file, recording continues in the current file", "error", err)
		}
	}

	if !r.headerWritten {
		if err := r.writeRow(recordHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		r.headerWritten = true
	}

	return r.writeRow(r.buildRow(rec))
}

func (r *Recorder) writeRow(row []string) error {
	if err := r.csvWriter.Write(row); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}

	// Approximate size tracking
	size := 1
	for _, cell := range row {
		size += len(cell) + 1
	}
	r.currentSize += int64(size)
	return nil
}

// buildRow formats a record in the configured timezone.
func (r *Recorder) buildRow(rec Record) []string {
	return []string{
		rec.Timestamp.In(r.opts.Location).Format("2006-01-02 15:04:05.000"),
		rec.Indicator,
		rec.Series,
		strconv.FormatFloat(rec.Value, 'f', 4, 64),
		rec.Status.String(),
	}
}

// flush flushes the buffered data to disk.
func (r *Recorder) flush() error {
	r.csvWriter.Flush()
	if err := r.csvWriter.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	if err := r.bufWriter.Flush(); err != nil {
		return fmt.Errorf("buffer writer error: %w", err)
	}

	r.logger.Debug("Flushed to disk", "records", r.recordCount)
	return nil
}

// Close flushes remaining data and closes the file. Call it after Start returns.
func (r *Recorder) Close() error {
	r.logger.Info("Closing CSV recorder")

	if err := r.flush(); err != nil {
		r.logger.Error("Final flush failed", "error", err)
	}

	if err := r.file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	return nil
}

// rotateFile switches to <base>_<n><ext>, skipping names that already exist.
// The current file stays open until the new one has been created.
func (r *Recorder) rotateFile() error {
	r.logger.Info("Rotating output file", "current_size", r.currentSize)

	if err := r.flush(); err != nil {
		return fmt.Errorf("flush before rotate failed: %w", err)
	}

	ext := filepath.Ext(r.opts.Path)
	base := strings.TrimSuffix(r.opts.Path, ext)

	index := r.fileIndex
	var (
		file    *os.File
		newPath string
	)
	for {
		index++
		newPath = fmt.Sprintf("%s_%d%s", base, index, ext)
		f, err := r.openFile(newPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			file = f
			break
		}
		if !os.IsExist(err) {
			return fmt.Errorf("failed to open new rotated file: %w", err)
		}
	}

	if err := r.file.Close(); err != nil {
		r.logger.Warn("Failed to close previous file", "error", err)
	}

	r.file = file
	r.fileIndex = index
	r.bufWriter = bufio.NewWriterSize(file, 8192)
	r.csvWriter = csv.NewWriter(r.bufWriter)
	r.currentSize = 0
	r.headerWritten = false

	r.logger.Info("File rotated successfully", "new_path", newPath)
	return nil
}
