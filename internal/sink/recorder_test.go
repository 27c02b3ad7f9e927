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
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open output file: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			t.Logf("Failed to close file: %v", err)
		}
	}()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	return records
}

// runRecorder writes everything queued so far and closes the recorder.
func runRecorder(t *testing.T, r *Recorder) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Start(ctx); err != nil {
		t.Errorf("Recorder finished with error: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Failed to close recorder: %v", err)
	}
}

func newTestRecorder(t *testing.T, path string, maxSize int64, resolver Resolver) *Recorder {
	t.Helper()

	r, err := NewRecorder(RecorderOptions{
		Path:          path,
		BufferSize:    10,
		FlushInterval: 100 * time.Millisecond,
		MaxFileSize:   maxSize,
		Location:      time.UTC,
	}, resolver, discardLogger())
	if err != nil {
		t.Fatalf("NewRecorder() error = %v", err)
	}
	r.now = func() time.Time { return time.Date(2023, 10, 26, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestRecorder_Export(t *testing.T) {
	c, resolver := tickedController(t)
	outputPath := filepath.Join(t.TempDir(), "record.csv")

	r := newTestRecorder(t, outputPath, 0, resolver)
	r.OnSeriesUpdated(c.ID())
	r.OnSeriesUpdated("unknown")
	runRecorder(t, r)

	records := readCSV(t, outputPath)
	if len(records) != 4 {
		t.Fatalf("Expected 4 records (Header + 3 Rows), got %d: %v", len(records), records)
	}

	expectedHeader := []string{"Timestamp", "Indicator", "Series", "Value", "Status"}
	for i, h := range records[0] {
		if h != expectedHeader[i] {
			t.Errorf("Header[%d] = %q, want %q", i, h, expectedHeader[i])
		}
	}

	expectedRow := []string{"2023-10-26 12:00:00.000", "stub", "b", "0.2500", "warn"}
	for i, v := range records[2] {
		if v != expectedRow[i] {
			t.Errorf("Row[%d] = %q, want %q", i, v, expectedRow[i])
		}
	}
}

func TestRecorder_AppendKeepsSingleHeader(t *testing.T) {
	c, resolver := tickedController(t)
	outputPath := filepath.Join(t.TempDir(), "record.csv")

	for i := 0; i < 2; i++ {
		r := newTestRecorder(t, outputPath, 0, resolver)
		r.OnSeriesUpdated(c.ID())
		runRecorder(t, r)
	}

	records := readCSV(t, outputPath)
	if len(records) != 7 {
		t.Fatalf("Expected 7 records (Header + 6 Rows), got %d", len(records))
	}
	if records[4][0] == "Timestamp" {
		t.Error("header repeated when appending")
	}
}

func TestRecorder_Rotation(t *testing.T) {
	c, resolver := tickedController(t)
	tempDir := t.TempDir()
	outputPath := filepath.Join(tempDir, "record.csv")

	// Every row exceeds the limit, so each record after the first rotates.
	r := newTestRecorder(t, outputPath, 10, resolver)
	r.OnSeriesUpdated(c.ID())
	runRecorder(t, r)

	for _, name := range []string{"record.csv", "record_1.csv", "record_2.csv"} {
		records := readCSV(t, filepath.Join(tempDir, name))
		if len(records) != 2 {
			t.Errorf("%s has %d records, want header + 1 row", name, len(records))
			continue
		}
		if records[0][0] != "Timestamp" {
			t.Errorf("%s missing header: %v", name, records[0])
		}
	}
}

func TestRecorder_RotationNoOverwrite(t *testing.T) {
	c, resolver := tickedController(t)
	tempDir := t.TempDir()
	outputPath := filepath.Join(tempDir, "record.csv")

	existing := filepath.Join(tempDir, "record_1.csv")
	if err := os.WriteFile(existing, []byte("keep me\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRecorder(t, outputPath, 10, resolver)
	r.OnSeriesUpdated(c.ID())
	runRecorder(t, r)

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "keep me\n" {
		t.Errorf("existing rotated file overwritten: %q", data)
	}

	for _, name := range []string{"record_2.csv", "record_3.csv"} {
		if _, err := os.Stat(filepath.Join(tempDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestRecorder_QueueFullDrops(t *testing.T) {
	c, resolver := tickedController(t)
	r := newTestRecorder(t, filepath.Join(t.TempDir(), "record.csv"), 0, resolver)

	for i := 0; i < cap(r.records)+5; i++ {
		r.OnSeriesUpdated(c.ID())
	}

	if len(r.records) != cap(r.records) {
		t.Errorf("queue length = %d, want %d", len(r.records), cap(r.records))
	}
	runRecorder(t, r)
}

func TestRecorder_RotationFailureKeepsCurrentFile(t *testing.T) {
	c, resolver := tickedController(t)
	outputPath := filepath.Join(t.TempDir(), "record.csv")

	r := newTestRecorder(t, outputPath, 10, resolver)
	attempts := 0
	r.openFile = func(string, int, os.FileMode) (*os.File, error) {
		attempts++
		return nil, os.ErrPermission
	}

	r.OnSeriesUpdated(c.ID())
	r.OnSeriesUpdated(c.ID())
	runRecorder(t, r)

	if attempts != 1 {
		t.Errorf("rotation attempts = %d, want 1", attempts)
	}
	if r.fileIndex != 0 {
		t.Errorf("fileIndex = %d, want 0", r.fileIndex)
	}

	records := readCSV(t, outputPath)
	if len(records) != 7 {
		t.Errorf("Expected 7 records (Header + 6 Rows) in the original file, got %d", len(records))
	}
}
