package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"racefeatures/internal/services"
)

// Recorder renders itself as one CSV record.
type Recorder interface {
	Record() []string
}

// Records converts rows into string records.
func Records[R Recorder](rows []R) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record())
	}
	return out
}

// WriteCSV replaces path with a header row followed by records. The file is
// written to a temporary sibling and renamed into place, so readers never
// observe a partial file. Zero records produce a headers-only file.
func WriteCSV(path string, header []string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return services.Wrap(services.ErrOutput, "report", "encode csv", "header", err)
	}
	for i, record := range records {
		if len(record) != len(header) {
			return services.Wrap(services.ErrOutput, "report", "encode csv",
				fmt.Sprintf("record %d has %d fields, want %d", i, len(record), len(header)), nil)
		}
	}
	if err := w.WriteAll(records); err != nil {
		return services.Wrap(services.ErrOutput, "report", "encode csv", "records", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrOutput, "report", "write csv", "ensure output directory", err)
		}
	}
	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return services.Wrap(services.ErrOutput, "report", "write csv", path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
