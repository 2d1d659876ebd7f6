// Package export renders the full record set into CSV and JSON artifacts,
// either streamed to an HTTP response or written to a server-local
// directory as a side effect of a listing read.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"recordbook/internal/core"
)

// CSVHeader is the header row of every CSV export.
var CSVHeader = []string{"ID", "EID", "Name", "Rights", "Status", "Remarks", "Timestamp"}

// WriteCSV writes the records as CSV: one header row, one row per record,
// optional remarks rendered as an empty string.
func WriteCSV(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.EID,
			rec.Name,
			rec.Rights,
			rec.Status,
			rec.Remarks,
			rec.UpdatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the records as an indented JSON array with raw
// timestamps.
func WriteJSON(w io.Writer, records []core.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}

// Filename builds a timestamped attachment filename, e.g.
// records_export_20240115_130542.csv.
func Filename(ext string) string {
	return fmt.Sprintf("records_export_%s.%s", time.Now().Format("20060102_150405"), ext)
}

// FileWriter writes export artifacts into a server-local directory. It is
// the automatic trigger mode: invoked after a listing read when enabled in
// configuration.
type FileWriter struct {
	Dir string
}

// ExportCSV writes the records to a fresh CSV file and returns its path.
func (f *FileWriter) ExportCSV(records []core.Record) (string, error) {
	return f.write("csv", func(w io.Writer) error {
		return WriteCSV(w, records)
	})
}

// ExportJSON writes the records to a fresh JSON file and returns its path.
func (f *FileWriter) ExportJSON(records []core.Record) (string, error) {
	return f.write("json", func(w io.Writer) error {
		return WriteJSON(w, records)
	})
}

func (f *FileWriter) write(ext string, fn func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	// Second-resolution timestamps collide under concurrent listing
	// requests; the uuid suffix keeps each artifact distinct.
	name := fmt.Sprintf("records_export_%s_%s.%s",
		time.Now().Format("20060102_150405"),
		uuid.NewString()[:8],
		ext,
	)
	path := filepath.Join(f.Dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}

	if err := fn(file); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}

	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}

	return path, nil
}
