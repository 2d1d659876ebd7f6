package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recordbook/internal/core"
)

func sampleRecords() []core.Record {
	ts := time.Date(2024, 1, 15, 13, 5, 42, 0, time.UTC)
	return []core.Record{
		{ID: 2, EID: "E2", Name: "Bob", Rights: "read", Status: "active", Remarks: "", UpdatedAt: ts},
		{ID: 1, EID: "E1", Name: "Alice", Rights: "admin", Status: "active", Remarks: "first", UpdatedAt: ts},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRecords()); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(CSVHeader, ",") {
		t.Errorf("unexpected header: %v", rows[0])
	}
	// Optional remarks rendered as empty string.
	if rows[1][5] != "" {
		t.Errorf("expected empty remarks, got %q", rows[1][5])
	}
	if rows[1][0] != "2" || rows[1][1] != "E2" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
	if rows[1][6] != "2024-01-15 13:05:42" {
		t.Errorf("unexpected timestamp rendering: %q", rows[1][6])
	}
}

func TestWriteCSVEmptySet(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected header only, got %d rows", len(rows))
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleRecords()); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var decoded []core.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(decoded))
	}
	if decoded[0].EID != "E2" || decoded[1].Remarks != "first" {
		t.Errorf("round-trip mismatch: %+v", decoded)
	}
}

func TestFilename(t *testing.T) {
	name := Filename("csv")
	if !strings.HasPrefix(name, "records_export_") || !strings.HasSuffix(name, ".csv") {
		t.Errorf("unexpected filename: %s", name)
	}
}

func TestFileWriter(t *testing.T) {
	// Dir does not exist yet; the writer must create it.
	dir := filepath.Join(t.TempDir(), "exports")
	fw := &FileWriter{Dir: dir}

	csvPath, err := fw.ExportCSV(sampleRecords())
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	jsonPath, err := fw.ExportJSON(sampleRecords())
	if err != nil {
		t.Fatalf("export json: %v", err)
	}

	for _, path := range []string{csvPath, jsonPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Errorf("export file %s is empty", path)
		}
		if filepath.Dir(path) != dir {
			t.Errorf("file %s written outside export dir", path)
		}
	}

	// Filenames must be distinct even within the same second.
	if csvPath == jsonPath {
		t.Error("expected distinct export paths")
	}

	second, err := fw.ExportCSV(sampleRecords())
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if second == csvPath {
		t.Error("consecutive exports produced the same filename")
	}
}
