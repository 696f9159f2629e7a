package file

import (
	"compress/gzip"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/relloyd/sparkify-dwh/logger"
)

var header = []interface{}{"level", "count"}

var data = [][]interface{}{
	{"free", int64(10)},
	{"paid", int64(20)},
	{"free", int64(30)},
	{"paid", []byte("40")},
}

func readCsv(t *testing.T, name string, gz bool) [][]string {
	t.Helper()
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	if gz {
		z, err := gzip.NewReader(f)
		if err != nil {
			t.Fatal(err)
		}
		defer z.Close()
		r = csv.NewReader(z)
	}
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestCsvExportRotates(t *testing.T) {
	log := logger.NewLogger("csv test", "error", false)
	dir := filepath.Join(t.TempDir(), "out")
	e, err := NewCsvExport(log, dir, "songplays", 3, false)
	if err != nil {
		t.Fatal(err)
	}
	_ = e.HandleHeader(header)
	for _, r := range data {
		if err := e.HandleRow(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if len(e.OutputFiles) != 2 || e.TotalRows != 4 {
		t.Fatalf("expected 2 files and 4 rows; got %v files, %v rows", len(e.OutputFiles), e.TotalRows)
	}
	if filepath.Base(e.OutputFiles[0]) != "songplays_000001.csv" {
		t.Fatalf("unexpected file name %v", e.OutputFiles[0])
	}
	r1 := readCsv(t, e.OutputFiles[0], false)
	if len(r1) != 4 || r1[0][0] != "level" || r1[1][1] != "10" {
		t.Fatalf("unexpected contents of file 1: %v", r1)
	}
	r2 := readCsv(t, e.OutputFiles[1], false)
	if len(r2) != 2 || r2[0][1] != "count" || r2[1][1] != "40" {
		t.Fatalf("unexpected contents of file 2: %v", r2)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestCsvExportGzip(t *testing.T) {
	log := logger.NewLogger("csv test", "error", false)
	e, err := NewCsvExport(log, t.TempDir(), "", 0, true)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range data {
		if err := e.HandleRow(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if len(e.OutputFiles) != 1 || filepath.Base(e.OutputFiles[0]) != "export_000001.csv.gz" {
		t.Fatalf("unexpected files %v", e.OutputFiles)
	}
	rows := readCsv(t, e.OutputFiles[0], true)
	if len(rows) != 4 || rows[2][0] != "free" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestCsvExportNeedsDirectory(t *testing.T) {
	log := logger.NewLogger("csv test", "error", false)
	if _, err := NewCsvExport(log, "", "x", 0, false); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
