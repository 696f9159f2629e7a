package file

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/logger"
)

// CsvExport writes SQL result rows to numbered CSV files in a directory, starting a new file
// every MaxFileRows rows. Each file repeats the header.
type CsvExport struct {
	log         logger.Logger
	directory   string
	prefix      string
	extension   string
	maxFileRows int
	useGzip     bool
	header      []string
	suffixID    int
	currentRows int
	TotalRows   int
	file        *os.File
	gzWriter    *gzip.Writer
	bufWriter   *bufio.Writer
	csvWriter   *csv.Writer
	OutputFiles []string
}

// NewCsvExport creates the directory if needed.
// Set maxFileRows to 0 to write a single file.
// With useGzip the extension gains a ".gz" suffix.
func NewCsvExport(log logger.Logger, directory string, prefix string, maxFileRows int, useGzip bool) (*CsvExport, error) {
	if directory == "" {
		return nil, errors.New("missing export directory")
	}
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create export directory %q", directory)
	}
	if prefix == "" {
		prefix = "export"
	}
	ext := "csv"
	if useGzip {
		ext = "csv.gz"
	}
	log.Debug("CsvExport directory=", directory, "; prefix=", prefix, "; maxFileRows=", maxFileRows, "; useGzip=", useGzip)
	return &CsvExport{
		log:         log,
		directory:   directory,
		prefix:      prefix,
		extension:   ext,
		maxFileRows: maxFileRows,
		useGzip:     useGzip,
	}, nil
}

// HandleHeader saves the column names for each file.
func (f *CsvExport) HandleHeader(i []interface{}) error {
	f.header = helper.InterfaceToString(i)
	return nil
}

// HandleRow writes a row, rotating to a new file first if the current one is full.
func (f *CsvExport) HandleRow(i []interface{}) error {
	if f.csvWriter == nil || (f.maxFileRows > 0 && f.currentRows >= f.maxFileRows) {
		if err := f.rotate(); err != nil {
			return err
		}
	}
	if err := f.csvWriter.Write(helper.InterfaceToString(i)); err != nil {
		return errors.Wrapf(err, "unable to write to %v", f.file.Name())
	}
	f.currentRows++
	f.TotalRows++
	return nil
}

// Close flushes and closes the current file. It is safe to call more than once.
func (f *CsvExport) Close() error {
	if f.file == nil {
		return nil
	}
	f.csvWriter.Flush()
	err := f.csvWriter.Error()
	if f.useGzip {
		if e := f.bufWriter.Flush(); e != nil && err == nil {
			err = e
		}
		if e := f.gzWriter.Close(); e != nil && err == nil {
			err = e
		}
	}
	if e := f.file.Close(); e != nil && err == nil {
		err = e
	}
	f.file = nil
	f.csvWriter = nil
	if err != nil {
		return errors.Wrap(err, "unable to close CSV file")
	}
	return nil
}

func (f *CsvExport) rotate() error {
	if err := f.Close(); err != nil {
		return err
	}
	f.suffixID++
	name := filepath.Join(f.directory, fmt.Sprintf("%v_%06d.%v", f.prefix, f.suffixID, f.extension))
	f.log.Info("Creating new CSV file '", name, "'")
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %v", name)
	}
	f.file = file
	var w io.Writer = file
	if f.useGzip {
		f.gzWriter = gzip.NewWriter(file)
		f.bufWriter = bufio.NewWriter(f.gzWriter)
		w = f.bufWriter
	}
	f.csvWriter = csv.NewWriter(w)
	f.currentRows = 0
	f.OutputFiles = append(f.OutputFiles, name)
	if f.header != nil {
		if err := f.csvWriter.Write(f.header); err != nil {
			return errors.Wrap(err, "unable to write CSV header")
		}
	}
	return nil
}

// Summary describes the files written.
func (f *CsvExport) Summary() string {
	return fmt.Sprintf("%v rows written to %v file(s): %v", f.TotalRows, len(f.OutputFiles), strings.Join(f.OutputFiles, ", "))
}
