package actions

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/relloyd/sparkify-dwh/file"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/rdbms"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

type QueryConfig struct {
	Connections      ConnectionLoader `errorTxt:"connection store" mandatory:"yes"`
	ConnectionName   string           `errorTxt:"connection name" mandatory:"yes"`
	Query            string           `errorTxt:"query" mandatory:"yes"`
	PrintHeader      bool
	Output           string // csv (default) or table
	DryRun           bool
	ExportDir        string // write numbered CSV files here instead of to Out
	MaxFileRows      int
	Gzip             bool
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

// csvHandler streams rows to w as they arrive.
type csvHandler struct {
	w           *csv.Writer
	printHeader bool
}

func (s *csvHandler) HandleHeader(i []interface{}) error {
	if !s.printHeader {
		return nil
	}
	if err := s.w.Write(helper.InterfaceToString(i)); err != nil {
		return fmt.Errorf("error outputting SQL header: %w", err)
	}
	s.w.Flush()
	return s.w.Error()
}

func (s *csvHandler) HandleRow(i []interface{}) error {
	if err := s.w.Write(helper.InterfaceToString(i)); err != nil {
		return fmt.Errorf("error outputting SQL row: %w", err)
	}
	s.w.Flush()
	return s.w.Error()
}

// tableHandler buffers rows so that column widths can be computed.
type tableHandler struct {
	t *tablewriter.Table
}

func (s *tableHandler) HandleHeader(i []interface{}) error {
	s.t.SetHeader(helper.InterfaceToString(i))
	return nil
}

func (s *tableHandler) HandleRow(i []interface{}) error {
	s.t.Append(helper.InterfaceToString(i))
	return nil
}

func RunQuery(cfg *QueryConfig) error {
	if cfg.DryRun {
		_, _ = fmt.Fprintln(out(cfg.Out), cfg.Query)
		return nil
	}
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	db, err := openWarehouse(log, cfg.Connections, cfg.ConnectionName)
	if err != nil {
		return err
	}
	defer db.Close()
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	w := out(cfg.Out)
	if cfg.ExportDir != "" {
		return exportQuery(ctx, log, db, cfg, w)
	}
	switch cfg.Output {
	case "", "csv":
		err = rdbms.SqlQuery(ctx, log, db, cfg.Query, &csvHandler{w: csv.NewWriter(w), printHeader: cfg.PrintHeader})
	case OutputTable:
		h := &tableHandler{t: tablewriter.NewWriter(w)}
		h.t.SetAutoWrapText(false)
		if err = rdbms.SqlQuery(ctx, log, db, cfg.Query, h); err == nil {
			h.t.Render()
		}
	default:
		return fmt.Errorf("unsupported output format %q", cfg.Output)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("user abort: %w", ctx.Err())
	}
	return err
}

func exportQuery(ctx context.Context, log logger.Logger, db shared.Connector, cfg *QueryConfig, w io.Writer) error {
	e, err := file.NewCsvExport(log, cfg.ExportDir, "query", cfg.MaxFileRows, cfg.Gzip)
	if err != nil {
		return err
	}
	err = rdbms.SqlQuery(ctx, log, db, cfg.Query, e)
	if cerr := e.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, e.Summary())
	return nil
}
