package rdbms

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

var reCredentials = regexp.MustCompile(`(?i)\b(ACCESS_KEY_ID|SECRET_ACCESS_KEY|SESSION_TOKEN)(\s+)'[^']*'`)

// MaskCredentials hides the literals that follow COPY credential keywords.
func MaskCredentials(sqltext string) string {
	return reCredentials.ReplaceAllString(sqltext, "$1$2'xxxxx'")
}

// SqlQuery streams the header and rows of sqltext to the handler i.
func SqlQuery(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string, i shared.SqlResultHandler) error {
	rows, err := db.QueryContext(ctx, sqltext)
	if err != nil {
		return fmt.Errorf("error during database query using SQL: '%v': %w", MaskCredentials(sqltext), err)
	}
	defer func() {
		_ = rows.Close()
	}()
	cols, err := rows.Columns()
	if err != nil {
		return errors.Wrap(err, "error fetching columns")
	}
	log.Debug("fetched columns ", cols)
	// Scan the values dynamically.
	scanPtrs := make([]interface{}, len(cols))
	scanVals := make([]interface{}, len(cols))
	for idx := range cols {
		scanPtrs[idx] = &scanVals[idx]
	}
	header := make([]interface{}, len(cols))
	for idx := range cols {
		header[idx] = cols[idx]
	}
	if err = i.HandleHeader(header); err != nil {
		return err
	}
	for rows.Next() {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = rows.Scan(scanPtrs...); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}
		row := make([]interface{}, len(cols))
		copy(row, scanVals)
		if err = i.HandleRow(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// recordCollector is a SqlResultHandler that keeps every row.
type recordCollector struct {
	rows [][]interface{}
}

func (r *recordCollector) HandleHeader(i []interface{}) error {
	return nil
}

func (r *recordCollector) HandleRow(i []interface{}) error {
	r.rows = append(r.rows, i)
	return nil
}

// GetRecords runs sqltext and returns all rows.
func GetRecords(ctx context.Context, log logger.Logger, db shared.Connector, sqltext string) ([][]interface{}, error) {
	c := &recordCollector{}
	if err := SqlQuery(ctx, log, db, sqltext, c); err != nil {
		return nil, err
	}
	return c.rows, nil
}

// RunStatements executes each statement in order and stops at the first error.
func RunStatements(ctx context.Context, log logger.Logger, db shared.Connector, stmts ...string) error {
	for idx, s := range stmts {
		if strings.TrimSpace(s) == "" {
			continue
		}
		masked := MaskCredentials(s)
		log.Debug("executing statement #", idx, ": ", masked)
		if _, err := db.ExecContext(ctx, s); err != nil {
			return errors.Wrapf(err, "error executing statement: %v", masked)
		}
	}
	return nil
}

// RunStatementsInTx executes stmts in a single transaction.
// Any failure rolls back and returns the error.
func RunStatementsInTx(ctx context.Context, log logger.Logger, db shared.Connector, stmts ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "error starting transaction")
	}
	for idx, s := range stmts {
		masked := MaskCredentials(s)
		log.Debug("executing statement #", idx, ": ", masked)
		if _, err = tx.ExecContext(ctx, s); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("rollback failed: ", rbErr)
			}
			return errors.Wrapf(err, "error executing statement: %v", masked)
		}
	}
	return errors.Wrap(tx.Commit(), "error committing transaction")
}
