package rdbms

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
	"github.com/xo/dburl"
)

const pingTimeout = 30 * time.Second

// supportedDsnConnectionTypes are the connection types that speak the Postgres wire protocol.
var supportedDsnConnectionTypes = map[string]struct{}{
	constants.ConnectionTypeRedshift: {},
	constants.ConnectionTypePostgres: {},
}

func isSupportedConnection(connectionType string) bool {
	_, ok := supportedDsnConnectionTypes[connectionType]
	return ok
}

// OpenDbConnection opens a database connection using the supplied ConnectionDetails struct in c.
func OpenDbConnection(log logger.Logger, c shared.ConnectionDetails) (shared.Connector, error) {
	log.Debug("opening connection type ", c.Type, " with logicalName ", c.LogicalName) // don't log password details in c.Data!
	if !isSupportedConnection(c.Type) {
		return nil, fmt.Errorf("unsupported database type, %q", c.Type)
	}
	return newConnectionWithDsn(log, c.Type, shared.GetDsnConnectionDetails(&c))
}

// NewConnectionFromDB wraps an already open *sql.DB.
func NewConnectionFromDB(db *sql.DB, dbType string) shared.Connector {
	return &shared.HpConnection{DbSql: db, DbType: dbType}
}

func newConnectionWithDsn(log logger.Logger, dbType string, d *shared.DsnConnectionDetails) (shared.Connector, error) {
	log.Info("Opening database connection: ", d)
	u, err := dburl.Parse(d.Dsn)
	if err != nil { // if the DSN could not be parsed...
		return nil, fmt.Errorf("error parsing DSN %q: %w", d.String(), err)
	}
	driver := u.Driver
	if driver == constants.ConnectionTypeRedshift { // redshift is served by the postgres driver
		driver = "postgres"
	}
	db, err := sql.Open(driver, u.DSN)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error connecting to %v: %w", d.String(), err)
	}
	log.Info("Successful connection to: ", d)
	return NewConnectionFromDB(db, dbType), nil
}
