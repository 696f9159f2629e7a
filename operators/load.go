package operators

import (
	"context"
	"fmt"

	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/rdbms"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

// LoadFact appends the rows of SqlInsert to the fact table.
type LoadFact struct {
	Db        shared.Connector
	Table     string
	SqlInsert string
}

func (o *LoadFact) Execute(ctx context.Context, rc *dag.RunContext) error {
	if err := validateTable(o.Table); err != nil {
		return err
	}
	rc.Log.Info("Load data to fact table ", o.Table)
	return rdbms.RunStatements(ctx, rc.Log, o.Db, fmt.Sprintf("INSERT INTO %v %v", o.Table, o.SqlInsert))
}

// LoadDimension fills a dimension table, optionally emptying it first.
type LoadDimension struct {
	Db        shared.Connector
	Table     string
	SqlInsert string
	Truncate  bool
}

func (o *LoadDimension) Execute(ctx context.Context, rc *dag.RunContext) error {
	if err := validateTable(o.Table); err != nil {
		return err
	}
	if o.Truncate {
		rc.Log.Info("Truncate dimension table ", o.Table)
		if err := rdbms.RunStatements(ctx, rc.Log, o.Db, fmt.Sprintf("TRUNCATE TABLE %v;", o.Table)); err != nil {
			return err
		}
	}
	rc.Log.Info("Load data to dimension table ", o.Table)
	return rdbms.RunStatements(ctx, rc.Log, o.Db, fmt.Sprintf("INSERT INTO %v %v;", o.Table, o.SqlInsert))
}

// Empty does nothing. It marks the start and end of a DAG.
type Empty struct{}

func (Empty) Execute(ctx context.Context, rc *dag.RunContext) error {
	return nil
}
