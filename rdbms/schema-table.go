package rdbms

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reQuotedDottedTable = regexp.MustCompile(`^".+\..+"$`) // "random.table"
	reQuotedSchemaTable = regexp.MustCompile(`^".+"\.".+"$`)
	reIdentifier        = regexp.MustCompile(`^("[^"]+"|[A-Za-z_][A-Za-z0-9_$]*)$`)
)

// SchemaTable parses names of the form [<schema>.]<table>.
type SchemaTable struct {
	SchemaTable string `errorTxt:"[<schema>.]<table>" mandatory:"yes"`
}

func NewSchemaTable(schema string, table string) SchemaTable {
	if schema == "" {
		return SchemaTable{table}
	}
	return SchemaTable{schema + "." + table}
}

// isQuotedTable is true for a quoted "random.table" that is not a "schema"."table".
func (st SchemaTable) isQuotedTable() bool {
	return reQuotedDottedTable.MatchString(st.SchemaTable) && !reQuotedSchemaTable.MatchString(st.SchemaTable)
}

func (st SchemaTable) split() (schema string, table string) {
	if st.isQuotedTable() {
		return "", st.SchemaTable
	}
	i := strings.Index(st.SchemaTable, ".")
	if i < 0 {
		return "", st.SchemaTable
	}
	return st.SchemaTable[:i], st.SchemaTable[i+1:]
}

func (st SchemaTable) GetTable() string {
	_, t := st.split()
	return t
}

func (st SchemaTable) GetSchema() string {
	s, _ := st.split()
	return s
}

// Validate rejects names that could not be used as a table in generated SQL.
func (st SchemaTable) Validate() error {
	schema, table := st.split()
	if !reIdentifier.MatchString(table) {
		return fmt.Errorf("invalid table name %q", st.SchemaTable)
	}
	if schema != "" && !reIdentifier.MatchString(schema) {
		return fmt.Errorf("invalid schema name in %q", st.SchemaTable)
	}
	return nil
}

func (st SchemaTable) String() string {
	return st.SchemaTable
}
