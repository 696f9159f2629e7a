// Package operators holds the tasks that move Sparkify data through Redshift.
package operators

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/rdbms"
)

// renderTemplate executes text as a Go template over the run context.
// Sprig functions are available, e.g. {{ .LogicalDate | date "2006/01" }}.
func renderTemplate(name string, text string, rc *dag.RunContext) (string, error) {
	t, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", errors.Wrapf(err, "error parsing %v template %q", name, text)
	}
	var b bytes.Buffer
	if err = t.Execute(&b, rc); err != nil {
		return "", errors.Wrapf(err, "error rendering %v template %q", name, text)
	}
	return b.String(), nil
}

func validateTable(table string) error {
	if table == "" {
		return errors.New("table name is required")
	}
	return rdbms.SchemaTable{SchemaTable: table}.Validate()
}
