package actions

import (
	"sort"
	"strings"

	c "github.com/relloyd/sparkify-dwh/constants"
)

// supportedConnectionTypes are the types that 'config connections add' accepts.
// Database types are matched against the DSN scheme.
var supportedConnectionTypes = map[string]struct{}{
	c.ConnectionTypeRedshift: {},
	c.ConnectionTypePostgres: {},
	c.ConnectionTypeAws:      {},
}

// IsSupportedConnectionType returns true if connectionType can be stored.
func IsSupportedConnectionType(connectionType string) bool {
	_, ok := supportedConnectionTypes[connectionType]
	return ok
}

// GetSupportedConnectionTypes returns a sorted CSV of the supported types.
func GetSupportedConnectionTypes() string {
	s := make([]string, 0, len(supportedConnectionTypes))
	for k := range supportedConnectionTypes {
		s = append(s, k)
	}
	sort.Strings(s)
	return strings.Join(s, ", ")
}

func isDatabaseConnectionType(connectionType string) bool {
	return connectionType == c.ConnectionTypeRedshift || connectionType == c.ConnectionTypePostgres
}
