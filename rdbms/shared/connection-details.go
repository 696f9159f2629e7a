package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/sparkify-dwh/constants"
	"github.com/xo/dburl"
)

// Keys used in ConnectionDetails.Data.
var DefaultConnectionKeyNames = struct {
	Dsn             string
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}{
	Dsn:             "dsn",
	AccessKeyId:     "accessKeyId",
	SecretAccessKey: "secretAccessKey",
	SessionToken:    "sessionToken",
	Region:          "region",
}

var secretKeys = map[string]struct{}{
	DefaultConnectionKeyNames.SecretAccessKey: {},
	DefaultConnectionKeyNames.SessionToken:    {},
	"password":                                {},
}

// ConnectionDetails holds credentials for a logical connection: a warehouse DSN or a set of AWS keys.
type ConnectionDetails struct {
	Type        string            `json:"type" errorTxt:"connection type" mandatory:"yes" yaml:"type"`
	LogicalName string            `json:"logicalName" errorTxt:"connection logical name" mandatory:"yes" yaml:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data"`
}

// String redacts passwords and secrets and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := []string{fmt.Sprintf("  type = %v", c.Type)}
	keys := make([]string, 0, len(c.Data))
	for k := range c.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := c.Data[k]
		if k == DefaultConnectionKeyNames.Dsn {
			v = RedactDsn(v)
		} else if _, ok := secretKeys[k]; ok {
			v = "xxxxx"
		}
		x = append(x, fmt.Sprintf("  %v = %v", k, v))
	}
	return strings.Join(x, "\n")
}

// IsDatabase returns true for connection types that carry a DSN.
func (c ConnectionDetails) IsDatabase() bool {
	return c.Type == constants.ConnectionTypeRedshift || c.Type == constants.ConnectionTypePostgres
}

// RedactDsn hides the password in a DSN. Unparseable input is hidden completely.
func RedactDsn(dsn string) string {
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "xxxxx"
	}
	return u.Redacted()
}
