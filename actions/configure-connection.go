package actions

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/config"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

type ConnectionConfig struct {
	ConfigFile  ConnectionGetterSetter
	LogicalName string
	Type        string              // redshift or aws, as chosen by the subcommand
	ConnDetails ConnectionValidator // *shared.DsnConnectionDetails or *shared.AwsConnectionDetails
	Force       bool
	Out         io.Writer
}

// schemeAliases maps DSN schemes onto the connection types that are stored.
var schemeAliases = map[string]string{
	"rs":         c.ConnectionTypeRedshift,
	"postgresql": c.ConnectionTypePostgres,
	"pg":         c.ConnectionTypePostgres,
	"pgsql":      c.ConnectionTypePostgres,
}

func normaliseScheme(s string) string {
	s = strings.ToLower(s)
	if t, ok := schemeAliases[s]; ok {
		return t
	}
	return s
}

func RunConnectionAdd(cfg *ConnectionConfig) error {
	connection := shared.ConnectionDetails{
		LogicalName: cfg.LogicalName,
		Type:        cfg.Type,
		Data:        make(map[string]string),
	}
	if err := helper.ValidateStructIsPopulated(connection); err != nil { // if the basics were not supplied...
		return err
	}
	if strings.ContainsAny(cfg.LogicalName, ". ") {
		return fmt.Errorf("connection name %q cannot contain periods or spaces", cfg.LogicalName)
	}
	if cfg.ConnDetails == nil {
		return errors.New("missing connection details")
	}
	if err := cfg.ConnDetails.Parse(); err != nil {
		return errors.Wrap(err, "unable to create connection")
	}
	scheme, err := cfg.ConnDetails.GetScheme()
	if err != nil {
		return err
	}
	connection.Type = normaliseScheme(scheme)
	// A database connection must carry a DSN whose scheme speaks to the warehouse.
	if isDatabaseConnectionType(cfg.Type) != isDatabaseConnectionType(connection.Type) || !IsSupportedConnectionType(connection.Type) {
		return fmt.Errorf("%q is not a supported %v connection, please use one of these: %v", scheme, cfg.Type, GetSupportedConnectionTypes())
	}
	cfg.ConnDetails.GetMap(connection.Data)
	// Check for an existing saved connection.
	existing := &shared.ConnectionDetails{}
	err = cfg.ConfigFile.Get(cfg.LogicalName, existing)
	if err != nil {
		if !config.IsNotFound(err) {
			return err
		}
	} else if existing.LogicalName != "" && !cfg.Force { // else the connection exists but we may not overwrite it...
		return fmt.Errorf("connection exists, use force to update the connection or remove it first")
	}
	if err = cfg.ConfigFile.Set(cfg.LogicalName, &connection); err != nil {
		return fmt.Errorf("error writing connections config file after adding: %w", err)
	}
	_, _ = fmt.Fprintf(out(cfg.Out), "Connection %q added\n", cfg.LogicalName)
	return nil
}

func RunConnectionRemove(cfg *ConnectionConfig) error {
	if cfg.LogicalName == "" {
		return errors.New("please supply a value for connection name")
	}
	if err := cfg.ConfigFile.Delete(cfg.LogicalName); err != nil {
		return fmt.Errorf("unable to delete connection %q from config: %w", cfg.LogicalName, err)
	}
	_, _ = fmt.Fprintf(out(cfg.Out), "Connection %q removed\n", cfg.LogicalName)
	return nil
}

// RunConnectionList prints every stored connection with secrets redacted.
func RunConnectionList(l ConnectionLister, w io.Writer) error {
	keys, err := l.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		conn, err := l.GetConnectionDetails(k)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out(w), "%v:\n%v\n", k, conn)
	}
	return nil
}
