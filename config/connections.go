package config

import (
	"fmt"

	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

// GetConnectionType returns the type of the named connection.
func (c *File) GetConnectionType(connectionName string) (string, error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return "", err
	}
	return d.Type, nil
}

// GetConnectionDetails fetches generic connection details using the connectionName to do the lookup.
// If the connection is not found then an error is produced.
func (c *File) GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error) {
	genericConn := &shared.ConnectionDetails{}
	if err := c.Get(connectionName, genericConn); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("connection %q is not configured: use 'config connections add' to create it", connectionName)
		}
		return nil, err
	}
	if genericConn.Type == "" {
		return nil, fmt.Errorf("unknown type for connection %q", connectionName)
	}
	return genericConn, nil
}

// LoadConnection satisfies shared.ConnectionGetter.
func (c *File) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	d, err := c.GetConnectionDetails(connectionName)
	if err != nil {
		return shared.ConnectionDetails{}, err
	}
	return *d, nil
}
