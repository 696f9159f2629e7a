package actions

import (
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

type ConnectionLoader interface {
	LoadConnection(connectionName string) (shared.ConnectionDetails, error)
}

// TypedConnectionLoader can build a connection of connType when none is stored.
type TypedConnectionLoader interface {
	LoadConnectionOfType(connectionName string, connType string) (shared.ConnectionDetails, error)
}

type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

// ConnectionLister is satisfied by config.File.
type ConnectionLister interface {
	GetAllKeys() ([]string, error)
	GetConnectionDetails(connectionName string) (*shared.ConnectionDetails, error)
}

type ConnectionValidator interface {
	Parse() error
	GetMap(m map[string]string) map[string]string
	GetScheme() (string, error)
}
