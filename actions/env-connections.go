package actions

import (
	"fmt"

	"github.com/pkg/errors"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

// Standard AWS SDK variables that override a stored aws connection.
const (
	EnvVarAwsAccessKeyId     = "AWS_ACCESS_KEY_ID"
	EnvVarAwsSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvVarAwsSessionToken    = "AWS_SESSION_TOKEN"
	EnvVarAwsRegion          = "AWS_REGION"
	EnvVarAwsDefaultRegion   = "AWS_DEFAULT_REGION"
)

// EnvConnections loads connections with environment overrides applied.
// SDW_<NAME>_DSN replaces a stored database connection and the AWS_* variables
// replace the matching keys of a stored aws connection.
// With no Fallback, as in 12 factor mode, connections come from the environment alone.
type EnvConnections struct {
	Fallback ConnectionLoader
}

// LoadConnection returns the stored or DSN-overridden connection.
// A missing connection is an error. Use LoadConnectionOfType to let AWS_* stand in for one.
func (e *EnvConnections) LoadConnection(connectionName string) (shared.ConnectionDetails, error) {
	return e.LoadConnectionOfType(connectionName, "")
}

// LoadConnectionOfType is LoadConnection, except that when connType is aws and the connection is
// missing, a connection built from the AWS_* variables is returned if they supply a region.
func (e *EnvConnections) LoadConnectionOfType(connectionName string, connType string) (shared.ConnectionDetails, error) {
	var dsn string
	if err := helper.ReadValueFromEnv(helper.GetDsnEnvVarName(connectionName), &dsn); err == nil {
		d := &shared.DsnConnectionDetails{Dsn: dsn}
		scheme, err := d.GetScheme()
		if err != nil {
			return shared.ConnectionDetails{}, errors.Wrapf(err, "error in %v", helper.GetDsnEnvVarName(connectionName))
		}
		return shared.ConnectionDetails{
			Type:        normaliseScheme(scheme),
			LogicalName: connectionName,
			Data:        d.GetMap(nil),
		}, nil
	}
	var conn shared.ConnectionDetails
	var loadErr error
	if e.Fallback != nil {
		conn, loadErr = e.Fallback.LoadConnection(connectionName)
	} else {
		loadErr = fmt.Errorf("connection %q not found: set %v or the AWS_* variables", connectionName, helper.GetDsnEnvVarName(connectionName))
	}
	if loadErr == nil && conn.Type != c.ConnectionTypeAws {
		return conn, nil
	}
	if loadErr != nil && connType != c.ConnectionTypeAws {
		return shared.ConnectionDetails{}, loadErr
	}
	a := &shared.AwsConnectionDetails{}
	if loadErr == nil {
		a = shared.GetAwsConnectionDetails(&conn)
	}
	overlayAwsEnv(a)
	if loadErr != nil && a.Region == "" { // if the environment cannot stand in for the missing connection...
		return shared.ConnectionDetails{}, loadErr
	}
	if err := a.Parse(); err != nil {
		return shared.ConnectionDetails{}, errors.Wrapf(err, "invalid aws connection %q", connectionName)
	}
	return shared.ConnectionDetails{
		Type:        c.ConnectionTypeAws,
		LogicalName: connectionName,
		Data:        a.GetMap(nil),
	}, nil
}

func overlayAwsEnv(a *shared.AwsConnectionDetails) {
	key := helper.ReadValueFromEnvWithDefault(EnvVarAwsAccessKeyId, "")
	secret := helper.ReadValueFromEnvWithDefault(EnvVarAwsSecretAccessKey, "")
	if key != "" && secret != "" { // the pair is replaced together.
		a.AccessKeyId = key
		a.SecretAccessKey = secret
		a.SessionToken = helper.ReadValueFromEnvWithDefault(EnvVarAwsSessionToken, "")
	}
	region := helper.ReadValueFromEnvWithDefault(EnvVarAwsRegion, helper.ReadValueFromEnvWithDefault(EnvVarAwsDefaultRegion, ""))
	if region != "" {
		a.Region = region
	}
}
