package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearAwsEnv(t *testing.T) {
	for _, k := range []string{EnvVarAwsAccessKeyId, EnvVarAwsSecretAccessKey, EnvVarAwsSessionToken, EnvVarAwsRegion, EnvVarAwsDefaultRegion} {
		t.Setenv(k, "")
	}
}

func TestEnvConnectionsDsnOverride(t *testing.T) {
	clearAwsEnv(t)
	t.Setenv("SDW_REDSHIFT_DSN", "rs://other:pw@override.example.com:5439/dwh")
	e := &EnvConnections{Fallback: testConnections}
	conn, err := e.LoadConnection("redshift")
	require.NoError(t, err)
	assert.Equal(t, "redshift", conn.Type)
	assert.Equal(t, "rs://other:pw@override.example.com:5439/dwh", conn.Data["dsn"])

	t.Setenv("SDW_REDSHIFT_DSN", "")
	conn, err = e.LoadConnection("redshift")
	require.NoError(t, err)
	assert.Equal(t, testConnections["redshift"].Data["dsn"], conn.Data["dsn"])
}

func TestEnvConnectionsAwsOverlay(t *testing.T) {
	clearAwsEnv(t)
	e := &EnvConnections{Fallback: testConnections}

	conn, err := e.LoadConnection("aws_credentials")
	require.NoError(t, err)
	assert.Equal(t, "AKIA", conn.Data["accessKeyId"])

	t.Setenv(EnvVarAwsAccessKeyId, "ENVKEY")
	conn, err = e.LoadConnection("aws_credentials")
	require.NoError(t, err)
	assert.Equal(t, "AKIA", conn.Data["accessKeyId"], "a key without its secret is ignored")

	t.Setenv(EnvVarAwsSecretAccessKey, "ENVSECRET")
	t.Setenv(EnvVarAwsDefaultRegion, "eu-west-1")
	conn, err = e.LoadConnection("aws_credentials")
	require.NoError(t, err)
	assert.Equal(t, "ENVKEY", conn.Data["accessKeyId"])
	assert.Equal(t, "ENVSECRET", conn.Data["secretAccessKey"])
	assert.Equal(t, "eu-west-1", conn.Data["region"])

	t.Setenv(EnvVarAwsRegion, "ap-south-1")
	conn, err = e.LoadConnection("aws_credentials")
	require.NoError(t, err)
	assert.Equal(t, "ap-south-1", conn.Data["region"])
}

func TestEnvConnectionsWithoutFallback(t *testing.T) {
	clearAwsEnv(t)
	e := &EnvConnections{}
	_, err := e.LoadConnectionOfType("aws_credentials", "aws")
	assert.Error(t, err)

	t.Setenv(EnvVarAwsRegion, "us-west-2")
	conn, err := e.LoadConnectionOfType("aws_credentials", "aws")
	require.NoError(t, err)
	assert.Equal(t, "aws", conn.Type)
	assert.Equal(t, "us-west-2", conn.Data["region"])

	_, err = (&EnvConnections{Fallback: testConnections}).LoadConnectionOfType("missing", "aws")
	require.NoError(t, err, "the environment stands in for a missing aws connection when a region is set")

	t.Setenv("SDW_WAREHOUSE_DSN", "postgres://u:p@localhost:5432/dev")
	conn, err = e.LoadConnection("warehouse")
	require.NoError(t, err)
	assert.Equal(t, "postgres", conn.Type)
	assert.True(t, conn.IsDatabase())
}

func TestEnvConnectionsMissingDatabaseIgnoresAwsEnv(t *testing.T) {
	clearAwsEnv(t)
	t.Setenv(EnvVarAwsRegion, "us-west-2")
	t.Setenv(EnvVarAwsAccessKeyId, "ENVKEY")
	t.Setenv(EnvVarAwsSecretAccessKey, "ENVSECRET")
	t.Setenv("SDW_REDSHIFT_DSN", "")

	_, err := (&EnvConnections{}).LoadConnection("redshift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = (&EnvConnections{}).LoadConnectionOfType("redshift", "redshift")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	log := newLogger(testLogLevel, false)
	_, err = openWarehouse(log, &EnvConnections{}, "redshift")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "type aws")

	creds, err := loadAwsCredentials(&EnvConnections{}, "aws_credentials", "eu-west-1")
	require.NoError(t, err)
	assert.Equal(t, "ENVKEY", creds.AccessKeyId)
	assert.Equal(t, "us-west-2", creds.Region)
}
