package actions

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/sparkify-dwh/aws"
	"github.com/relloyd/sparkify-dwh/aws/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunQueryCsv(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	mockWarehouse(t, db)
	q := "SELECT userid, level FROM users"
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"userid", "level"}).
		AddRow(int64(10), "free").
		AddRow(int64(11), "paid, annual"))

	buf := &bytes.Buffer{}
	cfg := &QueryConfig{Connections: testConnections, ConnectionName: "redshift", Query: q, PrintHeader: true, LogLevel: testLogLevel, Out: buf}
	require.NoError(t, RunQuery(cfg))
	assert.Equal(t, "userid,level\n10,free\n11,\"paid, annual\"\n", buf.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunQueryTable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	mockWarehouse(t, db)
	q := "SELECT COUNT(*) AS n FROM songplays"
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(6820)))

	buf := &bytes.Buffer{}
	cfg := &QueryConfig{Connections: testConnections, ConnectionName: "redshift", Query: q, Output: OutputTable, LogLevel: testLogLevel, Out: buf}
	require.NoError(t, RunQuery(cfg))
	assert.Contains(t, buf.String(), "6820")

	cfg.Output = "xml"
	assert.Error(t, RunQuery(cfg))
}

func TestRunQueryExport(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	mockWarehouse(t, db)
	q := "SELECT level, COUNT(*) FROM songplays GROUP BY level"
	mock.ExpectQuery(q).WillReturnRows(sqlmock.NewRows([]string{"level", "count"}).
		AddRow("free", int64(1229)).
		AddRow("paid", int64(5591)).
		AddRow("trial", int64(0)))

	dir := t.TempDir()
	buf := &bytes.Buffer{}
	cfg := &QueryConfig{Connections: testConnections, ConnectionName: "redshift", Query: q, ExportDir: dir, MaxFileRows: 2, LogLevel: testLogLevel, Out: buf}
	require.NoError(t, RunQuery(cfg))
	assert.Contains(t, buf.String(), "3 rows written to 2 file(s)")
	b, err := os.ReadFile(filepath.Join(dir, "query_000002.csv"))
	require.NoError(t, err)
	assert.Equal(t, "level,count\ntrial,0\n", string(b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunQueryDryRunAndValidation(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, RunQuery(&QueryConfig{Query: "SELECT 1", DryRun: true, Out: buf}))
	assert.Equal(t, "SELECT 1\n", buf.String())

	err := RunQuery(&QueryConfig{Connections: testConnections, Query: "SELECT 1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection name")
}

func TestRunCreateTables(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, RunCreateTables(&TablesConfig{DryRun: true, Out: buf}))
	assert.Contains(t, buf.String(), "CREATE TABLE")
	assert.Contains(t, buf.String(), "staging_events")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	mockWarehouse(t, db)
	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE IF EXISTS a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ddl := writeTempFile(t, "ddl.sql", "DROP TABLE IF EXISTS a;\nCREATE TABLE a (id INT);\n")
	require.NoError(t, RunCreateTables(&TablesConfig{
		Connections:    testConnections,
		ConnectionName: "redshift",
		DdlFile:        ddl,
		LogLevel:       testLogLevel,
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

type fakeBucketCreator struct {
	name, region string
	err          error
}

func (f *fakeBucketCreator) CreateBucket(ctx context.Context, name string, region string) (bool, error) {
	f.name, f.region = name, region
	return f.err == nil, f.err
}

func TestRunCreateBucket(t *testing.T) {
	fake := &fakeBucketCreator{}
	var gotCreds aws.Credentials
	orig := newBucketCreator
	newBucketCreator = func(creds aws.Credentials, bucket string) (s3.BucketCreator, error) {
		gotCreds = creds
		return fake, nil
	}
	t.Cleanup(func() { newBucketCreator = orig })

	buf := &bytes.Buffer{}
	require.NoError(t, RunCreateBucket(&BucketConfig{
		Connections:   testConnections,
		AwsConnection: "aws_credentials",
		Bucket:        "my-bucket",
		Region:        "eu-west-2",
		LogLevel:      testLogLevel,
		Out:           buf,
	}))
	assert.Equal(t, "Bucket \"my-bucket\" created\n", buf.String())
	assert.Equal(t, "my-bucket", fake.name)
	assert.Equal(t, "eu-west-2", fake.region)
	assert.Equal(t, "AKIA", gotCreds.AccessKeyId)
	assert.Equal(t, "eu-west-2", gotCreds.Region)

	fake.err = errors.New("BucketAlreadyOwnedByYou")
	assert.Error(t, RunCreateBucket(&BucketConfig{Bucket: "my-bucket", Region: "eu-west-2", LogLevel: testLogLevel, Out: buf}))
	assert.Error(t, RunCreateBucket(&BucketConfig{Region: "eu-west-2", LogLevel: testLogLevel}))
}
