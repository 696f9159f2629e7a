package operators

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/relloyd/sparkify-dwh/aws"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/queries"
	"github.com/relloyd/sparkify-dwh/rdbms"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDb(t *testing.T) (shared.Connector, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	return rdbms.NewConnectionFromDB(db, "redshift"), mock
}

func newRunContext(taskID string) *dag.RunContext {
	log := logger.NewLogger("sdw", "error", false)
	return dag.NewRunContext(log, "manual__test", "sparkify_dag", taskID, time.Date(2018, 11, 3, 5, 0, 0, 0, time.UTC), 1, nil)
}

type fakeLister struct {
	keys   []string
	err    error
	prefix string
}

func (f *fakeLister) List(ctx context.Context, prefix string, max int64) ([]string, error) {
	f.prefix = prefix
	return f.keys, f.err
}

type fakeCreds struct {
	c   aws.Credentials
	err error
}

func (f fakeCreds) Retrieve(ctx context.Context) (aws.Credentials, error) {
	return f.c, f.err
}

func TestBuildCopySql(t *testing.T) {
	got := BuildCopySql(CopySpec{
		Table:           "staging_events",
		Path:            "s3://udacity-dend/log_data",
		AccessKeyId:     "AKIA",
		SecretAccessKey: "secret",
		DataFormat:      "JSON 'auto'",
		Region:          "us-west-2",
	})
	assert.Equal(t, "COPY staging_events\nFROM 's3://udacity-dend/log_data'\nACCESS_KEY_ID 'AKIA'\nSECRET_ACCESS_KEY 'secret'\nJSON 'auto' REGION 'us-west-2'", got)

	got = BuildCopySql(CopySpec{Table: "t", Path: "s3://b/k", AccessKeyId: "a", SecretAccessKey: "s", SessionToken: "tok", DataFormat: "JSON 'auto'", Region: "r"})
	assert.Contains(t, got, "SESSION_TOKEN 'tok'\n")

	got = BuildCopySql(CopySpec{Table: "t", Path: "s3://b/k", AccessKeyId: "a", IamRoleArn: "arn:aws:iam::1:role/r", DataFormat: "JSON 'auto'", Region: "r"})
	assert.Contains(t, got, "IAM_ROLE 'arn:aws:iam::1:role/r'")
	assert.NotContains(t, got, "ACCESS_KEY_ID")
}

func TestStageToRedshift(t *testing.T) {
	db, mock := newMockDb(t)
	lister := &fakeLister{}
	op := &StageToRedshift{
		Db:          db,
		Credentials: fakeCreds{c: aws.Credentials{AccessKeyId: "AKIA", SecretAccessKey: "secret", Region: "us-west-2"}},
		Table:       "staging_events",
		S3Bucket:    "udacity-dend",
		S3Key:       "log_data/{{ .Year }}/{{ .Month }}",
		Region:      "us-west-2",
		DataFormat:  "JSON 's3://udacity-dend/log_json_path.json'",
		Lister:      lister,
	}
	mock.ExpectExec("DELETE FROM staging_events").WillReturnResult(sqlmock.NewResult(0, 10))
	mock.ExpectExec(BuildCopySql(CopySpec{
		Table:           "staging_events",
		Path:            "s3://udacity-dend/log_data/2018/11",
		AccessKeyId:     "AKIA",
		SecretAccessKey: "secret",
		DataFormat:      "JSON 's3://udacity-dend/log_json_path.json'",
		Region:          "us-west-2",
	})).WillReturnResult(sqlmock.NewResult(0, 10))
	require.NoError(t, op.Execute(context.Background(), newRunContext("Stage_events")))
	assert.Equal(t, "log_data/2018/11", lister.prefix)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageToRedshiftSprigTemplate(t *testing.T) {
	rc := newRunContext("Stage_songs")
	key, err := renderTemplate("s3_key", `log_data/{{ .LogicalDate | date "2006/01" }}/{{ .Ds }}-events.json`, rc)
	require.NoError(t, err)
	assert.Equal(t, "log_data/2018/11/2018-11-03-events.json", key)
	_, err = renderTemplate("s3_key", "{{ .Nope", rc)
	assert.Error(t, err)
	_, err = renderTemplate("s3_key", "{{ .Params.missing }}", rc)
	assert.Error(t, err)
}

func TestStageToRedshiftErrors(t *testing.T) {
	db, mock := newMockDb(t)
	op := &StageToRedshift{Db: db, Table: "staging_songs", S3Bucket: "b", S3Key: "song_data"}
	assert.Error(t, op.Execute(context.Background(), newRunContext("Stage_songs")), "no credentials or role")

	op.Credentials = fakeCreds{err: errors.New("no creds")}
	mock.ExpectExec("DELETE FROM staging_songs").WillReturnResult(sqlmock.NewResult(0, 0))
	err := op.Execute(context.Background(), newRunContext("Stage_songs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no creds")

	op.Table = "bad table;"
	assert.Error(t, op.Execute(context.Background(), newRunContext("Stage_songs")))

	op.Table = "staging_songs"
	op.S3Key = "{{ .Broken"
	mock.ExpectExec("DELETE FROM staging_songs").WillReturnError(errors.New("permission denied"))
	err = op.Execute(context.Background(), newRunContext("Stage_songs"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStageToRedshiftIamRole(t *testing.T) {
	db, mock := newMockDb(t)
	op := &StageToRedshift{
		Db:         db,
		Table:      "staging_songs",
		S3Bucket:   "udacity-dend",
		S3Key:      "song_data",
		Region:     "us-west-2",
		DataFormat: "JSON 'auto'",
		IamRoleArn: "arn:aws:iam::123:role/dwhRole",
		Lister:     &fakeLister{err: errors.New("access denied")},
	}
	mock.ExpectExec("DELETE FROM staging_songs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("COPY staging_songs\nFROM 's3://udacity-dend/song_data'\nIAM_ROLE 'arn:aws:iam::123:role/dwhRole'\nJSON 'auto' REGION 'us-west-2'").
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, op.Execute(context.Background(), newRunContext("Stage_songs")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadFact(t *testing.T) {
	db, mock := newMockDb(t)
	op := &LoadFact{Db: db, Table: "songplays", SqlInsert: "SELECT 1"}
	mock.ExpectExec("INSERT INTO songplays SELECT 1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, op.Execute(context.Background(), newRunContext("Load_songplays_fact_table")))

	mock.ExpectExec("INSERT INTO songplays SELECT 1").WillReturnError(errors.New("disk full"))
	assert.Error(t, op.Execute(context.Background(), newRunContext("Load_songplays_fact_table")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadDimension(t *testing.T) {
	db, mock := newMockDb(t)
	op := &LoadDimension{Db: db, Table: "users", SqlInsert: "SELECT 2", Truncate: true}
	mock.ExpectExec("TRUNCATE TABLE users;").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO users SELECT 2;").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, op.Execute(context.Background(), newRunContext("load_user_dim_table")))

	op.Truncate = false
	mock.ExpectExec("INSERT INTO users SELECT 2;").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, op.Execute(context.Background(), newRunContext("load_user_dim_table")))

	op.Truncate = true
	mock.ExpectExec("TRUNCATE TABLE users;").WillReturnError(errors.New("locked"))
	assert.Error(t, op.Execute(context.Background(), newRunContext("load_user_dim_table")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmpty(t *testing.T) {
	assert.NoError(t, Empty{}.Execute(context.Background(), newRunContext("Begin_execution")))
}

type qcRecord struct {
	check  string
	passed bool
}

type fakeRecorder struct {
	checks []qcRecord
}

func (f *fakeRecorder) TaskFinished(string, string, string, time.Duration) {}
func (f *fakeRecorder) TaskRetried(string, string)                         {}
func (f *fakeRecorder) RunFinished(string, string, time.Duration)          {}
func (f *fakeRecorder) QualityCheck(dagID string, check string, passed bool) {
	f.checks = append(f.checks, qcRecord{check, passed})
}

func TestDataQuality(t *testing.T) {
	checks := []queries.QualityCheck{
		{SQL: "SELECT COUNT(*) FROM users", Expected: 0},
		{SQL: "SELECT COUNT(*) FROM songs", Expected: 0},
		{SQL: "SELECT COUNT(*) FROM artists", Expected: "0"},
		{SQL: "SELECT COUNT(*) FROM time", Expected: 0},
		{SQL: "SELECT COUNT(*) FROM empty", Expected: 0},
	}
	expect := func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("SELECT COUNT(*) FROM users").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery("SELECT COUNT(*) FROM songs").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))
		mock.ExpectQuery("SELECT COUNT(*) FROM artists").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow([]byte("0")))
		mock.ExpectQuery("SELECT COUNT(*) FROM time").WillReturnError(errors.New("relation does not exist"))
		mock.ExpectQuery("SELECT COUNT(*) FROM empty").WillReturnRows(sqlmock.NewRows([]string{"count"}))
	}

	db, mock := newMockDb(t)
	rec := &fakeRecorder{}
	op := &DataQuality{Db: db, Checks: checks, Recorder: rec}
	expect(mock)
	require.NoError(t, op.Execute(context.Background(), newRunContext("Run_data_quality_checks")))
	assert.Equal(t, []qcRecord{{"0", true}, {"1", false}, {"2", true}, {"3", false}, {"4", false}}, rec.checks)

	op.Strict = true
	expect(mock)
	err := op.Execute(context.Background(), newRunContext("Run_data_quality_checks"))
	require.Error(t, err)
	var qe *QualityError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, []int{1}, qe.Failed)
	assert.Equal(t, 5, qe.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDataQualityEmptyList(t *testing.T) {
	db, mock := newMockDb(t)
	op := &DataQuality{Db: db, Strict: true}
	assert.NoError(t, op.Execute(context.Background(), newRunContext("Run_data_quality_checks")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
