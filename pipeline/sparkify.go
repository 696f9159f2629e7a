// Package pipeline assembles the Sparkify ETL DAG from operators.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/aws"
	"github.com/relloyd/sparkify-dwh/aws/s3"
	"github.com/relloyd/sparkify-dwh/config"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/operators"
	"github.com/relloyd/sparkify-dwh/queries"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
	"github.com/relloyd/sparkify-dwh/stats"
)

// Task ids of the Sparkify DAG.
const (
	TaskBegin         = "Begin_execution"
	TaskStageEvents   = "Stage_events"
	TaskStageSongs    = "Stage_songs"
	TaskLoadSongplays = "Load_songplays_fact_table"
	TaskLoadUsers     = "load_user_dim_table"
	TaskLoadSongs     = "load_song_dim_table"
	TaskLoadArtists   = "load_artist_dim_table"
	TaskLoadTime      = "load_time_dim_table"
	TaskQuality       = "Run_data_quality_checks"
	TaskEnd           = "Stop_execution"
)

const (
	DefaultRegion           = "us-west-2"
	DefaultBucket           = "udacity-dend"
	DefaultLogKey           = "log_data"
	DefaultSongKey          = "song_data"
	DefaultSongDataFormat   = "JSON 'auto'"
	DefaultRedshiftConnID   = "redshift"
	DefaultAwsCredentialsID = "aws_credentials"
)

// SparkifyConfig says where the raw data lives and how the DAG connects to it.
type SparkifyConfig struct {
	RedshiftConnID   string `errorTxt:"redshift connection name" mandatory:"yes"`
	AwsCredentialsID string
	Region           string `errorTxt:"region" mandatory:"yes"`
	Bucket           string `errorTxt:"S3 bucket" mandatory:"yes"`
	LogKey           string `errorTxt:"S3 log key" mandatory:"yes"`
	SongKey          string `errorTxt:"S3 song key" mandatory:"yes"`
	LogJsonPath      string // COPY format for the event logs.
	SongDataFormat   string // COPY format for the song files.
	IamRoleArn       string // when set, COPY authorises with the role instead of keys.
	Checks           []queries.QualityCheck
	StrictQuality    bool
	Schedule         string
	Retries          int
	MaxActiveTasks   int64
}

// DefaultSparkifyConfig returns the settings the project has always run with.
func DefaultSparkifyConfig() SparkifyConfig {
	return SparkifyConfig{
		RedshiftConnID:   DefaultRedshiftConnID,
		AwsCredentialsID: DefaultAwsCredentialsID,
		Region:           DefaultRegion,
		Bucket:           DefaultBucket,
		LogKey:           DefaultLogKey,
		SongKey:          DefaultSongKey,
		LogJsonPath:      EventDataFormat(DefaultBucket),
		SongDataFormat:   DefaultSongDataFormat,
		Checks:           queries.DefaultQualityChecks,
		Schedule:         c.DagDefaultSchedule,
		Retries:          c.DagDefaultRetries,
	}
}

// EventDataFormat is the COPY format clause that maps event JSON through the bucket's jsonpaths file.
func EventDataFormat(bucket string) string {
	return fmt.Sprintf("JSON 's3://%v/log_json_path.json'", bucket)
}

// ApplyDwh overrides the S3 settings with any set in the S3 section of dwh.cfg.
// log_jsonpath may be a full format clause or just the s3:// path of a jsonpaths file.
func (s *SparkifyConfig) ApplyDwh(d config.Dwh) {
	if d.S3.Bucket != "" {
		if s.LogJsonPath == EventDataFormat(s.Bucket) {
			s.LogJsonPath = EventDataFormat(d.S3.Bucket)
		}
		s.Bucket = d.S3.Bucket
	}
	if d.S3.LogKey != "" {
		s.LogKey = d.S3.LogKey
	}
	if d.S3.SongKey != "" {
		s.SongKey = d.S3.SongKey
	}
	if p := strings.TrimSpace(d.S3.LogJsonPath); p != "" {
		if strings.HasPrefix(strings.ToLower(p), "s3://") {
			p = fmt.Sprintf("JSON '%v'", p)
		}
		s.LogJsonPath = p
	}
	if d.S3.Region != "" {
		s.Region = d.S3.Region
	}
	if d.IamRole.RoleArn != "" && s.IamRoleArn == "" && s.AwsCredentialsID == "" {
		s.IamRoleArn = d.IamRole.RoleArn
	}
}

// Deps are the live resources the DAG's tasks use.
type Deps struct {
	Db          shared.Connector
	Credentials aws.CredentialsProvider
	Lister      s3.Lister
	Recorder    stats.Recorder
}

// NewSparkifyDag builds sparkify_dag:
// Begin -> {Stage_events, Stage_songs} -> Load_songplays -> {users, songs, artists, time} -> quality checks -> Stop.
func NewSparkifyDag(cfg SparkifyConfig, deps Deps) (*dag.DAG, error) {
	if deps.Db == nil {
		return nil, errors.New("a redshift connection is required")
	}
	if deps.Credentials == nil && cfg.IamRoleArn == "" {
		return nil, errors.New("AWS credentials or an IAM role ARN are required to stage data")
	}
	if cfg.Schedule == "" {
		cfg.Schedule = c.DagDefaultSchedule
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("retries must not be negative: %v", cfg.Retries)
	}
	d := dag.New(c.DagSparkifyId, "Load and transform data in Redshift", cfg.Schedule, dag.DefaultArgs{
		Owner:      c.DagDefaultOwner,
		Retries:    cfg.Retries,
		RetryDelay: c.DagDefaultRetryDelay,
	})
	d.Params["bucket"] = cfg.Bucket
	d.Params["region"] = cfg.Region

	begin := d.AddTask(TaskBegin, operators.Empty{})
	stageEvents := d.AddTask(TaskStageEvents, &operators.StageToRedshift{
		Db:          deps.Db,
		Credentials: deps.Credentials,
		Table:       "staging_events",
		S3Bucket:    cfg.Bucket,
		S3Key:       cfg.LogKey,
		Region:      cfg.Region,
		DataFormat:  cfg.LogJsonPath,
		IamRoleArn:  cfg.IamRoleArn,
		Lister:      deps.Lister,
	})
	stageSongs := d.AddTask(TaskStageSongs, &operators.StageToRedshift{
		Db:          deps.Db,
		Credentials: deps.Credentials,
		Table:       "staging_songs",
		S3Bucket:    cfg.Bucket,
		S3Key:       cfg.SongKey,
		Region:      cfg.Region,
		DataFormat:  cfg.SongDataFormat,
		IamRoleArn:  cfg.IamRoleArn,
		Lister:      deps.Lister,
	})
	songplays := d.AddTask(TaskLoadSongplays, &operators.LoadFact{
		Db:        deps.Db,
		Table:     "songplays",
		SqlInsert: queries.SongplayTableInsert,
	})
	dims := []*dag.TaskNode{
		d.AddTask(TaskLoadUsers, &operators.LoadDimension{Db: deps.Db, Table: "users", SqlInsert: queries.UserTableInsert, Truncate: true}),
		d.AddTask(TaskLoadSongs, &operators.LoadDimension{Db: deps.Db, Table: "songs", SqlInsert: queries.SongTableInsert, Truncate: true}),
		d.AddTask(TaskLoadArtists, &operators.LoadDimension{Db: deps.Db, Table: "artists", SqlInsert: queries.ArtistTableInsert, Truncate: true}),
		d.AddTask(TaskLoadTime, &operators.LoadDimension{Db: deps.Db, Table: "time", SqlInsert: queries.TimeTableInsert, Truncate: true}),
	}
	quality := d.AddTask(TaskQuality, &operators.DataQuality{
		Db:       deps.Db,
		Checks:   cfg.Checks,
		Strict:   cfg.StrictQuality,
		Recorder: deps.Recorder,
	})
	end := d.AddTask(TaskEnd, operators.Empty{})

	begin.Then(stageEvents, stageSongs).Then(songplays).Then(dims...).Then(quality).Then(end)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
