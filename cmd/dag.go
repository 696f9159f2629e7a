package cmd

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/relloyd/sparkify-dwh/actions"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/pipeline"
	"github.com/spf13/cobra"
)

// sparkifyFlags holds the flags shared by the dag subcommands.
// Each subcommand gets its own copy so cobra can bind them independently.
type sparkifyFlags struct {
	redshiftConn   string
	awsConn        string
	bucket         string
	region         string
	logKey         string
	songKey        string
	logJsonPath    string
	iamRoleArn     string
	schedule       string
	dwhFile        string
	checksFile     string
	retries        int
	maxActiveTasks int
	strict         bool
	logLevel       string
}

func (f *sparkifyFlags) add(cmd *cobra.Command) {
	switches.addFlag(cmd, &f.redshiftConn, "redshift-connection", pipeline.DefaultRedshiftConnID, false, "")
	switches.addFlag(cmd, &f.awsConn, "aws-connection", pipeline.DefaultAwsCredentialsID, false, "")
	switches.addFlag(cmd, &f.iamRoleArn, "iam-role-arn", "", false, "")
	switches.addFlag(cmd, &f.bucket, "bucket", pipeline.DefaultBucket, false, "")
	switches.addFlag(cmd, &f.region, "region", pipeline.DefaultRegion, false, "")
	switches.addFlag(cmd, &f.logKey, "log-key", pipeline.DefaultLogKey, false, "")
	switches.addFlag(cmd, &f.songKey, "song-key", pipeline.DefaultSongKey, false, "")
	switches.addFlag(cmd, &f.logJsonPath, "log-jsonpath", "", false, "")
	switches.addFlag(cmd, &f.dwhFile, "dag-dwh-config", "", false, "")
	switches.addFlag(cmd, &f.checksFile, "checks-file", "", false, "")
	switches.addFlag(cmd, &f.strict, "strict-quality", "false", false, "")
	switches.addFlag(cmd, &f.schedule, "schedule", c.DagDefaultSchedule, false, "")
	switches.addFlag(cmd, &f.retries, "retries", strconv.Itoa(c.DagDefaultRetries), false, "")
	switches.addFlag(cmd, &f.maxActiveTasks, "max-active-tasks", "0", false, "")
	switches.addFlag(cmd, &f.logLevel, "log-level", "info", false, "")
}

// apply copies the flags over the default Sparkify settings in cfg.
func (f *sparkifyFlags) apply(cfg *actions.DagConfig) {
	s := pipeline.DefaultSparkifyConfig()
	s.RedshiftConnID = f.redshiftConn
	s.AwsCredentialsID = f.awsConn
	s.IamRoleArn = f.iamRoleArn
	if f.bucket != "" {
		s.Bucket = f.bucket
		s.LogJsonPath = pipeline.EventDataFormat(f.bucket)
	}
	if f.region != "" {
		s.Region = f.region
	}
	if f.logKey != "" {
		s.LogKey = f.logKey
	}
	if f.songKey != "" {
		s.SongKey = f.songKey
	}
	if p := strings.TrimSpace(f.logJsonPath); p != "" {
		if strings.HasPrefix(strings.ToLower(p), "s3://") {
			p = fmt.Sprintf("JSON '%v'", p)
		}
		s.LogJsonPath = p
	}
	if f.schedule != "" {
		s.Schedule = f.schedule
	}
	s.StrictQuality = f.strict
	s.Retries = f.retries
	s.MaxActiveTasks = int64(f.maxActiveTasks)
	cfg.Sparkify = s
	cfg.DwhFile = f.dwhFile
	cfg.ChecksFile = f.checksFile
	cfg.LogLevel = f.logLevel
	cfg.Connections = getConnectionLoader()
	cfg.StackDumpOnPanic = stackDumpOnPanic
}

var (
	dagRunFlags   = sparkifyFlags{}
	dagShowFlags  = sparkifyFlags{}
	dagServeFlags = sparkifyFlags{}
	dagRunCfg     = actions.DagConfig{}
	dagShowCfg    = actions.DagConfig{}
	serveCfg      = actions.WebServerConfig{Scheme: "http"}
)

var dagCmd = &cobra.Command{
	Use:   "dag",
	Short: "Run, show or schedule sparkify_dag",
	Long: `sparkify_dag stages the song and event data from S3 into Redshift, loads the songplays
fact table, loads the users, songs, artists and time dimensions, then runs data quality checks.`,
}

var dagRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one run of sparkify_dag for a logical date",
	Long: `Execute one run of sparkify_dag. Tasks that fail are retried and their downstream
tasks are marked upstream_failed. The command exits non-zero if the run fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dagRunFlags.apply(&dagRunCfg)
		return actions.RunDag(&dagRunCfg)
	},
}

var dagShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the tasks and dependencies of sparkify_dag without connecting to anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		dagShowFlags.apply(&dagShowCfg)
		return actions.RunDagShow(&dagShowCfg)
	},
}

var dagServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run sparkify_dag on its schedule and serve an HTTP API to trigger and inspect runs",
	Long: `Start the scheduler and an HTTP server. The server offers:

  GET  /health
  GET  /dags                     list DAGs with their next scheduled run
  POST /dags/{dagId}/trigger     optional body {"logicalDate": "2018-11-01T00:00:00Z"}
  GET  /runs                     list runs
  GET  /runs/{runId}/status      task states of a run
  POST /runs/{runId}/stop        cancel a running run
  GET  /metrics                  Prometheus metrics
  GET  /stop                     shut the server down`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dagServeFlags.apply(&serveCfg.Dag)
		serveCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunScheduler(&serveCfg)
	},
}

func init() {
	rootCmd.AddCommand(dagCmd)
	dagCmd.AddCommand(dagRunCmd, dagShowCmd, dagServeCmd)

	dagRunCmd.Flags().SortFlags = false
	dagRunCmd.SilenceUsage = true
	switches.addFlag(dagRunCmd, &dagRunCfg.LogicalDate, "logical-date", "", false, "")
	switches.addFlag(dagRunCmd, &dagRunCfg.Output, "output", actions.OutputTable, false, "")
	dagRunFlags.add(dagRunCmd)

	dagShowCmd.Flags().SortFlags = false
	dagShowCmd.SilenceUsage = true
	switches.addFlag(dagShowCmd, &dagShowCfg.Output, "output", actions.OutputTable, false, "")
	dagShowFlags.add(dagShowCmd)

	dagServeCmd.Flags().SortFlags = false
	dagServeCmd.SilenceUsage = true
	switches.addFlag(dagServeCmd, &serveCfg.Port, "port", strconv.Itoa(c.WebServerDefaultPort), false, "")
	switches.addFlag(dagServeCmd, &serveCfg.NoSchedule, "no-schedule", "false", false, "")
	if twelveFactorMode {
		serveCfg.Addr = net.ParseIP(helper.ReadValueFromEnvWithDefault(helper.GetFlagEnvVarName("address"), net.IPv4zero.String()))
	} else {
		dagServeCmd.Flags().IPVar(&serveCfg.Addr, "address", net.IPv4zero, "Address to listen on")
	}
	dagServeFlags.add(dagServeCmd)
}
