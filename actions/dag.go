package actions

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/aws"
	"github.com/relloyd/sparkify-dwh/aws/s3"
	"github.com/relloyd/sparkify-dwh/config"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/pipeline"
	"github.com/relloyd/sparkify-dwh/rdbms"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
	"github.com/relloyd/sparkify-dwh/stats"
)

// DagConfig holds what the dag run, show and serve actions need to assemble sparkify_dag.
type DagConfig struct {
	Connections      ConnectionLoader
	DwhFile          string // optional dwh.cfg whose S3 and IAM_ROLE sections override Sparkify
	ChecksFile       string // optional YAML or JSON list of quality checks
	Sparkify         pipeline.SparkifyConfig
	LogicalDate      string // RFC3339 or YYYY-MM-DD; empty means now
	Output           string
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

var (
	openDbConnection = rdbms.OpenDbConnection
	newLister        = newS3Lister
	timeNow          = time.Now
)

func newS3Lister(log logger.Logger, creds aws.Credentials, bucket string) s3.Lister {
	sess, err := aws.NewSession(creds)
	if err != nil {
		log.Warn("S3 listing is disabled: ", err)
		return nil
	}
	return s3.NewClient(sess, bucket)
}

// resolveSparkify applies the optional files on top of cfg.Sparkify.
func (cfg *DagConfig) resolveSparkify() (pipeline.SparkifyConfig, error) {
	s := cfg.Sparkify
	if cfg.DwhFile != "" {
		f, err := config.LoadDwh(cfg.DwhFile)
		if err != nil {
			return s, err
		}
		s.ApplyDwh(f.Config())
	}
	if cfg.ChecksFile != "" {
		checks, err := pipeline.LoadQualityChecks(cfg.ChecksFile)
		if err != nil {
			return s, err
		}
		s.Checks = checks
	}
	return s, nil
}

// loadAwsCredentials reads the aws connection name. Region falls back to defaultRegion.
func loadAwsCredentials(conns ConnectionLoader, name string, defaultRegion string) (aws.Credentials, error) {
	var conn shared.ConnectionDetails
	var err error
	if t, ok := conns.(TypedConnectionLoader); ok {
		conn, err = t.LoadConnectionOfType(name, c.ConnectionTypeAws)
	} else {
		conn, err = conns.LoadConnection(name)
	}
	if err != nil {
		return aws.Credentials{}, err
	}
	if conn.Type != c.ConnectionTypeAws {
		return aws.Credentials{}, fmt.Errorf("connection %q has type %v, expected %v", name, conn.Type, c.ConnectionTypeAws)
	}
	a := shared.GetAwsConnectionDetails(&conn)
	if a.Region == "" {
		a.Region = defaultRegion
	}
	return aws.Credentials{
		AccessKeyId:     a.AccessKeyId,
		SecretAccessKey: a.SecretAccessKey,
		SessionToken:    a.SessionToken,
		Region:          a.Region,
	}, nil
}

func openWarehouse(log logger.Logger, conns ConnectionLoader, name string) (shared.Connector, error) {
	conn, err := conns.LoadConnection(name)
	if err != nil {
		return nil, err
	}
	if !conn.IsDatabase() {
		return nil, fmt.Errorf("connection %q has type %v, expected a %v connection", name, conn.Type, c.ConnectionTypeRedshift)
	}
	return openDbConnection(log, conn)
}

// buildSparkifyDag connects to the warehouse and AWS and returns the DAG with a func that releases the connection.
func buildSparkifyDag(log logger.Logger, cfg *DagConfig, recorder stats.Recorder) (*dag.DAG, pipeline.SparkifyConfig, func(), error) {
	s, err := cfg.resolveSparkify()
	if err != nil {
		return nil, s, nil, err
	}
	if cfg.Connections == nil {
		return nil, s, nil, errors.New("no connection store configured")
	}
	db, err := openWarehouse(log, cfg.Connections, s.RedshiftConnID)
	if err != nil {
		return nil, s, nil, err
	}
	deps := pipeline.Deps{Db: db, Recorder: recorder}
	if s.AwsCredentialsID != "" {
		creds, err := loadAwsCredentials(cfg.Connections, s.AwsCredentialsID, s.Region)
		if err != nil {
			db.Close()
			return nil, s, nil, err
		}
		deps.Credentials = aws.NewCredentialsProvider(creds)
		creds.Region = s.Region // the bucket is listed in its own region.
		deps.Lister = newLister(log, creds, s.Bucket)
	}
	d, err := pipeline.NewSparkifyDag(s, deps)
	if err != nil {
		db.Close()
		return nil, s, nil, err
	}
	return d, s, db.Close, nil
}

// parseLogicalDate accepts RFC3339 or YYYY-MM-DD. Empty input is now, to the minute.
func parseLogicalDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.UTC().Truncate(time.Minute), nil
	}
	if t, err := time.Parse(c.TimeFormatTs, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(c.TimeFormatDs, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("logical date %q must be RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}

// RunDag executes sparkify_dag once and prints a summary of its task instances.
// An error is returned unless the run succeeded.
func RunDag(cfg *DagConfig) error {
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	logicalDate, err := parseLogicalDate(cfg.LogicalDate, timeNow())
	if err != nil {
		return err
	}
	d, s, closeFn, err := buildSparkifyDag(log, cfg, stats.NopRecorder{})
	if err != nil {
		return err
	}
	defer closeFn()
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	runner := dag.NewRunner(log, stats.NopRecorder{}, nil)
	runner.MaxActiveTasks = s.MaxActiveTasks
	result, err := runner.Run(ctx, d, logicalDate)
	if err != nil {
		return err
	}
	return reportRun(cfg.Out, cfg.Output, result)
}

func reportRun(w io.Writer, format string, result *dag.RunResult) error {
	if format == "" || format == OutputTable {
		printRunSummary(w, result)
	} else if err := writeStructured(w, result, format); err != nil {
		return err
	}
	if result.State != dag.StateSuccess {
		return fmt.Errorf("run %v finished in state %v", result.RunID, result.State)
	}
	return nil
}

func printRunSummary(w io.Writer, r *dag.RunResult) {
	w = out(w)
	_, _ = fmt.Fprintf(w, "Run %v of %v (logical date %v): %v\n", r.RunID, r.DagID,
		r.LogicalDate.Format(c.TimeFormatTs), stateColour(r.State).Sprint(r.State))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Task", "State", "Tries", "Duration", "Error"})
	table.SetAutoWrapText(false)
	for _, ti := range r.Tasks {
		duration := ""
		if !ti.StartTime.IsZero() && !ti.EndTime.IsZero() {
			duration = ti.EndTime.Sub(ti.StartTime).Round(time.Millisecond).String()
		}
		table.Append([]string{ti.TaskID, stateColour(ti.State).Sprint(ti.State), fmt.Sprint(ti.TryNumber), duration, ti.Error})
	}
	table.Render()
}

// describeSparkify builds the DAG without connecting to anything so that it can be printed.
func describeSparkify(cfg *DagConfig) (*dag.DAG, error) {
	s, err := cfg.resolveSparkify()
	if err != nil {
		return nil, err
	}
	return pipeline.NewSparkifyDag(s, pipeline.Deps{
		Db:          rdbms.NewConnectionFromDB(nil, c.ConnectionTypeRedshift),
		Credentials: aws.NewCredentialsProvider(aws.Credentials{Region: s.Region}),
	})
}

// RunDagShow prints the tasks and edges of sparkify_dag as a table, YAML or JSON.
func RunDagShow(cfg *DagConfig) error {
	d, err := describeSparkify(cfg)
	if err != nil {
		return err
	}
	desc := d.Describe()
	if cfg.Output != "" && cfg.Output != OutputTable {
		return writeStructured(cfg.Out, desc, cfg.Output)
	}
	w := out(cfg.Out)
	_, _ = fmt.Fprintf(w, "DAG %v: %v\nOwner %v, schedule %q", desc.DagID, desc.Description, desc.Owner, desc.Schedule)
	if sched, err := dag.ParseSchedule(desc.Schedule); err == nil {
		_, _ = fmt.Fprintf(w, ", next run at %v", sched.Next(timeNow()).UTC().Format(c.TimeFormatTs))
	}
	_, _ = fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Task", "Type", "Retries", "Retry delay", "Upstream", "Downstream"})
	table.SetAutoWrapText(false)
	for _, t := range desc.Tasks {
		table.Append([]string{t.TaskID, t.Type, fmt.Sprint(t.Retries), t.RetryDelay,
			strings.Join(t.Upstream, ", "), strings.Join(t.Downstream, ", ")})
	}
	table.Render()
	return nil
}
