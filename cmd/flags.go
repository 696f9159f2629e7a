package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/sparkify-dwh/config"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"dwh-config": cliFlag{name: "dwh-config", shortHand: "D",
		desc: "Path to the INI file that describes the AWS access keys, IAM role, cluster and S3 data"},
	"dag-dwh-config": cliFlag{name: "dwh-config", shortHand: "D",
		desc: "Optional path to dwh.cfg. Values in its S3 section take precedence over the S3 flags\n" +
			"and its IAM_ROLE.redshift_arn is used when no aws connection is given"},
	"credentials-csv": cliFlag{name: "credentials-csv", shortHand: "k",
		desc: "Optional CSV of AWS credentials downloaded from the console (e.g. new_user_credentials.csv).\n" +
			"The first row's key and secret are written into the AWS_ACCESS section before launch"},
	"open-port": cliFlag{name: "open-port", shortHand: "P",
		desc: "Open the cluster port on the VPC default security group once the cluster is available"},
	"ingress-cidr": cliFlag{name: "ingress-cidr", shortHand: "i",
		desc: "The CIDR allowed to reach the cluster port"},
	"save-connection": cliFlag{name: "save-connection", shortHand: "s",
		desc: "Save a redshift connection of this name, built from the CLUSTER section and the new endpoint"},
	"timeout": cliFlag{name: "timeout", shortHand: "t",
		desc: "Minutes to wait for the cluster to reach its target state (use 0 to wait forever)"},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Output format: \"table\", \"yaml\" or \"json\""},
	"query-output": cliFlag{name: "output", shortHand: "o",
		desc: "Output format: \"csv\" or \"table\""},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug | trace\""},
	"connection-name": cliFlag{name: "connection-name", shortHand: "c",
		desc: "Name of the connection to use"},
	"ddl-file": cliFlag{name: "ddl-file", shortHand: "f",
		desc: "Optional file of SQL statements that replaces the built-in schema"},
	"dry-run": cliFlag{name: "dry-run", shortHand: "d",
		desc: "Print the SQL without executing it"},
	"print-header": cliFlag{name: "print-header", shortHand: "x",
		desc: "Print a header for SQL query results"},
	"export-dir": cliFlag{name: "export-dir", shortHand: "e",
		desc: "Write the results to numbered CSV files in this directory instead of STDOUT"},
	"max-file-rows": cliFlag{name: "max-file-rows",
		desc: "Start a new export file after this many rows (use 0 for a single file)"},
	"gzip": cliFlag{name: "gzip", shortHand: "z",
		desc: "Compress export files with gzip"},
	"bucket": cliFlag{name: "bucket", shortHand: "b",
		desc: "S3 bucket that holds the song and log data"},
	"region": cliFlag{name: "region", shortHand: "r",
		desc: "AWS region"},
	"aws-connection": cliFlag{name: "aws-connection", shortHand: "a",
		desc: "Name of the aws connection whose keys are used (leave blank for the default credential chain,\n" +
			"or an IAM role with the dag commands)"},
	"redshift-connection": cliFlag{name: "redshift-connection", shortHand: "C",
		desc: "Name of the redshift connection the DAG loads"},
	"log-key": cliFlag{name: "log-key",
		desc: "S3 key prefix of the event logs. Go template fields such as {{ .LogicalDate.Year }} are rendered per run"},
	"song-key": cliFlag{name: "song-key",
		desc: "S3 key prefix of the song files"},
	"log-jsonpath": cliFlag{name: "log-jsonpath",
		desc: "COPY format for the event logs, or the s3:// path of a jsonpaths file (default: the bucket's log_json_path.json)"},
	"iam-role-arn": cliFlag{name: "iam-role-arn", shortHand: "I",
		desc: "IAM role ARN that COPY uses instead of access keys"},
	"checks-file": cliFlag{name: "checks-file", shortHand: "q",
		desc: "Optional YAML or JSON list of data quality checks with keys sql_testcase and expected_result"},
	"strict-quality": cliFlag{name: "strict-quality", shortHand: "S",
		desc: "Fail the data quality task when a check does not match (otherwise mismatches are logged)"},
	"logical-date": cliFlag{name: "logical-date", shortHand: "L",
		desc: "Logical date of the run: RFC3339 or YYYY-MM-DD (default now)"},
	"retries": cliFlag{name: "retries", shortHand: "n",
		desc: "Number of retries for each task"},
	"max-active-tasks": cliFlag{name: "max-active-tasks", shortHand: "m",
		desc: "Maximum number of tasks that run at once (use 0 for no limit)"},
	"schedule": cliFlag{name: "schedule",
		desc: "Cron schedule of the DAG"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"no-schedule": cliFlag{name: "no-schedule", shortHand: "N",
		desc: "Serve the API and accept triggers but do not start runs on the schedule"},
	"dsn": cliFlag{name: "dsn", shortHand: "d",
		desc: "Connect string of the form redshift://<user>:<password>@<host>:<port>/<database>"},
	"access-key-id": cliFlag{name: "access-key-id", shortHand: "k",
		desc: "AWS access key id (leave blank to use the default credential chain)"},
	"secret-access-key": cliFlag{name: "secret-access-key", shortHand: "s",
		desc: "AWS secret access key"},
	"session-token": cliFlag{name: "session-token", shortHand: "T",
		desc: "Optional AWS session token"},
	"force-connection": cliFlag{name: "force", shortHand: "f",
		desc: "Allow overwrite of existing connections"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from config or the supplied defaultValue
	desc := sw.desc + desc2
	if required {
		desc = "* " + desc
	}
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		b := helper.GetTrueFalseStringAsBool(sw.val)
		if twelveFactorMode {
			*p = b
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, b, desc)
			mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(b))
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			if sw.val != "" {
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(helper.GetFlagEnvVarName(s.name), &s.val); err != nil {
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		if err := fnGetConfig(s.name, &s.val); err != nil || s.val == "" { // if there was no key found...
			s.val = defaultValue
		}
	}
	return s
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// getQueryFromArgsFunc concatenates all args after the connection name into a string.
// Returns an error if there are no args.
func getQueryFromArgsFunc(connectionName *string, query *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < 2 { // if we are missing arguments...
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("please supply a connection and a SQL query")
		}
		*connectionName = args[0]
		*query = strings.Join(args[1:], " ")
		return nil
	}
}
