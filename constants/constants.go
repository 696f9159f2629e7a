package constants

import "time"

const (
	AppName                  = "sdw"
	EnvVarPrefix             = "SDW" // prefixed for environment variables in twelveFactorMode
	EmojiBang                = "\U0001F4A5"
	TimeFormatYearSeconds    = "20060102T150405" // used for human readable run ids and file names
	TimeFormatYearSecondsTZ  = "20060102T150405-0700"
	TimeFormatDs             = "2006-01-02"
	TimeFormatDsNodash       = "20060102"
	TimeFormatTs             = time.RFC3339
	ClusterStatusAvailable   = "available"
	ClusterTypeMultiNode     = "multi-node"
	ClusterTypeSingleNode    = "single-node"
	ClusterDefaultPort       = 5439
	ClusterPollInterval      = 5 * time.Second
	ClusterLaunchTimeout     = 30 * time.Minute
	RedshiftServicePrincipal = "redshift.amazonaws.com"
	DefaultIngressCidr       = "0.0.0.0/0"
	DefaultDwhConfigFile     = "dwh.cfg"
	DefaultCredentialsCsv    = "new_user_credentials.csv"
)

// Connection types held in the connection store.
const (
	ConnectionTypeRedshift = "redshift"
	ConnectionTypePostgres = "postgres"
	ConnectionTypeAws      = "aws"
)

// DAG defaults.
const (
	DagDefaultRetries      = 3
	DagDefaultRetryDelay   = 5 * time.Minute
	DagDefaultSchedule     = "0 * * * *"
	DagDefaultOwner        = "sparkify"
	DagSparkifyId          = "sparkify_dag"
	WebServerDefaultPort   = 8080
	EnvVarCommand          = EnvVarPrefix + "_COMMAND"
	EnvVarTwelveFactor     = EnvVarPrefix + "_12FACTOR_MODE"
	TwelveFactorModeLambda = "lambda"
)
