package cmd

import (
	"github.com/relloyd/sparkify-dwh/actions"
	"github.com/relloyd/sparkify-dwh/pipeline"
	"github.com/spf13/cobra"
)

var tablesCfg = actions.TablesConfig{}
var bucketCfg = actions.BucketConfig{}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Manage the warehouse schema",
}

var tablesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Drop and create the staging and star schema tables",
	Long: `Drop and create staging_events, staging_songs, songplays, users, songs, artists and time
in a single transaction. Use --dry-run to print the statements instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tablesCfg.Connections = getConnectionLoader()
		tablesCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunCreateTables(&tablesCfg)
	},
}

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage the S3 bucket that holds the raw data",
}

var bucketCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the S3 bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		bucketCfg.Connections = getConnectionLoader()
		bucketCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunCreateBucket(&bucketCfg)
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd, bucketCmd)
	tablesCmd.AddCommand(tablesCreateCmd)
	tablesCreateCmd.Flags().SortFlags = false
	tablesCreateCmd.SilenceUsage = true
	switches.addFlag(tablesCreateCmd, &tablesCfg.ConnectionName, "connection-name", pipeline.DefaultRedshiftConnID, false, "")
	switches.addFlag(tablesCreateCmd, &tablesCfg.DdlFile, "ddl-file", "", false, "")
	switches.addFlag(tablesCreateCmd, &tablesCfg.DryRun, "dry-run", "false", false, "")
	switches.addFlag(tablesCreateCmd, &tablesCfg.LogLevel, "log-level", "info", false, "")

	bucketCmd.AddCommand(bucketCreateCmd)
	bucketCreateCmd.Flags().SortFlags = false
	bucketCreateCmd.SilenceUsage = true
	switches.addFlag(bucketCreateCmd, &bucketCfg.Bucket, "bucket", "", true, "")
	switches.addFlag(bucketCreateCmd, &bucketCfg.Region, "region", pipeline.DefaultRegion, false, "")
	switches.addFlag(bucketCreateCmd, &bucketCfg.AwsConnection, "aws-connection", pipeline.DefaultAwsCredentialsID, false, "")
	switches.addFlag(bucketCreateCmd, &bucketCfg.LogLevel, "log-level", "info", false, "")
}
