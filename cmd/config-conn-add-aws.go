package cmd

import (
	"github.com/relloyd/sparkify-dwh/actions"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/pipeline"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
	"github.com/spf13/cobra"
)

var connAddAwsDetails = shared.AwsConnectionDetails{}
var connAddAwsCfg = actions.ConnectionConfig{Type: c.ConnectionTypeAws, ConnDetails: &connAddAwsDetails}

var configConnAddAwsCmd = &cobra.Command{
	Use:   "aws",
	Short: "Add AWS credentials",
	Long: `Add AWS credentials used by COPY and by the S3 listing in the staging tasks.
Leave the keys blank to use the default AWS credential chain. The standard AWS_* environment
variables override stored values at run time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		connAddAwsCfg.ConfigFile = getConnectionGetterSetter()
		return actions.RunConnectionAdd(&connAddAwsCfg)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddAwsCmd)
	configConnAddAwsCmd.Flags().SortFlags = false
	configConnAddAwsCmd.SilenceUsage = true
	switches.addFlag(configConnAddAwsCmd, &connAddAwsCfg.LogicalName, "connection-name", pipeline.DefaultAwsCredentialsID, false, "")
	switches.addFlag(configConnAddAwsCmd, &connAddAwsDetails.AccessKeyId, "access-key-id", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &connAddAwsDetails.SecretAccessKey, "secret-access-key", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &connAddAwsDetails.SessionToken, "session-token", "", false, "")
	switches.addFlag(configConnAddAwsCmd, &connAddAwsDetails.Region, "region", pipeline.DefaultRegion, true, "")
	switches.addFlag(configConnAddAwsCmd, &connAddAwsCfg.Force, "force-connection", "false", false, "")
}
