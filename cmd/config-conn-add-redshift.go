package cmd

import (
	"fmt"

	"github.com/relloyd/sparkify-dwh/actions"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/pipeline"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
	"github.com/spf13/cobra"
)

var connAddRedshiftDetails = shared.DsnConnectionDetails{}
var connAddRedshiftCfg = actions.ConnectionConfig{Type: c.ConnectionTypeRedshift, ConnDetails: &connAddRedshiftDetails}

var configConnAddRedshiftCmd = &cobra.Command{
	Use:   "redshift",
	Short: "Add a Redshift connection",
	Long: fmt.Sprintf(`Add a Redshift connection using a DSN. The schemes redshift, rs, postgres and postgresql are accepted.
Set environment variable %v to override the DSN of the connection without saving it.`,
		helper.GetDsnEnvVarName("<connection-name>")),
	RunE: func(cmd *cobra.Command, args []string) error {
		connAddRedshiftCfg.ConfigFile = getConnectionGetterSetter()
		return actions.RunConnectionAdd(&connAddRedshiftCfg)
	},
}

func init() {
	configConnAddCmd.AddCommand(configConnAddRedshiftCmd)
	configConnAddRedshiftCmd.Flags().SortFlags = false
	configConnAddRedshiftCmd.SilenceUsage = true
	switches.addFlag(configConnAddRedshiftCmd, &connAddRedshiftCfg.LogicalName, "connection-name", pipeline.DefaultRedshiftConnID, false, "")
	switches.addFlag(configConnAddRedshiftCmd, &connAddRedshiftDetails.Dsn, "dsn", "", true, "")
	switches.addFlag(configConnAddRedshiftCmd, &connAddRedshiftCfg.Force, "force-connection", "false", false, "")
}
