package cmd

import (
	"fmt"

	"github.com/relloyd/sparkify-dwh/actions"
	"github.com/relloyd/sparkify-dwh/config"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/pipeline"
	"github.com/spf13/cobra"
)

var configConnCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conn", "connection"},
	Short:   "Add, list or remove named redshift and aws connections",
	Long: fmt.Sprintf(`Named connections are stored in %q.

The dag loads connection %q for the warehouse and %q for the COPY credentials.
cluster launch --save-connection writes a redshift connection for the new endpoint.`,
		config.Connections.FullPath, pipeline.DefaultRedshiftConnID, pipeline.DefaultAwsCredentialsID),
}

var configConnAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a redshift or aws connection",
	Long: fmt.Sprintf(`Add a connection of type %q (a DSN) or %q (access keys and region).
Use --force to replace a connection of the same name.`, c.ConnectionTypeRedshift, c.ConnectionTypeAws),
}

var connRemoveCfg = actions.ConnectionConfig{}

var configConnListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the saved connections with passwords and secret keys redacted",
	Example: "  sdw config connections list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return actions.RunConnectionList(config.Connections, nil)
	},
}

var configConnRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a saved connection",
	Example: fmt.Sprintf("  sdw config connections remove -c %v", pipeline.DefaultAwsCredentialsID),
	RunE: func(cmd *cobra.Command, args []string) error {
		connRemoveCfg.ConfigFile = getConnectionGetterSetter()
		return actions.RunConnectionRemove(&connRemoveCfg)
	},
}

func init() {
	configCmd.AddCommand(configConnCmd)
	configConnCmd.AddCommand(configConnAddCmd, configConnListCmd, configConnRemoveCmd)
	configConnRemoveCmd.SilenceUsage = true
	switches.addFlag(configConnRemoveCmd, &connRemoveCfg.LogicalName, "connection-name", "", true, "")
}
