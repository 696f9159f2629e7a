package cmd

import (
	"fmt"
	"strconv"

	"github.com/relloyd/sparkify-dwh/actions"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/spf13/cobra"
)

var clusterCfg = actions.ClusterConfig{}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Launch, inspect and remove the Redshift cluster described by dwh.cfg",
	Long: fmt.Sprintf(`Manage the Redshift cluster and its IAM role.

The cluster, role and credentials are read from the INI file given by --dwh-config
(default %q). Launch writes the role ARN and the cluster endpoint back into the
IAM_ROLE and CLUSTER sections of the same file.`, c.DefaultDwhConfigFile),
}

var clusterLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Create the IAM role and the cluster, then wait for it to become available",
	Long: `Create the IAM role that lets Redshift read from S3, attach the policy given by IAM_ROLE.arn,
create the cluster and wait until it is available. Optionally open the cluster port
and save a redshift connection for the DAG to use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clusterCfg.Connections = getConnectionSaver()
		clusterCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunLaunch(&clusterCfg)
	},
}

var clusterStopCmd = &cobra.Command{
	Use:     "stop",
	Aliases: []string{"delete", "rm"},
	Short:   "Delete the cluster and its IAM role",
	Long:    `Detach the role policy, delete the role and delete the cluster without a final snapshot, then wait until it is gone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clusterCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunStop(&clusterCfg)
	},
}

var clusterStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Describe the cluster",
	RunE: func(cmd *cobra.Command, args []string) error {
		clusterCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunStatus(&clusterCfg)
	},
}

var clusterOpenPortCmd = &cobra.Command{
	Use:   "open-port",
	Short: "Allow inbound TCP to the cluster port",
	Long:  `Add an ingress rule for the cluster port to the default security group of the cluster's VPC.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		clusterCfg.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunOpenPort(&clusterCfg)
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.AddCommand(clusterLaunchCmd, clusterStopCmd, clusterStatusCmd, clusterOpenPortCmd)
	timeout := strconv.Itoa(int(c.ClusterLaunchTimeout.Minutes()))
	for _, cmd := range []*cobra.Command{clusterLaunchCmd, clusterStopCmd, clusterStatusCmd, clusterOpenPortCmd} {
		cmd.Flags().SortFlags = false
		cmd.SilenceUsage = true
		switches.addFlag(cmd, &clusterCfg.DwhFile, "dwh-config", c.DefaultDwhConfigFile, false, "")
		switches.addFlag(cmd, &clusterCfg.LogLevel, "log-level", "info", false, "")
	}
	switches.addFlag(clusterLaunchCmd, &clusterCfg.CredentialsCsv, "credentials-csv", "", false, "")
	switches.addFlag(clusterLaunchCmd, &clusterCfg.OpenPort, "open-port", "false", false, "")
	switches.addFlag(clusterLaunchCmd, &clusterCfg.SaveConnection, "save-connection", "", false, "")
	for _, cmd := range []*cobra.Command{clusterLaunchCmd, clusterStopCmd} {
		switches.addFlag(cmd, &clusterCfg.TimeoutMinutes, "timeout", timeout, false, "")
	}
	for _, cmd := range []*cobra.Command{clusterLaunchCmd, clusterOpenPortCmd} {
		switches.addFlag(cmd, &clusterCfg.IngressCidr, "ingress-cidr", c.DefaultIngressCidr, false, "")
	}
	for _, cmd := range []*cobra.Command{clusterLaunchCmd, clusterStatusCmd} {
		switches.addFlag(cmd, &clusterCfg.Output, "output", actions.OutputTable, false, "")
	}
}
