package actions

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/aws/redshift"
	"github.com/relloyd/sparkify-dwh/cluster"
	"github.com/relloyd/sparkify-dwh/config"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/logger"
)

// ClusterConfig holds the flags of the cluster commands.
type ClusterConfig struct {
	DwhFile          string `errorTxt:"dwh config file" mandatory:"yes"`
	CredentialsCsv   string
	OpenPort         bool
	IngressCidr      string
	SaveConnection   string
	TimeoutMinutes   int
	Output           string
	Connections      cluster.ConnectionSaver
	LogLevel         string
	StackDumpOnPanic bool
	Out              io.Writer
}

var clusterClientFactory cluster.ClientFactory = cluster.NewAwsClients

func (cfg *ClusterConfig) timeout() time.Duration {
	if cfg.TimeoutMinutes <= 0 {
		return 0
	}
	return time.Duration(cfg.TimeoutMinutes) * time.Minute
}

func newClusterManager(cfg *ClusterConfig) (logger.Logger, *cluster.Manager, error) {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, nil, err
	}
	log := newLogger(cfg.LogLevel, cfg.StackDumpOnPanic)
	f, err := config.LoadDwh(cfg.DwhFile)
	if err != nil {
		return nil, nil, err
	}
	m := cluster.NewManager(log, f, cfg.Connections)
	m.Clients = clusterClientFactory
	return log, m, nil
}

// RunLaunch creates the IAM role and the cluster described by dwh.cfg and waits for it to become available.
func RunLaunch(cfg *ClusterConfig) error {
	log, m, err := newClusterManager(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	info, err := m.Launch(ctx, cluster.LaunchConfig{
		CredentialsCsv: cfg.CredentialsCsv,
		OpenPort:       cfg.OpenPort,
		IngressCidr:    cfg.IngressCidr,
		SaveConnection: cfg.SaveConnection,
		Timeout:        cfg.timeout(),
	})
	if err != nil {
		return err
	}
	return printClusterInfo(cfg.Out, cfg.Output, info)
}

// RunStop deletes the cluster and its role and waits until the cluster is gone.
func RunStop(cfg *ClusterConfig) error {
	log, m, err := newClusterManager(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	return m.Stop(ctx, cluster.StopConfig{Timeout: cfg.timeout()})
}

// RunStatus prints the cluster description, or a message when there is no cluster.
func RunStatus(cfg *ClusterConfig) error {
	log, m, err := newClusterManager(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	info, err := m.Status(ctx)
	if errors.Is(err, redshift.ErrClusterNotFound) {
		_, _ = fmt.Fprintln(out(cfg.Out), "Cluster not found")
		return nil
	}
	if err != nil {
		return err
	}
	return printClusterInfo(cfg.Out, cfg.Output, info)
}

// RunOpenPort allows inbound TCP to the cluster from cfg.IngressCidr.
func RunOpenPort(cfg *ClusterConfig) error {
	log, m, err := newClusterManager(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(log, context.Background())
	defer cancel()
	return m.OpenPort(ctx, cfg.IngressCidr)
}

func printClusterInfo(w io.Writer, format string, info *redshift.ClusterInfo) error {
	if format != "" && format != OutputTable {
		return writeStructured(w, info, format)
	}
	status := info.Status
	if status == c.ClusterStatusAvailable {
		status = color.New(color.FgGreen).Sprint(status)
	}
	table := tablewriter.NewWriter(out(w))
	table.SetHeader([]string{"Key", "Value"})
	table.SetAutoWrapText(false)
	table.AppendBulk([][]string{
		{"Identifier", info.Identifier},
		{"Status", status},
		{"Endpoint", fmt.Sprintf("%v:%v", info.EndpointAddress, info.EndpointPort)},
		{"VPC", info.VpcId},
		{"Node type", info.NodeType},
		{"Nodes", fmt.Sprint(info.NumberOfNodes)},
		{"Database", info.DbName},
		{"Master user", info.MasterUser},
		{"Availability zone", info.AvailabilityZone},
		{"IAM roles", strings.Join(info.IamRoles, ", ")},
	})
	table.Render()
	return nil
}
