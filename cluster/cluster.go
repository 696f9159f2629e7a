// Package cluster launches and tears down the Redshift cluster described by dwh.cfg.
package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	awsutil "github.com/relloyd/sparkify-dwh/aws"
	"github.com/relloyd/sparkify-dwh/aws/ec2"
	"github.com/relloyd/sparkify-dwh/aws/iam"
	"github.com/relloyd/sparkify-dwh/aws/redshift"
	"github.com/relloyd/sparkify-dwh/config"
	c "github.com/relloyd/sparkify-dwh/constants"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/rdbms"
	"github.com/relloyd/sparkify-dwh/rdbms/shared"
)

const roleDescription = "Allows Redshift to Access Other AWS Services"

type LaunchConfig struct {
	CredentialsCsv string // optional AWS console CSV to import into AWS_ACCESS first.
	OpenPort       bool
	IngressCidr    string
	SaveConnection string // name of a redshift connection to store once the cluster is up.
	Timeout        time.Duration
}

type StopConfig struct {
	Timeout time.Duration
}

// Manager runs the cluster lifecycle against the AWS APIs returned by Clients.
type Manager struct {
	Log          logger.Logger
	Config       ConfigUpdater
	Clients      ClientFactory
	Connections  ConnectionSaver
	PollInterval time.Duration
}

func NewManager(log logger.Logger, cfg ConfigUpdater, connections ConnectionSaver) *Manager {
	return &Manager{
		Log:          log,
		Config:       cfg,
		Clients:      NewAwsClients,
		Connections:  connections,
		PollInterval: c.ClusterPollInterval,
	}
}

// NewAwsClients opens a session with the AWS_ACCESS keys, or the default chain when they are empty.
func NewAwsClients(d config.Dwh) (*Clients, error) {
	sess, err := awsutil.NewSession(awsutil.Credentials{
		AccessKeyId:     d.AwsAccess.AccessKeyId,
		SecretAccessKey: d.AwsAccess.SecretAccessKey,
		Region:          d.AwsAccess.Region,
	})
	if err != nil {
		return nil, err
	}
	return &Clients{
		Cluster: redshift.NewClient(sess),
		Roles:   iam.NewClient(sess),
		Network: ec2.NewClient(sess),
	}, nil
}

func (m *Manager) clients() (config.Dwh, *Clients, error) {
	d := m.Config.Config()
	if err := d.Validate(); err != nil {
		return d, nil, errors.Wrap(err, "dwh config is incomplete")
	}
	cl, err := m.Clients(d)
	if err != nil {
		return d, nil, errors.Wrap(err, "error creating AWS clients")
	}
	return d, cl, nil
}

func (m *Manager) pollInterval() time.Duration {
	if m.PollInterval <= 0 {
		return c.ClusterPollInterval
	}
	return m.PollInterval
}

func (m *Manager) logPoll(e redshift.PollEvent) {
	m.Log.Info("Status checked ", e.Count, " time(s), cluster is '", e.Status, "', time since initiated ", e.Elapsed.Round(time.Second))
}

// Launch creates the IAM role and the cluster, then waits for the cluster to become available.
// The role ARN and the endpoint address are written back to dwh.cfg.
func (m *Manager) Launch(ctx context.Context, lc LaunchConfig) (*redshift.ClusterInfo, error) {
	if lc.CredentialsCsv != "" {
		m.Log.Info("Importing AWS credentials from ", lc.CredentialsCsv)
		if err := config.ImportCredentialsCsv(lc.CredentialsCsv, m.Config); err != nil {
			return nil, err
		}
	}
	d, cl, err := m.clients()
	if err != nil {
		return nil, err
	}
	// IAM role.
	arn, created, err := cl.Roles.EnsureRole(ctx, d.IamRole.Name, roleDescription)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating IAM role %v", d.IamRole.Name)
	}
	if created {
		m.Log.Info("IAM role ARN: ", arn)
	} else {
		m.Log.Info("IAM role already exists, ARN: ", arn)
	}
	if err = m.Config.UpdateSection(config.SectionIamRole, map[string]string{"redshift_arn": arn}); err != nil {
		return nil, err
	}
	if err = cl.Roles.AttachPolicy(ctx, d.IamRole.Name, d.IamRole.PolicyArn); err != nil {
		return nil, errors.Wrapf(err, "error attaching policy %v to role %v", d.IamRole.PolicyArn, d.IamRole.Name)
	}
	m.Log.Info("Successfully created role and attached policy ", d.IamRole.PolicyArn)
	// Cluster.
	m.Log.Info("Creating Redshift cluster ", d.Cluster.Identifier)
	err = cl.Cluster.CreateCluster(ctx, redshift.ClusterSpec{
		Identifier:     d.Cluster.Identifier,
		ClusterType:    d.Cluster.ClusterType,
		NodeType:       d.Cluster.NodeType,
		NodeCount:      d.Cluster.NodeCount,
		DbName:         d.Cluster.DbName,
		MasterUser:     d.Cluster.DbUser,
		MasterPassword: d.Cluster.DbPassword,
		Port:           d.Cluster.DbPort,
		IamRoles:       []string{arn},
	})
	if errors.Is(err, redshift.ErrClusterExists) {
		m.Log.Warn("Cluster ", d.Cluster.Identifier, " already exists, waiting for it to become available")
	} else if err != nil {
		return nil, errors.Wrap(err, "could not create cluster")
	} else {
		m.Log.Info("Create cluster call made")
	}
	waitCtx, cancel := withTimeout(ctx, lc.Timeout)
	defer cancel()
	info, err := cl.Cluster.WaitForStatus(waitCtx, d.Cluster.Identifier, c.ClusterStatusAvailable, m.pollInterval(), m.logPoll)
	if err != nil {
		return nil, errors.Wrapf(err, "cluster %v did not become available", d.Cluster.Identifier)
	}
	if err = m.Config.UpdateSection(config.SectionCluster, map[string]string{"host": info.EndpointAddress}); err != nil {
		return info, err
	}
	m.Log.Info("Cluster is created and available at ", info.EndpointAddress)
	if lc.OpenPort {
		if err := m.openIngress(ctx, cl.Network, info, d, lc.IngressCidr); err != nil {
			m.Log.Warn("Can not open TCP port: ", err)
		}
	}
	if lc.SaveConnection != "" {
		if err := m.saveConnection(lc.SaveConnection, info.EndpointAddress); err != nil {
			return info, err
		}
	}
	return info, nil
}

// Stop removes the IAM role and deletes the cluster without a final snapshot, then waits for it to go.
// Failures before the wait are logged so that a partly created environment can still be removed.
func (m *Manager) Stop(ctx context.Context, sc StopConfig) error {
	d, cl, err := m.clients()
	if err != nil {
		return err
	}
	if err := cl.Roles.DetachPolicy(ctx, d.IamRole.Name, d.IamRole.PolicyArn); err != nil {
		m.Log.Warn("Could not remove role policy: ", err)
	} else {
		m.Log.Info("Detached role policy")
	}
	if err := cl.Roles.DeleteRole(ctx, d.IamRole.Name); err != nil {
		m.Log.Warn("Could not remove IAM role: ", err)
	} else {
		m.Log.Info("Removed IAM role ", d.IamRole.Name)
	}
	if err := cl.Cluster.DeleteCluster(ctx, d.Cluster.Identifier); err != nil {
		m.Log.Warn("Could not delete Redshift cluster: ", err)
	} else {
		m.Log.Info("Deleted Redshift cluster ", d.Cluster.Identifier)
	}
	waitCtx, cancel := withTimeout(ctx, sc.Timeout)
	defer cancel()
	start := time.Now()
	if err := cl.Cluster.WaitForDeletion(waitCtx, d.Cluster.Identifier, m.pollInterval(), m.logPoll); err != nil {
		return errors.Wrapf(err, "cluster %v was not deleted", d.Cluster.Identifier)
	}
	m.Log.Info("Cluster is deleted successfully after ", time.Since(start).Round(time.Second))
	return nil
}

// Status describes the cluster. It returns redshift.ErrClusterNotFound when there is none.
func (m *Manager) Status(ctx context.Context) (*redshift.ClusterInfo, error) {
	d, cl, err := m.clients()
	if err != nil {
		return nil, err
	}
	return cl.Cluster.DescribeCluster(ctx, d.Cluster.Identifier)
}

// OpenPort allows inbound TCP to the cluster port from cidr.
func (m *Manager) OpenPort(ctx context.Context, cidr string) error {
	d, cl, err := m.clients()
	if err != nil {
		return err
	}
	info, err := cl.Cluster.DescribeCluster(ctx, d.Cluster.Identifier)
	if err != nil {
		return err
	}
	return m.openIngress(ctx, cl.Network, info, d, cidr)
}

func (m *Manager) openIngress(ctx context.Context, n NetworkAPI, info *redshift.ClusterInfo, d config.Dwh, cidr string) error {
	if cidr == "" {
		cidr = c.DefaultIngressCidr
	}
	port := d.Cluster.DbPort
	if info.EndpointPort != 0 {
		port = info.EndpointPort
	}
	if info.VpcId == "" {
		return fmt.Errorf("cluster %v has no VPC", info.Identifier)
	}
	sg, err := n.OpenIngress(ctx, info.VpcId, cidr, port)
	if err != nil {
		return err
	}
	m.Log.Info("Opened TCP port ", port, " to ", cidr, " on security group ", sg)
	return nil
}

// saveConnection stores a redshift connection for the DAG built from the CLUSTER section.
func (m *Manager) saveConnection(name string, host string) error {
	if m.Connections == nil {
		return errors.New("no connection store configured")
	}
	d := m.Config.Config()
	dsn := shared.NewRedshiftDsn(d.Cluster.DbUser, d.Cluster.DbPassword, host, d.Cluster.DbPort, d.Cluster.DbName)
	conn := shared.ConnectionDetails{
		Type:        c.ConnectionTypeRedshift,
		LogicalName: name,
		Data:        map[string]string{shared.DefaultConnectionKeyNames.Dsn: dsn},
	}
	if err := m.Connections.Set(name, conn); err != nil {
		return errors.Wrapf(err, "error saving connection %v", name)
	}
	m.Log.Info("Saved connection ", conn)
	return nil
}

// CreateTables runs the DDL script in one transaction.
func CreateTables(ctx context.Context, log logger.Logger, db shared.Connector, ddl string) error {
	stmts := rdbms.SplitStatements(ddl)
	if len(stmts) == 0 {
		return errors.New("no statements found in DDL")
	}
	log.Info("Creating tables using ", len(stmts), " statements")
	if err := rdbms.RunStatementsInTx(ctx, log, db, stmts...); err != nil {
		return errors.Wrap(err, "could not create tables")
	}
	log.Info("Created tables successfully")
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
