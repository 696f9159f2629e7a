package cluster

import (
	"context"
	"time"

	"github.com/relloyd/sparkify-dwh/aws/redshift"
	"github.com/relloyd/sparkify-dwh/config"
)

//go:generate mockgen -destination=mocks/mock_cluster.go -package=mocks github.com/relloyd/sparkify-dwh/cluster ClusterAPI,RoleAPI,NetworkAPI,ConfigUpdater,ConnectionSaver

// ClusterAPI is the part of aws/redshift.Client the lifecycle uses.
type ClusterAPI interface {
	CreateCluster(ctx context.Context, spec redshift.ClusterSpec) error
	DescribeCluster(ctx context.Context, id string) (*redshift.ClusterInfo, error)
	DeleteCluster(ctx context.Context, id string) error
	WaitForStatus(ctx context.Context, id string, status string, poll time.Duration, onPoll func(redshift.PollEvent)) (*redshift.ClusterInfo, error)
	WaitForDeletion(ctx context.Context, id string, poll time.Duration, onPoll func(redshift.PollEvent)) error
}

type RoleAPI interface {
	EnsureRole(ctx context.Context, name string, description string) (arn string, created bool, err error)
	AttachPolicy(ctx context.Context, roleName string, policyArn string) error
	DetachPolicy(ctx context.Context, roleName string, policyArn string) error
	DeleteRole(ctx context.Context, roleName string) error
}

type NetworkAPI interface {
	OpenIngress(ctx context.Context, vpcId string, cidr string, port int) (groupId string, err error)
}

// ConfigUpdater reads dwh.cfg and writes values back into it.
type ConfigUpdater interface {
	Config() config.Dwh
	UpdateSection(section string, values map[string]string) error
}

// ConnectionSaver stores a named connection, e.g. config.Connections.
type ConnectionSaver interface {
	Set(key string, val interface{}) error
}

// Clients are the AWS APIs built from the credentials in dwh.cfg.
type Clients struct {
	Cluster ClusterAPI
	Roles   RoleAPI
	Network NetworkAPI
}

// ClientFactory builds Clients once dwh.cfg holds usable credentials.
type ClientFactory func(d config.Dwh) (*Clients, error)
