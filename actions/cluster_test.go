package actions

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/relloyd/sparkify-dwh/aws/redshift"
	"github.com/relloyd/sparkify-dwh/cluster"
	"github.com/relloyd/sparkify-dwh/cluster/mocks"
	"github.com/relloyd/sparkify-dwh/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClients struct {
	cluster *mocks.MockClusterAPI
	roles   *mocks.MockRoleAPI
	network *mocks.MockNetworkAPI
}

func useMockClients(t *testing.T) mockClients {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	m := mockClients{
		cluster: mocks.NewMockClusterAPI(ctrl),
		roles:   mocks.NewMockRoleAPI(ctrl),
		network: mocks.NewMockNetworkAPI(ctrl),
	}
	orig := clusterClientFactory
	clusterClientFactory = func(d config.Dwh) (*cluster.Clients, error) {
		return &cluster.Clients{Cluster: m.cluster, Roles: m.roles, Network: m.network}, nil
	}
	t.Cleanup(func() { clusterClientFactory = orig })
	return m
}

var testClusterInfo = &redshift.ClusterInfo{
	Identifier:      "dwhCluster",
	Status:          "available",
	EndpointAddress: "dwhcluster.abc.us-west-2.redshift.amazonaws.com",
	EndpointPort:    5439,
	VpcId:           "vpc-1",
	NodeType:        "dc2.large",
	NumberOfNodes:   4,
	DbName:          "dwh",
	MasterUser:      "dwhuser",
}

func TestRunStatus(t *testing.T) {
	m := useMockClients(t)
	m.cluster.EXPECT().DescribeCluster(gomock.Any(), "dwhCluster").Return(testClusterInfo, nil)
	buf := &bytes.Buffer{}
	require.NoError(t, RunStatus(&ClusterConfig{DwhFile: writeDwh(t), LogLevel: testLogLevel, Out: buf}))
	assert.Contains(t, buf.String(), "dwhcluster.abc.us-west-2.redshift.amazonaws.com:5439")
	assert.Contains(t, buf.String(), "vpc-1")

	m.cluster.EXPECT().DescribeCluster(gomock.Any(), "dwhCluster").Return(testClusterInfo, nil)
	buf.Reset()
	require.NoError(t, RunStatus(&ClusterConfig{DwhFile: writeDwh(t), Output: OutputJson, LogLevel: testLogLevel, Out: buf}))
	assert.Contains(t, buf.String(), `"Identifier": "dwhCluster"`)
}

func TestRunStatusNotFound(t *testing.T) {
	m := useMockClients(t)
	m.cluster.EXPECT().DescribeCluster(gomock.Any(), "dwhCluster").Return(nil, redshift.ErrClusterNotFound)
	buf := &bytes.Buffer{}
	require.NoError(t, RunStatus(&ClusterConfig{DwhFile: writeDwh(t), LogLevel: testLogLevel, Out: buf}))
	assert.Equal(t, "Cluster not found\n", buf.String())

	m.cluster.EXPECT().DescribeCluster(gomock.Any(), "dwhCluster").Return(nil, errors.New("throttled"))
	assert.Error(t, RunStatus(&ClusterConfig{DwhFile: writeDwh(t), LogLevel: testLogLevel, Out: buf}))
}

func TestRunOpenPort(t *testing.T) {
	m := useMockClients(t)
	m.cluster.EXPECT().DescribeCluster(gomock.Any(), "dwhCluster").Return(testClusterInfo, nil)
	m.network.EXPECT().OpenIngress(gomock.Any(), "vpc-1", "10.0.0.0/8", 5439).Return("sg-1", nil)
	require.NoError(t, RunOpenPort(&ClusterConfig{DwhFile: writeDwh(t), IngressCidr: "10.0.0.0/8", LogLevel: testLogLevel}))
}

func TestRunStop(t *testing.T) {
	m := useMockClients(t)
	gomock.InOrder(
		m.roles.EXPECT().DetachPolicy(gomock.Any(), "dwhRole", "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess").Return(nil),
		m.roles.EXPECT().DeleteRole(gomock.Any(), "dwhRole").Return(errors.New("NoSuchEntity")),
		m.cluster.EXPECT().DeleteCluster(gomock.Any(), "dwhCluster").Return(nil),
		m.cluster.EXPECT().WaitForDeletion(gomock.Any(), "dwhCluster", gomock.Any(), gomock.Any()).Return(nil),
	)
	require.NoError(t, RunStop(&ClusterConfig{DwhFile: writeDwh(t), LogLevel: testLogLevel}))
}

func TestClusterConfigValidation(t *testing.T) {
	err := RunStatus(&ClusterConfig{LogLevel: testLogLevel})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dwh config file")
	assert.Error(t, RunStatus(&ClusterConfig{DwhFile: "/does/not/exist.cfg", LogLevel: testLogLevel}))
}
