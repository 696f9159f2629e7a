package redshift

import (
	"context"
	"errors"
	"time"

	sdkaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/redshift"
	"github.com/aws/aws-sdk-go/service/redshift/redshiftiface"
	pkgerrors "github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/constants"
)

var (
	ErrClusterExists   = errors.New("cluster already exists")
	ErrClusterNotFound = errors.New("cluster not found")
)

// ClusterSpec is what CreateCluster asks for.
type ClusterSpec struct {
	Identifier     string
	ClusterType    string
	NodeType       string
	NodeCount      int
	DbName         string
	MasterUser     string
	MasterPassword string
	Port           int
	IamRoles       []string
}

// ClusterInfo is the subset of the describe output we use.
type ClusterInfo struct {
	Identifier       string
	Status           string
	EndpointAddress  string
	EndpointPort     int
	VpcId            string
	NodeType         string
	NumberOfNodes    int
	DbName           string
	MasterUser       string
	AvailabilityZone string
	IamRoles         []string
}

// PollEvent is reported after every describe call made while waiting.
type PollEvent struct {
	Count   int
	Elapsed time.Duration
	Status  string
}

type Client struct {
	api redshiftiface.RedshiftAPI
}

func NewClient(sess *session.Session) *Client {
	return &Client{api: redshift.New(sess)}
}

func NewClientWithAPI(api redshiftiface.RedshiftAPI) *Client {
	return &Client{api: api}
}

// CreateCluster requests a new cluster and returns without waiting.
// NumberOfNodes is only sent for multi-node clusters since the API rejects it otherwise.
func (c *Client) CreateCluster(ctx context.Context, spec ClusterSpec) error {
	in := &redshift.CreateClusterInput{
		ClusterIdentifier:  sdkaws.String(spec.Identifier),
		ClusterType:        sdkaws.String(spec.ClusterType),
		NodeType:           sdkaws.String(spec.NodeType),
		DBName:             sdkaws.String(spec.DbName),
		MasterUsername:     sdkaws.String(spec.MasterUser),
		MasterUserPassword: sdkaws.String(spec.MasterPassword),
		Port:               sdkaws.Int64(int64(spec.Port)),
		IamRoles:           sdkaws.StringSlice(spec.IamRoles),
	}
	if spec.ClusterType == constants.ClusterTypeMultiNode {
		in.NumberOfNodes = sdkaws.Int64(int64(spec.NodeCount))
	}
	if _, err := c.api.CreateClusterWithContext(ctx, in); err != nil {
		if isCode(err, redshift.ErrCodeClusterAlreadyExistsFault) {
			return ErrClusterExists
		}
		return pkgerrors.Wrapf(err, "error creating cluster %v", spec.Identifier)
	}
	return nil
}

// DescribeCluster returns ErrClusterNotFound when the cluster does not exist.
func (c *Client) DescribeCluster(ctx context.Context, id string) (*ClusterInfo, error) {
	out, err := c.api.DescribeClustersWithContext(ctx, &redshift.DescribeClustersInput{
		ClusterIdentifier: sdkaws.String(id),
	})
	if err != nil {
		if isCode(err, redshift.ErrCodeClusterNotFoundFault) {
			return nil, ErrClusterNotFound
		}
		return nil, pkgerrors.Wrapf(err, "error describing cluster %v", id)
	}
	if len(out.Clusters) == 0 {
		return nil, ErrClusterNotFound
	}
	return toClusterInfo(out.Clusters[0]), nil
}

// DeleteCluster deletes the cluster without a final snapshot.
func (c *Client) DeleteCluster(ctx context.Context, id string) error {
	_, err := c.api.DeleteClusterWithContext(ctx, &redshift.DeleteClusterInput{
		ClusterIdentifier:        sdkaws.String(id),
		SkipFinalClusterSnapshot: sdkaws.Bool(true),
	})
	if err != nil {
		if isCode(err, redshift.ErrCodeClusterNotFoundFault) {
			return ErrClusterNotFound
		}
		return pkgerrors.Wrapf(err, "error deleting cluster %v", id)
	}
	return nil
}

// WaitForStatus polls every poll until the cluster reports status or ctx ends.
func (c *Client) WaitForStatus(ctx context.Context, id string, status string, poll time.Duration, onPoll func(PollEvent)) (*ClusterInfo, error) {
	var info *ClusterInfo
	err := c.poll(ctx, poll, func(count int, elapsed time.Duration) (bool, error) {
		var err error
		info, err = c.DescribeCluster(ctx, id)
		if err != nil {
			return false, err
		}
		if onPoll != nil {
			onPoll(PollEvent{Count: count, Elapsed: elapsed, Status: info.Status})
		}
		return info.Status == status, nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}

// WaitForDeletion polls every poll until the cluster is gone or ctx ends.
func (c *Client) WaitForDeletion(ctx context.Context, id string, poll time.Duration, onPoll func(PollEvent)) error {
	return c.poll(ctx, poll, func(count int, elapsed time.Duration) (bool, error) {
		info, err := c.DescribeCluster(ctx, id)
		if errors.Is(err, ErrClusterNotFound) {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		if onPoll != nil {
			onPoll(PollEvent{Count: count, Elapsed: elapsed, Status: info.Status})
		}
		return false, nil
	})
}

func (c *Client) poll(ctx context.Context, interval time.Duration, check func(count int, elapsed time.Duration) (bool, error)) error {
	if interval <= 0 {
		interval = constants.ClusterPollInterval
	}
	started := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for count := 1; ; count++ {
		done, err := check(count, time.Since(started))
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return pkgerrors.Wrapf(ctx.Err(), "gave up after %v checks", count)
		case <-ticker.C:
		}
	}
}

func isCode(err error, code string) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == code
}

func toClusterInfo(cl *redshift.Cluster) *ClusterInfo {
	info := &ClusterInfo{
		Identifier:       sdkaws.StringValue(cl.ClusterIdentifier),
		Status:           sdkaws.StringValue(cl.ClusterStatus),
		VpcId:            sdkaws.StringValue(cl.VpcId),
		NodeType:         sdkaws.StringValue(cl.NodeType),
		NumberOfNodes:    int(sdkaws.Int64Value(cl.NumberOfNodes)),
		DbName:           sdkaws.StringValue(cl.DBName),
		MasterUser:       sdkaws.StringValue(cl.MasterUsername),
		AvailabilityZone: sdkaws.StringValue(cl.AvailabilityZone),
	}
	if cl.Endpoint != nil {
		info.EndpointAddress = sdkaws.StringValue(cl.Endpoint.Address)
		info.EndpointPort = int(sdkaws.Int64Value(cl.Endpoint.Port))
	}
	for _, r := range cl.IamRoles {
		info.IamRoles = append(info.IamRoles, sdkaws.StringValue(r.IamRoleArn))
	}
	return info
}
