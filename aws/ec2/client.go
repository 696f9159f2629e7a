package ec2

import (
	"context"
	"errors"

	sdkaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	pkgerrors "github.com/pkg/errors"
)

const (
	errCodeDuplicatePermission = "InvalidPermission.Duplicate"
	defaultGroupName           = "default"
)

type Client struct {
	api ec2iface.EC2API
}

func NewClient(sess *session.Session) *Client {
	return &Client{api: ec2.New(sess)}
}

func NewClientWithAPI(api ec2iface.EC2API) *Client {
	return &Client{api: api}
}

// OpenIngress allows TCP traffic from cidr to port on the VPC's default security group,
// falling back to the first group found in the VPC.
// An existing identical rule counts as success.
func (c *Client) OpenIngress(ctx context.Context, vpcId string, cidr string, port int) (groupId string, err error) {
	out, err := c.api.DescribeSecurityGroupsWithContext(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []*ec2.Filter{{
			Name:   sdkaws.String("vpc-id"),
			Values: sdkaws.StringSlice([]string{vpcId}),
		}},
	})
	if err != nil {
		return "", pkgerrors.Wrapf(err, "error describing security groups in %v", vpcId)
	}
	if len(out.SecurityGroups) == 0 {
		return "", pkgerrors.Errorf("no security groups found in %v", vpcId)
	}
	sg := out.SecurityGroups[0]
	for _, g := range out.SecurityGroups {
		if sdkaws.StringValue(g.GroupName) == defaultGroupName {
			sg = g
			break
		}
	}
	groupId = sdkaws.StringValue(sg.GroupId)
	_, err = c.api.AuthorizeSecurityGroupIngressWithContext(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:    sg.GroupId,
		CidrIp:     sdkaws.String(cidr),
		IpProtocol: sdkaws.String("tcp"),
		FromPort:   sdkaws.Int64(int64(port)),
		ToPort:     sdkaws.Int64(int64(port)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == errCodeDuplicatePermission {
			return groupId, nil
		}
		return groupId, pkgerrors.Wrapf(err, "error authorizing ingress on %v", groupId)
	}
	return groupId, nil
}
