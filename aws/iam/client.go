package iam

import (
	"context"
	"encoding/json"
	"errors"

	sdkaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	pkgerrors "github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/constants"
)

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
	Action    string            `json:"Action"`
}

// AssumeRolePolicy lets the service principal assume the role.
func AssumeRolePolicy(service string) (string, error) {
	b, err := json.Marshal(policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{{
			Effect:    "Allow",
			Principal: map[string]string{"Service": service},
			Action:    "sts:AssumeRole",
		}},
	})
	return string(b), err
}

type Client struct {
	api iamiface.IAMAPI
}

func NewClient(sess *session.Session) *Client {
	return &Client{api: iam.New(sess)}
}

func NewClientWithAPI(api iamiface.IAMAPI) *Client {
	return &Client{api: api}
}

// EnsureRole creates a role that Redshift can assume.
// If the role already exists its ARN is fetched instead and created is false.
func (c *Client) EnsureRole(ctx context.Context, name string, description string) (arn string, created bool, err error) {
	doc, err := AssumeRolePolicy(constants.RedshiftServicePrincipal)
	if err != nil {
		return "", false, err
	}
	out, err := c.api.CreateRoleWithContext(ctx, &iam.CreateRoleInput{
		RoleName:                 sdkaws.String(name),
		Description:              sdkaws.String(description),
		AssumeRolePolicyDocument: sdkaws.String(doc),
	})
	if err == nil {
		return sdkaws.StringValue(out.Role.Arn), true, nil
	}
	if !isCode(err, iam.ErrCodeEntityAlreadyExistsException) {
		return "", false, pkgerrors.Wrapf(err, "error creating role %v", name)
	}
	got, err := c.api.GetRoleWithContext(ctx, &iam.GetRoleInput{RoleName: sdkaws.String(name)})
	if err != nil {
		return "", false, pkgerrors.Wrapf(err, "error fetching existing role %v", name)
	}
	return sdkaws.StringValue(got.Role.Arn), false, nil
}

func (c *Client) AttachPolicy(ctx context.Context, roleName string, policyArn string) error {
	_, err := c.api.AttachRolePolicyWithContext(ctx, &iam.AttachRolePolicyInput{
		RoleName:  sdkaws.String(roleName),
		PolicyArn: sdkaws.String(policyArn),
	})
	return pkgerrors.Wrapf(err, "error attaching policy %v to role %v", policyArn, roleName)
}

func (c *Client) DetachPolicy(ctx context.Context, roleName string, policyArn string) error {
	_, err := c.api.DetachRolePolicyWithContext(ctx, &iam.DetachRolePolicyInput{
		RoleName:  sdkaws.String(roleName),
		PolicyArn: sdkaws.String(policyArn),
	})
	return pkgerrors.Wrapf(err, "error detaching policy %v from role %v", policyArn, roleName)
}

func (c *Client) DeleteRole(ctx context.Context, roleName string) error {
	_, err := c.api.DeleteRoleWithContext(ctx, &iam.DeleteRoleInput{RoleName: sdkaws.String(roleName)})
	return pkgerrors.Wrapf(err, "error deleting role %v", roleName)
}

func isCode(err error, code string) bool {
	var aerr awserr.Error
	return errors.As(err, &aerr) && aerr.Code() == code
}
