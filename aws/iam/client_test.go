package iam

import (
	"context"
	"encoding/json"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIAM struct {
	iamiface.IAMAPI
	createIn  *iam.CreateRoleInput
	createErr error
	getCalls  int
	attachIn  *iam.AttachRolePolicyInput
	detachErr error
	deleted   []string
}

func (f *fakeIAM) CreateRoleWithContext(ctx sdkaws.Context, in *iam.CreateRoleInput, opts ...request.Option) (*iam.CreateRoleOutput, error) {
	f.createIn = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &iam.CreateRoleOutput{Role: &iam.Role{Arn: sdkaws.String("arn:aws:iam::1:role/" + *in.RoleName)}}, nil
}

func (f *fakeIAM) GetRoleWithContext(ctx sdkaws.Context, in *iam.GetRoleInput, opts ...request.Option) (*iam.GetRoleOutput, error) {
	f.getCalls++
	return &iam.GetRoleOutput{Role: &iam.Role{Arn: sdkaws.String("arn:aws:iam::1:role/existing")}}, nil
}

func (f *fakeIAM) AttachRolePolicyWithContext(ctx sdkaws.Context, in *iam.AttachRolePolicyInput, opts ...request.Option) (*iam.AttachRolePolicyOutput, error) {
	f.attachIn = in
	return &iam.AttachRolePolicyOutput{}, nil
}

func (f *fakeIAM) DetachRolePolicyWithContext(ctx sdkaws.Context, in *iam.DetachRolePolicyInput, opts ...request.Option) (*iam.DetachRolePolicyOutput, error) {
	return &iam.DetachRolePolicyOutput{}, f.detachErr
}

func (f *fakeIAM) DeleteRoleWithContext(ctx sdkaws.Context, in *iam.DeleteRoleInput, opts ...request.Option) (*iam.DeleteRoleOutput, error) {
	f.deleted = append(f.deleted, *in.RoleName)
	return &iam.DeleteRoleOutput{}, nil
}

func TestEnsureRoleCreates(t *testing.T) {
	f := &fakeIAM{}
	arn, created, err := NewClientWithAPI(f).EnsureRole(context.Background(), "dwhRole", "Allows Redshift to Access Other AWS Services")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "arn:aws:iam::1:role/dwhRole", arn)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*f.createIn.AssumeRolePolicyDocument), &doc))
	stmt := doc["Statement"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "sts:AssumeRole", stmt["Action"])
	assert.Equal(t, "redshift.amazonaws.com", stmt["Principal"].(map[string]interface{})["Service"])
}

func TestEnsureRoleExisting(t *testing.T) {
	f := &fakeIAM{createErr: awserr.New(iam.ErrCodeEntityAlreadyExistsException, "exists", nil)}
	arn, created, err := NewClientWithAPI(f).EnsureRole(context.Background(), "dwhRole", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "arn:aws:iam::1:role/existing", arn)
	assert.Equal(t, 1, f.getCalls)
}

func TestEnsureRoleOtherError(t *testing.T) {
	f := &fakeIAM{createErr: awserr.New("AccessDenied", "no", nil)}
	_, _, err := NewClientWithAPI(f).EnsureRole(context.Background(), "dwhRole", "")
	assert.Error(t, err)
	assert.Equal(t, 0, f.getCalls)
}

func TestPolicyAndRoleCalls(t *testing.T) {
	f := &fakeIAM{}
	c := NewClientWithAPI(f)
	require.NoError(t, c.AttachPolicy(context.Background(), "dwhRole", "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess"))
	assert.Equal(t, "arn:aws:iam::aws:policy/AmazonS3ReadOnlyAccess", *f.attachIn.PolicyArn)
	require.NoError(t, c.DeleteRole(context.Background(), "dwhRole"))
	assert.Equal(t, []string{"dwhRole"}, f.deleted)
	f.detachErr = awserr.New(iam.ErrCodeNoSuchEntityException, "missing", nil)
	assert.Error(t, c.DetachPolicy(context.Background(), "dwhRole", "arn"))
}
