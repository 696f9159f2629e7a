// Package aws builds SDK sessions from stored connections or dwh.cfg.
// Service wrappers live in the sub-packages.
package aws

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"
)

// Credentials are the keys and region used to reach AWS.
// When AccessKeyId and SecretAccessKey are empty the default provider chain is used.
type Credentials struct {
	AccessKeyId     string
	SecretAccessKey string
	SessionToken    string
	Region          string `errorTxt:"AWS region" mandatory:"yes"`
}

// HasStaticKeys is true when both parts of the key pair are set.
func (c Credentials) HasStaticKeys() bool {
	return c.AccessKeyId != "" && c.SecretAccessKey != ""
}

// NewSession returns a session for c.Region.
func NewSession(c Credentials) (*session.Session, error) {
	if c.Region == "" {
		return nil, errors.New("AWS region is required")
	}
	cfg := sdkaws.NewConfig().WithRegion(c.Region)
	if c.HasStaticKeys() {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(c.AccessKeyId, c.SecretAccessKey, c.SessionToken))
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "error creating AWS session")
	}
	return sess, nil
}

// CredentialsProvider resolves the keys that a bulk COPY should present to S3.
type CredentialsProvider interface {
	Retrieve(ctx context.Context) (Credentials, error)
}

// NewCredentialsProvider returns c as-is when it holds static keys,
// else it resolves keys through the SDK default chain on each call.
func NewCredentialsProvider(c Credentials) CredentialsProvider {
	if c.HasStaticKeys() {
		return staticProvider(c)
	}
	return &chainProvider{region: c.Region}
}

type staticProvider Credentials

func (s staticProvider) Retrieve(ctx context.Context) (Credentials, error) {
	return Credentials(s), nil
}

type chainProvider struct {
	region string
}

func (p *chainProvider) Retrieve(ctx context.Context) (Credentials, error) {
	sess, err := NewSession(Credentials{Region: p.region})
	if err != nil {
		return Credentials{}, err
	}
	v, err := sess.Config.Credentials.Get()
	if err != nil {
		return Credentials{}, errors.Wrap(err, "error resolving AWS credentials")
	}
	return Credentials{
		AccessKeyId:     v.AccessKeyID,
		SecretAccessKey: v.SecretAccessKey,
		SessionToken:    v.SessionToken,
		Region:          p.region,
	}, nil
}
