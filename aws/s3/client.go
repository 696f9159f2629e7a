package s3

import (
	"context"

	sdkaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/pkg/errors"
)

const regionUsEast1 = "us-east-1"

// Client lists keys in one bucket and creates buckets.
type Client struct {
	bucket string
	api    s3iface.S3API
}

func NewClient(sess *session.Session, bucket string) *Client {
	return &Client{bucket: bucket, api: s3.New(sess)}
}

func NewClientWithAPI(api s3iface.S3API, bucket string) *Client {
	return &Client{bucket: bucket, api: api}
}

func (c *Client) List(ctx context.Context, prefix string, max int64) ([]string, error) {
	keys := make([]string, 0)
	in := &s3.ListObjectsV2Input{
		Bucket: sdkaws.String(c.bucket),
		Prefix: sdkaws.String(prefix),
	}
	if max > 0 && max < 1000 {
		in.MaxKeys = sdkaws.Int64(max)
	}
	err := c.api.ListObjectsV2PagesWithContext(ctx, in, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, o := range page.Contents {
			keys = append(keys, sdkaws.StringValue(o.Key))
			if max > 0 && int64(len(keys)) >= max {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error listing s3://%v/%v", c.bucket, prefix)
	}
	return keys, nil
}

// CreateBucket creates name in region. us-east-1 takes no location constraint.
func (c *Client) CreateBucket(ctx context.Context, name string, region string) (bool, error) {
	in := &s3.CreateBucketInput{Bucket: sdkaws.String(name)}
	if region != "" && region != regionUsEast1 {
		in.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: sdkaws.String(region),
		}
	}
	if _, err := c.api.CreateBucketWithContext(ctx, in); err != nil {
		return false, errors.Wrapf(err, "error creating bucket %v", name)
	}
	return true, nil
}
