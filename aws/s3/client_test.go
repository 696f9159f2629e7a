package s3

import (
	"context"
	"errors"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	pages     [][]string
	listIn    *s3.ListObjectsV2Input
	createIn  *s3.CreateBucketInput
	createErr error
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx sdkaws.Context, in *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	f.listIn = in
	for i, p := range f.pages {
		out := &s3.ListObjectsV2Output{}
		for _, k := range p {
			out.Contents = append(out.Contents, &s3.Object{Key: sdkaws.String(k)})
		}
		if !fn(out, i == len(f.pages)-1) {
			break
		}
	}
	return nil
}

func (f *fakeS3) CreateBucketWithContext(ctx sdkaws.Context, in *s3.CreateBucketInput, opts ...request.Option) (*s3.CreateBucketOutput, error) {
	f.createIn = in
	return &s3.CreateBucketOutput{}, f.createErr
}

func TestList(t *testing.T) {
	f := &fakeS3{pages: [][]string{{"log_data/a.json", "log_data/b.json"}, {"log_data/c.json"}}}
	c := NewClientWithAPI(f, "udacity-dend")
	keys, err := c.List(context.Background(), "log_data", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"log_data/a.json", "log_data/b.json", "log_data/c.json"}, keys)
	assert.Equal(t, "udacity-dend", *f.listIn.Bucket)
	assert.Equal(t, "log_data", *f.listIn.Prefix)

	keys, err = c.List(context.Background(), "log_data", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"log_data/a.json"}, keys)
	assert.Equal(t, int64(1), *f.listIn.MaxKeys)
}

func TestCreateBucket(t *testing.T) {
	f := &fakeS3{}
	c := NewClientWithAPI(f, "")
	ok, err := c.CreateBucket(context.Background(), "sparkify-stage", "us-west-2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "us-west-2", *f.createIn.CreateBucketConfiguration.LocationConstraint)

	_, err = c.CreateBucket(context.Background(), "sparkify-stage", "us-east-1")
	require.NoError(t, err)
	assert.Nil(t, f.createIn.CreateBucketConfiguration)

	f.createErr = errors.New("BucketAlreadyOwnedByYou")
	ok, err = c.CreateBucket(context.Background(), "sparkify-stage", "us-west-2")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestParseS3Url(t *testing.T) {
	b, err := ParseS3Url("s3://udacity-dend/log_data/", "us-west-2")
	require.NoError(t, err)
	assert.Equal(t, "udacity-dend", b.Name)
	assert.Equal(t, "log_data", b.Prefix)
	assert.Equal(t, "s3://udacity-dend/log_data/2018/11", b.Path("2018/11"))

	b, err = ParseS3Url("udacity-dend", "")
	require.NoError(t, err)
	assert.Equal(t, "s3://udacity-dend/song_data", b.Path("/song_data"))

	_, err = ParseS3Url("gs://bucket/x", "us-west-2")
	assert.Error(t, err)
	_, err = ParseS3Url("s3:///x", "us-west-2")
	assert.Error(t, err)
}
