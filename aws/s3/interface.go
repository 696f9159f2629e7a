package s3

import (
	"context"
)

type Lister interface {
	// List returns up to max keys under prefix. A max of zero means no limit.
	List(ctx context.Context, prefix string, max int64) (keys []string, err error)
}

type BucketCreator interface {
	// CreateBucket returns false with the error when the bucket could not be created.
	CreateBucket(ctx context.Context, name string, region string) (bool, error)
}
