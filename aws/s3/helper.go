package s3

import (
	"fmt"
	"net/url"
	"strings"
)

type AwsS3Bucket struct {
	Name   string `errorTxt:"bucket name" mandatory:"yes"`
	Prefix string `errorTxt:"bucket prefix"`
	Region string `errorTxt:"bucket region" mandatory:"yes"`
}

// Path returns s3://<bucket>/<key> where key is appended to the prefix.
func (b AwsS3Bucket) Path(key string) string {
	parts := make([]string, 0, 2)
	if p := strings.Trim(b.Prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	if k := strings.TrimLeft(key, "/"); k != "" {
		parts = append(parts, k)
	}
	return fmt.Sprintf("s3://%v/%v", b.Name, strings.Join(parts, "/"))
}

// ParseS3Url expects bucketPrefix to be of the form [s3://]<bucket>[/<prefix>]
// and returns an AwsS3Bucket populated with its parts and the supplied region.
// The region may be empty.
func ParseS3Url(bucketPrefix string, region string) (retval AwsS3Bucket, err error) {
	expectedScheme := "s3"
	if !strings.Contains(bucketPrefix, "://") {
		bucketPrefix = expectedScheme + "://" + bucketPrefix
	}
	s3url, err := url.Parse(bucketPrefix)
	if err != nil {
		return retval, fmt.Errorf("error parsing S3 URL: %v", err)
	}
	if s3url.Scheme != expectedScheme {
		return retval, fmt.Errorf("expected S3 URL scheme %q but got %q", expectedScheme, s3url.Scheme)
	}
	retval.Name = s3url.Host
	if retval.Name == "" {
		return retval, fmt.Errorf("failed to parse bucket name from %q", bucketPrefix)
	}
	retval.Prefix = strings.Trim(s3url.Path, "/")
	retval.Region = region
	return
}
