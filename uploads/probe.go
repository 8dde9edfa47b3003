// Package uploads checks the object storage bucket that signed upload
// policies point at.
package uploads

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrBucketNotFound is returned when the bucket does not exist.
var ErrBucketNotFound = errors.New("bucket not found")

// Config selects the bucket and the S3 endpoint serving it.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. MinIO or LocalStack
	AccessKey string
	SecretKey string
}

// HeadBucketAPI is the subset of the S3 client used by BucketProbe.
type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// NewClient builds an S3 client for cfg. Static credentials are used when
// both keys are set.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// BucketProbe verifies that a bucket exists and is reachable with the
// configured credentials.
type BucketProbe struct {
	api    HeadBucketAPI
	bucket string
}

func NewBucketProbe(api HeadBucketAPI, bucket string) *BucketProbe {
	return &BucketProbe{api: api, bucket: bucket}
}

// Verify issues a HeadBucket request for the probe's bucket.
func (p *BucketProbe) Verify(ctx context.Context) error {
	if p.bucket == "" {
		return errors.New("verify bucket: bucket name is empty")
	}

	_, err := p.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return fmt.Errorf("verify bucket %q: %w", p.bucket, ErrBucketNotFound)
		}
		return fmt.Errorf("verify bucket %q: %w", p.bucket, err)
	}
	return nil
}
