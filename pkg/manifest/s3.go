package manifest

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PutObjectAPI is the part of the S3 client the publisher needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Publisher uploads manifests to a fixed bucket and key.
//
// Example usage:
//
//	pub, err := manifest.NewS3PublisherFromConfig(ctx, "eu-west-1", "console-assets", "routes.json")
//	if err != nil {
//		return err
//	}
//	err = pub.Publish(ctx, manifest.Build(tree))
type S3Publisher struct {
	client PutObjectAPI
	bucket string
	key    string
}

// NewS3Publisher creates a publisher around an existing client.
func NewS3Publisher(client PutObjectAPI, bucket, key string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, key: key}
}

// NewS3PublisherFromConfig loads the default AWS credential chain and builds
// an S3 client for region. An empty region keeps whatever the environment
// configures.
func NewS3PublisherFromConfig(ctx context.Context, region, bucket, key string) (*S3Publisher, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3Publisher(s3.NewFromConfig(cfg), bucket, key), nil
}

// Location returns the s3:// URI the publisher writes to.
func (p *S3Publisher) Location() string {
	return "s3://" + p.bucket + "/" + p.key
}

// Publish uploads m as JSON.
func (p *S3Publisher) Publish(ctx context.Context, m *Manifest) error {
	if p.bucket == "" || p.key == "" {
		return fmt.Errorf("publish manifest: bucket and key are required")
	}
	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(p.bucket),
		Key:          aws.String(p.key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return fmt.Errorf("publish manifest to %s: %w", p.Location(), err)
	}
	return nil
}
