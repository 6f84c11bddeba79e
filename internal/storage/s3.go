package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultRegion is the region of the artifact bucket.
const DefaultRegion = "eu-south-2"

// ContentType is the content type of uploaded artifacts.
const ContentType = "application/json"

// PutObjectAPI is the part of the S3 client used by S3Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader uploads files to Amazon S3.
type S3Uploader struct {
	client PutObjectAPI
}

// NewS3Uploader returns an uploader using client.
func NewS3Uploader(client PutObjectAPI) *S3Uploader {
	return &S3Uploader{client: client}
}

// NewS3UploaderFromEnv builds an uploader from the default AWS credential
// chain (environment, shared config, instance role). An empty region
// falls back to DefaultRegion.
func NewS3UploaderFromEnv(ctx context.Context, region string) (*S3Uploader, error) {
	if region == "" {
		region = DefaultRegion
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewS3Uploader(s3.NewFromConfig(cfg)), nil
}

// Put uploads the file at localPath in a single PutObject call.
func (u *S3Uploader) Put(ctx context.Context, localPath, bucket, key string) error {
	if bucket == "" {
		return ErrEmptyBucket
	}

	f, err := os.Open(localPath) //nolint:gosec // path is built by the storage sink
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", URI(bucket, key), err)
	}
	return nil
}
