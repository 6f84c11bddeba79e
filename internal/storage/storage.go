// Package storage uploads staged artifacts to object storage.
package storage

import (
	"context"
	"errors"
)

// ErrEmptyBucket is returned when an upload has no target bucket.
var ErrEmptyBucket = errors.New("bucket name is empty")

// Uploader stores a local file as an object.
type Uploader interface {
	// Put uploads the file at localPath to bucket under key.
	Put(ctx context.Context, localPath, bucket, key string) error
}

// URI returns the s3:// URI of an object.
func URI(bucket, key string) string {
	return "s3://" + bucket + "/" + key
}
