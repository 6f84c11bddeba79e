package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/amspoke/carelink-downloader/internal/storage"
)

// DefaultStagingDir is where StorageSink stages artifacts before upload.
const DefaultStagingDir = "/tmp"

// StorageSink uploads artifacts to an object storage bucket.
// The object key is the artifact name.
type StorageSink struct {
	uploader   storage.Uploader
	bucket     string
	stagingDir string
}

// StorageSinkOption configures a StorageSink.
type StorageSinkOption func(*StorageSink)

// WithStagingDir overrides DefaultStagingDir.
func WithStagingDir(dir string) StorageSinkOption {
	return func(s *StorageSink) {
		if dir != "" {
			s.stagingDir = dir
		}
	}
}

// NewStorageSink returns a sink uploading into bucket through uploader.
func NewStorageSink(uploader storage.Uploader, bucket string, opts ...StorageSinkOption) *StorageSink {
	s := &StorageSink{
		uploader:   uploader,
		bucket:     bucket,
		stagingDir: DefaultStagingDir,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stages content, uploads it once and removes the staged file.
// When the upload fails the staged file is kept and its path is reported.
func (s *StorageSink) Put(ctx context.Context, name string, content []byte) (string, error) {
	local := filepath.Join(s.stagingDir, name)
	if err := writeFileAtomic(local, content, FilePerm); err != nil {
		return "", err
	}

	if err := s.uploader.Put(ctx, local, s.bucket, name); err != nil {
		return "", &stagedError{
			path: local,
			err:  fmt.Errorf("%w: s3://%s/%s: %w", ErrUpload, s.bucket, name, err),
		}
	}

	_ = os.Remove(local)
	return storage.URI(s.bucket, name), nil
}
