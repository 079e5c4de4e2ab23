package save

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Rokon-556/recipe-gen/internal/logger"
	"github.com/Rokon-556/recipe-gen/pkg/errutils"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectConfig describes an S3-compatible bucket.
type ObjectConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

// ObjectSaver uploads blobs to an S3-compatible bucket.
type ObjectSaver struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewObjectSaver connects to the configured endpoint. No request is made until
// the first save.
func NewObjectSaver(cfg ObjectConfig) (*ObjectSaver, error) {
	if cfg.Endpoint == "" {
		return nil, errutils.ErrStorageEndpointEmpty
	}
	if cfg.Bucket == "" {
		return nil, errutils.ErrStorageBucketEmpty
	}

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		endpoint, secure = strings.TrimPrefix(endpoint, "http://"), false
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &ObjectSaver{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Key returns the object key a blob with the given name is stored under.
func (s *ObjectSaver) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Save uploads blob and returns its s3:// location.
func (s *ObjectSaver) Save(ctx context.Context, blob Blob) (string, error) {
	if err := validateName(blob.Name); err != nil {
		return "", err
	}
	key := s.Key(blob.Name)
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(blob.Data), int64(len(blob.Data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s to bucket %s: %w", errutils.ErrSaveFailed, key, s.bucket, err)
	}

	logger.Debug("Uploaded object", logger.Fields{"bucket": s.bucket, "key": key, "bytes": info.Size, "etag": info.ETag})
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

var _ Saver = (*ObjectSaver)(nil)
