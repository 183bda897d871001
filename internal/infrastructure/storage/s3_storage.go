// Package storage keeps uploaded article images on local disk or in an
// S3 compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appcontent "github.com/dentalshop/backend/internal/application/content"
	"github.com/dentalshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ appcontent.ImageStorage = (*S3ImageStorage)(nil)

const (
	defaultRegion    = "us-east-1"
	defaultKeyPrefix = "articles"

	// upload names embed a timestamp, so an object never changes
	imageCacheControl = "public, max-age=31536000, immutable"

	bucketReadyTimeout = 30 * time.Second
)

// S3ImageStorage puts images in a bucket addressed path-style, which lets
// MinIO and other custom endpoints work without bucket DNS.
type S3ImageStorage struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	publicURL string
	logger    *zap.Logger
}

type S3Option func(*S3ImageStorage)

func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3ImageStorage) { s.logger = logger }
}

// WithKeyPrefix replaces the "articles" key prefix
func WithKeyPrefix(prefix string) S3Option {
	return func(s *S3ImageStorage) { s.keyPrefix = strings.Trim(prefix, "/") }
}

func NewS3ImageStorage(ctx context.Context, cfg config.StorageConfig, opts ...S3Option) (*S3ImageStorage, error) {
	var missing []error
	for _, req := range []struct{ value, name string }{
		{cfg.S3Bucket, "bucket"},
		{cfg.S3AccessKey, "access key"},
		{cfg.S3SecretKey, "secret key"},
	} {
		if req.value == "" {
			missing = append(missing, fmt.Errorf("storage %s is required", req.name))
		}
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	region := cfg.S3Region
	if region == "" {
		region = defaultRegion
	}
	endpoint, err := normalizeEndpoint(cfg.S3Endpoint)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3ImageStorage{
		client:    client,
		bucket:    cfg.S3Bucket,
		keyPrefix: defaultKeyPrefix,
		publicURL: publicBase(cfg, endpoint, region),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// normalizeEndpoint accepts "minio:9000" as well as full URLs
func normalizeEndpoint(raw string) (string, error) {
	endpoint := strings.TrimRight(raw, "/")
	if endpoint == "" {
		return "", nil
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return "", fmt.Errorf("invalid storage endpoint: %w", err)
	}
	return endpoint, nil
}

func publicBase(cfg config.StorageConfig, endpoint, region string) string {
	switch {
	case cfg.S3PublicURL != "":
		return strings.TrimRight(cfg.S3PublicURL, "/")
	case endpoint != "":
		return endpoint + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, region)
}

func (s *S3ImageStorage) Bucket() string { return s.bucket }

// EnsureBucket creates the bucket on first start and waits until it answers
func (s *S3ImageStorage) EnsureBucket(ctx context.Context) error {
	head := &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}
	_, err := s.client.HeadBucket(ctx, head)
	if err == nil {
		return nil
	}
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var owned *types.BucketAlreadyOwnedByYou
	if err != nil && !errors.As(err, &owned) {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	if err := s3.NewBucketExistsWaiter(s.client).Wait(ctx, head, bucketReadyTimeout); err != nil {
		return fmt.Errorf("bucket %s never became ready: %w", s.bucket, err)
	}
	return nil
}

// Save uploads body under the key prefix and returns its public URL
func (s *S3ImageStorage) Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) (string, error) {
	if name == "" {
		return "", errors.New("object name is required")
	}
	key := path.Join(s.keyPrefix, name)

	input := &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(imageCacheControl),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	s.logger.Debug("Image uploaded", zap.String("bucket", s.bucket), zap.String("key", key))
	return s.publicURL + "/" + key, nil
}

func (s *S3ImageStorage) Delete(ctx context.Context, rawURL string) error {
	key, ok := s.keyFor(rawURL)
	if !ok {
		return fmt.Errorf("url %q is not managed by this storage", rawURL)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// IsManaged reports whether rawURL points below this storage's key prefix
func (s *S3ImageStorage) IsManaged(rawURL string) bool {
	_, ok := s.keyFor(rawURL)
	return ok
}

func (s *S3ImageStorage) keyFor(rawURL string) (string, bool) {
	key, found := strings.CutPrefix(rawURL, s.publicURL+"/")
	if !found || key == "" || path.Clean(key) != key {
		return "", false
	}
	if s.keyPrefix != "" && !strings.HasPrefix(key, s.keyPrefix+"/") {
		return "", false
	}
	return key, true
}
