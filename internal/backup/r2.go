package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"venue-seating-ops/internal/config"
)

// R2Store keeps snapshots in a Cloudflare R2 bucket through the S3 API
type R2Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	config     config.R2Config
}

// NewR2Store creates a new R2 snapshot store
func NewR2Store(ctx context.Context, cfg config.R2Config) (*R2Store, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("R2 credentials not configured")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("R2 bucket not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint(cfg))
		o.UsePathStyle = true
	})

	return &R2Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		config:     cfg,
	}, nil
}

func endpoint(cfg config.R2Config) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)
}

func objectKey(key string) string {
	return strings.TrimPrefix(key, "/")
}

// Open downloads a snapshot into memory
func (r *R2Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key = objectKey(key)

	buf := manager.NewWriteAtBuffer(nil)
	_, err := r.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: r2://%s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to download from R2: %w", err)
	}

	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

// Save uploads a snapshot and returns its r2:// location
func (r *R2Store) Save(ctx context.Context, key string, body io.ReadSeeker, size int64) (string, error) {
	key = objectKey(key)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.BucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String("application/json"),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := r.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to R2: %w", err)
	}

	return R2Scheme + key, nil
}

// Exists checks if a snapshot exists in R2
func (r *R2Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.config.BucketName),
		Key:    aws.String(objectKey(key)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if object exists: %w", err)
	}

	return true, nil
}

// HealthCheck verifies that the bucket is reachable
func (r *R2Store) HealthCheck(ctx context.Context) error {
	_, err := r.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(r.config.BucketName),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("R2 health check failed: %w", err)
	}
	return nil
}

// CreateBucket creates the snapshot bucket if it doesn't exist
func (r *R2Store) CreateBucket(ctx context.Context) error {
	_, err := r.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.config.BucketName),
	})
	if err != nil {
		var bucketExists *types.BucketAlreadyExists
		var bucketOwnedByYou *types.BucketAlreadyOwnedByYou
		if errors.As(err, &bucketExists) || errors.As(err, &bucketOwnedByYou) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// ValidateR2Config lists the first missing R2 setting, if any
func ValidateR2Config(cfg config.R2Config) error {
	switch {
	case cfg.AccountID == "" && cfg.Endpoint == "":
		return fmt.Errorf("R2_ACCOUNT_ID or R2_ENDPOINT is required")
	case cfg.AccessKeyID == "":
		return fmt.Errorf("R2_ACCESS_KEY_ID is required")
	case cfg.SecretAccessKey == "":
		return fmt.Errorf("R2_SECRET_ACCESS_KEY is required")
	case cfg.BucketName == "":
		return fmt.Errorf("R2_BUCKET_NAME is required")
	}
	return nil
}
