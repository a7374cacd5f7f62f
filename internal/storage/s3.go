package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrInvalidKey is returned for keys without an accepted export extension
var ErrInvalidKey = errors.New("invalid export key")

// ExportStore gives read-only access to the share where the acquisition
// computer drops its exports
type ExportStore interface {
	ListFiles(ctx context.Context, prefix string) ([]string, error)
	DownloadFile(ctx context.Context, key string) ([]byte, error)
}

type s3Service struct {
	client   *s3.Client
	bucket   string
	maxBytes int64
}

// S3Config holds configuration for S3 service
type S3Config struct {
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	MaxBytes  int64
}

// NewS3Service creates a new S3 service instance
func NewS3Service(cfg S3Config) (ExportStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	var client *s3.Client

	if cfg.Endpoint != "" {
		// MinIO configuration
		opts = append(opts, config.WithRegion("us-east-1")) // MinIO doesn't care about region
		awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		endpoint := cfg.Endpoint
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "http://" + endpoint
		}

		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
			o.UsePathStyle = true // MinIO requires path-style URLs
		})
	} else {
		opts = append(opts, config.WithRegion(cfg.Region))
		awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client = s3.NewFromConfig(awsCfg)
	}

	return &s3Service{
		client:   client,
		bucket:   cfg.Bucket,
		maxBytes: cfg.MaxBytes,
	}, nil
}

// ListFiles lists export keys under prefix, skipping other objects
func (s *s3Service) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if ValidateKey(key) == nil {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

// DownloadFile downloads an export from S3/MinIO
func (s *s3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	var body io.Reader = result.Body
	if s.maxBytes > 0 {
		body = io.LimitReader(result.Body, s.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("export %s exceeds %d bytes", key, s.maxBytes)
	}
	return data, nil
}

// ValidateKey checks that a file name or key has an accepted export extension
func ValidateKey(key string) error {
	switch strings.ToLower(path.Ext(key)) {
	case ".asc", ".csv", ".txt":
		return nil
	}
	return fmt.Errorf("%w: %q. Supported types: .asc, .csv, .txt", ErrInvalidKey, key)
}
