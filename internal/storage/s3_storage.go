package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appConfig "github.com/ikkim/juveboxd-backend/config"
	"github.com/ikkim/juveboxd-backend/pkg/logger"
)

type S3Storage struct {
	client *s3.Client
	bucket string
}

func NewS3Storage(cfg appConfig.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// If credentials are provided, use them. Otherwise, use default credential chain
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		// Use default credential chain (environment variables, ~/.aws/credentials, IAM role, etc.)
		awsCfg, err = config.LoadDefaultConfig(context.TODO(),
			config.WithRegion(cfg.Region),
		)
		if err != nil {
			logger.Warn("Failed to load default AWS config, using region only", map[string]interface{}{
				"error": err.Error(),
			})
			awsCfg = aws.Config{
				Region: cfg.Region,
			}
		}
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Storage{
		client: client,
		bucket: cfg.Bucket,
	}
}

// Upload stores body under key in the configured bucket.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}

	logger.Debug("Uploaded object to S3", map[string]interface{}{
		"bucket": s.bucket,
		"key":    key,
		"size":   len(body),
	})
	return nil
}

// Bucket returns the target bucket name.
func (s *S3Storage) Bucket() string {
	return s.bucket
}
