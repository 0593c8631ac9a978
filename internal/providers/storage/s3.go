package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/opsdeck/opsdeck/internal/config"
	"go.uber.org/zap"
)

// S3Store writes receipt blobs to an S3-compatible bucket.
type S3Store struct {
	client  *s3.Client
	bucket  string
	region  string
	baseURL string
	log     *zap.Logger
}

func NewS3Store(cfg config.Config, log *zap.Logger) (ObjectStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client:  s3.NewFromConfig(awsCfg),
		bucket:  cfg.Storage.Bucket,
		region:  cfg.Storage.Region,
		baseURL: cfg.Storage.PublicBaseURL,
		log:     log.Named("storage.s3"),
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	s.log.Info("uploaded object", zap.String("key", key), zap.Int("bytes", len(body)))
	return s.publicURL(key), nil
}

func (s *S3Store) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) publicURL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

// PathFromURL derives the bucket-relative key from a URL previously
// returned by Upload. Empty when the URL does not belong to this store.
func (s *S3Store) PathFromURL(url string) string {
	if s.baseURL != "" {
		if key, ok := strings.CutPrefix(url, s.baseURL+"/"); ok {
			return key
		}
		return ""
	}
	prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
	if key, ok := strings.CutPrefix(url, prefix); ok {
		return key
	}
	return ""
}
