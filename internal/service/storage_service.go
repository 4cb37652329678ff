package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/listing-api/configs"
)

// StorageService stores uploaded media in the manual-uploads bucket of an
// S3 compatible store (Cloudflare R2 by default).
type StorageService interface {
	// Upload returns the public URL of the stored object.
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Delete removes the object behind url when it lives in one of our buckets.
	Delete(ctx context.Context, url string) error
	// KeyFromURL resolves a public URL back to its bucket and key.
	KeyFromURL(url string) (bucket, key string, ok bool)
}

type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type storageService struct {
	config cfg.Storage
	client objectStore
}

func NewStorageService(ctx context.Context, c cfg.Storage) (StorageService, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
		config.WithRegion(c.Region),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3Endpoint())
		o.UsePathStyle = c.Endpoint != ""
	})

	return &storageService{config: c, client: client}, nil
}

func (s *storageService) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.config.ManualBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return s.publicURL(s.config.ManualBucket, key), nil
}

func (s *storageService) Delete(ctx context.Context, url string) error {
	bucket, key, ok := s.KeyFromURL(url)
	if !ok {
		slog.Debug("skipping delete of external object", "url", url)
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (s *storageService) KeyFromURL(url string) (string, string, bool) {
	for _, bucket := range []string{s.config.ManualBucket, s.config.AIBucket} {
		prefix := s.publicURL(bucket, "")
		if strings.HasPrefix(url, prefix) && len(url) > len(prefix) {
			return bucket, strings.TrimPrefix(url, prefix), true
		}
	}
	return "", "", false
}

// publicURL falls back to path-style endpoint URLs when no public domain is set.
func (s *storageService) publicURL(bucket, key string) string {
	base := s.config.ManualPublicURL
	if bucket == s.config.AIBucket {
		base = s.config.AIPublicURL
	}
	if base == "" {
		base = strings.TrimRight(s.config.S3Endpoint(), "/") + "/" + bucket
	}
	return base + "/" + key
}
