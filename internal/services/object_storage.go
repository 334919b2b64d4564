package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"bizdesk/pkg/utils"
)

const presignTTL = 24 * time.Hour

type ObjectStorage interface {
	// Put writes the object and returns a URL it can be fetched from.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// URL returns a fresh retrieval URL for key.
	URL(ctx context.Context, key string) (string, error)
}

type s3Storage struct {
	client        *s3.Client
	presign       *s3.PresignClient
	bucket        string
	publicBaseURL string
}

// NewS3Storage serves public URLs when publicBaseURL is set and presigned GET
// URLs otherwise.
func NewS3Storage(client *s3.Client, bucket, publicBaseURL string) ObjectStorage {
	return &s3Storage{
		client:        client,
		presign:       s3.NewPresignClient(client),
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (s *s3Storage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.URL(ctx, key)
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *s3Storage) URL(ctx context.Context, key string) (string, error) {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key, nil
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

type unconfiguredStorage struct{}

// NewUnconfiguredStorage fails every call; it stands in when no bucket is set.
func NewUnconfiguredStorage() ObjectStorage { return unconfiguredStorage{} }

func (unconfiguredStorage) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", utils.ErrStorageNotConfigured
}

func (unconfiguredStorage) Delete(context.Context, string) error {
	return utils.ErrStorageNotConfigured
}

func (unconfiguredStorage) URL(context.Context, string) (string, error) {
	return "", utils.ErrStorageNotConfigured
}
