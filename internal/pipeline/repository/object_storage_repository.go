package repository

import (
	"context"
	"fmt"
	"io"
	"mime"
	"time"

	pipelineconfig "golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage stores document bytes and hands out presigned URLs.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	// PresignGet returns a download URL. A non-empty downloadName forces the
	// browser to save the object under that name.
	PresignGet(ctx context.Context, key, downloadName string) (string, time.Time, error)
	PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error)
}

type s3ObjectStorage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
	logger  *logger.Logger
}

// NewS3ObjectStorage creates an S3-backed ObjectStorage. Credentials come from
// the default AWS chain. An empty bucket yields a storage whose every call
// fails with dto.ErrStorageNotConfigured.
func NewS3ObjectStorage(ctx context.Context, cfg *pipelineconfig.Config, log *logger.Logger) (ObjectStorage, error) {
	if cfg.Storage.Bucket == "" {
		log.Warn("Object storage bucket not configured, document operations are disabled")
		return unconfiguredObjectStorage{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Storage.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.UsePathStyle
	})

	return &s3ObjectStorage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Storage.Bucket,
		expiry:  cfg.Storage.PresignExpiry,
		logger:  log,
	}, nil
}

func (s *s3ObjectStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error("Failed to upload object", logger.ErrorField(err), logger.StringField("key", key))
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

func (s *s3ObjectStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to delete object", logger.ErrorField(err), logger.StringField("key", key))
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

func (s *s3ObjectStorage) PresignGet(ctx context.Context, key, downloadName string) (string, time.Time, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if downloadName != "" {
		input.ResponseContentDisposition = aws.String(ContentDisposition(downloadName))
	}
	req, err := s.presign.PresignGetObject(ctx, input, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download: %w", err)
	}
	return req.URL, time.Now().UTC().Add(s.expiry), nil
}

func (s *s3ObjectStorage) PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	req, err := s.presign.PresignPutObject(ctx, input, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign upload: %w", err)
	}
	return req.URL, time.Now().UTC().Add(s.expiry), nil
}

// ContentDisposition builds an attachment header value for name.
func ContentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

type unconfiguredObjectStorage struct{}

func (unconfiguredObjectStorage) Upload(context.Context, string, string, io.Reader, int64) error {
	return dto.ErrStorageNotConfigured
}

func (unconfiguredObjectStorage) Delete(context.Context, string) error {
	return dto.ErrStorageNotConfigured
}

func (unconfiguredObjectStorage) PresignGet(context.Context, string, string) (string, time.Time, error) {
	return "", time.Time{}, dto.ErrStorageNotConfigured
}

func (unconfiguredObjectStorage) PresignPut(context.Context, string, string) (string, time.Time, error) {
	return "", time.Time{}, dto.ErrStorageNotConfigured
}
