// Package storage provides object-store access for CSV files staged between
// pipeline steps.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/ingham-physics/auscat-util/internal/logger"
)

// ObjectStore is the object-store surface the runners need.
type ObjectStore interface {
	// Upload writes an object from the reader
	Upload(ctx context.Context, key string, reader io.Reader) error
	// Download returns a reader for the object's contents
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns keys under a prefix
	List(ctx context.Context, prefix string) ([]string, error)
	// Delete removes an object
	Delete(ctx context.Context, key string) error
}

type s3Store struct {
	client *s3.Client
	bucket string
}

var _ ObjectStore = (*s3Store)(nil)

// NewS3Store creates an ObjectStore backed by an S3 bucket, configured from
// the environment.
func NewS3Store(ctx context.Context, bucket string) (ObjectStore, error) {
	return NewS3StoreWithOptions(ctx, bucket, OptionsFromEnv())
}

// NewS3StoreWithOptions creates an ObjectStore with explicit S3 options.
func NewS3StoreWithOptions(ctx context.Context, bucket string, opts S3Options) (ObjectStore, error) {
	awsCfg, err := awsConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &s3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
	}, nil
}

// NewS3StoreWithClient wraps an existing S3 client; used by tests.
func NewS3StoreWithClient(client *s3.Client, bucket string) ObjectStore {
	return &s3Store{client: client, bucket: bucket}
}

func (s *s3Store) Upload(ctx context.Context, key string, reader io.Reader) error {
	l := logger.FromContext(ctx)
	l.Info().Str("bucket", s.bucket).Str("key", key).Msg("uploading object")

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *s3Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	l := logger.FromContext(ctx)
	l.Info().Str("bucket", s.bucket).Str("key", key).Msg("downloading object")

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", s.bucket, key, err)
	}
	return output.Body, nil
}

func (s *s3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *s3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}
