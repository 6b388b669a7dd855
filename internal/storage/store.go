package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/assinahub/assinahub/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Export links stay valid for a week; the subject downloads once.
const exportLinkTTL = 7 * 24 * time.Hour

// Store writes LGPD export bundles and database backups to S3-compatible
// object storage.
type Store struct {
	cfg     *config.StorageConfig
	client  *s3.Client
	presign *s3.PresignClient
}

// New creates the store from configuration. A disabled config returns
// (nil, nil) so callers can treat storage as optional.
func New(cfg *config.StorageConfig) (*Store, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("storage region is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}

	options := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		options.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	client := s3.New(options)

	return &Store{
		cfg:     cfg,
		client:  client,
		presign: s3.NewPresignClient(client),
	}, nil
}

// Enabled reports whether the store can receive objects.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

// PutJSON marshals v and stores it under a dated key. Returns a
// presigned download link.
func (s *Store) PutJSON(ctx context.Context, category string, name string, v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	key := s.buildKey(category, name+".json")
	if err := s.put(ctx, key, data, "application/json"); err != nil {
		return "", err
	}
	return s.presignGet(ctx, key)
}

// PutObject stores raw bytes under a dated key and returns the key.
func (s *Store) PutObject(ctx context.Context, category, name string, data []byte, contentType string) (string, error) {
	key := s.buildKey(category, name)
	if err := s.put(ctx, key, data, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// ListKeys lists object keys under a category prefix, oldest first.
func (s *Store) ListKeys(ctx context.Context, category string) ([]string, error) {
	prefix := strings.Trim(path.Join(strings.Trim(s.cfg.Prefix, "/"), category), "/") + "/"
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		if obj.Key != nil {
			keys = append(keys, *obj.Key)
		}
	}
	return keys, nil
}

// DeleteKey removes one object.
func (s *Store) DeleteKey(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *Store) put(ctx context.Context, key string, data []byte, contentType string) error {
	if len(data) == 0 {
		return fmt.Errorf("no data to store")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("store object: %w", err)
	}
	return nil
}

func (s *Store) presignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(exportLinkTTL))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *Store) buildKey(category, name string) string {
	now := time.Now().UTC()
	prefix := strings.Trim(s.cfg.Prefix, "/")
	return path.Join(prefix, strings.Trim(category, "/"),
		fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day()), name)
}
