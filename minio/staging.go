// Package minio implements docrag.StagingStore on S3-compatible object
// storage using minio-go.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/docrag"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Ensure StagingStore implements docrag.StagingStore at compile time.
var _ docrag.StagingStore = (*StagingStore)(nil)

// AddressScheme prefixes addresses returned by StagingStore.Put.
const AddressScheme = "s3://"

// Config holds the connection settings for the staging bucket.
type Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Enabled reports whether any S3 setting was provided.
func (c Config) Enabled() bool {
	return c.Endpoint != "" || c.AccessKey != "" || c.SecretKey != "" || c.Bucket != ""
}

// Validate rejects partial configuration.
func (c Config) Validate() error {
	var missing []string
	if c.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if c.AccessKey == "" {
		missing = append(missing, "access key")
	}
	if c.SecretKey == "" {
		missing = append(missing, "secret key")
	}
	if c.Bucket == "" {
		missing = append(missing, "bucket")
	}
	if len(missing) > 0 {
		return docrag.Errorf(docrag.EINVALID, "incomplete S3 configuration: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// StagingStore stores staged objects in a single bucket.
type StagingStore struct {
	client *miniogo.Client
	bucket string
}

// NewStagingStore creates a client for cfg. It does not contact the server;
// call EnsureBucket to verify connectivity.
func NewStagingStore(cfg Config) (*StagingStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &StagingStore{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the staging bucket if it does not exist.
func (s *StagingStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return docrag.Errorf(docrag.EUNAVAILABLE, "staging storage unreachable: %v", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *StagingStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", docrag.Errorf(docrag.EINVALID, "staging key required")
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		miniogo.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return FormatAddress(s.bucket, key), nil
}

func (s *StagingStore) Read(ctx context.Context, address string) ([]byte, error) {
	bucket, key, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(address, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(address, err)
	}
	return data, nil
}

func (s *StagingStore) Delete(ctx context.Context, key string) error {
	// S3 DeleteObject succeeds for missing keys.
	if err := s.client.RemoveObject(ctx, s.bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func (s *StagingStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, miniogo.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *StagingStore) mapError(address string, err error) error {
	if isNotFound(err) {
		return docrag.Errorf(docrag.ENOTFOUND, "staged object not found: %s", address)
	}
	return fmt.Errorf("reading %s: %w", address, err)
}

func isNotFound(err error) bool {
	switch miniogo.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

// FormatAddress returns the s3:// address of key in bucket.
func FormatAddress(bucket, key string) string {
	return AddressScheme + bucket + "/" + key
}

// ParseAddress splits an s3:// address into bucket and key.
func ParseAddress(address string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(address, AddressScheme)
	if !ok {
		return "", "", docrag.Errorf(docrag.EINVALID, "not an s3 address: %s", address)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", docrag.Errorf(docrag.EINVALID, "malformed s3 address: %s", address)
	}
	return bucket, key, nil
}
