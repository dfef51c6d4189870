// internal/common/aws/s3.go
package aws

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API covers template reads and archive writes.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds a client; a non-empty endpoint selects path-style
// addressing against an S3-compatible store.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = awssdk.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ArchiveStore uploads batch archives.
type ArchiveStore struct {
	client S3API
	bucket string
	prefix string
}

func NewArchiveStore(client S3API, bucket, prefix string) *ArchiveStore {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &ArchiveStore{client: client, bucket: bucket, prefix: prefix}
}

// Key is the object key of a batch archive.
func (a *ArchiveStore) Key(batchID string) string {
	return a.prefix + batchID + ".zip"
}

// Upload stores data and returns its object key.
func (a *ArchiveStore) Upload(ctx context.Context, batchID string, data []byte) (string, error) {
	key := a.Key(batchID)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        awssdk.String(a.bucket),
		Key:           awssdk.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   awssdk.String("application/zip"),
		Metadata:      map[string]string{"batch-id": batchID},
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, key, err)
	}
	return key, nil
}
