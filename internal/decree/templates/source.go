package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ErrNotFound is returned by a Source that has no asset under the key.
var ErrNotFound = errors.New("template asset not found")

// Source fetches raw template documents by asset key.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// LocalSource reads assets from a directory.
type LocalSource struct {
	Dir string
}

func (l LocalSource) Fetch(_ context.Context, key string) ([]byte, error) {
	if !filepath.IsLocal(key) {
		return nil, fmt.Errorf("template key %q escapes template dir", key)
	}
	data, err := os.ReadFile(filepath.Join(l.Dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return data, err
}

// S3GetObjectAPI is the part of the S3 client S3Source needs.
type S3GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads assets from a bucket under a key prefix.
type S3Source struct {
	client S3GetObjectAPI
	bucket string
	prefix string
}

func NewS3Source(client S3GetObjectAPI, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3Source) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3://%s/%s%s: %w", s.bucket, s.prefix, key, ErrNotFound)
		}
		return nil, fmt.Errorf("get s3://%s/%s%s: %w", s.bucket, s.prefix, key, err)
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, fmt.Errorf("read s3://%s/%s%s: %w", s.bucket, s.prefix, key, err)
	}
	return buf.Bytes(), nil
}

// Chain tries each source in order and returns the first hit.
type Chain []Source

func (c Chain) Fetch(ctx context.Context, key string) ([]byte, error) {
	var lastErr error
	for _, src := range c {
		data, err := src.Fetch(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
}

// MemorySource serves assets from a map.
type MemorySource map[string][]byte

func (m MemorySource) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return data, nil
}
