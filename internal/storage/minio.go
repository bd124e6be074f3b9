package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStorage implements Storage using a MinIO (or any S3-compatible) backend.
// To point it at AWS S3, set the endpoint to s3.<region>.amazonaws.com —
// no code changes are needed.
type MinioStorage struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewMinioStorage creates a MinIO client, ensures the bucket exists, and
// returns a ready-to-use MinioStorage.
func NewMinioStorage(endpoint, accessKey, secretKey, bucket, publicBase string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx := context.Background()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
		}
		slog.Info("storage: created bucket", "bucket", bucket)
	}

	return &MinioStorage{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Put validates the upload, derives its key, and streams the data to the
// bucket. in.Size must be the exact byte count.
func (s *MinioStorage) Put(ctx context.Context, in PutInput, keyPrefix string) (Object, error) {
	if err := ValidateUpload(in); err != nil {
		return Object{}, err
	}

	key := BuildKey(keyPrefix, in.OriginalName)
	info, err := s.client.PutObject(ctx, s.bucket, key, in.Reader, in.Size, minio.PutObjectOptions{
		ContentType: in.ContentType,
	})
	if err != nil {
		return Object{}, fmt.Errorf("put object %q: %w", key, err)
	}

	return Object{
		Key:          key,
		URL:          s.PublicURL(key),
		Size:         info.Size,
		ContentType:  in.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// List enumerates up to maxKeys objects under prefix. Results are
// re-filtered locally against the prefix.
func (s *MinioStorage) List(ctx context.Context, prefix string, maxKeys int) ([]Object, error) {
	objects := make([]Object, 0, maxKeys)
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects under %q: %w", prefix, info.Err)
		}
		objects = append(objects, Object{
			Key:          info.Key,
			URL:          s.PublicURL(info.Key),
			Size:         info.Size,
			ContentType:  info.ContentType,
			LastModified: info.LastModified,
		})
		if len(objects) >= maxKeys {
			break
		}
	}
	return FilterPrefix(objects, prefix), nil
}

// Delete removes the object at key from the bucket. MinIO treats removing
// a missing key as success, so the call is idempotent.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *MinioStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}
