package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"pressline-backend/internal/config"
)

// ArchiveStorage keeps the raw provider output of every successful generation
// in object storage for audit. Archiving is best-effort: the pipeline never
// fails because an archive write failed.
type ArchiveStorage struct {
	client *minio.Client
	bucket string
}

// NewArchiveStorage khởi tạo MinIO client và đảm bảo bucket tồn tại
func NewArchiveStorage(cfg config.MinIOConfig) (*ArchiveStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &ArchiveStorage{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Store writes one raw generation under generations/{provider}/{key}.txt
func (s *ArchiveStorage) Store(ctx context.Context, providerID, key string, content []byte) (string, error) {
	objectKey := fmt.Sprintf("generations/%s/%s.txt", providerID, key)

	reader := bytes.NewReader(content)
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to archive generation: %w", err)
	}

	return objectKey, nil
}
