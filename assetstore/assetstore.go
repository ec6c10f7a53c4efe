package assetstore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"artsstore/config"
	"artsstore/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the remote asset store the media processors publish into. It is a
// fallible external collaborator; retries, if any, belong to the task queue.
type Store interface {
	Upload(ctx context.Context, in UploadInput) (models.StoredAsset, error)
}

type UploadInput struct {
	Folder      string
	Name        string
	Data        []byte
	ContentType string
}

// MinioStore keeps processed media in an S3-compatible bucket and derives
// public URLs from the configured base URL.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

func NewMinioStore(cfg *config.AssetsConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create asset store client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check asset bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create asset bucket: %w", err)
		}
		log.Printf("asset bucket %s created", cfg.Bucket)
	}

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}

	return &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *MinioStore) Upload(ctx context.Context, in UploadInput) (models.StoredAsset, error) {
	key := in.Name
	if in.Folder != "" {
		key = strings.Trim(in.Folder, "/") + "/" + in.Name
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(in.Data), int64(len(in.Data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return models.StoredAsset{}, fmt.Errorf("failed to upload asset %s: %w", key, err)
	}

	ext := ""
	if i := strings.LastIndex(in.Name, "."); i >= 0 {
		ext = strings.TrimPrefix(in.Name[i:], ".")
	}

	return models.StoredAsset{
		URL:      s.publicBaseURL + "/" + key,
		PublicID: key,
		Format:   strings.ToLower(ext),
		Bytes:    int64(len(in.Data)),
	}, nil
}
