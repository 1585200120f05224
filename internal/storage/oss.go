package storage

import (
	"context"
	"fmt"
	"strings"

	"buildnchill-shop/internal/config"

	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss"
	"github.com/aliyun/alibabacloud-oss-go-sdk-v2/oss/credentials"
)

// OSSBackend stores objects in an Alibaba Cloud OSS bucket.
type OSSBackend struct {
	Client        *oss.Client
	BucketName    string
	PublicBaseURL string
}

func NewOSSBackend(cfg config.StorageConfig) *OSSBackend {
	ossCfg := oss.LoadDefaultConfig().
		WithEndpoint(cfg.OSSEndpoint).
		WithRegion(cfg.OSSRegion).
		WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.OSSAccessKeyID, cfg.OSSAccessKeySecret),
		)

	return &OSSBackend{
		Client:        oss.NewClient(ossCfg),
		BucketName:    cfg.OSSBucket,
		PublicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}
}

func (b *OSSBackend) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := b.Client.PutObject(ctx, &oss.PutObjectRequest{
		Bucket:      oss.Ptr(b.BucketName),
		Key:         oss.Ptr(key),
		ContentType: oss.Ptr(contentType),
		Body:        readerOf(data),
	})
	if err != nil {
		return "", fmt.Errorf("oss put %s: %w", key, err)
	}
	return b.PublicBaseURL + "/" + key, nil
}

const (
	BackendLocal = "local"
	BackendOSS   = "oss"
)

// NewBackend picks the configured backend.
func NewBackend(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalBackend(cfg.UploadDir, cfg.PublicBaseURL), nil
	case BackendOSS:
		if cfg.OSSBucket == "" {
			return nil, fmt.Errorf("OSS_BUCKET is required for the oss storage backend")
		}
		return NewOSSBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
