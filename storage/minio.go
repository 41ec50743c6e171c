// Package storage wraps MinIO object storage for DJ avatar images.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"djradar/config"
	"djradar/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient is the shared MinIO client. Nil when object storage is not
// configured; callers must treat uploads as unavailable then.
var MinioClient *minio.Client

var bucketName string
var publicURL string

// InitMinio connects to MinIO and ensures the image bucket exists.
func InitMinio(cfg *config.Config) error {
	if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
		return fmt.Errorf("minio credentials not configured")
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	MinioClient = client
	bucketName = cfg.MinioBucket
	publicURL = cfg.MinioPublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.MinioUseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.MinioEndpoint, cfg.MinioBucket)
	}
	return nil
}

// UploadDJImage stores an avatar image for the DJ and returns its public
// URL.
func UploadDJImage(ctx context.Context, djName, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if MinioClient == nil {
		return "", fmt.Errorf("object storage not initialized")
	}

	objectName := fmt.Sprintf("djs/%s/%d%s", djName, time.Now().Unix(), path.Ext(fileName))

	_, err := MinioClient.PutObject(ctx, bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image for %s: %w", djName, err)
	}

	logger.Info("uploaded DJ image",
		logger.String("dj", djName), logger.String("object", objectName))
	return fmt.Sprintf("%s/%s", publicURL, objectName), nil
}
