package services

import (
  "context"
  "fmt"
  "io"
  "os"

  "cloud.google.com/go/storage"

  "github.com/kru-nsru/survey-portal-backend/internal/logger"
)

type BucketService interface {
  UploadFile(ctx context.Context, key string, reader io.Reader) error
  GetPublicURL(key string) string
}

type bucketService struct {
  log        *logger.Logger
  client     *storage.Client
  bucketName string
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
  serviceLog := log.With("service", "BucketService")
  bucketName := os.Getenv("GCS_BUCKET_NAME")
  if bucketName == "" {
    return nil, fmt.Errorf("Missing GCS_BUCKET_NAME environment variable")
  }
  client, err := storage.NewClient(context.Background())
  if err != nil {
    serviceLog.Error("Failed to create GCS client", "error", err)
    return nil, fmt.Errorf("failed to create GCS client: %w", err)
  }
  serviceLog.Info("GCS client initialized successfully :)", "bucket", bucketName)
  return &bucketService{
    log:        serviceLog,
    client:     client,
    bucketName: bucketName,
  }, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, key string, reader io.Reader) error {
  bs.log.Info("Uploading file to bucket now...", "key", key)
  writer := bs.client.Bucket(bs.bucketName).Object(key).NewWriter(ctx)
  writer.ContentType = "image/png"
  if _, err := io.Copy(writer, reader); err != nil {
    writer.Close()
    bs.log.Error("Failed to write object to bucket", "key", key, "error", err)
    return fmt.Errorf("failed to write object '%s': %w", key, err)
  }
  if err := writer.Close(); err != nil {
    bs.log.Error("Failed to finalize object upload", "key", key, "error", err)
    return fmt.Errorf("failed to finalize object '%s': %w", key, err)
  }
  bs.log.Info("Successfully uploaded file to bucket :)", "key", key)
  return nil
}

func (bs *bucketService) GetPublicURL(key string) string {
  return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bs.bucketName, key)
}
