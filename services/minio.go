package services

import (
	"bytes"
	"context"
	"fmt"
	"os"

	appContext "github.com/alphabatem/common/context"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// CodeArchive stores submitted source code outside the database.
type CodeArchive interface {
	StoreCode(ctx context.Context, userID, problemID, submissionID, code string) (string, error)
	DeleteObjects(ctx context.Context, keys ...string) error
}

// MinIOService archives submission source. It stays disabled when
// MINIO_ENDPOINT is unset.
type MinIOService struct {
	appContext.DefaultService
	client     *minio.Client
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
}

const MINIO_SVC = "minio_svc"

func (svc MinIOService) Id() string {
	return MINIO_SVC
}

func (svc *MinIOService) Configure(ctx *appContext.Context) error {
	svc.endpoint = os.Getenv("MINIO_ENDPOINT")

	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	if svc.accessKey == "" {
		svc.accessKey = "admin"
	}

	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	if svc.secretKey == "" {
		svc.secretKey = "password123"
	}

	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"

	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "learnhub-submissions"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *MinIOService) Start() error {
	if svc.endpoint == "" {
		log.Info("MinIO disabled, submission source will not be archived")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	svc.client = client

	if err := svc.ensureBucket(context.Background()); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	log.Printf("MinIO service started successfully with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *MinIOService) Enabled() bool {
	return svc != nil && svc.client != nil
}

func (svc *MinIOService) ensureBucket(ctx context.Context) error {
	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created MinIO bucket: %s", svc.bucketName)
	}

	return nil
}

// CodeObjectKey is where a submission's source lives in the bucket.
func CodeObjectKey(userID, problemID, submissionID string) string {
	return fmt.Sprintf("submissions/%s/%s/%s.txt", userID, problemID, submissionID)
}

func (svc *MinIOService) StoreCode(ctx context.Context, userID, problemID, submissionID, code string) (string, error) {
	key := CodeObjectKey(userID, problemID, submissionID)
	data := []byte(code)

	_, err := svc.client.PutObject(ctx, svc.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload code to MinIO: %v", err)
	}
	return key, nil
}

// DeleteObjects removes every key, returning the first failure after trying all of them.
func (svc *MinIOService) DeleteObjects(ctx context.Context, keys ...string) error {
	var firstErr error
	for _, key := range keys {
		err := svc.client.RemoveObject(ctx, svc.bucketName, key, minio.RemoveObjectOptions{})
		if err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to delete archived code")
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete file from MinIO: %v", err)
			}
		}
	}
	return firstErr
}
