package services

import (
	"context"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService wraps the object store used for bulk-import uploads. Clients
// upload directly with a signed POST policy; the worker downloads the object
// when processing starts and removes it once the job is finished.
type StorageService interface {
	PresignedUploadPost(ctx context.Context, bucketName, objectName string, maxBytes int64, expiry time.Duration) (string, map[string]string, error)
	GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, int64, error)
	StatObject(ctx context.Context, bucketName, objectName string) (int64, string, error)
	RemoveObject(ctx context.Context, bucketName, objectName string) error
	EnsureBucketExists(ctx context.Context, bucketName string) error
}

type minioStorage struct {
	client *minio.Client
}

func NewStorageService(endpoint, accessKey, secretKey string, useSSL bool) (StorageService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client}, nil
}

// PresignedUploadPost issues a signed POST policy. The returned form fields
// must be sent verbatim in the multipart body alongside the file; the policy
// pins the object key and caps the content length at maxBytes.
func (m *minioStorage) PresignedUploadPost(ctx context.Context, bucketName, objectName string, maxBytes int64, expiry time.Duration) (string, map[string]string, error) {
	policy := minio.NewPostPolicy()
	if err := policy.SetBucket(bucketName); err != nil {
		return "", nil, err
	}
	if err := policy.SetKey(objectName); err != nil {
		return "", nil, err
	}
	if err := policy.SetExpires(time.Now().UTC().Add(expiry)); err != nil {
		return "", nil, err
	}
	if err := policy.SetContentLengthRange(1, maxBytes); err != nil {
		return "", nil, err
	}

	u, formData, err := m.client.PresignedPostPolicy(ctx, policy)
	if err != nil {
		return "", nil, err
	}
	return u.String(), formData, nil
}

func (m *minioStorage) GetObject(ctx context.Context, bucketName, objectName string) (io.ReadCloser, int64, error) {
	obj, err := m.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, err
	}
	return obj, stat.Size, nil
}

func (m *minioStorage) StatObject(ctx context.Context, bucketName, objectName string) (int64, string, error) {
	stat, err := m.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		return 0, "", err
	}
	return stat.Size, stat.ContentType, nil
}

func (m *minioStorage) RemoveObject(ctx context.Context, bucketName, objectName string) error {
	return m.client.RemoveObject(ctx, bucketName, objectName, minio.RemoveObjectOptions{})
}

func (m *minioStorage) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}
