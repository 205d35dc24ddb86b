package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

// buckets maps each attachment kind to its own bucket.
var buckets = map[model.AttachmentKind]string{
	model.AttachmentProof:      "request-proofs",
	model.AttachmentInvoice:    "request-invoices",
	model.AttachmentSupplement: "request-supplements",
}

// MinIOStore keeps documents in a MinIO (or any S3-compatible) server.
type MinIOStore struct {
	client *minio.Client
}

// NewMinIOStore connects to the server and makes sure all buckets exist.
func NewMinIOStore(ctx context.Context, endpoint, accessKey, secretKey string, secure bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	for _, bucket := range buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("check bucket %s: %w", bucket, err)
		}
		if !exists {
			if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
				return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
			}
			log.Info().Str("bucket", bucket).Msg("created bucket")
		}
	}

	return &MinIOStore{client: client}, nil
}

func (s *MinIOStore) Put(ctx context.Context, kind model.AttachmentKind, r io.Reader, size int64) (string, error) {
	data, contentType, key, err := readAndValidate(r, size)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, buckets[kind], key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object %s/%s: %w", buckets[kind], key, err)
	}

	return key, nil
}

func (s *MinIOStore) Get(ctx context.Context, kind model.AttachmentKind, key string) (*Object, error) {
	obj, err := s.client.GetObject(ctx, buckets[kind], key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s/%s: %w", buckets[kind], key, err)
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: document %s", apperr.ErrNotFound, key)
		}
		return nil, fmt.Errorf("stat object %s/%s: %w", buckets[kind], key, err)
	}

	return &Object{
		Reader:      obj,
		ContentType: stat.ContentType,
		Size:        stat.Size,
	}, nil
}

func (s *MinIOStore) Delete(ctx context.Context, kind model.AttachmentKind, key string) error {
	err := s.client.RemoveObject(ctx, buckets[kind], key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("remove object %s/%s: %w", buckets[kind], key, err)
	}
	return nil
}
