package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"photovault/internal/config"
)

type ObjectStore struct {
	client       *minio.Client
	bucket       string
	probeTimeout time.Duration
}

func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client:       client,
		bucket:       cfg.Bucket,
		probeTimeout: cfg.ProbeTimeout,
	}, nil
}

func (s *ObjectStore) CheckBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *ObjectStore) Stat(ctx context.Context, name string) (ObjectInfo, error) {
	if s.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.probeTimeout)
		defer cancel()
	}

	info, err := s.client.StatObject(ctx, s.bucket, objectKey(name), minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, translateMinio(err)
	}
	return ObjectInfo{Name: name, Size: info.Size, ModTime: info.LastModified}, nil
}

func (s *ObjectStore) Open(ctx context.Context, name string) (Object, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, translateMinio(err)
	}
	// GetObject is lazy; Stat forces the request so missing keys surface here.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, translateMinio(err)
	}
	return obj, ObjectInfo{Name: name, Size: info.Size, ModTime: info.LastModified}, nil
}

func (s *ObjectStore) Remove(ctx context.Context, name string) error {
	return translateMinio(s.client.RemoveObject(ctx, s.bucket, objectKey(name), minio.RemoveObjectOptions{}))
}

func (s *ObjectStore) ListOlderThan(ctx context.Context, dir string, cutoff time.Time) ([]string, error) {
	prefix := objectKey(dir) + "/"

	var stale []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if obj.LastModified.Before(cutoff) {
			stale = append(stale, "/"+obj.Key)
		}
	}
	return stale, nil
}

func objectKey(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

func translateMinio(err error) error {
	if err == nil {
		return nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotExist
	}
	return err
}
