package embeddingstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

// ObjectStore keeps embeddings as <prefix><name>.emb objects in a MinIO/S3
// bucket, sharing one embedding library across hosts.
type ObjectStore struct {
	client *minio.Client
	cfg    ObjectConfig
	log    *logger.LoggerClient

	idx atomic.Pointer[index]
}

// NewObjectStore connects to MinIO and performs an initial scan.
// The bucket must already exist.
func NewObjectStore(cfg ObjectConfig, log *logger.LoggerClient) (*ObjectStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embeddingstore: missing AESTHETIC_MINIO_ENDPOINT")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("embeddingstore: missing AESTHETIC_MINIO_BUCKET")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddingstore: connecting to minio: %w", err)
	}

	s := &ObjectStore{client: client, cfg: cfg, log: log}
	if err := s.Refresh(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Names implements Store.
func (s *ObjectStore) Names() []string {
	return s.idx.Load().names
}

// Resolve implements Store.
func (s *ObjectStore) Resolve(ctx context.Context, name string) (vecmath.Vector, error) {
	key, ok := s.idx.Load().locations[name]
	if !ok {
		return nil, fmt.Errorf("embeddingstore: %q: %w", name, ErrNotFound)
	}
	obj, err := s.client.GetObject(ctx, s.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("embeddingstore: fetching %q: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("embeddingstore: %q removed externally: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("embeddingstore: fetching %q: %w", name, err)
	}
	vec, err := DecodeVector(data)
	if err != nil {
		return nil, fmt.Errorf("embeddingstore: %q: %w", name, err)
	}
	return vec, nil
}

// Register implements Store.
func (s *ObjectStore) Register(ctx context.Context, name string, vec vecmath.Vector) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if len(vec) == 0 {
		return "", fmt.Errorf("embeddingstore: empty vector for %q: %w", name, ErrCorruptVector)
	}

	key := s.objectKey(name)
	payload := EncodeVector(vec)
	_, err := s.client.PutObject(ctx, s.cfg.BucketName, key,
		bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return "", fmt.Errorf("embeddingstore: uploading %q: %w", name, err)
	}

	if err := s.Refresh(ctx); err != nil {
		return "", err
	}
	s.log.Debug("embedding uploaded", nil, map[string]interface{}{
		"name":   name,
		"bucket": s.cfg.BucketName,
		"key":    key,
		"dim":    len(vec),
	})
	return fmt.Sprintf("s3://%s/%s", s.cfg.BucketName, key), nil
}

// Refresh implements Store.
func (s *ObjectStore) Refresh(ctx context.Context) error {
	entries := make(map[string]string)
	for obj := range s.client.ListObjects(ctx, s.cfg.BucketName, minio.ListObjectsOptions{
		Prefix:    s.cfg.Prefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return fmt.Errorf("embeddingstore: listing bucket %s: %w", s.cfg.BucketName, obj.Err)
		}
		base := strings.TrimPrefix(obj.Key, s.cfg.Prefix)
		if !strings.HasSuffix(base, Extension) || strings.Contains(base, "/") {
			continue
		}
		entries[strings.TrimSuffix(base, Extension)] = obj.Key
	}
	s.idx.Store(buildIndex(entries))
	return nil
}

func (s *ObjectStore) objectKey(name string) string {
	return s.cfg.Prefix + name + Extension
}

var _ Store = (*ObjectStore)(nil)
