// Пакет s3 — удалённый медиа-бэкенд (S3/MinIO).
// Публичный URL вычисляется в момент загрузки и хранится в MediaRef дословно:
// отдачей байтов (включая Range) занимается само внешнее хранилище.
package s3

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

type Storage struct {
	cl     *minio.Client
	cfg    Config
	logger *log.Logger
}

func New(ctx context.Context, cfg Config, logger *log.Logger) (*Storage, error) {
	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	}
	if cfg.PathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}
	cl, err := minio.New(cfg.Endpoint, opts)
	if err != nil {
		return nil, err
	}
	return &Storage{cl: cl, cfg: cfg, logger: logger}, nil
}

var _ domain.MediaStore = (*Storage)(nil)

// Put стримит объект в бакет и возвращает remote-ref с публичным URL.
func (s *Storage) Put(ctx context.Context, r io.Reader, contentType string, kind domain.MediaKind, hintKey string) (domain.MediaRef, error) {
	if !strings.HasPrefix(contentType, kind.Prefix()) {
		return domain.MediaRef{}, fmt.Errorf("%w: %s is not %s*", domain.ErrUnsupportedMedia, contentType, kind.Prefix())
	}

	key := strings.TrimPrefix(hintKey, "/")
	if key == "" {
		key = uuid.NewString()
	}

	info, err := s.cl.PutObject(ctx, s.cfg.Bucket, key, r, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return domain.MediaRef{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	url := s.publicURL(key)
	s.logger.Printf("put ok key=%s size=%d url=%s", key, info.Size, url)
	return domain.MediaRef{Backend: domain.MediaBackendRemote, Key: url}, nil
}

// ResolveURL: для remote ref.Key — уже готовый URL.
func (s *Storage) ResolveURL(ref domain.MediaRef) string { return ref.Key }

func (s *Storage) Ping(ctx context.Context) error {
	ok, err := s.cl.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", s.cfg.Bucket)
	}
	return nil
}

func (s *Storage) publicURL(key string) string {
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}
