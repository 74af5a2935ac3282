// Пакет local — медиа-бэкенд на локальном диске.
// Объекты лежат под базовым каталогом и отдаются через публичный mount /media/.
package local

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

// URLPrefix — публичный mount, под которым RangeServer отдаёт локальные объекты.
const URLPrefix = "/media/"

type Storage struct {
	dir    string
	logger *log.Logger
}

func New(dir string, logger *log.Logger) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media dir: %w", err)
	}
	return &Storage{dir: dir, logger: logger}, nil
}

var _ domain.MediaStore = (*Storage)(nil)

// Put пишет поток на диск. Ключ — hintKey (если задан) либо uuid + расширение
// из contentType. Несовпадение класса контента -> ErrUnsupportedMedia,
// ошибка записи -> ErrStorageUnavailable (без битых остатков на диске).
func (s *Storage) Put(ctx context.Context, r io.Reader, contentType string, kind domain.MediaKind, hintKey string) (domain.MediaRef, error) {
	if !strings.HasPrefix(contentType, kind.Prefix()) {
		return domain.MediaRef{}, fmt.Errorf("%w: %s is not %s*", domain.ErrUnsupportedMedia, contentType, kind.Prefix())
	}

	key := sanitizeKey(hintKey)
	if key == "" {
		key = uuid.NewString() + extFor(contentType)
	}

	full := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return domain.MediaRef{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	f, err := os.Create(full)
	if err != nil {
		return domain.MediaRef{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = os.Remove(full)
		return domain.MediaRef{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.logger.Printf("put ok key=%s size=%d", key, n)
	return domain.MediaRef{Backend: domain.MediaBackendLocal, Key: key}, nil
}

// ResolveURL: относительный путь под публичным mount'ом.
func (s *Storage) ResolveURL(ref domain.MediaRef) string {
	return URLPrefix + ref.Key
}

// Dir — корень для RangeServer.
func (s *Storage) Dir() string { return s.dir }

func (s *Storage) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", s.dir)
	}
	return nil
}

// sanitizeKey нормализует ключ и отбрасывает попытки выйти из каталога.
func sanitizeKey(key string) string {
	if key == "" {
		return ""
	}
	clean := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return ""
	}
	return clean
}

func extFor(contentType string) string {
	switch contentType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
