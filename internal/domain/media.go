package domain

import (
	"context"
	"io"
)

// MediaBackend — вариант хранилища. Выбирается один раз на старте процесса,
// per-object смешивание не поддерживается.
type MediaBackend string

const (
	MediaBackendLocal  MediaBackend = "local"
	MediaBackendRemote MediaBackend = "remote"
)

// MediaRef — тегированный локатор сохранённого объекта.
// Для local Key — имя файла под публичным mount'ом,
// для remote Key — публичный URL, сохранённый дословно при загрузке.
type MediaRef struct {
	Backend MediaBackend `json:"backend"`
	Key     string       `json:"key"`
}

func (r MediaRef) IsZero() bool { return r.Key == "" }

// MediaKind — ожидаемый класс контента при загрузке.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindImage MediaKind = "image"
)

// Prefix — префикс Content-Type, которому обязан соответствовать загружаемый поток.
func (k MediaKind) Prefix() string {
	switch k {
	case KindImage:
		return "image/"
	default:
		return "video/"
	}
}

// MediaStore — единый контракт над двумя бэкендами.
// Stateless относительно документного хранилища: персистить MediaRef — забота вызывающего.
type MediaStore interface {
	// Put сохраняет поток. hintKey — желаемое имя объекта (без расширения бэкенд
	// не доугадывает). Ошибки класса контента -> ErrUnsupportedMedia,
	// ошибки записи -> ErrStorageUnavailable.
	Put(ctx context.Context, r io.Reader, contentType string, kind MediaKind, hintKey string) (MediaRef, error)
	// ResolveURL вычисляет URL для отдачи клиенту. Не ходит в сеть.
	ResolveURL(ref MediaRef) string
	Ping(ctx context.Context) error
}
