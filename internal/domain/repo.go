package domain

import (
	"context"
	"time"
)

// Фильтр списка постов. Сортировка всегда created_at desc —
// порядок ленты задаёт хранилище, агрегатор его только сохраняет.
type PostFilter struct {
	Category string // "" или CategoryAll — без фильтра; иначе точное совпадение
	AuthorID *UserID
	Limit    int
}

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, email, passHash, displayName, skillCategory string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
	// UsersByIDs — батч-выборка авторов одной командой (WHERE id = ANY).
	// Отсутствующие id просто не попадают в результат.
	UsersByIDs(ctx context.Context, ids []UserID) ([]User, error)
	SetAvatarURL(ctx context.Context, id UserID, url string) error
	IncPostsCount(ctx context.Context, id UserID, delta int64) error
	IncValidationsReceived(ctx context.Context, id UserID, delta int64) error
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

type PostsRepo interface {
	CreatePost(ctx context.Context, p Post) (Post, error)
	PostByID(ctx context.Context, id PostID) (Post, error)
	// PostsList — посты под фильтром, новые сверху.
	PostsList(ctx context.Context, f PostFilter) ([]Post, error)
	IncValidationCount(ctx context.Context, id PostID, delta int64) error
}

type ValidationsRepo interface {
	// InsertUnique — условная вставка: уникальность (post_id, user_id)
	// гарантирует слой хранения, не check-then-act. При уже существующей
	// паре возвращает inserted=false без ошибки.
	InsertUnique(ctx context.Context, postID PostID, userID UserID, at time.Time) (id ValidationID, inserted bool, err error)
	Exists(ctx context.Context, postID PostID, userID UserID) (bool, error)
	// ValidatedSet — какие из postIDs зритель уже подтвердил, одной командой.
	ValidatedSet(ctx context.Context, userID UserID, postIDs []PostID) (map[PostID]struct{}, error)
}
