package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type PostID = uuid.UUID
type ValidationID = uuid.UUID

// Пользователь (как лежит в хранилище).
// Счётчики PostsCount/ValidationsReceived — производные кеши, не источник истины:
// при конкурентных записях могут временно расходиться с фактом.
type User struct {
	ID                  UserID    `json:"id"`
	Email               string    `json:"email"`
	PassHash            string    `json:"-"` // никогда не отдаём наружу
	DisplayName         string    `json:"display_name"`
	SkillCategory       string    `json:"skill_category"`
	AvatarURL           *string   `json:"avatar_url"`
	CreatedAt           time.Time `json:"created_at"`
	PostsCount          int64     `json:"posts_count"`
	ValidationsReceived int64     `json:"validations_received"`
}

type Profile User

// Profile — публичный профиль автора для ленты (без секретов).
func (u User) Profile() *Profile {
	p := Profile(u)
	p.PassHash = ""
	return &p
}

// LeaderboardEntry — строка лидерборда: без email и секретов.
type LeaderboardEntry struct {
	ID                  UserID  `json:"id"`
	DisplayName         string  `json:"display_name"`
	SkillCategory       string  `json:"skill_category"`
	AvatarURL           *string `json:"avatar_url"`
	ValidationsReceived int64   `json:"validations_received"`
	PostsCount          int64   `json:"posts_count"`
}

// Пост. AuthorID — ссылка для lookup'а, не владение: автор мог быть удалён.
// Media не сериализуется, наружу уходит только вычисленный video_url.
type Post struct {
	ID              PostID    `json:"id"`
	AuthorID        UserID    `json:"user_id"`
	Media           MediaRef  `json:"-"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	SkillCategory   string    `json:"skill_category"`
	CreatedAt       time.Time `json:"created_at"`
	ValidationCount int64     `json:"validation_count"`
}

// Validation — одноразовая отметка «зритель X подтвердил пост Y».
// Пара (PostID, UserID) уникальна, запись не мутируется и не удаляется.
type Validation struct {
	ID        ValidationID `json:"id"`
	PostID    PostID       `json:"post_id"`
	UserID    UserID       `json:"user_id"`
	CreatedAt time.Time    `json:"created_at"`
}

// FeedEntry — пост, гидрированный автором и флагом зрителя.
// User == nil, если автор удалён — пост при этом не выбрасывается.
type FeedEntry struct {
	Post
	VideoURL        string   `json:"video_url"`
	User            *Profile `json:"user,omitempty"`
	IsValidatedByMe bool     `json:"is_validated_by_me"`
}
