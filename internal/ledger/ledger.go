// Пакет ledger — учёт валидаций: не более одной на пару (пост, зритель).
// Инвариант держит слой хранения (unique-индекс + условная вставка),
// не check-then-act в коде.
package ledger

import (
	"context"
	"log"
	"time"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

type Ledger struct {
	posts       domain.PostsRepo
	users       domain.UsersRepo
	validations domain.ValidationsRepo
	log         *log.Logger
	now         func() time.Time
}

func New(posts domain.PostsRepo, users domain.UsersRepo, validations domain.ValidationsRepo, logger *log.Logger) *Ledger {
	return &Ledger{
		posts:       posts,
		users:       users,
		validations: validations,
		log:         logger,
		now:         time.Now,
	}
}

func (l *Ledger) HasValidated(ctx context.Context, postID domain.PostID, userID domain.UserID) (bool, error) {
	return l.validations.Exists(ctx, postID, userID)
}

// Record фиксирует валидацию.
// ErrNotFound — пост неизвестен; ErrDuplicateValidation — пара уже есть.
// Инкременты validation_count и validations_received — два независимых
// неатомарных апдейта; их ошибки логируются и не валят операцию
// (счётчики — eventually-consistent подсказки, не инварианты).
func (l *Ledger) Record(ctx context.Context, postID domain.PostID, userID domain.UserID) (domain.ValidationID, error) {
	post, err := l.posts.PostByID(ctx, postID)
	if err != nil {
		return domain.ValidationID{}, err
	}

	id, inserted, err := l.validations.InsertUnique(ctx, postID, userID, l.now().UTC())
	if err != nil {
		return domain.ValidationID{}, err
	}
	if !inserted {
		return domain.ValidationID{}, domain.ErrDuplicateValidation
	}

	if err := l.posts.IncValidationCount(ctx, postID, 1); err != nil {
		l.log.Printf("lvl=error op=ledger.record msg=\"inc validation_count failed\" post_id=%s err=%q", postID, err)
	}
	if err := l.users.IncValidationsReceived(ctx, post.AuthorID, 1); err != nil {
		l.log.Printf("lvl=error op=ledger.record msg=\"inc validations_received failed\" author_id=%s err=%q", post.AuthorID, err)
	}

	return id, nil
}
