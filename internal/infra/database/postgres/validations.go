package postgres

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

// InsertUnique — условная вставка валидации. Уникальность пары (post_id, user_id)
// обеспечивает unique-индекс + ON CONFLICT DO NOTHING: из N конкурентных вызовов
// ровно один получает inserted=true, остальные — false без ошибки.
func (r *PGRepo) InsertUnique(ctx context.Context, postID domain.PostID, userID domain.UserID, at time.Time) (domain.ValidationID, bool, error) {
	q := r.qb().Insert(r.table("validations")).
		Columns("id", "post_id", "user_id", "created_at").
		Values(uuid.New(), postID, userID, at).
		Suffix("ON CONFLICT (post_id, user_id) DO NOTHING RETURNING id")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("InsertUnique", sqlStr, args)

	start := time.Now()
	var id domain.ValidationID
	err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// пара уже существует — вставки не было
			r.logger.Printf("InsertUnique conflict in %s post=%s user=%s", time.Since(start), postID, userID)
			return uuid.Nil, false, nil
		}
		r.logger.Printf("InsertUnique error after %s: %v", time.Since(start), err)
		return uuid.Nil, false, err
	}
	r.logger.Printf("InsertUnique ok in %s id=%s", time.Since(start), id)
	return id, true, nil
}

func (r *PGRepo) Exists(ctx context.Context, postID domain.PostID, userID domain.UserID) (bool, error) {
	q := r.qb().Select("1").
		From(r.table("validations")).
		Where(sq.Eq{"post_id": postID, "user_id": userID})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Exists", sqlStr, args)

	var one int
	err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ValidatedSet — какие из postIDs зритель подтвердил, одной командой (ANY).
func (r *PGRepo) ValidatedSet(ctx context.Context, userID domain.UserID, postIDs []domain.PostID) (map[domain.PostID]struct{}, error) {
	out := make(map[domain.PostID]struct{}, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	q := r.qb().Select("post_id").
		From(r.table("validations")).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Expr("post_id = ANY(?)", postIDs))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("ValidatedSet", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ValidatedSet query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id domain.PostID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("ValidatedSet ok in %s asked=%d validated=%d", time.Since(start), len(postIDs), len(out))
	return out, nil
}
