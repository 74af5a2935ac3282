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

var userCols = []string{
	"id", "email", "pass_hash", "display_name", "skill_category",
	"avatar_url", "created_at", "posts_count", "validations_received",
}

// scanUser — единственная точка чтения пользователя из строки.
// Здесь же backward-fill категории (skill_category может быть NULL).
func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u   domain.User
		cat *string
	)
	if err := row.Scan(
		&u.ID, &u.Email, &u.PassHash, &u.DisplayName, &cat,
		&u.AvatarURL, &u.CreatedAt, &u.PostsCount, &u.ValidationsReceived,
	); err != nil {
		return domain.User{}, err
	}
	u.SkillCategory = domain.NormalizeCategory(cat)
	return u, nil
}

func (r *PGRepo) CreateUser(ctx context.Context, email, passHash, displayName, skillCategory string) (domain.User, error) {
	q := r.qb().Insert(r.table("users")).
		Columns("id", "email", "pass_hash", "display_name", "skill_category").
		Values(uuid.New(), email, passHash, displayName, skillCategory).
		Suffix("RETURNING " + joinCols(userCols))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("CreateUser ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	q := r.qb().Select(userCols...).
		From(r.table("users")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UserByID", sqlStr, args)

	start := time.Now()
	u, err := scanUser(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		r.logger.Printf("UserByID scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logger.Printf("UserByID ok in %s id=%s", time.Since(start), u.ID)
	return u, nil
}

// UsersByIDs — батч для агрегатора ленты: все авторы одной командой.
func (r *PGRepo) UsersByIDs(ctx context.Context, ids []domain.UserID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := r.qb().Select(userCols...).
		From(r.table("users")).
		Where(sq.Expr("id = ANY(?)", ids))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UsersByIDs", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("UsersByIDs query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("UsersByIDs ok in %s asked=%d got=%d", time.Since(start), len(ids), len(out))
	return out, nil
}

func (r *PGRepo) SetAvatarURL(ctx context.Context, id domain.UserID, url string) error {
	q := r.qb().Update(r.table("users")).
		Set("avatar_url", url).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("SetAvatarURL", sqlStr, args)

	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Инкременты счётчиков — одиночные атомарные апдейты.
// Вызывающий сам решает, фатальна ли ошибка (для леджера — нет, только лог).
func (r *PGRepo) IncPostsCount(ctx context.Context, id domain.UserID, delta int64) error {
	return r.incUserCounter(ctx, "IncPostsCount", "posts_count", id, delta)
}

func (r *PGRepo) IncValidationsReceived(ctx context.Context, id domain.UserID, delta int64) error {
	return r.incUserCounter(ctx, "IncValidationsReceived", "validations_received", id, delta)
}

func (r *PGRepo) incUserCounter(ctx context.Context, op, col string, id domain.UserID, delta int64) error {
	q := r.qb().Update(r.table("users")).
		Set(col, sq.Expr(col+" + ?", delta)).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	_, err := r.pool.Exec(ctx, sqlStr, args...)
	return err
}

func (r *PGRepo) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	q := r.qb().Select("id", "display_name", "skill_category", "avatar_url", "validations_received", "posts_count").
		From(r.table("users")).
		OrderBy("validations_received DESC").
		Limit(uint64(limit))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("Leaderboard", sqlStr, args)

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LeaderboardEntry
	for rows.Next() {
		var (
			e   domain.LeaderboardEntry
			cat *string
		)
		if err := rows.Scan(&e.ID, &e.DisplayName, &cat, &e.AvatarURL, &e.ValidationsReceived, &e.PostsCount); err != nil {
			return nil, err
		}
		e.SkillCategory = domain.NormalizeCategory(cat)
		out = append(out, e)
	}
	return out, rows.Err()
}
