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

var postCols = []string{
	"id", "user_id", "media_backend", "media_key", "title",
	"description", "skill_category", "created_at", "validation_count",
}

// scanPost — единственная точка чтения поста; backward-fill категории здесь же.
func scanPost(row pgx.Row) (domain.Post, error) {
	var (
		p   domain.Post
		cat *string
	)
	if err := row.Scan(
		&p.ID, &p.AuthorID, &p.Media.Backend, &p.Media.Key, &p.Title,
		&p.Description, &cat, &p.CreatedAt, &p.ValidationCount,
	); err != nil {
		return domain.Post{}, err
	}
	p.SkillCategory = domain.NormalizeCategory(cat)
	return p, nil
}

func (r *PGRepo) CreatePost(ctx context.Context, p domain.Post) (domain.Post, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	q := r.qb().Insert(r.table("posts")).
		Columns("id", "user_id", "media_backend", "media_key", "title", "description", "skill_category").
		Values(p.ID, p.AuthorID, p.Media.Backend, p.Media.Key, p.Title, p.Description, p.SkillCategory).
		Suffix("RETURNING " + joinCols(postCols))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreatePost", sqlStr, args)

	start := time.Now()
	out, err := scanPost(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		r.logger.Printf("CreatePost scan error after %s: %v", time.Since(start), err)
		return domain.Post{}, err
	}
	r.logger.Printf("CreatePost ok in %s id=%s author=%s", time.Since(start), out.ID, out.AuthorID)
	return out, nil
}

func (r *PGRepo) PostByID(ctx context.Context, id domain.PostID) (domain.Post, error) {
	q := r.qb().Select(postCols...).
		From(r.table("posts")).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("PostByID", sqlStr, args)

	p, err := scanPost(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, err
	}
	return p, nil
}

// PostsList — лента: новые сверху, опционально категория/автор.
// Sentinel CategoryAll эквивалентен отсутствию фильтра.
func (r *PGRepo) PostsList(ctx context.Context, f domain.PostFilter) ([]domain.Post, error) {
	q := r.qb().Select(postCols...).
		From(r.table("posts")).
		OrderBy("created_at DESC")

	if f.Category != "" && f.Category != domain.CategoryAll {
		q = q.Where(sq.Eq{"skill_category": f.Category})
	}
	if f.AuthorID != nil {
		q = q.Where(sq.Eq{"user_id": *f.AuthorID})
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 1000
	}
	q = q.Limit(uint64(limit))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("PostsList", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("PostsList query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Printf("PostsList ok in %s got=%d", time.Since(start), len(out))
	return out, nil
}

func (r *PGRepo) IncValidationCount(ctx context.Context, id domain.PostID, delta int64) error {
	q := r.qb().Update(r.table("posts")).
		Set("validation_count", sq.Expr("validation_count + ?", delta)).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("IncValidationCount", sqlStr, args)

	_, err := r.pool.Exec(ctx, sqlStr, args...)
	return err
}
