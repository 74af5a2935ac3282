// Пакет feed — сборка ленты: batch-join постов с авторами и валидациями зрителя.
// Весь смысл пакета — O(1) походов в хранилище на ленту вместо O(постов):
// один батч за авторами, один за валидациями, независимо от размера выдачи.
package feed

import (
	"context"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

// Filter — опциональные фильтры выдачи.
type Filter struct {
	// Query — регистронезависимый substring по title/description/имени автора.
	// Применяется после гидрации: пост без автора не может совпасть по имени
	// и при активном Query исключается.
	Query string
	// Category — точное совпадение; "" или sentinel "all" — без фильтра.
	Category string
}

type Aggregator struct {
	users       domain.UsersRepo
	validations domain.ValidationsRepo
	media       domain.MediaStore
	log         *log.Logger
}

func New(users domain.UsersRepo, validations domain.ValidationsRepo, media domain.MediaStore, logger *log.Logger) *Aggregator {
	return &Aggregator{users: users, validations: validations, media: media, log: logger}
}

// Aggregate гидрирует посты профилями авторов и флагом зрителя.
// Порядок входа сохраняется; сортировка — забота вызывающего.
// Пост с удалённым автором не выбрасывается — просто без поля user.
func (a *Aggregator) Aggregate(ctx context.Context, posts []domain.Post, viewer domain.UserID, f Filter) ([]domain.FeedEntry, error) {
	if len(posts) == 0 {
		return []domain.FeedEntry{}, nil
	}

	authorIDs := distinctAuthors(posts)
	postIDs := make([]domain.PostID, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	// Два независимых батча; оба обязаны завершиться до гидрации.
	var (
		authors   []domain.User
		validated map[domain.PostID]struct{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authors, err = a.users.UsersByIDs(gctx, authorIDs)
		return err
	})
	g.Go(func() error {
		var err error
		validated, err = a.validations.ValidatedSet(gctx, viewer, postIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[domain.UserID]domain.User, len(authors))
	for _, u := range authors {
		byID[u.ID] = u
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	filterCategory := f.Category != "" && f.Category != domain.CategoryAll

	out := make([]domain.FeedEntry, 0, len(posts))
	for _, p := range posts {
		if filterCategory && p.SkillCategory != f.Category {
			continue
		}

		e := domain.FeedEntry{
			Post:            p,
			VideoURL:        a.media.ResolveURL(p.Media),
			IsValidatedByMe: containsPost(validated, p.ID),
		}
		if u, ok := byID[p.AuthorID]; ok {
			e.User = u.Profile()
		}

		if query != "" {
			if e.User == nil {
				// по имени автора не сматчить — при активном поиске пропускаем
				continue
			}
			if !strings.Contains(strings.ToLower(p.Title), query) &&
				!strings.Contains(strings.ToLower(p.Description), query) &&
				!strings.Contains(strings.ToLower(e.User.DisplayName), query) {
				continue
			}
		}

		out = append(out, e)
	}
	return out, nil
}

// One — гидрация одиночного поста тем же путём.
func (a *Aggregator) One(ctx context.Context, p domain.Post, viewer domain.UserID) (domain.FeedEntry, error) {
	entries, err := a.Aggregate(ctx, []domain.Post{p}, viewer, Filter{})
	if err != nil {
		return domain.FeedEntry{}, err
	}
	return entries[0], nil
}

func distinctAuthors(posts []domain.Post) []domain.UserID {
	seen := make(map[domain.UserID]struct{}, len(posts))
	out := make([]domain.UserID, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.AuthorID]; ok {
			continue
		}
		seen[p.AuthorID] = struct{}{}
		out = append(out, p.AuthorID)
	}
	return out
}

func containsPost(set map[domain.PostID]struct{}, id domain.PostID) bool {
	_, ok := set[id]
	return ok
}
