package feed

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

// fakeUsers реализует только батч-выборку; остальное — заглушка через embed.
type fakeUsers struct {
	domain.UsersRepo

	mu    sync.Mutex
	users map[domain.UserID]domain.User
	calls int
	err   error
}

func (f *fakeUsers) UsersByIDs(_ context.Context, ids []domain.UserID) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeValidations struct {
	mu        sync.Mutex
	validated map[domain.PostID]struct{}
	calls     int
	err       error
}

func (f *fakeValidations) InsertUnique(context.Context, domain.PostID, domain.UserID, time.Time) (domain.ValidationID, bool, error) {
	return uuid.Nil, false, errors.New("not used")
}

func (f *fakeValidations) Exists(context.Context, domain.PostID, domain.UserID) (bool, error) {
	return false, errors.New("not used")
}

func (f *fakeValidations) ValidatedSet(_ context.Context, _ domain.UserID, postIDs []domain.PostID) (map[domain.PostID]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[domain.PostID]struct{})
	for _, id := range postIDs {
		if _, ok := f.validated[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

type fakeMedia struct{}

func (fakeMedia) Put(context.Context, io.Reader, string, domain.MediaKind, string) (domain.MediaRef, error) {
	return domain.MediaRef{}, errors.New("not used")
}
func (fakeMedia) ResolveURL(ref domain.MediaRef) string { return "/media/" + ref.Key }
func (fakeMedia) Ping(context.Context) error            { return nil }

func newPost(author domain.UserID, title, category, key string) domain.Post {
	return domain.Post{
		ID:            uuid.New(),
		AuthorID:      author,
		Media:         domain.MediaRef{Backend: domain.MediaBackendLocal, Key: key},
		Title:         title,
		SkillCategory: category,
		CreatedAt:     time.Now(),
	}
}

func TestAggregate_BatchesOncePerRepo(t *testing.T) {
	author := uuid.New()
	users := &fakeUsers{users: map[domain.UserID]domain.User{
		author: {ID: author, DisplayName: "Alice"},
	}}
	vals := &fakeValidations{}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	posts := []domain.Post{
		newPost(author, "one", "Other", "a.mp4"),
		newPost(author, "two", "Other", "b.mp4"),
		newPost(author, "three", "Other", "c.mp4"),
	}

	out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Equal(t, 1, users.calls, "авторы — один батч независимо от числа постов")
	require.Equal(t, 1, vals.calls, "валидации — один батч независимо от числа постов")
}

func TestAggregate_Hydration(t *testing.T) {
	author := uuid.New()
	viewer := uuid.New()
	users := &fakeUsers{users: map[domain.UserID]domain.User{
		author: {ID: author, DisplayName: "Alice", PassHash: "secret", Email: "a@b.c"},
	}}

	validated := newPost(author, "seen", "Other", "seen.mp4")
	fresh := newPost(author, "fresh", "Other", "fresh.mp4")
	vals := &fakeValidations{validated: map[domain.PostID]struct{}{validated.ID: {}}}

	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))
	out, err := agg.Aggregate(context.Background(), []domain.Post{validated, fresh}, viewer, Filter{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.True(t, out[0].IsValidatedByMe)
	require.False(t, out[1].IsValidatedByMe)
	require.Equal(t, "/media/seen.mp4", out[0].VideoURL)
	require.Equal(t, "/media/fresh.mp4", out[1].VideoURL)

	require.NotNil(t, out[0].User)
	require.Equal(t, "Alice", out[0].User.DisplayName)
	require.Empty(t, out[0].User.PassHash, "секреты не утекают в профиль")
}

func TestAggregate_MissingAuthorKeptWithoutUser(t *testing.T) {
	users := &fakeUsers{users: map[domain.UserID]domain.User{}}
	vals := &fakeValidations{}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	orphan := newPost(uuid.New(), "orphan", "Other", "o.mp4")
	out, err := agg.Aggregate(context.Background(), []domain.Post{orphan}, uuid.New(), Filter{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Nil(t, out[0].User)
}

func TestAggregate_QueryFilter(t *testing.T) {
	alice, bob := uuid.New(), uuid.New()
	users := &fakeUsers{users: map[domain.UserID]domain.User{
		alice: {ID: alice, DisplayName: "Alice Cooper"},
		bob:   {ID: bob, DisplayName: "Bob"},
	}}
	vals := &fakeValidations{}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	p1 := newPost(alice, "Sourdough basics", "Cooking & Food", "1.mp4")
	p2 := newPost(bob, "Guitar riffs", "Arts & Music", "2.mp4")
	p2.Description = "slow blues COOPER tribute"
	p3 := newPost(uuid.New(), "Cooper look-alike", "Other", "3.mp4") // автор удалён
	posts := []domain.Post{p1, p2, p3}

	t.Run("matches author name case-insensitively", func(t *testing.T) {
		out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{Query: "cooper"})
		require.NoError(t, err)
		// p1 — по имени автора, p2 — по description; p3 без автора исключён
		require.Len(t, out, 2)
		require.Equal(t, p1.ID, out[0].ID)
		require.Equal(t, p2.ID, out[1].ID)
	})

	t.Run("matches title", func(t *testing.T) {
		out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{Query: "SOURDOUGH"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, p1.ID, out[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{Query: "quantum"})
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("authorless survives without query", func(t *testing.T) {
		out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{})
		require.NoError(t, err)
		require.Len(t, out, 3)
	})
}

func TestAggregate_CategoryFilter(t *testing.T) {
	author := uuid.New()
	users := &fakeUsers{users: map[domain.UserID]domain.User{author: {ID: author}}}
	vals := &fakeValidations{}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	posts := []domain.Post{
		newPost(author, "a", "Cooking & Food", "a.mp4"),
		newPost(author, "b", "Arts & Music", "b.mp4"),
	}

	t.Run("exact", func(t *testing.T) {
		out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{Category: "Arts & Music"})
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, "b", out[0].Title)
	})

	t.Run("all is passthrough", func(t *testing.T) {
		out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{Category: domain.CategoryAll})
		require.NoError(t, err)
		require.Len(t, out, 2)
	})
}

func TestAggregate_PreservesOrder(t *testing.T) {
	author := uuid.New()
	users := &fakeUsers{users: map[domain.UserID]domain.User{author: {ID: author}}}
	vals := &fakeValidations{}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	posts := make([]domain.Post, 10)
	for i := range posts {
		posts[i] = newPost(author, "p", "Other", "k.mp4")
	}

	out, err := agg.Aggregate(context.Background(), posts, uuid.New(), Filter{})
	require.NoError(t, err)
	require.Len(t, out, len(posts))
	for i := range posts {
		require.Equal(t, posts[i].ID, out[i].ID)
	}
}

func TestAggregate_EmptyInputSkipsRepos(t *testing.T) {
	users := &fakeUsers{}
	vals := &fakeValidations{}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	out, err := agg.Aggregate(context.Background(), nil, uuid.New(), Filter{})
	require.NoError(t, err)
	require.Empty(t, out)
	require.Zero(t, users.calls)
	require.Zero(t, vals.calls)
}

func TestAggregate_RepoErrorPropagates(t *testing.T) {
	boom := errors.New("pg down")
	users := &fakeUsers{err: boom}
	vals := &fakeValidations{}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	_, err := agg.Aggregate(context.Background(), []domain.Post{newPost(uuid.New(), "x", "Other", "x.mp4")}, uuid.New(), Filter{})
	require.ErrorIs(t, err, boom)
}

func TestOne(t *testing.T) {
	author := uuid.New()
	users := &fakeUsers{users: map[domain.UserID]domain.User{
		author: {ID: author, DisplayName: "Solo"},
	}}
	post := newPost(author, "single", "Other", "s.mp4")
	vals := &fakeValidations{validated: map[domain.PostID]struct{}{post.ID: {}}}
	agg := New(users, vals, fakeMedia{}, log.New(io.Discard, "", 0))

	entry, err := agg.One(context.Background(), post, uuid.New())
	require.NoError(t, err)
	require.Equal(t, post.ID, entry.ID)
	require.True(t, entry.IsValidatedByMe)
	require.Equal(t, "Solo", entry.User.DisplayName)
}
