package ledger

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

type pair struct {
	post domain.PostID
	user domain.UserID
}

// fakeValidations повторяет контракт unique-индекса: первая вставка пары
// проходит, повторная возвращает inserted=false. Потокобезопасен.
type fakeValidations struct {
	mu        sync.Mutex
	rows      map[pair]domain.ValidationID
	insertErr error
}

func newFakeValidations() *fakeValidations {
	return &fakeValidations{rows: make(map[pair]domain.ValidationID)}
}

func (f *fakeValidations) InsertUnique(_ context.Context, postID domain.PostID, userID domain.UserID, _ time.Time) (domain.ValidationID, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return uuid.Nil, false, f.insertErr
	}
	key := pair{post: postID, user: userID}
	if _, ok := f.rows[key]; ok {
		return uuid.Nil, false, nil
	}
	id := uuid.New()
	f.rows[key] = id
	return id, true, nil
}

func (f *fakeValidations) Exists(_ context.Context, postID domain.PostID, userID domain.UserID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[pair{post: postID, user: userID}]
	return ok, nil
}

func (f *fakeValidations) ValidatedSet(context.Context, domain.UserID, []domain.PostID) (map[domain.PostID]struct{}, error) {
	return nil, errors.New("not used")
}

type fakePosts struct {
	mu       sync.Mutex
	posts    map[domain.PostID]domain.Post
	incCalls int
	incErr   error
}

func (f *fakePosts) CreatePost(context.Context, domain.Post) (domain.Post, error) {
	return domain.Post{}, errors.New("not used")
}

func (f *fakePosts) PostByID(_ context.Context, id domain.PostID) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePosts) PostsList(context.Context, domain.PostFilter) ([]domain.Post, error) {
	return nil, errors.New("not used")
}

func (f *fakePosts) IncValidationCount(_ context.Context, _ domain.PostID, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incCalls++
	return f.incErr
}

type fakeUsers struct {
	domain.UsersRepo

	mu       sync.Mutex
	incCalls int
	lastID   domain.UserID
	incErr   error
}

func (f *fakeUsers) IncValidationsReceived(_ context.Context, id domain.UserID, _ int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incCalls++
	f.lastID = id
	return f.incErr
}

func newTestLedger(posts *fakePosts, users *fakeUsers, vals *fakeValidations) *Ledger {
	return New(posts, users, vals, log.New(io.Discard, "", 0))
}

func seedPost(author domain.UserID) (domain.PostID, *fakePosts) {
	id := uuid.New()
	return id, &fakePosts{posts: map[domain.PostID]domain.Post{
		id: {ID: id, AuthorID: author},
	}}
}

func TestRecord_Success(t *testing.T) {
	author := uuid.New()
	postID, posts := seedPost(author)
	users := &fakeUsers{}
	vals := newFakeValidations()
	l := newTestLedger(posts, users, vals)

	id, err := l.Record(context.Background(), postID, uuid.New())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)
	require.Equal(t, 1, posts.incCalls)
	require.Equal(t, 1, users.incCalls)
	require.Equal(t, author, users.lastID, "инкремент уходит автору поста, не зрителю")
}

func TestRecord_UnknownPost(t *testing.T) {
	_, posts := seedPost(uuid.New())
	users := &fakeUsers{}
	vals := newFakeValidations()
	l := newTestLedger(posts, users, vals)

	_, err := l.Record(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Zero(t, posts.incCalls)
	require.Zero(t, users.incCalls)
	require.Empty(t, vals.rows, "для неизвестного поста вставки нет")
}

func TestRecord_Duplicate(t *testing.T) {
	postID, posts := seedPost(uuid.New())
	users := &fakeUsers{}
	vals := newFakeValidations()
	l := newTestLedger(posts, users, vals)

	viewer := uuid.New()
	_, err := l.Record(context.Background(), postID, viewer)
	require.NoError(t, err)

	_, err = l.Record(context.Background(), postID, viewer)
	require.ErrorIs(t, err, domain.ErrDuplicateValidation)
	require.Equal(t, 1, posts.incCalls, "счётчик не растёт на дубликате")
	require.Equal(t, 1, users.incCalls)
}

func TestRecord_ConcurrentSameViewer(t *testing.T) {
	postID, posts := seedPost(uuid.New())
	users := &fakeUsers{}
	vals := newFakeValidations()
	l := newTestLedger(posts, users, vals)

	viewer := uuid.New()
	const n = 32

	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Record(context.Background(), postID, viewer)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, dup int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrDuplicateValidation):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok, "ровно одна вставка при гонке")
	require.Equal(t, n-1, dup)
	require.Equal(t, 1, posts.incCalls)
	require.Equal(t, 1, users.incCalls)
}

func TestRecord_DistinctViewers(t *testing.T) {
	postID, posts := seedPost(uuid.New())
	users := &fakeUsers{}
	vals := newFakeValidations()
	l := newTestLedger(posts, users, vals)

	for i := 0; i < 5; i++ {
		_, err := l.Record(context.Background(), postID, uuid.New())
		require.NoError(t, err)
	}
	require.Equal(t, 5, posts.incCalls)
	require.Equal(t, 5, users.incCalls)
}

func TestRecord_CounterFailureIsNotFatal(t *testing.T) {
	postID, posts := seedPost(uuid.New())
	posts.incErr = errors.New("pg down")
	users := &fakeUsers{incErr: errors.New("pg down")}
	vals := newFakeValidations()
	l := newTestLedger(posts, users, vals)

	id, err := l.Record(context.Background(), postID, uuid.New())
	require.NoError(t, err, "сломанные счётчики не валят операцию")
	require.NotEqual(t, uuid.Nil, id)
}

func TestRecord_InsertErrorPropagates(t *testing.T) {
	postID, posts := seedPost(uuid.New())
	users := &fakeUsers{}
	vals := newFakeValidations()
	vals.insertErr = errors.New("pg down")
	l := newTestLedger(posts, users, vals)

	_, err := l.Record(context.Background(), postID, uuid.New())
	require.Error(t, err)
	require.Zero(t, posts.incCalls)
}

func TestHasValidated(t *testing.T) {
	postID, posts := seedPost(uuid.New())
	users := &fakeUsers{}
	vals := newFakeValidations()
	l := newTestLedger(posts, users, vals)

	viewer := uuid.New()
	ok, err := l.HasValidated(context.Background(), postID, viewer)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = l.Record(context.Background(), postID, viewer)
	require.NoError(t, err)

	ok, err = l.HasValidated(context.Background(), postID, viewer)
	require.NoError(t, err)
	require.True(t, ok)
}
