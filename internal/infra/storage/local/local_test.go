package local

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir(), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	return s
}

func TestPut_Video(t *testing.T) {
	s := newTestStorage(t)

	ref, err := s.Put(context.Background(), strings.NewReader("fake-mp4"), "video/mp4", domain.KindVideo, "")
	require.NoError(t, err)
	require.Equal(t, domain.MediaBackendLocal, ref.Backend)
	require.True(t, strings.HasSuffix(ref.Key, ".mp4"), "расширение из content-type: %s", ref.Key)

	data, err := os.ReadFile(filepath.Join(s.Dir(), ref.Key))
	require.NoError(t, err)
	require.Equal(t, "fake-mp4", string(data))
}

func TestPut_HintKey(t *testing.T) {
	s := newTestStorage(t)

	ref, err := s.Put(context.Background(), strings.NewReader("jpeg"), "image/jpeg", domain.KindImage, "avatars/u1.jpg")
	require.NoError(t, err)
	require.Equal(t, "avatars/u1.jpg", ref.Key)
	require.FileExists(t, filepath.Join(s.Dir(), "avatars", "u1.jpg"))
}

func TestPut_KindMismatch(t *testing.T) {
	s := newTestStorage(t)

	t.Run("image where video expected", func(t *testing.T) {
		_, err := s.Put(context.Background(), strings.NewReader("x"), "image/png", domain.KindVideo, "")
		require.ErrorIs(t, err, domain.ErrUnsupportedMedia)
	})

	t.Run("video where image expected", func(t *testing.T) {
		_, err := s.Put(context.Background(), strings.NewReader("x"), "video/mp4", domain.KindImage, "")
		require.ErrorIs(t, err, domain.ErrUnsupportedMedia)
	})

	t.Run("arbitrary type", func(t *testing.T) {
		_, err := s.Put(context.Background(), strings.NewReader("x"), "application/pdf", domain.KindVideo, "")
		require.ErrorIs(t, err, domain.ErrUnsupportedMedia)
	})
}

func TestPut_TraversalHintIsNeutralized(t *testing.T) {
	s := newTestStorage(t)

	ref, err := s.Put(context.Background(), strings.NewReader("x"), "video/mp4", domain.KindVideo, "../../escape.mp4")
	require.NoError(t, err)
	require.Equal(t, "escape.mp4", ref.Key, "ключ не выходит из каталога")
	require.FileExists(t, filepath.Join(s.Dir(), "escape.mp4"))
}

func TestResolveURL(t *testing.T) {
	s := newTestStorage(t)
	url := s.ResolveURL(domain.MediaRef{Backend: domain.MediaBackendLocal, Key: "clips/v.mp4"})
	require.Equal(t, "/media/clips/v.mp4", url)
}

func TestPing(t *testing.T) {
	s := newTestStorage(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"a.mp4", "a.mp4"},
		{"avatars/u1.jpg", "avatars/u1.jpg"},
		{"./a.mp4", "a.mp4"},
		{"a//b.mp4", "a/b.mp4"},
		{"../x.mp4", "x.mp4"},
		{"..", ""},
		{"a/../../x.mp4", "x.mp4"},
		{"\\windows\\style.mp4", "windows/style.mp4"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, sanitizeKey(tc.in), "in=%q", tc.in)
	}
}
