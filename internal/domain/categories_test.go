package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCategory(t *testing.T) {
	t.Run("nil backfills default", func(t *testing.T) {
		require.Equal(t, DefaultSkillCategory(), NormalizeCategory(nil))
	})

	t.Run("empty backfills default", func(t *testing.T) {
		empty := ""
		require.Equal(t, DefaultSkillCategory(), NormalizeCategory(&empty))
	})

	t.Run("present value untouched", func(t *testing.T) {
		c := "Arts & Music"
		require.Equal(t, "Arts & Music", NormalizeCategory(&c))
	})

	t.Run("unknown value passes through", func(t *testing.T) {
		// нормализация — backward-fill, не валидация
		c := "Legacy Category"
		require.Equal(t, "Legacy Category", NormalizeCategory(&c))
	})
}

func TestProfileStripsSecrets(t *testing.T) {
	u := User{DisplayName: "Alice", Email: "a@b.c", PassHash: "argon2..."}
	p := u.Profile()
	require.Empty(t, p.PassHash)
	require.Equal(t, "Alice", p.DisplayName)
	require.Equal(t, "argon2...", u.PassHash, "исходная структура не мутируется")
}
