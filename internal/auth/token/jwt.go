package token

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/andrel4-space/killproof-platform/internal/domain"
)

// Manager — адаптер внешнего identity-коллаборатора: разбирает Bearer-credential
// и маппит его в стабильный id пользователя. Выпуск токенов оставлен для
// инструментов и тестов — регистрация/логин живут вне сервиса.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func New(secret string, issuer string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, ttl: ttl}
}

type jwtClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

// Ensure: Manager implements domain.IdentityResolver
var _ domain.IdentityResolver = (*Manager)(nil)

// Issue выпускает JWT для пользователя
func (m *Manager) Issue(_ context.Context, userID domain.UserID) (string, error) {
	now := time.Now().UTC()
	cl := jwtClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, cl)
	return t.SignedString(m.secret)
}

// Resolve валидирует подпись/сроки и возвращает id пользователя.
// Любой дефект credential'а -> domain.ErrUnauth, без деталей наружу.
func (m *Manager) Resolve(_ context.Context, credential string) (domain.UserID, error) {
	var out jwtClaims
	tkn, err := jwt.ParseWithClaims(credential, &out, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return uuid.Nil, domain.ErrUnauth
	}
	if out.UserID == uuid.Nil {
		// токены старого формата несут id только в sub
		id, perr := uuid.Parse(out.Subject)
		if perr != nil {
			return uuid.Nil, domain.ErrUnauth
		}
		return id, nil
	}
	return out.UserID, nil
}
