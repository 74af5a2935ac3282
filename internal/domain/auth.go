package domain

import "context"

// Аутентификация живёт снаружи (регистрация/логин/хэширование паролей — не наша
// зона). Нам нужен только резолвер: credential -> стабильный id пользователя
// или ErrUnauth.
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) (UserID, error)
}
