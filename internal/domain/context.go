package domain

import "context"

// Ключ для хранения аутентифицированного зрителя в контексте HTTP-запроса
type ctxKey int

const viewerCtxKey ctxKey = 1

func WithViewer(ctx context.Context, id UserID) context.Context {
	return context.WithValue(ctx, viewerCtxKey, id)
}

func ViewerFromCtx(ctx context.Context) (UserID, bool) {
	id, ok := ctx.Value(viewerCtxKey).(UserID)
	return id, ok
}
