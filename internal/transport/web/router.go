package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/andrel4-space/killproof-platform/internal/docs"
	"github.com/andrel4-space/killproof-platform/internal/domain"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/mw"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/feed"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/health"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/media"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/post"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/user"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/validate"
)

type routerDeps struct {
	health   *health.Handler
	media    *media.Handler
	feed     *feed.Handler
	post     *post.Handler
	user     *user.Handler
	validate *validate.Handler
	resolver domain.IdentityResolver
}

func newRouter(d routerDeps, logger *log.Logger) http.Handler {
	mux := http.NewServeMux()
	auth := mw.AuthDeps{Resolver: d.resolver}
	protected := func(h http.HandlerFunc) http.Handler {
		return mw.RequireAuth(auth, h)
	}

	// health
	mux.HandleFunc("GET /api/healthz", d.health.Liveness)
	mux.HandleFunc("GET /api/readyz", d.health.Readiness)

	// media: GET-паттерн матчит и HEAD
	mux.HandleFunc("GET /media/{path...}", d.media.Serve)

	// лента
	mux.Handle("GET /api/posts", protected(d.feed.List))
	mux.Handle("GET /api/posts/search", protected(d.feed.Search))
	mux.Handle("GET /api/posts/{id}", protected(d.feed.GetOne))
	mux.Handle("GET /api/users/{id}/posts", protected(d.feed.UserPosts))

	// публикация и валидация
	mux.Handle("POST /api/posts", limitBody(128<<20, protected(d.post.Upload))) // 128MB на видео
	mux.Handle("POST /api/posts/{id}/validate", protected(d.validate.Validate))

	// пользователи
	mux.HandleFunc("GET /api/users/{id}", d.user.Profile)
	mux.Handle("POST /api/users/avatar", limitBody(16<<20, protected(d.user.UploadAvatar)))
	mux.HandleFunc("GET /api/skill-categories", d.user.Categories)
	mux.HandleFunc("GET /api/leaderboard", d.user.Leaderboard)

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// 🔗 middleware
	return mw.WithRequestID(mw.Logging(logger)(mux))
}

func limitBody(n int64, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, n)
		h.ServeHTTP(w, r)
	})
}
