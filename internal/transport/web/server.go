package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/andrel4-space/killproof-platform/internal/config"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/feed"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/health"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/media"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/post"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/user"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/v1/validate"
)

type Server struct {
	log    *log.Logger
	server *http.Server
	cfg    *config.Config
}

func New(logger *log.Logger, cfg *config.Config, d Deps) *Server {
	sub := func(name string) *log.Logger {
		return log.New(logger.Writer(), logger.Prefix()+"["+name+"] ", logger.Flags())
	}

	healthHandler := &health.Handler{Log: sub("health"), DB: d.Repos.Users, Cache: d.Cache, Storage: d.Media}
	mediaHandler := &media.Handler{Log: sub("media"), Dir: d.MediaDir}
	feedHandler := &feed.Handler{Log: sub("feed"), Posts: d.Repos.Posts, Agg: d.Agg}
	postHandler := &post.Handler{Log: sub("post"), Posts: d.Repos.Posts, Users: d.Repos.Users, Media: d.Media}
	userHandler := &user.Handler{Log: sub("user"), Users: d.Repos.Users, Media: d.Media, Cache: d.Cache}
	validateHandler := &validate.Handler{Log: sub("validate"), Ledger: d.Ledger}

	router := newRouter(routerDeps{
		health:   healthHandler,
		media:    mediaHandler,
		feed:     feedHandler,
		post:     postHandler,
		user:     userHandler,
		validate: validateHandler,
		resolver: d.Resolver,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute, // отдача видео диапазонами
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 2 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &Server{server: srv, cfg: cfg, log: logger}
}

func (ws *Server) Run() {
	ws.log.Printf("started on %s", ws.server.Addr)
	if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		ws.log.Fatalf("error: %v", err)
	}
}

func (ws *Server) Close(ctx context.Context) {
	if err := ws.server.Shutdown(ctx); err != nil {
		ws.log.Printf("forced to shutdown: %v", err)
	}
	ws.log.Println("exited gracefully")
}
