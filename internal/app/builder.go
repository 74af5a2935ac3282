package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andrel4-space/killproof-platform/internal/auth/token"
	"github.com/andrel4-space/killproof-platform/internal/config"
	"github.com/andrel4-space/killproof-platform/internal/domain"
	"github.com/andrel4-space/killproof-platform/internal/feed"
	redisx "github.com/andrel4-space/killproof-platform/internal/infra/cache/redis"
	"github.com/andrel4-space/killproof-platform/internal/infra/database/postgres"
	locals "github.com/andrel4-space/killproof-platform/internal/infra/storage/local"
	s3storage "github.com/andrel4-space/killproof-platform/internal/infra/storage/s3"
	"github.com/andrel4-space/killproof-platform/internal/ledger"
	"github.com/andrel4-space/killproof-platform/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	media  domain.MediaStore
	cache  domain.Cache
	repo   *postgres.PGRepo
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	storageLog := log.New(base.Writer(), base.Prefix()+"[storage] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	feedLog := log.New(base.Writer(), base.Prefix()+"[feed] ", base.Flags())
	ledgerLog := log.New(base.Writer(), base.Prefix()+"[ledger] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	// Бэкенд медиа — решение одно на весь процесс, смешивания нет.
	var media domain.MediaStore
	if cfg.RemoteMediaEnabled() {
		base.Println("init S3 media storage")
		s3cfg := s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}
		media, err = s3storage.New(ctx, s3cfg, storageLog)
		if err != nil {
			return nil, fmt.Errorf("failed init s3: %w", err)
		}
	} else {
		base.Println("init local media storage")
		media, err = locals.New(cfg.MediaDir, storageLog)
		if err != nil {
			return nil, fmt.Errorf("failed init local storage: %w", err)
		}
	}

	base.Println("init Redis")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis is initialized")

	// Identity-коллаборатор: credential -> user id
	resolver := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)

	agg := feed.New(pgRepo, pgRepo, media, feedLog)
	led := ledger.New(pgRepo, pgRepo, pgRepo, ledgerLog)

	base.Println("init Server")
	deps := web.Deps{
		Repos:    web.Repos{Users: pgRepo, Posts: pgRepo, Validations: pgRepo},
		Resolver: resolver,
		Media:    media,
		MediaDir: cfg.MediaDir,
		Cache:    rc,
		Agg:      agg,
		Ledger:   led,
	}
	server := web.New(serverLog, cfg, deps)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		media:  media,
		cache:  rc,
		repo:   pgRepo,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.repo.Close()
	a.cache.Close()

	return nil
}
