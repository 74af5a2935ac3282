package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/andrel4-space/killproof-platform/internal/app"
)

// @title        killproof-platform API
// @version      1.0
// @description  Лента коротких видео: агрегация постов, валидации, отдача медиа с Range.
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx)
	if err != nil {
		log.Fatalf("build: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
