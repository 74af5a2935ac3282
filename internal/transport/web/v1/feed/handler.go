package feed

import (
	"log"

	"github.com/andrel4-space/killproof-platform/internal/domain"
	feedagg "github.com/andrel4-space/killproof-platform/internal/feed"
)

type Handler struct {
	Log   *log.Logger
	Posts domain.PostsRepo
	Agg   *feedagg.Aggregator
}
