package web

import (
	"github.com/andrel4-space/killproof-platform/internal/domain"
	"github.com/andrel4-space/killproof-platform/internal/feed"
	"github.com/andrel4-space/killproof-platform/internal/ledger"
)

type Repos struct {
	Users       domain.UsersRepo
	Posts       domain.PostsRepo
	Validations domain.ValidationsRepo
}

// Deps — всё, что нужно серверу; собирается в app.Build и
// передаётся явно, без глобальных хэндлов.
type Deps struct {
	Repos    Repos
	Resolver domain.IdentityResolver
	Media    domain.MediaStore
	MediaDir string // корень для отдачи локальных объектов
	Cache    domain.Cache
	Agg      *feed.Aggregator
	Ledger   *ledger.Ledger
}
