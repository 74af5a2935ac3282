package feed

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/andrel4-space/killproof-platform/internal/domain"
	feedagg "github.com/andrel4-space/killproof-platform/internal/feed"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/logx"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/mw"
	v1 "github.com/andrel4-space/killproof-platform/internal/transport/web/v1"
)

// List godoc
// @Summary     Feed of all posts
// @Description Лента: новые сверху, гидрировано автором и флагом зрителя.
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} domain.APIEnvelope{data=[]domain.FeedEntry}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "feed.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	viewer, ok := domain.ViewerFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	posts, err := h.Posts.PostsList(r.Context(), domain.PostFilter{})
	if err != nil {
		logx.Error(h.Log, reqID, op, "posts list failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	entries, err := h.Agg.Aggregate(r.Context(), posts, viewer, feedagg.Filter{})
	if err != nil {
		logx.Error(h.Log, reqID, op, "aggregate failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "posts", len(posts), "entries", len(entries))
	v1.WriteOKData(w, r, entries)
}

// Search godoc
// @Summary     Search/filter posts
// @Description query — substring по title/description/имени автора (без регистра);
// @Description skill_category — точное совпадение, "all" = без фильтра.
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       query query string false "free text"
// @Param       skill_category query string false "category or all"
// @Success     200 {object} domain.APIEnvelope{data=[]domain.FeedEntry}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/posts/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	const op = "feed.search"
	reqID := mw.RequestIDFromCtx(r.Context())

	viewer, ok := domain.ViewerFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	query := r.URL.Query().Get("query")
	category := r.URL.Query().Get("skill_category")

	// категория уходит в запрос хранилища, текст фильтрует агрегатор после гидрации
	posts, err := h.Posts.PostsList(r.Context(), domain.PostFilter{Category: category})
	if err != nil {
		logx.Error(h.Log, reqID, op, "posts list failed", err, "category", category)
		v1.WriteDomainError(w, r, err)
		return
	}

	entries, err := h.Agg.Aggregate(r.Context(), posts, viewer, feedagg.Filter{Query: query})
	if err != nil {
		logx.Error(h.Log, reqID, op, "aggregate failed", err)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "query", query, "category", category, "entries", len(entries))
	v1.WriteOKData(w, r, entries)
}

// GetOne godoc
// @Summary     Single post
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "post id"
// @Success     200 {object} domain.APIEnvelope{data=domain.FeedEntry}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/posts/{id} [get]
func (h *Handler) GetOne(w http.ResponseWriter, r *http.Request) {
	const op = "feed.get_one"
	reqID := mw.RequestIDFromCtx(r.Context())

	viewer, ok := domain.ViewerFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	postID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad post id", err, "raw", r.PathValue("id"))
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	post, err := h.Posts.PostByID(r.Context(), postID)
	if err != nil {
		logx.Error(h.Log, reqID, op, "post lookup failed", err, "post_id", postID)
		v1.WriteDomainError(w, r, err)
		return
	}

	entry, err := h.Agg.One(r.Context(), post, viewer)
	if err != nil {
		logx.Error(h.Log, reqID, op, "aggregate failed", err, "post_id", postID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", postID)
	v1.WriteOKData(w, r, entry)
}

// UserPosts godoc
// @Summary     Posts of one user
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "user id"
// @Success     200 {object} domain.APIEnvelope{data=[]domain.FeedEntry}
// @Failure     401 {object} domain.APIEnvelope
// @Router      /api/users/{id}/posts [get]
func (h *Handler) UserPosts(w http.ResponseWriter, r *http.Request) {
	const op = "feed.user_posts"
	reqID := mw.RequestIDFromCtx(r.Context())

	viewer, ok := domain.ViewerFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	authorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad user id", err, "raw", r.PathValue("id"))
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	posts, err := h.Posts.PostsList(r.Context(), domain.PostFilter{AuthorID: &authorID})
	if err != nil {
		logx.Error(h.Log, reqID, op, "posts list failed", err, "author_id", authorID)
		v1.WriteDomainError(w, r, err)
		return
	}

	entries, err := h.Agg.Aggregate(r.Context(), posts, viewer, feedagg.Filter{})
	if err != nil {
		logx.Error(h.Log, reqID, op, "aggregate failed", err, "author_id", authorID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "author_id", authorID, "entries", len(entries))
	v1.WriteOKData(w, r, entries)
}
