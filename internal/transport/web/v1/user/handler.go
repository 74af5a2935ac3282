package user

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path"
	"strconv"

	"github.com/google/uuid"

	"github.com/andrel4-space/killproof-platform/internal/domain"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/logx"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/mw"
	v1 "github.com/andrel4-space/killproof-platform/internal/transport/web/v1"
)

// leaderboardTTL — снапшот лидерборда в кеше; счётчики и так подсказки,
// отставание на полминуты приемлемо.
const leaderboardTTL = 30

type Handler struct {
	Log   *log.Logger
	Users domain.UsersRepo
	Media domain.MediaStore
	Cache domain.Cache
}

// Profile godoc
// @Summary     Public user profile
// @Tags        users
// @Produce     json
// @Param       id path string true "user id"
// @Success     200 {object} domain.APIEnvelope{data=domain.Profile}
// @Failure     404 {object} domain.APIEnvelope
// @Router      /api/users/{id} [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	const op = "user.profile"
	reqID := mw.RequestIDFromCtx(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad user id", err, "raw", r.PathValue("id"))
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	u, err := h.Users.UserByID(r.Context(), id)
	if err != nil {
		logx.Error(h.Log, reqID, op, "lookup failed", err, "user_id", id)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", id)
	v1.WriteOKData(w, r, u.Profile())
}

// UploadAvatar godoc
// @Summary     Upload avatar image
// @Description multipart: avatar (image/*). Сохраняет медиа и прописывает avatar_url.
// @Tags        users
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       avatar formData file true "image file"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     415 {object} domain.APIEnvelope
// @Failure     503 {object} domain.APIEnvelope
// @Router      /api/users/avatar [post]
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	const op = "user.upload_avatar"
	reqID := mw.RequestIDFromCtx(r.Context())

	viewer, ok := domain.ViewerFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if err := r.ParseMultipartForm(16 << 20); err != nil {
		logx.Error(h.Log, reqID, op, "parse form failed", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	file, hdr, err := r.FormFile("avatar")
	if err != nil {
		logx.Error(h.Log, reqID, op, "missing avatar", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	defer file.Close()

	contentType := hdr.Header.Get("Content-Type")
	hint := "avatars/" + viewer.String() + path.Ext(hdr.Filename)

	// сначала байты, потом документ
	ref, err := h.Media.Put(r.Context(), file, contentType, domain.KindImage, hint)
	if err != nil {
		logx.Error(h.Log, reqID, op, "media put failed", err, "content_type", contentType)
		v1.WriteDomainError(w, r, err)
		return
	}

	avatarURL := h.Media.ResolveURL(ref)
	if err := h.Users.SetAvatarURL(r.Context(), viewer, avatarURL); err != nil {
		logx.Error(h.Log, reqID, op, "set avatar url failed", err, "user_id", viewer)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", viewer, "avatar_url", avatarURL)
	v1.WriteOKData(w, r, map[string]any{"avatar_url": avatarURL})
}

// Categories godoc
// @Summary     Skill categories
// @Tags        users
// @Produce     json
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Router      /api/skill-categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	v1.WriteOKData(w, r, map[string]any{"categories": domain.SkillCategories})
}

// Leaderboard godoc
// @Summary     Top users by validations received
// @Tags        users
// @Produce     json
// @Param       limit query int false "default 10"
// @Success     200 {object} domain.APIEnvelope{data=[]domain.LeaderboardEntry}
// @Router      /api/leaderboard [get]
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "user.leaderboard"
	reqID := mw.RequestIDFromCtx(r.Context())

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			v1.WriteDomainError(w, r, domain.ErrBadParams)
			return
		}
		limit = n
	}

	key := domain.CacheKeyLeaderboard(limit)
	if b, err := h.Cache.Get(r.Context(), key); err == nil && len(b) > 0 {
		var cached []domain.LeaderboardEntry
		if err := json.Unmarshal(b, &cached); err == nil {
			logx.Info(h.Log, reqID, op, "cache hit", "limit", limit)
			v1.WriteOKData(w, r, cached)
			return
		}
	}

	entries, err := h.Users.Leaderboard(r.Context(), limit)
	if err != nil {
		logx.Error(h.Log, reqID, op, "query failed", err, "limit", limit)
		v1.WriteDomainError(w, r, fmt.Errorf("leaderboard: %w", err))
		return
	}

	if buf, err := json.Marshal(entries); err == nil {
		_ = h.Cache.Set(r.Context(), key, buf, leaderboardTTL)
	}

	logx.Info(h.Log, reqID, op, "ok", "limit", limit, "entries", len(entries))
	v1.WriteOKData(w, r, entries)
}
