// Пакет post — публикация поста: приём видео, запись в MediaStore,
// затем документ в хранилище. Именно в этом порядке: упавшая загрузка
// не должна оставить висячую ссылку в документе.
package post

import (
	"log"
	"net/http"

	"github.com/andrel4-space/killproof-platform/internal/domain"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/logx"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/mw"
	v1 "github.com/andrel4-space/killproof-platform/internal/transport/web/v1"
)

type Handler struct {
	Log   *log.Logger
	Posts domain.PostsRepo
	Users domain.UsersRepo
	Media domain.MediaStore
}

// Upload godoc
// @Summary     Create post with video
// @Description multipart: title, description, skill_category, video (video/*)
// @Tags        posts
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       title formData string true "title"
// @Param       description formData string true "description"
// @Param       skill_category formData string true "skill category"
// @Param       video formData file true "video file"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     415 {object} domain.APIEnvelope
// @Failure     503 {object} domain.APIEnvelope
// @Router      /api/posts [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "post.upload"
	reqID := mw.RequestIDFromCtx(r.Context())

	viewer, ok := domain.ViewerFromCtx(r.Context())
	if !ok {
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		logx.Error(h.Log, reqID, op, "parse form failed", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	category := r.FormValue("skill_category")
	if title == "" || category == "" {
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	file, hdr, err := r.FormFile("video")
	if err != nil {
		logx.Error(h.Log, reqID, op, "missing video", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	defer file.Close()

	contentType := hdr.Header.Get("Content-Type")

	// сначала байты, потом документ
	ref, err := h.Media.Put(r.Context(), file, contentType, domain.KindVideo, "")
	if err != nil {
		logx.Error(h.Log, reqID, op, "media put failed", err, "content_type", contentType)
		v1.WriteDomainError(w, r, err)
		return
	}

	created, err := h.Posts.CreatePost(r.Context(), domain.Post{
		AuthorID:      viewer,
		Media:         ref,
		Title:         title,
		Description:   description,
		SkillCategory: category,
	})
	if err != nil {
		logx.Error(h.Log, reqID, op, "create post failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// счётчик — fire-and-forget: ошибка в лог, операция уже успешна
	if err := h.Users.IncPostsCount(r.Context(), viewer, 1); err != nil {
		logx.Error(h.Log, reqID, op, "inc posts_count failed", err, "user_id", viewer)
	}

	logx.Info(h.Log, reqID, op, "ok", "post_id", created.ID, "backend", ref.Backend)
	v1.WriteOKData(w, r, map[string]any{
		"id":        created.ID,
		"video_url": h.Media.ResolveURL(ref),
	})
}
