package validate

import (
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/andrel4-space/killproof-platform/internal/domain"
	"github.com/andrel4-space/killproof-platform/internal/ledger"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/logx"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/mw"
	v1 "github.com/andrel4-space/killproof-platform/internal/transport/web/v1"
)

type Handler struct {
	Log    *log.Logger
	Ledger *ledger.Ledger
}

// Validate godoc
// @Summary     Validate a post
// @Description Одноразовое подтверждение поста зрителем. Повтор — 409.
// @Tags        posts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "post id"
// @Success     200 {object} domain.APIEnvelope{data=object}
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Failure     409 {object} domain.APIEnvelope
// @Router      /api/posts/{id}/validate [post]
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	const op = "validate.record"
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

	id, err := h.Ledger.Record(r.Context(), postID, viewer)
	if err != nil {
		logx.Error(h.Log, reqID, op, "record failed", err, "post_id", postID, "user_id", viewer)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "validation_id", id, "post_id", postID)
	v1.WriteOKData(w, r, map[string]any{"id": id})
}
