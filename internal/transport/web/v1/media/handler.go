// Пакет media — отдача байтов локальных медиа-объектов (GET/HEAD /media/{path}),
// включая partial content для перемотки видео. Remote-объекты сюда не попадают:
// их URL указывает прямо во внешнее хранилище.
package media

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrel4-space/killproof-platform/internal/domain"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/logx"
	"github.com/andrel4-space/killproof-platform/internal/transport/web/mw"
	v1 "github.com/andrel4-space/killproof-platform/internal/transport/web/v1"
)

// copyChunk — шаг отдачи диапазона; окно читается ограниченными порциями.
const copyChunk = 64 << 10

type Handler struct {
	Log *log.Logger
	Dir string // корень локального медиа-каталога
}

// contentTypes — типы по расширению; неизвестное — generic binary.
var contentTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Serve godoc
// @Summary     Serve stored media object
// @Description Отдаёт байты локального объекта; поддерживает Range (bytes=start-end) и HEAD.
// @Tags        media
// @Produce     octet-stream
// @Param       path path string true "object path"
// @Success     200 {file} []byte
// @Success     206 {file} []byte
// @Failure     404 {object} domain.APIEnvelope
// @Failure     416 {object} domain.APIEnvelope
// @Router      /media/{path} [get]
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	const op = "media.serve"
	reqID := mw.RequestIDFromCtx(r.Context())

	rel := cleanPath(r.PathValue("path"))
	if rel == "" {
		logx.Error(h.Log, reqID, op, "bad object path", domain.ErrNotFound, "raw", r.PathValue("path"))
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}

	full := filepath.Join(h.Dir, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		logx.Error(h.Log, reqID, op, "object not found", domain.ErrNotFound, "path", rel)
		v1.WriteDomainError(w, r, domain.ErrNotFound)
		return
	}
	size := info.Size()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Content-Type", contentTypeFor(rel))
	w.Header().Set("Last-Modified", v1.HTTPTime(info.ModTime()))

	rangeHdr := r.Header.Get("Range")
	if rangeHdr == "" {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			logx.Info(h.Log, reqID, op, "head ok", "path", rel, "size", size)
			return
		}
		h.copyWindow(w, full, 0, size, reqID, op, rel)
		return
	}

	start, end, err := parseRange(rangeHdr, size)
	if err != nil {
		// сломанный или выходящий за границы диапазон — всегда 416,
		// молчаливое клампанье отдаёт плееру не те байты
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		logx.Error(h.Log, reqID, op, "unsatisfiable range", err, "path", rel, "range", rangeHdr)
		v1.WriteDomainError(w, r, domain.ErrRangeNotSatisfiable)
		return
	}

	chunk := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(chunk, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		logx.Info(h.Log, reqID, op, "head partial ok", "path", rel, "range", rangeHdr)
		return
	}
	h.copyWindow(w, full, start, chunk, reqID, op, rel)
}

// copyWindow отдаёт ровно n байт с позиции off; короткое чтение не фатально.
func (h *Handler) copyWindow(w io.Writer, full string, off, n int64, reqID, op, rel string) {
	f, err := os.Open(full)
	if err != nil {
		logx.Error(h.Log, reqID, op, "open failed", err, "path", rel)
		return
	}
	defer f.Close()

	if off > 0 {
		if _, err := f.Seek(off, io.SeekStart); err != nil {
			logx.Error(h.Log, reqID, op, "seek failed", err, "path", rel)
			return
		}
	}

	written, err := io.CopyBuffer(w, io.LimitReader(f, n), make([]byte, copyChunk))
	if err != nil {
		logx.Error(h.Log, reqID, op, "stream aborted", err, "path", rel, "written", written)
		return
	}
	logx.Info(h.Log, reqID, op, "ok", "path", rel, "offset", off, "written", written)
}

// parseRange разбирает "bytes=<start>-<end>".
// Пустой start -> 0, пустой end -> size-1; границы включительные.
// Любой синтаксический дефект или выход за [0, size) -> ErrRangeNotSatisfiable.
func parseRange(hdr string, size int64) (start, end int64, err error) {
	spec, ok := strings.CutPrefix(hdr, "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return 0, 0, domain.ErrRangeNotSatisfiable
	}
	first, last, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, 0, domain.ErrRangeNotSatisfiable
	}

	start = 0
	if first != "" {
		start, err = strconv.ParseInt(strings.TrimSpace(first), 10, 64)
		if err != nil || start < 0 {
			return 0, 0, domain.ErrRangeNotSatisfiable
		}
	}
	end = size - 1
	if last != "" {
		end, err = strconv.ParseInt(strings.TrimSpace(last), 10, 64)
		if err != nil {
			return 0, 0, domain.ErrRangeNotSatisfiable
		}
	}

	if start > end || start >= size || end >= size {
		return 0, 0, domain.ErrRangeNotSatisfiable
	}
	return start, end, nil
}

func contentTypeFor(rel string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(rel))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// cleanPath нормализует path-параметр и режет попытки выйти из каталога.
func cleanPath(p string) string {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return ""
	}
	return clean
}
