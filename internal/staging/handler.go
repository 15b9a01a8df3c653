package staging

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartage-systems/cartage/internal/platform/httpx"
	"github.com/cartage-systems/cartage/internal/shared"
)

// Handler manages staging cart endpoints. The acting session comes from the
// request context, never from the body.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers staging routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/add", h.add)
	r.Post("/remove", h.remove)
}

type namesRequest struct {
	SourceNames []string `json:"source_names"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req namesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	session := shared.SessionFromContext(r.Context())
	added, err := h.service.Add(r.Context(), session, req.SourceNames)
	if err != nil {
		h.logger.Error("stage orders", slog.Any("error", err), slog.String("session", session))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"added": added})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	var req namesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	session := shared.SessionFromContext(r.Context())
	removed, err := h.service.Remove(r.Context(), session, req.SourceNames)
	if err != nil {
		h.logger.Error("unstage orders", slog.Any("error", err), slog.String("session", session))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// list returns the open cart, or the manifest-scoped view when a
// manifest_number query parameter is present.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	session := shared.SessionFromContext(r.Context())
	manifest := r.URL.Query().Get("manifest_number")
	out, err := h.service.List(r.Context(), session, manifest)
	if err != nil {
		h.logger.Error("list staged orders", slog.Any("error", err), slog.String("session", session))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": out})
}
