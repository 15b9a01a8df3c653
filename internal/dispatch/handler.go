package dispatch

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cartage-systems/cartage/internal/platform/httpx"
	"github.com/cartage-systems/cartage/internal/shared"
)

// Handler manages dispatch endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers dispatch routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/finalize", h.finalize)
	r.Get("/reports", h.listReports)
	r.Get("/manifests/{manifestNumber}", h.manifestDetail)
	r.Get("/dispatched", h.listDispatched)
	r.Get("/outstanding", h.listOutstanding)
}

type finalizeRequest struct {
	Report ReportInput `json:"report"`
	Lines  []LineInput `json:"lines" validate:"dive"`
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req.Report); err != nil {
		httpx.RespondError(w, err)
		return
	}

	session := shared.SessionFromContext(r.Context())
	result, err := h.service.Finalize(r.Context(), session, req.Report, req.Lines)
	if err != nil {
		h.logger.Error("finalize manifest", slog.Any("error", err), slog.String("session", session))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reports, err := h.service.Reports(r.Context(), q.Get("date_from"), q.Get("date_to"))
	if err != nil {
		h.logger.Error("list reports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) manifestDetail(w http.ResponseWriter, r *http.Request) {
	manifestNumber := chi.URLParam(r, "manifestNumber")
	detail, err := h.service.Manifest(r.Context(), manifestNumber)
	if err != nil {
		h.logger.Error("manifest detail", slog.Any("error", err), slog.String("manifest_number", manifestNumber))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) listDispatched(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	filter := DispatchedFilter{
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
		Search:   q.Get("q"),
		SortBy:   q.Get("sort_by"),
		SortDesc: q.Get("sort_dir") == "desc",
		Limit:    limit,
		Offset:   offset,
	}

	rows, total, err := h.service.Dispatched(r.Context(), filter)
	if err != nil {
		h.logger.Error("list dispatched", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows, "total": total})
}

func (h *Handler) listOutstanding(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Outstanding(r.Context())
	if err != nil {
		h.logger.Error("list outstanding", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": rows})
}
