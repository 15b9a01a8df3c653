package intake

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cartage-systems/cartage/internal/platform/httpx"
)

// Handler manages document ingestion endpoints.
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

// MountRoutes registers intake routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/documents", h.ingestDocument)
	r.Post("/manual", h.ingestManual)
}

// ingestDocument accepts one extracted document and runs it through
// classification and reconciliation. Duplicates are acknowledged, not
// rejected, so resubmitting a batch is safe.
func (h *Handler) ingestDocument(w http.ResponseWriter, r *http.Request) {
	var fields CandidateFields
	if err := httpx.DecodeJSON(r, &fields); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(fields); err != nil {
		httpx.RespondError(w, err)
		return
	}

	outcome, err := h.service.Ingest(r.Context(), fields)
	if err != nil {
		h.logger.Error("ingest document", slog.Any("error", err), slog.String("source_name", fields.SourceName))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if outcome.Duplicate {
		status = http.StatusOK
	}
	httpx.JSON(w, status, outcome)
}

func (h *Handler) ingestManual(w http.ResponseWriter, r *http.Request) {
	var entry ManualEntry
	if err := httpx.DecodeJSON(r, &entry); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(entry); err != nil {
		httpx.RespondError(w, err)
		return
	}

	outcome, err := h.service.IngestManual(r.Context(), entry)
	if err != nil {
		h.logger.Error("ingest manual entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, outcome)
}
