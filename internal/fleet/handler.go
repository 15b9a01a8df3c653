package fleet

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/cartage-systems/cartage/internal/platform/httpx"
)

// Handler manages fleet reference data endpoints.
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

// MountRoutes registers fleet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trucks", h.listTrucks)
	r.Post("/trucks", h.addTruck)
	r.Post("/trucks/{id}/retire", h.retireTruck)

	r.Get("/settings", h.listSettings)
	r.Post("/settings", h.addSetting)
	r.Delete("/settings/{id}", h.removeSetting)

	r.Get("/routes", h.listRoutes)
	r.Put("/routes", h.setRoute)
	r.Delete("/routes/{id}", h.removeRoute)
}

func (h *Handler) listTrucks(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Trucks(r.Context())
	if err != nil {
		h.logger.Error("list trucks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trucks": out})
}

func (h *Handler) addTruck(w http.ResponseWriter, r *http.Request) {
	var input TruckInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}

	truck, err := h.service.AddTruck(r.Context(), input)
	if err != nil {
		h.logger.Error("add truck", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, truck)
}

func (h *Handler) retireTruck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.RetireTruck(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"retired": true})
}

func (h *Handler) listSettings(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Settings(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("list settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"settings": out})
}

func (h *Handler) addSetting(w http.ResponseWriter, r *http.Request) {
	var input SettingInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}

	setting, err := h.service.AddSetting(r.Context(), input)
	if err != nil {
		h.logger.Error("add setting", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, setting)
}

func (h *Handler) removeSetting(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.RemoveSetting(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) listRoutes(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.CustomerRoutes(r.Context())
	if err != nil {
		h.logger.Error("list customer routes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"routes": out})
}

func (h *Handler) setRoute(w http.ResponseWriter, r *http.Request) {
	var input CustomerRouteInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.RespondError(w, err)
		return
	}

	route, err := h.service.SetCustomerRoute(r.Context(), input)
	if err != nil {
		h.logger.Error("set customer route", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *Handler) removeRoute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.service.RemoveCustomerRoute(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
