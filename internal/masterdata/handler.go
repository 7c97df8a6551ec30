package masterdata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spaceworks-id/spaceworks/internal/platform/httpx"
)

// Handler serves the master data JSON API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs the master data handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers endpoints for all four reference entities.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.handleListServices)
		r.Post("/", h.handleCreateService)
		r.Put("/{id}", h.handleUpdateService)
		r.Delete("/{id}", h.handleDeleteService)
	})
	r.Route("/cities", func(r chi.Router) {
		r.Get("/", h.handleListCities)
		r.Post("/", h.handleCreateCity)
		r.Put("/{id}", h.handleUpdateCity)
		r.Delete("/{id}", h.handleDeleteCity)
	})
	r.Route("/amenities", func(r chi.Router) {
		r.Get("/", h.handleListAmenities)
		r.Post("/", h.handleCreateAmenity)
		r.Delete("/{id}", h.handleDeleteAmenity)
	})
	r.Route("/promos", func(r chi.Router) {
		r.Get("/", h.handleListPromos)
		r.Post("/", h.handleCreatePromo)
		r.Delete("/{id}", h.handleDeletePromo)
	})
}

type serviceRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type cityRequest struct {
	Name     string `json:"name" validate:"required"`
	Province string `json:"province"`
}

type amenityRequest struct {
	Name string `json:"name" validate:"required"`
	Icon string `json:"icon"`
}

type promoRequest struct {
	Code            string `json:"code" validate:"required"`
	Description     string `json:"description"`
	DiscountPercent string `json:"discountPercent" validate:"required"`
	ValidUntil      string `json:"validUntil" validate:"required"`
}

func (h *Handler) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, "list services", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"services": emptyIfNil(services)})
}

func (h *Handler) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !h.decode(w, r, &req) {
		return
	}
	svc, err := h.service.CreateService(r.Context(), WorkspaceService{Name: req.Name, Description: req.Description})
	if err != nil {
		h.respondError(w, "create service", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, svc)
}

func (h *Handler) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req serviceRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.service.UpdateService(r.Context(), WorkspaceService{ID: id, Name: req.Name, Description: req.Description})
	if err != nil {
		h.respondError(w, "update service", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r, "delete service", h.service.DeleteService)
}

func (h *Handler) handleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, "list cities", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"cities": emptyIfNil(cities)})
}

func (h *Handler) handleCreateCity(w http.ResponseWriter, r *http.Request) {
	var req cityRequest
	if !h.decode(w, r, &req) {
		return
	}
	city, err := h.service.CreateCity(r.Context(), City{Name: req.Name, Province: req.Province})
	if err != nil {
		h.respondError(w, "create city", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, city)
}

func (h *Handler) handleUpdateCity(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req cityRequest
	if !h.decode(w, r, &req) {
		return
	}
	err := h.service.UpdateCity(r.Context(), City{ID: id, Name: req.Name, Province: req.Province})
	if err != nil {
		h.respondError(w, "update city", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleDeleteCity(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r, "delete city", h.service.DeleteCity)
}

func (h *Handler) handleListAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := h.service.ListAmenities(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, "list amenities", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"amenities": emptyIfNil(amenities)})
}

func (h *Handler) handleCreateAmenity(w http.ResponseWriter, r *http.Request) {
	var req amenityRequest
	if !h.decode(w, r, &req) {
		return
	}
	amenity, err := h.service.CreateAmenity(r.Context(), Amenity{Name: req.Name, Icon: req.Icon})
	if err != nil {
		h.respondError(w, "create amenity", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, amenity)
}

func (h *Handler) handleDeleteAmenity(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r, "delete amenity", h.service.DeleteAmenity)
}

func (h *Handler) handleListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.service.ListPromos(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, "list promos", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"promos": emptyIfNil(promos)})
}

func (h *Handler) handleCreatePromo(w http.ResponseWriter, r *http.Request) {
	var req promoRequest
	if !h.decode(w, r, &req) {
		return
	}
	percent, err := decimal.NewFromString(req.DiscountPercent)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "discountPercent must be a number")
		return
	}
	validUntil, err := time.Parse("2006-01-02", req.ValidUntil)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validUntil must be YYYY-MM-DD")
		return
	}
	promo, err := h.service.CreatePromo(r.Context(), Promo{
		Code:            req.Code,
		Description:     req.Description,
		DiscountPercent: percent,
		ValidUntil:      validUntil,
	})
	if err != nil {
		h.respondError(w, "create promo", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, promo)
}

func (h *Handler) handleDeletePromo(w http.ResponseWriter, r *http.Request) {
	h.handleDelete(w, r, "delete promo", h.service.DeletePromo)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request, op string, fn func(ctx context.Context, id uuid.UUID) error) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := fn(r.Context(), id); err != nil {
		h.respondError(w, op, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "entity not found")
	case errors.Is(err, ErrInvalidInput):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func listFilters(r *http.Request) ListFilters {
	filters := ListFilters{Search: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			filters.Page = page
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			filters.Limit = limit
		}
	}
	return filters
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
