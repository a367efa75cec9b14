package handler

import (
	"net/http"
	"net/url"
	"strconv"

	"decor-store/internal/model"
	"decor-store/internal/service"
	"decor-store/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue HTTP requests.
type ProductHandler struct {
	service   service.ProductService
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, validator *validation.Validator, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.validator.Struct(filter); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// GetByID handles GET /api/products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, model.NewValidationError("id", "Invalid product ID"), h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func parseFilter(q url.Values) (model.ProductFilter, error) {
	filter := model.ProductFilter{
		Type:   q.Get("type"),
		Room:   q.Get("room"),
		Color:  q.Get("color"),
		Search: q.Get("search"),
	}

	var err error
	if filter.BestSeller, err = parseFlag(q, "bestSeller"); err != nil {
		return filter, err
	}
	if filter.NewArrival, err = parseFlag(q, "newArrival"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseFlag(q url.Values, name string) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, model.NewValidationError(name, name+" must be true or false")
	}
	return v, nil
}
