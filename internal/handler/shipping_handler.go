package handler

import (
	"net/http"

	"decor-store/internal/model"
	"decor-store/internal/shipping"
	"decor-store/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ShippingHandler serves the shipping reference table and cost quotes.
type ShippingHandler struct {
	estimator shipping.Estimator
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewShippingHandler creates a new shipping handler.
func NewShippingHandler(estimator shipping.Estimator, validator *validation.Validator, logger zerolog.Logger) *ShippingHandler {
	return &ShippingHandler{
		estimator: estimator,
		validator: validator,
		logger:    logger.With().Str("handler", "shipping").Logger(),
	}
}

// Provinces handles GET /api/shipping/provinces.
func (h *ShippingHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.estimator.Provinces())
}

// Cities handles GET /api/shipping/cities/{provinceId}.
func (h *ShippingHandler) Cities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.estimator.Cities(chi.URLParam(r, "provinceId")))
}

// Cost handles POST /api/shipping/cost.
func (h *ShippingHandler) Cost(w http.ResponseWriter, r *http.Request) {
	var req model.ShippingCostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	options := h.estimator.Quote(req.Origin, req.Destination, req.Weight, req.Courier)
	h.logger.Debug().
		Str("courier", req.Courier).
		Str("destination", req.Destination).
		Float64("weight", req.Weight).
		Int("services", len(options)).
		Msg("shipping quote")

	writeJSON(w, http.StatusOK, []model.CourierCosts{shipping.CourierCosts(req.Courier, options)})
}
