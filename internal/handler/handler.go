package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"decor-store/internal/model"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status code and writes {message, field?, correlationId?}.
// Errors that are not domain errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	resp := model.ErrorResponse{CorrelationID: chimw.GetReqID(r.Context())}

	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().
			Err(err).
			Str("path", r.URL.Path).
			Str("request_id", resp.CorrelationID).
			Msg("request failed")
		resp.Message = "Internal Server Error"
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	status := statusFor(de.Kind)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Message = "Internal Server Error"
	} else {
		logger.Debug().Str("code", de.Code).Str("field", de.Field).Int("status", status).Msg(de.Message)
		resp.Message = de.Message
		resp.Field = de.Field
	}
	writeJSON(w, status, resp)
}

func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into dst, reporting malformed input as a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("", "Request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return model.NewValidationError(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field))
		}
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}
