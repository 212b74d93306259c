package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/contracts"
	"github.com/viralforge/mesh/services/integrations/M63-order-extraction-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, contracts.SuccessResponse{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, statusCode int, code, message, requestID string) {
	writeJSON(w, statusCode, contracts.ErrorResponse{
		Status: "error",
		Error:  contracts.ErrorPayload{Code: code, Message: message, RequestID: requestID},
	})
}

func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType, "unsupported_media_type"
	case errors.Is(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrNoMessages),
		errors.Is(err, domain.ErrMalformedMessage):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
