package server

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/buyers"
	"github.com/vipul69-eng/leadbook/pkg/errs"
)

// RespondWithJSON write a JSON payload to the response, and sets the provided
// status code.
func RespondWithJSON(statusCode int, w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("could not write json response")
	}
}

func respondError(statusCode int, w http.ResponseWriter, message string) {
	RespondWithJSON(statusCode, w, map[string]interface{}{
		"code":    statusCode,
		"message": message,
	})
}

// respondServiceError translates domain errors into status codes. Unmapped
// errors are logged and reported as a plain 500 without detail.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *buyers.ValidationError
	if errors.As(err, &validationErr) {
		RespondWithJSON(http.StatusBadRequest, w, map[string]interface{}{
			"code":  http.StatusBadRequest,
			"error": validationErr.Fields,
		})
		return
	}
	var authValidationErr *auth.ValidationError
	if errors.As(err, &authValidationErr) {
		RespondWithJSON(http.StatusBadRequest, w, map[string]interface{}{
			"code":  http.StatusBadRequest,
			"error": authValidationErr.Fields,
		})
		return
	}
	var badRequestErr *buyers.BadRequestError
	if errors.As(err, &badRequestErr) {
		respondError(http.StatusBadRequest, w, badRequestErr.Message)
		return
	}

	switch {
	case errors.Is(err, errs.ErrNotFound):
		respondError(http.StatusNotFound, w, "not found")
	case errors.Is(err, errs.ErrUnauthorized):
		respondError(http.StatusUnauthorized, w, "unauthorized")
	case errors.Is(err, errs.ErrForbidden):
		respondError(http.StatusForbidden, w, "forbidden")
	case errors.Is(err, errs.ErrConflict):
		respondError(http.StatusConflict, w, "record changed, please refresh")
	case errors.Is(err, errs.ErrAlreadyExists):
		respondError(http.StatusConflict, w, "already exists")
	case errors.Is(err, errs.ErrRateLimited):
		respondError(http.StatusTooManyRequests, w, "rate limit exceeded")
	default:
		log.WithError(err).Error("request failed")
		respondError(http.StatusInternalServerError, w, "internal error")
	}
}
