package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dom/twitter-clone/internal/api/middleware"
	"github.com/dom/twitter-clone/internal/domain"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Detail string              `json:"detail"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

// writeError maps domain errors to responses. Anything unrecognised is
// logged under op and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: domain.ErrValidation.Error(), Fields: verr.Fields})
	case errors.Is(err, domain.ErrSignupFailed):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		middleware.Unauthorized(w)
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrTweetNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"op", op,
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"error", err,
		)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}
