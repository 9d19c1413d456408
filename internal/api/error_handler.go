package api

import (
	stderrors "errors"
	"net/http"

	"github.com/vytor/quizdrill/internal/errors"
	"github.com/vytor/quizdrill/internal/logger"
)

var statusByCode = map[string]int{
	errors.ErrCodeValidation:   http.StatusBadRequest,
	errors.ErrCodeNotFound:     http.StatusNotFound,
	errors.ErrCodeResume:       http.StatusNotFound,
	errors.ErrCodeInvalidState: http.StatusConflict,
	errors.ErrCodeEmptyRun:     http.StatusUnprocessableEntity,
	errors.ErrCodePersist:      http.StatusServiceUnavailable,
	errors.ErrCodeLoad:         http.StatusInternalServerError,
	errors.ErrCodeInternal:     http.StatusInternalServerError,
}

func statusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalError(err)
	}
	status := statusFor(appErr.Code)

	if status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	writeJSON(w, r, status, errorBody(appErr.Code, appErr.Message))
}

func errorBody(code, message string) map[string]any {
	return map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
