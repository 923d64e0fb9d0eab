package controllers

import (
	"log/slog"
	"net/http"

	"blueelephant/internal/delivery/http/helpers"
	"blueelephant/internal/domain"
)

// MutationSuccessResponse is the success envelope for store mutations.
type MutationSuccessResponse struct {
	Data  domain.Result     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// writeResult maps a store Result onto the response. Failures keep the
// store's message, which already carries the backend message and detail.
func writeResult(w http.ResponseWriter, r *http.Request, logger *slog.Logger, res domain.Result, successStatus int) {
	if res.Success {
		helpers.WriteJSONSuccess(w, successStatus, res)
		return
	}
	status, code := resultStatus(res.Kind)
	logger.InfoContext(r.Context(), "mutation not applied", "path", r.URL.Path, "method", r.Method, "status", status, "err", res.Error)
	helpers.WriteJSONError(w, status, code, res.Error)
}

func resultStatus(kind domain.FailureKind) (int, string) {
	switch kind {
	case domain.FailureNotFound:
		return http.StatusNotFound, helpers.ErrCodeNotFound
	case domain.FailureConflict:
		return http.StatusConflict, helpers.ErrCodeConflict
	case domain.FailureInvalid:
		return http.StatusBadRequest, helpers.ErrCodeBadRequest
	}
	return http.StatusUnprocessableEntity, helpers.ErrCodeRejected
}

// isBoard reports whether the request's signed-in user may manage content.
func isBoard(u *domain.User) bool {
	return u != nil && u.Role.IsBoard()
}

func writeInternal(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}
