package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"balanced.io/internal/domain/entity"
)

// ErrorCode represents unified API error codes
type ErrorCode string

const (
	ErrorCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrorCodeAccountNotFound     ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrorCodeInvalidArgument     ErrorCode = "INVALID_ARGUMENT"
	ErrorCodeUnauthorized        ErrorCode = "UNAUTHORIZED"
	ErrorCodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"
	ErrorCodeInternalError       ErrorCode = "INTERNAL_ERROR"
)

// ErrMalformedBody is returned when a request body is not valid JSON for its route.
var ErrMalformedBody = errors.New("malformed request body")

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MapErrorToHTTP maps errors to HTTP status codes and error responses
func MapErrorToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusOK, ErrorResponse{}
	}

	var insufficient *entity.InsufficientBalanceError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusNotAcceptable, ErrorResponse{
			Code:    string(ErrorCodeInsufficientBalance),
			Message: err.Error(),
		}
	case errors.Is(err, entity.ErrInsufficientBalance):
		return http.StatusNotAcceptable, ErrorResponse{
			Code:    string(ErrorCodeInsufficientBalance),
			Message: "insufficient balance",
		}
	case errors.Is(err, entity.ErrAccountNotFound):
		return http.StatusNotFound, ErrorResponse{
			Code:    string(ErrorCodeAccountNotFound),
			Message: err.Error(),
		}
	case entity.IsValidation(err), errors.Is(err, entity.ErrBalanceOverflow), errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest, ErrorResponse{
			Code:    string(ErrorCodeInvalidArgument),
			Message: err.Error(),
		}
	case errors.Is(err, entity.ErrStoreUnavailable):
		// The wrapped driver error stays in the logs.
		return http.StatusServiceUnavailable, ErrorResponse{
			Code:    string(ErrorCodeStoreUnavailable),
			Message: entity.ErrStoreUnavailable.Error(),
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Code:    string(ErrorCodeInternalError),
			Message: "internal error",
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, resp := MapErrorToHTTP(err)
	_ = writeJSON(w, status, resp)
}
