package port

import (
	"context"
	"net/http"
)

// RequestValidator authenticates signed mutation requests
type RequestValidator interface {
	ValidateRequest(ctx context.Context, r *http.Request, body []byte) error
}
