package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ariefcatur/go-shop-services/internal/orders"
	"github.com/ariefcatur/go-shop-services/internal/products"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorResponse{Error: errCode, Message: msg})
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		code    int
		errCode string
	)
	switch {
	case errors.Is(err, orders.ErrNotFound), errors.Is(err, products.ErrNotFound):
		code, errCode = http.StatusNotFound, "not_found"
	case errors.Is(err, orders.ErrValidation):
		code, errCode = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, orders.ErrLookupUnavailable):
		code, errCode = http.StatusBadGateway, "product_lookup_unavailable"
	case errors.Is(err, orders.ErrPublishFailed):
		code, errCode = http.StatusBadGateway, "publish_failed"
	case errors.Is(err, orders.ErrStoreUnavailable):
		code, errCode = http.StatusServiceUnavailable, "store_unavailable"
	default:
		code, errCode = http.StatusInternalServerError, "internal_error"
	}

	if code >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	}
	writeJSON(w, code, ErrorResponse{Error: errCode, Message: err.Error()})
}
