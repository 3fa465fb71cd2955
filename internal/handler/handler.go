package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"decor-shop/internal/auth"
	"decor-shop/internal/model"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

var statusByCode = map[string]int{
	model.ErrCodeInvalidJSON:            http.StatusBadRequest,
	model.ErrCodeInvalidParameter:       http.StatusBadRequest,
	model.ErrCodeEmptyCart:              http.StatusBadRequest,
	model.ErrCodeInsufficientStock:      http.StatusBadRequest,
	model.ErrCodeInvalidStatus:          http.StatusBadRequest,
	model.ErrCodeInvalidQuantity:        http.StatusBadRequest,
	model.ErrCodeInvalidProduct:         http.StatusBadRequest,
	model.ErrCodeInvalidShippingAddress: http.StatusBadRequest,
	model.ErrCodeInvalidPaymentMethod:   http.StatusBadRequest,
	model.ErrCodeOrderNotFound:          http.StatusNotFound,
	model.ErrCodeProductNotFound:        http.StatusNotFound,
	model.ErrCodeCartItemNotFound:       http.StatusNotFound,
	model.ErrCodeNotFound:               http.StatusNotFound,
	model.ErrCodeMethodNotAllowed:       http.StatusMethodNotAllowed,
	model.ErrCodeInvalidTransition:      http.StatusConflict,
	model.ErrCodeUnauthorised:           http.StatusUnauthorized,
	model.ErrCodeForbidden:              http.StatusForbidden,
}

// StatusFor returns the HTTP status for a domain error code.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError translates err into the JSON error envelope. Domain errors keep
// their code and message; anything else is logged and reported as an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	resp := model.ErrorResponse{CorrelationID: chimiddleware.GetReqID(r.Context())}

	domainErr, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", resp.CorrelationID).
			Msg("request failed")
		resp.Error = model.ErrCodeInternalError
		resp.Message = "An unexpected error occurred"
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	status := StatusFor(domainErr.Code)
	logger.Debug().
		Str("code", domainErr.Code).
		Int("status", status).
		Str("path", r.URL.Path).
		Msg("request rejected")

	resp.Error = domainErr.Code
	resp.Message = domainErr.Message
	resp.Details = domainErr.Details
	writeJSON(w, status, resp)
}

// decodeJSON reads a JSON request body into dest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dest); err != nil {
		return model.NewInvalidJSONError()
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewInvalidParameterError(name)
	}
	return v, nil
}

// pagination parses limit and offset query parameters.
func pagination(r *http.Request) (limit, offset int, err error) {
	if limit, err = queryInt(r, "limit"); err != nil {
		return 0, 0, err
	}
	if offset, err = queryInt(r, "offset"); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// identity returns the authenticated caller.
func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, model.ErrUnauthorised
	}
	return id, nil
}
