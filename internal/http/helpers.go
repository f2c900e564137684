package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"taxiledger/internal/export"
	"taxiledger/internal/ledger"
	"taxiledger/internal/log"
	"taxiledger/internal/services"
)

// writeError maps service errors to status codes. Unexpected errors are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		UnprocessableEntityError(err.Error()).Write(w)
	case errors.Is(err, ledger.ErrNotFound):
		NotFoundError("not found").Write(w)
	case errors.Is(err, errBadRequest), errors.Is(err, export.ErrMalformedCSV):
		BadRequestError(err.Error()).Write(w)
	default:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
				WithError(err).
				ToSlice()...)
		InternalServerError("internal error").Write(w)
	}
}

// attachment builds a Content-Disposition value for a download.
func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", strings.ReplaceAll(name, `"`, ""))
}
