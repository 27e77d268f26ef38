package controllers

import (
	"net/http"

	"github.com/leadfolio/leadfolio-backend/api/middleware"
	"github.com/leadfolio/leadfolio-backend/api/responses"
	"github.com/leadfolio/leadfolio-backend/internal/buyers"
	pkgerrors "github.com/leadfolio/leadfolio-backend/pkg/errors"
	"github.com/leadfolio/leadfolio-backend/pkg/logger"
)

// Uploads beyond this are rejected before the CSV is parsed.
const importMaxUploadBytes = 5 << 20

// BuyersImport ingests a CSV upload. Valid rows land in one transaction;
// rejected rows come back with their line numbers.
func BuyersImport(svc buyers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buyer service unavailable"))
			return
		}

		// Anonymous uploads still parse; the service reports their rows as
		// unowned instead of inserting them.
		principal, _ := middleware.PrincipalFromContext(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, importMaxUploadBytes)
		if err := r.ParseMultipartForm(importMaxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload"))
			return
		}

		file, _, err := r.FormFile("csv")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "csv file is required"))
			return
		}
		defer file.Close()

		result, err := svc.Import(r.Context(), principal, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
