package controllers

import (
	"net/http"

	"github.com/leadfolio/leadfolio-backend/api/responses"
	"github.com/leadfolio/leadfolio-backend/internal/buyers"
	pkgerrors "github.com/leadfolio/leadfolio-backend/pkg/errors"
	"github.com/leadfolio/leadfolio-backend/pkg/logger"
)

// BuyersExport streams the full filtered buyer list as a CSV download.
// The export honors the same filters as the list endpoint but never
// paginates.
func BuyersExport(svc buyers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buyer service unavailable"))
			return
		}

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename=buyers.csv`)

		if err := svc.Export(r.Context(), buyerFilters(r), w); err != nil {
			// Headers may already be out the door; log instead of
			// writing a JSON error into a half-sent CSV.
			if logg != nil {
				logg.Error(r.Context(), "buyers.export.failed", err)
			}
		}
	}
}
