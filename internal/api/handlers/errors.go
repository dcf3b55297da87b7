package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/response"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
)

// AssetFailure describes one asset excluded from a build.
type AssetFailure struct {
	AssetID           string `json:"assetId"`
	AssetName         string `json:"assetName,omitempty"`
	Field             string `json:"field,omitempty"`
	Raw               any    `json:"raw,omitempty"`
	Reason            string `json:"reason"`
	ConstructionStart string `json:"constructionStart,omitempty"`
	OperationsStart   string `json:"operationsStart,omitempty"`
}

func assetFailures(e *apperrors.EmptyPortfolioError) []AssetFailure {
	out := make([]AssetFailure, len(e.Failures))
	for i, f := range e.Failures {
		af := AssetFailure{
			AssetID:   f.AssetID,
			AssetName: f.AssetName,
			Field:     f.Field,
			Raw:       f.Raw,
			Reason:    f.Err.Error(),
		}
		if !f.ConstructionStart.IsZero() {
			af.ConstructionStart = f.ConstructionStart.Format(time.DateOnly)
		}
		if !f.OperationsStart.IsZero() {
			af.OperationsStart = f.OperationsStart.Format(time.DateOnly)
		}
		out[i] = af
	}
	return out
}

// respondBuildError maps a build or lookup error onto a status code.
func respondBuildError(w http.ResponseWriter, err error) {
	var empty *apperrors.EmptyPortfolioError
	switch {
	case errors.As(err, &empty):
		response.RespondError(w, http.StatusUnprocessableEntity, apperrors.ErrEmptyPortfolio.Error(), assetFailures(empty))
	case errors.Is(err, apperrors.ErrPortfolioNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrCalculationNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrCalculationNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrInvalidGranularity):
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidGranularity.Error(), err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		response.RespondError(w, http.StatusServiceUnavailable, "calculation cancelled", err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, "failed to run calculation", err.Error())
	}
}
