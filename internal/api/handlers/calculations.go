package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/response"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
)

// CalculationHandler serves stored calculations.
type CalculationHandler struct {
	calculationService *service.CalculationService
}

// NewCalculationHandler creates a new CalculationHandler
func NewCalculationHandler(calculationService *service.CalculationService) *CalculationHandler {
	return &CalculationHandler{
		calculationService: calculationService,
	}
}

// GetCalculation handles GET requests for a stored calculation.
//
// Endpoint: GET /api/calculation/{uuid}
// Response: 200 OK with Calculation
// Error: 404 Not Found if the calculation does not exist or was purged
func (h *CalculationHandler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	calculationID := chi.URLParam(r, "uuid")

	calc, err := h.calculationService.GetCalculation(calculationID)
	if err != nil {
		respondBuildError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, calc)
}

// Export handles GET requests downloading a calculation as CSV.
//
// Endpoint: GET /api/export/{token}
// Response: 200 OK with text/csv attachment
// Error: 403 Forbidden if the token is invalid or expired
// Error: 404 Not Found if the calculation was purged
func (h *CalculationHandler) Export(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	// Buffered so a failure can still become a JSON error.
	var buf bytes.Buffer
	id, err := h.calculationService.ExportCalculation(token, &buf)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidExportToken) {
			response.RespondError(w, http.StatusForbidden, apperrors.ErrInvalidExportToken.Error(), "")
			return
		}
		respondBuildError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"portfolio_cashflow_%s.csv\"", id))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
