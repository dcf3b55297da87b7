package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/request"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/response"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/validation"
)

// PortfolioHandler handles portfolio-related HTTP requests
type PortfolioHandler struct {
	portfolioService   *service.PortfolioService
	calculationService *service.CalculationService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *service.PortfolioService, calculationService *service.CalculationService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService:   portfolioService,
		calculationService: calculationService,
	}
}

// Portfolios handles GET requests listing every stored portfolio.
//
// Endpoint: GET /api/portfolio
// Response: 200 OK with array of PortfolioListing
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) Portfolios(w http.ResponseWriter, _ *http.Request) {
	portfolios, err := h.portfolioService.GetAllPortfolios()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve portfolios", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, portfolios)
}

// GetPortfolio handles GET requests for one portfolio document.
//
// Endpoint: GET /api/portfolio/{uuid}
// Response: 200 OK with Portfolio
// Error: 404 Not Found if the portfolio does not exist
// Error: 500 Internal Server Error if retrieval fails
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	portfolio, err := h.portfolioService.GetPortfolio(portfolioID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPortfolioNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve portfolio", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, portfolio)
}

// SavePortfolio handles PUT requests creating or replacing a portfolio document.
//
// Endpoint: PUT /api/portfolio/{uuid}
// Request Body: SavePortfolioRequest (name, assets, constants)
// Response: 200 OK with the stored Portfolio
// Error: 400 Bad Request if the body is invalid
// Error: 500 Internal Server Error if storing fails
func (h *PortfolioHandler) SavePortfolio(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.SavePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateSavePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	portfolio := model.Portfolio{
		ID:        portfolioID,
		Name:      req.Name,
		UserID:    req.UserID,
		Assets:    req.Assets,
		Constants: req.Constants,
	}
	if err := h.portfolioService.SavePortfolio(&portfolio); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to save portfolio", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, portfolio)
}

// ValidatePortfolio handles POST requests that check asset timelines without
// storing or building anything.
//
// Endpoint: POST /api/portfolio/validate
// Request Body: ValidatePortfolioRequest (assets, constants, periods)
// Response: 200 OK with Diagnostics
// Error: 400 Bad Request if the body is invalid
func (h *PortfolioHandler) ValidatePortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ValidatePortfolioRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := validation.ValidateValidatePortfolio(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	diag := h.portfolioService.ValidatePortfolio(model.Portfolio{
		Assets:    req.Assets,
		Constants: req.Constants,
	}, req.Periods)
	response.RespondJSON(w, http.StatusOK, diag)
}

// TimeSeries handles POST requests that build, store and return a portfolio
// cash-flow time series.
//
// Endpoint: POST /api/portfolio/{uuid}/timeseries
// Request Body: TimeSeriesRequest (intervalType, startYear, periods, scenario, escalationSettings)
// Response: 201 Created with CalculationResponse
// Error: 400 Bad Request if the options are invalid
// Error: 404 Not Found if the portfolio does not exist
// Error: 422 Unprocessable Entity if no asset has a valid timeline
// Error: 500 Internal Server Error if the build or storing fails
func (h *PortfolioHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	portfolioID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.TimeSeriesRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	cfg, err := validation.ValidateTimeSeries(req)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.calculationService.RunCalculation(r.Context(), portfolioID, cfg)
	if err != nil {
		respondBuildError(w, err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, result)
}
