package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/api/response"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/apperrors"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/model"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/service"
	"github.com/ndewijer/Energy-Portfolio-Cashflow-Backend/internal/validation"
)

// PriceHandler handles merchant price curve requests
type PriceHandler struct {
	priceService *service.PriceCurveService
	now          func() time.Time
}

// NewPriceHandler creates a new PriceHandler
func NewPriceHandler(priceService *service.PriceCurveService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
		now:          time.Now,
	}
}

// PriceDataResponse is the body of the price data endpoint.
type PriceDataResponse struct {
	Region    string                `json:"region"`
	AssetType string                `json:"assetType"`
	Year      int                   `json:"year"`
	Prices    []model.MerchantPrice `json:"prices"`
}

// PriceData handles GET requests for the stored monthly prices of a region
// and asset type. The year defaults to the current year.
//
// Endpoint: GET /api/prices/{region}/{assetType}?year=2030
// Response: 200 OK with PriceDataResponse
// Error: 400 Bad Request if a parameter is invalid
func (h *PriceHandler) PriceData(w http.ResponseWriter, r *http.Request) {
	region := strings.ToUpper(chi.URLParam(r, "region"))
	assetType := strings.ToLower(chi.URLParam(r, "assetType"))

	year := h.now().Year()
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid year", err.Error())
			return
		}
		year = y
	}
	if err := validation.ValidatePriceQuery(region, assetType, year); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	prices, err := h.priceService.GetPriceData(region, model.AssetType(assetType), year)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve prices", err.Error())
		return
	}
	if prices == nil {
		prices = []model.MerchantPrice{}
	}
	response.RespondJSON(w, http.StatusOK, PriceDataResponse{
		Region:    region,
		AssetType: assetType,
		Year:      year,
		Prices:    prices,
	})
}

// ImportPrices handles CSV uploads of monthly merchant prices.
//
// Endpoint: POST /api/prices/import
// Request Body: CSV (profile,type,region,time,price), raw or as multipart "file"
// Response: 200 OK with PriceImportResult
// Error: 400 Bad Request if the file or its header is invalid
func (h *PriceHandler) ImportPrices(w http.ResponseWriter, r *http.Request) {
	h.importCSV(w, r, h.priceService.ImportPrices)
}

// ImportSpreads handles CSV uploads of storage spreads.
//
// Endpoint: POST /api/prices/spreads/import
// Request Body: CSV (region,year,duration,spread), raw or as multipart "file"
// Response: 200 OK with PriceImportResult
// Error: 400 Bad Request if the file or its header is invalid
func (h *PriceHandler) ImportSpreads(w http.ResponseWriter, r *http.Request) {
	h.importCSV(w, r, h.priceService.ImportSpreads)
}

func (h *PriceHandler) importCSV(w http.ResponseWriter, r *http.Request, importFn func(r io.Reader) (model.PriceImportResult, error)) {
	file, err := uploadedFile(r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}
	defer file.Close()

	result, err := importFn(file)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCSVHeaders) {
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidCSVHeaders.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to import prices", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, result)
}
