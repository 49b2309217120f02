package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/username/markfolio/backend/src/services"
	"github.com/username/markfolio/backend/src/utils"
)

type MarketDataHandler struct {
	service services.DashboardService
}

func NewMarketDataHandler(service services.DashboardService) *MarketDataHandler {
	return &MarketDataHandler{service: service}
}

// HandleUploadPrices replaces the whole market-price collection with the
// parsed upload.
func (h *MarketDataHandler) HandleUploadPrices(w http.ResponseWriter, r *http.Request) {
	csvText, ok := readCSVBody(w, r)
	if !ok {
		return
	}

	result, err := h.service.UploadMarketPrices(r.Context(), csvText)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCSV) {
			utils.SendJSONError(w, "CSV file is empty or malformed (need a header and at least one data row)", http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("Error processing price upload: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *MarketDataHandler) HandleListPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := h.service.ListMarketPrices(r.Context())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error listing market prices: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, prices, http.StatusOK)
}

func (h *MarketDataHandler) HandleClearPrices(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearMarketPrices(r.Context()); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error clearing market prices: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "market price collection cleared"}, http.StatusOK)
}
