package handlers

import (
	"fmt"
	"net/http"

	"github.com/username/markfolio/backend/src/logger"
	"github.com/username/markfolio/backend/src/models"
	"github.com/username/markfolio/backend/src/services"
	"github.com/username/markfolio/backend/src/utils"
)

type DashboardHandler struct {
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) HandleGetPnL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PnLFilter{
		FromDate:   q.Get("fromDate"),
		ToDate:     q.Get("toDate"),
		Instrument: q.Get("instrument"),
	}

	result, err := h.service.ComputePnL(r.Context(), filter)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing PnL: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

// HandleGetStats serves the headline figures with an ETag so the dashboard
// can poll cheaply.
func (h *DashboardHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error computing stats: %v", err), http.StatusInternalServerError)
		return
	}

	etag, err := utils.GenerateETag(stats)
	if err != nil {
		logger.L.Error("Failed to generate stats ETag", "error", err)
	} else {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}
	utils.SendJSON(w, stats, http.StatusOK)
}

func (h *DashboardHandler) HandleGetInstruments(w http.ResponseWriter, r *http.Request) {
	instruments, err := h.service.ListInstruments(r.Context())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error listing instruments: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, instruments, http.StatusOK)
}

func (h *DashboardHandler) HandleGetTraders(w http.ResponseWriter, r *http.Request) {
	traders, err := h.service.ListTraders(r.Context())
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error listing traders: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, traders, http.StatusOK)
}

func (h *DashboardHandler) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearAll(r.Context()); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error clearing data: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "all collections cleared"}, http.StatusOK)
}
