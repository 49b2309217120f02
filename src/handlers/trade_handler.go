package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/username/markfolio/backend/src/config"
	"github.com/username/markfolio/backend/src/logger"
	"github.com/username/markfolio/backend/src/models"
	"github.com/username/markfolio/backend/src/services"
	"github.com/username/markfolio/backend/src/utils"
)

type TradeHandler struct {
	service services.DashboardService
}

func NewTradeHandler(service services.DashboardService) *TradeHandler {
	return &TradeHandler{service: service}
}

// HandleUploadTrades ingests a trade CSV, delivered either as a multipart
// "file" field or as the raw request body.
func (h *TradeHandler) HandleUploadTrades(w http.ResponseWriter, r *http.Request) {
	csvText, ok := readCSVBody(w, r)
	if !ok {
		return
	}

	result, err := h.service.UploadTrades(r.Context(), csvText)
	if err != nil {
		if errors.Is(err, services.ErrEmptyCSV) {
			utils.SendJSONError(w, "CSV file is empty or malformed (need a header and at least one data row)", http.StatusBadRequest)
			return
		}
		utils.SendJSONError(w, fmt.Sprintf("Error processing trade upload: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

// HandleCreateTrade accepts one trade record as JSON. Validation failures
// come back as a 400 with the per-field error list.
func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	trade, rowErrs, err := h.service.CreateTrade(r.Context(), rawRowFromJSON(body))
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error creating trade: %v", err), http.StatusInternalServerError)
		return
	}
	if len(rowErrs) > 0 {
		utils.SendJSON(w, map[string]interface{}{"errors": rowErrs}, http.StatusBadRequest)
		return
	}
	utils.SendJSON(w, trade, http.StatusCreated)
}

func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.TradeFilter{
		FromDate:   q.Get("fromDate"),
		ToDate:     q.Get("toDate"),
		Instrument: q.Get("instrument"),
		Trader:     q.Get("trader"),
	}
	page := parseIntParam(q.Get("page"), 1)
	limit := parseIntParam(q.Get("limit"), services.DefaultPageLimit)

	result, err := h.service.ListTrades(r.Context(), filter, page, limit)
	if err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error listing trades: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, result, http.StatusOK)
}

func (h *TradeHandler) HandleClearTrades(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearTrades(r.Context()); err != nil {
		utils.SendJSONError(w, fmt.Sprintf("Error clearing trades: %v", err), http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, map[string]string{"message": "trade collection cleared"}, http.StatusOK)
}

// readCSVBody extracts CSV text from a multipart "file" field or the raw
// request body, enforcing the configured size limit. Writes its own error
// response and returns ok=false on failure.
func readCSVBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	maxBytes := config.Cfg.MaxUploadSizeBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", maxBytes)
			utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %s)", humanize.Bytes(uint64(maxBytes))), http.StatusBadRequest)
			return "", false
		}
		file, fileHeader, err := r.FormFile("file")
		if err != nil {
			utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
			return "", false
		}
		defer file.Close()

		if fileHeader.Size > maxBytes {
			utils.SendJSONError(w, fmt.Sprintf("File too large, max %s", humanize.Bytes(uint64(maxBytes))), http.StatusBadRequest)
			return "", false
		}
		logger.L.Info("Processing uploaded file",
			"filename", fileHeader.Filename,
			"size", humanize.Bytes(uint64(fileHeader.Size)))

		data, err := io.ReadAll(file)
		if err != nil {
			utils.SendJSONError(w, "Failed to read uploaded file", http.StatusBadRequest)
			return "", false
		}
		return string(data), true
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		utils.SendJSONError(w, "Failed to read request body", http.StatusBadRequest)
		return "", false
	}
	if strings.TrimSpace(string(data)) == "" {
		utils.SendJSONError(w, "No file or CSV body provided", http.StatusBadRequest)
		return "", false
	}
	return string(data), true
}

// rawRowFromJSON flattens a decoded JSON object into the string row shape
// the validator consumes. Null fields stay absent.
func rawRowFromJSON(body map[string]interface{}) models.RawRow {
	row := make(models.RawRow, len(body))
	for key, value := range body {
		switch v := value.(type) {
		case string:
			row[key] = v
		case float64:
			row[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			row[key] = strconv.FormatBool(v)
		case nil:
			// absent
		default:
			row[key] = fmt.Sprint(v)
		}
	}
	return row
}

func parseIntParam(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}
