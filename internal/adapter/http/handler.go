package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"crypto-price-tracker/internal/domain/model"
	"crypto-price-tracker/internal/domain/ports"
	"crypto-price-tracker/internal/metrics"
	"crypto-price-tracker/internal/service"
	"crypto-price-tracker/pkg/logger"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type selectionRequest struct {
	Currency string   `json:"currency"`
	Assets   []string `json:"assets"`
}

type periodRequest struct {
	Period string `json:"period"`
}

type Handler struct {
	tracker ports.PriceTracker
	query   ports.QueryService
	store   ports.ConfigStore
	log     *logger.Logger
	metrics *metrics.Metrics
}

func NewHandler(tracker ports.PriceTracker, query ports.QueryService, store ports.ConfigStore, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		tracker: tracker,
		query:   query,
		store:   store,
		log:     log,
		metrics: metrics,
	}
}

func (h *Handler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, h.tracker.State())
}

// UpdateSelectionHandler switches the tracked currency and assets, keeping the
// stored poll config.
func (h *Handler) UpdateSelectionHandler(w http.ResponseWriter, r *http.Request) {
	var request selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	currency := model.NormalizeCurrency(request.Currency)
	if !currency.IsSupported() {
		h.handleServiceError(w, service.ErrInvalidCurrency)
		return
	}
	assets := make([]model.AssetID, len(request.Assets))
	for i, id := range request.Assets {
		assets[i] = model.AssetID(id)
	}

	cfg, err := h.store.Load(r.Context())
	if err != nil {
		h.log.Warn("Falling back to default poll config", "error", err)
	}

	if err := h.tracker.Update(currency, assets, cfg); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, h.tracker.State())
}

func (h *Handler) ChangePeriodHandler(w http.ResponseWriter, r *http.Request) {
	var request periodRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Period == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required field: period")
		return
	}

	h.tracker.ChangePeriod(model.LookbackPeriod(request.Period))
	h.sendSuccessResponse(w, h.tracker.State())
}

func (h *Handler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	h.tracker.Refresh()
	h.sendSuccessResponse(w, h.tracker.State())
}

func (h *Handler) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Load(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, cfg)
}

// UpdateConfigHandler merges a partial poll config over the stored one, saves
// it and re-applies the tracker with the result.
func (h *Handler) UpdateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var patch model.PollConfigPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.sendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	current, err := h.store.Load(ctx)
	if err != nil {
		h.log.Warn("Stored poll config unreadable, patching defaults", "error", err)
	}

	cfg := current.Apply(patch)
	if err := h.store.Save(ctx, cfg); err != nil {
		h.handleServiceError(w, err)
		return
	}

	if err := h.tracker.ApplyPollConfig(cfg); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, cfg)
}

func (h *Handler) GetPricesHandler(w http.ResponseWriter, r *http.Request) {
	currency := model.Currency(r.URL.Query().Get("currency"))
	assets := model.ParseAssetIDs(r.URL.Query().Get("assets"))

	if currency == "" || len(assets) == 0 {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: currency and assets")
		return
	}

	prices, err := h.query.GetSnapshot(r.Context(), currency, assets)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, prices)
}

func (h *Handler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	currency := model.Currency(r.URL.Query().Get("currency"))
	assets := model.ParseAssetIDs(r.URL.Query().Get("assets"))
	period := model.LookbackPeriod(r.URL.Query().Get("period"))

	if currency == "" || len(assets) == 0 {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameters: currency and assets")
		return
	}
	if period == "" {
		period = model.DefaultLookback
	}

	series, err := h.query.GetSeries(r.Context(), currency, assets, period)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.sendSuccessResponse(w, series)
}

func (h *Handler) GetAssetsHandler(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, model.SupportedAssets)
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidCurrency):
		statusCode = http.StatusBadRequest
		errorMessage = "invalid currency"
	case errors.Is(err, service.ErrNoAssets):
		statusCode = http.StatusBadRequest
		errorMessage = "at least one asset is required"
	case errors.Is(err, model.ErrInvalidPollConfig):
		statusCode = http.StatusBadRequest
		errorMessage = "refreshIntervalMs must be positive"
	case errors.Is(err, service.ErrExternalAPIFailure):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "external API failure"
	case errors.Is(err, service.ErrTrackerClosed):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "tracker is shutting down"
	}

	h.log.Error("Service error", "error", err, "status_code", statusCode)
	h.sendErrorResponse(w, statusCode, errorMessage)
}
