package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"repairshop-service/internal/middleware"
	"repairshop-service/internal/model"
	"repairshop-service/pkg/logger"
	"repairshop-service/prometheus"
)

// QuoteRequest defines the structure for quote creation requests
type QuoteRequest struct {
	RepairID   uint       `json:"repair_id" validate:"required"`
	Subtotal   float64    `json:"subtotal"`
	Tax        float64    `json:"tax"`
	Total      float64    `json:"total"`
	Notes      string     `json:"notes"`
	ValidUntil *time.Time `json:"valid_until"`
}

// QuoteUpdateRequest defines the structure for partial quote updates
type QuoteUpdateRequest struct {
	Subtotal   *float64   `json:"subtotal"`
	Tax        *float64   `json:"tax"`
	Total      *float64   `json:"total"`
	Notes      *string    `json:"notes"`
	ValidUntil *time.Time `json:"valid_until"`
}

// QuoteStatusRequest defines the body of a quote approval/rejection
type QuoteStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListQuotes handles retrieving all quotes of the caller's organization
func ListQuotes(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	quotes, err := repo.ListQuotes(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to list quotes", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve quotes"})
	}

	return c.JSON(http.StatusOK, quotes)
}

// GetQuote handles retrieving a single quote by ID
func GetQuote(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}

	quote, err := repo.GetQuote(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get quote", zap.Uint("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve quote"})
	}
	if quote == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quote not found"})
	}

	return c.JSON(http.StatusOK, quote)
}

// GetRepairQuotes handles retrieving the quotes issued against a repair
func GetRepairQuotes(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	repairID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	repair, err := repo.GetRepair(c.Request().Context(), orgID, repairID)
	if err != nil {
		log.Error("Failed to get repair", zap.Uint("repair_id", repairID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repair"})
	}
	if repair == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair not found"})
	}

	quotes, err := repo.GetQuotesByRepair(c.Request().Context(), orgID, repairID)
	if err != nil {
		log.Error("Failed to list repair quotes", zap.Uint("repair_id", repairID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve quotes"})
	}

	return c.JSON(http.StatusOK, quotes)
}

// CreateQuote handles issuing a quote against a repair
func CreateQuote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("quote", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.RepairID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "repair_id is required"})
	}

	quote := model.Quote{
		RepairID:   req.RepairID,
		Subtotal:   req.Subtotal,
		Tax:        req.Tax,
		Total:      req.Total,
		Notes:      req.Notes,
		ValidUntil: req.ValidUntil,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateQuote(c.Request().Context(), orgID, &quote); err != nil {
		log.Warn("Failed to create quote", zap.Uint("repair_id", req.RepairID), zap.Error(err))
		return mapStoreError(c, err, "quote")
	}

	log.Info("Quote created successfully",
		zap.Uint("quote_id", quote.ID),
		zap.String("quote_number", quote.QuoteNumber))
	return c.JSON(http.StatusCreated, quote)
}

// UpdateQuote handles partially updating a quote
func UpdateQuote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("quote", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}

	var req QuoteUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Subtotal != nil {
		updates["subtotal"] = *req.Subtotal
	}
	if req.Tax != nil {
		updates["tax"] = *req.Tax
	}
	if req.Total != nil {
		updates["total"] = *req.Total
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	quote, err := repo.UpdateQuote(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Error("Failed to update quote", zap.Uint("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update quote"})
	}
	if quote == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quote not found"})
	}

	log.Info("Quote updated successfully", zap.Uint("quote_id", id))
	return c.JSON(http.StatusOK, quote)
}

// UpdateQuoteStatus handles approving or rejecting a quote
func UpdateQuoteStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("quote", "status")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}

	var req QuoteStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if !model.ValidQuoteStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown quote status"})
	}

	quote, err := repo.UpdateQuote(c.Request().Context(), orgID, id, map[string]interface{}{"status": req.Status})
	if err != nil {
		log.Error("Failed to update quote status", zap.Uint("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update quote status"})
	}
	if quote == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quote not found"})
	}

	log.Info("Quote status updated",
		zap.Uint("quote_id", id),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, quote)
}

// DeleteQuote handles soft-deleting a quote
func DeleteQuote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("quote", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}

	deleted, err := repo.DeleteQuote(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete quote", zap.Uint("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete quote"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quote not found"})
	}

	log.Info("Quote deleted successfully", zap.Uint("quote_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Quote deleted successfully"})
}

// RestoreQuote handles restoring a soft-deleted quote
func RestoreQuote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("quote", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quote id"})
	}

	quote, err := repo.RestoreQuote(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore quote", zap.Uint("quote_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore quote"})
	}
	if quote == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quote not found"})
	}

	prometheus.RecordRestore("quote")
	return c.JSON(http.StatusOK, quote)
}
