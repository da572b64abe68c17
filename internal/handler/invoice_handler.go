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

// InvoiceRequest defines the structure for invoice creation requests
type InvoiceRequest struct {
	RepairID uint    `json:"repair_id" validate:"required"`
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// InvoiceUpdateRequest defines the structure for partial invoice updates
type InvoiceUpdateRequest struct {
	Subtotal *float64 `json:"subtotal"`
	Tax      *float64 `json:"tax"`
	Total    *float64 `json:"total"`
}

// InvoiceStatusRequest defines the body of an invoice status transition
type InvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ListInvoices handles retrieving all invoices of the caller's organization
func ListInvoices(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	invoices, err := repo.ListInvoices(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to list invoices", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}

// GetInvoice handles retrieving a single invoice by ID
func GetInvoice(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}

	invoice, err := repo.GetInvoice(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get invoice", zap.Uint("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve invoice"})
	}
	if invoice == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	return c.JSON(http.StatusOK, invoice)
}

// GetRepairInvoices handles retrieving the invoices issued against a repair
func GetRepairInvoices(c echo.Context) error {
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

	invoices, err := repo.GetInvoicesByRepair(c.Request().Context(), orgID, repairID)
	if err != nil {
		log.Error("Failed to list repair invoices", zap.Uint("repair_id", repairID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve invoices"})
	}

	return c.JSON(http.StatusOK, invoices)
}

// CreateInvoice handles issuing an invoice against a repair
func CreateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req InvoiceRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.RepairID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "repair_id is required"})
	}

	invoice := model.Invoice{
		RepairID: req.RepairID,
		Subtotal: req.Subtotal,
		Tax:      req.Tax,
		Total:    req.Total,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateInvoice(c.Request().Context(), orgID, &invoice); err != nil {
		log.Warn("Failed to create invoice", zap.Uint("repair_id", req.RepairID), zap.Error(err))
		return mapStoreError(c, err, "invoice")
	}

	log.Info("Invoice created successfully",
		zap.Uint("invoice_id", invoice.ID),
		zap.String("invoice_number", invoice.InvoiceNumber))
	return c.JSON(http.StatusCreated, invoice)
}

// UpdateInvoice handles partially updating an invoice
func UpdateInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}

	var req InvoiceUpdateRequest
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

	defer prometheus.TrackDBOperation("update")(time.Now())

	invoice, err := repo.UpdateInvoice(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Error("Failed to update invoice", zap.Uint("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update invoice"})
	}
	if invoice == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	log.Info("Invoice updated successfully", zap.Uint("invoice_id", id))
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus handles marking an invoice paid or cancelled
func UpdateInvoiceStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "status")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}

	var req InvoiceStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if !model.ValidInvoiceStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown invoice status"})
	}

	invoice, err := repo.UpdateInvoice(c.Request().Context(), orgID, id, map[string]interface{}{"status": req.Status})
	if err != nil {
		log.Error("Failed to update invoice status", zap.Uint("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update invoice status"})
	}
	if invoice == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	log.Info("Invoice status updated",
		zap.Uint("invoice_id", id),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles soft-deleting an invoice
func DeleteInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}

	deleted, err := repo.DeleteInvoice(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete invoice", zap.Uint("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete invoice"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	log.Info("Invoice deleted successfully", zap.Uint("invoice_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Invoice deleted successfully"})
}

// RestoreInvoice handles restoring a soft-deleted invoice
func RestoreInvoice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("invoice", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid invoice id"})
	}

	invoice, err := repo.RestoreInvoice(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore invoice", zap.Uint("invoice_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore invoice"})
	}
	if invoice == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Invoice not found"})
	}

	prometheus.RecordRestore("invoice")
	return c.JSON(http.StatusOK, invoice)
}
