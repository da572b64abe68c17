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

// InventoryItemRequest defines the structure for inventory creation requests
type InventoryItemRequest struct {
	Name         string  `json:"name" validate:"required"`
	SKU          string  `json:"sku" validate:"required"`
	Description  string  `json:"description"`
	Quantity     int     `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	UnitPrice    float64 `json:"unit_price"`
	ReorderLevel int     `json:"reorder_level"`
}

// InventoryItemUpdateRequest defines the structure for partial inventory updates
type InventoryItemUpdateRequest struct {
	Name         *string  `json:"name"`
	SKU          *string  `json:"sku"`
	Description  *string  `json:"description"`
	Quantity     *int     `json:"quantity"`
	UnitCost     *float64 `json:"unit_cost"`
	UnitPrice    *float64 `json:"unit_price"`
	ReorderLevel *int     `json:"reorder_level"`
}

// ListInventoryItems handles retrieving all inventory items of the caller's organization
func ListInventoryItems(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	items, err := repo.ListInventoryItems(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to list inventory items", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve inventory items"})
	}

	return c.JSON(http.StatusOK, items)
}

// GetInventoryItem handles retrieving a single inventory item by ID
func GetInventoryItem(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid inventory item id"})
	}

	item, err := repo.GetInventoryItem(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get inventory item", zap.Uint("inventory_item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve inventory item"})
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Inventory item not found"})
	}

	return c.JSON(http.StatusOK, item)
}

// CreateInventoryItem handles adding a new stocked part
func CreateInventoryItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("inventory_item", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req InventoryItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and sku are required"})
	}

	// SKUs are unique within the organization
	count, err := repo.CountInventoryBySKU(c.Request().Context(), orgID, req.SKU, 0)
	if err != nil {
		log.Error("Failed to check SKU uniqueness", zap.String("sku", req.SKU), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create inventory item"})
	}
	if count > 0 {
		log.Warn("Inventory item with this SKU already exists", zap.String("sku", req.SKU))
		return c.JSON(http.StatusConflict, echo.Map{"error": "Inventory item with this SKU already exists"})
	}

	item := model.InventoryItem{
		Name:         req.Name,
		SKU:          req.SKU,
		Description:  req.Description,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		UnitPrice:    req.UnitPrice,
		ReorderLevel: req.ReorderLevel,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateInventoryItem(c.Request().Context(), orgID, &item); err != nil {
		log.Error("Failed to create inventory item", zap.String("sku", req.SKU), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create inventory item"})
	}

	log.Info("Inventory item created successfully",
		zap.Uint("inventory_item_id", item.ID),
		zap.String("sku", item.SKU))
	return c.JSON(http.StatusCreated, item)
}

// UpdateInventoryItem handles partially updating an existing inventory item
func UpdateInventoryItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("inventory_item", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid inventory item id"})
	}

	var req InventoryItemUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.SKU != nil {
		count, err := repo.CountInventoryBySKU(c.Request().Context(), orgID, *req.SKU, id)
		if err != nil {
			log.Error("Failed to check SKU uniqueness", zap.String("sku", *req.SKU), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update inventory item"})
		}
		if count > 0 {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Inventory item with this SKU already exists"})
		}
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.SKU != nil {
		updates["sku"] = *req.SKU
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.UnitCost != nil {
		updates["unit_cost"] = *req.UnitCost
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}
	if req.ReorderLevel != nil {
		updates["reorder_level"] = *req.ReorderLevel
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	item, err := repo.UpdateInventoryItem(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Error("Failed to update inventory item", zap.Uint("inventory_item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update inventory item"})
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Inventory item not found"})
	}

	log.Info("Inventory item updated successfully", zap.Uint("inventory_item_id", id))
	return c.JSON(http.StatusOK, item)
}

// DeleteInventoryItem handles soft-deleting an inventory item. Repair items
// referencing it are detached, not deleted.
func DeleteInventoryItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("inventory_item", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid inventory item id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	deleted, err := repo.DeleteInventoryItem(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete inventory item", zap.Uint("inventory_item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete inventory item"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Inventory item not found"})
	}

	log.Info("Inventory item deleted successfully", zap.Uint("inventory_item_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Inventory item deleted successfully"})
}

// RestoreInventoryItem handles restoring a soft-deleted inventory item
func RestoreInventoryItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("inventory_item", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid inventory item id"})
	}

	item, err := repo.RestoreInventoryItem(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore inventory item", zap.Uint("inventory_item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore inventory item"})
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Inventory item not found"})
	}

	prometheus.RecordRestore("inventory_item")
	log.Info("Inventory item restored successfully", zap.Uint("inventory_item_id", id))
	return c.JSON(http.StatusOK, item)
}
