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

// RepairItemRequest defines the structure for repair line item creation
type RepairItemRequest struct {
	InventoryItemID *uint   `json:"inventory_item_id"`
	Description     string  `json:"description" validate:"required"`
	ItemType        string  `json:"item_type"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unit_price"`
}

// RepairItemUpdateRequest defines the structure for partial line item
// updates. Sending inventory_item_id as 0 detaches the stock reference.
type RepairItemUpdateRequest struct {
	InventoryItemID *uint    `json:"inventory_item_id"`
	Description     *string  `json:"description"`
	ItemType        *string  `json:"item_type"`
	Quantity        *int     `json:"quantity"`
	UnitPrice       *float64 `json:"unit_price"`
}

// ListRepairItems handles retrieving the line items of a repair
func ListRepairItems(c echo.Context) error {
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

	items, err := repo.GetRepairItemsByRepair(c.Request().Context(), orgID, repairID)
	if err != nil {
		log.Error("Failed to list repair items", zap.Uint("repair_id", repairID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repair items"})
	}

	return c.JSON(http.StatusOK, items)
}

// CreateRepairItem handles adding a part or labor line to a repair
func CreateRepairItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair_item", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	repairID, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	var req RepairItemRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "description is required"})
	}
	if req.ItemType != "" && req.ItemType != model.RepairItemTypePart && req.ItemType != model.RepairItemTypeService {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_type must be part or service"})
	}

	item := model.RepairItem{
		RepairID:        repairID,
		InventoryItemID: req.InventoryItemID,
		Description:     req.Description,
		ItemType:        req.ItemType,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateRepairItem(c.Request().Context(), orgID, &item); err != nil {
		log.Warn("Failed to create repair item", zap.Uint("repair_id", repairID), zap.Error(err))
		return mapStoreError(c, err, "repair item")
	}

	log.Info("Repair item created successfully",
		zap.Uint("repair_item_id", item.ID),
		zap.Uint("repair_id", repairID))
	return c.JSON(http.StatusCreated, item)
}

// UpdateRepairItem handles partially updating a repair line item
func UpdateRepairItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair_item", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair item id"})
	}

	var req RepairItemUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.ItemType != nil && *req.ItemType != model.RepairItemTypePart && *req.ItemType != model.RepairItemTypeService {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "item_type must be part or service"})
	}

	updates := map[string]interface{}{}
	if req.InventoryItemID != nil {
		if *req.InventoryItemID == 0 {
			updates["inventory_item_id"] = nil
		} else {
			updates["inventory_item_id"] = *req.InventoryItemID
		}
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ItemType != nil {
		updates["item_type"] = *req.ItemType
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.UnitPrice != nil {
		updates["unit_price"] = *req.UnitPrice
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	item, err := repo.UpdateRepairItem(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Warn("Failed to update repair item", zap.Uint("repair_item_id", id), zap.Error(err))
		return mapStoreError(c, err, "repair item")
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair item not found"})
	}

	log.Info("Repair item updated successfully", zap.Uint("repair_item_id", id))
	return c.JSON(http.StatusOK, item)
}

// DeleteRepairItem handles soft-deleting a single line item
func DeleteRepairItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair_item", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair item id"})
	}

	deleted, err := repo.DeleteRepairItem(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete repair item", zap.Uint("repair_item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete repair item"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair item not found"})
	}

	log.Info("Repair item deleted successfully", zap.Uint("repair_item_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Repair item deleted successfully"})
}

// RestoreRepairItem handles restoring a soft-deleted line item
func RestoreRepairItem(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair_item", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair item id"})
	}

	item, err := repo.RestoreRepairItem(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore repair item", zap.Uint("repair_item_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore repair item"})
	}
	if item == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair item not found"})
	}

	prometheus.RecordRestore("repair_item")
	return c.JSON(http.StatusOK, item)
}
