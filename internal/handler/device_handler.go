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

// DeviceRequest defines the structure for device creation requests
type DeviceRequest struct {
	CustomerID   uint   `json:"customer_id" validate:"required"`
	DeviceType   string `json:"device_type" validate:"required"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Notes        string `json:"notes"`
}

// DeviceUpdateRequest defines the structure for partial device updates
type DeviceUpdateRequest struct {
	CustomerID   *uint   `json:"customer_id"`
	DeviceType   *string `json:"device_type"`
	Brand        *string `json:"brand"`
	Model        *string `json:"model"`
	SerialNumber *string `json:"serial_number"`
	Notes        *string `json:"notes"`
}

// ListDevices handles retrieving all devices of the caller's organization
func ListDevices(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	devices, err := repo.ListDevices(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to list devices", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve devices"})
	}

	return c.JSON(http.StatusOK, devices)
}

// GetDevice handles retrieving a single device by ID
func GetDevice(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}

	device, err := repo.GetDevice(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get device", zap.Uint("device_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve device"})
	}
	if device == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Device not found"})
	}

	return c.JSON(http.StatusOK, device)
}

// CreateDevice handles registering a new device under a customer
func CreateDevice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("device", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req DeviceRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.CustomerID == 0 || req.DeviceType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and device_type are required"})
	}

	device := model.Device{
		CustomerID:   req.CustomerID,
		DeviceType:   req.DeviceType,
		Brand:        req.Brand,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Notes:        req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateDevice(c.Request().Context(), orgID, &device); err != nil {
		log.Warn("Failed to create device",
			zap.Uint("customer_id", req.CustomerID),
			zap.Error(err))
		return mapStoreError(c, err, "device")
	}

	log.Info("Device created successfully",
		zap.Uint("device_id", device.ID),
		zap.Uint("customer_id", device.CustomerID))
	return c.JSON(http.StatusCreated, device)
}

// UpdateDevice handles partially updating an existing device
func UpdateDevice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("device", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}

	var req DeviceUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.CustomerID != nil {
		updates["customer_id"] = *req.CustomerID
	}
	if req.DeviceType != nil {
		updates["device_type"] = *req.DeviceType
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Model != nil {
		updates["model"] = *req.Model
	}
	if req.SerialNumber != nil {
		updates["serial_number"] = *req.SerialNumber
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	device, err := repo.UpdateDevice(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Warn("Failed to update device", zap.Uint("device_id", id), zap.Error(err))
		return mapStoreError(c, err, "device")
	}
	if device == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Device not found"})
	}

	log.Info("Device updated successfully", zap.Uint("device_id", id))
	return c.JSON(http.StatusOK, device)
}

// DeleteDevice handles soft-deleting a device and its repairs with their
// items, quotes and invoices
func DeleteDevice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("device", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	deleted, err := repo.DeleteDevice(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete device", zap.Uint("device_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete device"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Device not found"})
	}

	prometheus.RecordCascadeDelete("device")
	refreshOpenRepairsGauge(c)
	log.Info("Device deleted successfully", zap.Uint("device_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Device deleted successfully"})
}

// RestoreDevice handles restoring a soft-deleted device
func RestoreDevice(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("device", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid device id"})
	}

	device, err := repo.RestoreDevice(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore device", zap.Uint("device_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore device"})
	}
	if device == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Device not found"})
	}

	prometheus.RecordRestore("device")
	log.Info("Device restored successfully", zap.Uint("device_id", id))
	return c.JSON(http.StatusOK, device)
}
