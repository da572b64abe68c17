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

// RepairRequest defines the structure for repair ticket creation requests
type RepairRequest struct {
	CustomerID    uint       `json:"customer_id" validate:"required"`
	DeviceID      uint       `json:"device_id" validate:"required"`
	TechnicianID  *uint      `json:"technician_id"`
	Status        string     `json:"status"`
	PriorityLevel int        `json:"priority_level"`
	IssueDesc     string     `json:"issue_description"`
	EstCompletion *time.Time `json:"estimated_completion"`
}

// RepairUpdateRequest defines the structure for partial repair updates.
// Sending technician_id as 0 unassigns the repair.
type RepairUpdateRequest struct {
	TechnicianID   *uint      `json:"technician_id"`
	Status         *string    `json:"status"`
	PriorityLevel  *int       `json:"priority_level"`
	IssueDesc      *string    `json:"issue_description"`
	DiagnosisNotes *string    `json:"diagnosis_notes"`
	EstCompletion  *time.Time `json:"estimated_completion"`
}

// RepairStatusRequest defines the body of a status transition request
type RepairStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// refreshOpenRepairsGauge recomputes the per-status open repairs gauge.
// Called after mutations that change the set of live repairs; best effort.
func refreshOpenRepairsGauge(c echo.Context) {
	counts, err := repo.CountRepairsByStatus(c.Request().Context())
	if err != nil {
		return
	}
	for _, status := range model.RepairStatuses {
		prometheus.OpenRepairsGauge.WithLabelValues(status).Set(float64(counts[status]))
	}
}

// ListRepairs handles retrieving the organization's repairs, optionally
// filtered by status
func ListRepairs(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	defer prometheus.TrackDBOperation("select")(time.Now())

	status := c.QueryParam("status")
	if status != "" {
		if !model.ValidRepairStatus(status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown repair status"})
		}
		repairs, err := repo.ListRepairsByStatus(c.Request().Context(), orgID, status)
		if err != nil {
			log.Error("Failed to list repairs by status", zap.String("status", status), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repairs"})
		}
		return c.JSON(http.StatusOK, repairs)
	}

	repairs, err := repo.ListRepairs(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to list repairs", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repairs"})
	}

	return c.JSON(http.StatusOK, repairs)
}

// GetRepair handles retrieving a single repair by ID
func GetRepair(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	repair, err := repo.GetRepair(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get repair", zap.Uint("repair_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repair"})
	}
	if repair == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair not found"})
	}

	return c.JSON(http.StatusOK, repair)
}

// GetRepairDetails handles retrieving a repair with its customer, device,
// technician, line items, quotes and invoices in one aggregate
func GetRepairDetails(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	defer prometheus.TrackDBOperation("select")(time.Now())

	details, err := repo.GetRepairWithRelations(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to assemble repair details", zap.Uint("repair_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repair details"})
	}
	if details == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair not found"})
	}

	return c.JSON(http.StatusOK, details)
}

// CreateRepair handles opening a new repair ticket
func CreateRepair(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req RepairRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.CustomerID == 0 || req.DeviceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and device_id are required"})
	}
	if req.Status != "" && !model.ValidRepairStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown repair status"})
	}

	repair := model.Repair{
		CustomerID:    req.CustomerID,
		DeviceID:      req.DeviceID,
		TechnicianID:  req.TechnicianID,
		Status:        req.Status,
		PriorityLevel: req.PriorityLevel,
		IssueDesc:     req.IssueDesc,
		EstCompletion: req.EstCompletion,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateRepair(c.Request().Context(), orgID, &repair); err != nil {
		log.Warn("Failed to create repair",
			zap.Uint("customer_id", req.CustomerID),
			zap.Uint("device_id", req.DeviceID),
			zap.Error(err))
		return mapStoreError(c, err, "repair")
	}

	refreshOpenRepairsGauge(c)
	log.Info("Repair created successfully",
		zap.Uint("repair_id", repair.ID),
		zap.String("ticket_number", repair.TicketNumber))
	return c.JSON(http.StatusCreated, repair)
}

// UpdateRepair handles partially updating an existing repair
func UpdateRepair(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	var req RepairUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Status != nil && !model.ValidRepairStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown repair status"})
	}

	updates := map[string]interface{}{}
	if req.TechnicianID != nil {
		if *req.TechnicianID == 0 {
			updates["technician_id"] = nil
		} else {
			updates["technician_id"] = *req.TechnicianID
		}
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.PriorityLevel != nil {
		updates["priority_level"] = *req.PriorityLevel
	}
	if req.IssueDesc != nil {
		updates["issue_description"] = *req.IssueDesc
	}
	if req.DiagnosisNotes != nil {
		updates["diagnosis_notes"] = *req.DiagnosisNotes
	}
	if req.EstCompletion != nil {
		updates["estimated_completion"] = *req.EstCompletion
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	repair, err := repo.UpdateRepair(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Warn("Failed to update repair", zap.Uint("repair_id", id), zap.Error(err))
		return mapStoreError(c, err, "repair")
	}
	if repair == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair not found"})
	}

	refreshOpenRepairsGauge(c)
	log.Info("Repair updated successfully", zap.Uint("repair_id", id))
	return c.JSON(http.StatusOK, repair)
}

// UpdateRepairStatus handles moving a repair through its workflow
func UpdateRepairStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair", "status")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	var req RepairStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if !model.ValidRepairStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown repair status"})
	}

	repair, err := repo.UpdateRepair(c.Request().Context(), orgID, id, map[string]interface{}{"status": req.Status})
	if err != nil {
		log.Error("Failed to update repair status", zap.Uint("repair_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update repair status"})
	}
	if repair == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair not found"})
	}

	refreshOpenRepairsGauge(c)
	log.Info("Repair status updated",
		zap.Uint("repair_id", id),
		zap.String("status", req.Status))
	return c.JSON(http.StatusOK, repair)
}

// DeleteRepair handles soft-deleting a repair with its items, quotes and invoices
func DeleteRepair(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	deleted, err := repo.DeleteRepair(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete repair", zap.Uint("repair_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete repair"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair not found"})
	}

	prometheus.RecordCascadeDelete("repair")
	refreshOpenRepairsGauge(c)
	log.Info("Repair deleted successfully", zap.Uint("repair_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Repair deleted successfully"})
}

// RestoreRepair handles restoring a soft-deleted repair. Line items, quotes
// and invoices stay deleted.
func RestoreRepair(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("repair", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid repair id"})
	}

	repair, err := repo.RestoreRepair(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore repair", zap.Uint("repair_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore repair"})
	}
	if repair == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Repair not found"})
	}

	prometheus.RecordRestore("repair")
	refreshOpenRepairsGauge(c)
	log.Info("Repair restored successfully", zap.Uint("repair_id", id))
	return c.JSON(http.StatusOK, repair)
}
