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

// TechnicianRequest defines the structure for technician creation requests
type TechnicianRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// TechnicianUpdateRequest defines the structure for partial technician updates
type TechnicianUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// ListTechnicians handles retrieving all technicians of the caller's organization
func ListTechnicians(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	technicians, err := repo.ListTechnicians(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to list technicians", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve technicians"})
	}

	return c.JSON(http.StatusOK, technicians)
}

// GetTechnician handles retrieving a single technician by ID
func GetTechnician(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid technician id"})
	}

	technician, err := repo.GetTechnician(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get technician", zap.Uint("technician_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve technician"})
	}
	if technician == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Technician not found"})
	}

	return c.JSON(http.StatusOK, technician)
}

// CreateTechnician handles creating a new technician
func CreateTechnician(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("technician", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req TechnicianRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	technician := model.Technician{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     req.Role,
		IsActive: req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateTechnician(c.Request().Context(), orgID, &technician); err != nil {
		log.Error("Failed to create technician", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create technician"})
	}

	log.Info("Technician created successfully",
		zap.Uint("technician_id", technician.ID),
		zap.String("name", technician.Name))
	return c.JSON(http.StatusCreated, technician)
}

// UpdateTechnician handles partially updating an existing technician
func UpdateTechnician(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("technician", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid technician id"})
	}

	var req TechnicianUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Role != nil {
		updates["role"] = *req.Role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	technician, err := repo.UpdateTechnician(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Error("Failed to update technician", zap.Uint("technician_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update technician"})
	}
	if technician == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Technician not found"})
	}

	log.Info("Technician updated successfully", zap.Uint("technician_id", id))
	return c.JSON(http.StatusOK, technician)
}

// DeleteTechnician handles soft-deleting a technician. Assigned repairs are
// unassigned, not deleted.
func DeleteTechnician(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("technician", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid technician id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	deleted, err := repo.DeleteTechnician(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete technician", zap.Uint("technician_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete technician"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Technician not found"})
	}

	log.Info("Technician deleted successfully", zap.Uint("technician_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Technician deleted successfully"})
}

// RestoreTechnician handles restoring a soft-deleted technician
func RestoreTechnician(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("technician", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid technician id"})
	}

	technician, err := repo.RestoreTechnician(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore technician", zap.Uint("technician_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore technician"})
	}
	if technician == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Technician not found"})
	}

	prometheus.RecordRestore("technician")
	log.Info("Technician restored successfully", zap.Uint("technician_id", id))
	return c.JSON(http.StatusOK, technician)
}

// GetTechnicianRepairs handles retrieving the repairs assigned to a technician
func GetTechnicianRepairs(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid technician id"})
	}

	technician, err := repo.GetTechnician(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get technician", zap.Uint("technician_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve technician"})
	}
	if technician == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Technician not found"})
	}

	repairs, err := repo.GetRepairsByTechnician(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to list technician repairs", zap.Uint("technician_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repairs"})
	}

	return c.JSON(http.StatusOK, repairs)
}
