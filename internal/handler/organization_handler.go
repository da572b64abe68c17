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

// OrganizationRequest defines the structure for organization provisioning
type OrganizationRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// OrganizationUpdateRequest defines the structure for partial organization updates
type OrganizationUpdateRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// CreateOrganization handles provisioning a new tenant. This endpoint is not
// organization-scoped; it creates the scope everything else runs in.
func CreateOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("organization", "create")

	var req OrganizationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and slug are required"})
	}

	// Slugs are globally unique
	existing, err := repo.GetOrganizationBySlug(c.Request().Context(), req.Slug)
	if err != nil {
		log.Error("Failed to check slug uniqueness", zap.String("slug", req.Slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create organization"})
	}
	if existing != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Organization with this slug already exists"})
	}

	org := model.Organization{Name: req.Name, Slug: req.Slug}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateOrganization(c.Request().Context(), &org); err != nil {
		log.Error("Failed to create organization", zap.String("slug", req.Slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create organization"})
	}

	log.Info("Organization created successfully",
		zap.Uint("organization_id", org.ID),
		zap.String("slug", org.Slug))
	return c.JSON(http.StatusCreated, org)
}

// GetOrganizationBySlug resolves an organization by slug. Used by clients to
// map a shop subdomain to its organization id before authenticating.
func GetOrganizationBySlug(c echo.Context) error {
	log := logger.FromContext(c)

	slug := c.Param("slug")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "slug is required"})
	}

	org, err := repo.GetOrganizationBySlug(c.Request().Context(), slug)
	if err != nil {
		log.Error("Failed to resolve organization slug", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve organization"})
	}
	if org == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Organization not found"})
	}

	return c.JSON(http.StatusOK, org)
}

// GetOrganization handles retrieving the caller's own organization
func GetOrganization(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	org, err := repo.GetOrganization(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to get organization", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve organization"})
	}
	if org == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Organization not found"})
	}

	return c.JSON(http.StatusOK, org)
}

// UpdateOrganization handles renaming the caller's own organization
func UpdateOrganization(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("organization", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req OrganizationUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil {
		existing, err := repo.GetOrganizationBySlug(c.Request().Context(), *req.Slug)
		if err != nil {
			log.Error("Failed to check slug uniqueness", zap.String("slug", *req.Slug), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update organization"})
		}
		if existing != nil && existing.ID != orgID {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Organization with this slug already exists"})
		}
		updates["slug"] = *req.Slug
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	org, err := repo.UpdateOrganization(c.Request().Context(), orgID, updates)
	if err != nil {
		log.Error("Failed to update organization", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update organization"})
	}
	if org == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Organization not found"})
	}

	log.Info("Organization updated successfully", zap.Uint("organization_id", orgID))
	return c.JSON(http.StatusOK, org)
}

// WipeOrganizationData handles the irreversible bulk deletion of every row
// belonging to the caller's organization. Requires the admin role, and only
// ever operates on the caller's own tenant.
func WipeOrganizationData(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	if middleware.RoleFromContext(c) != "admin" {
		log.Warn("Non-admin attempted organization wipe", zap.Uint("organization_id", orgID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "admin role required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid organization id"})
	}
	if id != orgID {
		// Never reveal whether the other organization exists
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Organization not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := repo.DeleteAllOrganizationData(c.Request().Context(), orgID); err != nil {
		prometheus.RecordOrganizationWipe("failed")
		log.Error("Organization wipe failed", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to wipe organization data"})
	}

	prometheus.RecordOrganizationWipe("completed")
	log.Info("Organization data wiped", zap.Uint("organization_id", orgID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Organization data wiped"})
}
