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

// CustomerRequest defines the structure for customer creation requests
type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CustomerUpdateRequest defines the structure for partial customer updates
type CustomerUpdateRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ListCustomers handles retrieving all customers of the caller's organization
func ListCustomers(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		log.Warn("Missing organization_id in context")
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	defer prometheus.TrackDBOperation("select")(time.Now())

	customers, err := repo.ListCustomers(c.Request().Context(), orgID)
	if err != nil {
		log.Error("Failed to list customers", zap.Uint("organization_id", orgID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customers"})
	}

	log.Info("Customers retrieved successfully", zap.Int("count", len(customers)))
	return c.JSON(http.StatusOK, customers)
}

// GetCustomer handles retrieving a single customer by ID
func GetCustomer(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	customer, err := repo.GetCustomer(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get customer", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customer"})
	}
	if customer == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles creating a new customer
func CreateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "create")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	customer := model.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Notes:   req.Notes,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := repo.CreateCustomer(c.Request().Context(), orgID, &customer); err != nil {
		log.Error("Failed to create customer",
			zap.String("name", req.Name),
			zap.Uint("organization_id", orgID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create customer"})
	}

	log.Info("Customer created successfully",
		zap.Uint("customer_id", customer.ID),
		zap.String("name", customer.Name))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles partially updating an existing customer
func UpdateCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "update")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	var req CustomerUpdateRequest
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
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	customer, err := repo.UpdateCustomer(c.Request().Context(), orgID, id, updates)
	if err != nil {
		log.Error("Failed to update customer", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update customer"})
	}
	if customer == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	log.Info("Customer updated successfully", zap.Uint("customer_id", id))
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles soft-deleting a customer and its devices, repairs,
// repair items, quotes and invoices
func DeleteCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "delete")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	deleted, err := repo.DeleteCustomer(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to delete customer", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete customer"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	prometheus.RecordCascadeDelete("customer")
	refreshOpenRepairsGauge(c)
	log.Info("Customer deleted successfully", zap.Uint("customer_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}

// RestoreCustomer handles restoring a soft-deleted customer. Dependents are
// not restored with it.
func RestoreCustomer(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordEntityOperation("customer", "restore")

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	customer, err := repo.RestoreCustomer(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to restore customer", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to restore customer"})
	}
	if customer == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	prometheus.RecordRestore("customer")
	log.Info("Customer restored successfully", zap.Uint("customer_id", id))
	return c.JSON(http.StatusOK, customer)
}

// GetCustomerDevices handles retrieving the devices registered to a customer
func GetCustomerDevices(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	// 404 for a foreign customer, indistinguishable from a missing one
	customer, err := repo.GetCustomer(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get customer", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customer"})
	}
	if customer == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	devices, err := repo.GetDevicesByCustomer(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to list customer devices", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve devices"})
	}

	return c.JSON(http.StatusOK, devices)
}

// GetCustomerRepairs handles retrieving the repairs filed by a customer
func GetCustomerRepairs(c echo.Context) error {
	log := logger.FromContext(c)

	orgID, ok := middleware.OrgIDFromContext(c)
	if !ok {
		prometheus.TenantContextMissingCounter.Inc()
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "organization context is required"})
	}

	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid customer id"})
	}

	customer, err := repo.GetCustomer(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to get customer", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve customer"})
	}
	if customer == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Customer not found"})
	}

	repairs, err := repo.GetRepairsByCustomer(c.Request().Context(), orgID, id)
	if err != nil {
		log.Error("Failed to list customer repairs", zap.Uint("customer_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve repairs"})
	}

	return c.JSON(http.StatusOK, repairs)
}
