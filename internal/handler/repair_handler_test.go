package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-service/internal/model"
	"repairshop-service/internal/store"
)

func seedRepairFixtures(t *testing.T, s *store.Store, orgID uint) (*model.Customer, *model.Device) {
	t.Helper()
	ctx := context.Background()

	customer := &model.Customer{Name: "Walk-in"}
	require.NoError(t, s.CreateCustomer(ctx, orgID, customer))
	device := &model.Device{CustomerID: customer.ID, DeviceType: "phone", Brand: "Acme"}
	require.NoError(t, s.CreateDevice(ctx, orgID, device))
	return customer, device
}

func TestCreateRepairAssignsTicketNumber(t *testing.T) {
	s := setupHandlerTest(t)
	customer, device := seedRepairFixtures(t, s, 1)

	rec := doRequest(t, 1, http.MethodPost, "/api/repairs", RepairRequest{
		CustomerID: customer.ID,
		DeviceID:   device.ID,
		IssueDesc:  "water damage",
	}, nil, nil, CreateRepair)
	require.Equal(t, http.StatusCreated, rec.Code)

	var repair model.Repair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &repair))
	assert.Equal(t, "RT-1001", repair.TicketNumber)
	assert.Equal(t, model.RepairStatusIntake, repair.Status)
	assert.Equal(t, 3, repair.PriorityLevel)
}

func TestCreateRepairRejectsBadReferences(t *testing.T) {
	s := setupHandlerTest(t)
	customer, device := seedRepairFixtures(t, s, 1)

	// Device belonging to someone else's customer
	stranger := &model.Customer{Name: "Stranger"}
	require.NoError(t, s.CreateCustomer(context.Background(), 1, stranger))

	rec := doRequest(t, 1, http.MethodPost, "/api/repairs", RepairRequest{
		CustomerID: stranger.ID,
		DeviceID:   device.ID,
	}, nil, nil, CreateRepair)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown status is rejected before it reaches the store
	rec = doRequest(t, 1, http.MethodPost, "/api/repairs", RepairRequest{
		CustomerID: customer.ID,
		DeviceID:   device.ID,
		Status:     "exploded",
	}, nil, nil, CreateRepair)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateRepairStatusTransitions(t *testing.T) {
	s := setupHandlerTest(t)
	customer, device := seedRepairFixtures(t, s, 1)

	repair := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID}
	require.NoError(t, s.CreateRepair(context.Background(), 1, repair))

	rec := doRequest(t, 1, http.MethodPut, "/api/repairs/1/status", RepairStatusRequest{Status: model.RepairStatusInProgress}, []string{"id"}, []string{"1"}, UpdateRepairStatus)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated model.Repair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, model.RepairStatusInProgress, updated.Status)

	rec = doRequest(t, 1, http.MethodPut, "/api/repairs/1/status", RepairStatusRequest{Status: "bogus"}, []string{"id"}, []string{"1"}, UpdateRepairStatus)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Foreign tenant cannot move the ticket
	rec = doRequest(t, 2, http.MethodPut, "/api/repairs/1/status", RepairStatusRequest{Status: model.RepairStatusCompleted}, []string{"id"}, []string{"1"}, UpdateRepairStatus)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRepairDetailsAggregates(t *testing.T) {
	s := setupHandlerTest(t)
	ctx := context.Background()
	customer, device := seedRepairFixtures(t, s, 1)

	repair := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID}
	require.NoError(t, s.CreateRepair(ctx, 1, repair))
	item := &model.RepairItem{RepairID: repair.ID, Description: "Port cleaning", ItemType: model.RepairItemTypeService, UnitPrice: 25}
	require.NoError(t, s.CreateRepairItem(ctx, 1, item))

	rec := doRequest(t, 1, http.MethodGet, "/api/repairs/1/details", nil, []string{"id"}, []string{"1"}, GetRepairDetails)
	require.Equal(t, http.StatusOK, rec.Code)

	var details store.RepairDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.NotNil(t, details.Customer)
	assert.Equal(t, customer.ID, details.Customer.ID)
	require.NotNil(t, details.Device)
	require.Len(t, details.Items, 1)
	assert.Equal(t, "Port cleaning", details.Items[0].Description)

	rec = doRequest(t, 2, http.MethodGet, "/api/repairs/1/details", nil, []string{"id"}, []string{"1"}, GetRepairDetails)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRepairsStatusFilter(t *testing.T) {
	s := setupHandlerTest(t)
	ctx := context.Background()
	customer, device := seedRepairFixtures(t, s, 1)

	open := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID}
	require.NoError(t, s.CreateRepair(ctx, 1, open))
	done := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID, Status: model.RepairStatusCompleted}
	require.NoError(t, s.CreateRepair(ctx, 1, done))

	rec := doRequest(t, 1, http.MethodGet, "/api/repairs?status=completed", nil, nil, nil, ListRepairs)
	require.Equal(t, http.StatusOK, rec.Code)
	var repairs []model.Repair
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &repairs))
	require.Len(t, repairs, 1)
	assert.Equal(t, done.ID, repairs[0].ID)

	rec = doRequest(t, 1, http.MethodGet, "/api/repairs?status=bogus", nil, nil, nil, ListRepairs)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
