package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-service/internal/model"
)

func TestCreateOrganizationSlugConflict(t *testing.T) {
	setupHandlerTest(t)

	rec := doRequest(t, 0, http.MethodPost, "/api/organizations", OrganizationRequest{Name: "Fix It", Slug: "fix-it"}, nil, nil, CreateOrganization)
	require.Equal(t, http.StatusCreated, rec.Code)

	var org model.Organization
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &org))
	assert.Equal(t, "fix-it", org.Slug)

	rec = doRequest(t, 0, http.MethodPost, "/api/organizations", OrganizationRequest{Name: "Other", Slug: "fix-it"}, nil, nil, CreateOrganization)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, 0, http.MethodPost, "/api/organizations", OrganizationRequest{Name: "No Slug"}, nil, nil, CreateOrganization)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrganizationBySlug(t *testing.T) {
	s := setupHandlerTest(t)

	org := &model.Organization{Name: "Fix It", Slug: "fix-it"}
	require.NoError(t, s.CreateOrganization(context.Background(), org))

	rec := doRequest(t, 0, http.MethodGet, "/api/organizations/by-slug/fix-it", nil, []string{"slug"}, []string{"fix-it"}, GetOrganizationBySlug)
	require.Equal(t, http.StatusOK, rec.Code)
	var got model.Organization
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, org.ID, got.ID)

	rec = doRequest(t, 0, http.MethodGet, "/api/organizations/by-slug/missing", nil, []string{"slug"}, []string{"missing"}, GetOrganizationBySlug)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWipeOrganizationData(t *testing.T) {
	s := setupHandlerTest(t)
	ctx := context.Background()

	customer := &model.Customer{Name: "Soon Gone"}
	require.NoError(t, s.CreateCustomer(ctx, 1, customer))
	foreign := &model.Customer{Name: "Still Here"}
	require.NoError(t, s.CreateCustomer(ctx, 2, foreign))

	wipe := func(orgID uint, role, targetID string) int {
		rec := doRequestWithRole(t, orgID, role, http.MethodDelete, "/api/admin/organizations/"+targetID+"/data", []string{"id"}, []string{targetID}, WipeOrganizationData)
		return rec.Code
	}

	// Role is enforced
	assert.Equal(t, http.StatusForbidden, wipe(1, "staff", "1"))

	// Only the caller's own organization can be wiped
	assert.Equal(t, http.StatusNotFound, wipe(1, "admin", "2"))

	// Admins wipe their own tenant
	assert.Equal(t, http.StatusOK, wipe(1, "admin", "1"))

	got, err := s.GetCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	kept, err := s.GetCustomer(ctx, 2, foreign.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
