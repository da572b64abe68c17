package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"repairshop-service/internal/model"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	s := New(db, nil)
	require.NoError(t, s.Migrate())
	return s
}

func seedCustomer(t *testing.T, s *Store, orgID uint, name string) *model.Customer {
	t.Helper()
	customer := &model.Customer{Name: name}
	require.NoError(t, s.CreateCustomer(context.Background(), orgID, customer))
	return customer
}

func seedDevice(t *testing.T, s *Store, orgID, customerID uint, deviceType string) *model.Device {
	t.Helper()
	device := &model.Device{CustomerID: customerID, DeviceType: deviceType}
	require.NoError(t, s.CreateDevice(context.Background(), orgID, device))
	return device
}

func seedRepair(t *testing.T, s *Store, orgID, customerID, deviceID uint) *model.Repair {
	t.Helper()
	repair := &model.Repair{CustomerID: customerID, DeviceID: deviceID, IssueDesc: "does not power on"}
	require.NoError(t, s.CreateRepair(context.Background(), orgID, repair))
	return repair
}

func TestTenantIsolation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Alice")

	// Another organization sees nothing, with no error
	got, err := s.GetCustomer(ctx, 2, customer.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)

	list, err := s.ListCustomers(ctx, 2)
	assert.NoError(t, err)
	assert.Empty(t, list)

	updated, err := s.UpdateCustomer(ctx, 2, customer.ID, map[string]interface{}{"name": "Mallory"})
	assert.NoError(t, err)
	assert.Nil(t, updated)

	deleted, err := s.DeleteCustomer(ctx, 2, customer.ID)
	assert.NoError(t, err)
	assert.False(t, deleted)

	// The owning organization is unaffected by any of it
	got, err = s.GetCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, uint(1), got.OrganizationID)
}

func TestCreateInjectsOrganization(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	// Client-supplied ownership and lifecycle fields are overwritten
	customer := &model.Customer{Name: "Bob", OrganizationID: 99, Deleted: true}
	require.NoError(t, s.CreateCustomer(ctx, 1, customer))
	assert.Equal(t, uint(1), customer.OrganizationID)
	assert.False(t, customer.Deleted)
	assert.Nil(t, customer.DeletedAt)
}

func TestUpdateStripsProtectedColumns(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Carol")

	updated, err := s.UpdateCustomer(ctx, 1, customer.ID, map[string]interface{}{
		"name":            "Carol Chen",
		"organization_id": 7,
		"deleted":         true,
		"id":              999,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Carol Chen", updated.Name)
	assert.Equal(t, uint(1), updated.OrganizationID)
	assert.Equal(t, customer.ID, updated.ID)
	assert.False(t, updated.Deleted)
}

func TestCreateRepairValidatesReferences(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Dave")
	device := seedDevice(t, s, 1, customer.ID, "laptop")
	other := seedCustomer(t, s, 1, "Erin")

	// Unknown customer
	err := s.CreateRepair(ctx, 1, &model.Repair{CustomerID: 999, DeviceID: device.ID})
	assert.ErrorIs(t, err, ErrInvalidReference)

	// Device owned by a different customer
	err = s.CreateRepair(ctx, 1, &model.Repair{CustomerID: other.ID, DeviceID: device.ID})
	assert.ErrorIs(t, err, ErrInvalidReference)

	// Customer from another organization
	err = s.CreateRepair(ctx, 2, &model.Repair{CustomerID: customer.ID, DeviceID: device.ID})
	assert.ErrorIs(t, err, ErrInvalidReference)

	// Unknown technician
	badTech := uint(42)
	err = s.CreateRepair(ctx, 1, &model.Repair{CustomerID: customer.ID, DeviceID: device.ID, TechnicianID: &badTech})
	assert.ErrorIs(t, err, ErrInvalidReference)

	// Valid ticket gets defaults
	repair := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID}
	require.NoError(t, s.CreateRepair(ctx, 1, repair))
	assert.Equal(t, model.RepairStatusIntake, repair.Status)
	assert.Equal(t, 3, repair.PriorityLevel)
}

func TestNumberSequencesPerOrganization(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Frank")
	device := seedDevice(t, s, 1, customer.ID, "phone")

	first := seedRepair(t, s, 1, customer.ID, device.ID)
	second := seedRepair(t, s, 1, customer.ID, device.ID)
	assert.Equal(t, "RT-1001", first.TicketNumber)
	assert.Equal(t, "RT-1002", second.TicketNumber)

	quote := &model.Quote{RepairID: first.ID, Total: 120}
	require.NoError(t, s.CreateQuote(ctx, 1, quote))
	assert.Equal(t, "QT-1001", quote.QuoteNumber)

	invoice := &model.Invoice{RepairID: first.ID, Total: 120}
	require.NoError(t, s.CreateInvoice(ctx, 1, invoice))
	assert.Equal(t, "INV-1001", invoice.InvoiceNumber)

	// Each organization counts from 1001 independently
	otherCustomer := seedCustomer(t, s, 2, "Grace")
	otherDevice := seedDevice(t, s, 2, otherCustomer.ID, "tablet")
	otherRepair := seedRepair(t, s, 2, otherCustomer.ID, otherDevice.ID)
	assert.Equal(t, "RT-1001", otherRepair.TicketNumber)
}

func TestTicketNumbersUniquePerOrganization(t *testing.T) {
	s := setupStore(t)
	db := s.DB()

	require.NoError(t, db.Create(&model.Repair{
		OrganizationID: 1, TicketNumber: "RT-1001", CustomerID: 1, DeviceID: 1,
	}).Error)

	// The schema rejects a duplicate ticket within the organization
	err := db.Create(&model.Repair{
		OrganizationID: 1, TicketNumber: "RT-1001", CustomerID: 1, DeviceID: 1,
	}).Error
	assert.Error(t, err)

	// The same number under another organization is fine
	err = db.Create(&model.Repair{
		OrganizationID: 2, TicketNumber: "RT-1001", CustomerID: 2, DeviceID: 2,
	}).Error
	assert.NoError(t, err)
}

func TestNextNumberRetriesLostAllocation(t *testing.T) {
	s := setupStore(t)
	db := s.DB()

	seq := &model.NumberSequence{OrganizationID: 1, Kind: model.SequenceKindTicket, NextValue: 1001}
	require.NoError(t, db.Create(seq).Error)

	// Advance the sequence out from under the first compare-and-set, once,
	// the way a concurrent allocation would
	stolen := false
	err := db.Callback().Update().Before("gorm:update").Register("steal_sequence_value", func(tx *gorm.DB) {
		if stolen {
			return
		}
		if _, ok := tx.Statement.Model.(*model.NumberSequence); !ok {
			return
		}
		stolen = true
		tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.NumberSequence{}).
			Where("id = ?", seq.ID).
			Update("next_value", 1002)
	})
	require.NoError(t, err)
	defer db.Callback().Update().Remove("steal_sequence_value")

	number, err := nextNumber(db, 1, model.SequenceKindTicket, "RT")
	require.NoError(t, err)
	assert.True(t, stolen)
	assert.Equal(t, "RT-1002", number)
}

func TestUpdateRepairUnassignsTechnician(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Heidi")
	device := seedDevice(t, s, 1, customer.ID, "console")
	technician := &model.Technician{Name: "Ivan"}
	require.NoError(t, s.CreateTechnician(ctx, 1, technician))

	repair := seedRepair(t, s, 1, customer.ID, device.ID)

	updated, err := s.UpdateRepair(ctx, 1, repair.ID, map[string]interface{}{"technician_id": technician.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.TechnicianID)
	assert.Equal(t, technician.ID, *updated.TechnicianID)

	// Explicit nil clears the assignment
	updated, err = s.UpdateRepair(ctx, 1, repair.ID, map[string]interface{}{"technician_id": nil})
	require.NoError(t, err)
	assert.Nil(t, updated.TechnicianID)

	// Ticket numbers never change through updates
	updated, err = s.UpdateRepair(ctx, 1, repair.ID, map[string]interface{}{"ticket_number": "RT-9999", "status": model.RepairStatusDiagnosed})
	require.NoError(t, err)
	assert.Equal(t, repair.TicketNumber, updated.TicketNumber)
	assert.Equal(t, model.RepairStatusDiagnosed, updated.Status)
}

func TestInvoicePaidStampsPaidAt(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Judy")
	device := seedDevice(t, s, 1, customer.ID, "camera")
	repair := seedRepair(t, s, 1, customer.ID, device.ID)

	invoice := &model.Invoice{RepairID: repair.ID, Subtotal: 100, Tax: 7, Total: 107}
	require.NoError(t, s.CreateInvoice(ctx, 1, invoice))
	assert.Equal(t, model.InvoiceStatusUnpaid, invoice.Status)
	assert.Nil(t, invoice.PaidAt)

	updated, err := s.UpdateInvoice(ctx, 1, invoice.ID, map[string]interface{}{"status": model.InvoiceStatusPaid})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.InvoiceStatusPaid, updated.Status)
	assert.NotNil(t, updated.PaidAt)
}

func TestCountInventoryBySKU(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	item := &model.InventoryItem{Name: "Screen", SKU: "SCR-13"}
	require.NoError(t, s.CreateInventoryItem(ctx, 1, item))

	n, err := s.CountInventoryBySKU(ctx, 1, "SCR-13", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Excluding the item itself, as an update uniqueness check does
	n, err = s.CountInventoryBySKU(ctx, 1, "SCR-13", item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// SKUs are unique per organization, not globally
	n, err = s.CountInventoryBySKU(ctx, 2, "SCR-13", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestOrganizationSlugLookup(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	org := &model.Organization{Name: "Fix It Fast", Slug: "fix-it-fast"}
	require.NoError(t, s.CreateOrganization(ctx, org))

	got, err := s.GetOrganizationBySlug(ctx, "fix-it-fast")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, org.ID, got.ID)

	missing, err := s.GetOrganizationBySlug(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	renamed, err := s.UpdateOrganization(ctx, org.ID, map[string]interface{}{"name": "Fix It Faster"})
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, "Fix It Faster", renamed.Name)
}
