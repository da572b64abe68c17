package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-service/internal/model"
)

func TestGetRepairWithRelations(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Pam")
	device := seedDevice(t, s, 1, customer.ID, "laptop")
	technician := &model.Technician{Name: "Quinn"}
	require.NoError(t, s.CreateTechnician(ctx, 1, technician))

	repair := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID, TechnicianID: &technician.ID}
	require.NoError(t, s.CreateRepair(ctx, 1, repair))

	stock := &model.InventoryItem{Name: "Keyboard", SKU: "KBD-7", UnitPrice: 60}
	require.NoError(t, s.CreateInventoryItem(ctx, 1, stock))

	partLine := &model.RepairItem{RepairID: repair.ID, Description: "Keyboard", InventoryItemID: &stock.ID, UnitPrice: 60}
	require.NoError(t, s.CreateRepairItem(ctx, 1, partLine))
	laborLine := &model.RepairItem{RepairID: repair.ID, Description: "Installation", ItemType: model.RepairItemTypeService, UnitPrice: 30}
	require.NoError(t, s.CreateRepairItem(ctx, 1, laborLine))

	quote := &model.Quote{RepairID: repair.ID, Total: 90}
	require.NoError(t, s.CreateQuote(ctx, 1, quote))
	invoice := &model.Invoice{RepairID: repair.ID, Total: 90}
	require.NoError(t, s.CreateInvoice(ctx, 1, invoice))

	details, err := s.GetRepairWithRelations(ctx, 1, repair.ID)
	require.NoError(t, err)
	require.NotNil(t, details)

	assert.Equal(t, repair.TicketNumber, details.TicketNumber)
	require.NotNil(t, details.Customer)
	assert.Equal(t, "Pam", details.Customer.Name)
	require.NotNil(t, details.Device)
	assert.Equal(t, "laptop", details.Device.DeviceType)
	require.NotNil(t, details.Technician)
	assert.Equal(t, "Quinn", details.Technician.Name)

	require.Len(t, details.Items, 2)
	require.NotNil(t, details.Items[0].InventoryItem)
	assert.Equal(t, "KBD-7", details.Items[0].InventoryItem.SKU)
	assert.Nil(t, details.Items[1].InventoryItem)

	require.Len(t, details.Quotes, 1)
	assert.Equal(t, quote.QuoteNumber, details.Quotes[0].QuoteNumber)
	require.Len(t, details.Invoices, 1)
	assert.Equal(t, invoice.InvoiceNumber, details.Invoices[0].InvoiceNumber)
}

func TestGetRepairWithRelationsTrashedDependents(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, _, repair, item, quote, _ := seedSubtree(t, s, 1)

	ok, err := s.DeleteQuote(ctx, 1, quote.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.DeleteRepairItem(ctx, 1, item.ID)
	require.NoError(t, err)
	require.True(t, ok)

	details, err := s.GetRepairWithRelations(ctx, 1, repair.ID)
	require.NoError(t, err)
	require.NotNil(t, details)

	// Trashed dependents drop out of the aggregate
	assert.Empty(t, details.Items)
	assert.Empty(t, details.Quotes)
	assert.Len(t, details.Invoices, 1)

	// A missing repair yields nil, as does another organization's repair
	none, err := s.GetRepairWithRelations(ctx, 1, 9999)
	require.NoError(t, err)
	assert.Nil(t, none)
	foreign, err := s.GetRepairWithRelations(ctx, 2, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)
}

// TestRepairTicketLifecycle walks a ticket from intake to payment the way the
// API does, against two organizations sharing the database.
func TestRepairTicketLifecycle(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Jane Doe")
	device := seedDevice(t, s, 1, customer.ID, "phone")
	technician := &model.Technician{Name: "Sam"}
	require.NoError(t, s.CreateTechnician(ctx, 1, technician))

	repair := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID, IssueDesc: "cracked screen"}
	require.NoError(t, s.CreateRepair(ctx, 1, repair))
	assert.Equal(t, "RT-1001", repair.TicketNumber)

	// Assign, diagnose, line up the work
	_, err := s.UpdateRepair(ctx, 1, repair.ID, map[string]interface{}{
		"technician_id": technician.ID,
		"status":        model.RepairStatusDiagnosed,
	})
	require.NoError(t, err)

	item := &model.RepairItem{RepairID: repair.ID, Description: "Screen assembly", UnitPrice: 120}
	require.NoError(t, s.CreateRepairItem(ctx, 1, item))

	quote := &model.Quote{RepairID: repair.ID, Subtotal: 120, Tax: 8.4, Total: 128.4}
	require.NoError(t, s.CreateQuote(ctx, 1, quote))
	_, err = s.UpdateQuote(ctx, 1, quote.ID, map[string]interface{}{"status": model.QuoteStatusApproved})
	require.NoError(t, err)

	// Work completes and gets billed
	_, err = s.UpdateRepair(ctx, 1, repair.ID, map[string]interface{}{"status": model.RepairStatusCompleted})
	require.NoError(t, err)

	invoice := &model.Invoice{RepairID: repair.ID, Subtotal: 120, Tax: 8.4, Total: 128.4}
	require.NoError(t, s.CreateInvoice(ctx, 1, invoice))
	paid, err := s.UpdateInvoice(ctx, 1, invoice.ID, map[string]interface{}{"status": model.InvoiceStatusPaid})
	require.NoError(t, err)
	assert.NotNil(t, paid.PaidAt)

	// A second organization never sees any of it
	got, err := s.GetRepair(ctx, 2, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	quotes, err := s.ListQuotes(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, quotes)
	invoices, err := s.ListInvoices(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, invoices)

	// Status filter sees the completed ticket
	completed, err := s.ListRepairsByStatus(ctx, 1, model.RepairStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, repair.ID, completed[0].ID)
}
