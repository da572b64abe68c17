package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairshop-service/internal/model"
)

// seedSubtree builds a customer with a device, an open repair and one of each
// dependent under the repair.
func seedSubtree(t *testing.T, s *Store, orgID uint) (*model.Customer, *model.Device, *model.Repair, *model.RepairItem, *model.Quote, *model.Invoice) {
	t.Helper()
	ctx := context.Background()

	customer := seedCustomer(t, s, orgID, "Jane Doe")
	device := seedDevice(t, s, orgID, customer.ID, "laptop")
	repair := seedRepair(t, s, orgID, customer.ID, device.ID)

	item := &model.RepairItem{RepairID: repair.ID, Description: "Replacement screen", UnitPrice: 89.99}
	require.NoError(t, s.CreateRepairItem(ctx, orgID, item))

	quote := &model.Quote{RepairID: repair.ID, Subtotal: 89.99, Tax: 6.3, Total: 96.29}
	require.NoError(t, s.CreateQuote(ctx, orgID, quote))

	invoice := &model.Invoice{RepairID: repair.ID, Subtotal: 89.99, Tax: 6.3, Total: 96.29}
	require.NoError(t, s.CreateInvoice(ctx, orgID, invoice))

	return customer, device, repair, item, quote, invoice
}

func TestDeleteCustomerCascades(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer, device, repair, item, quote, invoice := seedSubtree(t, s, 1)

	// A second device without repairs goes down with the customer too
	spare := seedDevice(t, s, 1, customer.ID, "phone")

	ok, err := s.DeleteCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Every row in the subtree is invisible to live reads
	gotCustomer, err := s.GetCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, gotCustomer)
	gotDevice, err := s.GetDevice(ctx, 1, device.ID)
	require.NoError(t, err)
	assert.Nil(t, gotDevice)
	gotSpare, err := s.GetDevice(ctx, 1, spare.ID)
	require.NoError(t, err)
	assert.Nil(t, gotSpare)
	gotRepair, err := s.GetRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, gotRepair)
	gotItem, err := s.GetRepairItem(ctx, 1, item.ID)
	require.NoError(t, err)
	assert.Nil(t, gotItem)
	gotQuote, err := s.GetQuote(ctx, 1, quote.ID)
	require.NoError(t, err)
	assert.Nil(t, gotQuote)
	gotInvoice, err := s.GetInvoice(ctx, 1, invoice.ID)
	require.NoError(t, err)
	assert.Nil(t, gotInvoice)

	// The rows still exist, marked trashed
	var trashed model.Repair
	require.NoError(t, s.DB().First(&trashed, repair.ID).Error)
	assert.True(t, trashed.Deleted)
	assert.NotNil(t, trashed.DeletedAt)

	// Deleting an already trashed customer reads as not found
	ok, err = s.DeleteCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCustomerCascadesTransferredDevice(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	// The repair is filed while the device belongs to the first customer
	original := seedCustomer(t, s, 1, "Paula")
	device := seedDevice(t, s, 1, original.ID, "laptop")
	repair := seedRepair(t, s, 1, original.ID, device.ID)

	// Hand the device to a second customer; the repair keeps the old
	// customer_id
	newOwner := seedCustomer(t, s, 1, "Quinn")
	updated, err := s.UpdateDevice(ctx, 1, device.ID, map[string]interface{}{"customer_id": newOwner.ID})
	require.NoError(t, err)
	require.Equal(t, newOwner.ID, updated.CustomerID)

	ok, err := s.DeleteCustomer(ctx, 1, newOwner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The repair goes down with the device even though it still points at
	// the original customer
	gotDevice, err := s.GetDevice(ctx, 1, device.ID)
	require.NoError(t, err)
	assert.Nil(t, gotDevice)
	gotRepair, err := s.GetRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, gotRepair)

	// The original customer is untouched
	stillThere, err := s.GetCustomer(ctx, 1, original.ID)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)
}

func TestDeleteDeviceCascadesOnlyItsRepairs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Kim")
	device := seedDevice(t, s, 1, customer.ID, "laptop")
	other := seedDevice(t, s, 1, customer.ID, "tablet")
	repair := seedRepair(t, s, 1, customer.ID, device.ID)
	otherRepair := seedRepair(t, s, 1, customer.ID, other.ID)

	ok, err := s.DeleteDevice(ctx, 1, device.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// The customer and the sibling device's repair are untouched
	live, err := s.GetRepair(ctx, 1, otherRepair.ID)
	require.NoError(t, err)
	assert.NotNil(t, live)
	stillThere, err := s.GetCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	assert.NotNil(t, stillThere)
}

func TestRestoreIsShallow(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer, device, repair, item, _, _ := seedSubtree(t, s, 1)

	ok, err := s.DeleteCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// Restoring the customer brings back exactly one row
	restored, err := s.RestoreCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)

	gotDevice, err := s.GetDevice(ctx, 1, device.ID)
	require.NoError(t, err)
	assert.Nil(t, gotDevice, "devices stay trashed on customer restore")

	gotRepair, err := s.GetRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, gotRepair, "repairs stay trashed on customer restore")

	// Restoring the repair does not revive its line items
	restoredRepair, err := s.RestoreRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	require.NotNil(t, restoredRepair)

	gotItem, err := s.GetRepairItem(ctx, 1, item.ID)
	require.NoError(t, err)
	assert.Nil(t, gotItem, "items stay trashed on repair restore")

	// Restoring a live row reads as not found
	again, err := s.RestoreCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	assert.Nil(t, again)

	// Cross-tenant restore reads as not found
	ok, err = s.DeleteRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	require.True(t, ok)
	foreign, err := s.RestoreRepair(ctx, 2, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)
}

func TestDeleteTechnicianUnassignsRepairs(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Liam")
	device := seedDevice(t, s, 1, customer.ID, "desktop")
	technician := &model.Technician{Name: "Mona", Role: "senior"}
	require.NoError(t, s.CreateTechnician(ctx, 1, technician))

	repair := &model.Repair{CustomerID: customer.ID, DeviceID: device.ID, TechnicianID: &technician.ID}
	require.NoError(t, s.CreateRepair(ctx, 1, repair))

	ok, err := s.DeleteTechnician(ctx, 1, technician.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The repair survives, unassigned
	got, err := s.GetRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.TechnicianID)

	// Restoring the technician does not reattach anything
	restored, err := s.RestoreTechnician(ctx, 1, technician.ID)
	require.NoError(t, err)
	require.NotNil(t, restored)
	got, err = s.GetRepair(ctx, 1, repair.ID)
	require.NoError(t, err)
	assert.Nil(t, got.TechnicianID)
}

func TestDeleteInventoryItemUnlinksRepairItems(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer := seedCustomer(t, s, 1, "Nina")
	device := seedDevice(t, s, 1, customer.ID, "phone")
	repair := seedRepair(t, s, 1, customer.ID, device.ID)

	stock := &model.InventoryItem{Name: "Battery", SKU: "BAT-01", Quantity: 12}
	require.NoError(t, s.CreateInventoryItem(ctx, 1, stock))

	item := &model.RepairItem{RepairID: repair.ID, Description: "Battery swap", InventoryItemID: &stock.ID, UnitPrice: 45}
	require.NoError(t, s.CreateRepairItem(ctx, 1, item))

	ok, err := s.DeleteInventoryItem(ctx, 1, stock.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// The line item survives with its price, minus the stock reference
	got, err := s.GetRepairItem(ctx, 1, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.InventoryItemID)
	assert.Equal(t, 45.0, got.UnitPrice)
}

func TestDeleteOrganizationDataWipesOneTenant(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	wipedCustomer, _, _, _, _, _ := seedSubtree(t, s, 1)
	otherCustomer, _, otherRepair, _, _, _ := seedSubtree(t, s, 2)

	// Trashed rows are wiped too
	ok, err := s.DeleteCustomer(ctx, 1, wipedCustomer.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.DeleteAllOrganizationData(ctx, 1))

	for _, table := range []interface{}{
		&model.Customer{}, &model.Device{}, &model.Repair{}, &model.RepairItem{},
		&model.Quote{}, &model.Invoice{}, &model.Technician{}, &model.InventoryItem{},
		&model.NumberSequence{},
	} {
		var n int64
		require.NoError(t, s.DB().Model(table).Where("organization_id = ?", 1).Count(&n).Error)
		assert.Zero(t, n)
	}

	// The other tenant is untouched
	got, err := s.GetCustomer(ctx, 2, otherCustomer.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	gotRepair, err := s.GetRepair(ctx, 2, otherRepair.ID)
	require.NoError(t, err)
	assert.NotNil(t, gotRepair)

	// Sequences restart from scratch after the wipe
	customer := seedCustomer(t, s, 1, "Olive")
	device := seedDevice(t, s, 1, customer.ID, "laptop")
	repair := seedRepair(t, s, 1, customer.ID, device.ID)
	assert.Equal(t, "RT-1001", repair.TicketNumber)
}

func TestDeleteOrganizationDataIsAtomic(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	customer, _, _, _, _, _ := seedSubtree(t, s, 1)

	// Break the last table in the wipe order so the transaction fails
	// after most deletes have already run
	require.NoError(t, s.DB().Migrator().DropTable(&model.NumberSequence{}))

	err := s.DeleteAllOrganizationData(ctx, 1)
	require.Error(t, err)

	// Everything rolled back
	got, err := s.GetCustomer(ctx, 1, customer.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)

	var n int64
	require.NoError(t, s.DB().Model(&model.Invoice{}).Where("organization_id = ?", 1).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
