package store

import (
	"context"

	"repairshop-service/internal/model"
)

// RepairItemDetail is a repair line item enriched with the inventory item it
// references, when it references one that is still live.
type RepairItemDetail struct {
	model.RepairItem
	InventoryItem *model.InventoryItem `json:"inventory_item,omitempty"`
}

// RepairDetails is the read-side aggregate of a repair ticket and everything
// hanging off it.
type RepairDetails struct {
	model.Repair
	Customer   *model.Customer    `json:"customer,omitempty"`
	Device     *model.Device      `json:"device,omitempty"`
	Technician *model.Technician  `json:"technician,omitempty"`
	Items      []RepairItemDetail `json:"items"`
	Quotes     []model.Quote      `json:"quotes"`
	Invoices   []model.Invoice    `json:"invoices"`
}

// GetRepairWithRelations assembles a repair with its customer, device,
// technician, line items (each enriched with its inventory item), quotes and
// invoices. The join happens in application code over independent reads, so
// the aggregate is read-committed, not a snapshot. A failed secondary fetch
// leaves that field empty instead of failing the whole aggregate; only a
// missing repair yields nil.
func (s *Store) GetRepairWithRelations(ctx context.Context, orgID, id uint) (*RepairDetails, error) {
	repair, err := s.GetRepair(ctx, orgID, id)
	if err != nil || repair == nil {
		return nil, err
	}

	details := &RepairDetails{
		Repair:   *repair,
		Items:    []RepairItemDetail{},
		Quotes:   []model.Quote{},
		Invoices: []model.Invoice{},
	}

	if customer, err := s.GetCustomer(ctx, orgID, repair.CustomerID); err == nil {
		details.Customer = customer
	}
	if device, err := s.GetDevice(ctx, orgID, repair.DeviceID); err == nil {
		details.Device = device
	}
	if repair.TechnicianID != nil {
		if technician, err := s.GetTechnician(ctx, orgID, *repair.TechnicianID); err == nil {
			details.Technician = technician
		}
	}

	if items, err := s.GetRepairItemsByRepair(ctx, orgID, id); err == nil {
		for _, item := range items {
			detail := RepairItemDetail{RepairItem: item}
			if item.InventoryItemID != nil {
				if stock, err := s.GetInventoryItem(ctx, orgID, *item.InventoryItemID); err == nil {
					detail.InventoryItem = stock
				}
			}
			details.Items = append(details.Items, detail)
		}
	}

	if quotes, err := s.GetQuotesByRepair(ctx, orgID, id); err == nil {
		details.Quotes = quotes
	}
	if invoices, err := s.GetInvoicesByRepair(ctx, orgID, id); err == nil {
		details.Invoices = invoices
	}

	return details, nil
}
