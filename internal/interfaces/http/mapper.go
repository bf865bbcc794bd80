package http

import (
	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

func toMovementResponse(h *entity.MovementHeader) dto.MovementResponse {
	out := dto.MovementResponse{
		ID:                    h.ID,
		Process:               string(h.Process()),
		Type:                  string(h.Type),
		Reason:                string(h.Reason),
		Status:                h.Status,
		DocumentNumber:        h.DocumentNumber,
		OriginLocationID:      h.OriginLocationID,
		DestinationLocationID: h.DestinationLocationID,
		TotalCost:             h.TotalCost,
		OccurredAt:            h.OccurredAt,
		ActorID:               h.ActorID,
		CreatedAt:             h.CreatedAt,
		UpdatedAt:             h.UpdatedAt,
		Lines:                 make([]dto.MovementLineResponse, 0, len(h.Lines)),
	}
	switch {
	case h.Metadata.Sale != nil:
		out.Metadata = h.Metadata.Sale
	case h.Metadata.Purchase != nil:
		out.Metadata = h.Metadata.Purchase
	case h.Metadata.Adjustment != nil:
		out.Metadata = h.Metadata.Adjustment
	case h.Metadata.Usage != nil:
		out.Metadata = h.Metadata.Usage
	case h.Metadata.Production != nil:
		out.Metadata = h.Metadata.Production
	}
	for _, l := range h.Lines {
		out.Lines = append(out.Lines, dto.MovementLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			Direction:     string(l.Direction),
			Quantity:      l.Quantity,
			UnitCost:      l.UnitCost,
			TotalCost:     l.TotalCost,
			BatchNumber:   l.BatchNumber,
			ExpiryDate:    l.ExpiryDate,
			PreviousStock: l.PreviousStock,
			NewStock:      l.NewStock,
			Notes:         l.Notes,
		})
	}
	return out
}

func toMovementList(list []*entity.MovementHeader, page dto.PageRequest) dto.MovementListResponse {
	items := make([]dto.MovementResponse, 0, len(list))
	for _, h := range list {
		items = append(items, toMovementResponse(h))
	}
	return dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}
}

func toBalanceResponse(b *entity.Balance) dto.BalanceResponse {
	return dto.BalanceResponse{
		ProductID:      b.ProductID,
		LocationID:     b.LocationID,
		CurrentStock:   b.CurrentStock,
		MinimumStock:   b.MinimumStock,
		MaximumStock:   b.MaximumStock,
		AverageCost:    b.AverageCost,
		Active:         b.Active,
		LastMovementAt: b.LastMovementAt,
	}
}

func toLedgerResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:             e.ID,
		Source:         string(e.Source),
		HeaderID:       e.HeaderID,
		LineID:         e.LineID,
		Type:           string(e.Type),
		Reason:         string(e.Reason),
		Direction:      string(e.Direction),
		Quantity:       e.Quantity,
		UnitCost:       e.UnitCost,
		TotalCost:      e.TotalCost,
		PreviousStock:  e.PreviousStock,
		NewStock:       e.NewStock,
		AverageCost:    e.AverageCost,
		DocumentNumber: e.DocumentNumber,
		ActorID:        e.ActorID,
		CreatedAt:      e.CreatedAt,
	}
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	out := dto.TransferResponse{
		ID:              t.ID,
		DocumentNumber:  t.DocumentNumber,
		FromLocationID:  t.FromLocationID,
		ToLocationID:    t.ToLocationID,
		Status:          string(t.Status),
		Notes:           t.Notes,
		RequestedBy:     t.RequestedBy,
		RequestedAt:     t.RequestedAt,
		ApprovedAt:      t.ApprovedAt,
		RejectedAt:      t.RejectedAt,
		RejectionReason: t.RejectionReason,
		ShippedAt:       t.ShippedAt,
		ReceivedAt:      t.ReceivedAt,
		CancelledAt:     t.CancelledAt,
		TotalRequested:  t.TotalRequested,
		TotalShipped:    t.TotalShipped,
		TotalReceived:   t.TotalReceived,
		TotalCost:       t.TotalCost,
		HasDifferences:  t.HasDifferences,
		Lines:           make([]dto.TransferLineResponse, 0, len(t.Lines)),
	}
	if t.Evidence != nil {
		out.Evidence = t.Evidence
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, dto.TransferLineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			QuantityRequested: l.QuantityRequested,
			QuantityShipped:   l.QuantityShipped,
			QuantityReceived:  l.QuantityReceived,
			UnitCost:          l.UnitCost,
			Difference:        l.Difference,
			BatchNumber:       l.BatchNumber,
			ExpiryDate:        l.ExpiryDate,
			Notes:             l.Notes,
		})
	}
	return out
}

func toCountResponse(c *entity.Count) dto.CountResponse {
	out := dto.CountResponse{
		ID:             c.ID,
		LocationID:     c.LocationID,
		DocumentNumber: c.DocumentNumber,
		Status:         string(c.Status),
		CountDate:      c.CountDate,
		Notes:          c.Notes,
		StartedAt:      c.StartedAt,
		CompletedAt:    c.CompletedAt,
		CancelledAt:    c.CancelledAt,
		Lines:          make([]dto.CountLineResponse, 0, len(c.Lines)),
	}
	for _, l := range c.Lines {
		out.Lines = append(out.Lines, dto.CountLineResponse{
			ID:              l.ID,
			ProductID:       l.ProductID,
			SystemQuantity:  l.SystemQuantity,
			CountedQuantity: l.CountedQuantity,
			Difference:      l.Difference,
			Notes:           l.Notes,
		})
	}
	return out
}

func toReplenishmentDTO(list []inventory.ReplenishmentSuggestion) []dto.ReplenishmentSuggestionDTO {
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.ReplenishmentSuggestionDTO{
			ProductID:          s.ProductID,
			LocationID:         s.LocationID,
			CurrentStock:       s.CurrentStock,
			MinimumStock:       s.MinimumStock,
			TargetStock:        s.TargetStock,
			SuggestedOrderQty:  s.SuggestedQty,
			UnitCost:           s.AverageCost,
			EstimatedOrderCost: s.EstimatedCost,
			Priority:           s.Priority,
		})
	}
	return out
}

// toLineInputs convierte las líneas del body al formato del caso de uso.
func toLineInputs(in []dto.LineRequest) []inventory.LineInput {
	out := make([]inventory.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, inventory.LineInput{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			UnitCost:    l.UnitCost,
			TotalCost:   l.TotalCost,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
			Notes:       l.Notes,
		})
	}
	return out
}

func toShipments(in []dto.ShipmentLineRequest) []entity.TransferShipment {
	out := make([]entity.TransferShipment, 0, len(in))
	for _, s := range in {
		out = append(out, entity.TransferShipment{LineID: s.LineID, Quantity: s.Quantity, Notes: s.Notes})
	}
	return out
}
