package service

import (
	"salesops_backend/internal/leads/domain"
	"salesops_backend/internal/leads/transport"
	"salesops_backend/platform/phone"
)

// applyUpdate merges the payload onto the lead through an explicit allow-list,
// so a client can never overwrite identity, version, or history through the
// update body. It returns a diff of changed fields for the history entry and
// reports whether the product list was replaced.
func applyUpdate(lead *domain.Lead, req *transport.UpdateLeadRequest) (diff map[string]any, productsChanged bool) {
	diff = make(map[string]any)

	setStr := func(field string, dst *string, src *string) {
		if src == nil || *src == *dst {
			return
		}
		diff[field] = map[string]any{"from": *dst, "to": *src}
		*dst = *src
	}
	setInt := func(field string, dst *int64, src *int64) {
		if src == nil || *src == *dst {
			return
		}
		diff[field] = map[string]any{"from": *dst, "to": *src}
		*dst = *src
	}

	if req.Status != nil && domain.Status(*req.Status) != lead.Status {
		diff["status"] = map[string]any{"from": string(lead.Status), "to": *req.Status}
		lead.Status = domain.Status(*req.Status)
	}

	if req.AssignedAgentID.Set {
		diff["assignedAgentId"] = map[string]any{"from": lead.AssignedAgentID, "to": req.AssignedAgentID.Value}
		lead.AssignedAgentID = req.AssignedAgentID.Value
	}

	if req.CustomerPhone != nil {
		normalized := phone.NormalizeE164(*req.CustomerPhone)
		setStr("customerPhone", &lead.CustomerPhone, &normalized)
	}
	setStr("customerName", &lead.CustomerName, req.CustomerName)
	setStr("customerEmail", &lead.CustomerEmail, req.CustomerEmail)
	setStr("customerAddress", &lead.CustomerAddress, req.CustomerAddress)

	setInt("salesPriceCents", &lead.SalesPriceCents, req.SalesPriceCents)
	setInt("costPriceCents", &lead.CostPriceCents, req.CostPriceCents)

	setStr("paymentMode", &lead.PaymentMode, req.PaymentMode)
	setStr("paymentPortal", &lead.PaymentPortal, req.PaymentPortal)
	setStr("disputeReason", &lead.DisputeReason, req.DisputeReason)
	setStr("refundStatus", &lead.RefundStatus, req.RefundStatus)

	if req.Products != nil {
		products := make([]domain.Product, 0, len(*req.Products))
		for _, pi := range *req.Products {
			products = append(products, pi.ToDomain())
		}
		lead.Products = products
		productsChanged = true
		diff["products"] = map[string]any{"count": len(products)}
	}

	// Margin is stored redundantly and must always track the price fields.
	margin := lead.SalesPriceCents - lead.CostPriceCents
	if margin != lead.TotalMarginCents {
		lead.TotalMarginCents = margin
	}

	return diff, productsChanged
}

func valueOr(v *int64, fallback int64) int64 {
	if v != nil {
		return *v
	}
	return fallback
}

func strValueOr(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}
