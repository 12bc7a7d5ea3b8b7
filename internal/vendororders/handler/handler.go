// Package handler exposes vendor orders over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"salesops_backend/internal/vendororders/repository"
	"salesops_backend/internal/vendororders/service"
	"salesops_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// OrderResponse is the transport representation of a vendor order.
type OrderResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderNo     string    `json:"orderNo"`
	LeadID      uuid.UUID `json:"leadId"`
	CustomerID  uuid.UUID `json:"customerId"`
	LeadRef     string    `json:"leadRef"`
	ProductName string    `json:"productName"`
	ProductType string    `json:"productType,omitempty"`
	OrderStatus string    `json:"orderStatus"`

	SalesPriceCents int64  `json:"salesPriceCents"`
	ShippingAddress string `json:"shippingAddress,omitempty"`

	VendorShopName    string `json:"vendorShopName,omitempty"`
	VendorAddress     string `json:"vendorAddress,omitempty"`
	VendorPhone       string `json:"vendorPhone,omitempty"`
	VendorPaymentMode string `json:"vendorPaymentMode,omitempty"`
	VendorPriceCents  int64  `json:"vendorPriceCents"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(o repository.VendorOrder) OrderResponse {
	return OrderResponse{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		LeadID:      o.LeadID,
		CustomerID:  o.CustomerID,
		LeadRef:     o.LeadRef,
		ProductName: o.ProductName,
		ProductType: o.ProductType,
		OrderStatus: o.OrderStatus,

		SalesPriceCents: o.SalesPriceCents,
		ShippingAddress: o.ShippingAddress,

		VendorShopName:    o.VendorShopName,
		VendorAddress:     o.VendorAddress,
		VendorPhone:       o.VendorPhone,
		VendorPaymentMode: o.VendorPaymentMode,
		VendorPriceCents:  o.VendorPriceCents,

		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	var filter repository.ListFilter
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if raw := c.Query("leadId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
			return
		}
		filter.LeadID = &id
	}
	if raw := c.Query("customerId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid customer id", nil)
			return
		}
		filter.CustomerID = &id
	}

	orders, err := h.svc.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toResponse(o))
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return
	}
	order, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(order))
}

// UpdateStatusRequest moves the order along the vendor pipeline.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid order id", nil)
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	order, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(order))
}
