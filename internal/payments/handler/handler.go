// Package handler exposes payment records and the dispute workflow over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"salesops_backend/internal/payments/repository"
	"salesops_backend/internal/payments/service"
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

// PaymentResponse is the transport representation of a payment record.
type PaymentResponse struct {
	ID              uuid.UUID `json:"id"`
	PaymentRef      string    `json:"paymentRef"`
	LeadID          uuid.UUID `json:"leadId"`
	PaymentStatus   string    `json:"paymentStatus"`
	SalesPriceCents int64     `json:"salesPriceCents"`
	PaymentMode     string    `json:"paymentMode,omitempty"`
	PaymentPortal   string    `json:"paymentPortal,omitempty"`
	DisputeReason   string    `json:"disputeReason,omitempty"`
	RefundStatus    string    `json:"refundStatus,omitempty"`

	VendorShopName    string `json:"vendorShopName,omitempty"`
	VendorPaymentMode string `json:"vendorPaymentMode,omitempty"`
	VendorPriceCents  int64  `json:"vendorPriceCents,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(p repository.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		PaymentRef:      p.PaymentRef,
		LeadID:          p.LeadID,
		PaymentStatus:   p.PaymentStatus,
		SalesPriceCents: p.SalesPriceCents,
		PaymentMode:     p.PaymentMode,
		PaymentPortal:   p.PaymentPortal,
		DisputeReason:   p.DisputeReason,
		RefundStatus:    p.RefundStatus,

		VendorShopName:    p.VendorShopName,
		VendorPaymentMode: p.VendorPaymentMode,
		VendorPriceCents:  p.VendorPriceCents,

		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, err := h.svc.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]PaymentResponse, 0, len(records))
	for _, p := range records {
		out = append(out, toResponse(p))
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	record, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(record))
}

func (h *Handler) GetByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}
	record, err := h.svc.GetByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(record))
}

// UpdateDisputeRequest patches the dispute and refund fields. All fields are
// optional; omitted fields keep their stored values.
type UpdateDisputeRequest struct {
	PaymentStatus *string `json:"paymentStatus"`
	DisputeReason *string `json:"disputeReason"`
	RefundStatus  *string `json:"refundStatus"`
}

func (h *Handler) UpdateDispute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid payment id", nil)
		return
	}
	var req UpdateDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	record, err := h.svc.UpdateDispute(c.Request.Context(), id, req.PaymentStatus, req.DisputeReason, req.RefundStatus)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(record))
}
