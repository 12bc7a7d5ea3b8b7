// Package handler exposes sale records and their fulfillment workflow over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"salesops_backend/internal/sales/repository"
	"salesops_backend/internal/sales/service"
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

// SaleResponse is the transport representation of a sale.
type SaleResponse struct {
	ID              uuid.UUID `json:"id"`
	SaleRef         string    `json:"saleRef"`
	LeadID          uuid.UUID `json:"leadId"`
	LeadRef         string    `json:"leadRef"`
	CustomerName    string    `json:"customerName"`
	CustomerPhone   string    `json:"customerPhone"`
	PaymentMode     string    `json:"paymentMode,omitempty"`
	PaymentPortal   string    `json:"paymentPortal,omitempty"`
	SalesPriceCents int64     `json:"salesPriceCents"`
	CostPriceCents  int64     `json:"costPriceCents"`
	MarginCents     int64     `json:"marginCents"`
	SoldBy          uuid.UUID `json:"soldBy"`

	OrderConfirmationSent      bool       `json:"orderConfirmationSent"`
	OrderConfirmationSentAt    *time.Time `json:"orderConfirmationSentAt,omitempty"`
	Stage                      string     `json:"stage"`
	DeliveryConfirmationSent   bool       `json:"deliveryConfirmationSent"`
	DeliveryConfirmationSentAt *time.Time `json:"deliveryConfirmationSentAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(s repository.Sale) SaleResponse {
	return SaleResponse{
		ID:              s.ID,
		SaleRef:         s.SaleRef,
		LeadID:          s.LeadID,
		LeadRef:         s.LeadRef,
		CustomerName:    s.CustomerName,
		CustomerPhone:   s.CustomerPhone,
		PaymentMode:     s.PaymentMode,
		PaymentPortal:   s.PaymentPortal,
		SalesPriceCents: s.SalesPriceCents,
		CostPriceCents:  s.CostPriceCents,
		MarginCents:     s.MarginCents,
		SoldBy:          s.SoldBy,

		OrderConfirmationSent:      s.OrderConfirmationSent,
		OrderConfirmationSentAt:    s.OrderConfirmationSentAt,
		Stage:                      s.Stage,
		DeliveryConfirmationSent:   s.DeliveryConfirmationSent,
		DeliveryConfirmationSentAt: s.DeliveryConfirmationSentAt,

		CreatedAt: s.CreatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	sales, err := h.svc.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		out = append(out, toResponse(s))
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid sale id", nil)
		return
	}
	sale, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(sale))
}

func (h *Handler) GetByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid lead id", nil)
		return
	}
	sale, err := h.svc.GetByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(sale))
}

func (h *Handler) MarkOrderConfirmation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid sale id", nil)
		return
	}
	sale, err := h.svc.MarkOrderConfirmationSent(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(sale))
}

// UpdateStageRequest moves the sale along its fulfillment pipeline.
type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required"`
}

func (h *Handler) UpdateStage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid sale id", nil)
		return
	}
	var req UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	sale, err := h.svc.UpdateStage(c.Request.Context(), id, req.Stage)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(sale))
}

func (h *Handler) MarkDeliveryConfirmation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid sale id", nil)
		return
	}
	sale, err := h.svc.MarkDeliveryConfirmationSent(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(sale))
}
