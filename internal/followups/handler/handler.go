// Package handler exposes the follow-up work queue over HTTP.
package handler

import (
	"net/http"
	"time"

	"salesops_backend/internal/followups/repository"
	"salesops_backend/internal/followups/service"
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

// CompleteRequest carries optional notes appended on completion.
type CompleteRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

// FollowupResponse is the transport representation of a follow-up.
type FollowupResponse struct {
	ID              uuid.UUID  `json:"id"`
	FollowupRef     string     `json:"followupRef"`
	LeadID          uuid.UUID  `json:"leadId"`
	LeadRef         string     `json:"leadRef"`
	LeadNumber      int64      `json:"leadNumber"`
	CustomerName    string     `json:"customerName"`
	CustomerPhone   string     `json:"customerPhone"`
	ProductName     string     `json:"productName,omitempty"`
	SalesPriceCents int64      `json:"salesPriceCents"`
	FollowupType    string     `json:"followupType"`
	ScheduledAt     *time.Time `json:"scheduledAt,omitempty"`
	AssignedTo      *uuid.UUID `json:"assignedTo,omitempty"`
	IsDone          bool       `json:"isDone"`
	CompletedBy     *uuid.UUID `json:"completedBy,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

func toResponse(fu repository.Followup) FollowupResponse {
	return FollowupResponse{
		ID:              fu.ID,
		FollowupRef:     fu.FollowupRef,
		LeadID:          fu.LeadID,
		LeadRef:         fu.LeadRef,
		LeadNumber:      fu.LeadNumber,
		CustomerName:    fu.CustomerName,
		CustomerPhone:   fu.CustomerPhone,
		ProductName:     fu.ProductName,
		SalesPriceCents: fu.SalesPriceCents,
		FollowupType:    fu.FollowupType,
		ScheduledAt:     fu.ScheduledAt,
		AssignedTo:      fu.AssignedTo,
		IsDone:          fu.IsDone,
		CompletedBy:     fu.CompletedBy,
		CompletedAt:     fu.CompletedAt,
		Notes:           fu.Notes,
		CreatedAt:       fu.CreatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	filter := repository.ListFilter{
		PendingOnly: c.Query("pending") == "true",
	}
	if raw := c.Query("leadId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid leadId", nil)
			return
		}
		filter.LeadID = &id
	}
	if raw := c.Query("assignedTo"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid assignedTo", nil)
			return
		}
		filter.AssignedTo = &id
	}

	items, err := h.svc.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]FollowupResponse, 0, len(items))
	for _, fu := range items {
		out = append(out, toResponse(fu))
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid follow-up id", nil)
		return
	}
	fu, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(fu))
}

func (h *Handler) Complete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid follow-up id", nil)
		return
	}

	var req CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	fu, err := h.svc.Complete(c.Request.Context(), id, identity.UserID(), req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(fu))
}
