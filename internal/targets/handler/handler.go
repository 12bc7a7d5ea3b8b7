// Package handler exposes target CRUD over HTTP. Mutations are admin-only.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"salesops_backend/internal/targets/repository"
	"salesops_backend/internal/targets/service"
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

// TargetRequest creates or replaces a target.
type TargetRequest struct {
	Name            string      `json:"name" validate:"required"`
	PeriodStart     string      `json:"periodStart" validate:"required"`
	PeriodEnd       string      `json:"periodEnd" validate:"required"`
	GoalAmountCents int64       `json:"goalAmountCents" validate:"required,gt=0"`
	AssignedUserIDs []uuid.UUID `json:"assignedUserIds"`
	IsActive        *bool       `json:"isActive"`
}

func (r TargetRequest) toParams(createdBy uuid.UUID) (repository.CreateParams, error) {
	start, err := time.Parse("2006-01-02", r.PeriodStart)
	if err != nil {
		return repository.CreateParams{}, err
	}
	end, err := time.Parse("2006-01-02", r.PeriodEnd)
	if err != nil {
		return repository.CreateParams{}, err
	}
	// Windows are date-based; the end day counts in full.
	end = end.Add(24*time.Hour - time.Second)
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}
	return repository.CreateParams{
		Name:            r.Name,
		PeriodStart:     start,
		PeriodEnd:       end,
		GoalAmountCents: r.GoalAmountCents,
		AssignedUserIDs: r.AssignedUserIDs,
		IsActive:        isActive,
		CreatedBy:       createdBy,
	}, nil
}

// TargetResponse is the transport representation of a target.
type TargetResponse struct {
	ID                  uuid.UUID   `json:"id"`
	Name                string      `json:"name"`
	PeriodStart         time.Time   `json:"periodStart"`
	PeriodEnd           time.Time   `json:"periodEnd"`
	GoalAmountCents     int64       `json:"goalAmountCents"`
	AchievedAmountCents int64       `json:"achievedAmountCents"`
	AssignedUserIDs     []uuid.UUID `json:"assignedUserIds,omitempty"`
	IsActive            bool        `json:"isActive"`
	CreatedBy           uuid.UUID   `json:"createdBy"`
	CreatedAt           time.Time   `json:"createdAt"`
}

func toResponse(t repository.Target) TargetResponse {
	return TargetResponse{
		ID:                  t.ID,
		Name:                t.Name,
		PeriodStart:         t.PeriodStart,
		PeriodEnd:           t.PeriodEnd,
		GoalAmountCents:     t.GoalAmountCents,
		AchievedAmountCents: t.AchievedAmountCents,
		AssignedUserIDs:     t.AssignedUserIDs,
		IsActive:            t.IsActive,
		CreatedBy:           t.CreatedBy,
		CreatedAt:           t.CreatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	targets, err := h.svc.List(c.Request.Context(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]TargetResponse, 0, len(targets))
	for _, t := range targets {
		out = append(out, toResponse(t))
	}
	httpkit.OK(c, gin.H{"items": out})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid target id", nil)
		return
	}
	target, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(target))
}

func (h *Handler) Create(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	params, err := req.toParams(identity.UserID())
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid period date, expected YYYY-MM-DD", nil)
		return
	}
	target, err := h.svc.Create(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(target))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid target id", nil)
		return
	}
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	params, err := req.toParams(identity.UserID())
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid period date, expected YYYY-MM-DD", nil)
		return
	}
	target, err := h.svc.Update(c.Request.Context(), id, params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toResponse(target))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid target id", nil)
		return
	}
	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}
