// Package handler exposes the audit trail to admins.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"salesops_backend/internal/audit/repository"
	"salesops_backend/internal/audit/service"
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

// EntryResponse is the transport representation of an audit entry.
type EntryResponse struct {
	ID        uuid.UUID       `json:"id"`
	ActorID   uuid.UUID       `json:"actorId"`
	ActorName string          `json:"actorName"`
	Action    string          `json:"action"`
	Module    string          `json:"module"`
	TargetID  string          `json:"targetId"`
	Before    json.RawMessage `json:"before"`
	After     json.RawMessage `json:"after"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toResponse(e repository.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		ActorID:   e.ActorID,
		ActorName: e.ActorName,
		Action:    e.Action,
		Module:    e.Module,
		TargetID:  e.TargetID,
		Before:    e.Before,
		After:     e.After,
		CreatedAt: e.CreatedAt,
	}
}

func (h *Handler) List(c *gin.Context) {
	filter := repository.ListFilter{
		Module:   c.Query("module"),
		TargetID: c.Query("targetId"),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if raw := c.Query("actorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid actor id", nil)
			return
		}
		filter.ActorID = &id
	}

	entries, err := h.svc.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toResponse(e))
	}
	httpkit.OK(c, gin.H{"items": out})
}
