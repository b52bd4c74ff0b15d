package lock

import (
	"math"
	"net/http"
	"time"

	"groundslot/internal/api"
	"groundslot/internal/apperror"
	"groundslot/internal/auth"

	"github.com/gin-gonic/gin"
)

// maxTTLMs is the largest ttlMs that converts to a Duration without overflow.
const maxTTLMs = math.MaxInt64 / int64(time.Millisecond)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type AcquireRequest struct {
	SlotID   string            `json:"slotId" binding:"required" example:"5f0c6a3e-2a9b-4f7e-9d0e-7c1b2a3d4e5f"`
	TTLMs    *int64            `json:"ttlMs,omitempty" binding:"omitempty,gt=0" example:"300000"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type AcquireResponse struct {
	HoldID    string    `json:"holdId"`
	SlotID    string    `json:"slotId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Acquire godoc
// @Summary      Hold a slot
// @Description  Grants the calling channel a time-bound exclusive hold on an available slot.
// @Tags         locks
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body     lock.AcquireRequest true "Slot and optional TTL"
// @Success      200     {object} lock.AcquireResponse
// @Failure      400     {object} api.ErrorResponse
// @Failure      404     {object} api.ErrorResponse
// @Failure      409     {object} api.ErrorResponse
// @Failure      500     {object} api.ErrorResponse
// @Router       /locks [post]
func (h *Handler) Acquire(c *gin.Context) {
	channelID, ok := auth.GetChannelID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "channel not authenticated"})
		return
	}

	var req AcquireRequest
	if !api.BindJSON(c, &req) {
		return
	}

	in := AcquireInput{
		SlotID:    req.SlotID,
		ChannelID: channelID,
		Metadata:  req.Metadata,
	}
	if req.TTLMs != nil {
		if *req.TTLMs > maxTTLMs {
			api.RespondError(c, apperror.Validation("ttlMs is out of range"))
			return
		}
		in.TTL = time.Duration(*req.TTLMs) * time.Millisecond
	}

	hold, err := h.service.Acquire(c.Request.Context(), in)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcquireResponse{
		HoldID:    hold.ID,
		SlotID:    hold.SlotID,
		ExpiresAt: hold.ExpiresAt,
	})
}

// Release godoc
// @Summary      Release a hold
// @Tags         locks
// @Security     BearerAuth
// @Produce      json
// @Param        holdID path     string true "Hold ID"
// @Success      200    {object} api.OKResponse
// @Failure      404    {object} api.ErrorResponse
// @Failure      500    {object} api.ErrorResponse
// @Router       /locks/{holdID} [delete]
func (h *Handler) Release(c *gin.Context) {
	if err := h.service.Release(c.Request.Context(), c.Param("holdID")); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.OKResponse{OK: true})
}

// GetHold godoc
// @Summary      Get a hold
// @Tags         locks
// @Security     BearerAuth
// @Produce      json
// @Param        holdID path     string true "Hold ID"
// @Success      200    {object} lock.Hold
// @Failure      404    {object} api.ErrorResponse
// @Failure      500    {object} api.ErrorResponse
// @Router       /locks/{holdID} [get]
func (h *Handler) GetHold(c *gin.Context) {
	hold, err := h.service.GetHold(c.Request.Context(), c.Param("holdID"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, hold)
}
