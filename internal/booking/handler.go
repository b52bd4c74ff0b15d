package booking

import (
	"net/http"

	"groundslot/internal/api"
	"groundslot/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type PaymentCapturedRequest struct {
	SlotIDs       []string `json:"slotIds" binding:"required,min=1,dive,required"`
	CustomerName  string   `json:"customerName" binding:"required"`
	CustomerPhone string   `json:"customerPhone"`
	Amount        int64    `json:"amount" binding:"gte=0"`
	ExternalRef   string   `json:"externalRef"`
	Channel       string   `json:"channel"`
}

type CounterSaleRequest struct {
	SlotIDs       []string `json:"slotIds" binding:"required,min=1,dive,required"`
	CustomerName  string   `json:"customerName" binding:"required"`
	CustomerPhone string   `json:"customerPhone"`
	Amount        int64    `json:"amount" binding:"gte=0"`
}

// PaymentCaptured godoc
// @Summary      Confirm a paid booking
// @Description  Final payment signal. Books the slots regardless of holds. Repeated signals with the same externalRef return the existing booking with created=false.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body     booking.PaymentCapturedRequest true "Captured payment"
// @Success      200     {object} booking.ConfirmResponse "Duplicate signal"
// @Success      201     {object} booking.ConfirmResponse
// @Failure      400     {object} api.ErrorResponse
// @Failure      403     {object} api.ErrorResponse
// @Failure      404     {object} api.ErrorResponse
// @Failure      409     {object} api.ErrorResponse
// @Failure      500     {object} api.ErrorResponse
// @Router       /payments/captured [post]
func (h *Handler) PaymentCaptured(c *gin.Context) {
	var req PaymentCapturedRequest
	if !api.BindJSON(c, &req) {
		return
	}

	channel := req.Channel
	if channel == "" {
		channel, _ = auth.GetChannelID(c)
	}

	h.confirm(c, ConfirmInput{
		SlotIDs:       req.SlotIDs,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Amount:        req.Amount,
		Channel:       channel,
		ExternalRef:   req.ExternalRef,
	})
}

// CounterSale godoc
// @Summary      Sell slots at the front desk
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body     booking.CounterSaleRequest true "Walk-in sale"
// @Success      201     {object} booking.ConfirmResponse
// @Failure      400     {object} api.ErrorResponse
// @Failure      403     {object} api.ErrorResponse
// @Failure      404     {object} api.ErrorResponse
// @Failure      409     {object} api.ErrorResponse
// @Failure      500     {object} api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CounterSale(c *gin.Context) {
	channel, ok := auth.GetChannelID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "channel not authenticated"})
		return
	}

	var req CounterSaleRequest
	if !api.BindJSON(c, &req) {
		return
	}

	h.confirm(c, ConfirmInput{
		SlotIDs:       req.SlotIDs,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Amount:        req.Amount,
		Channel:       channel,
	})
}

func (h *Handler) confirm(c *gin.Context, in ConfirmInput) {
	b, created, err := h.service.Confirm(c.Request.Context(), in)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, ConfirmResponse{Booking: b, Created: created})
}

// GetBooking godoc
// @Summary      Get booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID path     string true "Booking ID"
// @Success      200       {object} booking.Booking
// @Failure      404       {object} api.ErrorResponse
// @Failure      500       {object} api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}
