package slot

import (
	"net/http"
	"time"

	"groundslot/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Get slot
// @Tags         slots
// @Produce      json
// @Security     BearerAuth
// @Param        slotID path string true "Slot ID"
// @Success      200 {object} slot.Slot
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /slots/{slotID} [get]
func (h *Handler) GetSlot(c *gin.Context) {
	s, err := h.service.GetSlot(c.Request.Context(), c.Param("slotID"))
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s)
}

// @Summary      List slots of a facility
// @Tags         slots
// @Produce      json
// @Security     BearerAuth
// @Param        facilityID path  string true  "Facility ID"
// @Param        from       query string false "Start of window (RFC3339)"
// @Param        to         query string false "End of window (RFC3339)"
// @Success      200 {array}  slot.Slot
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /facilities/{facilityID}/slots [get]
func (h *Handler) ListFacilitySlots(c *gin.Context) {
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}

	slots, err := h.service.ListFacilitySlots(c.Request.Context(), c.Param("facilityID"), from, to)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, slots)
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + name + " format, use RFC3339"})
		return nil, false
	}
	return &t, true
}
