package handlers

import (
	"net/http"

	"pondwatch/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errGetControl   = "failed to load control state"
	errApplyControl = "failed to apply control update"
)

// ControlUpdateRequest is an exported model for Swagger docs of the patch payload.
type ControlUpdateRequest struct {
	// Automatic mode on/off
	Mode *bool `json:"mode,omitempty" example:"true"`
	// Emergency cutoff on/off
	Cutoff *bool `json:"cutoff,omitempty" example:"false"`
	// Heater actuator on/off
	Heater *bool `json:"heater,omitempty" example:"true"`
	// Peltier cooler on/off
	Peltier *bool `json:"peltier,omitempty" example:"false"`
	// Water pump on/off
	Pump *bool `json:"pump,omitempty" example:"true"`
}

// @Summary      Get control state
// @Tags         control
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/control [get]
// @Security     BearerAuth
func (h *Handler) getControl(c *gin.Context) {
	ctx := c.Request.Context()
	state, err := h.services.Control.Get(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetControl, "control_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// @Summary      Apply control update
// @Description  Partial update; omitted toggles keep their value. Writes are optimistic: live views see the new state first and are reverted if the write fails.
// @Tags         control
// @Accept       json
// @Produce      json
// @Param        body  body   ControlUpdateRequest  true  "Toggle payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/control [patch]
// @Security     BearerAuth
func (h *Handler) patchControl(c *gin.Context) {
	var upd service.ControlUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}

	ctx := c.Request.Context()
	state, err := h.services.Control.Apply(ctx, upd)
	if err != nil {
		// An empty update is a caller mistake; a failed write is ours.
		if state.UpdatedAt.IsZero() {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errApplyControl, "control_apply_failed", err)
		return
	}
	c.JSON(http.StatusOK, state)
}
