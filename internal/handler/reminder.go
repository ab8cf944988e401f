package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/pkg/httputil"
)

// TickRunner runs one reminder pass on demand.
type TickRunner interface {
	RunTick(ctx context.Context) (model.TickStats, error)
}

type ReminderHandler struct {
	runner TickRunner
}

func NewReminderHandler(runner TickRunner) *ReminderHandler {
	return &ReminderHandler{runner: runner}
}

// Tick triggers a manual scheduler pass and reports its stats. Useful for
// smoke checks after deploys and for poking a stuck environment.
func (h *ReminderHandler) Tick(c *gin.Context) {
	stats, err := h.runner.RunTick(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, stats)
}
