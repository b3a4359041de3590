package webhook

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/reviewflow/reviewbot/internal/dispatch"
)

// RegisterRoutes registers the platform webhook routes.
func RegisterRoutes(r *gin.Engine, router *dispatch.Router, responder CommandResponder, logger *zap.SugaredLogger) {
	h := New(router, responder, logger)

	r.POST("/slack/commands", h.Commands)
	r.POST("/slack/interactions", h.Interactions)
	r.POST("/slack/events", h.Events)
}
