// Package webhook is the HTTP boundary in front of the dispatch router.
// The platform expects a fast 2xx regardless of business outcome, so every
// endpoint acknowledges the request and surfaces failures via logs only.
// The exception is view-submission validation, which answers with the
// platform's structured field-error response.
package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	"github.com/reviewflow/reviewbot/internal/dispatch"
)

// notInstalledText is the ephemeral reply for workspaces without an install.
const notInstalledText = "This app is not installed in your workspace yet. " +
	"Ask an administrator to install it, then run the command again."

// CommandResponder is the platform API surface the boundary uses to answer
// a slash command out of band.
type CommandResponder interface {
	RespondToCommand(ctx context.Context, responseURL, text string) error
}

// Handler handles inbound platform webhooks.
type Handler struct {
	router    *dispatch.Router
	responder CommandResponder
	logger    *zap.SugaredLogger
}

// New creates a new webhook handler instance.
func New(router *dispatch.Router, responder CommandResponder, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		router:    router,
		responder: responder,
		logger:    logger,
	}
}

// Commands handles POST /slack/commands, a form-encoded slash command.
func (h *Handler) Commands(c *gin.Context) {
	payload := &dispatch.CommandPayload{
		Command:             c.PostForm("command"),
		Text:                c.PostForm("text"),
		UserID:              c.PostForm("user_id"),
		ChannelID:           c.PostForm("channel_id"),
		TriggerID:           c.PostForm("trigger_id"),
		TeamID:              c.PostForm("team_id"),
		EnterpriseID:        c.PostForm("enterprise_id"),
		IsEnterpriseInstall: c.PostForm("is_enterprise_install") == "true",
		ResponseURL:         c.PostForm("response_url"),
	}

	result := h.router.HandleCommand(c.Request.Context(), payload)
	if !result.OK {
		if errors.Is(result.Err, credentialModel.ErrNotInstalled) {
			h.respondNotInstalled(c, payload)
			return
		}
		h.logger.Warnw("command failed",
			"command", payload.Command,
			"user", payload.UserID,
			"error", result.Err,
		)
	}
	c.Status(http.StatusOK)
}

// respondNotInstalled tells the user the app has no credential for their
// workspace. Not an error condition, so logged at info only.
func (h *Handler) respondNotInstalled(c *gin.Context, payload *dispatch.CommandPayload) {
	h.logger.Infow("command from uninstalled workspace",
		"command", payload.Command,
		"user", payload.UserID,
	)

	if payload.ResponseURL == "" {
		c.String(http.StatusOK, notInstalledText)
		return
	}
	if err := h.responder.RespondToCommand(c.Request.Context(), payload.ResponseURL, notInstalledText); err != nil {
		h.logger.Warnw("failed to deliver not-installed reply",
			"user", payload.UserID,
			"error", err,
		)
	}
	c.Status(http.StatusOK)
}

// Interactions handles POST /slack/interactions. The interaction JSON
// arrives inside the form field "payload".
func (h *Handler) Interactions(c *gin.Context) {
	raw := c.PostForm("payload")

	payload, err := dispatch.DecodeInteraction([]byte(raw))
	if err != nil {
		h.logger.Warnw("undecodable interaction payload", "error", err)
		c.Status(http.StatusOK)
		return
	}

	result := h.router.HandleInteraction(c.Request.Context(), payload)
	if result.OK {
		c.Status(http.StatusOK)
		return
	}

	var fieldErrs *dispatch.FieldErrors
	if payload.Type == dispatch.InteractionViewSubmission && errors.As(result.Err, &fieldErrs) {
		c.JSON(http.StatusOK, gin.H{
			"response_action": "errors",
			"errors":          fieldErrs.Errors,
		})
		return
	}

	h.logger.Warnw("interaction failed",
		"type", payload.Type,
		"user", payload.User.ID,
		"error", result.Err,
	)
	c.Status(http.StatusOK)
}

// Events handles POST /slack/events, a JSON event callback. The
// url_verification handshake is answered inline.
func (h *Handler) Events(c *gin.Context) {
	var payload dispatch.EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warnw("undecodable event payload", "error", err)
		c.Status(http.StatusOK)
		return
	}

	if payload.Type == "url_verification" {
		c.JSON(http.StatusOK, gin.H{"challenge": payload.Challenge})
		return
	}

	result := h.router.HandleEvent(c.Request.Context(), &payload)
	if !result.OK {
		h.logger.Warnw("event failed",
			"event_type", payload.Event.Type,
			"error", result.Err,
		)
	}
	c.Status(http.StatusOK)
}
