// Package home renders the bot's home surface: a per-tenant queue overview
// with admin controls over the creation gate.
package home

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	credentialService "github.com/reviewflow/reviewbot/internal/credential/service"
	"github.com/reviewflow/reviewbot/internal/dispatch"
	"github.com/reviewflow/reviewbot/internal/platform"
	queueModel "github.com/reviewflow/reviewbot/internal/queue/model"
	queueService "github.com/reviewflow/reviewbot/internal/queue/service"
	settingsService "github.com/reviewflow/reviewbot/internal/settings/service"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

const (
	eventHomeOpened = "app_home_opened"

	blockAdmin           = "home_admin"
	blockWarning         = "home_warning"
	actionToggleGate     = "toggle_creation"
	actionCancelInFlight = "cancel_creation"
)

// Module wires the home surface into the dispatch router.
type Module struct {
	api      platform.API
	queue    queueService.Service
	creds    credentialService.Service
	settings settingsService.Service
	logger   *zap.SugaredLogger
}

// NewModule creates the home surface module.
func NewModule(
	api platform.API,
	queue queueService.Service,
	creds credentialService.Service,
	settings settingsService.Service,
	logger *zap.SugaredLogger,
) *Module {
	return &Module{
		api:      api,
		queue:    queue,
		creds:    creds,
		settings: settings,
		logger:   logger,
	}
}

// Bindings returns the handler registrations this module contributes.
func (m *Module) Bindings() dispatch.Bindings {
	return dispatch.Bindings{
		Events: map[string]dispatch.EventHandler{
			eventHomeOpened: m.handleHomeOpened,
		},
		Actions: []dispatch.ActionBinding{
			{BlockID: blockAdmin, ActionID: actionToggleGate, Handler: m.handleToggleGate},
			{BlockID: blockAdmin, ActionID: actionCancelInFlight, Handler: m.handleCancelInFlight},
		},
	}
}

// handleHomeOpened renders the queue overview when a user opens the home tab.
func (m *Module) handleHomeOpened(ctx context.Context, payload *dispatch.EventPayload) error {
	if payload.Event.Tab != "" && payload.Event.Tab != "home" {
		return nil
	}
	return m.publish(ctx, payload.Tenant(), payload.Event.User, "")
}

// handleToggleGate flips the tenant-wide creation gate and re-renders.
func (m *Module) handleToggleGate(ctx context.Context, payload *dispatch.InteractionPayload) error {
	id := payload.Tenant()

	allowed, err := m.queue.IsCreationAllowed(ctx, id)
	if err != nil {
		return err
	}
	if err := m.queue.UpdateCreationAllowance(ctx, id, !allowed); err != nil {
		if errors.Is(err, queueModel.ErrInvalidOperation) {
			return m.publish(ctx, id, payload.User.ID, err.Error())
		}
		return err
	}

	m.logger.Infow("creation gate toggled",
		"tenant", id.Key(),
		"user", payload.User.ID,
		"allowed", !allowed,
	)
	return m.publish(ctx, id, payload.User.ID, "")
}

// handleCancelInFlight clears the creation slot regardless of its holder.
// Clearing an empty slot is a no-op.
func (m *Module) handleCancelInFlight(ctx context.Context, payload *dispatch.InteractionPayload) error {
	id := payload.Tenant()

	if err := m.queue.CancelCreation(ctx, id, payload.User.ID, true); err != nil {
		if errors.Is(err, queueModel.ErrInvalidOperation) {
			return m.publish(ctx, id, payload.User.ID, err.Error())
		}
		return err
	}

	m.logger.Infow("in-flight creation cancelled by admin",
		"tenant", id.Key(),
		"user", payload.User.ID,
	)
	return m.publish(ctx, id, payload.User.ID, "")
}

// publish renders and publishes the home surface for one user. A non-empty
// warning is appended as a context block under the overview.
func (m *Module) publish(ctx context.Context, id tenant.Identity, userID, warning string) error {
	installed, err := m.creds.RotateIfNeeded(ctx, id)
	if err != nil {
		return err
	}
	if !installed {
		return credentialModel.ErrNotInstalled
	}

	credential, err := m.creds.Get(ctx, id)
	if err != nil {
		return err
	}

	state, err := m.queue.State(ctx, id)
	if err != nil {
		return err
	}
	branches, err := m.settings.Branches(ctx, id)
	if err != nil {
		return err
	}

	return m.api.PublishHomeSurface(ctx, credential.BotToken, userID, overviewView(state, branches, warning))
}

// overviewView builds the home surface from the queue snapshot.
func overviewView(state *queueModel.QueueState, branches []string, warning string) platform.View {
	blocks := []platform.Block{
		platform.SectionBlock("home_header", headerText(state)),
	}

	for _, branch := range branches {
		blocks = append(blocks, platform.SectionBlock("home_branch_"+branch, branchText(state, branch)))
	}

	toggleLabel := "Pause creation"
	if !state.CreationAllowed {
		toggleLabel = "Resume creation"
	}
	blocks = append(blocks, platform.ActionsBlock(blockAdmin,
		platform.Button(actionToggleGate, toggleLabel, "toggle", ""),
		platform.Button(actionCancelInFlight, "Cancel in-flight creation", "cancel", "danger"),
	))

	if warning != "" {
		blocks = append(blocks, platform.ContextBlock(blockWarning, []interface{}{
			platform.TextElement(":warning: " + warning),
		}))
	}
	return platform.HomeView(blocks)
}

func headerText(state *queueModel.QueueState) string {
	status := "open"
	if !state.CreationAllowed {
		status = "paused"
	}
	text := fmt.Sprintf("*Review queue*\nNew pull request creation is %s.", status)
	if state.ReviewInCreation != nil {
		text += fmt.Sprintf("\n<@%s> is composing a pull request right now.", state.ReviewInCreation.UserID)
	}
	return text
}

func branchText(state *queueModel.QueueState, branch string) string {
	reviews := state.ReviewQueue[branch]
	if len(reviews) == 0 {
		return fmt.Sprintf("`%s`: queue empty", branch)
	}

	text := fmt.Sprintf("`%s`: %d pending", branch, len(reviews))
	for _, review := range reviews {
		text += fmt.Sprintf("\n• <@%s>", review.UserID)
	}
	return text
}
