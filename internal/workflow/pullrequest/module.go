package pullrequest

import (
	"context"

	"go.uber.org/zap"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	credentialService "github.com/reviewflow/reviewbot/internal/credential/service"
	"github.com/reviewflow/reviewbot/internal/dispatch"
	"github.com/reviewflow/reviewbot/internal/platform"
	queueService "github.com/reviewflow/reviewbot/internal/queue/service"
	settingsService "github.com/reviewflow/reviewbot/internal/settings/service"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

// Module wires the pull-request workflow into the dispatch router.
type Module struct {
	api      platform.API
	queue    queueService.Service
	creds    credentialService.Service
	settings settingsService.Service
	logger   *zap.SugaredLogger
}

// NewModule creates the pull-request workflow module.
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
// Review actions bind by block id only; the handler dispatches on the
// action id itself.
func (m *Module) Bindings() dispatch.Bindings {
	return dispatch.Bindings{
		Commands: map[string]dispatch.CommandHandler{
			createCommand: m.handleCreateCommand,
		},
		Actions: []dispatch.ActionBinding{
			{BlockID: blockManage, ActionID: actionManageDetails, Handler: m.handleManageDetails},
			{BlockID: blockReviewActions, Handler: m.handleReviewAction},
		},
		ViewSubmissions: map[string]dispatch.ViewHandler{
			wizardCallbackID:  m.handleWizardSubmit,
			detailsCallbackID: m.handleDetailsSubmit,
		},
		ViewClosed: map[string]dispatch.ViewHandler{
			wizardCallbackID: m.handleWizardClosed,
		},
	}
}

// botToken rotates the tenant's credential if due and returns the bot token.
// Returns ErrNotInstalled when no credential exists for the tenant.
func (m *Module) botToken(ctx context.Context, id tenant.Identity) (string, error) {
	installed, err := m.creds.RotateIfNeeded(ctx, id)
	if err != nil {
		return "", err
	}
	if !installed {
		return "", credentialModel.ErrNotInstalled
	}

	credential, err := m.creds.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return credential.BotToken, nil
}
