// Package oauth handles the platform's app-install callback.
package oauth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	credentialService "github.com/reviewflow/reviewbot/internal/credential/service"
	"github.com/reviewflow/reviewbot/internal/platform"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

// Handler handles the OAuth install callback.
type Handler struct {
	api    platform.API
	creds  credentialService.Service
	now    func() time.Time
	logger *zap.SugaredLogger
}

// New creates a new oauth handler instance.
func New(api platform.API, creds credentialService.Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		api:    api,
		creds:  creds,
		now:    time.Now,
		logger: logger,
	}
}

// Callback handles GET /oauth/callback. It exchanges the install code for
// the initial bot and user tokens and persists the tenant's credential.
func (h *Handler) Callback(c *gin.Context) {
	if errCode := c.Query("error"); errCode != "" {
		h.logger.Warnw("installation declined", "error", errCode)
		c.String(http.StatusOK, "Installation was cancelled.")
		return
	}

	code := c.Query("code")
	if code == "" {
		c.String(http.StatusBadRequest, "Missing authorization code.")
		return
	}

	resp, err := h.api.ExchangeOAuthCode(c.Request.Context(), code)
	if err != nil {
		h.logger.Errorw("oauth code exchange failed", "error", err)
		c.String(http.StatusBadGateway, "Installation failed, please try again.")
		return
	}

	credential := h.credentialFromOAuth(resp)
	if credential.BotUserID == "" {
		// Older app manifests omit bot_user_id from the exchange response.
		if info, authErr := h.api.VerifyAuth(c.Request.Context(), credential.BotToken); authErr != nil {
			h.logger.Warnw("bot identity lookup failed",
				"tenant", credential.TenantKey,
				"error", authErr,
			)
		} else {
			credential.BotUserID = info.UserID
		}
	}
	if err := h.creds.SaveInstall(c.Request.Context(), credential); err != nil {
		h.logger.Errorw("failed to persist installed credential",
			"tenant", credential.TenantKey,
			"error", err,
		)
		c.String(http.StatusInternalServerError, "Installation failed, please try again.")
		return
	}

	h.logger.Infow("app installed", "tenant", credential.TenantKey)
	c.String(http.StatusOK, "Installation complete. You can close this tab.")
}

// credentialFromOAuth maps the token exchange response onto a credential
// record. Expiry instants are only set for rotating tokens; a zero
// expires_in means the token never rotates.
func (h *Handler) credentialFromOAuth(resp *platform.OAuthResponse) *credentialModel.Credential {
	id := tenant.Derive(tenant.Source{
		EnterpriseID:        resp.Enterprise.ID,
		TeamID:              resp.Team.ID,
		IsEnterpriseInstall: resp.IsEnterprise,
	})

	credential := &credentialModel.Credential{
		TenantKey:           id.Key(),
		EnterpriseID:        resp.Enterprise.ID,
		TeamID:              resp.Team.ID,
		IsEnterpriseInstall: resp.IsEnterprise,
		BotUserID:           resp.BotUserID,
		BotToken:            resp.AccessToken,
		BotRefreshToken:     resp.RefreshToken,
		UserID:              resp.AuthedUser.ID,
		UserToken:           resp.AuthedUser.AccessToken,
		UserRefreshToken:    resp.AuthedUser.RefreshToken,
	}

	if resp.ExpiresIn > 0 {
		expiresAt := h.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		credential.BotTokenExpiresAt = &expiresAt
	}
	if resp.AuthedUser.ExpiresIn > 0 {
		expiresAt := h.now().Add(time.Duration(resp.AuthedUser.ExpiresIn) * time.Second)
		credential.UserTokenExpiresAt = &expiresAt
	}
	return credential
}
