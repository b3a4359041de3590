// Package platform provides the chat-platform Web API client.
package platform

import (
	"context"
	"fmt"
)

// Block is an opaque rich-message block payload.
type Block map[string]interface{}

// View is an opaque modal or home-surface view payload.
type View map[string]interface{}

// MessageMetadata is the opaque structured state embedded in a message.
// It is round-tripped through the platform, never stored server-side.
type MessageMetadata struct {
	EventType    string                 `json:"event_type"`
	EventPayload map[string]interface{} `json:"event_payload"`
}

// MessageRequest describes a message to post or update.
type MessageRequest struct {
	Channel   string           `json:"channel"`
	Timestamp string           `json:"ts,omitempty"`
	ThreadTS  string           `json:"thread_ts,omitempty"`
	Text      string           `json:"text,omitempty"`
	Blocks    []Block          `json:"blocks,omitempty"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// MessageResponse is the platform's reply to a message operation.
type MessageResponse struct {
	Channel   string `json:"channel"`
	Timestamp string `json:"ts"`
}

// ViewResponse identifies an opened or updated view.
type ViewResponse struct {
	ID string `json:"id"`
}

// UserInfo is the display profile of a platform user.
type UserInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RealName    string `json:"real_name"`
	DisplayName string `json:"display_name"`
	Image       string `json:"image_48"`
}

// AuthedUser carries the user-scoped token half of an OAuth response.
type AuthedUser struct {
	ID           string `json:"id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// OAuthResponse is the platform's reply to a token exchange or refresh.
type OAuthResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	ExpiresIn    int64      `json:"expires_in"`
	BotUserID    string     `json:"bot_user_id"`
	Team         IDName     `json:"team"`
	Enterprise   IDName     `json:"enterprise"`
	IsEnterprise bool       `json:"is_enterprise_install"`
	AuthedUser   AuthedUser `json:"authed_user"`
}

// IDName is a nested id/name object in platform responses.
type IDName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AuthInfo is the platform's reply to an auth verification call.
type AuthInfo struct {
	UserID       string `json:"user_id"`
	TeamID       string `json:"team_id"`
	EnterpriseID string `json:"enterprise_id"`
	BotID        string `json:"bot_id"`
}

// APIError is a non-ok platform response.
type APIError struct {
	// Method is the Web API method that failed (e.g. chat.postMessage).
	Method string
	// Code is the platform error code (e.g. channel_not_found).
	Code string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("platform call %s failed: %s", e.Method, e.Code)
}

// API is the chat-platform Web API surface used by the bot.
type API interface {
	// PostMessage posts a new message to a channel.
	PostMessage(ctx context.Context, token string, req *MessageRequest) (*MessageResponse, error)

	// UpdateMessage rewrites an existing message in place.
	UpdateMessage(ctx context.Context, token string, req *MessageRequest) (*MessageResponse, error)

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, token, channel, timestamp string) error

	// OpenModal opens a modal view for the interaction's trigger.
	OpenModal(ctx context.Context, token, triggerID string, view View) (*ViewResponse, error)

	// PushModal stacks a modal on top of the currently open one.
	PushModal(ctx context.Context, token, triggerID string, view View) (*ViewResponse, error)

	// UpdateModal re-renders an open modal view.
	UpdateModal(ctx context.Context, token, viewID string, view View) (*ViewResponse, error)

	// PublishHomeSurface replaces a user's home surface.
	PublishHomeSurface(ctx context.Context, token, userID string, view View) error

	// RespondToCommand posts an ephemeral reply to a slash command via its
	// response URL. Needs no token; the URL itself authorizes the reply.
	RespondToCommand(ctx context.Context, responseURL, text string) error

	// GetUserInfo fetches a user's display profile.
	GetUserInfo(ctx context.Context, token, userID string) (*UserInfo, error)

	// RefreshOAuthToken redeems a refresh token via the refresh grant.
	RefreshOAuthToken(ctx context.Context, refreshToken string) (*OAuthResponse, error)

	// ExchangeOAuthCode redeems an install code for the initial tokens.
	ExchangeOAuthCode(ctx context.Context, code string) (*OAuthResponse, error)

	// VerifyAuth checks a token and reports the identity behind it.
	VerifyAuth(ctx context.Context, token string) (*AuthInfo, error)
}
