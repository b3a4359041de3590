package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/reviewflow/reviewbot/internal/config"
)

// Client is the HTTP implementation of API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	logger       *zap.SugaredLogger
}

// NewClient creates a platform API client from configuration.
func NewClient(cfg config.PlatformConfig, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http:         &http.Client{Timeout: cfg.RequestTimeout},
		logger:       logger,
	}
}

// envelope is the uniform ok/error wrapper on every platform response.
type envelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// postJSON performs a bearer-authenticated JSON call and decodes the reply
// into out. A non-ok reply is logged and returned as *APIError.
func (c *Client) postJSON(ctx context.Context, method, token string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	uri := c.baseURL + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, method, uri, out)
}

// postForm performs a form-encoded call (OAuth endpoints) and decodes the
// reply into out.
func (c *Client) postForm(ctx context.Context, method string, values url.Values, out interface{}) error {
	uri := c.baseURL + "/" + method
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, uri, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.send(req, method, uri, out)
}

// send executes the request and maps transport and platform failures to errors.
func (c *Client) send(req *http.Request, method, uri string, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Errorw("platform call transport failure",
			"method", method,
			"uri", uri,
			"error", err,
		)
		return fmt.Errorf("platform call %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("failed to decode %s envelope: %w", method, err)
	}
	if !env.OK {
		c.logger.Errorw("platform call rejected",
			"method", method,
			"uri", uri,
			"platform_error", env.Error,
		)
		return &APIError{Method: method, Code: env.Error}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", method, err)
		}
	}
	return nil
}

// PostMessage posts a new message to a channel.
func (c *Client) PostMessage(ctx context.Context, token string, req *MessageRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "chat.postMessage", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMessage rewrites an existing message in place.
func (c *Client) UpdateMessage(ctx context.Context, token string, req *MessageRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.postJSON(ctx, "chat.update", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, token, channel, timestamp string) error {
	payload := map[string]string{"channel": channel, "ts": timestamp}
	return c.postJSON(ctx, "chat.delete", token, payload, nil)
}

// viewPayload wraps view calls that answer with a nested view object.
type viewPayload struct {
	View ViewResponse `json:"view"`
}

// OpenModal opens a modal view for the interaction's trigger.
func (c *Client) OpenModal(ctx context.Context, token, triggerID string, view View) (*ViewResponse, error) {
	payload := map[string]interface{}{"trigger_id": triggerID, "view": view}
	var out viewPayload
	if err := c.postJSON(ctx, "views.open", token, payload, &out); err != nil {
		return nil, err
	}
	return &out.View, nil
}

// PushModal stacks a modal on top of the currently open one.
func (c *Client) PushModal(ctx context.Context, token, triggerID string, view View) (*ViewResponse, error) {
	payload := map[string]interface{}{"trigger_id": triggerID, "view": view}
	var out viewPayload
	if err := c.postJSON(ctx, "views.push", token, payload, &out); err != nil {
		return nil, err
	}
	return &out.View, nil
}

// UpdateModal re-renders an open modal view.
func (c *Client) UpdateModal(ctx context.Context, token, viewID string, view View) (*ViewResponse, error) {
	payload := map[string]interface{}{"view_id": viewID, "view": view}
	var out viewPayload
	if err := c.postJSON(ctx, "views.update", token, payload, &out); err != nil {
		return nil, err
	}
	return &out.View, nil
}

// PublishHomeSurface replaces a user's home surface.
func (c *Client) PublishHomeSurface(ctx context.Context, token, userID string, view View) error {
	payload := map[string]interface{}{"user_id": userID, "view": view}
	return c.postJSON(ctx, "views.publish", token, payload, nil)
}

// RespondToCommand posts an ephemeral reply to a slash command via its
// response URL. The platform answers these with a plain body, not the
// ok/error envelope.
func (c *Client) RespondToCommand(ctx context.Context, responseURL, text string) error {
	body, err := json.Marshal(map[string]string{
		"response_type": "ephemeral",
		"text":          text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode command response: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, responseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build command response request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Errorw("command response transport failure",
			"uri", responseURL,
			"error", err,
		)
		return fmt.Errorf("command response failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Errorw("command response rejected",
			"uri", responseURL,
			"status", resp.StatusCode,
		)
		return fmt.Errorf("command response rejected with status %d", resp.StatusCode)
	}
	return nil
}

// GetUserInfo fetches a user's display profile.
func (c *Client) GetUserInfo(ctx context.Context, token, userID string) (*UserInfo, error) {
	payload := map[string]string{"user": userID}
	var out struct {
		User struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Profile struct {
				RealName    string `json:"real_name"`
				DisplayName string `json:"display_name"`
				Image       string `json:"image_48"`
			} `json:"profile"`
		} `json:"user"`
	}
	if err := c.postJSON(ctx, "users.info", token, payload, &out); err != nil {
		return nil, err
	}
	return &UserInfo{
		ID:          out.User.ID,
		Name:        out.User.Name,
		RealName:    out.User.Profile.RealName,
		DisplayName: out.User.Profile.DisplayName,
		Image:       out.User.Profile.Image,
	}, nil
}

// RefreshOAuthToken redeems a refresh token via the refresh grant.
func (c *Client) RefreshOAuthToken(ctx context.Context, refreshToken string) (*OAuthResponse, error) {
	values := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	var out OAuthResponse
	if err := c.postForm(ctx, "oauth.v2.access", values, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExchangeOAuthCode redeems an install code for the initial tokens.
func (c *Client) ExchangeOAuthCode(ctx context.Context, code string) (*OAuthResponse, error) {
	values := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
	}
	var out OAuthResponse
	if err := c.postForm(ctx, "oauth.v2.access", values, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAuth checks a token and reports the identity behind it.
func (c *Client) VerifyAuth(ctx context.Context, token string) (*AuthInfo, error) {
	var out AuthInfo
	if err := c.postJSON(ctx, "auth.test", token, map[string]string{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
