package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	"github.com/reviewflow/reviewbot/internal/dispatch"
)

// fakeResponder records replies delivered through a command response URL.
type fakeResponder struct {
	lastURL  string
	lastText string
	err      error
}

func (f *fakeResponder) RespondToCommand(_ context.Context, responseURL, text string) error {
	f.lastURL = responseURL
	f.lastText = text
	return f.err
}

func setupRouter(t *testing.T, bindings ...dispatch.Bindings) (*gin.Engine, *fakeResponder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	responder := &fakeResponder{}
	engine := gin.New()
	RegisterRoutes(engine, dispatch.NewRouter(zap.NewNop().Sugar(), bindings...), responder, zap.NewNop().Sugar())
	return engine, responder
}

func postForm(engine *gin.Engine, target string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	engine.ServeHTTP(w, req)
	return w
}

func postJSON(engine *gin.Engine, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestCommands(t *testing.T) {
	t.Run("dispatches the decoded command", func(t *testing.T) {
		var got *dispatch.CommandPayload
		engine, _ := setupRouter(t, dispatch.Bindings{
			Commands: map[string]dispatch.CommandHandler{
				"/create_pull_request": func(_ context.Context, p *dispatch.CommandPayload) error {
					got = p
					return nil
				},
			},
		})

		w := postForm(engine, "/slack/commands", url.Values{
			"command":    {"/dev_create_pull_request"},
			"user_id":    {"U1"},
			"channel_id": {"C1"},
			"trigger_id": {"TR1"},
			"team_id":    {"T1"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, "U1", got.UserID)
		assert.Equal(t, "none-T1", got.Tenant().Key())
	})

	t.Run("unmatched command still acknowledged", func(t *testing.T) {
		engine, _ := setupRouter(t)
		w := postForm(engine, "/slack/commands", url.Values{"command": {"/nope"}})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("uninstalled workspace gets an instructive reply", func(t *testing.T) {
		engine, responder := setupRouter(t, dispatch.Bindings{
			Commands: map[string]dispatch.CommandHandler{
				"/create_pull_request": func(_ context.Context, _ *dispatch.CommandPayload) error {
					return credentialModel.ErrNotInstalled
				},
			},
		})

		w := postForm(engine, "/slack/commands", url.Values{
			"command":      {"/create_pull_request"},
			"user_id":      {"U1"},
			"team_id":      {"T2"},
			"response_url": {"https://hooks.example.com/commands/T2"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://hooks.example.com/commands/T2", responder.lastURL)
		assert.Contains(t, responder.lastText, "not installed")
	})

	t.Run("uninstalled workspace without a response url answers inline", func(t *testing.T) {
		engine, responder := setupRouter(t, dispatch.Bindings{
			Commands: map[string]dispatch.CommandHandler{
				"/create_pull_request": func(_ context.Context, _ *dispatch.CommandPayload) error {
					return credentialModel.ErrNotInstalled
				},
			},
		})

		w := postForm(engine, "/slack/commands", url.Values{
			"command": {"/create_pull_request"},
			"user_id": {"U1"},
			"team_id": {"T2"},
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "not installed")
		assert.Empty(t, responder.lastURL)
	})
}

func TestInteractions(t *testing.T) {
	t.Run("view submission field errors use the platform schema", func(t *testing.T) {
		engine, _ := setupRouter(t, dispatch.Bindings{
			ViewSubmissions: map[string]dispatch.ViewHandler{
				"pr_create": func(_ context.Context, _ *dispatch.InteractionPayload) error {
					return &dispatch.FieldErrors{Errors: map[string]string{
						"pr_link_1": "Select at least one target branch",
					}}
				},
			},
		})

		payload := `{"type":"view_submission","view":{"callback_id":"pr_create"}}`
		w := postForm(engine, "/slack/interactions", url.Values{"payload": {payload}})

		assert.Equal(t, http.StatusOK, w.Code)

		var body struct {
			ResponseAction string            `json:"response_action"`
			Errors         map[string]string `json:"errors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "errors", body.ResponseAction)
		assert.Equal(t, "Select at least one target branch", body.Errors["pr_link_1"])
	})

	t.Run("block action failures acknowledged silently", func(t *testing.T) {
		engine, _ := setupRouter(t)

		payload := `{"type":"block_actions","actions":[{"block_id":"b","action_id":"a"}]}`
		w := postForm(engine, "/slack/interactions", url.Values{"payload": {payload}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("undecodable payload acknowledged", func(t *testing.T) {
		engine, _ := setupRouter(t)
		w := postForm(engine, "/slack/interactions", url.Values{"payload": {"{"}})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestEvents(t *testing.T) {
	t.Run("url verification handshake", func(t *testing.T) {
		engine, _ := setupRouter(t)

		w := postJSON(engine, "/slack/events", `{"type":"url_verification","challenge":"c0ffee"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "c0ffee", body["challenge"])
	})

	t.Run("dispatches the inner event", func(t *testing.T) {
		called := false
		engine, _ := setupRouter(t, dispatch.Bindings{
			Events: map[string]dispatch.EventHandler{
				"app_home_opened": func(_ context.Context, _ *dispatch.EventPayload) error {
					called = true
					return nil
				},
			},
		})

		w := postJSON(engine, "/slack/events",
			`{"type":"event_callback","team_id":"T1","event":{"type":"app_home_opened","user":"U1","tab":"home"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("bot echo acknowledged without dispatch", func(t *testing.T) {
		called := false
		engine, _ := setupRouter(t, dispatch.Bindings{
			Events: map[string]dispatch.EventHandler{
				"message": func(_ context.Context, _ *dispatch.EventPayload) error {
					called = true
					return nil
				},
			},
		})

		w := postJSON(engine, "/slack/events",
			`{"type":"event_callback","event":{"type":"message","bot_id":"B1"}}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, called)
	})
}
