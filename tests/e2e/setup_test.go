//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	postgresDriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/reviewflow/reviewbot/internal/config"
	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	credentialRepository "github.com/reviewflow/reviewbot/internal/credential/repository"
	credentialService "github.com/reviewflow/reviewbot/internal/credential/service"
	"github.com/reviewflow/reviewbot/internal/database/migrate"
	"github.com/reviewflow/reviewbot/internal/dispatch"
	"github.com/reviewflow/reviewbot/internal/health"
	"github.com/reviewflow/reviewbot/internal/oauth"
	"github.com/reviewflow/reviewbot/internal/platform"
	queueRepository "github.com/reviewflow/reviewbot/internal/queue/repository"
	queueService "github.com/reviewflow/reviewbot/internal/queue/service"
	settingsRepository "github.com/reviewflow/reviewbot/internal/settings/repository"
	settingsService "github.com/reviewflow/reviewbot/internal/settings/service"
	"github.com/reviewflow/reviewbot/internal/webhook"
	"github.com/reviewflow/reviewbot/internal/workflow/home"
	"github.com/reviewflow/reviewbot/internal/workflow/pullrequest"
)

// E2ETestSuite runs the full application wiring against a real PostgreSQL
// container. The chat platform is the only stubbed dependency; everything
// else (migrations, gorm repositories, services, gin routes) is the
// production code path.
type E2ETestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	db          *gorm.DB

	platformStub *stubPlatform
	stubServer   *httptest.Server
	appServer    *httptest.Server
	httpClient   *http.Client
}

// SetupSuite runs once before all tests
func (s *E2ETestSuite) SetupSuite() {
	s.ctx = context.Background()

	// Start PostgreSQL container
	pgContainer, err := postgres.Run(s.ctx,
		"postgres:12-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(s.T(), err, "failed to start PostgreSQL container")
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "failed to get connection string")

	db, err := gorm.Open(postgresDriver.Open(connStr), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(s.T(), err, "failed to connect to database")
	s.db = db

	// Apply the real SQL migrations, same as the server does on startup.
	require.NoError(s.T(), os.Setenv("MIGRATIONS_PATH", "../../migrations"))
	require.NoError(s.T(), migrate.Migrate(db), "failed to apply migrations")

	// Stub platform Web API
	s.platformStub = newStubPlatform()
	s.stubServer = httptest.NewServer(s.platformStub.handler())

	// Wire the application the way cmd/server does, with the stub as the
	// platform endpoint, and expose it over a real HTTP listener.
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()

	api := platform.NewClient(config.PlatformConfig{
		BaseURL:        s.stubServer.URL,
		ClientID:       "e2e-client",
		ClientSecret:   "e2e-secret",
		RequestTimeout: 5 * time.Second,
	}, logger)

	creds := credentialService.New(credentialRepository.New(db), api, 2*time.Hour, logger)
	settings := settingsService.New(settingsRepository.New(db), []string{"develop", "master"})
	queue := queueService.New(queueRepository.New(db), settings, logger)

	prModule := pullrequest.NewModule(api, queue, creds, settings, logger)
	homeModule := home.NewModule(api, queue, creds, settings, logger)
	router := dispatch.NewRouter(logger, prModule.Bindings(), homeModule.Bindings())

	engine := gin.New()
	webhook.RegisterRoutes(engine, router, api, logger)
	engine.GET("/oauth/callback", oauth.New(api, creds, logger).Callback)
	engine.GET("/health", health.New(db, logger).Check)

	s.appServer = httptest.NewServer(engine)
	s.httpClient = &http.Client{Timeout: 10 * time.Second}
}

// TearDownSuite runs once after all tests
func (s *E2ETestSuite) TearDownSuite() {
	if s.appServer != nil {
		s.appServer.Close()
	}
	if s.stubServer != nil {
		s.stubServer.Close()
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

// SetupTest runs before each test
func (s *E2ETestSuite) SetupTest() {
	s.cleanDatabase()
	s.platformStub.reset()
}

// cleanDatabase truncates all application tables between tests.
func (s *E2ETestSuite) cleanDatabase() {
	for _, table := range []string{"queue_states", "tenant_settings", "credentials"} {
		require.NoError(s.T(), s.db.Exec("DELETE FROM "+table).Error)
	}
}

// seedInstall writes a non-rotating bot credential directly, as if the
// workspace had completed the OAuth flow earlier.
func (s *E2ETestSuite) seedInstall(teamID string) {
	cred := &credentialModel.Credential{
		TenantKey: "none-" + teamID,
		TeamID:    teamID,
		BotUserID: "UBOT",
		BotToken:  "xoxb-e2e",
	}
	require.NoError(s.T(), s.db.Create(cred).Error)
}

func (s *E2ETestSuite) postForm(path string, form url.Values) (*http.Response, string) {
	resp, err := s.httpClient.Post(
		s.appServer.URL+path,
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()),
	)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, string(body)
}

func (s *E2ETestSuite) get(path string) (*http.Response, string) {
	resp, err := s.httpClient.Get(s.appServer.URL + path)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	return resp, string(body)
}

// stubCall is one request recorded by the platform stub.
type stubCall struct {
	method string
	body   map[string]interface{}
}

// stubPlatform fakes the chat platform Web API: every method answers ok,
// message posts are assigned increasing timestamps, and oauth code
// exchanges yield a rotating bot token.
type stubPlatform struct {
	mu    sync.Mutex
	calls []stubCall
	ts    int
}

func newStubPlatform() *stubPlatform {
	return &stubPlatform{}
}

func (p *stubPlatform) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
	p.ts = 0
}

func (p *stubPlatform) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.TrimPrefix(r.URL.Path, "/")

		body := map[string]interface{}{}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			if form, formErr := url.ParseQuery(string(raw)); formErr == nil {
				for key := range form {
					body[key] = form.Get(key)
				}
			}
		}

		p.mu.Lock()
		p.calls = append(p.calls, stubCall{method: method, body: body})
		p.ts++
		ts := p.ts
		p.mu.Unlock()

		resp := map[string]interface{}{"ok": true}
		switch method {
		case "chat.postMessage":
			resp["channel"] = body["channel"]
			resp["ts"] = fmt.Sprintf("100.%d", ts)
		case "chat.update":
			resp["channel"] = body["channel"]
			resp["ts"] = body["ts"]
		case "views.open", "views.push", "views.update", "views.publish":
			resp["view"] = map[string]interface{}{"id": fmt.Sprintf("V%d", ts)}
		case "users.info":
			resp["user"] = map[string]interface{}{
				"id":   body["user"],
				"name": "reviewer",
				"profile": map[string]interface{}{
					"display_name": "Reviewer",
					"image_48":     "https://avatars.example.com/48.png",
				},
			}
		case "oauth.v2.access":
			resp["access_token"] = "xoxe.xoxb-fresh"
			resp["refresh_token"] = "xoxe-refresh"
			resp["token_type"] = "bot"
			resp["expires_in"] = 43200
			resp["bot_user_id"] = "UBOT"
			resp["team"] = map[string]interface{}{"id": "T9", "name": "e2e"}
			resp["authed_user"] = map[string]interface{}{"id": "U9"}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
}

func (p *stubPlatform) last(method string) *stubCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.calls) - 1; i >= 0; i-- {
		if p.calls[i].method == method {
			call := p.calls[i]
			return &call
		}
	}
	return nil
}

func (p *stubPlatform) count(method string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, call := range p.calls {
		if call.method == method {
			n++
		}
	}
	return n
}
