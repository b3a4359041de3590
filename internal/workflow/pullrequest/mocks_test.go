package pullrequest

import (
	"context"

	"github.com/stretchr/testify/mock"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	"github.com/reviewflow/reviewbot/internal/platform"
	queueModel "github.com/reviewflow/reviewbot/internal/queue/model"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) PostMessage(ctx context.Context, token string, req *platform.MessageRequest) (*platform.MessageResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.MessageResponse), args.Error(1)
}

func (m *mockAPI) UpdateMessage(ctx context.Context, token string, req *platform.MessageRequest) (*platform.MessageResponse, error) {
	args := m.Called(ctx, token, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.MessageResponse), args.Error(1)
}

func (m *mockAPI) DeleteMessage(ctx context.Context, token, channel, timestamp string) error {
	args := m.Called(ctx, token, channel, timestamp)
	return args.Error(0)
}

func (m *mockAPI) OpenModal(ctx context.Context, token, triggerID string, view platform.View) (*platform.ViewResponse, error) {
	args := m.Called(ctx, token, triggerID, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.ViewResponse), args.Error(1)
}

func (m *mockAPI) PushModal(ctx context.Context, token, triggerID string, view platform.View) (*platform.ViewResponse, error) {
	args := m.Called(ctx, token, triggerID, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.ViewResponse), args.Error(1)
}

func (m *mockAPI) UpdateModal(ctx context.Context, token, viewID string, view platform.View) (*platform.ViewResponse, error) {
	args := m.Called(ctx, token, viewID, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.ViewResponse), args.Error(1)
}

func (m *mockAPI) PublishHomeSurface(ctx context.Context, token, userID string, view platform.View) error {
	args := m.Called(ctx, token, userID, view)
	return args.Error(0)
}

func (m *mockAPI) RespondToCommand(ctx context.Context, responseURL, text string) error {
	args := m.Called(ctx, responseURL, text)
	return args.Error(0)
}

func (m *mockAPI) GetUserInfo(ctx context.Context, token, userID string) (*platform.UserInfo, error) {
	args := m.Called(ctx, token, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.UserInfo), args.Error(1)
}

func (m *mockAPI) RefreshOAuthToken(ctx context.Context, refreshToken string) (*platform.OAuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.OAuthResponse), args.Error(1)
}

func (m *mockAPI) ExchangeOAuthCode(ctx context.Context, code string) (*platform.OAuthResponse, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.OAuthResponse), args.Error(1)
}

func (m *mockAPI) VerifyAuth(ctx context.Context, token string) (*platform.AuthInfo, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.AuthInfo), args.Error(1)
}

type mockQueue struct {
	mock.Mock
}

func (m *mockQueue) GetAvailableBranches(ctx context.Context, id tenant.Identity, userID string) ([]string, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockQueue) StartCreation(ctx context.Context, id tenant.Identity, userID string) (*queueModel.PullRequestReview, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queueModel.PullRequestReview), args.Error(1)
}

func (m *mockQueue) UpdateCreation(ctx context.Context, id tenant.Identity, userID, messageTS string) error {
	args := m.Called(ctx, id, userID, messageTS)
	return args.Error(0)
}

func (m *mockQueue) CancelCreation(ctx context.Context, id tenant.Identity, userID string, adminOverride bool) error {
	args := m.Called(ctx, id, userID, adminOverride)
	return args.Error(0)
}

func (m *mockQueue) FinishCreation(ctx context.Context, id tenant.Identity, userID, messageTS string, branches []string) error {
	args := m.Called(ctx, id, userID, messageTS, branches)
	return args.Error(0)
}

func (m *mockQueue) FinishReview(ctx context.Context, id tenant.Identity, messageTS string, branches []string) error {
	args := m.Called(ctx, id, messageTS, branches)
	return args.Error(0)
}

func (m *mockQueue) Peek(ctx context.Context, id tenant.Identity, branch string) (*queueModel.PullRequestReview, error) {
	args := m.Called(ctx, id, branch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queueModel.PullRequestReview), args.Error(1)
}

func (m *mockQueue) IsCreationAllowed(ctx context.Context, id tenant.Identity) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockQueue) UpdateCreationAllowance(ctx context.Context, id tenant.Identity, allowed bool) error {
	args := m.Called(ctx, id, allowed)
	return args.Error(0)
}

func (m *mockQueue) State(ctx context.Context, id tenant.Identity) (*queueModel.QueueState, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queueModel.QueueState), args.Error(1)
}

type mockCreds struct {
	mock.Mock
}

func (m *mockCreds) RotateIfNeeded(ctx context.Context, id tenant.Identity) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockCreds) Get(ctx context.Context, id tenant.Identity) (*credentialModel.Credential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credentialModel.Credential), args.Error(1)
}

func (m *mockCreds) SaveInstall(ctx context.Context, credential *credentialModel.Credential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

type mockSettings struct {
	mock.Mock
}

func (m *mockSettings) Branches(ctx context.Context, id tenant.Identity) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockSettings) Channel(ctx context.Context, id tenant.Identity) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockSettings) Save(ctx context.Context, id tenant.Identity, channelID string, branches []string) error {
	args := m.Called(ctx, id, channelID, branches)
	return args.Error(0)
}
