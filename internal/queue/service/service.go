// Package service provides the review queue state machine.
package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	queueModel "github.com/reviewflow/reviewbot/internal/queue/model"
	"github.com/reviewflow/reviewbot/internal/queue/repository"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

// BranchSource supplies the configured branch list for a tenant.
type BranchSource interface {
	Branches(ctx context.Context, id tenant.Identity) ([]string, error)
}

// Service defines the interface for review queue operations. All mutations
// are serialized per tenant key; within one call the cycle is strictly
// fetch state, validate, mutate, persist.
type Service interface {
	// GetAvailableBranches answers "what can this user start a PR against
	// right now": the configured branches minus any branch whose queue is
	// non-empty. When another user holds the creation slot the answer is
	// empty; the slot holder always sees their own options.
	GetAvailableBranches(ctx context.Context, id tenant.Identity, userID string) ([]string, error)

	// StartCreation claims the creation slot for a user. Repeated calls by
	// the slot holder return the existing record idempotently.
	StartCreation(ctx context.Context, id tenant.Identity, userID string) (*queueModel.PullRequestReview, error)

	// UpdateCreation attaches the announcement message timestamp to the slot.
	UpdateCreation(ctx context.Context, id tenant.Identity, userID, messageTS string) error

	// CancelCreation releases the slot held by the user, or any slot when
	// adminOverride is set.
	CancelCreation(ctx context.Context, id tenant.Identity, userID string, adminOverride bool) error

	// FinishCreation atomically converts the user's slot into a queued
	// review appended to the tail of every named branch's queue.
	FinishCreation(ctx context.Context, id tenant.Identity, userID, messageTS string, branches []string) error

	// FinishReview pops the head of every named branch whose head review
	// matches the message timestamp. The matched branch set must equal the
	// requested set exactly, otherwise nothing is popped.
	FinishReview(ctx context.Context, id tenant.Identity, messageTS string, branches []string) error

	// Peek returns the head-of-queue review for a branch, or nil.
	Peek(ctx context.Context, id tenant.Identity, branch string) (*queueModel.PullRequestReview, error)

	// IsCreationAllowed reports the tenant-wide creation gate.
	IsCreationAllowed(ctx context.Context, id tenant.Identity) (bool, error)

	// UpdateCreationAllowance toggles the tenant-wide creation gate.
	UpdateCreationAllowance(ctx context.Context, id tenant.Identity, allowed bool) error

	// State returns the current queue snapshot for rendering.
	State(ctx context.Context, id tenant.Identity) (*queueModel.QueueState, error)
}

type service struct {
	repo     repository.Repository
	branches BranchSource
	locks    *keyedMutex
	logger   *zap.SugaredLogger
}

// New creates a new queue service instance.
func New(repo repository.Repository, branches BranchSource, logger *zap.SugaredLogger) Service {
	return &service{
		repo:     repo,
		branches: branches,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// load fetches the tenant's snapshot, defaulting to a fresh state for
// tenants with no queue history.
func (s *service) load(ctx context.Context, id tenant.Identity) (*queueModel.QueueState, error) {
	state, err := s.repo.Find(ctx, id.Key())
	if err != nil {
		if errors.Is(err, queueModel.ErrStateNotFound) {
			return queueModel.NewQueueState(), nil
		}
		return nil, err
	}
	return state, nil
}

// GetAvailableBranches answers "what can this user start a PR against right now".
func (s *service) GetAvailableBranches(ctx context.Context, id tenant.Identity, userID string) ([]string, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.ReviewInCreation != nil && state.ReviewInCreation.UserID != userID {
		return []string{}, nil
	}

	configured, err := s.branches.Branches(ctx, id)
	if err != nil {
		return nil, err
	}

	available := make([]string, 0, len(configured))
	for _, branch := range configured {
		if state.Head(branch) == nil {
			available = append(available, branch)
		}
	}
	return available, nil
}

// StartCreation claims the creation slot for a user.
func (s *service) StartCreation(ctx context.Context, id tenant.Identity, userID string) (*queueModel.PullRequestReview, error) {
	unlock := s.locks.Lock(id.Key())
	defer unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.ReviewInCreation != nil {
		if state.ReviewInCreation.UserID == userID {
			existing := *state.ReviewInCreation
			return &existing, nil
		}
		return nil, queueModel.ErrCreationSlotHeld
	}

	if !state.CreationAllowed {
		return nil, queueModel.ErrCreationNotAllowed
	}

	review := queueModel.PullRequestReview{UserID: userID}
	state.ReviewInCreation = &review
	if err := s.repo.Save(ctx, id.Key(), state); err != nil {
		return nil, err
	}

	s.logger.Infow("creation slot claimed", "tenant", id.Key(), "user", userID)
	claimed := review
	return &claimed, nil
}

// UpdateCreation attaches the announcement message timestamp to the slot.
func (s *service) UpdateCreation(ctx context.Context, id tenant.Identity, userID, messageTS string) error {
	unlock := s.locks.Lock(id.Key())
	defer unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if state.ReviewInCreation == nil || state.ReviewInCreation.UserID != userID {
		return queueModel.ErrNoCreationSlot
	}

	state.ReviewInCreation.MessageTimestamp = messageTS
	return s.repo.Save(ctx, id.Key(), state)
}

// CancelCreation releases the slot held by the user.
func (s *service) CancelCreation(ctx context.Context, id tenant.Identity, userID string, adminOverride bool) error {
	unlock := s.locks.Lock(id.Key())
	defer unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !adminOverride {
		if state.ReviewInCreation == nil || state.ReviewInCreation.UserID != userID {
			return queueModel.ErrNoCreationSlot
		}
	}

	state.ReviewInCreation = nil
	return s.repo.Save(ctx, id.Key(), state)
}

// FinishCreation atomically fans the slot out to every named branch queue.
func (s *service) FinishCreation(ctx context.Context, id tenant.Identity, userID, messageTS string, branches []string) error {
	if len(branches) == 0 {
		return queueModel.ErrNoBranches
	}

	unlock := s.locks.Lock(id.Key())
	defer unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if state.ReviewInCreation == nil || state.ReviewInCreation.UserID != userID {
		return queueModel.ErrNoCreationSlot
	}

	review := queueModel.PullRequestReview{
		UserID:           userID,
		MessageTimestamp: messageTS,
	}
	for _, branch := range branches {
		state.ReviewQueue[branch] = append(state.ReviewQueue[branch], review)
	}
	state.ReviewInCreation = nil

	if err := s.repo.Save(ctx, id.Key(), state); err != nil {
		return err
	}

	s.logger.Infow("review queued",
		"tenant", id.Key(),
		"user", userID,
		"message_ts", messageTS,
		"branches", branches,
	)
	return nil
}

// FinishReview pops the matching head of every named branch queue.
func (s *service) FinishReview(ctx context.Context, id tenant.Identity, messageTS string, branches []string) error {
	unlock := s.locks.Lock(id.Key())
	defer unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	matched := make([]string, 0, len(branches))
	for branch := range state.ReviewQueue {
		head := state.Head(branch)
		if head != nil && head.MessageTimestamp == messageTS {
			matched = append(matched, branch)
		}
	}

	if len(matched) == 0 {
		return queueModel.ErrReviewNotFound
	}
	if !equalBranchSets(matched, branches) {
		return queueModel.ErrBranchMismatch
	}

	for _, branch := range matched {
		state.ReviewQueue[branch] = state.ReviewQueue[branch][1:]
		if len(state.ReviewQueue[branch]) == 0 {
			delete(state.ReviewQueue, branch)
		}
	}

	if err := s.repo.Save(ctx, id.Key(), state); err != nil {
		return err
	}

	s.logger.Infow("review finished",
		"tenant", id.Key(),
		"message_ts", messageTS,
		"branches", matched,
	)
	return nil
}

// Peek returns the head-of-queue review for a branch, or nil.
func (s *service) Peek(ctx context.Context, id tenant.Identity, branch string) (*queueModel.PullRequestReview, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return state.Head(branch), nil
}

// IsCreationAllowed reports the tenant-wide creation gate.
func (s *service) IsCreationAllowed(ctx context.Context, id tenant.Identity) (bool, error) {
	state, err := s.load(ctx, id)
	if err != nil {
		return false, err
	}
	return state.CreationAllowed, nil
}

// UpdateCreationAllowance toggles the tenant-wide creation gate.
func (s *service) UpdateCreationAllowance(ctx context.Context, id tenant.Identity, allowed bool) error {
	unlock := s.locks.Lock(id.Key())
	defer unlock()

	state, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	state.CreationAllowed = allowed
	return s.repo.Save(ctx, id.Key(), state)
}

// State returns the current queue snapshot for rendering.
func (s *service) State(ctx context.Context, id tenant.Identity) (*queueModel.QueueState, error) {
	return s.load(ctx, id)
}

// equalBranchSets compares two branch lists as sets.
func equalBranchSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	left := append([]string(nil), a...)
	right := append([]string(nil), b...)
	sort.Strings(left)
	sort.Strings(right)
	for i := range left {
		if left[i] != right[i] {
			return false
		}
	}
	return true
}
