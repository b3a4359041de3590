package model

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is the common sentinel for queue invariant violations.
// Every specific violation below matches it under errors.Is.
var ErrInvalidOperation = errors.New("invalid queue operation")

var (
	// ErrStateNotFound indicates that no queue snapshot exists for the tenant.
	ErrStateNotFound = errors.New("queue state not found")
	// ErrCreationSlotHeld indicates that another user already holds the creation slot.
	ErrCreationSlotHeld = fmt.Errorf("%w: creation slot held by another user", ErrInvalidOperation)
	// ErrNoCreationSlot indicates that the user holds no in-progress creation.
	ErrNoCreationSlot = fmt.Errorf("%w: no pull request creation in progress for this user", ErrInvalidOperation)
	// ErrCreationNotAllowed indicates that the tenant-wide creation gate is closed.
	ErrCreationNotAllowed = fmt.Errorf("%w: pull request creation is disabled", ErrInvalidOperation)
	// ErrNoBranches indicates that a creation was submitted without branches.
	ErrNoBranches = fmt.Errorf("%w: at least one branch is required", ErrInvalidOperation)
	// ErrReviewNotFound indicates that no branch head matches the message timestamp.
	ErrReviewNotFound = fmt.Errorf("%w: no queued review matches the message", ErrInvalidOperation)
	// ErrBranchMismatch indicates that the requested branch set disagrees with
	// the set of branches whose head matches the message timestamp.
	ErrBranchMismatch = fmt.Errorf("%w: requested branches do not match the queued review", ErrInvalidOperation)
)
