package pullrequest

import "errors"

var (
	// ErrNoMetadata means the message carries no live workflow metadata,
	// typically because the pull request already reached a terminal state.
	ErrNoMetadata = errors.New("message has no review metadata")

	// ErrNotReviewer means the acting user has not reviewed the pull request
	// and is not permitted the requested transition.
	ErrNotReviewer = errors.New("user has not reviewed this pull request")

	// ErrMissingMessage means a block action arrived without its message,
	// which the review lifecycle needs to rewrite blocks in place.
	ErrMissingMessage = errors.New("interaction payload carries no message")
)
