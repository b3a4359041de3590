package model

import "errors"

var (
	// ErrNotInstalled indicates that no credential exists for the tenant.
	ErrNotInstalled = errors.New("app is not installed for this workspace")
)
