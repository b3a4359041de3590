// Package pullrequest implements the pull-request creation wizard and the
// review lifecycle over message-embedded metadata.
package pullrequest

import (
	"encoding/json"
	"fmt"

	"github.com/reviewflow/reviewbot/internal/platform"
)

const (
	metadataEventType = "pull_request_review"
	metadataVersion   = 1
)

// Profile is a cached display profile for the reviewers block.
type Profile struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Metadata is the workflow state embedded in a review message. It travels
// with the message and is round-tripped on every action; the queue never
// stores it.
type Metadata struct {
	Version   int                `json:"version"`
	Author    string             `json:"author"`
	Branches  []string           `json:"branches"`
	Reviewing []string           `json:"reviewing"`
	Approved  []string           `json:"approved"`
	Profiles  map[string]Profile `json:"profiles"`
}

// NewMetadata creates the metadata for a freshly submitted pull request.
func NewMetadata(author string, branches []string) *Metadata {
	return &Metadata{
		Version:   metadataVersion,
		Author:    author,
		Branches:  append([]string(nil), branches...),
		Reviewing: []string{},
		Approved:  []string{},
		Profiles:  map[string]Profile{},
	}
}

// Encode serializes the metadata into the platform's message metadata shape.
func (m *Metadata) Encode() (*platform.MessageMetadata, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode review metadata: %w", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to encode review metadata: %w", err)
	}

	return &platform.MessageMetadata{
		EventType:    metadataEventType,
		EventPayload: payload,
	}, nil
}

// ClearedMetadata marks a message as terminal; no workflow state remains and
// DecodeMetadata rejects it on subsequent actions.
func ClearedMetadata() *platform.MessageMetadata {
	return &platform.MessageMetadata{
		EventType:    metadataEventType,
		EventPayload: map[string]interface{}{},
	}
}

// DecodeMetadata parses the metadata carried by a review message. A missing,
// foreign or cleared payload yields ErrNoMetadata.
func DecodeMetadata(meta *platform.MessageMetadata) (*Metadata, error) {
	if meta == nil || meta.EventType != metadataEventType || len(meta.EventPayload) == 0 {
		return nil, ErrNoMetadata
	}

	raw, err := json.Marshal(meta.EventPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode review metadata: %w", err)
	}

	var decoded Metadata
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode review metadata: %w", err)
	}
	if decoded.Version != metadataVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrNoMetadata, decoded.Version)
	}

	if decoded.Branches == nil {
		decoded.Branches = []string{}
	}
	if decoded.Reviewing == nil {
		decoded.Reviewing = []string{}
	}
	if decoded.Approved == nil {
		decoded.Approved = []string{}
	}
	if decoded.Profiles == nil {
		decoded.Profiles = map[string]Profile{}
	}
	return &decoded, nil
}

// HasReviewer reports whether the user already pressed "Review".
func (m *Metadata) HasReviewer(userID string) bool {
	return contains(m.Reviewing, userID)
}

// AddReviewer records a reviewer, deduplicating repeated presses. It reports
// whether the set changed.
func (m *Metadata) AddReviewer(userID string) bool {
	if contains(m.Reviewing, userID) {
		return false
	}
	m.Reviewing = append(m.Reviewing, userID)
	return true
}

// AddApproval records an approval. Only prior reviewers may approve;
// repeated approvals deduplicate. It reports whether the set changed.
func (m *Metadata) AddApproval(userID string) (bool, error) {
	if !contains(m.Reviewing, userID) {
		return false, ErrNotReviewer
	}
	if contains(m.Approved, userID) {
		return false, nil
	}
	m.Approved = append(m.Approved, userID)
	return true, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
