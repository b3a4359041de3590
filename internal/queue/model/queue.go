// Package model defines the per-tenant review queue state.
package model

import (
	"time"
)

// PullRequestReview identifies the creator of a review and the platform
// message announcing it. The timestamp is attached once the announcement
// message exists.
type PullRequestReview struct {
	UserID           string `json:"user_id"`
	MessageTimestamp string `json:"message_ts,omitempty"`
}

// QueueState is the full review queue snapshot for one tenant.
//
// Invariants: at most one review is in creation at a time; each branch queue
// is strictly FIFO; a review enters a branch queue only through the atomic
// finish-creation transition.
type QueueState struct {
	ReviewInCreation *PullRequestReview             `json:"review_in_creation,omitempty"`
	ReviewQueue      map[string][]PullRequestReview `json:"review_queue"`
	CreationAllowed  bool                           `json:"creation_allowed"`
}

// NewQueueState returns the state of a tenant that has no queue history yet.
func NewQueueState() *QueueState {
	return &QueueState{
		ReviewQueue:     map[string][]PullRequestReview{},
		CreationAllowed: true,
	}
}

// Head returns the head-of-queue review for a branch, or nil when the
// branch queue is empty.
func (s *QueueState) Head(branch string) *PullRequestReview {
	reviews := s.ReviewQueue[branch]
	if len(reviews) == 0 {
		return nil
	}
	head := reviews[0]
	return &head
}

// QueueRecord is the persisted row holding a tenant's queue snapshot.
// Matches the queue_states table schema; the snapshot is stored as JSON and
// fully rewritten on every save.
type QueueRecord struct {
	TenantKey string    `gorm:"primaryKey;column:tenant_key;type:varchar(255)" json:"tenant_key"`
	State     string    `gorm:"column:state;type:text;not null"                json:"state"`
	CreatedAt time.Time `gorm:"column:created_at;not null"    json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"    json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (QueueRecord) TableName() string {
	return "queue_states"
}
