package models

import "time"

// Follow is a directed edge from FollowerID to FollowingID. An edge with
// Accepted=false is a pending request and contributes to no counters.
type Follow struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	FollowerID  string    `json:"follower_id" gorm:"size:128;not null;index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"following_id" gorm:"size:128;not null;index;uniqueIndex:idx_follower_following"`
	Accepted    bool      `json:"accepted" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time `json:"updated_at"`

	Follower  *UserCompact `json:"follower,omitempty" gorm:"-"`
	Following *UserCompact `json:"following,omitempty" gorm:"-"`
}

// FollowState is the state of the edge between two users
type FollowState string

const (
	FollowStateNone     FollowState = "none"
	FollowStatePending  FollowState = "pending"
	FollowStateAccepted FollowState = "accepted"
)

// StateOf returns the state represented by an edge, or none for nil
func StateOf(f *Follow) FollowState {
	switch {
	case f == nil:
		return FollowStateNone
	case f.Accepted:
		return FollowStateAccepted
	default:
		return FollowStatePending
	}
}

// Relationship describes both directions between a viewer and a target
type Relationship struct {
	Following  FollowState `json:"following"`   // viewer -> target
	FollowedBy FollowState `json:"followed_by"` // target -> viewer
}
