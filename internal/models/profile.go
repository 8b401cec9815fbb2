package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the local record linked to an identity provider account.
type Profile struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	FirebaseUID string    `json:"firebase_uid" yaml:"firebase_uid"`
	Email       string    `json:"email,omitempty" yaml:"email,omitempty"`
	// Role is informational and defaults to "user".
	Role       string    `json:"role" yaml:"role"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at" yaml:"last_seen_at"`
}
