package models

import "time"

// BlockedVenue is a permanent suppression entry created by explicit user
// action. It never auto-expires and is removed only by an explicit unblock.
type BlockedVenue struct {
	UserID     string    `bson:"user_id" json:"userId"`
	ProviderID string    `bson:"provider_id" json:"providerId"`
	Name       string    `bson:"name" json:"name"`
	Reason     string    `bson:"reason" json:"reason"`
	BlockedAt  time.Time `bson:"blocked_at" json:"blockedAt"`
}
