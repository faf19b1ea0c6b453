package models

// BatchPurgePayload asks the background worker to remove malformed entries
// from a user's stored recommendation batch. Cleanup is decoupled from the
// cache read path.
type BatchPurgePayload struct {
	UserID      string   `json:"userId"`
	ProviderIDs []string `json:"providerIds"`
}
