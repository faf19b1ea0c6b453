package blockedRepo

import (
	"context"

	"wandr/models"
)

// BlockedRepository stores permanent venue suppressions. Entries never
// auto-expire; only an explicit unblock removes them.
type BlockedRepository interface {
	Block(ctx context.Context, block models.BlockedVenue) error
	Unblock(ctx context.Context, userID, providerID string) error
	ListByUser(ctx context.Context, userID string) ([]models.BlockedVenue, error)
	ListProviderIDs(ctx context.Context, userID string) ([]string, error)
}
