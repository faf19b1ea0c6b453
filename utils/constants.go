// File: utils/constants.go
package utils

import "time"

// RecsCachePrefix is the prefix used for Redis recommendation batch cache keys.
const RecsCachePrefix = "recs:batch:"

// SessionCachePrefix is the prefix used for persisted feed radius preferences.
const SessionCachePrefix = "feed:session:"

// DefaultCacheTTL is the fallback time-to-live for cached recommendation batches.
const DefaultCacheTTL = 24 * time.Hour
