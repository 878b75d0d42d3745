package accessibility

import "time"

// Clock abstracts time for cache expiry and result timestamps so tests can
// inject a fake.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}

// Hasher digests cache key material.
type Hasher interface {
	Hash(data []byte) (string, error)
}
