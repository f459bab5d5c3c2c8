package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds every store transaction so no
	// operation can block indefinitely on a lock.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultListLimit is applied when a caller does not specify one.
	DefaultListLimit = 20

	// MaxListLimit caps history listings.
	MaxListLimit = 100
)
