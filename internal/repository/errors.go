package repository

import "errors"

// Error kinds callers are expected to branch on with errors.Is. Raw
// storage-engine errors never cross the repository boundary unwrapped.
var (
	// ErrWriteFailed means a RecordCycle call could not commit; the store
	// was rolled back to its pre-call state and the whole cycle may be
	// retried safely.
	ErrWriteFailed = errors.New("qa cache write failed")

	// ErrCorruptRecord means a stored search response could not be decoded.
	// Distinct from a cache miss: it indicates store corruption worth
	// alerting on, not absent data.
	ErrCorruptRecord = errors.New("qa cache record is corrupt")
)
