package transcript

import "errors"

var (
	// ErrInvalidInput indicates a missing or malformed argument.
	ErrInvalidInput = errors.New("invalid transcript input")
	// ErrDeleteUnsupported indicates the backing engine has no delete capability.
	ErrDeleteUnsupported = errors.New("transcript deletion not supported by this store")
	// ErrReadNotConfigured indicates the store has no read credentials configured.
	ErrReadNotConfigured = errors.New("transcript store is not configured for reads")
	// ErrInvalidContinuation indicates a continuation token could not be
	// decoded. Tokens are opaque and must be passed back verbatim.
	ErrInvalidContinuation = errors.New("invalid continuation token")
)
