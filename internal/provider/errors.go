package provider

import "errors"

// ErrUnavailable is the "no response" sentinel: every credential in the
// pool was rejected or failed at the network level for the current call.
// It is never surfaced past the client; Search and Details convert it into
// the stale-cache/offline fallback chain.
var ErrUnavailable = errors.New("recipe provider unavailable")
