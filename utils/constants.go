package utils

import "time"

// Redis key prefixes.
const (
	SessionPrefix     = "session:"
	BookingFlowPrefix = "bookingFlow:"
	ProfileFormPrefix = "profileForm:"
	BrowseStatePrefix = "browse:"
)

// SessionHeader carries the opaque portal session id.
const SessionHeader = "X-Session-ID"

const (
	DefaultSessionTTL     = 24 * time.Hour
	DefaultBookingFlowTTL = 30 * time.Minute
	ViewStateTTL          = 2 * time.Hour
)
