package state

import "time"

const (
	// Infinity is the sentinel distance for unreached vertices. It is never
	// produced by adding finite link metrics; see core.AddMetric.
	Infinity = ^(uint32)(0)
)

var (
	// MaxAge is how long a router or network advertisement stays valid in
	// the LSDB without being refreshed by a discovery cycle. RFC 2328
	// architectural constant (MaxAge, 1 hour).
	MaxAge = time.Hour
)
