package state

import (
	"fmt"
	"net/netip"
)

// RouteEntry is one computed forwarding entry: a destination network (or
// host, with a full-length prefix), the next hop to forward through, the
// outgoing interface on the computing router, and the total path metric.
// A destination with equal-cost paths yields one entry per path.
type RouteEntry struct {
	Dest    netip.Prefix
	NextHop netip.Addr
	OutIf   int32
	Metric  uint32
}

// NewNetworkRoute builds a directly-connected network entry, as produced
// for stub networks one hop from the root. The zero NextHop means no
// intermediate router is involved.
func NewNetworkRoute(dest netip.Prefix, outIf int32, metric uint32) RouteEntry {
	return RouteEntry{Dest: dest, OutIf: outIf, Metric: metric}
}

// DirectlyConnected reports whether the entry forwards without an
// intermediate router.
func (e RouteEntry) DirectlyConnected() bool {
	return !e.NextHop.IsValid()
}

// Equal reports full field equality. Used to detect duplicate or withdrawn
// routes when diffing tables.
func (e RouteEntry) Equal(other RouteEntry) bool {
	return e == other
}

func (e RouteEntry) String() string {
	nh := "direct"
	if !e.DirectlyConnected() {
		nh = e.NextHop.String()
	}
	return fmt.Sprintf("%s via %s (if: %d, metric: %d)", e.Dest, nh, e.OutIf, e.Metric)
}
