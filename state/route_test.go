package state

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteEntry(t *testing.T) {
	e := RouteEntry{
		Dest:    netip.MustParsePrefix("10.3.0.0/24"),
		NextHop: netip.MustParseAddr("10.1.1.2"),
		OutIf:   0,
		Metric:  2,
	}
	assert.False(t, e.DirectlyConnected())
	assert.Equal(t, "10.3.0.0/24 via 10.1.1.2 (if: 0, metric: 2)", e.String())

	d := NewNetworkRoute(netip.MustParsePrefix("10.1.1.0/30"), 1, 1)
	assert.True(t, d.DirectlyConnected())
	assert.Equal(t, "10.1.1.0/30 via direct (if: 1, metric: 1)", d.String())

	assert.True(t, e.Equal(e))
	assert.False(t, e.Equal(d))
}
