// Package mock builds small in-memory topologies for tests and demos.
package mock

import (
	"fmt"
	"net/netip"

	"github.com/weftnet/spindle/state"
)

func Addr(s string) netip.Addr {
	return netip.MustParseAddr(s)
}

func Prefix(s string) netip.Prefix {
	return netip.MustParsePrefix(s)
}

var slash30 = state.MaskFromBits(30)

// RouterID returns the id used for the i-th (1-based) mock router.
func RouterID(i int) netip.Addr {
	return Addr(fmt.Sprintf("10.0.0.%d", i))
}

// LinkAddr returns the address of the left (side 1) or right (side 2) end
// of the i-th mock point-to-point link, which lives on 10.1.<i>.0/30.
func LinkAddr(i, side int) netip.Addr {
	return Addr(fmt.Sprintf("10.1.%d.%d", i, side))
}

func p2p(neighbour, local netip.Addr, metric uint32) []state.LinkRecord {
	network := netip.PrefixFrom(local, 30).Masked().Addr()
	return []state.LinkRecord{
		{Type: state.PointToPoint, ID: neighbour, Data: local, Metric: metric},
		{Type: state.StubNetwork, ID: network, Data: slash30, Metric: metric},
	}
}

// Line builds n routers in a row, R1 - R2 - ... - Rn, every link carrying
// the given metric in both directions. Returns the database and the router
// ids in order.
func Line(n int, metric uint32) (*state.LSDB, []netip.Addr) {
	lsdb := state.NewLSDB()
	ids := make([]netip.Addr, n)
	for i := 1; i <= n; i++ {
		id := RouterID(i)
		ids[i-1] = id
		lsa := &state.LSA{Type: state.RouterLSA, LinkStateID: id, AdvertisingRouter: id}
		if i > 1 {
			lsa.Links = append(lsa.Links, p2p(RouterID(i-1), LinkAddr(i-1, 2), metric)...)
		}
		if i < n {
			lsa.Links = append(lsa.Links, p2p(RouterID(i+1), LinkAddr(i, 1), metric)...)
		}
		lsdb.Insert(id, lsa)
	}
	return lsdb, ids
}

// Diamond builds the equal-cost topology
//
//	R1 - R2 - R4
//	R1 - R3 - R4
//
// with metric 1 on every link, so R1 reaches R4 over two equal-cost paths.
// Links are numbered: 1 R1-R2, 2 R1-R3, 3 R2-R4, 4 R3-R4.
func Diamond() (*state.LSDB, []netip.Addr) {
	lsdb := state.NewLSDB()
	r1, r2, r3, r4 := RouterID(1), RouterID(2), RouterID(3), RouterID(4)

	mk := func(id netip.Addr, links ...[]state.LinkRecord) {
		lsa := &state.LSA{Type: state.RouterLSA, LinkStateID: id, AdvertisingRouter: id}
		for _, l := range links {
			lsa.Links = append(lsa.Links, l...)
		}
		lsdb.Insert(id, lsa)
	}
	mk(r1, p2p(r2, LinkAddr(1, 1), 1), p2p(r3, LinkAddr(2, 1), 1))
	mk(r2, p2p(r1, LinkAddr(1, 2), 1), p2p(r4, LinkAddr(3, 1), 1))
	mk(r3, p2p(r1, LinkAddr(2, 2), 1), p2p(r4, LinkAddr(4, 1), 1))
	mk(r4, p2p(r2, LinkAddr(3, 2), 1), p2p(r3, LinkAddr(4, 2), 1))
	return lsdb, []netip.Addr{r1, r2, r3, r4}
}

// LANPrefix is the shared segment used by Broadcast.
var LANPrefix = Prefix("10.2.0.0/24")

// LANAddr returns router i's interface address on the Broadcast segment.
func LANAddr(i int) netip.Addr {
	return Addr(fmt.Sprintf("10.2.0.%d", i))
}

// StubPrefix is the stub network hanging off R3 in Broadcast.
var StubPrefix = Prefix("10.3.0.0/24")

// Broadcast builds three routers sharing one transit segment, with the
// lowest address (R1's) as designated router, plus a stub network behind
// R3.
func Broadcast() (*state.LSDB, []netip.Addr) {
	lsdb := state.NewLSDB()
	ids := []netip.Addr{RouterID(1), RouterID(2), RouterID(3)}
	dr := LANAddr(1)
	mask := state.MaskFromBits(LANPrefix.Bits())

	for i, id := range ids {
		lsa := &state.LSA{Type: state.RouterLSA, LinkStateID: id, AdvertisingRouter: id}
		lsa.Links = append(lsa.Links, state.LinkRecord{
			Type: state.TransitNetwork, ID: dr, Data: LANAddr(i + 1), Metric: 1,
		})
		if i == 2 {
			lsa.Links = append(lsa.Links, state.LinkRecord{
				Type: state.StubNetwork, ID: StubPrefix.Addr(), Data: state.MaskFromBits(StubPrefix.Bits()), Metric: 1,
			})
		}
		lsdb.Insert(id, lsa)
	}

	lsdb.Insert(dr, &state.LSA{
		Type:              state.NetworkLSA,
		LinkStateID:       dr,
		AdvertisingRouter: ids[0],
		NetworkMask:       mask,
		AttachedRouters:   []netip.Addr{LANAddr(1), LANAddr(2), LANAddr(3)},
	})
	return lsdb, ids
}

// AddExternal appends an externally-injected route advertised by the given
// router.
func AddExternal(lsdb *state.LSDB, router netip.Addr, prefix netip.Prefix, metric uint32) {
	lsdb.InsertExternal(&state.LSA{
		Type:              state.ASExternalLSA,
		LinkStateID:       prefix.Masked().Addr(),
		AdvertisingRouter: router,
		NetworkMask:       state.MaskFromBits(prefix.Bits()),
		ExternalMetric:    metric,
	})
}
