package state

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func routerAd(id string, links ...LinkRecord) (netip.Addr, *LSA) {
	addr := netip.MustParseAddr(id)
	return addr, &LSA{Type: RouterLSA, LinkStateID: addr, AdvertisingRouter: addr, Links: links}
}

func TestLSDBInsertLookup(t *testing.T) {
	lsdb := NewLSDB()
	id, lsa := routerAd("10.0.0.1")
	lsdb.Insert(id, lsa)

	assert.Same(t, lsa, lsdb.Lookup(id))
	assert.Nil(t, lsdb.Lookup(netip.MustParseAddr("10.0.0.9")))
	assert.Equal(t, 1, lsdb.Len())

	// reinsert replaces
	_, lsa2 := routerAd("10.0.0.1", LinkRecord{Type: StubNetwork})
	lsdb.Insert(id, lsa2)
	assert.Same(t, lsa2, lsdb.Lookup(id))
	assert.Equal(t, 1, lsdb.Len())
}

func TestLSDBLookupByLinkData(t *testing.T) {
	lsdb := NewLSDB()
	dr := netip.MustParseAddr("10.2.0.1")
	iface := netip.MustParseAddr("10.2.0.2")

	id, lsa := routerAd("10.0.0.2", LinkRecord{Type: TransitNetwork, ID: dr, Data: iface, Metric: 1})
	lsdb.Insert(id, lsa)

	// a stub record with the same data must not match
	other, otherLSA := routerAd("10.0.0.3", LinkRecord{Type: StubNetwork, ID: iface, Data: netip.MustParseAddr("255.255.255.0")})
	lsdb.Insert(other, otherLSA)

	assert.Same(t, lsa, lsdb.LookupByLinkData(iface))
	assert.Nil(t, lsdb.LookupByLinkData(netip.MustParseAddr("10.2.0.9")))
}

func TestLSDBAging(t *testing.T) {
	lsdb := NewLSDB(WithMaxAge(20 * time.Millisecond))
	id, lsa := routerAd("10.0.0.1")
	lsdb.Insert(id, lsa)
	assert.Same(t, lsa, lsdb.Lookup(id))

	time.Sleep(40 * time.Millisecond)
	assert.Nil(t, lsdb.Lookup(id))
}

func TestLSDBExternals(t *testing.T) {
	lsdb := NewLSDB()
	assert.Equal(t, 0, lsdb.ExternalCount())
	assert.Nil(t, lsdb.ExternalAt(0))

	e1 := &LSA{Type: ASExternalLSA, LinkStateID: netip.MustParseAddr("192.168.1.0"), ExternalMetric: 5}
	e2 := &LSA{Type: ASExternalLSA, LinkStateID: netip.MustParseAddr("192.168.2.0"), ExternalMetric: 7}
	lsdb.InsertExternal(e1)
	lsdb.InsertExternal(e2)

	assert.Equal(t, 2, lsdb.ExternalCount())
	assert.Same(t, e1, lsdb.ExternalAt(0))
	assert.Same(t, e2, lsdb.ExternalAt(1))
	assert.Nil(t, lsdb.ExternalAt(2))
	assert.Nil(t, lsdb.ExternalAt(-1))
}

func TestLSDBRange(t *testing.T) {
	lsdb := NewLSDB()
	for _, id := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		k, lsa := routerAd(id)
		lsdb.Insert(k, lsa)
	}
	seen := 0
	lsdb.Range(func(lsa *LSA) bool {
		seen++
		return true
	})
	assert.Equal(t, 3, seen)

	seen = 0
	lsdb.Range(func(lsa *LSA) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}
