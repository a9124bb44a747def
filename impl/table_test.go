package impl

import (
	"io"
	"log/slog"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weftnet/spindle/core"
	"github.com/weftnet/spindle/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestForwardingTableLongestPrefix(t *testing.T) {
	tbl := &ForwardingTable{}
	def := state.RouteEntry{Dest: prefix("0.0.0.0/0"), NextHop: addr("10.1.1.2"), Metric: 1}
	net8 := state.RouteEntry{Dest: prefix("10.0.0.0/8"), NextHop: addr("10.1.2.2"), Metric: 2}
	tbl.insert(def)
	tbl.insert(net8)

	got, ok := tbl.Lookup(addr("10.5.5.5"))
	assert.True(t, ok)
	assert.Equal(t, []state.RouteEntry{net8}, got)

	got, ok = tbl.Lookup(addr("192.168.1.1"))
	assert.True(t, ok)
	assert.Equal(t, []state.RouteEntry{def}, got)

	assert.Equal(t, 2, tbl.Len())
}

func TestForwardingTableEqualCost(t *testing.T) {
	tbl := &ForwardingTable{}
	dest := prefix("10.1.4.2/32")
	a := state.RouteEntry{Dest: dest, NextHop: addr("10.1.1.2"), Metric: 2}
	b := state.RouteEntry{Dest: dest, NextHop: addr("10.1.2.2"), OutIf: 2, Metric: 2}
	tbl.insert(a)
	tbl.insert(b)

	// one destination, two exits
	assert.Equal(t, 1, tbl.Len())
	got, ok := tbl.Lookup(addr("10.1.4.2"))
	assert.True(t, ok)
	assert.ElementsMatch(t, []state.RouteEntry{a, b}, got)

	dump := tbl.Dump()
	assert.Len(t, dump, 2)
	assert.Equal(t, a.NextHop, dump[0].NextHop)
	assert.Equal(t, b.NextHop, dump[1].NextHop)
}

func TestForwardingTablesInstallDelete(t *testing.T) {
	f := NewForwardingTables(testLogger())
	r1, r2 := addr("10.0.0.1"), addr("10.0.0.2")

	f.InstallRoutes(r2, []state.RouteEntry{{Dest: prefix("10.1.1.0/30"), Metric: 1}})
	f.InstallRoutes(r1, []state.RouteEntry{{Dest: prefix("10.1.1.0/30"), NextHop: addr("10.1.1.2"), Metric: 2}})

	assert.Equal(t, []netip.Addr{r1, r2}, f.Roots())

	got, ok := f.Lookup(r1, addr("10.1.1.1"))
	assert.True(t, ok)
	assert.Len(t, got, 1)

	_, ok = f.Lookup(addr("10.0.0.9"), addr("10.1.1.1"))
	assert.False(t, ok)

	f.DeleteRoutes()
	assert.Empty(t, f.Roots())
	assert.Nil(t, f.Table(r1))
}

func TestRouteWithdrawal(t *testing.T) {
	// R1 - R2 - R3, then the R2-R3 link goes away between cycles
	cfg := &state.Config{
		Routers: []state.RouterCfg{
			{Name: "r1", ID: addr("10.0.0.1")},
			{Name: "r2", ID: addr("10.0.0.2")},
			{Name: "r3", ID: addr("10.0.0.3")},
		},
		Links: []state.LinkCfg{
			{
				A: "r1", B: "r2",
				AAddr: addr("10.1.1.1"), BAddr: addr("10.1.1.2"),
				Prefix: prefix("10.1.1.0/30"), Metric: 1,
			},
			{
				A: "r2", B: "r3",
				AAddr: addr("10.1.2.1"), BAddr: addr("10.1.2.2"),
				Prefix: prefix("10.1.2.0/30"), Metric: 1,
			},
		},
	}

	tables := NewForwardingTables(testLogger())
	disc := &ConfigDiscoverer{Cfg: cfg}
	mgr := core.NewManager(testLogger(), disc, tables, core.WithoutStubShortcut())

	_, err := mgr.Recompute()
	assert.NoError(t, err)

	r1 := addr("10.0.0.1")
	got, ok := tables.Lookup(r1, addr("10.1.2.2"))
	assert.True(t, ok)
	assert.Equal(t, addr("10.1.1.2"), got[0].NextHop)

	// drop the far link and run another cycle
	cfg.Links = cfg.Links[:1]
	_, err = mgr.Recompute()
	assert.NoError(t, err)

	_, ok = tables.Lookup(r1, addr("10.1.2.2"))
	assert.False(t, ok)

	// the near side is still installed
	got, ok = tables.Lookup(r1, addr("10.1.1.2"))
	assert.True(t, ok)
	assert.Equal(t, addr("10.1.1.2"), got[0].NextHop)
}
