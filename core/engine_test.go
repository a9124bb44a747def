package core

import (
	"net/netip"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	"github.com/weftnet/spindle/mock"
	"github.com/weftnet/spindle/state"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestComputeAll(t *testing.T) {
	lsdb, ids := mock.Diamond()
	eng := New(lsdb)

	tables, err := eng.ComputeAll(ids)
	assert.NoError(t, err)
	assert.Len(t, tables, 4)
	for _, id := range ids {
		assert.NotEmpty(t, tables[id], "no routes for %s", id)
	}
}

func TestComputeAllDeterministic(t *testing.T) {
	lsdb, ids := mock.Diamond()
	eng := New(lsdb)

	first, err := eng.ComputeAll(ids)
	assert.NoError(t, err)
	second, err := eng.ComputeAll(ids)
	assert.NoError(t, err)

	for _, id := range ids {
		a, b := first[id], second[id]
		sortEntries(a)
		sortEntries(b)
		if diff := cmp.Diff(a, b, netipCmp); diff != "" {
			t.Errorf("tables for %s diverged between runs (-first +second):\n%s", id, diff)
		}
	}
}

func TestComputeAllPartialFailure(t *testing.T) {
	lsdb, ids := mock.Diamond()
	eng := New(lsdb)

	roots := append([]netip.Addr{mock.RouterID(9)}, ids...)
	tables, err := eng.ComputeAll(roots)
	assert.ErrorIs(t, err, ErrRootMissing)

	// the failed root aborts only its own run
	assert.Len(t, tables, 4)
	for _, id := range ids {
		assert.NotEmpty(t, tables[id])
	}
}

func TestEngineWithInterfaceResolver(t *testing.T) {
	lsdb, ids := mock.Line(3, 1)
	eng := New(lsdb, WithoutStubShortcut(), WithInterfaceResolver(func(local netip.Addr) int32 {
		if local == mock.LinkAddr(1, 1) {
			return 42
		}
		return -1
	}))

	entries, err := eng.ComputeRoutes(ids[0])
	assert.NoError(t, err)
	got := entriesFor(entries, "10.1.1.2/32")
	assert.Len(t, got, 1)
	assert.Equal(t, int32(42), got[0].OutIf)
}

func TestEngineSharedDatabase(t *testing.T) {
	// two engines over the same database must not interfere
	lsdb, ids := mock.Diamond()
	a := New(lsdb)
	b := New(lsdb)

	ea, err := a.ComputeRoutes(ids[0])
	assert.NoError(t, err)
	eb, err := b.ComputeRoutes(ids[3])
	assert.NoError(t, err)
	assert.NotEmpty(t, ea)
	assert.NotEmpty(t, eb)

	// the database still holds every advertisement untouched
	assert.Equal(t, 4, lsdb.Len())
	for _, id := range ids {
		lsa := lsdb.Lookup(id)
		assert.NotNil(t, lsa)
		assert.Equal(t, state.RouterLSA, lsa.Type)
	}
}
