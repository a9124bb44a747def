package impl

import (
	"log/slog"
	"net/netip"
	"slices"
	"sync"

	"github.com/gaissmai/bart"

	"github.com/weftnet/spindle/state"
)

// ForwardingTable is one router's installed table: a prefix trie mapping a
// destination to its route entries (several on equal-cost paths). Lookups
// are longest-prefix matches, so a computed default route covers
// everything more specific routes do not.
type ForwardingTable struct {
	tbl bart.Table[[]state.RouteEntry]
}

func (t *ForwardingTable) insert(e state.RouteEntry) {
	existing, _ := t.tbl.Get(e.Dest)
	t.tbl.Insert(e.Dest, append(existing, e))
}

// Lookup returns the entries of the longest matching prefix for dst.
func (t *ForwardingTable) Lookup(dst netip.Addr) ([]state.RouteEntry, bool) {
	return t.tbl.Lookup(dst)
}

// Len returns the number of distinct destinations.
func (t *ForwardingTable) Len() int {
	return t.tbl.Size()
}

// Dump returns every installed entry sorted by destination.
func (t *ForwardingTable) Dump() []state.RouteEntry {
	var out []state.RouteEntry
	for _, entries := range t.tbl.All() {
		out = append(out, entries...)
	}
	slices.SortFunc(out, func(a, b state.RouteEntry) int {
		if c := a.Dest.Addr().Compare(b.Dest.Addr()); c != 0 {
			return c
		}
		if c := a.Dest.Bits() - b.Dest.Bits(); c != 0 {
			return c
		}
		return a.NextHop.Compare(b.NextHop)
	})
	return out
}

// ForwardingTables holds one ForwardingTable per root and implements the
// core Installer contract.
type ForwardingTables struct {
	log *slog.Logger

	mu     sync.RWMutex
	tables map[netip.Addr]*ForwardingTable
}

func NewForwardingTables(log *slog.Logger) *ForwardingTables {
	return &ForwardingTables{
		log:    log,
		tables: make(map[netip.Addr]*ForwardingTable),
	}
}

// DeleteRoutes drops every installed table. The next install cycle starts
// from nothing, so withdrawn destinations disappear.
func (f *ForwardingTables) DeleteRoutes() {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.tables)
	f.tables = make(map[netip.Addr]*ForwardingTable)
	if f.log != nil && n > 0 {
		f.log.Debug("deleted installed tables", "tables", n)
	}
}

// InstallRoutes installs one root's computed entries, replacing its
// previous table.
func (f *ForwardingTables) InstallRoutes(root netip.Addr, entries []state.RouteEntry) {
	t := &ForwardingTable{}
	for _, e := range entries {
		t.insert(e)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[root] = t
	if f.log != nil {
		f.log.Debug("installed table", "root", root, "routes", len(entries))
	}
}

// Table returns the installed table for root, or nil.
func (f *ForwardingTables) Table(root netip.Addr) *ForwardingTable {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.tables[root]
}

// Roots returns the roots with installed tables, sorted.
func (f *ForwardingTables) Roots() []netip.Addr {
	f.mu.RLock()
	defer f.mu.RUnlock()
	roots := make([]netip.Addr, 0, len(f.tables))
	for root := range f.tables {
		roots = append(roots, root)
	}
	slices.SortFunc(roots, netip.Addr.Compare)
	return roots
}

// Lookup answers how root would forward to dst.
func (f *ForwardingTables) Lookup(root netip.Addr, dst netip.Addr) ([]state.RouteEntry, bool) {
	t := f.Table(root)
	if t == nil {
		return nil, false
	}
	return t.Lookup(dst)
}
