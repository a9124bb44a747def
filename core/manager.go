package core

import (
	"log/slog"
	"net/netip"
	"slices"

	"github.com/weftnet/spindle/state"
)

// Discoverer produces a fresh set of advertisements: one router
// advertisement per router, zero or more network advertisements per shared
// segment, and any external advertisements.
type Discoverer interface {
	DiscoverLSAs(lsdb *state.LSDB) error
}

// Installer consumes computed tables. DeleteRoutes clears everything
// previously installed; InstallRoutes installs one root's entries.
type Installer interface {
	DeleteRoutes()
	InstallRoutes(root netip.Addr, entries []state.RouteEntry)
}

// Manager drives the full recompute cycle: clear installed routes, rebuild
// the LSDB through discovery, compute a table per root and hand each table
// to the installer. The previous database is discarded wholesale; topology
// changes resubmit full advertisements.
type Manager struct {
	log  *slog.Logger
	disc Discoverer
	inst Installer
	opts []Option
}

func NewManager(log *slog.Logger, disc Discoverer, inst Installer, opts ...Option) *Manager {
	return &Manager{log: log, disc: disc, inst: inst, opts: opts}
}

// Recompute runs one full cycle and returns the freshly built database. A
// root whose run failed keeps an empty table; its error is joined into the
// returned error while the remaining roots install normally.
func (m *Manager) Recompute() (*state.LSDB, error) {
	lsdb := state.NewLSDB()
	if err := m.disc.DiscoverLSAs(lsdb); err != nil {
		return nil, err
	}

	roots := make([]netip.Addr, 0, lsdb.Len())
	lsdb.Range(func(lsa *state.LSA) bool {
		if lsa.Type == state.RouterLSA {
			roots = append(roots, lsa.LinkStateID)
		}
		return true
	})
	slices.SortFunc(roots, netip.Addr.Compare)

	m.inst.DeleteRoutes()

	eng := New(lsdb, append([]Option{WithLogger(m.log)}, m.opts...)...)
	tables, err := eng.ComputeAll(roots)
	for _, root := range roots {
		if entries, ok := tables[root]; ok {
			m.inst.InstallRoutes(root, entries)
		}
	}
	m.log.Info("recompute cycle complete", "roots", len(roots), "advertisements", lsdb.Len())
	return lsdb, err
}
