package core

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/weftnet/spindle/perf"
	"github.com/weftnet/spindle/state"
)

// Engine computes per-root forwarding tables from a populated LSDB. The
// database is shared read-only between runs; each run keeps its own vertex
// arena and exploration status, so ComputeRoutes is safe to call from
// multiple goroutines.
type Engine struct {
	lsdb     *state.LSDB
	log      *slog.Logger
	resolver func(local netip.Addr) int32
	fullSPF  bool
}

type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithInterfaceResolver maps a root-local interface address to the
// outgoing interface identifier emitted in route entries. Without it, link
// records of the root advertisement are numbered in order.
func WithInterfaceResolver(fn func(local netip.Addr) int32) Option {
	return func(e *Engine) {
		e.resolver = fn
	}
}

// WithoutStubShortcut forces the full SPF computation even for roots with
// a single link. The result is behaviourally equivalent; the shortcut only
// saves work.
func WithoutStubShortcut() Option {
	return func(e *Engine) {
		e.fullSPF = true
	}
}

func New(lsdb *state.LSDB, opts ...Option) *Engine {
	e := &Engine{lsdb: lsdb, log: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeRoutes builds the shortest-path tree rooted at root and returns
// the forwarding entries for every reachable destination, one entry per
// equal-cost exit. The LSDB is not modified.
func (e *Engine) ComputeRoutes(root netip.Addr) ([]state.RouteEntry, error) {
	start := time.Now()
	rlsa := e.lsdb.Lookup(root)
	if rlsa == nil || rlsa.Type != state.RouterLSA {
		return nil, fmt.Errorf("%s: %w", root, ErrRootMissing)
	}

	run := &spfRun{
		eng:    e,
		root:   root,
		lsdb:   e.lsdb,
		tree:   make(map[netip.Addr]*vertex),
		status: make(map[netip.Addr]spfStatus),
		log:    e.log.With("root", root),
	}

	if !e.fullSPF {
		done, err := run.checkStubRoot(rlsa)
		if err != nil {
			return nil, err
		}
		if done {
			e.finish(run, start)
			return run.entries, nil
		}
	}

	if err := run.calculate(rlsa); err != nil {
		return nil, err
	}
	e.finish(run, start)
	return run.entries, nil
}

func (e *Engine) finish(run *spfRun, start time.Time) {
	elapsed := time.Since(start)
	perf.SPFRuns.Add(1)
	perf.SPFDuration.Add(float64(elapsed.Microseconds()))
	perf.RoutesComputed.Add(float64(len(run.entries)))
	run.log.Debug("spf run complete", "routes", len(run.entries), "elapsed", elapsed)
}

// ComputeAll computes forwarding tables for every given root. Runs are
// independent and fan out across goroutines; a failed root aborts only its
// own run and is reported in the joined error.
func (e *Engine) ComputeAll(roots []netip.Addr) (map[netip.Addr][]state.RouteEntry, error) {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		errs   []error
		tables = make(map[netip.Addr][]state.RouteEntry, len(roots))
	)
	for _, root := range roots {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := e.ComputeRoutes(root)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			tables[root] = entries
		}()
	}
	wg.Wait()
	return tables, errors.Join(errs...)
}
