package core

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"slices"

	"github.com/weftnet/spindle/state"
)

var (
	// ErrRootMissing means the requested root has no router advertisement
	// in the database.
	ErrRootMissing = errors.New("root router advertisement not found")
	// ErrLinkInconsistent means a link record references a neighbour whose
	// advertisement does not describe a consistent far side (missing back
	// link, or the two ends disagree about their subnet). The input
	// topology is malformed; the run is aborted.
	ErrLinkInconsistent = errors.New("link endpoints are inconsistent")
	// ErrGraphAnomaly means a derived structure was revisited where the
	// construction guarantees it cannot be. The run is aborted instead of
	// looping.
	ErrGraphAnomaly = errors.New("graph anomaly detected")
)

var defaultRoute = netip.MustParsePrefix("0.0.0.0/0")

// AddMetric adds two path metrics, saturating at Infinity instead of
// wrapping. Finite inputs within any sane topology never reach the
// sentinel.
func AddMetric(a, b uint32) uint32 {
	if a > state.Infinity-b {
		return state.Infinity
	}
	return a + b
}

type spfStatus uint8

const (
	statusNotExplored spfStatus = iota
	statusCandidate
	statusInTree
)

// spfRun is the private state of one shortest-path-first computation: the
// vertex arena, per-advertisement exploration status and the output entry
// list. Runs share the LSDB read-only, so any number of roots can be
// computed concurrently.
type spfRun struct {
	eng     *Engine
	root    netip.Addr
	lsdb    *state.LSDB
	tree    map[netip.Addr]*vertex
	status  map[netip.Addr]spfStatus
	spfroot *vertex
	entries []state.RouteEntry
	log     *slog.Logger
}

func (r *spfRun) emitExits(dest netip.Prefix, metric uint32, exits []nodeExit) {
	for _, e := range exits {
		r.entries = append(r.entries, state.RouteEntry{
			Dest:    dest,
			NextHop: e.nextHop,
			OutIf:   e.outIf,
			Metric:  metric,
		})
	}
}

// outIf resolves the root's outgoing interface for one of its local
// addresses. Without a resolver, link records of the root advertisement
// are numbered in order.
func (r *spfRun) outIf(local netip.Addr) int32 {
	if r.eng.resolver != nil {
		return r.eng.resolver(local)
	}
	for i := range r.spfrootLSA().Links {
		if r.spfrootLSA().Links[i].Data == local {
			return int32(i)
		}
	}
	return -1
}

func (r *spfRun) spfrootLSA() *state.LSA {
	if r.spfroot != nil {
		return r.spfroot.lsa
	}
	return r.lsdb.Lookup(r.root)
}

// checkStubRoot handles roots that cannot be transit points: a root with
// exactly one point-to-point or transit link gets a single default route
// through it and SPF is skipped entirely. Returns true when the run is
// complete.
func (r *spfRun) checkStubRoot(rlsa *state.LSA) (bool, error) {
	var link *state.LinkRecord
	links := 0
	for i := range rlsa.Links {
		l := &rlsa.Links[i]
		if l.Type == state.PointToPoint || l.Type == state.TransitNetwork {
			links++
			link = l
		}
	}
	if links == 0 {
		r.log.Info("root has no links to other routers, nothing is reachable")
		return true, nil
	}
	if links > 1 {
		return false, nil
	}

	switch link.Type {
	case state.TransitNetwork:
		if link.ID == link.Data {
			// the root is the segment's designated router; let full SPF
			// work out the neighbours
			return false, nil
		}
		r.entries = append(r.entries, state.RouteEntry{
			Dest:    defaultRoute,
			NextHop: link.ID,
			OutIf:   r.outIf(link.Data),
			Metric:  link.Metric,
		})
	case state.PointToPoint:
		wLSA := r.lsdb.Lookup(link.ID)
		if wLSA == nil {
			r.log.Debug("stub root neighbour has no advertisement", "neighbour", link.ID)
			return true, nil
		}
		nh, err := facingAddr(rlsa, link, wLSA)
		if err != nil {
			return true, err
		}
		r.entries = append(r.entries, state.RouteEntry{
			Dest:    defaultRoute,
			NextHop: nh,
			OutIf:   r.outIf(link.Data),
			Metric:  link.Metric,
		})
	}
	return true, nil
}

// calculate runs the SPF main loop rooted at rlsa and emits every route
// entry for the run.
func (r *spfRun) calculate(rlsa *state.LSA) error {
	root := newVertex(rlsa)
	root.dist = 0
	root.processed = true
	r.tree[root.id] = root
	r.spfroot = root
	r.status[root.id] = statusInTree

	cand := newCandidateQueue()
	v := root
	for {
		if err := r.next(v, cand); err != nil {
			return err
		}
		v = cand.popMin()
		if v == nil {
			break
		}
		r.status[v.id] = statusInTree
		v.processed = true
		v.linkChildren()
		if v.kind == vertexRouter {
			r.intraAddRouter(v)
		} else {
			r.intraAddTransit(v)
		}
	}

	if err := r.processStubs(root, make(map[netip.Addr]uint8)); err != nil {
		return err
	}
	return r.processExternals()
}

// next examines v's advertisement and updates the candidate queue with any
// neighbours not yet finalized.
func (r *spfRun) next(v *vertex, cand *candidateQueue) error {
	if v.kind == vertexRouter {
		for i := range v.lsa.Links {
			l := &v.lsa.Links[i]
			if l.Type == state.StubNetwork {
				// terminal, handled once the tree is complete
				continue
			}
			wLSA := r.lsdb.Lookup(l.ID)
			if wLSA == nil {
				r.log.Debug("link target has no advertisement", "from", v.id, "link", l)
				continue
			}
			if err := r.consider(v, l, wLSA, AddMetric(v.dist, l.Metric), cand); err != nil {
				return err
			}
		}
		return nil
	}

	// network vertex: attached routers are zero cost beyond the network
	for _, addr := range v.lsa.AttachedRouters {
		wLSA := r.lsdb.LookupByLinkData(addr)
		if wLSA == nil {
			r.log.Debug("attached router has no advertisement", "network", v.id, "addr", addr)
			continue
		}
		if err := r.consider(v, nil, wLSA, v.dist, cand); err != nil {
			return err
		}
	}
	return nil
}

// consider processes one edge from finalized vertex v towards the owner of
// wLSA at tentative distance dist.
func (r *spfRun) consider(v *vertex, l *state.LinkRecord, wLSA *state.LSA, dist uint32, cand *candidateQueue) error {
	id := wLSA.LinkStateID
	switch r.status[id] {
	case statusInTree:
		// already finalized, cannot improve
		return nil

	case statusNotExplored:
		w := newVertex(wLSA)
		if err := r.nexthop(v, w, l, dist); err != nil {
			return err
		}
		r.tree[id] = w
		r.status[id] = statusCandidate
		cand.push(w)

	case statusCandidate:
		cw := cand.find(id)
		if cw == nil {
			return fmt.Errorf("vertex %s marked candidate but absent from queue: %w", id, ErrGraphAnomaly)
		}
		if dist > cw.dist {
			return nil
		}
		// scratch vertex carries the new path's exits, then is discarded
		w := newVertex(wLSA)
		if err := r.nexthop(v, w, l, dist); err != nil {
			return err
		}
		if dist == cw.dist {
			// equal-cost path: merge, keep distance and queue position
			cw.mergeRootExits(w)
			cw.mergeParents(w)
			return nil
		}
		// strictly better path: the old one is discarded wholesale
		cw.inheritRootExits(w)
		cw.setParent(v)
		cand.decreaseKey(cw, dist)
	}
	return nil
}

// nexthop computes w's exit directions from the root, given that it was
// reached through v over link record l (nil when v is a network vertex).
// The first hop is derived from link records only while v is at most one
// hop from the root; every vertex further out inherits its parent's exits.
func (r *spfRun) nexthop(v, w *vertex, l *state.LinkRecord, dist uint32) error {
	switch {
	case v == r.spfroot && w.kind == vertexRouter:
		nh, err := facingAddr(v.lsa, l, w.lsa)
		if err != nil {
			return err
		}
		w.setRootExit(nodeExit{nextHop: nh, outIf: r.outIf(l.Data)})

	case v == r.spfroot:
		// network directly attached to the root
		w.setRootExit(nodeExit{outIf: r.outIf(l.Data)})

	case v.kind == vertexNetwork && slices.Contains(v.parents, r.spfroot):
		// router across a directly-attached segment: the first hop is its
		// interface address on that segment
		nh, ok := lanAddr(w.lsa, v.id)
		if !ok {
			return fmt.Errorf("router %s advertises no interface on network %s: %w", w.id, v.id, ErrLinkInconsistent)
		}
		outIf := int32(-1)
		if len(v.exits) > 0 {
			outIf = v.exits[0].outIf
		}
		w.setRootExit(nodeExit{nextHop: nh, outIf: outIf})

	default:
		w.inheritRootExits(v)
	}
	w.dist = dist
	w.setParent(v)
	return nil
}

// facingAddr finds the far-side interface address of a point-to-point link:
// the record in wLSA that points back at vLSA's router and sits on the same
// subnet as l. Both ends disagreeing about the subnet is a discovery-layer
// bug and fails the run.
func facingAddr(vLSA *state.LSA, l *state.LinkRecord, wLSA *state.LSA) (netip.Addr, error) {
	mask, haveMask := p2pMask(vLSA, l)
	sawBack := false
	for i := range wLSA.Links {
		lr := &wLSA.Links[i]
		if lr.Type != state.PointToPoint || lr.ID != vLSA.LinkStateID {
			continue
		}
		sawBack = true
		if !haveMask {
			return lr.Data, nil
		}
		bits := state.MaskBits(mask)
		if netip.PrefixFrom(lr.Data, bits).Masked() == netip.PrefixFrom(l.Data, bits).Masked() {
			return lr.Data, nil
		}
	}
	if sawBack {
		return netip.Addr{}, fmt.Errorf("%s and %s disagree about their shared subnet: %w",
			vLSA.LinkStateID, wLSA.LinkStateID, ErrLinkInconsistent)
	}
	return netip.Addr{}, fmt.Errorf("%s advertises no link back to %s: %w",
		wLSA.LinkStateID, vLSA.LinkStateID, ErrLinkInconsistent)
}

// p2pMask recovers the subnet mask of a point-to-point link from the twin
// stub record the advertising router carries for it.
func p2pMask(vLSA *state.LSA, l *state.LinkRecord) (netip.Addr, bool) {
	for i := range vLSA.Links {
		s := &vLSA.Links[i]
		if s.Type != state.StubNetwork {
			continue
		}
		if state.NetworkPrefix(s.ID, s.Data).Contains(l.Data) {
			return s.Data, true
		}
	}
	return netip.Addr{}, false
}

// lanAddr returns wLSA's interface address on the transit network whose
// designated-router address is drAddr.
func lanAddr(wLSA *state.LSA, drAddr netip.Addr) (netip.Addr, bool) {
	for i := range wLSA.Links {
		lr := &wLSA.Links[i]
		if lr.Type == state.TransitNetwork && lr.ID == drAddr {
			return lr.Data, true
		}
	}
	return netip.Addr{}, false
}

// intraAddRouter emits host routes to every point-to-point interface
// address of a just-finalized router vertex.
func (r *spfRun) intraAddRouter(v *vertex) {
	for i := range v.lsa.Links {
		l := &v.lsa.Links[i]
		if l.Type != state.PointToPoint {
			continue
		}
		r.emitExits(state.HostPrefix(l.Data), v.dist, v.exits)
	}
}

// intraAddTransit emits the network route for a just-finalized transit
// network vertex.
func (r *spfRun) intraAddTransit(v *vertex) {
	dest := state.NetworkPrefix(v.lsa.LinkStateID, v.lsa.NetworkMask)
	r.emitExits(dest, v.dist, v.exits)
}

// processStubs walks the finished tree and emits one entry per stub link
// record of every router vertex. Vertices with multiple parents are walked
// once; meeting a vertex again while it is still on the walk stack means
// the tree has a cycle, which the main loop cannot produce.
func (r *spfRun) processStubs(v *vertex, color map[netip.Addr]uint8) error {
	const (
		walking = 1
		done    = 2
	)
	switch color[v.id] {
	case walking:
		return fmt.Errorf("vertex %s revisited inside its own subtree: %w", v.id, ErrGraphAnomaly)
	case done:
		return nil
	}
	color[v.id] = walking
	if v.kind == vertexRouter {
		for i := range v.lsa.Links {
			l := &v.lsa.Links[i]
			if l.Type == state.StubNetwork {
				r.intraAddStub(l, v)
			}
		}
	}
	for _, c := range v.children {
		if err := r.processStubs(c, color); err != nil {
			return err
		}
	}
	color[v.id] = done
	return nil
}

func (r *spfRun) intraAddStub(l *state.LinkRecord, v *vertex) {
	dest := state.NetworkPrefix(l.ID, l.Data)
	if v == r.spfroot {
		// the root's own stubs are directly connected
		outIf := int32(-1)
		if local, ok := r.rootIfaceOn(dest); ok {
			outIf = r.outIf(local)
		}
		r.entries = append(r.entries, state.NewNetworkRoute(dest, outIf, l.Metric))
		return
	}
	r.emitExits(dest, AddMetric(v.dist, l.Metric), v.exits)
}

// rootIfaceOn finds the root's local address inside the given prefix.
func (r *spfRun) rootIfaceOn(dest netip.Prefix) (netip.Addr, bool) {
	for i := range r.spfroot.lsa.Links {
		l := &r.spfroot.lsa.Links[i]
		if l.Type == state.StubNetwork {
			continue
		}
		if dest.Contains(l.Data) {
			return l.Data, true
		}
	}
	return netip.Addr{}, false
}

// processExternals emits one entry per external advertisement whose
// originator was reached by the run. The external metric is additive in
// the same unit as link metrics.
func (r *spfRun) processExternals() error {
	for i := 0; i < r.lsdb.ExternalCount(); i++ {
		elsa := r.lsdb.ExternalAt(i)
		if elsa.AdvertisingRouter == r.root {
			continue
		}
		v := r.tree[elsa.AdvertisingRouter]
		if v == nil || !v.processed {
			r.log.Debug("external destination unreachable", "adv", elsa.AdvertisingRouter, "dest", elsa.LinkStateID)
			continue
		}
		dest := state.NetworkPrefix(elsa.LinkStateID, elsa.NetworkMask)
		r.emitExits(dest, AddMetric(v.dist, elsa.ExternalMetric), v.exits)
	}
	return nil
}
