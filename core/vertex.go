package core

import (
	"net/netip"
	"slices"

	"github.com/weftnet/spindle/state"
)

type vertexKind uint8

const (
	vertexRouter vertexKind = iota + 1
	vertexNetwork
)

// nodeExit is one way out of the root towards a vertex: the first-hop
// address (zero when directly connected) and the root's outgoing interface.
type nodeExit struct {
	nextHop netip.Addr
	outIf   int32
}

// vertex is a node in the SPF tree under construction. Vertices live in the
// run's arena map for the duration of one computation and are dropped
// wholesale with it; parents and children hold borrowed pointers only.
// More than one exit, or more than one parent, means equal-cost paths were
// merged into this vertex.
type vertex struct {
	kind      vertexKind
	id        netip.Addr
	lsa       *state.LSA
	dist      uint32
	exits     []nodeExit
	parents   []*vertex
	children  []*vertex
	processed bool
}

func newVertex(lsa *state.LSA) *vertex {
	kind := vertexRouter
	if lsa.Type == state.NetworkLSA {
		kind = vertexNetwork
	}
	return &vertex{
		kind: kind,
		id:   lsa.LinkStateID,
		lsa:  lsa,
		dist: state.Infinity,
	}
}

// setRootExit replaces any previous exit with e. Used when a strictly
// better path is found; the old path's exits are discarded.
func (v *vertex) setRootExit(e nodeExit) {
	v.exits = append(v.exits[:0], e)
}

// mergeRootExits adds w's exits not already present, preserving first-seen
// order so equal runs produce identical output.
func (v *vertex) mergeRootExits(w *vertex) {
	for _, e := range w.exits {
		if !slices.Contains(v.exits, e) {
			v.exits = append(v.exits, e)
		}
	}
}

// inheritRootExits replaces v's exits with w's. By construction the first
// hop away from the root is fixed once a one-hop vertex settles; all of its
// descendants forward through the same exits.
func (v *vertex) inheritRootExits(w *vertex) {
	v.exits = append(v.exits[:0], w.exits...)
}

func (v *vertex) setParent(p *vertex) {
	v.parents = append(v.parents[:0], p)
}

// mergeParents adds w's parents not already present (equal-cost merge).
func (v *vertex) mergeParents(w *vertex) {
	for _, p := range w.parents {
		if !slices.Contains(v.parents, p) {
			v.parents = append(v.parents, p)
		}
	}
}

// linkChildren adds v to the children list of each of its parents. Called
// once, when v is extracted from the candidate queue and finalized.
func (v *vertex) linkChildren() {
	for _, p := range v.parents {
		if !slices.Contains(p.children, v) {
			p.children = append(p.children, v)
		}
	}
}
