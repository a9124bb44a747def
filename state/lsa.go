package state

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

// ErrAdvertisementNotEmpty is returned when an advertisement is copied into
// a destination that is already populated. This is always a caller bug.
var ErrAdvertisementNotEmpty = errors.New("destination advertisement is not empty")

// LinkType identifies what a LinkRecord describes.
type LinkType uint8

const (
	// PointToPoint is a link to another router. ID is the neighbour's
	// router id, Data is the local interface address.
	PointToPoint LinkType = iota + 1
	// TransitNetwork is a link onto a shared segment with two or more
	// attached routers. ID is the designated router's interface address on
	// the segment, Data is the local interface address.
	TransitNetwork
	// StubNetwork is a terminal network reachable only through the
	// advertising router. ID is the network address, Data is the network
	// mask.
	StubNetwork
)

func (t LinkType) String() string {
	switch t {
	case PointToPoint:
		return "point-to-point"
	case TransitNetwork:
		return "transit"
	case StubNetwork:
		return "stub"
	}
	return fmt.Sprintf("link-type(%d)", uint8(t))
}

// LinkRecord is one edge in a router advertisement. Records are immutable
// once attached to an advertisement.
type LinkRecord struct {
	Type   LinkType
	ID     netip.Addr
	Data   netip.Addr
	Metric uint32
}

func (l LinkRecord) String() string {
	return fmt.Sprintf("(%s id: %s, data: %s, metric: %d)", l.Type, l.ID, l.Data, l.Metric)
}

// LSType identifies the kind of link-state advertisement.
type LSType uint8

const (
	RouterLSA LSType = iota + 1
	NetworkLSA
	ASExternalLSA
)

func (t LSType) String() string {
	switch t {
	case RouterLSA:
		return "router"
	case NetworkLSA:
		return "network"
	case ASExternalLSA:
		return "as-external"
	}
	return fmt.Sprintf("ls-type(%d)", uint8(t))
}

// LSA is a link-state advertisement. The populated fields depend on Type:
// RouterLSA carries Links, NetworkLSA carries NetworkMask and
// AttachedRouters, ASExternalLSA carries NetworkMask and ExternalMetric.
// After insertion the LSDB owns the advertisement; computation runs only
// borrow it and never mutate it.
type LSA struct {
	Type              LSType
	LinkStateID       netip.Addr
	AdvertisingRouter netip.Addr

	Links []LinkRecord

	NetworkMask     netip.Addr
	AttachedRouters []netip.Addr

	ExternalMetric uint32
}

// IsEmpty reports whether the advertisement carries no content yet.
func (l *LSA) IsEmpty() bool {
	return l.Type == 0 && len(l.Links) == 0 && len(l.AttachedRouters) == 0
}

// CopyInto copies the advertisement's contents into dst. dst must be empty;
// copying over a populated advertisement is a caller error and fails with
// ErrAdvertisementNotEmpty.
func (l *LSA) CopyInto(dst *LSA) error {
	if !dst.IsEmpty() {
		return fmt.Errorf("copy %s advertisement %s: %w", l.Type, l.LinkStateID, ErrAdvertisementNotEmpty)
	}
	*dst = *l
	dst.Links = slices.Clone(l.Links)
	dst.AttachedRouters = slices.Clone(l.AttachedRouters)
	return nil
}

func (l *LSA) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s lsa (id: %s, adv: %s", l.Type, l.LinkStateID, l.AdvertisingRouter)
	switch l.Type {
	case RouterLSA:
		fmt.Fprintf(&b, ", links: %d", len(l.Links))
	case NetworkLSA:
		fmt.Fprintf(&b, ", mask: %s, attached: %d", l.NetworkMask, len(l.AttachedRouters))
	case ASExternalLSA:
		fmt.Fprintf(&b, ", mask: %s, metric: %d", l.NetworkMask, l.ExternalMetric)
	}
	b.WriteString(")")
	return b.String()
}

// MaskBits converts a dotted-quad network mask to a prefix length.
func MaskBits(mask netip.Addr) int {
	bits := 0
	for _, b := range mask.As4() {
		for ; b&0x80 != 0; b <<= 1 {
			bits++
		}
	}
	return bits
}

// MaskFromBits converts a prefix length to a dotted-quad network mask.
func MaskFromBits(bits int) netip.Addr {
	var m [4]byte
	for i := 0; i < bits; i++ {
		m[i/8] |= 0x80 >> (i % 8)
	}
	return netip.AddrFrom4(m)
}

// NetworkPrefix combines a network address with a dotted-quad mask.
func NetworkPrefix(addr, mask netip.Addr) netip.Prefix {
	return netip.PrefixFrom(addr, MaskBits(mask)).Masked()
}

// HostPrefix returns the full-length prefix for a single address.
func HostPrefix(addr netip.Addr) netip.Prefix {
	return netip.PrefixFrom(addr, addr.BitLen())
}
