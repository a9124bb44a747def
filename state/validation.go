package state

import (
	"fmt"
	"net/netip"
	"regexp"
)

var namePattern = regexp.MustCompile("^[0-9a-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid router name, must match pattern %s", s, namePattern.String())
	}
	return nil
}

// ConfigValidator rejects malformed topologies before discovery runs, so
// the engine only ever sees structurally consistent advertisements.
func ConfigValidator(cfg *Config) error {
	if len(cfg.Routers) == 0 {
		return fmt.Errorf("no routers defined")
	}
	seenIDs := make(map[netip.Addr]string)
	for _, r := range cfg.Routers {
		if err := NameValidator(r.Name); err != nil {
			return err
		}
		if !r.ID.IsValid() {
			return fmt.Errorf("router %s has no id", r.Name)
		}
		if prev, ok := seenIDs[r.ID]; ok {
			return fmt.Errorf("router id %s declared by both %s and %s", r.ID, prev, r.Name)
		}
		seenIDs[r.ID] = r.Name
	}
	names := make(map[string]int)
	for _, r := range cfg.Routers {
		names[r.Name]++
		if names[r.Name] > 1 {
			return fmt.Errorf("duplicate router name %s", r.Name)
		}
	}

	seenAddrs := make(map[netip.Addr]struct{})
	claimAddr := func(addr netip.Addr, where string) error {
		if !addr.IsValid() {
			return fmt.Errorf("%s has an invalid address", where)
		}
		if _, ok := seenAddrs[addr]; ok {
			return fmt.Errorf("%s reuses interface address %s", where, addr)
		}
		seenAddrs[addr] = struct{}{}
		return nil
	}

	for i, l := range cfg.Links {
		where := fmt.Sprintf("link %d (%s-%s)", i, l.A, l.B)
		if cfg.Router(l.A) == nil {
			return fmt.Errorf("%s: router %s not defined", where, l.A)
		}
		if cfg.Router(l.B) == nil {
			return fmt.Errorf("%s: router %s not defined", where, l.B)
		}
		if l.A == l.B {
			return fmt.Errorf("%s: link endpoints must differ", where)
		}
		if !l.Prefix.IsValid() {
			return fmt.Errorf("%s: missing subnet prefix", where)
		}
		if err := claimAddr(l.AAddr, where); err != nil {
			return err
		}
		if err := claimAddr(l.BAddr, where); err != nil {
			return err
		}
		if !l.Prefix.Contains(l.AAddr) || !l.Prefix.Contains(l.BAddr) {
			return fmt.Errorf("%s: endpoint addresses are not inside %s", where, l.Prefix)
		}
		if l.Metric == 0 {
			return fmt.Errorf("%s: metric must be positive", where)
		}
	}

	seenSegments := make(map[netip.Prefix]struct{})
	for i, s := range cfg.Segments {
		where := fmt.Sprintf("segment %d (%s)", i, s.Prefix)
		if !s.Prefix.IsValid() {
			return fmt.Errorf("segment %d: missing prefix", i)
		}
		if _, ok := seenSegments[s.Prefix]; ok {
			return fmt.Errorf("%s: declared twice", where)
		}
		seenSegments[s.Prefix] = struct{}{}
		if len(s.Attached) == 0 {
			return fmt.Errorf("%s: no attached routers", where)
		}
		if s.Metric == 0 {
			return fmt.Errorf("%s: metric must be positive", where)
		}
		for _, a := range s.Attached {
			if cfg.Router(a.Router) == nil {
				return fmt.Errorf("%s: router %s not defined", where, a.Router)
			}
			if err := claimAddr(a.Addr, where); err != nil {
				return err
			}
			if !s.Prefix.Contains(a.Addr) {
				return fmt.Errorf("%s: attachment %s is not inside %s", where, a.Addr, s.Prefix)
			}
		}
	}

	for i, e := range cfg.Externals {
		if cfg.Router(e.Router) == nil {
			return fmt.Errorf("external %d: router %s not defined", i, e.Router)
		}
		if !e.Prefix.IsValid() {
			return fmt.Errorf("external %d: missing prefix", i)
		}
	}
	return nil
}
