package state

import (
	"net/netip"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
)

// RouterCfg declares one router: a human name used by the rest of the
// config and the router id used as its link-state identity.
type RouterCfg struct {
	Name string
	ID   netip.Addr
}

// LinkCfg declares a point-to-point link between two routers. Metric is
// the cost in the A to B direction; BackMetric, when non-zero, overrides
// the cost in the B to A direction.
type LinkCfg struct {
	A          string
	B          string
	AAddr      netip.Addr   `yaml:"a_addr"`
	BAddr      netip.Addr   `yaml:"b_addr"`
	Prefix     netip.Prefix `yaml:"prefix"`
	Metric     uint32
	BackMetric uint32 `yaml:"back_metric,omitempty"`
}

// MetricFrom returns the link cost as seen from the named endpoint.
func (l *LinkCfg) MetricFrom(router string) uint32 {
	if router == l.B && l.BackMetric != 0 {
		return l.BackMetric
	}
	return l.Metric
}

// AttachmentCfg is one router's interface on a shared segment.
type AttachmentCfg struct {
	Router string
	Addr   netip.Addr
}

// SegmentCfg declares a shared (broadcast) segment. A segment with two or
// more attachments becomes a transit network with an elected designated
// router; a single attachment degenerates to a stub network.
type SegmentCfg struct {
	Prefix   netip.Prefix
	Attached []AttachmentCfg
	Metric   uint32
}

// ExternalCfg declares an externally-injected route advertised by a router.
type ExternalCfg struct {
	Router string
	Prefix netip.Prefix
	Metric uint32
}

// Config is the topology description consumed by discovery.
type Config struct {
	Routers   []RouterCfg
	Links     []LinkCfg     `yaml:",omitempty"`
	Segments  []SegmentCfg  `yaml:",omitempty"`
	Externals []ExternalCfg `yaml:",omitempty"`
}

// Router returns the named router's declaration, or nil.
func (c *Config) Router(name string) *RouterCfg {
	idx := slices.IndexFunc(c.Routers, func(r RouterCfg) bool {
		return r.Name == name
	})
	if idx == -1 {
		return nil
	}
	return &c.Routers[idx]
}

// RouterIDs returns every declared router id, in declaration order.
func (c *Config) RouterIDs() []netip.Addr {
	ids := make([]netip.Addr, 0, len(c.Routers))
	for _, r := range c.Routers {
		ids = append(ids, r.ID)
	}
	return ids
}

// LoadConfig reads, parses and validates a topology file.
func LoadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}
	if err := ConfigValidator(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
