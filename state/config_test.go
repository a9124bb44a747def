package state

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
)

const sampleTopology = `
routers:
  - name: r1
    id: 10.0.0.1
  - name: r2
    id: 10.0.0.2
  - name: r3
    id: 10.0.0.3
links:
  - a: r1
    b: r2
    a_addr: 10.1.1.1
    b_addr: 10.1.1.2
    prefix: 10.1.1.0/30
    metric: 1
    back_metric: 5
segments:
  - prefix: 10.2.0.0/24
    metric: 1
    attached:
      - router: r2
        addr: 10.2.0.2
      - router: r3
        addr: 10.2.0.3
externals:
  - router: r3
    prefix: 192.168.0.0/16
    metric: 10
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(sampleTopology), 0o644))

	cfg, err := LoadConfig(path)
	assert.NoError(t, err)
	assert.Len(t, cfg.Routers, 3)
	assert.Len(t, cfg.Links, 1)
	assert.Len(t, cfg.Segments, 1)
	assert.Len(t, cfg.Externals, 1)

	r2 := cfg.Router("r2")
	assert.NotNil(t, r2)
	assert.Equal(t, netip.MustParseAddr("10.0.0.2"), r2.ID)
	assert.Nil(t, cfg.Router("r9"))

	assert.Equal(t, []netip.Addr{
		netip.MustParseAddr("10.0.0.1"),
		netip.MustParseAddr("10.0.0.2"),
		netip.MustParseAddr("10.0.0.3"),
	}, cfg.RouterIDs())

	l := cfg.Links[0]
	assert.Equal(t, uint32(1), l.MetricFrom("r1"))
	assert.Equal(t, uint32(5), l.MetricFrom("r2"))
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func parse(t *testing.T, doc string) *Config {
	t.Helper()
	var cfg Config
	assert.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	return &cfg
}

func TestNameValidator(t *testing.T) {
	assert.NoError(t, NameValidator("r1"))
	assert.NoError(t, NameValidator("edge-router.2"))
	assert.Error(t, NameValidator("R1"))
	assert.Error(t, NameValidator(""))
	assert.Error(t, NameValidator("has space"))
}

func TestConfigValidator(t *testing.T) {
	assert.ErrorContains(t, ConfigValidator(&Config{}), "no routers defined")

	cfg := parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
  - name: r2
    id: 10.0.0.1
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "router id 10.0.0.1 declared by both r1 and r2")

	cfg = parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
  - name: r1
    id: 10.0.0.2
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "duplicate router name r1")

	cfg = parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
links:
  - a: r1
    b: r2
    a_addr: 10.1.1.1
    b_addr: 10.1.1.2
    prefix: 10.1.1.0/30
    metric: 1
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "router r2 not defined")

	cfg = parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
  - name: r2
    id: 10.0.0.2
links:
  - a: r1
    b: r2
    a_addr: 10.1.1.1
    b_addr: 10.9.9.9
    prefix: 10.1.1.0/30
    metric: 1
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "not inside 10.1.1.0/30")

	cfg = parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
  - name: r2
    id: 10.0.0.2
links:
  - a: r1
    b: r2
    a_addr: 10.1.1.1
    b_addr: 10.1.1.2
    prefix: 10.1.1.0/30
    metric: 0
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "metric must be positive")

	cfg = parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
  - name: r2
    id: 10.0.0.2
segments:
  - prefix: 10.2.0.0/24
    metric: 1
    attached:
      - router: r1
        addr: 10.2.0.1
      - router: r2
        addr: 10.2.0.1
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "reuses interface address 10.2.0.1")

	cfg = parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
segments:
  - prefix: 10.2.0.0/24
    metric: 1
    attached:
      - router: r1
        addr: 10.2.0.1
  - prefix: 10.2.0.0/24
    metric: 1
    attached:
      - router: r1
        addr: 10.2.0.2
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "declared twice")

	cfg = parse(t, `
routers:
  - name: r1
    id: 10.0.0.1
externals:
  - router: r9
    prefix: 192.168.0.0/16
    metric: 1
`)
	assert.ErrorContains(t, ConfigValidator(cfg), "router r9 not defined")
}
