package impl

import (
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/weftnet/spindle/core"
	"github.com/weftnet/spindle/state"
)

// ConfigDiscoverer turns a topology description into advertisements: one
// router advertisement per router, one network advertisement per shared
// segment with two or more attachments (with the lowest attached interface
// address elected designated router), and the declared externals.
type ConfigDiscoverer struct {
	Cfg *state.Config
	Log *slog.Logger
}

func (d *ConfigDiscoverer) DiscoverLSAs(lsdb *state.LSDB) error {
	cfg := d.Cfg

	// Elect a designated router per transit segment. Each segment is
	// walked exactly once; meeting one again means the topology feed
	// handed us the same segment twice.
	drOf := make(map[netip.Prefix]state.AttachmentCfg)
	for _, s := range cfg.Segments {
		if _, ok := drOf[s.Prefix]; ok {
			return fmt.Errorf("segment %s walked twice: %w", s.Prefix, core.ErrGraphAnomaly)
		}
		if len(s.Attached) < 2 {
			continue // degenerates to a stub network
		}
		dr := s.Attached[0]
		for _, a := range s.Attached[1:] {
			if a.Addr.Compare(dr.Addr) < 0 {
				dr = a
			}
		}
		drOf[s.Prefix] = dr
	}

	for _, r := range cfg.Routers {
		built := d.buildRouterLSA(r, drOf)
		owned := new(state.LSA)
		if err := built.CopyInto(owned); err != nil {
			return err
		}
		lsdb.Insert(r.ID, owned)
		if d.Log != nil {
			d.Log.Debug("discovered", "lsa", owned)
		}
	}

	for _, s := range cfg.Segments {
		dr, ok := drOf[s.Prefix]
		if !ok {
			continue
		}
		attached := make([]netip.Addr, 0, len(s.Attached))
		for _, a := range s.Attached {
			attached = append(attached, a.Addr)
		}
		nlsa := &state.LSA{
			Type:              state.NetworkLSA,
			LinkStateID:       dr.Addr,
			AdvertisingRouter: cfg.Router(dr.Router).ID,
			NetworkMask:       state.MaskFromBits(s.Prefix.Bits()),
			AttachedRouters:   attached,
		}
		lsdb.Insert(dr.Addr, nlsa)
		if d.Log != nil {
			d.Log.Debug("discovered", "lsa", nlsa)
		}
	}

	for _, e := range cfg.Externals {
		lsdb.InsertExternal(&state.LSA{
			Type:              state.ASExternalLSA,
			LinkStateID:       e.Prefix.Masked().Addr(),
			AdvertisingRouter: cfg.Router(e.Router).ID,
			NetworkMask:       state.MaskFromBits(e.Prefix.Bits()),
			ExternalMetric:    e.Metric,
		})
	}
	return nil
}

// buildRouterLSA assembles one router's advertisement: a point-to-point
// record plus a twin stub record per attached link, and a transit record
// (or stub record, when it is the only attachment) per attached segment.
func (d *ConfigDiscoverer) buildRouterLSA(r state.RouterCfg, drOf map[netip.Prefix]state.AttachmentCfg) state.LSA {
	cfg := d.Cfg
	lsa := state.LSA{
		Type:              state.RouterLSA,
		LinkStateID:       r.ID,
		AdvertisingRouter: r.ID,
	}

	for _, l := range cfg.Links {
		var local netip.Addr
		var remote string
		switch r.Name {
		case l.A:
			local, remote = l.AAddr, l.B
		case l.B:
			local, remote = l.BAddr, l.A
		default:
			continue
		}
		metric := l.MetricFrom(r.Name)
		lsa.Links = append(lsa.Links,
			state.LinkRecord{
				Type:   state.PointToPoint,
				ID:     cfg.Router(remote).ID,
				Data:   local,
				Metric: metric,
			},
			state.LinkRecord{
				Type:   state.StubNetwork,
				ID:     l.Prefix.Masked().Addr(),
				Data:   state.MaskFromBits(l.Prefix.Bits()),
				Metric: metric,
			})
	}

	for _, s := range cfg.Segments {
		for _, a := range s.Attached {
			if a.Router != r.Name {
				continue
			}
			if dr, ok := drOf[s.Prefix]; ok {
				lsa.Links = append(lsa.Links, state.LinkRecord{
					Type:   state.TransitNetwork,
					ID:     dr.Addr,
					Data:   a.Addr,
					Metric: s.Metric,
				})
			} else {
				lsa.Links = append(lsa.Links, state.LinkRecord{
					Type:   state.StubNetwork,
					ID:     s.Prefix.Masked().Addr(),
					Data:   state.MaskFromBits(s.Prefix.Bits()),
					Metric: s.Metric,
				})
			}
		}
	}
	return lsa
}
