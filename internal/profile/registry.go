// internal/profile/registry.go
package profile

import (
	"fmt"
	"sort"

	"github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/device"
)

// Registry resolves device type names to profiles.
type Registry struct {
	profiles map[string]*device.Profile
}

// NewRegistry loads the built-in profiles plus any declared ones.
func NewRegistry(declared []config.ProfileConfig) (*Registry, error) {
	r := &Registry{profiles: make(map[string]*device.Profile)}

	k, err := newKyuden()
	if err != nil {
		return nil, err
	}
	r.profiles[k.Type] = k

	for _, pc := range declared {
		if _, dup := r.profiles[pc.Type]; dup {
			return nil, fmt.Errorf("profile %s: type already registered", pc.Type)
		}
		p, err := FromConfig(pc)
		if err != nil {
			return nil, err
		}
		r.profiles[p.Type] = p
	}

	return r, nil
}

// Lookup returns the profile for a device type.
func (r *Registry) Lookup(typ string) (*device.Profile, error) {
	p, ok := r.profiles[typ]
	if !ok {
		return nil, fmt.Errorf("profile: unknown device type %q", typ)
	}
	return p, nil
}

// Types lists registered device types.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.profiles))
	for t := range r.profiles {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
