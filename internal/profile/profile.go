package profile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"engageops-sim/internal/curve"
	"engageops-sim/internal/registry"
)

// Profile is a named growth preset. Starting a simulation from a profile
// fills in everything except the target content item and the counter caps.
type Profile struct {
	Name          string      `yaml:"name"`
	Description   string      `yaml:"description,omitempty"`
	Curve         curve.Shape `yaml:"curve"`
	DurationHours float64     `yaml:"duration_hours"`
	LikeRatio     float64     `yaml:"like_ratio"`
	MaxViews      int64       `yaml:"max_views,omitempty"`
	MaxLikes      int64       `yaml:"max_likes,omitempty"`
}

// Set is a collection of profiles addressable by name.
type Set struct {
	profiles map[string]Profile
}

// Builtin returns the default profile set shipped with the simulator.
func Builtin() *Set {
	s := &Set{profiles: map[string]Profile{}}
	for _, p := range []Profile{
		{
			Name:          "viral-spike",
			Description:   "Fast sigmoid ramp typical of a post catching fire",
			Curve:         curve.Sigmoid,
			DurationHours: 72,
			LikeRatio:     0.05,
			MaxViews:      100000,
			MaxLikes:      5000,
		},
		{
			Name:          "slow-burn",
			Description:   "Logarithmic front-loaded growth tapering over a week",
			Curve:         curve.Logarithmic,
			DurationHours: 168,
			LikeRatio:     0.03,
			MaxViews:      25000,
			MaxLikes:      750,
		},
		{
			Name:          "steady",
			Description:   "Linear background growth",
			Curve:         curve.Linear,
			DurationHours: 336,
			LikeRatio:     0.02,
			MaxViews:      10000,
			MaxLikes:      200,
		},
	} {
		s.profiles[p.Name] = p
	}
	return s
}

// Load reads profile definitions from a YAML file and merges them over the
// builtin set. A file profile with the same name replaces the builtin one.
func Load(path string) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}
	var file struct {
		Profiles []Profile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	s := Builtin()
	for _, p := range file.Profiles {
		if p.Name == "" {
			return nil, fmt.Errorf("profile without a name in %s", path)
		}
		if !p.Curve.Valid() {
			return nil, fmt.Errorf("profile %q: unknown curve shape %q", p.Name, p.Curve)
		}
		if p.DurationHours <= 0 {
			return nil, fmt.Errorf("profile %q: duration_hours must be positive", p.Name)
		}
		s.profiles[p.Name] = p
	}
	return s, nil
}

// Get returns the named profile.
func (s *Set) Get(name string) (Profile, bool) {
	p, ok := s.profiles[name]
	return p, ok
}

// Names returns all profile names sorted alphabetically.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.profiles))
	for n := range s.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Simulation builds a simulation request for target from the profile.
// Counter caps default to the profile's but can be overridden; zero keeps
// the profile value.
func (p Profile) Simulation(targetID string, maxViews, maxLikes int64) registry.Simulation {
	if maxViews <= 0 {
		maxViews = p.MaxViews
	}
	if maxLikes <= 0 {
		maxLikes = p.MaxLikes
	}
	return registry.Simulation{
		TargetID:      targetID,
		MaxViews:      maxViews,
		MaxLikes:      maxLikes,
		LikeRatio:     p.LikeRatio,
		DurationHours: p.DurationHours,
		Curve:         p.Curve,
	}
}
