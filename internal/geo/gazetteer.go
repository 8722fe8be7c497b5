package geo

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultKey names the entry used when a record's place is not listed.
const DefaultKey = "default"

//go:embed gazetteer.yaml
var builtinGazetteer []byte

type Point struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

// Gazetteer maps governorate and center names to approximate coordinates.
type Gazetteer struct {
	entries  map[string]Point
	fallback Point
}

var loadBuiltin = sync.OnceValues(func() (*Gazetteer, error) {
	return ParseGazetteer(builtinGazetteer)
})

// Default returns the gazetteer shipped with the binary.
func Default() *Gazetteer {
	g, err := loadBuiltin()
	if err != nil {
		panic(fmt.Sprintf("builtin gazetteer: %v", err))
	}
	return g
}

// LoadGazetteer reads a YAML gazetteer from path. An empty path yields the
// built-in table.
func LoadGazetteer(path string) (*Gazetteer, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read gazetteer: %w", err)
	}
	return ParseGazetteer(blob)
}

func ParseGazetteer(blob []byte) (*Gazetteer, error) {
	entries := map[string]Point{}
	if err := yaml.Unmarshal(blob, &entries); err != nil {
		return nil, fmt.Errorf("parse gazetteer: %w", err)
	}
	fallback, ok := entries[DefaultKey]
	if !ok {
		return nil, errors.New("gazetteer has no default entry")
	}
	return &Gazetteer{entries: entries, fallback: fallback}, nil
}

// Lookup resolves a place by center first, then governorate, then the
// default entry.
func (g *Gazetteer) Lookup(center, location string) Point {
	if p, ok := g.entries[center]; ok && center != "" {
		return p
	}
	if p, ok := g.entries[location]; ok && location != "" {
		return p
	}
	return g.fallback
}

func (g *Gazetteer) Default() Point { return g.fallback }

// Names lists the known places, excluding the default entry.
func (g *Gazetteer) Names() []string {
	out := make([]string, 0, len(g.entries))
	for name := range g.entries {
		if name == DefaultKey {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Jitter spreads markers that share a centroid. Each axis moves by
// (u - 0.5) * spread with u uniform in [0, 1).
type Jitter struct {
	spread float64
	uniform func() float64
}

func NewJitter(spread float64) *Jitter {
	return &Jitter{spread: spread, uniform: rand.Float64}
}

// NewJitterWithSource is NewJitter with a caller supplied uniform source.
func NewJitterWithSource(spread float64, uniform func() float64) *Jitter {
	if uniform == nil {
		uniform = rand.Float64
	}
	return &Jitter{spread: spread, uniform: uniform}
}

func (j *Jitter) Apply(p Point) Point {
	return Point{
		Lat: p.Lat + (j.uniform()-0.5)*j.spread,
		Lng: p.Lng + (j.uniform()-0.5)*j.spread,
	}
}

// Bound is the largest offset Apply can add to either axis.
func (j *Jitter) Bound() float64 { return j.spread / 2 }
