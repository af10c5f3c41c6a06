// Package clockplan resolves declarative clock-tree plans. A plan names the
// oscillator sources, the generic clock generators that divide them and the
// peripheral channels fed from the generators; resolving it orders the tree
// by dependency, rejects cycles and propagates output frequencies.
//
// The clock-tree initializer runs a plan as a pre-flight check before it
// starts claiming tokens and flipping enable bits.
package clockplan

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
	"gopkg.in/yaml.v3"

	"omibyte.io/samhal/clock"
)

var (
	ErrDuplicateName = errors.New("clockplan: duplicate node name")
	ErrUnknownRef    = errors.New("clockplan: reference to unknown node")
	ErrBadSpec       = errors.New("clockplan: invalid node specification")
	ErrCycle         = errors.New("clockplan: clock tree contains a cycle")
)

// Source kinds accepted in a plan.
const (
	KindFixed      = "fixed" // external or RC oscillator at a stated frequency
	KindDfllOpen   = "dfll-open"
	KindDfllClosed = "dfll-closed"
)

type Plan struct {
	Sources    []SourceSpec    `yaml:"sources"`
	Generators []GeneratorSpec `yaml:"generators"`
	Pclks      []PclkSpec      `yaml:"pclks"`
}

type SourceSpec struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Freq uint32 `yaml:"freq"` // fixed sources only
	Mul  uint32 `yaml:"mul"`  // dfll kinds; defaults to 1
	Ref  string `yaml:"ref"`  // dfll-closed reference pclk
}

type GeneratorSpec struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Div    uint32 `yaml:"div"` // defaults to 1
}

type PclkSpec struct {
	Name      string `yaml:"name"`
	Generator string `yaml:"generator"`
}

// Load decodes a YAML plan.
func Load(r io.Reader) (*Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("clockplan: %w", err)
	}
	return &p, nil
}

// Frequencies maps node names to resolved output frequencies.
type Frequencies map[string]clock.Hertz

type node struct {
	id   int64
	name string
}

func (n node) ID() int64 { return n.id }

// Resolve orders the plan by dependency and computes every node's output
// frequency. The returned names are in dependency order, sources first.
func (p *Plan) Resolve() ([]string, Frequencies, error) {
	g := multi.NewDirectedGraph()
	byName := make(map[string]node)
	var nextID int64

	add := func(name string) error {
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrBadSpec)
		}
		if _, ok := byName[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
		n := node{id: nextID, name: name}
		nextID++
		byName[name] = n
		g.AddNode(n)
		return nil
	}

	for _, s := range p.Sources {
		if err := add(s.Name); err != nil {
			return nil, nil, err
		}
	}
	for _, gen := range p.Generators {
		if err := add(gen.Name); err != nil {
			return nil, nil, err
		}
	}
	for _, pc := range p.Pclks {
		if err := add(pc.Name); err != nil {
			return nil, nil, err
		}
	}

	edge := func(from, to string) error {
		f, ok := byName[from]
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownRef, from)
		}
		g.SetLine(g.NewLine(f, byName[to]))
		return nil
	}

	for _, s := range p.Sources {
		if s.Kind == KindDfllClosed {
			if s.Ref == "" {
				return nil, nil, fmt.Errorf("%w: %q needs a reference pclk", ErrBadSpec, s.Name)
			}
			if err := edge(s.Ref, s.Name); err != nil {
				return nil, nil, err
			}
		}
	}
	for _, gen := range p.Generators {
		if err := edge(gen.Source, gen.Name); err != nil {
			return nil, nil, err
		}
	}
	for _, pc := range p.Pclks {
		if err := edge(pc.Generator, pc.Name); err != nil {
			return nil, nil, err
		}
	}

	sorted, err := topo.Sort(g)
	if err != nil {
		var unorderable topo.Unorderable
		if errors.As(err, &unorderable) {
			return nil, nil, fmt.Errorf("%w: %s", ErrCycle, describeCycles(unorderable))
		}
		return nil, nil, err
	}

	order := make([]string, len(sorted))
	for i, n := range sorted {
		order[i] = n.(node).name
	}

	freqs, err := p.propagate(order)
	if err != nil {
		return nil, nil, err
	}
	return order, freqs, nil
}

func (p *Plan) propagate(order []string) (Frequencies, error) {
	srcs := make(map[string]SourceSpec, len(p.Sources))
	for _, s := range p.Sources {
		srcs[s.Name] = s
	}
	gens := make(map[string]GeneratorSpec, len(p.Generators))
	for _, g := range p.Generators {
		gens[g.Name] = g
	}
	pclks := make(map[string]PclkSpec, len(p.Pclks))
	for _, pc := range p.Pclks {
		pclks[pc.Name] = pc
	}

	freqs := make(Frequencies, len(order))
	for _, name := range order {
		switch {
		case srcs[name].Name != "":
			f, err := sourceFreq(srcs[name], freqs)
			if err != nil {
				return nil, err
			}
			freqs[name] = f
		case gens[name].Name != "":
			spec := gens[name]
			div := spec.Div
			if div == 0 {
				div = 1
			}
			freqs[name] = freqs[spec.Source] / clock.Hertz(div)
		default:
			freqs[name] = freqs[pclks[name].Generator]
		}
	}
	return freqs, nil
}

func sourceFreq(s SourceSpec, freqs Frequencies) (clock.Hertz, error) {
	mul := s.Mul
	if mul == 0 {
		mul = 1
	}
	switch s.Kind {
	case KindFixed:
		if s.Freq == 0 {
			return 0, fmt.Errorf("%w: fixed source %q needs a frequency", ErrBadSpec, s.Name)
		}
		return clock.Hertz(s.Freq), nil
	case KindDfllOpen:
		return clock.DfllBase * clock.Hertz(mul), nil
	case KindDfllClosed:
		return freqs[s.Ref] * clock.Hertz(mul), nil
	default:
		return 0, fmt.Errorf("%w: source %q has unknown kind %q", ErrBadSpec, s.Name, s.Kind)
	}
}

func describeCycles(sccs topo.Unorderable) string {
	var parts []string
	for _, scc := range sccs {
		names := make([]string, len(scc))
		for i, n := range scc {
			names[i] = n.(node).name
		}
		parts = append(parts, strings.Join(names, " -> "))
	}
	return strings.Join(parts, "; ")
}
