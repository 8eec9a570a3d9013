package nutrition

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk shape of a rounding profile set:
//
//	profiles:
//	  - name: gso
//	    percent_basis: raw
//	    classes: {calories: energy, sodium: sodium}
//	    rules:
//	      energy:
//	        - {below: "5", zero: true}
//	        - {up_to: "50", step: "5"}
//	        - {step: "10"}
type profileFile struct {
	Profiles []profileSpec `yaml:"profiles"`
}

type profileSpec struct {
	Name         string                       `yaml:"name"`
	Extends      string                       `yaml:"extends"`
	PercentBasis PercentBasis                 `yaml:"percent_basis"`
	Classes      map[string]RoundingClass     `yaml:"classes"`
	Rules        map[RoundingClass][]bandSpec `yaml:"rules"`
}

type bandSpec struct {
	Below    string `yaml:"below"`
	UpTo     string `yaml:"up_to"`
	Step     string `yaml:"step"`
	Zero     bool   `yaml:"zero"`
	LessThan bool   `yaml:"less_than"`
}

// ProfileRegistry holds the rounding profiles selectable by name
type ProfileRegistry struct {
	profiles map[string]*RoundingProfile
}

// NewProfileRegistry returns a registry holding the built-in FDA profile
func NewProfileRegistry() *ProfileRegistry {
	return &ProfileRegistry{profiles: map[string]*RoundingProfile{FDAProfileName: FDAProfile()}}
}

// Get returns the named profile
func (r *ProfileRegistry) Get(name string) (*RoundingProfile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Names returns the registered profile names sorted
func (r *ProfileRegistry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadFile reads additional profiles from a YAML file
func (r *ProfileRegistry) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open rounding profiles: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}

// Load decodes profiles from YAML. Unknown keys are rejected so a misspelled
// field cannot silently fall back to a default.
func (r *ProfileRegistry) Load(in io.Reader) error {
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)

	var file profileFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode rounding profiles: %w", err)
	}

	for _, spec := range file.Profiles {
		p, err := r.build(spec)
		if err != nil {
			return fmt.Errorf("rounding profile %q: %w", spec.Name, err)
		}
		r.profiles[p.Name] = p
	}
	return nil
}

func (r *ProfileRegistry) build(spec profileSpec) (*RoundingProfile, error) {
	if spec.Name == "" {
		return nil, errors.New("name is required")
	}

	p := &RoundingProfile{
		Name:         spec.Name,
		PercentBasis: BasisRaw,
		Rules:        map[RoundingClass]Rule{},
		Classes:      map[string]RoundingClass{},
	}
	if spec.Extends != "" {
		base, ok := r.profiles[spec.Extends]
		if !ok {
			return nil, fmt.Errorf("extends unknown profile %q", spec.Extends)
		}
		p.PercentBasis = base.PercentBasis
		for k, v := range base.Rules {
			p.Rules[k] = v
		}
		for k, v := range base.Classes {
			p.Classes[k] = v
		}
	}

	switch spec.PercentBasis {
	case "":
	case BasisRaw, BasisRounded:
		p.PercentBasis = spec.PercentBasis
	default:
		return nil, fmt.Errorf("unknown percent_basis %q", spec.PercentBasis)
	}

	for key, class := range spec.Classes {
		p.Classes[key] = class
	}
	for class, bands := range spec.Rules {
		rule, err := buildRule(bands)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", class, err)
		}
		p.Rules[class] = rule
	}
	for key, class := range p.Classes {
		if _, ok := p.Rules[class]; !ok && class != ClassDefault {
			return nil, fmt.Errorf("nutrient %q uses undefined class %q", key, class)
		}
	}
	return p, nil
}

func buildRule(specs []bandSpec) (Rule, error) {
	if len(specs) == 0 {
		return Rule{}, errors.New("at least one band is required")
	}
	bands := make([]Band, 0, len(specs))
	var prev *decimal.Decimal
	for i, s := range specs {
		var b Band
		switch {
		case s.Below != "" && s.UpTo != "":
			return Rule{}, fmt.Errorf("band %d: below and up_to are exclusive", i)
		case s.Below != "":
			v, err := decimal.NewFromString(s.Below)
			if err != nil {
				return Rule{}, fmt.Errorf("band %d: below: %w", i, err)
			}
			b.Upper = v
		case s.UpTo != "":
			v, err := decimal.NewFromString(s.UpTo)
			if err != nil {
				return Rule{}, fmt.Errorf("band %d: up_to: %w", i, err)
			}
			b.Upper = v
			b.Inclusive = true
		default:
			if i != len(specs)-1 {
				return Rule{}, fmt.Errorf("band %d: only the last band may be unbounded", i)
			}
			b.Unbounded = true
		}
		if !b.Unbounded {
			if prev != nil && !b.Upper.GreaterThan(*prev) {
				return Rule{}, fmt.Errorf("band %d: bounds must increase", i)
			}
			upper := b.Upper
			prev = &upper
		}

		switch {
		case s.LessThan:
			if b.Unbounded {
				return Rule{}, fmt.Errorf("band %d: less_than needs a bound", i)
			}
			b.LessThan = true
		case s.Zero:
		default:
			step, err := decimal.NewFromString(s.Step)
			if err != nil {
				return Rule{}, fmt.Errorf("band %d: step: %w", i, err)
			}
			if !step.IsPositive() {
				return Rule{}, fmt.Errorf("band %d: step must be positive", i)
			}
			b.Step = step
		}
		bands = append(bands, b)
	}
	if !bands[len(bands)-1].Unbounded {
		return Rule{}, errors.New("last band must be unbounded")
	}
	return Rule{Bands: bands}, nil
}
