package variant

import (
	"errors"
	"fmt"

	"github.com/goplus/mrjar/pkgs/unit"
)

// Details describes one derived variant to an Action.
type Details struct {
	Base    *unit.Unit
	Target  int
	Variant *unit.Unit
}

// Action configures a derived variant once its chain is composed.
type Action func(Details)

// Declaration is what a project declares for one base unit.
type Declaration struct {
	Unit              *unit.Unit
	AlternateVersions []int
	Actions           []Action
}

// Plan holds the chains of every declared base unit.
type Plan struct {
	Target int

	chains []*Chain
	byName map[string]*Chain
}

// Derive validates all declarations against target and then derives and
// composes every chain in a single pass. No chain is built if any
// declaration is invalid.
func Derive(target int, decls []Declaration) (*Plan, error) {
	var errs []error
	versions := make([][]int, len(decls))
	for i, decl := range decls {
		vs, err := ValidateVersions(decl.Unit.Name, target, decl.AlternateVersions)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		versions[i] = vs
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	p := &Plan{Target: target, byName: make(map[string]*Chain, len(decls))}
	owner := make(map[string]string)
	for _, decl := range decls {
		owner[decl.Unit.Name] = decl.Unit.Name
	}
	for i, decl := range decls {
		c := BuildChain(decl.Unit, versions[i])
		for _, v := range c.variants {
			if prev, ok := owner[v.Unit.Name]; ok {
				return nil, fmt.Errorf("%w: variant %q of unit %q collides with unit %q",
					ErrInvalidConfiguration, v.Unit.Name, decl.Unit.Name, prev)
			}
			owner[v.Unit.Name] = decl.Unit.Name
		}
		Compose(c)
		p.chains = append(p.chains, c)
		p.byName[decl.Unit.Name] = c
	}

	for i, decl := range decls {
		if len(decl.Actions) == 0 {
			continue
		}
		for _, v := range p.chains[i].variants {
			details := Details{Base: decl.Unit, Target: v.Version(), Variant: v.Unit}
			for _, action := range decl.Actions {
				action(details)
			}
		}
	}
	return p, nil
}

// Chains returns the chains in declaration order.
func (p *Plan) Chains() []*Chain {
	ret := make([]*Chain, len(p.chains))
	copy(ret, p.chains)
	return ret
}

// Chain returns the chain of the named base unit.
func (p *Plan) Chain(name string) (*Chain, bool) {
	c, ok := p.byName[name]
	return c, ok
}
