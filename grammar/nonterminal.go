package grammar

import "fmt"

// Nonterminal is a builder-side nonterminal symbol. It is created with a
// name only; its productions are attached afterwards with SetProductions,
// which allows mutually recursive rules to refer to each other.
type Nonterminal struct {
	id       int
	name     string
	prods    []*Production
	prodsSet bool
	owner    *Builder
}

// SymName returns the display name of the nonterminal.
func (nt *Nonterminal) SymName() string {
	return nt.name
}

func (nt *Nonterminal) builderID() int {
	return nt.id
}

// SetProductions attaches the productions of the nonterminal. The first
// call wins; subsequent calls are ignored with a warning to the builder's
// logger. Returns the nonterminal for chaining.
func (nt *Nonterminal) SetProductions(prods ...*Production) *Nonterminal {
	if nt.prodsSet {
		nt.owner.logf("nonterminal %q already has productions set; ignoring new ones", nt.name)
		return nt
	}
	nt.prods = prods
	nt.prodsSet = true
	return nt
}

// Production is one alternative of a nonterminal: an ordered handle of
// symbols plus the fuser that combines the members' semantic values into
// the head's value. The handle may be empty.
type Production struct {
	items   []Symbol
	fuse    Fuser
	precTag any
}

// NewProduction creates a production with the given handle and no fuser.
// With no fuser set, the head's value is the value of the first member, or
// nil for an empty handle.
func NewProduction(items ...Symbol) *Production {
	return &Production{items: items}
}

// Epsilon creates a production with an empty handle.
func Epsilon() *Production {
	return &Production{}
}

// Fused sets the production's fuser. Returns the production for chaining.
func (p *Production) Fused(f Fuser) *Production {
	p.fuse = f
	return p
}

// Tagged attaches an explicit precedence tag to the production. When an
// operator scope level names the same tag, the production takes that
// level's precedence instead of deriving it from its last terminal.
// Returns the production for chaining.
func (p *Production) Tagged(tag any) *Production {
	p.precTag = tag
	return p
}

func (p *Production) String() string {
	s := ""
	for i, it := range p.items {
		if i > 0 {
			s += " "
		}
		s += it.SymName()
	}
	if s == "" {
		s = "ε"
	}
	return fmt.Sprintf("-> %s", s)
}
