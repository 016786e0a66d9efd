// Package logic defines formulas over a semantic network and evaluates them
// in Kleene's three-valued logic.
package logic

import (
	"fmt"
	"sort"

	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
)

type Truth = kleene.Truth

const (
	True    = kleene.True
	False   = kleene.False
	Unknown = kleene.Unknown
)

// Facts is the view of a network the evaluator needs.
type Facts interface {
	FactHolds(predicate string, args []network.Value) kleene.Truth
	PredicateArity(name string) (int, error)
	ConceptExists(id string) bool
}

// Domains looks up variable declarations.
type Domains interface {
	DomainOf(name string) (param.Domain, error)
}

// Assignment is a read-only view of a context.
type Assignment interface {
	Get(name string) (network.Value, bool)
}

var _ Facts = &network.Network{}
var _ Domains = &param.Variables{}
var _ Assignment = &param.Context{}

// Formula is one of FactAtom, EqAtom, Not, And, Or, Implies.
type Formula interface {
	isFormula()
	String() string
}

var _ Formula = &FactAtom{}
var _ Formula = &EqAtom{}
var _ Formula = &Not{}
var _ Formula = &And{}
var _ Formula = &Or{}
var _ Formula = &Implies{}

type FactAtom struct {
	Predicate string
	Args      []Term
}

func NewFactAtom(predicate string, args ...Term) *FactAtom {
	return &FactAtom{Predicate: predicate, Args: args}
}

type EqAtom struct {
	Left  Term
	Right Term
}

func NewEq(left, right Term) *EqAtom {
	return &EqAtom{Left: left, Right: right}
}

type Not struct {
	Inner Formula
}

func NewNot(inner Formula) *Not {
	return &Not{Inner: inner}
}

// And is TRUE when it has no items.
type And struct {
	Items []Formula
}

func NewAnd(items ...Formula) *And {
	return &And{Items: items}
}

// Or is FALSE when it has no items.
type Or struct {
	Items []Formula
}

func NewOr(items ...Formula) *Or {
	return &Or{Items: items}
}

type Implies struct {
	Left  Formula
	Right Formula
}

func NewImplies(left, right Formula) *Implies {
	return &Implies{Left: left, Right: right}
}

func (*FactAtom) isFormula() {}
func (*EqAtom) isFormula()   {}
func (*Not) isFormula()      {}
func (*And) isFormula()      {}
func (*Or) isFormula()       {}
func (*Implies) isFormula()  {}

func (f *FactAtom) String() string { return Format(f) }
func (f *EqAtom) String() string   { return Format(f) }
func (f *Not) String() string      { return Format(f) }
func (f *And) String() string      { return Format(f) }
func (f *Or) String() string       { return Format(f) }
func (f *Implies) String() string  { return Format(f) }

// Walk calls fn on f and its subformulas, parents first, left to right.
func Walk(f Formula, fn func(Formula)) {
	fn(f)
	switch node := f.(type) {
	case *FactAtom, *EqAtom:
	case *Not:
		Walk(node.Inner, fn)
	case *And:
		for _, item := range node.Items {
			Walk(item, fn)
		}
	case *Or:
		for _, item := range node.Items {
			Walk(item, fn)
		}
	case *Implies:
		Walk(node.Left, fn)
		Walk(node.Right, fn)
	default:
		panic(unknownNode(f))
	}
}

// Terms returns the terms a formula mentions, in order of appearance.
func Terms(f Formula) []Term {
	var out []Term
	Walk(f, func(sub Formula) {
		switch atom := sub.(type) {
		case *FactAtom:
			out = append(out, atom.Args...)
		case *EqAtom:
			out = append(out, atom.Left, atom.Right)
		}
	})
	return out
}

// ReferencedVariables returns the sorted names of variables in f.
func ReferencedVariables(f Formula) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, term := range Terms(f) {
		if v, ok := term.(*VariableTerm); ok && !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v.Name)
		}
	}
	sort.Strings(out)
	return out
}

// DanglingConcepts returns the sorted ids of concepts f mentions that the
// network lacks. Such references evaluate to UNKNOWN rather than failing.
func DanglingConcepts(f Formula, net Facts) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, term := range Terms(f) {
		if c, ok := term.(*ConceptTerm); ok && !seen[c.ID] && !net.ConceptExists(c.ID) {
			seen[c.ID] = true
			out = append(out, c.ID)
		}
	}
	sort.Strings(out)
	return out
}

func unknownNode(node interface{}) string {
	return fmt.Sprintf("logic: unexpected node %T", node)
}
