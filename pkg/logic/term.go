package logic

import (
	"strconv"

	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
)

// Term is an argument position in an atom.
type Term interface {
	isTerm()
	String() string
}

var _ Term = &ConceptTerm{}
var _ Term = &VariableTerm{}
var _ Term = &LiteralTerm{}

type ConceptTerm struct {
	ID string
}

func NewConcept(id string) *ConceptTerm {
	return &ConceptTerm{ID: id}
}

func (*ConceptTerm) isTerm() {}

func (t *ConceptTerm) String() string {
	return quoteName(t.ID)
}

type VariableTerm struct {
	Name string
}

func NewVariable(name string) *VariableTerm {
	return &VariableTerm{Name: name}
}

func (*VariableTerm) isTerm() {}

func (t *VariableTerm) String() string {
	if isPlainIdent(t.Name) {
		return "?" + t.Name
	}
	return "?" + strconv.Quote(t.Name)
}

// LiteralTerm holds a string or number.
type LiteralTerm struct {
	Value network.Value
}

func NewStringLit(s string) *LiteralTerm {
	return &LiteralTerm{Value: network.NewString(s)}
}

func NewNumberLit(f float64) *LiteralTerm {
	return &LiteralTerm{Value: network.NewNumber(f)}
}

func (*LiteralTerm) isTerm() {}

func (t *LiteralTerm) String() string {
	if t.Value.IsNumber() {
		return t.Value.Text()
	}
	return strconv.Quote(t.Value.Str)
}

// Resolution

type BindState int

const (
	Bound BindState = iota
	// Unassigned is a variable with no value in the context.
	Unassigned
	// Dangling is a concept reference to a concept the network lacks.
	Dangling
)

func (s BindState) String() string {
	switch s {
	case Bound:
		return "bound"
	case Unassigned:
		return "unassigned"
	default:
		return "dangling"
	}
}

type Resolved struct {
	Value network.Value
	State BindState
}

// Resolve turns a term into a value under a context. A variable unknown to
// vars is an error; so is an assigned value outside its domain.
func Resolve(term Term, net Facts, vars Domains, ctx Assignment) (Resolved, error) {
	switch t := term.(type) {
	case *ConceptTerm:
		if !net.ConceptExists(t.ID) {
			return Resolved{Value: network.NewConceptRef(t.ID), State: Dangling}, nil
		}
		return Resolved{Value: network.NewConceptRef(t.ID), State: Bound}, nil

	case *LiteralTerm:
		return Resolved{Value: t.Value, State: Bound}, nil

	case *VariableTerm:
		domain, err := vars.DomainOf(t.Name)
		if err != nil {
			return Resolved{}, err
		}
		value, ok := ctx.Get(t.Name)
		if !ok {
			return Resolved{State: Unassigned}, nil
		}
		if !domain.Contains(value) {
			return Resolved{}, &param.ContextIntegrityError{
				Context:  contextName(ctx),
				Variable: t.Name,
				Value:    value,
				Reason:   "value is outside domain " + domain.Describe(),
			}
		}
		return Resolved{Value: value, State: Bound}, nil

	default:
		panic(unknownNode(term))
	}
}

func contextName(ctx Assignment) string {
	if named, ok := ctx.(interface{ ContextName() string }); ok {
		return named.ContextName()
	}
	return ""
}
