package logic

import (
	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/network"
)

// Validate checks that every predicate exists with the right arity and that
// every variable is declared. Concept references are not checked.
func Validate(f Formula, net Facts, vars Domains) error {
	var firstErr error
	Walk(f, func(sub Formula) {
		if firstErr != nil {
			return
		}
		switch atom := sub.(type) {
		case *FactAtom:
			arity, err := net.PredicateArity(atom.Predicate)
			if err != nil {
				firstErr = err
				return
			}
			if arity != len(atom.Args) {
				firstErr = &network.ArityError{Predicate: atom.Predicate, Wanted: arity, Got: len(atom.Args)}
				return
			}
			firstErr = validateTerms(vars, atom.Args...)
		case *EqAtom:
			firstErr = validateTerms(vars, atom.Left, atom.Right)
		}
	})
	return firstErr
}

func validateTerms(vars Domains, terms ...Term) error {
	for _, term := range terms {
		if v, ok := term.(*VariableTerm); ok {
			if _, err := vars.DomainOf(v.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// Evaluate validates f and evaluates it under ctx.
func Evaluate(f Formula, net Facts, vars Domains, ctx Assignment) (Truth, error) {
	if err := Validate(f, net, vars); err != nil {
		return Unknown, err
	}
	return EvaluateValidated(f, net, vars, ctx)
}

// EvaluateValidated is Evaluate without the up-front validation pass, for
// callers that evaluate one formula under many contexts.
func EvaluateValidated(f Formula, net Facts, vars Domains, ctx Assignment) (Truth, error) {
	e := &evaluator{net: net, vars: vars, ctx: ctx}
	return e.eval(f)
}

type evaluator struct {
	net  Facts
	vars Domains
	ctx  Assignment
}

func (e *evaluator) eval(f Formula) (Truth, error) {
	switch node := f.(type) {
	case *FactAtom:
		return e.evalFact(node)

	case *EqAtom:
		left, err := Resolve(node.Left, e.net, e.vars, e.ctx)
		if err != nil {
			return Unknown, err
		}
		right, err := Resolve(node.Right, e.net, e.vars, e.ctx)
		if err != nil {
			return Unknown, err
		}
		if left.State != Bound || right.State != Bound {
			return Unknown, nil
		}
		return kleene.FromBool(left.Value.Equal(right.Value)), nil

	case *Not:
		inner, err := e.eval(node.Inner)
		if err != nil {
			return Unknown, err
		}
		return kleene.Not(inner), nil

	case *And:
		result := True
		for _, item := range node.Items {
			v, err := e.eval(item)
			if err != nil {
				return Unknown, err
			}
			if v == False {
				return False, nil
			}
			result = kleene.And(result, v)
		}
		return result, nil

	case *Or:
		result := False
		for _, item := range node.Items {
			v, err := e.eval(item)
			if err != nil {
				return Unknown, err
			}
			if v == True {
				return True, nil
			}
			result = kleene.Or(result, v)
		}
		return result, nil

	case *Implies:
		left, err := e.eval(node.Left)
		if err != nil {
			return Unknown, err
		}
		if left == False {
			return True, nil
		}
		right, err := e.eval(node.Right)
		if err != nil {
			return Unknown, err
		}
		return kleene.Implies(left, right), nil

	default:
		panic(unknownNode(f))
	}
}

func (e *evaluator) evalFact(atom *FactAtom) (Truth, error) {
	args := make([]network.Value, len(atom.Args))
	determined := true
	for idx, term := range atom.Args {
		resolved, err := Resolve(term, e.net, e.vars, e.ctx)
		if err != nil {
			return Unknown, err
		}
		if resolved.State != Bound {
			determined = false
			continue
		}
		args[idx] = resolved.Value
	}
	if !determined {
		return Unknown, nil
	}
	return e.net.FactHolds(atom.Predicate, args), nil
}
