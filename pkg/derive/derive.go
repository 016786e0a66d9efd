// Package derive computes derived facts from Datalog rules over a network,
// using Mangle as the rule engine.
//
// Network predicates are visible to rules under their own names. Concepts
// appear as Mangle names (/ivanov), string literals as strings, numbers as
// numbers. For example:
//
//	colleague(X, Y) :- works_at(X, D), works_at(Y, D), X != Y.
package derive

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"
	"github.com/pkg/errors"
	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/network"
)

var mangleIdent = regexp.MustCompile(`^[a-z_][a-zA-Z0-9_]*$`)

// Rules is a parsed rule program.
type Rules struct {
	Source string
	unit   parse.SourceUnit
}

type RuleError struct {
	Stage string
	Err   error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("rules: %s: %v", e.Stage, e.Err)
}

func ParseRules(source string) (*Rules, error) {
	unit, err := parse.Unit(strings.NewReader(source))
	if err != nil {
		return nil, &RuleError{Stage: "parse", Err: err}
	}
	return &Rules{Source: source, unit: unit}, nil
}

// Heads returns the predicates the rules define, sorted by name.
func (r *Rules) Heads() []ast.PredicateSym {
	seen := map[ast.PredicateSym]bool{}
	var out []ast.PredicateSym
	for _, clause := range r.unit.Clauses {
		sym := clause.Head.Predicate
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (r *Rules) declared() map[string]bool {
	out := map[string]bool{}
	for _, clause := range r.unit.Clauses {
		out[clause.Head.Predicate.Symbol] = true
	}
	for _, decl := range r.unit.Decls {
		out[decl.DeclaredAtom.Predicate.Symbol] = true
	}
	return out
}

// Derive evaluates the rules to a fixpoint over the network's facts and
// returns every fact of a rule-defined predicate, sorted by id. Returned
// facts have kind Derived unless the network already asserts them.
func Derive(net *network.Network, rules *Rules) ([]*network.Fact, error) {
	declared := rules.declared()
	var decls []string
	var visible []*network.Predicate
	for _, pred := range net.Predicates() {
		if !mangleIdent.MatchString(pred.Name) {
			continue
		}
		visible = append(visible, pred)
		if !declared[pred.Name] {
			decls = append(decls, declFor(pred))
		}
	}

	unit := rules.unit
	if len(decls) > 0 {
		declUnit, err := parse.Unit(strings.NewReader(strings.Join(decls, "\n")))
		if err != nil {
			return nil, &RuleError{Stage: "declare network predicates", Err: err}
		}
		unit = parse.SourceUnit{
			Clauses: append(append([]ast.Clause{}, rules.unit.Clauses...), declUnit.Clauses...),
			Decls:   append(append([]ast.Decl{}, rules.unit.Decls...), declUnit.Decls...),
		}
	}

	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return nil, &RuleError{Stage: "analysis", Err: err}
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, pred := range visible {
		sym := ast.PredicateSym{Symbol: pred.Name, Arity: pred.Arity}
		for _, fact := range net.Facts(pred.Name) {
			args := make([]ast.BaseTerm, len(fact.Args))
			for idx, arg := range fact.Args {
				args[idx] = toConstant(arg)
			}
			store.Add(ast.Atom{Predicate: sym, Args: args})
		}
	}

	if _, err := engine.EvalProgramWithStats(programInfo, store); err != nil {
		return nil, &RuleError{Stage: "evaluation", Err: err}
	}

	var out []*network.Fact
	for _, sym := range rules.Heads() {
		err := store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
			args := make([]network.Value, len(atom.Args))
			for idx, term := range atom.Args {
				v, err := fromTerm(term)
				if err != nil {
					return errors.Wrapf(err, "derived %s", atom)
				}
				args[idx] = v
			}
			kind := network.Derived
			if net.FactHolds(sym.Symbol, args) == kleene.True {
				kind = network.Asserted
			}
			out = append(out, &network.Fact{Predicate: sym.Symbol, Args: args, Kind: kind})
			return nil
		})
		if err != nil {
			return nil, &RuleError{Stage: "collect " + sym.Symbol, Err: err}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

// Apply returns a copy of the network with derived predicates declared and
// derived facts added. The input network is not modified.
func Apply(net *network.Network, rules *Rules) (*network.Network, error) {
	facts, err := Derive(net, rules)
	if err != nil {
		return nil, err
	}
	out := net.Clone()
	for _, sym := range rules.Heads() {
		if _, err := out.Predicate(sym.Symbol); err == nil {
			continue
		}
		if err := out.AddPredicate(&network.Predicate{Name: sym.Symbol, Arity: sym.Arity}); err != nil {
			return nil, &RuleError{Stage: "apply", Err: err}
		}
	}
	for _, fact := range facts {
		if _, err := out.AssertDerived(fact.Predicate, fact.Args...); err != nil {
			return nil, &RuleError{Stage: "apply", Err: errors.Wrapf(err, "adding derived fact %s", fact)}
		}
	}
	return out, nil
}

func declFor(pred *network.Predicate) string {
	args := make([]string, pred.Arity)
	for idx := range args {
		args[idx] = fmt.Sprintf("A%d", idx)
	}
	return fmt.Sprintf("Decl %s(%s).", pred.Name, strings.Join(args, ", "))
}

func toConstant(v network.Value) ast.Constant {
	switch v.Kind {
	case network.ConceptValue:
		if name, err := ast.Name("/" + v.Str); err == nil {
			return name
		}
		return ast.String(v.Str)
	case network.NumberValue:
		if v.Num == math.Trunc(v.Num) && math.Abs(v.Num) < 1<<53 {
			return ast.Number(int64(v.Num))
		}
		return ast.Float64(v.Num)
	default:
		return ast.String(v.Str)
	}
}

func fromTerm(term ast.BaseTerm) (network.Value, error) {
	c, ok := term.(ast.Constant)
	if !ok {
		return network.Value{}, fmt.Errorf("non-constant term %v", term)
	}
	switch c.Type {
	case ast.NameType:
		return network.NewConceptRef(strings.TrimPrefix(c.Symbol, "/")), nil
	case ast.StringType:
		return network.NewString(c.Symbol), nil
	case ast.NumberType:
		return network.NewNumber(float64(c.NumValue)), nil
	case ast.Float64Type:
		return network.NewNumber(math.Float64frombits(uint64(c.NumValue))), nil
	default:
		return network.Value{}, fmt.Errorf("unsupported constant %v", c)
	}
}
