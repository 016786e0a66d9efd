package semnet

import (
	"encoding/json"

	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
	"github.com/vilterp/semnet/pkg/scenario"
)

// Ops understood by the server.
const (
	OpScenarios  = "scenarios"
	OpDescribe   = "describe"
	OpEvaluate   = "evaluate"
	OpCheck      = "check"
	OpForces     = "forces"
	OpWitness    = "witness"
	OpHighlights = "highlights"
	OpCompare    = "compare"
	OpStatus     = "status"
	OpValidate   = "validate"
)

var knownOps = map[string]bool{
	OpScenarios: true, OpDescribe: true, OpEvaluate: true, OpCheck: true,
	OpForces: true, OpWitness: true, OpHighlights: true, OpCompare: true,
	OpStatus: true, OpValidate: true,
}

// Request is one message from a client. Each is answered by exactly one
// Response carrying the same ID.
type Request struct {
	ID       int    `json:"id"`
	Op       string `json:"op"`
	Scenario string `json:"scenario,omitempty"`
	// Context names a context of the scenario; empty means its default.
	Context string `json:"context,omitempty"`
	// Assign and Unassign edit a copy of the context before use.
	Assign   map[string]interface{} `json:"assign,omitempty"`
	Unassign []string               `json:"unassign,omitempty"`
	// Contexts names the contexts to compare.
	Contexts []string    `json:"contexts,omitempty"`
	Formula  *FormulaRef `json:"formula,omitempty"`
	// Conditions defaults to the scenario's when absent.
	Conditions []*FormulaRef `json:"conditions,omitempty"`
	// Target defaults to the scenario's goal when absent.
	Target *FormulaRef `json:"target,omitempty"`
	// Want is the target value a witness must produce: "true" or "false".
	Want           string `json:"want,omitempty"`
	MaxCompletions int    `json:"maxCompletions,omitempty"`
}

// FormulaRef names a scenario formula, or gives one as text or as an
// encoded tree. Exactly one field is set.
type FormulaRef struct {
	Name string          `json:"name,omitempty"`
	Text string          `json:"text,omitempty"`
	Node json.RawMessage `json:"node,omitempty"`
}

type Response struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Kind   string          `json:"kind,omitempty"`
}

type ScenarioSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Contexts    []string `json:"contexts"`
	Formulas    []string `json:"formulas"`
	Conditions  []string `json:"conditions"`
	Goal        string   `json:"goal,omitempty"`
}

type ConceptView struct {
	ID    string   `json:"id"`
	Label string   `json:"label,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

type PredicateView struct {
	Name  string   `json:"name"`
	Arity int      `json:"arity"`
	Roles []string `json:"roles,omitempty"`
}

type FactView struct {
	ID        string          `json:"id"`
	Predicate string          `json:"predicate"`
	Args      []network.Value `json:"args"`
	Derived   bool            `json:"derived,omitempty"`
}

type VariableView struct {
	Name   string `json:"name"`
	Type   string `json:"type,omitempty"`
	Domain string `json:"domain"`
	// Values lists the members of enum domains.
	Values []network.Value `json:"values,omitempty"`
	Origin string          `json:"origin"`
}

type FormulaView struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type Description struct {
	ScenarioSummary
	Concepts   []ConceptView   `json:"concepts"`
	Predicates []PredicateView `json:"predicates"`
	Facts      []FactView      `json:"facts"`
	Variables  []VariableView  `json:"variables"`
	Formulas   []FormulaView   `json:"formulas"`
}

type EvaluateResult struct {
	Formula string `json:"formula"`
	Truth   string `json:"truth"`
}

type WitnessResult struct {
	Found  bool                     `json:"found"`
	Values map[string]network.Value `json:"values,omitempty"`
}

type ValidateResult struct {
	Formula   string   `json:"formula"`
	Variables []string `json:"variables"`
	// Dangling lists concepts the network does not know; they evaluate to
	// unknown.
	Dangling []string `json:"dangling"`
}

type StatusResult struct {
	Context string                   `json:"context"`
	Values  map[string]network.Value `json:"values"`
	*param.Status
}

func summarize(s *scenario.Scenario) ScenarioSummary {
	goal, _ := s.Goal()
	return ScenarioSummary{
		Name:        s.Name,
		Description: s.Description,
		Contexts:    s.ContextNames(),
		Formulas:    s.FormulaNames(),
		Conditions:  s.ConditionNames(),
		Goal:        goal,
	}
}

func describe(s *scenario.Scenario) *Description {
	d := &Description{ScenarioSummary: summarize(s)}
	for _, c := range s.Network.Concepts() {
		d.Concepts = append(d.Concepts, ConceptView{ID: c.ID, Label: c.Label, Tags: c.Tags})
	}
	for _, p := range s.Network.Predicates() {
		d.Predicates = append(d.Predicates, PredicateView{Name: p.Name, Arity: p.Arity, Roles: p.Roles})
	}
	for _, f := range s.Network.Facts("") {
		d.Facts = append(d.Facts, FactView{
			ID:        f.ID(),
			Predicate: f.Predicate,
			Args:      f.Args,
			Derived:   f.Kind == network.Derived,
		})
	}
	for _, v := range s.Variables.All() {
		view := VariableView{
			Name:   v.Name,
			Type:   v.TypeTag,
			Domain: v.Domain.Describe(),
			Origin: string(v.Origin),
		}
		if enum, ok := v.Domain.(*param.EnumDomain); ok {
			view.Values = enum.Values
		}
		d.Variables = append(d.Variables, view)
	}
	for _, name := range s.FormulaNames() {
		f, _ := s.Formula(name)
		d.Formulas = append(d.Formulas, FormulaView{Name: name, Text: f.String()})
	}
	return d
}
