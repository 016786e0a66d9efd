// Package semnet serves parameterized semantic networks: it evaluates
// formulas over scenarios, checks conditions, and decides forcing, both
// in-process and over a websocket protocol.
package semnet

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/vilterp/semnet/pkg/forcing"
	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/logic"
	"github.com/vilterp/semnet/pkg/param"
)

// Formula is a formula as callers refer to it: with an id, an optional
// name, and its rendered text.
type Formula struct {
	ID   uuid.UUID
	Name string
	Node logic.Formula
	Text string
}

func NewFormula(name string, node logic.Formula) *Formula {
	return &Formula{
		ID:   uuid.New(),
		Name: name,
		Node: node,
		Text: logic.Format(node),
	}
}

func ParseFormula(name string, text string) (*Formula, error) {
	node, err := logic.Parse(text)
	if err != nil {
		return nil, err
	}
	return NewFormula(name, node), nil
}

// Ref is the name if there is one and the text otherwise.
func (f *Formula) Ref() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Text
}

func (f *Formula) MarshalJSON() ([]byte, error) {
	node, err := logic.MarshalFormula(f.Node)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		ID   string          `json:"id"`
		Name string          `json:"name,omitempty"`
		Text string          `json:"text"`
		Node json.RawMessage `json:"node"`
	}{f.ID.String(), f.Name, f.Text, node})
}

func nodes(formulas []*Formula) []logic.Formula {
	out := make([]logic.Formula, len(formulas))
	for idx, f := range formulas {
		out[idx] = f.Node
	}
	return out
}

type FormulaResult struct {
	Formula string       `json:"formula"`
	Truth   kleene.Truth `json:"truth"`
}

type CheckReport struct {
	OK           bool            `json:"ok"`
	PerCondition []FormulaResult `json:"perCondition"`
	Violated     []int           `json:"violated"`
	Unknown      []int           `json:"unknown"`
}

type ForcesReport struct {
	// Result is "true", "false", "unknown" or "vacuous".
	Result       string          `json:"result"`
	PerCondition []FormulaResult `json:"perCondition"`
	Explanation  []string        `json:"explanation"`
	Free         []string        `json:"free"`
	Total        int             `json:"total"`
	Enumerated   int             `json:"enumerated"`
	Consistent   int             `json:"consistent"`
}

func perCondition(conditions []*Formula, truths []kleene.Truth) []FormulaResult {
	out := make([]FormulaResult, len(conditions))
	for idx, cond := range conditions {
		out[idx] = FormulaResult{Formula: cond.Ref(), Truth: truths[idx]}
	}
	return out
}

// EvaluateFormula evaluates one formula under ctx.
func EvaluateFormula(
	net logic.Facts, vars *param.Variables, ctx *param.Context, formula *Formula,
) (kleene.Truth, error) {
	if err := ctx.Validate(vars); err != nil {
		return kleene.Unknown, err
	}
	return logic.Evaluate(formula.Node, net, vars, ctx)
}

func CheckConditions(
	net logic.Facts, vars *param.Variables, ctx *param.Context, conditions []*Formula,
) (*CheckReport, error) {
	chk, err := (&forcing.Engine{}).Check(net, vars, ctx, nodes(conditions))
	if err != nil {
		return nil, err
	}
	return &CheckReport{
		OK:           chk.OK,
		PerCondition: perCondition(conditions, chk.Conditions),
		Violated:     chk.Violated,
		Unknown:      chk.Unknown,
	}, nil
}

type ForcesOptions struct {
	// MaxCompletions of zero means forcing.DefaultMaxCompletions.
	MaxCompletions int
}

func Forces(
	net logic.Facts,
	vars *param.Variables,
	ctx *param.Context,
	conditions []*Formula,
	target *Formula,
	opts ForcesOptions,
) (*ForcesReport, error) {
	engine := forcing.NewEngine(opts.MaxCompletions)
	res, err := engine.Forces(net, vars, ctx, nodes(conditions), target.Node)
	if err != nil {
		return nil, err
	}
	return &ForcesReport{
		Result:       res.Result(),
		PerCondition: perCondition(conditions, res.Check.Conditions),
		Explanation:  res.Explanation,
		Free:         res.Free,
		Total:        res.Total,
		Enumerated:   res.Enumerated,
		Consistent:   res.Consistent,
	}, nil
}

// Witness finds a completion of ctx satisfying the conditions on which
// target evaluates to want. It returns nil when there is none.
func Witness(
	net logic.Facts,
	vars *param.Variables,
	ctx *param.Context,
	conditions []*Formula,
	target *Formula,
	want kleene.Truth,
	opts ForcesOptions,
) (*param.Context, error) {
	engine := forcing.NewEngine(opts.MaxCompletions)
	return engine.Witness(net, vars, ctx, nodes(conditions), target.Node, want)
}
