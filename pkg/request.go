package semnet

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/vilterp/semnet/pkg/kleene"
	clog "github.com/vilterp/semnet/pkg/log"
	"github.com/vilterp/semnet/pkg/logic"
	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
	"github.com/vilterp/semnet/pkg/scenario"
)

type request struct {
	*Request
	context context.Context
}

func newRequest(parent clog.Loggable, req *Request) *request {
	return &request{
		Request: req,
		context: context.WithValue(parent.Ctx(), clog.RequestIDKey, req.ID),
	}
}

func (r *request) Ctx() context.Context {
	return r.context
}

// Caller sends requests: a Client over a websocket, or a Server in-process.
type Caller interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Do answers req in-process.
func (s *Server) Do(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.handle(newRequest(ctxLoggable{ctx}, req)), nil
}

type ctxLoggable struct {
	ctx context.Context
}

func (l ctxLoggable) Ctx() context.Context { return l.ctx }

// Call sends req and decodes the result into out. Failures reported by the
// server come back as *RemoteError.
func Call(ctx context.Context, caller Caller, req *Request, out interface{}) error {
	resp, err := caller.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return &RemoteError{Kind: resp.Kind, Message: resp.Error}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(resp.Result, out)
}

func (s *Server) handle(req *request) *Response {
	start := time.Now()
	resp := &Response{ID: req.ID}
	// keep metric labels bounded
	opLabel := req.Op
	if !knownOps[opLabel] {
		opLabel = "unknown"
	}

	result, err := s.run(req)
	if err == nil {
		resp.Result, err = json.Marshal(result)
	}
	if err != nil {
		resp.Error = err.Error()
		resp.Kind = ErrorKind(err)
		clog.Printf(req, "%s failed: %v", req.Op, err)
		s.metrics.observeRequest(opLabel, resp.Kind, start)
		return resp
	}
	clog.Debugf(req, "%s %s answered in %s", req.Op, req.Scenario, time.Since(start))
	s.metrics.observeRequest(opLabel, "ok", start)
	return resp
}

func (s *Server) run(req *request) (interface{}, error) {
	if req.Op == OpScenarios {
		var out []ScenarioSummary
		for _, name := range s.catalog.Names() {
			sc, _ := s.catalog.Get(name)
			out = append(out, summarize(sc))
		}
		return out, nil
	}

	sc, err := s.catalog.Get(req.Scenario)
	if err != nil {
		return nil, err
	}

	switch req.Op {
	case OpDescribe:
		return describe(sc), nil
	case OpCompare:
		return s.compare(sc, req)
	case OpEvaluate, OpCheck, OpForces, OpWitness, OpHighlights, OpStatus, OpValidate:
	default:
		return nil, &unknownOp{Op: req.Op}
	}

	ctx, err := buildContext(sc, req.Request)
	if err != nil {
		return nil, err
	}

	switch req.Op {
	case OpEvaluate:
		formula, err := resolveFormula(sc, req.Formula)
		if err != nil {
			return nil, err
		}
		truth, err := EvaluateFormula(sc.Network, sc.Variables, ctx, formula)
		if err != nil {
			return nil, err
		}
		s.metrics.evaluations.WithLabelValues(truth.String()).Inc()
		return &EvaluateResult{Formula: formula.Text, Truth: truth.String()}, nil

	case OpCheck:
		conditions, err := resolveConditions(sc, req.Conditions)
		if err != nil {
			return nil, err
		}
		return CheckConditions(sc.Network, sc.Variables, ctx, conditions)

	case OpForces:
		conditions, target, err := resolveForcing(sc, req.Request)
		if err != nil {
			return nil, err
		}
		report, err := Forces(sc.Network, sc.Variables, ctx, conditions, target, s.forcesOptions(req.Request))
		if err != nil {
			return nil, err
		}
		s.metrics.observeForces(report)
		return report, nil

	case OpWitness:
		conditions, target, err := resolveForcing(sc, req.Request)
		if err != nil {
			return nil, err
		}
		want := kleene.True
		if req.Want != "" {
			if err := want.UnmarshalText([]byte(req.Want)); err != nil || !want.IsDetermined() {
				return nil, &badRequest{Reason: "want must be true or false"}
			}
		}
		found, err := Witness(sc.Network, sc.Variables, ctx, conditions, target, want, s.forcesOptions(req.Request))
		if err != nil {
			return nil, err
		}
		if found == nil {
			return &WitnessResult{}, nil
		}
		return &WitnessResult{Found: true, Values: found.Values()}, nil

	case OpHighlights:
		return ctx.Highlights(sc.Network), nil

	case OpStatus:
		return &StatusResult{
			Context: ctx.Name,
			Values:  ctx.Values(),
			Status:  ctx.Status(sc.Variables),
		}, nil

	default: // OpValidate
		formula, err := resolveFormula(sc, req.Formula)
		if err != nil {
			return nil, err
		}
		if err := logic.Validate(formula.Node, sc.Network, sc.Variables); err != nil {
			return nil, err
		}
		return &ValidateResult{
			Formula:   formula.Text,
			Variables: logic.ReferencedVariables(formula.Node),
			Dangling:  logic.DanglingConcepts(formula.Node, sc.Network),
		}, nil
	}
}

func (s *Server) compare(sc *scenario.Scenario, req *request) (*param.Comparison, error) {
	contexts := make([]*param.Context, len(req.Contexts))
	for idx, name := range req.Contexts {
		ctx, err := sc.Context(name)
		if err != nil {
			return nil, err
		}
		contexts[idx] = ctx
	}
	return param.Compare(contexts...)
}

// forcesOptions lets a request lower the server's completion limit but
// never raise it.
func (s *Server) forcesOptions(req *Request) ForcesOptions {
	limit := s.config.MaxCompletions
	if req.MaxCompletions > 0 && (limit == 0 || req.MaxCompletions < limit) {
		limit = req.MaxCompletions
	}
	return ForcesOptions{MaxCompletions: limit}
}

// buildContext copies the requested context and applies the request's
// edits to the copy.
func buildContext(sc *scenario.Scenario, req *Request) (*param.Context, error) {
	ctx := sc.DefaultContext()
	if req.Context != "" {
		named, err := sc.Context(req.Context)
		if err != nil {
			return nil, err
		}
		ctx = named
	}
	for _, name := range req.Unassign {
		if _, err := sc.Variables.Lookup(name); err != nil {
			return nil, err
		}
		ctx.Unset(name)
	}
	if len(req.Assign) == 0 {
		return ctx, nil
	}
	names := make([]string, 0, len(req.Assign))
	for name := range req.Assign {
		names = append(names, name)
	}
	sort.Strings(names)
	assignments := make(map[string]network.Value, len(names))
	for _, name := range names {
		value, err := toValue(sc.Network, req.Assign[name])
		if err != nil {
			return nil, errors.Wrapf(&badRequest{Reason: err.Error()}, "?%s", name)
		}
		assignments[name] = value
	}
	return ctx.Extend(sc.Variables, assignments)
}

// toValue reads a string naming a concept as a reference to it.
func toValue(net *network.Network, raw interface{}) (network.Value, error) {
	if str, ok := raw.(string); ok && net.ConceptExists(str) {
		return network.NewConceptRef(str), nil
	}
	return network.ValueFromNative(raw)
}

func resolveFormula(sc *scenario.Scenario, ref *FormulaRef) (*Formula, error) {
	if ref == nil {
		return nil, &badRequest{Reason: "formula required"}
	}
	set := 0
	for _, given := range []bool{ref.Name != "", ref.Text != "", len(ref.Node) > 0} {
		if given {
			set++
		}
	}
	if set != 1 {
		return nil, &badRequest{Reason: "give exactly one of name, text or node"}
	}

	switch {
	case ref.Name != "":
		node, err := sc.Formula(ref.Name)
		if err != nil {
			return nil, err
		}
		return NewFormula(ref.Name, node), nil
	case ref.Text != "":
		return ParseFormula("", ref.Text)
	default:
		node, err := logic.UnmarshalFormula(ref.Node)
		if err != nil {
			return nil, err
		}
		return NewFormula("", node), nil
	}
}

func resolveConditions(sc *scenario.Scenario, refs []*FormulaRef) ([]*Formula, error) {
	if refs == nil {
		names := sc.ConditionNames()
		out := make([]*Formula, len(names))
		for idx, node := range sc.Conditions() {
			out[idx] = NewFormula(names[idx], node)
		}
		return out, nil
	}
	out := make([]*Formula, len(refs))
	for idx, ref := range refs {
		f, err := resolveFormula(sc, ref)
		if err != nil {
			return nil, errors.Wrapf(err, "condition %d", idx)
		}
		out[idx] = f
	}
	return out, nil
}

func resolveForcing(sc *scenario.Scenario, req *Request) ([]*Formula, *Formula, error) {
	conditions, err := resolveConditions(sc, req.Conditions)
	if err != nil {
		return nil, nil, err
	}
	if req.Target != nil {
		target, err := resolveFormula(sc, req.Target)
		if err != nil {
			return nil, nil, errors.Wrap(err, "target")
		}
		return conditions, target, nil
	}
	name, goal := sc.Goal()
	if goal == nil {
		return nil, nil, &badRequest{Reason: "no target given and the scenario has no goal"}
	}
	return conditions, NewFormula(name, goal), nil
}
