// Package forcing decides whether conditions, together with a partial
// context, force the truth value of a target formula across every way of
// completing the context.
package forcing

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/logic"
	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
)

const DefaultMaxCompletions = 10000

// Engine holds no state between calls; one Engine may serve concurrent
// callers.
type Engine struct {
	// MaxCompletions bounds the completions Forces will enumerate. Zero
	// means DefaultMaxCompletions.
	MaxCompletions int
}

func NewEngine(maxCompletions int) *Engine {
	return &Engine{MaxCompletions: maxCompletions}
}

func (e *Engine) maxCompletions() int {
	if e == nil || e.MaxCompletions <= 0 {
		return DefaultMaxCompletions
	}
	return e.MaxCompletions
}

type CheckResult struct {
	// OK is false iff some condition is FALSE.
	OK         bool
	Conditions []kleene.Truth
	Violated   []int
	Unknown    []int
}

type Outcome int

const (
	Forced Outcome = iota
	Undetermined
	Vacuous
)

func (o Outcome) String() string {
	switch o {
	case Forced:
		return "forced"
	case Undetermined:
		return "undetermined"
	default:
		return "vacuous"
	}
}

type ForcesResult struct {
	Outcome Outcome
	// Value is TRUE or FALSE when Forced and UNKNOWN otherwise.
	Value kleene.Truth
	// Check is the conditions' status under the context itself.
	Check *CheckResult
	// Free lists the unassigned variables in registry order.
	Free []string
	// Total is the size of the completion space.
	Total int
	// Enumerated counts completions visited before the search ended.
	Enumerated int
	// Consistent counts visited completions on which every condition is TRUE.
	Consistent  int
	Explanation []string
}

// Result is "true", "false", "unknown" or "vacuous".
func (r *ForcesResult) Result() string {
	if r.Outcome == Vacuous {
		return "vacuous"
	}
	return r.Value.String()
}

func (e *Engine) validate(
	net logic.Facts, vars *param.Variables, ctx *param.Context, formulas []logic.Formula,
) error {
	for idx, f := range formulas {
		if err := logic.Validate(f, net, vars); err != nil {
			return errors.Wrapf(err, "formula %d (%s)", idx, f)
		}
	}
	return ctx.Validate(vars)
}

// Check evaluates each condition under ctx.
func (e *Engine) Check(
	net logic.Facts, vars *param.Variables, ctx *param.Context, conditions []logic.Formula,
) (*CheckResult, error) {
	if err := e.validate(net, vars, ctx, conditions); err != nil {
		return nil, err
	}
	return check(net, vars, ctx, conditions)
}

func check(
	net logic.Facts, vars *param.Variables, ctx logic.Assignment, conditions []logic.Formula,
) (*CheckResult, error) {
	result := &CheckResult{
		OK:         true,
		Conditions: make([]kleene.Truth, len(conditions)),
		Violated:   []int{},
		Unknown:    []int{},
	}
	for idx, cond := range conditions {
		v, err := logic.EvaluateValidated(cond, net, vars, ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "condition %d", idx)
		}
		result.Conditions[idx] = v
		switch v {
		case kleene.False:
			result.OK = false
			result.Violated = append(result.Violated, idx)
		case kleene.Unknown:
			result.Unknown = append(result.Unknown, idx)
		}
	}
	return result, nil
}

// Forces reports whether the conditions and ctx determine target. See
// ForcesResult for the outcomes.
func (e *Engine) Forces(
	net logic.Facts,
	vars *param.Variables,
	ctx *param.Context,
	conditions []logic.Formula,
	target logic.Formula,
) (*ForcesResult, error) {
	all := append(append([]logic.Formula{}, conditions...), target)
	if err := e.validate(net, vars, ctx, all); err != nil {
		return nil, err
	}

	trace := &explainer{}
	result := &ForcesResult{Value: kleene.Unknown}
	trace.context(ctx, vars)

	chk, err := check(net, vars, ctx, conditions)
	if err != nil {
		return nil, err
	}
	result.Check = chk
	trace.conditions(conditions, chk)

	free := ctx.Status(vars).Free
	result.Free = free
	trace.free(free)

	if len(free) == 0 {
		result.Total = 1
		result.Enumerated = 1
		if !chk.OK {
			result.Outcome = Vacuous
			trace.vacuousComplete(chk)
			result.Explanation = trace.lines
			return result, nil
		}
		result.Consistent = 1
		v, err := logic.EvaluateValidated(target, net, vars, ctx)
		if err != nil {
			return nil, errors.Wrap(err, "target")
		}
		result.Value = v
		result.Outcome = Undetermined
		if v.IsDetermined() {
			result.Outcome = Forced
		}
		trace.completeVerdict(target, v)
		result.Explanation = trace.lines
		return result, nil
	}

	iter, total, err := e.completions(net, vars, ctx, free, conditions)
	if err != nil {
		return nil, err
	}
	result.Total = total
	trace.budget(total, e.maxCompletions())

	var first *Completion
	firstValue := kleene.Unknown
	for {
		c, err := iter.Next()
		if err == EndOfIteration {
			break
		}
		if err != nil {
			return nil, err
		}
		result.Consistent++
		v, err := logic.EvaluateValidated(target, net, vars, c)
		if err != nil {
			return nil, errors.Wrapf(err, "target under %s", c)
		}
		trace.completion(result.Consistent, c, v)

		if !v.IsDetermined() {
			trace.unknownTarget(c)
			first = nil
			break
		}
		if first == nil {
			first, firstValue = c, v
			continue
		}
		if v != firstValue {
			trace.disagreement(first, firstValue, c, v)
			first = nil
			break
		}
	}
	result.Enumerated = result.Consistent + iter.rejected
	trace.summary(result.Enumerated, total, result.Consistent, iter.rejected)

	switch {
	case result.Consistent == 0:
		result.Outcome = Vacuous
		trace.vacuous()
	case first != nil:
		result.Outcome = Forced
		result.Value = firstValue
		trace.forced(target, firstValue)
	default:
		result.Outcome = Undetermined
		trace.undetermined(target)
	}
	result.Explanation = trace.lines
	return result, nil
}

// Witness returns a completion of ctx on which every condition is TRUE and
// target has the wanted value, or nil if there is none. The result is a new
// context; ctx is not modified.
func (e *Engine) Witness(
	net logic.Facts,
	vars *param.Variables,
	ctx *param.Context,
	conditions []logic.Formula,
	target logic.Formula,
	want kleene.Truth,
) (*param.Context, error) {
	all := append(append([]logic.Formula{}, conditions...), target)
	if err := e.validate(net, vars, ctx, all); err != nil {
		return nil, err
	}
	free := ctx.Status(vars).Free
	iter, _, err := e.completions(net, vars, ctx, free, conditions)
	if err != nil {
		return nil, err
	}
	for {
		c, err := iter.Next()
		if err == EndOfIteration {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := logic.EvaluateValidated(target, net, vars, c)
		if err != nil {
			return nil, err
		}
		if v == want {
			out := ctx.Clone(ctx.Name)
			for idx, name := range c.names {
				out.SetUnchecked(name, c.values[idx])
			}
			return out, nil
		}
	}
}

// completions checks the completion budget and returns an iterator over
// the completions of free on which every condition is TRUE.
func (e *Engine) completions(
	net logic.Facts,
	vars *param.Variables,
	ctx *param.Context,
	free []string,
	conditions []logic.Formula,
) (*filterIterator, int, error) {
	total := 1
	for _, name := range free {
		domain, err := vars.DomainOf(name)
		if err != nil {
			return nil, 0, err
		}
		size, err := domain.Size()
		if err != nil {
			return nil, 0, errors.Wrapf(err, "variable ?%s", name)
		}
		if size > 0 && total > math.MaxInt32/size {
			return nil, 0, &TooManyCompletionsError{Free: free, Completions: math.MaxInt32, Max: e.maxCompletions()}
		}
		total *= size
	}
	if total > e.maxCompletions() {
		return nil, 0, &TooManyCompletionsError{Free: free, Completions: total, Max: e.maxCompletions()}
	}

	domains := make([][]network.Value, len(free))
	for idx, name := range free {
		domain, _ := vars.DomainOf(name)
		values, err := domain.Enumerate()
		if err != nil {
			return nil, 0, errors.Wrapf(err, "variable ?%s", name)
		}
		domains[idx] = values
	}

	iter := &filterIterator{
		inner: newOdometer(ctx, free, domains),
		keep: func(c *Completion) (bool, error) {
			for idx, cond := range conditions {
				v, err := logic.EvaluateValidated(cond, net, vars, c)
				if err != nil {
					return false, errors.Wrapf(err, "condition %d under %s", idx, c)
				}
				if v != kleene.True {
					return false, nil
				}
			}
			return true, nil
		},
	}
	return iter, total, nil
}

type TooManyCompletionsError struct {
	Free        []string
	Completions int
	Max         int
}

func (e *TooManyCompletionsError) Error() string {
	return fmt.Sprintf(
		"forcing over %d free variables needs %d completions; the limit is %d",
		len(e.Free), e.Completions, e.Max,
	)
}
