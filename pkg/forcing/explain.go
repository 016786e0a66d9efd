package forcing

import (
	"fmt"
	"strings"

	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/logic"
	"github.com/vilterp/semnet/pkg/param"
)

// maxTracedCompletions caps the per-completion lines in an explanation.
const maxTracedCompletions = 8

// explainer accumulates the explanation trace of a Forces call. Every line
// is a function of the inputs alone.
type explainer struct {
	lines []string
}

func (x *explainer) add(format string, args ...interface{}) {
	x.lines = append(x.lines, fmt.Sprintf(format, args...))
}

func (x *explainer) context(ctx *param.Context, vars *param.Variables) {
	status := ctx.Status(vars)
	var assigned []string
	for _, name := range vars.Names() {
		if v, ok := ctx.Get(name); ok {
			assigned = append(assigned, fmt.Sprintf("?%s = %s", name, v))
		}
	}
	name := ctx.Name
	if name == "" {
		name = "(anonymous)"
	}
	line := fmt.Sprintf("context %s assigns %d of %d variables", name, status.Assigned, status.Total)
	if len(assigned) > 0 {
		line += ": " + strings.Join(assigned, ", ")
	}
	x.add("%s", line)
}

func (x *explainer) conditions(conditions []logic.Formula, chk *CheckResult) {
	if len(conditions) == 0 {
		x.add("no conditions")
		return
	}
	for idx, cond := range conditions {
		x.add("cond[%d] %s is %s under the context", idx, cond, chk.Conditions[idx])
	}
}

func (x *explainer) free(free []string) {
	if len(free) == 0 {
		x.add("no free variables")
		return
	}
	names := make([]string, len(free))
	for idx, name := range free {
		names[idx] = "?" + name
	}
	x.add("free variables: %s", strings.Join(names, ", "))
}

func (x *explainer) vacuousComplete(chk *CheckResult) {
	labels := make([]string, len(chk.Violated))
	for idx, i := range chk.Violated {
		labels[idx] = fmt.Sprintf("cond[%d]", i)
	}
	x.add("vacuous: the context is complete and %s fails", strings.Join(labels, ", "))
}

func (x *explainer) completeVerdict(target logic.Formula, v kleene.Truth) {
	if v.IsDetermined() {
		x.add("the context is complete; target %s is forced %s", target, v)
		return
	}
	x.add("the context is complete; target %s is unknown", target)
}

func (x *explainer) budget(total int, max int) {
	x.add("%d completions to enumerate (limit %d)", total, max)
}

func (x *explainer) completion(n int, c *Completion, v kleene.Truth) {
	if n > maxTracedCompletions {
		return
	}
	x.add("completion %s satisfies the conditions; target is %s", c, v)
}

func (x *explainer) unknownTarget(c *Completion) {
	x.add("target is unknown under %s; stopping", c)
}

func (x *explainer) disagreement(first *Completion, firstValue kleene.Truth, c *Completion, v kleene.Truth) {
	x.add("completions disagree: %s gives %s but %s gives %s; stopping", first, firstValue, c, v)
}

func (x *explainer) summary(enumerated, total, consistent, rejected int) {
	x.add("enumerated %d of %d completions: %d consistent, %d rejected by conditions",
		enumerated, total, consistent, rejected)
}

func (x *explainer) vacuous() {
	x.add("vacuous: no completion satisfies every condition")
}

func (x *explainer) forced(target logic.Formula, v kleene.Truth) {
	x.add("target %s is forced %s", target, v)
}

func (x *explainer) undetermined(target logic.Formula) {
	x.add("target %s is not forced", target)
}
