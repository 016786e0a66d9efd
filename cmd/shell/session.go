package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	semnet "github.com/vilterp/semnet/pkg"
	"github.com/vilterp/semnet/pkg/param"
	pp "github.com/vilterp/semnet/pkg/prettyprint"
)

// session holds the selected scenario and context plus local edits to
// it. Every request carries the whole selection; the server keeps
// nothing between requests. Values come back over the wire as plain
// JSON scalars, so they are printed with Text.
type session struct {
	caller   semnet.Caller
	out      io.Writer
	scenario string
	context  string
	assign   map[string]interface{}
	unassign map[string]bool
}

func newSession(caller semnet.Caller, out io.Writer) *session {
	s := &session{caller: caller, out: out}
	s.reset()
	return s
}

func (s *session) reset() {
	s.assign = map[string]interface{}{}
	s.unassign = map[string]bool{}
}

func (s *session) prompt() string {
	if s.scenario == "" {
		return "semnet> "
	}
	ctx := s.context
	if ctx == "" {
		ctx = "default"
	}
	edits := ""
	if len(s.assign)+len(s.unassign) > 0 {
		edits = "*"
	}
	return fmt.Sprintf("%s/%s%s> ", s.scenario, ctx, edits)
}

const helpText = `\h                  help
\q                  quit
\s                  list scenarios
\u SCENARIO         use a scenario (resets the context)
\c [CONTEXT]        pick a named context; no name picks the default
\set VAR VALUE      assign a variable in the current context
\unset VAR          unassign a variable
\status             show the context
\d                  describe the scenario
\hl                 concepts and facts the context points at
\cmp CTX CTX...     compare named contexts
eval FORMULA        evaluate a formula (bare lines are evaluated too)
check               check the scenario's conditions
forces [FORMULA]    does the context force FORMULA (default: the goal)?
witness [true|false] [FORMULA]
                    find a completion giving FORMULA that value

A FORMULA is text such as 'likes(alice, ?x) and not ?x = bob', or @name for
one of the scenario's formulas.`

// exec runs one line and reports whether the shell should exit.
func (s *session) exec(line string) bool {
	line = strings.TrimSpace(line)
	cmd, rest := line, ""
	if idx := strings.IndexAny(line, " \t"); idx >= 0 {
		cmd, rest = line[:idx], strings.TrimSpace(line[idx+1:])
	}

	switch cmd {
	case `\q`:
		return true
	case `\h`:
		fmt.Fprintln(s.out, helpText)
	case `\s`:
		s.listScenarios()
	case `\u`:
		if rest == "" {
			s.errorf(`usage: \u SCENARIO`)
			break
		}
		summary := &semnet.Description{}
		if err := s.call(&semnet.Request{Op: semnet.OpDescribe, Scenario: rest}, summary); err != nil {
			break
		}
		s.scenario, s.context = rest, ""
		s.reset()
		fmt.Fprintf(s.out, "using %s\n", rest)
	case `\c`:
		s.context = rest
		s.reset()
		s.status()
	case `\set`:
		parts := strings.SplitN(rest, " ", 2)
		if len(parts) != 2 {
			s.errorf(`usage: \set VAR VALUE`)
			break
		}
		name := strings.TrimPrefix(parts[0], "?")
		s.assign[name] = parseValue(strings.TrimSpace(parts[1]))
		delete(s.unassign, name)
		s.status()
	case `\unset`:
		name := strings.TrimPrefix(rest, "?")
		delete(s.assign, name)
		s.unassign[name] = true
		s.status()
	case `\status`:
		s.status()
	case `\d`:
		s.describe()
	case `\hl`:
		s.highlights()
	case `\cmp`:
		s.compare(strings.Fields(rest))
	case "eval":
		s.evaluate(rest)
	case "check":
		s.check()
	case "forces":
		s.forces(rest)
	case "witness":
		s.witness(rest)
	default:
		if strings.HasPrefix(cmd, `\`) {
			s.errorf(`unknown command %s; \h for help`, cmd)
			break
		}
		s.evaluate(line)
	}
	return false
}

func parseValue(raw string) interface{} {
	if unquoted, err := strconv.Unquote(raw); err == nil {
		return unquoted
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func formulaRef(raw string) *semnet.FormulaRef {
	// @"..." is a quoted concept id, not a formula name.
	if strings.HasPrefix(raw, "@") && !strings.HasPrefix(raw, `@"`) {
		return &semnet.FormulaRef{Name: raw[1:]}
	}
	return &semnet.FormulaRef{Text: raw}
}

func (s *session) request(op string) *semnet.Request {
	req := &semnet.Request{Op: op, Scenario: s.scenario, Context: s.context}
	if len(s.assign) > 0 {
		req.Assign = map[string]interface{}{}
		for k, v := range s.assign {
			req.Assign[k] = v
		}
	}
	for name := range s.unassign {
		req.Unassign = append(req.Unassign, name)
	}
	sort.Strings(req.Unassign)
	return req
}

func (s *session) call(req *semnet.Request, out interface{}) error {
	err := semnet.Call(context.Background(), s.caller, req, out)
	if err != nil {
		s.errorf("%v", err)
	}
	return err
}

func (s *session) needScenario() bool {
	if s.scenario == "" {
		s.errorf(`no scenario selected; \s lists them, \u picks one`)
		return false
	}
	return true
}

func (s *session) errorf(format string, args ...interface{}) {
	fmt.Fprintln(s.out, color.RedString("error:"), fmt.Sprintf(format, args...))
}

func paint(result string) string {
	switch result {
	case "true":
		return color.GreenString(result)
	case "false":
		return color.RedString(result)
	case "vacuous":
		return color.MagentaString(result)
	default:
		return color.YellowString(result)
	}
}

func (s *session) print(d pp.Doc) {
	fmt.Fprintln(s.out, d.String())
}

func (s *session) listScenarios() {
	var summaries []semnet.ScenarioSummary
	if err := s.call(&semnet.Request{Op: semnet.OpScenarios}, &summaries); err != nil {
		return
	}
	var docs []pp.Doc
	for _, summary := range summaries {
		docs = append(docs, pp.Textf("%s  contexts: %s  goal: %s",
			summary.Name, strings.Join(summary.Contexts, ", "), summary.Goal))
	}
	s.print(pp.Lines(docs))
}

func (s *session) status() {
	if !s.needScenario() {
		return
	}
	status := &semnet.StatusResult{}
	if err := s.call(s.request(semnet.OpStatus), status); err != nil {
		return
	}
	names := make([]string, 0, len(status.Values))
	for name := range status.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	docs := []pp.Doc{pp.Textf("assigned %d of %d", status.Assigned, status.Total)}
	for _, name := range names {
		docs = append(docs, pp.Indent(2, pp.Textf("?%s = %s", name, status.Values[name].Text())))
	}
	if len(status.Free) > 0 {
		docs = append(docs, pp.Textf("free: ?%s", strings.Join(status.Free, ", ?")))
	}
	s.print(pp.Lines(docs))
}

func (s *session) describe() {
	if !s.needScenario() {
		return
	}
	d := &semnet.Description{}
	if err := s.call(s.request(semnet.OpDescribe), d); err != nil {
		return
	}

	section := func(title string, items []pp.Doc) pp.Doc {
		return pp.Lines([]pp.Doc{pp.Text(title), pp.Indent(2, pp.Lines(items))})
	}
	var concepts, predicates, facts, vars, formulas []pp.Doc
	for _, c := range d.Concepts {
		concepts = append(concepts, pp.Textf("%s  %s", c.ID, c.Label))
	}
	for _, p := range d.Predicates {
		predicates = append(predicates, pp.Textf("%s/%d  (%s)", p.Name, p.Arity, strings.Join(p.Roles, ", ")))
	}
	for _, f := range d.Facts {
		args := make([]pp.Doc, len(f.Args))
		for idx, arg := range f.Args {
			args[idx] = pp.Text(arg.Text())
		}
		fact := pp.Seq([]pp.Doc{pp.Text(f.Predicate), pp.Parens(pp.Join(args, pp.Text(", ")))})
		if f.Derived {
			fact = pp.Seq([]pp.Doc{fact, pp.Text("  (derived)")})
		}
		facts = append(facts, fact)
	}
	for _, v := range d.Variables {
		vars = append(vars, pp.Textf("?%s in %s", v.Name, v.Domain))
	}
	for _, f := range d.Formulas {
		formulas = append(formulas, pp.Textf("@%s: %s", f.Name, f.Text))
	}

	s.print(pp.Lines([]pp.Doc{
		pp.Text(d.Name),
		section("concepts:", concepts),
		section("predicates:", predicates),
		section("facts:", facts),
		section("variables:", vars),
		section("formulas:", formulas),
		pp.Textf("conditions: %s", strings.Join(d.Conditions, ", ")),
		pp.Textf("goal: %s", d.Goal),
	}))
}

func (s *session) highlights() {
	if !s.needScenario() {
		return
	}
	hl := &param.Highlights{}
	if err := s.call(s.request(semnet.OpHighlights), hl); err != nil {
		return
	}
	s.print(pp.Lines([]pp.Doc{
		pp.Textf("nodes: %s", strings.Join(hl.Nodes, ", ")),
		pp.Textf("edges: %s", strings.Join(hl.Edges, ", ")),
	}))
}

func (s *session) compare(contexts []string) {
	if !s.needScenario() {
		return
	}
	req := s.request(semnet.OpCompare)
	req.Contexts = contexts
	cmp := &param.Comparison{}
	if err := s.call(req, cmp); err != nil {
		return
	}
	if len(cmp.Diff) == 0 {
		fmt.Fprintln(s.out, "no differences")
		return
	}
	var docs []pp.Doc
	for _, diff := range cmp.Diff {
		cells := make([]string, len(diff.Values))
		for idx, v := range diff.Values {
			cells[idx] = "-"
			if v != nil {
				cells[idx] = v.Text()
			}
		}
		docs = append(docs, pp.Textf("?%s: %s", diff.Variable, strings.Join(cells, " | ")))
	}
	s.print(pp.Lines(docs))
}

func (s *session) evaluate(raw string) {
	if !s.needScenario() {
		return
	}
	if raw == "" {
		s.errorf("usage: eval FORMULA")
		return
	}
	req := s.request(semnet.OpEvaluate)
	req.Formula = formulaRef(raw)
	res := &semnet.EvaluateResult{}
	if err := s.call(req, res); err != nil {
		return
	}
	fmt.Fprintf(s.out, "%s: %s\n", res.Formula, paint(res.Truth))
}

func (s *session) check() {
	if !s.needScenario() {
		return
	}
	report := &semnet.CheckReport{}
	if err := s.call(s.request(semnet.OpCheck), report); err != nil {
		return
	}
	ok := "false"
	if report.OK {
		ok = "true"
	}
	docs := []pp.Doc{pp.Textf("ok: %s", paint(ok))}
	for idx, cond := range report.PerCondition {
		docs = append(docs, pp.Indent(2, pp.Textf("cond[%d] %s: %s", idx, cond.Formula, paint(cond.Truth.String()))))
	}
	s.print(pp.Lines(docs))
}

func (s *session) forces(raw string) {
	if !s.needScenario() {
		return
	}
	req := s.request(semnet.OpForces)
	if raw != "" {
		req.Target = formulaRef(raw)
	}
	report := &semnet.ForcesReport{}
	if err := s.call(req, report); err != nil {
		return
	}
	lines := make([]pp.Doc, len(report.Explanation))
	for idx, line := range report.Explanation {
		lines[idx] = pp.Text(line)
	}
	s.print(pp.Lines([]pp.Doc{
		pp.Textf("result: %s", paint(report.Result)),
		pp.Indent(2, pp.Lines(lines)),
	}))
}

func (s *session) witness(raw string) {
	if !s.needScenario() {
		return
	}
	req := s.request(semnet.OpWitness)
	if word, rest, _ := strings.Cut(raw, " "); word == "true" || word == "false" {
		req.Want = word
		raw = strings.TrimSpace(rest)
	}
	if raw != "" {
		req.Target = formulaRef(raw)
	}
	res := &semnet.WitnessResult{}
	if err := s.call(req, res); err != nil {
		return
	}
	if !res.Found {
		fmt.Fprintln(s.out, "no witness")
		return
	}
	names := make([]string, 0, len(res.Values))
	for name := range res.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	docs := []pp.Doc{pp.Text("witness:")}
	for _, name := range names {
		docs = append(docs, pp.Indent(2, pp.Textf("?%s = %s", name, res.Values[name].Text())))
	}
	s.print(pp.Lines(docs))
}
