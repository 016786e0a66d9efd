package semnet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vilterp/semnet/pkg/scenario"
)

const scenarioDir = "../scenarios"

func newInProcess(t *testing.T) *Server {
	catalog, err := scenario.LoadDir(scenarioDir)
	require.NoError(t, err)
	return NewServer(catalog, DefaultConfig())
}

// requestCase sends req and checks either the error kind or, decoding
// the result into a generic value, the listed top-level fields.
type requestCase struct {
	req   Request
	kind  string
	check func(t *testing.T, idx int, result map[string]interface{})
}

func field(want interface{}, path ...string) func(*testing.T, int, map[string]interface{}) {
	return func(t *testing.T, idx int, result map[string]interface{}) {
		var cur interface{} = result
		for _, key := range path {
			m, ok := cur.(map[string]interface{})
			require.True(t, ok, "case %d: %v is not an object", idx, cur)
			cur = m[key]
		}
		require.Equal(t, want, cur, "case %d: %v", idx, path)
	}
}

func runRequestCases(t *testing.T, caller Caller, cases []requestCase) {
	for idx, testCase := range cases {
		req := testCase.req
		resp, err := caller.Do(context.Background(), &req)
		require.NoError(t, err, "case %d", idx)
		if testCase.kind != "" {
			require.Equal(t, testCase.kind, resp.Kind, "case %d: %s", idx, resp.Error)
			continue
		}
		require.Empty(t, resp.Error, "case %d", idx)
		result := map[string]interface{}{}
		require.NoError(t, json.Unmarshal(resp.Result, &result), "case %d", idx)
		if testCase.check != nil {
			testCase.check(t, idx, result)
		}
	}
}

func TestRequests(t *testing.T) {
	s := newInProcess(t)
	goalRef := &FormulaRef{Name: "is_red"}

	runRequestCases(t, s, []requestCase{
		// Forcing.
		{req: Request{Op: OpForces, Scenario: "lab1_university"}, check: field("true", "result")},
		{req: Request{Op: OpForces, Scenario: "fast_smith"}, check: field("true", "result")},
		{req: Request{Op: OpForces, Scenario: "colors"}, check: field("unknown", "result")},
		{req: Request{Op: OpForces, Scenario: "colors", Context: "sky"}, check: field("false", "result")},
		{req: Request{Op: OpForces, Scenario: "colors", Context: "apple"}, check: field("true", "result")},
		{
			req:   Request{Op: OpForces, Scenario: "colors", Target: &FormulaRef{Name: "apple_is_red"}},
			check: field("true", "result"),
		},
		{
			req: Request{
				Op:         OpForces,
				Scenario:   "colors",
				Conditions: []*FormulaRef{{Text: "?color = red"}, {Text: "?color = blue"}},
				Target:     goalRef,
			},
			check: field("vacuous", "result"),
		},
		{
			req:   Request{Op: OpForces, Scenario: "colors", Conditions: []*FormulaRef{}},
			check: field(float64(6), "total"),
		},
		{req: Request{Op: OpForces, Scenario: "colors", MaxCompletions: 2}, kind: "TooManyCompletionsError"},

		// Evaluation and checks.
		{
			req:   Request{Op: OpEvaluate, Scenario: "colors", Context: "apple", Assign: map[string]interface{}{"color": "red"}, Formula: goalRef},
			check: field("true", "truth"),
		},
		{
			req:   Request{Op: OpEvaluate, Scenario: "colors", Formula: &FormulaRef{Text: "color_of(sky, ?color)"}},
			check: field("unknown", "truth"),
		},
		{
			req:   Request{Op: OpEvaluate, Scenario: "colors", Formula: &FormulaRef{Node: json.RawMessage(`{"type":"FactAtom","predicate":"color_of","args":[{"kind":"concept","id":"sky"},{"kind":"concept","id":"blue"}]}`)}},
			check: field("true", "truth"),
		},
		{req: Request{Op: OpCheck, Scenario: "lab1_university"}, check: field(true, "ok")},
		{
			req:   Request{Op: OpCheck, Scenario: "colors", Context: "sky", Assign: map[string]interface{}{"color": "red"}},
			check: field(false, "ok"),
		},
		{
			req:   Request{Op: OpValidate, Scenario: "colors", Formula: &FormulaRef{Text: "color_of(moon, ?color)"}},
			check: field([]interface{}{"moon"}, "dangling"),
		},

		// Contexts.
		{
			req:   Request{Op: OpStatus, Scenario: "lab1_university"},
			check: field([]interface{}{"student", "teacher"}, "free"),
		},
		{
			req:   Request{Op: OpStatus, Scenario: "lab1_university", Unassign: []string{"course"}},
			check: field(float64(0), "assigned"),
		},
		{
			req:   Request{Op: OpHighlights, Scenario: "lab1_university"},
			check: field([]interface{}{"course_db", "ivanov", "petrov"}, "nodes"),
		},
		{
			req:   Request{Op: OpWitness, Scenario: "colors", Want: "false"},
			check: field(map[string]interface{}{"thing": "sky", "color": "blue"}, "values"),
		},
		{
			req:   Request{Op: OpWitness, Scenario: "colors", Context: "sky"},
			check: field(false, "found"),
		},
		{
			req:   Request{Op: OpCompare, Scenario: "colors", Contexts: []string{"sky", "apple"}},
			check: field([]interface{}{"sky", "apple"}, "contexts"),
		},
		{req: Request{Op: OpDescribe, Scenario: "fast_smith"}, check: field("goal", "goal")},

		// Errors.
		{req: Request{Op: OpForces, Scenario: "fishing"}, kind: "NotFound"},
		{req: Request{Op: OpForces, Scenario: "colors", Context: "night"}, kind: "NotFound"},
		{req: Request{Op: "explode", Scenario: "colors"}, kind: "BadRequest"},
		{req: Request{Op: OpEvaluate, Scenario: "colors"}, kind: "BadRequest"},
		{req: Request{Op: OpEvaluate, Scenario: "colors", Formula: &FormulaRef{Name: "is_red", Text: "true"}}, kind: "BadRequest"},
		{req: Request{Op: OpEvaluate, Scenario: "colors", Formula: &FormulaRef{Text: "color_of(sky)"}}, kind: "ArityError"},
		{req: Request{Op: OpEvaluate, Scenario: "colors", Formula: &FormulaRef{Text: "?hue = red"}}, kind: "UnknownVariableError"},
		{req: Request{Op: OpEvaluate, Scenario: "colors", Formula: &FormulaRef{Text: "?color ="}}, kind: "ParseError"},
		{req: Request{Op: OpEvaluate, Scenario: "colors", Formula: &FormulaRef{Node: json.RawMessage(`{"type":"Xor"}`)}}, kind: "EncodingError"},
		{
			req:  Request{Op: OpCheck, Scenario: "colors", Assign: map[string]interface{}{"color": "purple"}},
			kind: "InvalidDomainAssignment",
		},
		{req: Request{Op: OpWitness, Scenario: "colors", Want: "unknown"}, kind: "BadRequest"},
		{req: Request{Op: OpCompare, Scenario: "colors", Contexts: []string{"sky"}}, kind: "BadRequest"},
	})
}

func TestScenariosOp(t *testing.T) {
	s := newInProcess(t)
	var summaries []ScenarioSummary
	require.NoError(t, Call(context.Background(), s, &Request{Op: OpScenarios}, &summaries))
	require.Len(t, summaries, 3)
	require.Equal(t, "colors", summaries[0].Name)
	require.Equal(t, []string{"empty", "sky", "apple"}, summaries[0].Contexts)
	require.Equal(t, "is_red", summaries[0].Goal)
}

func TestDescribe(t *testing.T) {
	s := newInProcess(t)
	d := &Description{}
	require.NoError(t, Call(context.Background(), s, &Request{Op: OpDescribe, Scenario: "lab1_university"}, d))
	require.Len(t, d.Concepts, 6)
	require.Len(t, d.Variables, 3)
	require.Equal(t, "Enum(course_db, course_ai)", d.Variables[1].Domain)

	derived := 0
	for _, f := range d.Facts {
		if f.Derived {
			derived++
		}
	}
	// taught_by once, member_of twice.
	require.Equal(t, 3, derived)
	require.Len(t, d.Facts, 10)
}

func TestCallReportsRemoteErrors(t *testing.T) {
	s := newInProcess(t)
	err := Call(context.Background(), s, &Request{Op: OpDescribe, Scenario: "nope"}, nil)
	require.Equal(t, &RemoteError{Kind: "NotFound", Message: "no such scenario: nope"}, err)
}

func TestWebsocket(t *testing.T) {
	ts, err := NewTestServer(scenarioDir, nil)
	require.NoError(t, err)
	defer ts.Close()

	runRequestCases(t, ts.Client, []requestCase{
		{req: Request{Op: OpForces, Scenario: "lab1_university"}, check: field("true", "result")},
		{req: Request{Op: OpForces, Scenario: "nope"}, kind: "NotFound"},
	})

	// Concurrent requests on one connection are matched up by id.
	var wg sync.WaitGroup
	contexts := []string{"sky", "apple", "empty"}
	want := []string{"false", "true", "unknown"}
	results := make([]string, len(contexts))
	errs := make([]error, len(contexts))
	for idx := range contexts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			report := &ForcesReport{}
			errs[idx] = Call(context.Background(), ts.Client, &Request{
				Op: OpForces, Scenario: "colors", Context: contexts[idx],
			}, report)
			results[idx] = report.Result
		}(idx)
	}
	wg.Wait()
	for idx := range contexts {
		require.NoError(t, errs[idx], "case %d", idx)
	}
	require.Equal(t, want, results)

	resp, err := http.Get(ts.HTTP.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(body), `requests_total{kind="ok",op="forces"} 4`)
	require.Contains(t, string(body), `forcing_results_total{result="unknown"} 1`)
	require.Contains(t, string(body), "open_connections 1")

	resp, err = http.Get(ts.HTTP.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/semnet.yaml"
	require.NoError(t, writeFile(path, "port: 9100\nmax_completions: 500\nlog_level: debug\n"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9100", cfg.Addr())
	require.Equal(t, 500, cfg.MaxCompletions)
	require.Equal(t, "scenarios", cfg.ScenarioDir)

	require.NoError(t, writeFile(path, "log_level: loud\n"))
	_, err = LoadConfig(path)
	require.Error(t, err)

	require.NoError(t, writeFile(path, "colour: blue\n"))
	_, err = LoadConfig(path)
	require.Error(t, err)
}

func writeFile(path string, contents string) error {
	return os.WriteFile(path, []byte(contents), 0644)
}
