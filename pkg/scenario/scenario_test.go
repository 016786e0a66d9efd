package scenario

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
)

func c(id string) network.Value { return network.NewConceptRef(id) }

func TestLoadDir(t *testing.T) {
	catalog, err := LoadDir("../../scenarios")
	require.NoError(t, err)
	require.Equal(t, []string{"colors", "fast_smith", "lab1_university"}, catalog.Names())

	_, err = catalog.Get("fishing")
	require.IsType(t, &NoSuchScenarioError{}, err)
}

func TestLab1(t *testing.T) {
	s, err := Load("../../scenarios/lab1_university.yaml")
	require.NoError(t, err)

	net := s.Network
	require.Len(t, net.Concepts(), 6)
	require.Equal(t, kleene.True, net.FactHolds("teaches", []network.Value{c("ivanov"), c("course_db")}))
	require.Equal(t, kleene.False, net.FactHolds("teaches", []network.Value{c("petrov"), c("course_db")}))

	// Derived by the rules.
	require.Equal(t, kleene.True, net.FactHolds("taught_by", []network.Value{c("petrov"), c("ivanov")}))
	require.Equal(t, kleene.True, net.FactHolds("member_of", []network.Value{c("ivanov"), c("university")}))
	require.Equal(t, kleene.True, net.FactHolds("member_of", []network.Value{c("petrov"), c("university")}))
	require.Len(t, net.Facts("member_of"), 2)
	for _, f := range net.Facts("member_of") {
		require.Equal(t, network.Derived, f.Kind)
	}

	require.Equal(t, []string{"student", "course", "teacher"}, s.Variables.Names())
	require.Equal(t, []string{"default", "ai"}, s.ContextNames())

	ctx := s.DefaultContext()
	require.Equal(t, "default", ctx.Name)
	course, ok := ctx.Get("course")
	require.True(t, ok)
	require.Equal(t, c("course_db"), course)
	require.Equal(t, []string{"student", "teacher"}, ctx.Status(s.Variables).Free)

	require.Equal(t, []string{"cond_1", "cond_2", "cond_3"}, s.ConditionNames())
	require.Len(t, s.Conditions(), 3)
	require.Equal(t, "not teaches(petrov, course_db)", s.Conditions()[2].String())

	name, goal := s.Goal()
	require.Equal(t, "goal", name)
	require.Equal(t,
		"enrolled_in(petrov, course_db) and studies_at(petrov, dept_cs) and teaches(ivanov, course_db)",
		goal.String(),
	)
}

func TestContextsAreCopies(t *testing.T) {
	s, err := Load("../../scenarios/colors.yaml")
	require.NoError(t, err)

	ctx, err := s.Context("sky")
	require.NoError(t, err)
	require.NoError(t, ctx.Set(s.Variables, "color", c("blue")))

	again, err := s.Context("sky")
	require.NoError(t, err)
	require.False(t, again.IsAssigned("color"))

	_, err = s.Context("night")
	require.IsType(t, &NoSuchContextError{}, err)
	_, err = s.Formula("is_blue")
	require.IsType(t, &NoSuchFormulaError{}, err)
}

func TestLiteralArgs(t *testing.T) {
	s, err := Load("../../scenarios/fast_smith.yaml")
	require.NoError(t, err)

	// "j" is a label, J is a concept.
	require.Equal(t, kleene.True, s.Network.FactHolds("acts_like", []network.Value{c("A"), network.NewString("j")}))
	fact := s.Network.Facts("acts_like")[0]
	require.Equal(t, network.StringValue, fact.Args[1].Kind)
	require.Equal(t, network.ConceptValue, s.Network.Facts("has_name")[0].Args[1].Kind)

	label, ok := s.DefaultContext().Get("label")
	require.True(t, ok)
	require.Equal(t, network.NewString("h"), label)
}

func TestDomains(t *testing.T) {
	s, err := Parse([]byte(`
name: domains
concepts: [{id: a}]
variables:
  - {name: hours, type: number, domain: {range: {min: 0, max: 4, step: 2}}}
  - {name: ratio, domain: {range: {min: 0, max: 1, inclusive: false}}}
  - {name: small, domain: {predicate: {name: small, values: [1, 2, 3], filter: "value < 5"}}}
  - {name: mixed, domain: {enum: [a, b, 7]}}
contexts:
  - {name: some, values: {hours: 2, mixed: b}}
`))
	require.NoError(t, err)

	hours, err := s.Variables.DomainOf("hours")
	require.NoError(t, err)
	values, err := hours.Enumerate()
	require.NoError(t, err)
	require.Equal(t, []network.Value{network.NewNumber(0), network.NewNumber(2), network.NewNumber(4)}, values)

	ratio, err := s.Variables.DomainOf("ratio")
	require.NoError(t, err)
	require.False(t, ratio.Contains(network.NewNumber(1)))
	_, err = ratio.Size()
	require.IsType(t, &param.UnboundedDomainError{}, errors.Cause(err))

	small, err := s.Variables.DomainOf("small")
	require.NoError(t, err)
	require.True(t, small.Contains(network.NewNumber(2)))

	mixed, err := s.Variables.DomainOf("mixed")
	require.NoError(t, err)
	values, err = mixed.Enumerate()
	require.NoError(t, err)
	require.Equal(t, []network.Value{c("a"), network.NewString("b"), network.NewNumber(7)}, values)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		yaml string
		want interface{}
	}{
		{"name: x\nbogus: 1\n", nil},
		{"description: no name\n", nil},
		{"name: x\nvariables: [{name: v, domain: {enum: [1], range: {min: 0, max: 1}}}]\n", &param.InvalidDomainError{}},
		{"name: x\nvariables: [{name: v, domain: {}}]\n", &param.InvalidDomainError{}},
		{"name: x\nvariables: [{name: v, domain: {range: {min: 2, max: 1}}}]\n", nil},
		{"name: x\nformulas: [{name: f, text: 'likes(a, b)'}]\n", &network.UnknownPredicateError{}},
		{"name: x\nformulas: [{name: f, text: 'p(a'}]\n", nil},
		{"name: x\nformulas: [{name: f, text: 'true'}]\nconditions: [g]\n", &NoSuchFormulaError{}},
		{"name: x\nformulas: [{name: f, text: 'true'}]\ngoal: g\n", &NoSuchFormulaError{}},
		{"name: x\nformulas: [{name: f, text: 'true'}, {name: f, text: 'false'}]\n", &DuplicateNameError{}},
		{"name: x\nvariables: [{name: v, domain: {enum: [1]}}]\ncontexts: [{name: c, values: {v: 2}}]\n", &param.InvalidDomainAssignmentError{}},
		{"name: x\ncontexts: [{name: c, values: {v: 2}}]\n", &param.UnknownVariableError{}},
		{"name: x\nconcepts: [{id: a}, {id: a}]\n", &network.DuplicateConceptError{}},
		{"name: x\npredicates: [{name: p, arity: 1}]\nfacts: [{predicate: p, args: [a, b]}]\n", &network.ArityError{}},
		{"name: x\nfacts: [{predicate: p, args: [true]}]\n", nil},
	}

	for idx, testCase := range testCases {
		_, err := Parse([]byte(testCase.yaml))
		require.Error(t, err, "case %d", idx)
		if testCase.want != nil {
			require.IsType(t, testCase.want, errors.Cause(err), "case %d: %v", idx, err)
		}
	}
}

func TestDuplicateScenario(t *testing.T) {
	a, err := Parse([]byte("name: same\n"))
	require.NoError(t, err)
	b, err := Parse([]byte("name: same\n"))
	require.NoError(t, err)
	_, err = NewCatalog(a, b)
	require.IsType(t, &DuplicateNameError{}, err)
}
