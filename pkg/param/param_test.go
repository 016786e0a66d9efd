package param

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vilterp/semnet/pkg/network"
)

func c(id string) network.Value  { return network.NewConceptRef(id) }
func s(str string) network.Value { return network.NewString(str) }
func n(f float64) network.Value  { return network.NewNumber(f) }

func TestEnumDomain(t *testing.T) {
	d := NewEnumDomain(c("red"), c("green"))

	require.True(t, d.Contains(c("red")))
	require.True(t, d.Contains(s("red")))
	require.False(t, d.Contains(c("blue")))
	require.Equal(t, "Enum(red, green)", d.Describe())

	values, err := d.Enumerate()
	require.NoError(t, err)
	require.Equal(t, []network.Value{c("red"), c("green")}, values)
}

func TestRangeDomain(t *testing.T) {
	testCases := []struct {
		domain   RangeDomain
		contains []network.Value
		excludes []network.Value
		values   []float64
		err      string
	}{
		{
			domain:   RangeDomain{Min: 0, Max: 4, Inclusive: true, Step: 2},
			contains: []network.Value{n(0), n(4), n(1.5)},
			excludes: []network.Value{n(-1), n(4.5), s("abc"), s("3")},
			values:   []float64{0, 2, 4},
		},
		{
			domain:   RangeDomain{Min: 0, Max: 4, Inclusive: false, Step: 1},
			contains: []network.Value{n(1), n(3.9)},
			excludes: []network.Value{n(0), n(4)},
			values:   []float64{1, 2, 3},
		},
		{
			domain:   RangeDomain{Min: 0, Max: 0.3, Inclusive: true, Step: 0.1},
			contains: []network.Value{n(0.3)},
			values:   []float64{0, 0.1, 0.2, 0.3},
		},
		{
			domain: RangeDomain{Min: 0.1, Max: 0.7, Inclusive: false, Step: 0.2},
			values: []float64{0.3, 0.5},
		},
		{
			domain: RangeDomain{Min: 1, Max: 0, Inclusive: true, Step: 1},
			values: []float64{},
		},
		{
			domain:   RangeDomain{Min: 0, Max: 1, Inclusive: true},
			contains: []network.Value{n(0.5)},
			err:      "domain cannot be enumerated: Range[0, 1]",
		},
	}

	for idx, testCase := range testCases {
		t.Run(fmt.Sprintf("%d", idx), func(t *testing.T) {
			for _, v := range testCase.contains {
				require.True(t, testCase.domain.Contains(v), "should contain %s", v)
			}
			for _, v := range testCase.excludes {
				require.False(t, testCase.domain.Contains(v), "should not contain %s", v)
			}
			values, err := testCase.domain.Enumerate()
			if testCase.err != "" {
				require.EqualError(t, err, testCase.err)
				return
			}
			require.NoError(t, err)
			floats := make([]float64, len(values))
			for i, v := range values {
				floats[i] = v.Num
				require.True(t, testCase.domain.Contains(v), "enumerated %s", v)
			}
			require.Equal(t, testCase.values, floats)

			size, err := testCase.domain.Size()
			require.NoError(t, err)
			require.Equal(t, len(testCase.values), size)
		})
	}
}

func TestRangeRejectsNumericStrings(t *testing.T) {
	vars, err := NewVariables(NewVariable("n", &RangeDomain{Min: 1, Max: 3, Inclusive: true, Step: 1}))
	require.NoError(t, err)
	ctx := NewContext("c")

	err = ctx.Set(vars, "n", s("3"))
	require.IsType(t, &InvalidDomainAssignmentError{}, errors.Cause(err))
	require.False(t, ctx.IsAssigned("n"))

	require.NoError(t, ctx.Set(vars, "n", n(3)))
}

func TestPredicateDomain(t *testing.T) {
	d, err := NewPredicateDomain("small", []network.Value{n(0), n(2), n(4)}, "value >= 0 && value < 5")
	require.NoError(t, err)
	require.True(t, d.Contains(n(2)))
	require.False(t, d.Contains(n(3)), "not listed")
	require.False(t, d.Contains(n(-1)))
	require.Equal(t, "small{value >= 0 && value < 5}", d.Describe())

	size, err := d.Size()
	require.NoError(t, err)
	require.Equal(t, 3, size)

	open, err := NewPredicateDomain("short_name", nil, `len(value) <= 3`)
	require.NoError(t, err)
	require.True(t, open.Contains(s("bob")))
	require.False(t, open.Contains(s("alice")))
	_, err = open.Enumerate()
	require.IsType(t, &UnboundedDomainError{}, err)

	_, err = NewPredicateDomain("bad", []network.Value{n(7)}, "value < 5")
	require.IsType(t, &InvalidDomainError{}, err)

	_, err = NewPredicateDomain("syntax", nil, "value ==")
	require.IsType(t, &InvalidDomainError{}, err)
}

func colorVars(t *testing.T) *Variables {
	vars, err := NewVariables(
		NewVariable("color", NewEnumDomain(c("red"), c("green"))),
		NewVariable("size", &RangeDomain{Min: 1, Max: 3, Inclusive: true, Step: 1}),
	)
	require.NoError(t, err)
	return vars
}

func TestVariables(t *testing.T) {
	vars := colorVars(t)
	require.Equal(t, []string{"color", "size"}, vars.Names())
	require.Equal(t, 2, vars.Len())

	_, err := vars.Lookup("shape")
	require.Equal(t, &UnknownVariableError{Name: "shape"}, err)

	err = vars.Add(NewVariable("color", NewEnumDomain()))
	require.Equal(t, &DuplicateVariableError{Name: "color"}, err)

	err = vars.Add(NewVariable("", NewEnumDomain()))
	require.IsType(t, &InvalidVariableError{}, err)
}

func TestContextSet(t *testing.T) {
	vars := colorVars(t)
	ctx := NewContext("c1")

	require.NoError(t, ctx.Set(vars, "color", c("red")))
	err := ctx.Set(vars, "color", c("blue"))
	require.IsType(t, &InvalidDomainAssignmentError{}, err)
	require.EqualError(t, err, "value blue is not in the domain of ?color (Enum(red, green))")

	err = ctx.Set(vars, "shape", c("round"))
	require.IsType(t, &UnknownVariableError{}, err)

	v, ok := ctx.Get("color")
	require.True(t, ok)
	require.Equal(t, c("red"), v)

	status := ctx.Status(vars)
	require.Equal(t, &Status{Assigned: 1, Total: 2, Complete: false, Free: []string{"size"}}, status)

	ctx.Unset("color")
	require.False(t, ctx.IsAssigned("color"))
}

func TestContextExtendDoesNotMutate(t *testing.T) {
	vars := colorVars(t)
	ctx := NewContext("base")
	require.NoError(t, ctx.Set(vars, "color", c("red")))

	extended, err := ctx.Extend(vars, map[string]network.Value{"size": n(2)})
	require.NoError(t, err)
	require.Equal(t, 2, extended.Len())
	require.Equal(t, 1, ctx.Len())
	require.True(t, extended.Status(vars).Complete)

	_, err = ctx.Extend(vars, map[string]network.Value{"size": n(7)})
	require.IsType(t, &InvalidDomainAssignmentError{}, err)
}

func TestContextValidate(t *testing.T) {
	vars := colorVars(t)

	ctx := NewContext("bad")
	ctx.SetUnchecked("color", c("blue"))
	err := ctx.Validate(vars)
	require.IsType(t, &ContextIntegrityError{}, err)

	ctx = NewContext("stale")
	ctx.SetUnchecked("shape", c("round"))
	err = ctx.Validate(vars)
	require.EqualError(t, err, "context stale: ?shape = round: variable is not declared")

	// Undeclared entries don't count as assigned.
	require.Equal(t, 0, ctx.Status(vars).Assigned)
}

func TestCompare(t *testing.T) {
	vars := colorVars(t)
	a := NewContext("a")
	require.NoError(t, a.Set(vars, "color", c("red")))
	require.NoError(t, a.Set(vars, "size", n(1)))
	b := NewContext("b")
	require.NoError(t, b.Set(vars, "color", c("red")))

	cmp, err := Compare(a, b)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, cmp.Contexts)
	require.Len(t, cmp.Diff, 1)
	require.Equal(t, "size", cmp.Diff[0].Variable)
	require.Equal(t, n(1), *cmp.Diff[0].Values[0])
	require.Nil(t, cmp.Diff[0].Values[1])

	_, err = Compare(a)
	require.IsType(t, &TooFewContextsError{}, err)
}

func TestHighlights(t *testing.T) {
	net := network.New()
	for _, id := range []string{"alice", "bob", "carol"} {
		require.NoError(t, net.AddConcept(&network.Concept{ID: id}))
	}
	require.NoError(t, net.AddPredicate(&network.Predicate{Name: "likes", Arity: 2}))
	_, err := net.Assert("likes", c("alice"), c("bob"))
	require.NoError(t, err)
	_, err = net.Assert("likes", c("bob"), c("carol"))
	require.NoError(t, err)

	vars, err := NewVariables(
		NewVariable("who", NewEnumDomain(c("alice"), c("bob"), c("dave"))),
		NewVariable("n", &RangeDomain{Min: 0, Max: 1, Inclusive: true}),
	)
	require.NoError(t, err)

	ctx := NewContext("h")
	require.NoError(t, ctx.Set(vars, "who", c("alice")))
	require.NoError(t, ctx.Set(vars, "n", n(1)))
	require.Equal(t, &Highlights{
		Nodes: []string{"alice", "bob"},
		Edges: []string{"likes__alice_bob"},
	}, ctx.Highlights(net))

	require.NoError(t, ctx.Set(vars, "who", c("dave")))
	require.Equal(t, &Highlights{Nodes: []string{}, Edges: []string{}}, ctx.Highlights(net))
}
