package derive

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/vilterp/semnet/pkg/kleene"
	"github.com/vilterp/semnet/pkg/network"
)

func c(id string) network.Value { return network.NewConceptRef(id) }

func department(t *testing.T) *network.Network {
	net := network.New()
	for _, id := range []string{"ivanov", "sidorov", "petrov", "dept_cs", "course_db"} {
		require.NoError(t, net.AddConcept(&network.Concept{ID: id}))
	}
	require.NoError(t, net.AddPredicate(&network.Predicate{Name: "works_at", Arity: 2}))
	require.NoError(t, net.AddPredicate(&network.Predicate{Name: "teaches", Arity: 2}))
	require.NoError(t, net.AddPredicate(&network.Predicate{Name: "belongs_to", Arity: 2}))
	require.NoError(t, net.AddPredicate(&network.Predicate{Name: "age", Arity: 2}))
	require.NoError(t, net.AddPredicate(&network.Predicate{Name: "Unusual", Arity: 1}))

	assert := func(pred string, args ...network.Value) {
		_, err := net.Assert(pred, args...)
		require.NoError(t, err)
	}
	assert("works_at", c("ivanov"), c("dept_cs"))
	assert("works_at", c("sidorov"), c("dept_cs"))
	assert("teaches", c("ivanov"), c("course_db"))
	assert("belongs_to", c("course_db"), c("dept_cs"))
	assert("age", c("petrov"), network.NewNumber(20))
	assert("age", c("ivanov"), network.NewNumber(45.5))
	assert("Unusual", c("petrov"))
	return net
}

const rules = `
colleague(X, Y) :- works_at(X, D), works_at(Y, D), X != Y.
teaches_in(T, D) :- teaches(T, C), belongs_to(C, D).
age_of(P, N) :- age(P, N).
`

func TestDerive(t *testing.T) {
	net := department(t)
	r, err := ParseRules(rules)
	require.NoError(t, err)

	facts, err := Derive(net, r)
	require.NoError(t, err)

	ids := make([]string, len(facts))
	for idx, f := range facts {
		ids[idx] = f.ID()
		require.Equal(t, network.Derived, f.Kind)
	}
	require.Equal(t, []string{
		"age_of__ivanov_45.5",
		"age_of__petrov_20",
		"colleague__ivanov_sidorov",
		"colleague__sidorov_ivanov",
		"teaches_in__ivanov_dept_cs",
	}, ids)
	require.Equal(t, network.ConceptValue, facts[2].Args[0].Kind)
	require.Equal(t, network.NewNumber(45.5), facts[0].Args[1])
}

func TestApply(t *testing.T) {
	net := department(t)
	r, err := ParseRules(rules)
	require.NoError(t, err)

	derived, err := Apply(net, r)
	require.NoError(t, err)

	arity, err := derived.PredicateArity("colleague")
	require.NoError(t, err)
	require.Equal(t, 2, arity)
	require.Equal(t, kleene.True, derived.FactHolds("colleague", []network.Value{c("ivanov"), c("sidorov")}))
	require.Equal(t, kleene.False, derived.FactHolds("colleague", []network.Value{c("ivanov"), c("ivanov")}))
	require.Equal(t, kleene.True, derived.FactHolds("teaches_in", []network.Value{c("ivanov"), c("dept_cs")}))

	// The input is untouched.
	_, err = net.PredicateArity("colleague")
	require.Error(t, err)
}

func TestDeriveIntoExistingPredicate(t *testing.T) {
	net := department(t)
	r, err := ParseRules(`works_at(P, D) :- teaches(P, C), belongs_to(C, D).`)
	require.NoError(t, err)

	facts, err := Derive(net, r)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	for _, f := range facts {
		// Both are already asserted in the network.
		require.Equal(t, network.Asserted, f.Kind)
	}

	derived, err := Apply(net, r)
	require.NoError(t, err)
	require.Len(t, derived.Facts("works_at"), 2)
}

func TestRuleErrors(t *testing.T) {
	_, err := ParseRules(`colleague(X, Y :- works_at(X, D).`)
	require.IsType(t, &RuleError{}, err)

	r, err := ParseRules(`ghost(X) :- haunts(X).`)
	require.NoError(t, err)
	_, err = Derive(department(t), r)
	require.IsType(t, &RuleError{}, err)
	require.Equal(t, "analysis", err.(*RuleError).Stage)

	// Heads may only name concepts the network has.
	r, err = ParseRules(`haunted(/ghost).`)
	require.NoError(t, err)
	_, err = Apply(department(t), r)
	require.IsType(t, &RuleError{}, err)
	require.Equal(t, "apply", err.(*RuleError).Stage)
	require.IsType(t, &network.UnknownConceptError{}, errors.Cause(err.(*RuleError).Err))
}
