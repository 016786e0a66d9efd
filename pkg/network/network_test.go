package network

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vilterp/semnet/pkg/kleene"
)

func university(t *testing.T) *Network {
	n := New()
	for _, id := range []string{"university", "dept_cs", "course_db", "course_ai", "ivanov", "petrov"} {
		require.NoError(t, n.AddConcept(&Concept{ID: id}))
	}
	for _, name := range []string{"belongs_to", "teaches", "enrolled_in", "works_at", "studies_at"} {
		require.NoError(t, n.AddPredicate(&Predicate{Name: name, Arity: 2}))
	}
	facts := [][3]string{
		{"belongs_to", "dept_cs", "university"},
		{"belongs_to", "course_db", "dept_cs"},
		{"belongs_to", "course_ai", "dept_cs"},
		{"works_at", "ivanov", "dept_cs"},
		{"teaches", "ivanov", "course_db"},
		{"studies_at", "petrov", "dept_cs"},
		{"enrolled_in", "petrov", "course_db"},
	}
	for _, f := range facts {
		_, err := n.Assert(f[0], NewConceptRef(f[1]), NewConceptRef(f[2]))
		require.NoError(t, err)
	}
	return n
}

func TestFactHolds(t *testing.T) {
	n := university(t)

	testCases := []struct {
		predicate string
		args      []Value
		expected  kleene.Truth
	}{
		{"teaches", []Value{NewConceptRef("ivanov"), NewConceptRef("course_db")}, kleene.True},
		{"teaches", []Value{NewConceptRef("ivanov"), NewConceptRef("course_ai")}, kleene.False},
		{"teaches", []Value{NewConceptRef("petrov"), NewConceptRef("course_db")}, kleene.False},
		// Strings naming concepts match concept arguments.
		{"teaches", []Value{NewString("ivanov"), NewString("course_db")}, kleene.True},
		// A concept that doesn't exist makes the query unknown.
		{"teaches", []Value{NewConceptRef("sidorov"), NewConceptRef("course_db")}, kleene.Unknown},
		{"teaches", []Value{NewNumber(1), NewConceptRef("course_db")}, kleene.False},
	}

	for idx, testCase := range testCases {
		actual := n.FactHolds(testCase.predicate, testCase.args)
		if actual != testCase.expected {
			t.Errorf("case %d: expected %v; got %v", idx, testCase.expected, actual)
		}
	}
}

func TestAssertErrors(t *testing.T) {
	n := university(t)

	_, err := n.Assert("likes", NewConceptRef("ivanov"))
	require.IsType(t, &UnknownPredicateError{}, err)

	_, err = n.Assert("teaches", NewConceptRef("ivanov"))
	require.Equal(t, &ArityError{Predicate: "teaches", Wanted: 2, Got: 1}, err)

	_, err = n.Assert("teaches", NewConceptRef("sidorov"), NewConceptRef("course_db"))
	require.Equal(t, &UnknownConceptError{ID: "sidorov"}, err)

	require.IsType(t, &DuplicateConceptError{}, n.AddConcept(&Concept{ID: "petrov"}))
	require.IsType(t, &DuplicatePredicateError{}, n.AddPredicate(&Predicate{Name: "teaches", Arity: 2}))
	require.IsType(t, &InvalidPredicateError{}, n.AddPredicate(&Predicate{Name: "bad", Arity: 0}))
	require.IsType(t, &InvalidPredicateError{}, n.AddPredicate(&Predicate{Name: "bad", Arity: 2, Roles: []string{"x"}}))
	require.IsType(t, &InvalidConceptError{}, n.AddConcept(&Concept{}))
}

func TestLiteralArgs(t *testing.T) {
	n := New()
	require.NoError(t, n.AddConcept(&Concept{ID: "alice"}))
	require.NoError(t, n.AddPredicate(&Predicate{Name: "age", Arity: 2, Roles: []string{"who", "years"}}))
	fact, err := n.Assert("age", NewConceptRef("alice"), NewNumber(30))
	require.NoError(t, err)
	require.Equal(t, "age__alice_30", fact.ID())
	require.Equal(t, "age(alice, 30)", fact.String())

	require.Equal(t, kleene.True, n.FactHolds("age", []Value{NewConceptRef("alice"), NewNumber(30.0)}))
	require.Equal(t, kleene.False, n.FactHolds("age", []Value{NewConceptRef("alice"), NewString("30")}))
}

func TestDerivedKind(t *testing.T) {
	n := university(t)

	fact, err := n.AssertDerived("teaches", NewConceptRef("ivanov"), NewConceptRef("course_db"))
	require.NoError(t, err)
	require.Equal(t, Asserted, fact.Kind)

	fact, err = n.AssertDerived("teaches", NewConceptRef("ivanov"), NewConceptRef("course_ai"))
	require.NoError(t, err)
	require.Equal(t, Derived, fact.Kind)
	require.Len(t, n.Facts("teaches"), 2)

	// Asserting a derived fact promotes it.
	fact, err = n.Assert("teaches", NewConceptRef("ivanov"), NewConceptRef("course_ai"))
	require.NoError(t, err)
	require.Equal(t, Asserted, fact.Kind)
}

func TestRemoveConceptCascades(t *testing.T) {
	n := university(t)

	removed, err := n.RemoveConcept("petrov")
	require.NoError(t, err)
	require.Len(t, removed, 2)
	require.False(t, n.ConceptExists("petrov"))
	require.Len(t, n.Facts(""), 5)
	require.Empty(t, n.Validate())

	_, err = n.RemoveConcept("petrov")
	require.IsType(t, &UnknownConceptError{}, err)
}

func TestRemovePredicateCascades(t *testing.T) {
	n := university(t)

	removed, err := n.RemovePredicate("belongs_to")
	require.NoError(t, err)
	require.Len(t, removed, 3)
	require.Len(t, n.Facts(""), 4)
	_, err = n.PredicateArity("belongs_to")
	require.IsType(t, &UnknownPredicateError{}, err)
}

func TestRemoveFact(t *testing.T) {
	n := university(t)

	require.NoError(t, n.RemoveFact("teaches", NewConceptRef("ivanov"), NewConceptRef("course_db")))
	require.Equal(t, kleene.False, n.FactHolds("teaches", []Value{NewConceptRef("ivanov"), NewConceptRef("course_db")}))

	err := n.RemoveFact("teaches", NewConceptRef("ivanov"), NewConceptRef("course_db"))
	require.Equal(t, &NoSuchFactError{FactID: "teaches__ivanov_course_db"}, err)
}

func TestReplace(t *testing.T) {
	n := university(t)

	require.NoError(t, n.ReplaceConcept(&Concept{ID: "petrov", Label: "Student Petrov"}))
	c, err := n.Concept("petrov")
	require.NoError(t, err)
	require.Equal(t, "Student Petrov", c.Label)
	require.IsType(t, &UnknownConceptError{}, n.ReplaceConcept(&Concept{ID: "nobody"}))

	require.NoError(t, n.ReplacePredicate(&Predicate{Name: "teaches", Arity: 2, Roles: []string{"teacher", "course"}}))
	err = n.ReplacePredicate(&Predicate{Name: "teaches", Arity: 3})
	require.Equal(t, &ArityChangeError{Predicate: "teaches", From: 2, To: 3, Facts: 1}, err)
}

func TestCloneIsIndependent(t *testing.T) {
	n := university(t)
	clone := n.Clone()

	_, err := clone.RemoveConcept("ivanov")
	require.NoError(t, err)
	require.True(t, n.ConceptExists("ivanov"))
	require.Len(t, n.Facts(""), 7)
	require.Len(t, clone.Facts(""), 5)
}

func TestNeighborhood(t *testing.T) {
	n := university(t)

	concepts, facts := n.Neighborhood([]string{"course_db", "nonexistent"})
	require.Equal(t, []string{"course_db", "dept_cs", "ivanov", "petrov"}, concepts)
	require.Equal(t, []string{
		"belongs_to__course_db_dept_cs",
		"enrolled_in__petrov_course_db",
		"teaches__ivanov_course_db",
	}, facts)
}

func TestWithTag(t *testing.T) {
	c := &Concept{ID: "petrov", Tags: []string{"person"}}
	tagged := c.WithTag("student", "person")
	require.Equal(t, []string{"person", "student"}, tagged.Tags)
	require.Equal(t, []string{"person"}, c.Tags)
	require.True(t, tagged.HasTag("student"))
}

func TestValueEquality(t *testing.T) {
	require.True(t, NewConceptRef("red").Equal(NewString("red")))
	require.False(t, NewString("3").Equal(NewNumber(3)))
	require.True(t, NewNumber(3).Equal(NewNumber(3.0)))
	require.Equal(t, `"red"`, NewString("red").String())
	require.Equal(t, "red", NewConceptRef("red").String())
	require.Equal(t, "2.5", NewNumber(2.5).String())
}
