// Package network holds the concepts, predicates and facts of a semantic
// network, and answers fact queries with three-valued results.
package network

import (
	"sort"
	"strings"

	"github.com/vilterp/semnet/pkg/kleene"
)

type Concept struct {
	ID    string
	Label string
	Tags  []string
}

// WithTag returns a copy of the concept with the given tags added.
func (c *Concept) WithTag(tags ...string) *Concept {
	out := &Concept{
		ID:    c.ID,
		Label: c.Label,
		Tags:  make([]string, 0, len(c.Tags)+len(tags)),
	}
	out.Tags = append(out.Tags, c.Tags...)
	for _, tag := range tags {
		if !out.HasTag(tag) {
			out.Tags = append(out.Tags, tag)
		}
	}
	return out
}

func (c *Concept) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

type Predicate struct {
	Name  string
	Arity int
	// Roles optionally names each argument position.
	Roles []string
}

func (p *Predicate) validate() error {
	if p.Name == "" {
		return &InvalidPredicateError{Name: p.Name, Reason: "name is empty"}
	}
	if p.Arity < 1 {
		return &InvalidPredicateError{Name: p.Name, Reason: "arity must be positive"}
	}
	if len(p.Roles) > 0 && len(p.Roles) != p.Arity {
		return &InvalidPredicateError{Name: p.Name, Reason: "number of roles must equal arity"}
	}
	return nil
}

type FactKind int

const (
	Asserted FactKind = iota
	Derived
)

func (k FactKind) String() string {
	if k == Derived {
		return "derived"
	}
	return "asserted"
}

type Fact struct {
	Predicate string
	Args      []Value
	Kind      FactKind
}

// ID identifies a fact by predicate and argument text, e.g. teaches__ivanov_course_db.
func (f *Fact) ID() string {
	texts := make([]string, len(f.Args))
	for idx, arg := range f.Args {
		texts[idx] = arg.Text()
	}
	return f.Predicate + "__" + strings.Join(texts, "_")
}

// Mentions reports whether the concept id appears among the fact's arguments.
func (f *Fact) Mentions(conceptID string) bool {
	for _, arg := range f.Args {
		if arg.Kind == ConceptValue && arg.Str == conceptID {
			return true
		}
	}
	return false
}

func (f *Fact) String() string {
	texts := make([]string, len(f.Args))
	for idx, arg := range f.Args {
		texts[idx] = arg.String()
	}
	return f.Predicate + "(" + strings.Join(texts, ", ") + ")"
}

func factKey(predicate string, args []Value) string {
	var b strings.Builder
	b.WriteString(predicate)
	for _, arg := range args {
		b.WriteByte(0)
		b.WriteString(arg.Key())
	}
	return b.String()
}

// Network is not safe for concurrent mutation. Once built it may be shared
// between goroutines that only read it.
type Network struct {
	concepts       map[string]*Concept
	conceptOrder   []string
	predicates     map[string]*Predicate
	predicateOrder []string
	facts          map[string]*Fact
	factOrder      []string
}

func New() *Network {
	return &Network{
		concepts:   map[string]*Concept{},
		predicates: map[string]*Predicate{},
		facts:      map[string]*Fact{},
	}
}

// Concepts

func (n *Network) AddConcept(c *Concept) error {
	if c.ID == "" {
		return &InvalidConceptError{ID: c.ID, Reason: "id is empty"}
	}
	if _, ok := n.concepts[c.ID]; ok {
		return &DuplicateConceptError{ID: c.ID}
	}
	n.concepts[c.ID] = c
	n.conceptOrder = append(n.conceptOrder, c.ID)
	return nil
}

func (n *Network) ConceptExists(id string) bool {
	_, ok := n.concepts[id]
	return ok
}

func (n *Network) Concept(id string) (*Concept, error) {
	c, ok := n.concepts[id]
	if !ok {
		return nil, &UnknownConceptError{ID: id}
	}
	return c, nil
}

// Concepts returns concepts in insertion order.
func (n *Network) Concepts() []*Concept {
	out := make([]*Concept, len(n.conceptOrder))
	for idx, id := range n.conceptOrder {
		out[idx] = n.concepts[id]
	}
	return out
}

// ReplaceConcept swaps in a new definition for an existing id.
func (n *Network) ReplaceConcept(c *Concept) error {
	if _, ok := n.concepts[c.ID]; !ok {
		return &UnknownConceptError{ID: c.ID}
	}
	n.concepts[c.ID] = c
	return nil
}

// RemoveConcept deletes the concept and every fact mentioning it, returning
// the removed facts.
func (n *Network) RemoveConcept(id string) ([]*Fact, error) {
	if _, ok := n.concepts[id]; !ok {
		return nil, &UnknownConceptError{ID: id}
	}
	delete(n.concepts, id)
	n.conceptOrder = removeString(n.conceptOrder, id)
	return n.removeFactsWhere(func(f *Fact) bool { return f.Mentions(id) }), nil
}

// Predicates

func (n *Network) AddPredicate(p *Predicate) error {
	if err := p.validate(); err != nil {
		return err
	}
	if _, ok := n.predicates[p.Name]; ok {
		return &DuplicatePredicateError{Name: p.Name}
	}
	n.predicates[p.Name] = p
	n.predicateOrder = append(n.predicateOrder, p.Name)
	return nil
}

func (n *Network) Predicate(name string) (*Predicate, error) {
	p, ok := n.predicates[name]
	if !ok {
		return nil, &UnknownPredicateError{Name: name}
	}
	return p, nil
}

func (n *Network) PredicateArity(name string) (int, error) {
	p, err := n.Predicate(name)
	if err != nil {
		return 0, err
	}
	return p.Arity, nil
}

func (n *Network) Predicates() []*Predicate {
	out := make([]*Predicate, len(n.predicateOrder))
	for idx, name := range n.predicateOrder {
		out[idx] = n.predicates[name]
	}
	return out
}

// ReplacePredicate swaps in a new definition for an existing name. Changing
// the arity is refused while facts use the predicate.
func (n *Network) ReplacePredicate(p *Predicate) error {
	if err := p.validate(); err != nil {
		return err
	}
	old, ok := n.predicates[p.Name]
	if !ok {
		return &UnknownPredicateError{Name: p.Name}
	}
	if old.Arity != p.Arity {
		if count := len(n.Facts(p.Name)); count > 0 {
			return &ArityChangeError{Predicate: p.Name, From: old.Arity, To: p.Arity, Facts: count}
		}
	}
	n.predicates[p.Name] = p
	return nil
}

// RemovePredicate deletes the predicate and all its facts, returning the
// removed facts.
func (n *Network) RemovePredicate(name string) ([]*Fact, error) {
	if _, ok := n.predicates[name]; !ok {
		return nil, &UnknownPredicateError{Name: name}
	}
	delete(n.predicates, name)
	n.predicateOrder = removeString(n.predicateOrder, name)
	return n.removeFactsWhere(func(f *Fact) bool { return f.Predicate == name }), nil
}

// Facts

// Assert adds an asserted fact. Asserting an existing fact is a no-op.
func (n *Network) Assert(predicate string, args ...Value) (*Fact, error) {
	return n.addFact(predicate, args, Asserted)
}

// AssertDerived adds a derived fact. A fact that is already asserted keeps
// its asserted kind.
func (n *Network) AssertDerived(predicate string, args ...Value) (*Fact, error) {
	return n.addFact(predicate, args, Derived)
}

func (n *Network) addFact(predicate string, args []Value, kind FactKind) (*Fact, error) {
	if err := n.checkFact(predicate, args); err != nil {
		return nil, err
	}
	key := factKey(predicate, args)
	if existing, ok := n.facts[key]; ok {
		if kind == Asserted {
			existing.Kind = Asserted
		}
		return existing, nil
	}
	fact := &Fact{
		Predicate: predicate,
		Args:      append([]Value(nil), args...),
		Kind:      kind,
	}
	n.facts[key] = fact
	n.factOrder = append(n.factOrder, key)
	return fact, nil
}

func (n *Network) checkFact(predicate string, args []Value) error {
	p, ok := n.predicates[predicate]
	if !ok {
		return &UnknownPredicateError{Name: predicate}
	}
	if len(args) != p.Arity {
		return &ArityError{Predicate: predicate, Wanted: p.Arity, Got: len(args)}
	}
	for _, arg := range args {
		if arg.Kind == ConceptValue && !n.ConceptExists(arg.Str) {
			return &UnknownConceptError{ID: arg.Str}
		}
	}
	return nil
}

func (n *Network) RemoveFact(predicate string, args ...Value) error {
	key := factKey(predicate, args)
	fact, ok := n.facts[key]
	if !ok {
		f := &Fact{Predicate: predicate, Args: args}
		return &NoSuchFactError{FactID: f.ID()}
	}
	delete(n.facts, key)
	n.factOrder = removeString(n.factOrder, factKey(fact.Predicate, fact.Args))
	return nil
}

// Facts returns the facts of a predicate in insertion order. An empty
// predicate name returns all facts.
func (n *Network) Facts(predicate string) []*Fact {
	var out []*Fact
	for _, key := range n.factOrder {
		fact := n.facts[key]
		if predicate == "" || fact.Predicate == predicate {
			out = append(out, fact)
		}
	}
	return out
}

// FactHolds is UNKNOWN if any concept argument does not exist, TRUE if a
// matching asserted or derived fact exists, and FALSE otherwise.
func (n *Network) FactHolds(predicate string, args []Value) kleene.Truth {
	for _, arg := range args {
		if arg.Kind == ConceptValue && !n.ConceptExists(arg.Str) {
			return kleene.Unknown
		}
	}
	_, ok := n.facts[factKey(predicate, args)]
	return kleene.FromBool(ok)
}

func (n *Network) removeFactsWhere(pred func(*Fact) bool) []*Fact {
	var removed []*Fact
	kept := n.factOrder[:0]
	for _, key := range n.factOrder {
		fact := n.facts[key]
		if pred(fact) {
			removed = append(removed, fact)
			delete(n.facts, key)
			continue
		}
		kept = append(kept, key)
	}
	n.factOrder = kept
	return removed
}

// Validate checks that every fact refers to a known predicate with the right
// arity and to existing concepts.
func (n *Network) Validate() []error {
	var errs []error
	for _, key := range n.factOrder {
		fact := n.facts[key]
		if err := n.checkFact(fact.Predicate, fact.Args); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	out := New()
	for _, id := range n.conceptOrder {
		c := n.concepts[id]
		out.concepts[id] = &Concept{ID: c.ID, Label: c.Label, Tags: append([]string(nil), c.Tags...)}
	}
	out.conceptOrder = append(out.conceptOrder, n.conceptOrder...)
	for _, name := range n.predicateOrder {
		p := n.predicates[name]
		out.predicates[name] = &Predicate{Name: p.Name, Arity: p.Arity, Roles: append([]string(nil), p.Roles...)}
	}
	out.predicateOrder = append(out.predicateOrder, n.predicateOrder...)
	for _, key := range n.factOrder {
		f := n.facts[key]
		out.facts[key] = &Fact{Predicate: f.Predicate, Args: append([]Value(nil), f.Args...), Kind: f.Kind}
	}
	out.factOrder = append(out.factOrder, n.factOrder...)
	return out
}

// Neighborhood returns the sorted ids of facts mentioning any of the given
// concepts, plus the sorted ids of every concept those facts mention.
func (n *Network) Neighborhood(conceptIDs []string) (concepts []string, facts []string) {
	seeds := map[string]bool{}
	conceptSet := map[string]bool{}
	factSet := map[string]bool{}
	for _, id := range conceptIDs {
		if n.ConceptExists(id) {
			seeds[id] = true
			conceptSet[id] = true
		}
	}
	for _, key := range n.factOrder {
		fact := n.facts[key]
		touches := false
		for id := range seeds {
			if fact.Mentions(id) {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		factSet[fact.ID()] = true
		for _, arg := range fact.Args {
			if arg.Kind == ConceptValue {
				conceptSet[arg.Str] = true
			}
		}
	}
	return sortedKeys(conceptSet), sortedKeys(factSet)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func removeString(list []string, s string) []string {
	for idx, item := range list {
		if item == s {
			return append(list[:idx], list[idx+1:]...)
		}
	}
	return list
}
