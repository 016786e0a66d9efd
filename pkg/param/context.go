package param

import (
	"sort"

	"github.com/vilterp/semnet/pkg/network"
)

// Context is a partial assignment of values to variables.
type Context struct {
	Name   string
	values map[string]network.Value
}

func NewContext(name string) *Context {
	return &Context{
		Name:   name,
		values: map[string]network.Value{},
	}
}

func (c *Context) ContextName() string {
	return c.Name
}

// Set assigns a value after checking that the variable exists and that its
// domain contains the value.
func (c *Context) Set(vars *Variables, name string, value network.Value) error {
	v, err := vars.Lookup(name)
	if err != nil {
		return err
	}
	if !v.Domain.Contains(value) {
		return &InvalidDomainAssignmentError{
			Variable: name,
			Value:    value,
			Domain:   v.Domain.Describe(),
		}
	}
	c.values[name] = value
	return nil
}

// SetUnchecked assigns without validation. Contexts built this way should be
// checked with Validate before use.
func (c *Context) SetUnchecked(name string, value network.Value) {
	c.values[name] = value
}

func (c *Context) Unset(name string) {
	delete(c.values, name)
}

func (c *Context) Get(name string) (network.Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

func (c *Context) IsAssigned(name string) bool {
	_, ok := c.values[name]
	return ok
}

func (c *Context) Len() int {
	return len(c.values)
}

// Names returns the assigned variable names, sorted.
func (c *Context) Names() []string {
	out := make([]string, 0, len(c.values))
	for name := range c.values {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (c *Context) Values() map[string]network.Value {
	out := make(map[string]network.Value, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func (c *Context) Clone(name string) *Context {
	out := NewContext(name)
	for k, v := range c.values {
		out.values[k] = v
	}
	return out
}

// Extend returns a copy with the given assignments applied. The receiver is
// not modified.
func (c *Context) Extend(vars *Variables, assignments map[string]network.Value) (*Context, error) {
	out := c.Clone(c.Name)
	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := out.Set(vars, name, assignments[name]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Validate checks every assignment against the declared variables. The
// first offending assignment in name order is reported.
func (c *Context) Validate(vars *Variables) error {
	for _, name := range c.Names() {
		value := c.values[name]
		v, err := vars.Lookup(name)
		if err != nil {
			return &ContextIntegrityError{
				Context:  c.Name,
				Variable: name,
				Value:    value,
				Reason:   "variable is not declared",
			}
		}
		if !v.Domain.Contains(value) {
			return &ContextIntegrityError{
				Context:  c.Name,
				Variable: name,
				Value:    value,
				Reason:   "value is outside domain " + v.Domain.Describe(),
			}
		}
	}
	return nil
}

type Status struct {
	Assigned int  `json:"assigned"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
	// Free lists the unassigned variables in registry order.
	Free []string `json:"free"`
}

func (c *Context) Status(vars *Variables) *Status {
	status := &Status{Total: vars.Len(), Free: []string{}}
	for _, name := range vars.Names() {
		if c.IsAssigned(name) {
			status.Assigned++
		} else {
			status.Free = append(status.Free, name)
		}
	}
	status.Complete = status.Assigned == status.Total
	return status
}

// Compare

type VariableDiff struct {
	Variable string `json:"variable"`
	// Values has one entry per compared context; nil means unset.
	Values []*network.Value `json:"values"`
}

type Comparison struct {
	Contexts []string       `json:"contexts"`
	Diff     []VariableDiff `json:"diff"`
}

// Compare lists, for each variable assigned in any of the contexts, the
// values it takes where they are not all equal. Variables are sorted by name.
func Compare(contexts ...*Context) (*Comparison, error) {
	if len(contexts) < 2 {
		return nil, &TooFewContextsError{Got: len(contexts)}
	}
	cmp := &Comparison{Diff: []VariableDiff{}}
	names := map[string]bool{}
	for _, c := range contexts {
		cmp.Contexts = append(cmp.Contexts, c.Name)
		for name := range c.values {
			names[name] = true
		}
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	for _, name := range sorted {
		diff := VariableDiff{Variable: name}
		differs := false
		for idx, c := range contexts {
			var cell *network.Value
			if v, ok := c.values[name]; ok {
				v := v
				cell = &v
			}
			if idx > 0 && !sameCell(diff.Values[0], cell) {
				differs = true
			}
			diff.Values = append(diff.Values, cell)
		}
		if differs {
			cmp.Diff = append(cmp.Diff, diff)
		}
	}
	return cmp, nil
}

func sameCell(a, b *network.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// Highlights

type Highlights struct {
	Nodes []string `json:"nodes"`
	Edges []string `json:"edges"`
}

// Highlights picks out the part of the network a context points at: the
// concepts assigned to variables, their neighbors, and the facts joining
// them.
func (c *Context) Highlights(net *network.Network) *Highlights {
	var seeds []string
	for _, name := range c.Names() {
		v := c.values[name]
		if v.IsNumber() {
			continue
		}
		if net.ConceptExists(v.Str) {
			seeds = append(seeds, v.Str)
		}
	}
	nodes, edges := net.Neighborhood(seeds)
	if nodes == nil {
		nodes = []string{}
	}
	if edges == nil {
		edges = []string{}
	}
	return &Highlights{Nodes: nodes, Edges: edges}
}
