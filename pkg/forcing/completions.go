package forcing

import (
	"strings"

	"github.com/vilterp/semnet/pkg/logic"
	"github.com/vilterp/semnet/pkg/network"
)

type Iterator interface {
	// Next returns the next completion, or EndOfIteration once the sequence
	// is exhausted.
	Next() (*Completion, error)
}

type endOfIteration struct{}

func (e *endOfIteration) Error() string {
	return "end of iteration"
}

var EndOfIteration = &endOfIteration{}

// Completion overlays values for the free variables on a base context.
type Completion struct {
	base   logic.Assignment
	names  []string
	values []network.Value
}

var _ logic.Assignment = &Completion{}

func (c *Completion) Get(name string) (network.Value, bool) {
	for idx, n := range c.names {
		if n == name {
			return c.values[idx], true
		}
	}
	return c.base.Get(name)
}

func (c *Completion) ContextName() string {
	if named, ok := c.base.(interface{ ContextName() string }); ok {
		return named.ContextName()
	}
	return ""
}

func (c *Completion) String() string {
	parts := make([]string, len(c.names))
	for idx, name := range c.names {
		parts[idx] = "?" + name + " = " + c.values[idx].String()
	}
	return strings.Join(parts, ", ")
}

// Odometer iterator

// odometerIterator walks the cartesian product of the free variables'
// domains, last variable fastest, without materializing it.
type odometerIterator struct {
	base    logic.Assignment
	names   []string
	domains [][]network.Value
	pos     []int
	started bool
	done    bool
}

var _ Iterator = &odometerIterator{}

func newOdometer(base logic.Assignment, names []string, domains [][]network.Value) *odometerIterator {
	it := &odometerIterator{
		base:    base,
		names:   names,
		domains: domains,
		pos:     make([]int, len(names)),
	}
	for _, domain := range domains {
		if len(domain) == 0 {
			it.done = true
		}
	}
	return it
}

func (it *odometerIterator) Next() (*Completion, error) {
	if it.done {
		return nil, EndOfIteration
	}
	if it.started && !it.advance() {
		it.done = true
		return nil, EndOfIteration
	}
	it.started = true
	values := make([]network.Value, len(it.names))
	for idx, p := range it.pos {
		values[idx] = it.domains[idx][p]
	}
	return &Completion{base: it.base, names: it.names, values: values}, nil
}

func (it *odometerIterator) advance() bool {
	for idx := len(it.pos) - 1; idx >= 0; idx-- {
		it.pos[idx]++
		if it.pos[idx] < len(it.domains[idx]) {
			return true
		}
		it.pos[idx] = 0
	}
	return false
}

// Filter iterator

// filterIterator passes through completions accepted by keep, counting
// what it rejects.
type filterIterator struct {
	inner    Iterator
	keep     func(*Completion) (bool, error)
	rejected int
}

var _ Iterator = &filterIterator{}

func (fi *filterIterator) Next() (*Completion, error) {
	for {
		next, err := fi.inner.Next()
		if err != nil {
			return nil, err
		}
		ok, err := fi.keep(next)
		if err != nil {
			return nil, err
		}
		if ok {
			return next, nil
		}
		fi.rejected++
	}
}
