package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pkg/errors"
	"github.com/vilterp/semnet/pkg/network"
)

// Domain is the set of values a variable may take.
type Domain interface {
	Contains(v network.Value) bool
	Describe() string
	// Size is the number of values Enumerate would return, computed without
	// enumerating.
	Size() (int, error)
	// Enumerate lists the domain's values in a deterministic order.
	Enumerate() ([]network.Value, error)
}

var _ Domain = &EnumDomain{}
var _ Domain = &RangeDomain{}
var _ Domain = &PredicateDomain{}

// Enum

type EnumDomain struct {
	Values []network.Value
}

func NewEnumDomain(values ...network.Value) *EnumDomain {
	return &EnumDomain{Values: values}
}

func (d *EnumDomain) Contains(v network.Value) bool {
	for _, member := range d.Values {
		if member.Equal(v) {
			return true
		}
	}
	return false
}

func (d *EnumDomain) Describe() string {
	return "Enum" + describeValues(d.Values)
}

func (d *EnumDomain) Size() (int, error) {
	return len(d.Values), nil
}

func (d *EnumDomain) Enumerate() ([]network.Value, error) {
	return append([]network.Value(nil), d.Values...), nil
}

// Range

// RangeDomain is a numeric interval, closed when Inclusive and open
// otherwise. It can only be enumerated when Step is positive.
type RangeDomain struct {
	Min       float64
	Max       float64
	Inclusive bool
	Step      float64
}

const rangeEpsilon = 1e-9

// Contains accepts numbers only. A numeric string would pass the bounds
// but never equal a number, so it is not a member.
func (d *RangeDomain) Contains(v network.Value) bool {
	if !v.IsNumber() {
		return false
	}
	f := v.Num
	if d.Inclusive {
		return d.Min <= f && f <= d.Max
	}
	return d.Min < f && f < d.Max
}

func (d *RangeDomain) Describe() string {
	open, closed := "(", ")"
	if d.Inclusive {
		open, closed = "[", "]"
	}
	desc := fmt.Sprintf("Range%s%s, %s%s", open, formatFloat(d.Min), formatFloat(d.Max), closed)
	if d.Step > 0 {
		desc += " step " + formatFloat(d.Step)
	}
	return desc
}

func (d *RangeDomain) Size() (int, error) {
	if !(d.Step > 0) || math.IsInf(d.Step, 0) || math.IsInf(d.Min, 0) || math.IsInf(d.Max, 0) {
		return 0, &UnboundedDomainError{Domain: d.Describe()}
	}
	if d.Max < d.Min {
		return 0, nil
	}
	span := (d.Max - d.Min) / d.Step
	if span > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	if d.Inclusive {
		return int(math.Floor(span+rangeEpsilon)) + 1, nil
	}
	count := int(math.Ceil(span-rangeEpsilon)) - 1
	if count < 0 {
		return 0, nil
	}
	return count, nil
}

func (d *RangeDomain) Enumerate() ([]network.Value, error) {
	size, err := d.Size()
	if err != nil {
		return nil, err
	}
	start := 0
	if !d.Inclusive {
		start = 1
	}
	out := make([]network.Value, 0, size)
	for i := start; len(out) < size; i++ {
		out = append(out, network.NewNumber(d.at(i)))
	}
	return out, nil
}

// at is the i-th step from Min, rounded to the precision of Min and Step
// so that fractional steps do not drift past the bounds.
func (d *RangeDomain) at(i int) float64 {
	f := d.Min + float64(i)*d.Step
	places := decimalPlaces(d.Step)
	if p := decimalPlaces(d.Min); p > places {
		places = p
	}
	scale := math.Pow10(places)
	if math.Abs(f*scale) < 1<<53 {
		f = math.Round(f*scale) / scale
	}
	if f > d.Max && f-d.Max <= rangeEpsilon*d.Step {
		f = d.Max
	}
	return f
}

// decimalPlaces counts digits after the point in the shortest decimal form
// of f, capped at 15.
func decimalPlaces(f float64) int {
	str := strconv.FormatFloat(f, 'f', -1, 64)
	idx := strings.IndexByte(str, '.')
	if idx < 0 {
		return 0
	}
	if places := len(str) - idx - 1; places < 15 {
		return places
	}
	return 15
}

// Predicate

// PredicateDomain is a caller-supplied domain. Values lists what it
// enumerates to; Filter is an optional boolean expression over `value`
// that every member must satisfy. Without Values it cannot be enumerated.
type PredicateDomain struct {
	Name   string
	Values []network.Value
	Filter string

	program *vm.Program
}

func NewPredicateDomain(name string, values []network.Value, filter string) (*PredicateDomain, error) {
	d := &PredicateDomain{
		Name:   name,
		Values: values,
		Filter: filter,
	}
	if filter != "" {
		program, err := expr.Compile(filter, expr.AsBool())
		if err != nil {
			return nil, &InvalidDomainError{Domain: d.Describe(), Reason: err.Error()}
		}
		d.program = program
	}
	for _, v := range values {
		ok, err := d.matches(v)
		if err != nil {
			return nil, &InvalidDomainError{Domain: d.Describe(), Reason: err.Error()}
		}
		if !ok {
			return nil, &InvalidDomainError{
				Domain: d.Describe(),
				Reason: fmt.Sprintf("listed value %s does not satisfy the filter", v),
			}
		}
	}
	return d, nil
}

func (d *PredicateDomain) matches(v network.Value) (bool, error) {
	if d.program == nil {
		return true, nil
	}
	out, err := expr.Run(d.program, map[string]interface{}{"value": v.Native()})
	if err != nil {
		return false, errors.Wrapf(err, "evaluating filter of %s", d.Describe())
	}
	b, ok := out.(bool)
	return ok && b, nil
}

func (d *PredicateDomain) Contains(v network.Value) bool {
	if len(d.Values) > 0 {
		found := false
		for _, member := range d.Values {
			if member.Equal(v) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	ok, err := d.matches(v)
	return err == nil && ok
}

func (d *PredicateDomain) Describe() string {
	name := d.Name
	if name == "" {
		name = "PredicateDomain"
	}
	if d.Filter != "" {
		name += "{" + d.Filter + "}"
	}
	return name
}

func (d *PredicateDomain) Size() (int, error) {
	if len(d.Values) == 0 {
		return 0, &UnboundedDomainError{Domain: d.Describe()}
	}
	return len(d.Values), nil
}

func (d *PredicateDomain) Enumerate() ([]network.Value, error) {
	if _, err := d.Size(); err != nil {
		return nil, err
	}
	return append([]network.Value(nil), d.Values...), nil
}

func describeValues(values []network.Value) string {
	strs := make([]string, len(values))
	for idx, v := range values {
		strs[idx] = v.String()
	}
	return "(" + strings.Join(strs, ", ") + ")"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
