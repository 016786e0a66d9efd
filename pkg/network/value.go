package network

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

type ValueKind int

const (
	ConceptValue ValueKind = iota
	StringValue
	NumberValue
)

func (k ValueKind) String() string {
	switch k {
	case ConceptValue:
		return "concept"
	case StringValue:
		return "string"
	case NumberValue:
		return "number"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a concept reference, a string literal or a number.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

func NewConceptRef(id string) Value {
	return Value{Kind: ConceptValue, Str: id}
}

func NewString(s string) Value {
	return Value{Kind: StringValue, Str: s}
}

func NewNumber(n float64) Value {
	return Value{Kind: NumberValue, Num: n}
}

func (v Value) IsNumber() bool {
	return v.Kind == NumberValue
}

// Equal compares concepts and strings by their text, so the concept red
// equals the literal "red". Numbers compare numerically and never equal a
// string.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() != other.IsNumber() {
		return false
	}
	if v.IsNumber() {
		return v.Num == other.Num
	}
	return v.Str == other.Str
}

// Key is a string that is the same for two values iff they are Equal.
func (v Value) Key() string {
	if v.IsNumber() {
		return "n:" + formatNumber(v.Num)
	}
	return "s:" + v.Str
}

// Text is the bare representation: concept id, unquoted string, or number.
func (v Value) Text() string {
	if v.IsNumber() {
		return formatNumber(v.Num)
	}
	return v.Str
}

func (v Value) String() string {
	switch v.Kind {
	case StringValue:
		return strconv.Quote(v.Str)
	default:
		return v.Text()
	}
}

// Native returns the value as a plain Go string or float64.
func (v Value) Native() interface{} {
	if v.IsNumber() {
		return v.Num
	}
	return v.Str
}

// MarshalJSON writes numbers as JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// UnmarshalJSON reads a string as a string literal and a number as a
// number. Callers that know about concepts resolve strings themselves.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := ValueFromNative(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

// ValueFromNative converts decoded JSON or YAML scalars into a Value.
func ValueFromNative(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case string:
		return NewString(t), nil
	case float64:
		return NewNumber(t), nil
	case float32:
		return NewNumber(float64(t)), nil
	case int:
		return NewNumber(float64(t)), nil
	case int64:
		return NewNumber(float64(t)), nil
	case uint64:
		return NewNumber(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, errors.Wrapf(err, "bad number %q", t)
		}
		return NewNumber(f), nil
	default:
		return Value{}, fmt.Errorf("unsupported value %v (%T): expected string or number", raw, raw)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
