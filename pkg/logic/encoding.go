package logic

import (
	"encoding/json"
	"fmt"

	"github.com/vilterp/semnet/pkg/network"
)

// Formulas travel as tagged JSON objects:
//
//	{"type": "FactAtom", "predicate": "likes", "args": [term, ...]}
//	{"type": "EqAtom", "left": term, "right": term}
//	{"type": "Not", "inner": formula}
//	{"type": "And" | "Or", "items": [formula, ...]}
//	{"type": "Implies", "left": formula, "right": formula}
//
// and terms as {"kind": "concept", "id": ...}, {"kind": "variable",
// "name": ...} or {"kind": "literal", "value": string or number}.

func MarshalFormula(f Formula) ([]byte, error) {
	return json.Marshal(formulaToJSON(f))
}

func formulaToJSON(f Formula) map[string]interface{} {
	switch node := f.(type) {
	case *FactAtom:
		args := make([]interface{}, len(node.Args))
		for idx, arg := range node.Args {
			args[idx] = termToJSON(arg)
		}
		return map[string]interface{}{"type": "FactAtom", "predicate": node.Predicate, "args": args}
	case *EqAtom:
		return map[string]interface{}{"type": "EqAtom", "left": termToJSON(node.Left), "right": termToJSON(node.Right)}
	case *Not:
		return map[string]interface{}{"type": "Not", "inner": formulaToJSON(node.Inner)}
	case *And:
		return map[string]interface{}{"type": "And", "items": formulasToJSON(node.Items)}
	case *Or:
		return map[string]interface{}{"type": "Or", "items": formulasToJSON(node.Items)}
	case *Implies:
		return map[string]interface{}{"type": "Implies", "left": formulaToJSON(node.Left), "right": formulaToJSON(node.Right)}
	default:
		panic(unknownNode(f))
	}
}

func formulasToJSON(items []Formula) []interface{} {
	out := make([]interface{}, len(items))
	for idx, item := range items {
		out[idx] = formulaToJSON(item)
	}
	return out
}

func termToJSON(t Term) map[string]interface{} {
	switch term := t.(type) {
	case *ConceptTerm:
		return map[string]interface{}{"kind": "concept", "id": term.ID}
	case *VariableTerm:
		return map[string]interface{}{"kind": "variable", "name": term.Name}
	case *LiteralTerm:
		return map[string]interface{}{"kind": "literal", "value": term.Value.Native()}
	default:
		panic(unknownNode(t))
	}
}

type jsonNode struct {
	Type      string            `json:"type"`
	Predicate string            `json:"predicate"`
	Args      []json.RawMessage `json:"args"`
	Left      json.RawMessage   `json:"left"`
	Right     json.RawMessage   `json:"right"`
	Inner     json.RawMessage   `json:"inner"`
	Items     []json.RawMessage `json:"items"`
}

type jsonTerm struct {
	Kind  string      `json:"kind"`
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

func UnmarshalFormula(data []byte) (Formula, error) {
	var node jsonNode
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}
	switch node.Type {
	case "FactAtom":
		if node.Predicate == "" {
			return nil, &EncodingError{Reason: "FactAtom without predicate"}
		}
		args := make([]Term, len(node.Args))
		for idx, raw := range node.Args {
			term, err := unmarshalTerm(raw)
			if err != nil {
				return nil, err
			}
			args[idx] = term
		}
		return NewFactAtom(node.Predicate, args...), nil

	case "EqAtom":
		left, err := unmarshalTerm(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := unmarshalTerm(node.Right)
		if err != nil {
			return nil, err
		}
		return NewEq(left, right), nil

	case "Not":
		inner, err := unmarshalChild(node.Inner, "Not.inner")
		if err != nil {
			return nil, err
		}
		return NewNot(inner), nil

	case "And", "Or":
		items := make([]Formula, len(node.Items))
		for idx, raw := range node.Items {
			item, err := UnmarshalFormula(raw)
			if err != nil {
				return nil, err
			}
			items[idx] = item
		}
		if node.Type == "And" {
			return NewAnd(items...), nil
		}
		return NewOr(items...), nil

	case "Implies":
		left, err := unmarshalChild(node.Left, "Implies.left")
		if err != nil {
			return nil, err
		}
		right, err := unmarshalChild(node.Right, "Implies.right")
		if err != nil {
			return nil, err
		}
		return NewImplies(left, right), nil

	default:
		return nil, &EncodingError{Reason: fmt.Sprintf("unknown formula type %q", node.Type)}
	}
}

func unmarshalChild(raw json.RawMessage, field string) (Formula, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &EncodingError{Reason: "missing " + field}
	}
	return UnmarshalFormula(raw)
}

func unmarshalTerm(raw json.RawMessage) (Term, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, &EncodingError{Reason: "missing term"}
	}
	var term jsonTerm
	if err := json.Unmarshal(raw, &term); err != nil {
		return nil, &EncodingError{Reason: err.Error()}
	}
	switch term.Kind {
	case "concept":
		if term.ID == "" {
			return nil, &EncodingError{Reason: "concept term without id"}
		}
		return NewConcept(term.ID), nil
	case "variable":
		if term.Name == "" {
			return nil, &EncodingError{Reason: "variable term without name"}
		}
		return NewVariable(term.Name), nil
	case "literal":
		value, err := network.ValueFromNative(term.Value)
		if err != nil {
			return nil, &EncodingError{Reason: err.Error()}
		}
		return &LiteralTerm{Value: value}, nil
	default:
		return nil, &EncodingError{Reason: fmt.Sprintf("unknown term kind %q", term.Kind)}
	}
}
