package scenario

// File is the YAML layout of a scenario.
type File struct {
	Name        string          `yaml:"name" validate:"required"`
	Description string          `yaml:"description"`
	Concepts    []ConceptSpec   `yaml:"concepts" validate:"dive"`
	Predicates  []PredicateSpec `yaml:"predicates" validate:"dive"`
	Facts       []FactSpec      `yaml:"facts" validate:"dive"`
	// Rules is Mangle source evaluated over the facts before anything else.
	Rules      string         `yaml:"rules"`
	Variables  []VariableSpec `yaml:"variables" validate:"dive"`
	Contexts   []ContextSpec  `yaml:"contexts" validate:"dive"`
	Formulas   []FormulaSpec  `yaml:"formulas" validate:"dive"`
	Conditions []string       `yaml:"conditions" validate:"dive,required"`
	Goal       string         `yaml:"goal"`
}

type ConceptSpec struct {
	ID    string   `yaml:"id" validate:"required"`
	Label string   `yaml:"label"`
	Tags  []string `yaml:"tags"`
}

type PredicateSpec struct {
	Name  string   `yaml:"name" validate:"required"`
	Arity int      `yaml:"arity" validate:"min=0"`
	Roles []string `yaml:"roles"`
}

type FactSpec struct {
	Predicate string        `yaml:"predicate" validate:"required"`
	Args      []interface{} `yaml:"args"`
}

type VariableSpec struct {
	Name   string     `yaml:"name" validate:"required"`
	Type   string     `yaml:"type" validate:"omitempty,oneof=concept string number"`
	Domain DomainSpec `yaml:"domain"`
}

// DomainSpec sets exactly one of its fields.
type DomainSpec struct {
	Enum      []interface{}        `yaml:"enum"`
	Range     *RangeSpec           `yaml:"range"`
	Predicate *PredicateDomainSpec `yaml:"predicate"`
}

type RangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max" validate:"gtefield=Min"`
	// Inclusive defaults to true.
	Inclusive *bool   `yaml:"inclusive"`
	Step      float64 `yaml:"step" validate:"min=0"`
}

type PredicateDomainSpec struct {
	Name   string        `yaml:"name" validate:"required"`
	Values []interface{} `yaml:"values"`
	Filter string        `yaml:"filter"`
}

type ContextSpec struct {
	Name   string                 `yaml:"name" validate:"required"`
	Values map[string]interface{} `yaml:"values"`
}

type FormulaSpec struct {
	Name string `yaml:"name" validate:"required"`
	Text string `yaml:"text" validate:"required"`
}
