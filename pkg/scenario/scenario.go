// Package scenario loads scenario files: a network, its variables, named
// contexts and formulas, and the conditions and goal to force.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/vilterp/semnet/pkg/derive"
	"github.com/vilterp/semnet/pkg/logic"
	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Scenario is an immutable snapshot. Accessors hand out copies of
// contexts; the network and variables must not be modified by callers.
type Scenario struct {
	Name        string
	Description string
	// Network has the rule-derived facts applied.
	Network   *network.Network
	Variables *param.Variables
	Rules     *derive.Rules

	contexts     map[string]*param.Context
	contextOrder []string
	formulas     map[string]logic.Formula
	formulaOrder []string
	conditions   []string
	goal         string
}

// Load reads and compiles one scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return s, nil
}

// Parse decodes YAML and compiles it. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	file := &File{}
	if err := decoder.Decode(file); err != nil {
		return nil, errors.Wrap(err, "decoding scenario")
	}
	return Compile(file)
}

// Compile builds a scenario from a decoded file and checks that every
// formula and context is consistent with the network and variables.
func Compile(file *File) (*Scenario, error) {
	if err := validate.Struct(file); err != nil {
		return nil, errors.Wrapf(err, "scenario %s", file.Name)
	}
	s := &Scenario{
		Name:        file.Name,
		Description: file.Description,
		contexts:    map[string]*param.Context{},
		formulas:    map[string]logic.Formula{},
	}
	wrap := func(err error, format string, args ...interface{}) error {
		return errors.Wrapf(err, "scenario %s: %s", file.Name, fmt.Sprintf(format, args...))
	}

	net, err := buildNetwork(file)
	if err != nil {
		return nil, wrap(err, "network")
	}
	if file.Rules != "" {
		rules, err := derive.ParseRules(file.Rules)
		if err != nil {
			return nil, wrap(err, "rules")
		}
		net, err = derive.Apply(net, rules)
		if err != nil {
			return nil, wrap(err, "rules")
		}
		s.Rules = rules
	}
	s.Network = net

	vars, err := param.NewVariables()
	if err != nil {
		return nil, err
	}
	for _, spec := range file.Variables {
		domain, err := buildDomain(net, &spec.Domain)
		if err != nil {
			return nil, wrap(err, "variable ?%s", spec.Name)
		}
		v := param.NewVariable(spec.Name, domain)
		v.TypeTag = spec.Type
		if err := vars.Add(v); err != nil {
			return nil, wrap(err, "variables")
		}
	}
	s.Variables = vars

	for _, spec := range file.Contexts {
		if _, ok := s.contexts[spec.Name]; ok {
			return nil, wrap(&DuplicateNameError{Kind: "context", Name: spec.Name}, "contexts")
		}
		ctx := param.NewContext(spec.Name)
		for _, name := range sortedKeys(spec.Values) {
			value, err := toValue(net, spec.Values[name])
			if err != nil {
				return nil, wrap(err, "context %s: ?%s", spec.Name, name)
			}
			if err := ctx.Set(vars, name, value); err != nil {
				return nil, wrap(err, "context %s", spec.Name)
			}
		}
		s.contexts[spec.Name] = ctx
		s.contextOrder = append(s.contextOrder, spec.Name)
	}

	for _, spec := range file.Formulas {
		if _, ok := s.formulas[spec.Name]; ok {
			return nil, wrap(&DuplicateNameError{Kind: "formula", Name: spec.Name}, "formulas")
		}
		f, err := logic.Parse(spec.Text)
		if err != nil {
			return nil, wrap(err, "formula %s", spec.Name)
		}
		if err := logic.Validate(f, net, vars); err != nil {
			return nil, wrap(err, "formula %s", spec.Name)
		}
		s.formulas[spec.Name] = f
		s.formulaOrder = append(s.formulaOrder, spec.Name)
	}

	for _, name := range file.Conditions {
		if _, ok := s.formulas[name]; !ok {
			return nil, wrap(&NoSuchFormulaError{Scenario: file.Name, Name: name}, "conditions")
		}
	}
	s.conditions = append([]string{}, file.Conditions...)
	if file.Goal != "" {
		if _, ok := s.formulas[file.Goal]; !ok {
			return nil, wrap(&NoSuchFormulaError{Scenario: file.Name, Name: file.Goal}, "goal")
		}
	}
	s.goal = file.Goal
	return s, nil
}

func buildNetwork(file *File) (*network.Network, error) {
	net := network.New()
	for _, spec := range file.Concepts {
		c := &network.Concept{ID: spec.ID, Label: spec.Label, Tags: append([]string{}, spec.Tags...)}
		if err := net.AddConcept(c); err != nil {
			return nil, err
		}
	}
	for _, spec := range file.Predicates {
		p := &network.Predicate{Name: spec.Name, Arity: spec.Arity, Roles: append([]string{}, spec.Roles...)}
		if err := net.AddPredicate(p); err != nil {
			return nil, err
		}
	}
	for idx, spec := range file.Facts {
		args, err := toValues(net, spec.Args)
		if err != nil {
			return nil, errors.Wrapf(err, "fact %d", idx)
		}
		if _, err := net.Assert(spec.Predicate, args...); err != nil {
			return nil, errors.Wrapf(err, "fact %d", idx)
		}
	}
	return net, nil
}

func buildDomain(net *network.Network, spec *DomainSpec) (param.Domain, error) {
	set := 0
	if spec.Enum != nil {
		set++
	}
	if spec.Range != nil {
		set++
	}
	if spec.Predicate != nil {
		set++
	}
	if set != 1 {
		return nil, &param.InvalidDomainError{
			Domain: "(scenario)",
			Reason: "give exactly one of enum, range or predicate",
		}
	}

	switch {
	case spec.Enum != nil:
		values, err := toValues(net, spec.Enum)
		if err != nil {
			return nil, err
		}
		return param.NewEnumDomain(values...), nil
	case spec.Range != nil:
		inclusive := true
		if spec.Range.Inclusive != nil {
			inclusive = *spec.Range.Inclusive
		}
		return &param.RangeDomain{
			Min:       spec.Range.Min,
			Max:       spec.Range.Max,
			Inclusive: inclusive,
			Step:      spec.Range.Step,
		}, nil
	default:
		values, err := toValues(net, spec.Predicate.Values)
		if err != nil {
			return nil, err
		}
		return param.NewPredicateDomain(spec.Predicate.Name, values, spec.Predicate.Filter)
	}
}

// toValue turns a decoded scalar into a value: a string naming a concept
// becomes a reference to it, other strings stay literals.
func toValue(net *network.Network, raw interface{}) (network.Value, error) {
	if str, ok := raw.(string); ok && net.ConceptExists(str) {
		return network.NewConceptRef(str), nil
	}
	return network.ValueFromNative(raw)
}

func toValues(net *network.Network, raw []interface{}) ([]network.Value, error) {
	out := make([]network.Value, len(raw))
	for idx, r := range raw {
		v, err := toValue(net, r)
		if err != nil {
			return nil, errors.Wrapf(err, "value %d", idx)
		}
		out[idx] = v
	}
	return out, nil
}

// ContextNames lists named contexts in file order.
func (s *Scenario) ContextNames() []string {
	return append([]string{}, s.contextOrder...)
}

// Context returns a copy of the named context.
func (s *Scenario) Context(name string) (*param.Context, error) {
	ctx, ok := s.contexts[name]
	if !ok {
		return nil, &NoSuchContextError{Scenario: s.Name, Name: name}
	}
	return ctx.Clone(name), nil
}

// DefaultContext is a copy of the first named context, or an empty
// anonymous context when the file names none.
func (s *Scenario) DefaultContext() *param.Context {
	if len(s.contextOrder) == 0 {
		return param.NewContext("")
	}
	name := s.contextOrder[0]
	return s.contexts[name].Clone(name)
}

func (s *Scenario) FormulaNames() []string {
	return append([]string{}, s.formulaOrder...)
}

func (s *Scenario) Formula(name string) (logic.Formula, error) {
	f, ok := s.formulas[name]
	if !ok {
		return nil, &NoSuchFormulaError{Scenario: s.Name, Name: name}
	}
	return f, nil
}

func (s *Scenario) ConditionNames() []string {
	return append([]string{}, s.conditions...)
}

func (s *Scenario) Conditions() []logic.Formula {
	out := make([]logic.Formula, len(s.conditions))
	for idx, name := range s.conditions {
		out[idx] = s.formulas[name]
	}
	return out
}

// Goal returns the goal formula and its name; nil if there is none.
func (s *Scenario) Goal() (string, logic.Formula) {
	if s.goal == "" {
		return "", nil
	}
	return s.goal, s.formulas[s.goal]
}

// Catalog is a set of scenarios keyed by name.
type Catalog struct {
	byName map[string]*Scenario
	order  []string
}

func NewCatalog(scenarios ...*Scenario) (*Catalog, error) {
	c := &Catalog{byName: map[string]*Scenario{}}
	for _, s := range scenarios {
		if _, ok := c.byName[s.Name]; ok {
			return nil, &DuplicateNameError{Kind: "scenario", Name: s.Name}
		}
		c.byName[s.Name] = s
		c.order = append(c.order, s.Name)
	}
	sort.Strings(c.order)
	return c, nil
}

// LoadDir loads every .yaml and .yml file in dir.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var scenarios []*Scenario
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		s, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return NewCatalog(scenarios...)
}

func (c *Catalog) Get(name string) (*Scenario, error) {
	s, ok := c.byName[name]
	if !ok {
		return nil, &NoSuchScenarioError{Name: name}
	}
	return s, nil
}

// Names is sorted.
func (c *Catalog) Names() []string {
	return append([]string{}, c.order...)
}

func (c *Catalog) Len() int {
	return len(c.order)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
