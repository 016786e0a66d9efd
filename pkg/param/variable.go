package param

type Origin string

const (
	OriginScenario Origin = "scenario"
	OriginUser     Origin = "user"
)

type Variable struct {
	Name string
	// TypeTag is an optional hint such as "concept" or "number".
	TypeTag string
	Domain  Domain
	Origin  Origin
}

func NewVariable(name string, domain Domain) *Variable {
	return &Variable{
		Name:   name,
		Domain: domain,
		Origin: OriginScenario,
	}
}

// Variables is an ordered registry of variables. Registry order is the
// enumeration order used when completing contexts.
type Variables struct {
	byName map[string]*Variable
	order  []string
}

func NewVariables(vars ...*Variable) (*Variables, error) {
	vs := &Variables{byName: map[string]*Variable{}}
	for _, v := range vars {
		if err := vs.Add(v); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

func (vs *Variables) Add(v *Variable) error {
	if v.Name == "" {
		return &InvalidVariableError{Name: v.Name, Reason: "name is empty"}
	}
	if v.Domain == nil {
		return &InvalidVariableError{Name: v.Name, Reason: "no domain"}
	}
	if _, ok := vs.byName[v.Name]; ok {
		return &DuplicateVariableError{Name: v.Name}
	}
	vs.byName[v.Name] = v
	vs.order = append(vs.order, v.Name)
	return nil
}

func (vs *Variables) Lookup(name string) (*Variable, error) {
	v, ok := vs.byName[name]
	if !ok {
		return nil, &UnknownVariableError{Name: name}
	}
	return v, nil
}

func (vs *Variables) DomainOf(name string) (Domain, error) {
	v, err := vs.Lookup(name)
	if err != nil {
		return nil, err
	}
	return v.Domain, nil
}

func (vs *Variables) Names() []string {
	return append([]string(nil), vs.order...)
}

func (vs *Variables) All() []*Variable {
	out := make([]*Variable, len(vs.order))
	for idx, name := range vs.order {
		out[idx] = vs.byName[name]
	}
	return out
}

func (vs *Variables) Len() int {
	return len(vs.order)
}
