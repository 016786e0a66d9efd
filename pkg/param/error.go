package param

import (
	"fmt"

	"github.com/vilterp/semnet/pkg/network"
)

type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("no such variable: ?%s", e.Name)
}

type DuplicateVariableError struct {
	Name string
}

func (e *DuplicateVariableError) Error() string {
	return fmt.Sprintf("variable already declared: ?%s", e.Name)
}

type InvalidVariableError struct {
	Name   string
	Reason string
}

func (e *InvalidVariableError) Error() string {
	return fmt.Sprintf("invalid variable %q: %s", e.Name, e.Reason)
}

// InvalidDomainAssignmentError is returned when assigning a value that is
// outside the variable's domain.
type InvalidDomainAssignmentError struct {
	Variable string
	Value    network.Value
	Domain   string
}

func (e *InvalidDomainAssignmentError) Error() string {
	return fmt.Sprintf("value %s is not in the domain of ?%s (%s)", e.Value, e.Variable, e.Domain)
}

// ContextIntegrityError is returned when a context holds a value that its
// variable's domain does not contain, or names an undeclared variable.
type ContextIntegrityError struct {
	Context  string
	Variable string
	Value    network.Value
	Reason   string
}

func (e *ContextIntegrityError) Error() string {
	name := e.Context
	if name == "" {
		name = "(anonymous)"
	}
	return fmt.Sprintf("context %s: ?%s = %s: %s", name, e.Variable, e.Value, e.Reason)
}

type UnboundedDomainError struct {
	Domain string
}

func (e *UnboundedDomainError) Error() string {
	return fmt.Sprintf("domain cannot be enumerated: %s", e.Domain)
}

type InvalidDomainError struct {
	Domain string
	Reason string
}

func (e *InvalidDomainError) Error() string {
	return fmt.Sprintf("invalid domain %s: %s", e.Domain, e.Reason)
}

type TooFewContextsError struct {
	Got int
}

func (e *TooFewContextsError) Error() string {
	return fmt.Sprintf("comparison needs at least two contexts; given %d", e.Got)
}
