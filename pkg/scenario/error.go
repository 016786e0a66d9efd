package scenario

import "fmt"

type NoSuchScenarioError struct {
	Name string
}

func (e *NoSuchScenarioError) Error() string {
	return fmt.Sprintf("no such scenario: %s", e.Name)
}

type NoSuchContextError struct {
	Scenario string
	Name     string
}

func (e *NoSuchContextError) Error() string {
	return fmt.Sprintf("scenario %s has no context %s", e.Scenario, e.Name)
}

type NoSuchFormulaError struct {
	Scenario string
	Name     string
}

func (e *NoSuchFormulaError) Error() string {
	return fmt.Sprintf("scenario %s has no formula %s", e.Scenario, e.Name)
}

type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s name: %s", e.Kind, e.Name)
}
