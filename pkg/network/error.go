package network

import "fmt"

type DuplicateConceptError struct {
	ID string
}

func (e *DuplicateConceptError) Error() string {
	return fmt.Sprintf("concept already exists: %s", e.ID)
}

type DuplicatePredicateError struct {
	Name string
}

func (e *DuplicatePredicateError) Error() string {
	return fmt.Sprintf("predicate already exists: %s", e.Name)
}

type UnknownPredicateError struct {
	Name string
}

func (e *UnknownPredicateError) Error() string {
	return fmt.Sprintf("no such predicate: %s", e.Name)
}

type UnknownConceptError struct {
	ID string
}

func (e *UnknownConceptError) Error() string {
	return fmt.Sprintf("no such concept: %s", e.ID)
}

type ArityError struct {
	Predicate string
	Wanted    int
	Got       int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("predicate %s takes %d arguments; given %d", e.Predicate, e.Wanted, e.Got)
}

type NoSuchFactError struct {
	FactID string
}

func (e *NoSuchFactError) Error() string {
	return fmt.Sprintf("no such fact: %s", e.FactID)
}

type ArityChangeError struct {
	Predicate string
	From      int
	To        int
	Facts     int
}

func (e *ArityChangeError) Error() string {
	return fmt.Sprintf(
		"cannot change arity of %s from %d to %d while %d facts use it",
		e.Predicate, e.From, e.To, e.Facts,
	)
}

type InvalidPredicateError struct {
	Name   string
	Reason string
}

func (e *InvalidPredicateError) Error() string {
	return fmt.Sprintf("invalid predicate %s: %s", e.Name, e.Reason)
}

type InvalidConceptError struct {
	ID     string
	Reason string
}

func (e *InvalidConceptError) Error() string {
	return fmt.Sprintf("invalid concept %q: %s", e.ID, e.Reason)
}
