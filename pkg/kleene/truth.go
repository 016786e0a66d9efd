// Package kleene implements Kleene's strong three-valued logic (K3).
package kleene

import (
	"fmt"
	"strings"
)

// Truth is a three-valued truth value. The zero value is Unknown.
type Truth int8

const (
	Unknown Truth = iota
	False
	True
)

func FromBool(b bool) Truth {
	if b {
		return True
	}
	return False
}

func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// IsDetermined reports whether t is True or False.
func (t Truth) IsDetermined() bool {
	return t == True || t == False
}

func (t Truth) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Truth) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "true":
		*t = True
	case "false":
		*t = False
	case "unknown":
		*t = Unknown
	default:
		return fmt.Errorf("unknown truth value: %q", text)
	}
	return nil
}

func Not(t Truth) Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

// And is FALSE if any item is FALSE, else UNKNOWN if any is UNKNOWN, else
// TRUE. The empty conjunction is TRUE.
func And(items ...Truth) Truth {
	result := True
	for _, item := range items {
		if item == False {
			return False
		}
		if item == Unknown {
			result = Unknown
		}
	}
	return result
}

// Or is TRUE if any item is TRUE, else UNKNOWN if any is UNKNOWN, else
// FALSE. The empty disjunction is FALSE.
func Or(items ...Truth) Truth {
	result := False
	for _, item := range items {
		if item == True {
			return True
		}
		if item == Unknown {
			result = Unknown
		}
	}
	return result
}

func Implies(left, right Truth) Truth {
	switch left {
	case False:
		return True
	case True:
		return right
	default:
		if right == True {
			return True
		}
		return Unknown
	}
}
