package semnet

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vilterp/semnet/pkg/derive"
	"github.com/vilterp/semnet/pkg/forcing"
	"github.com/vilterp/semnet/pkg/logic"
	"github.com/vilterp/semnet/pkg/network"
	"github.com/vilterp/semnet/pkg/param"
	"github.com/vilterp/semnet/pkg/scenario"
)

// ErrorKind names the kind of err for reporting to remote callers.
func ErrorKind(err error) string {
	switch errors.Cause(err).(type) {
	case *network.ArityError:
		return "ArityError"
	case *network.UnknownPredicateError:
		return "UnknownPredicateError"
	case *network.UnknownConceptError:
		return "UnknownConceptReference"
	case *param.UnknownVariableError:
		return "UnknownVariableError"
	case *forcing.TooManyCompletionsError:
		return "TooManyCompletionsError"
	case *param.InvalidDomainAssignmentError:
		return "InvalidDomainAssignment"
	case *param.ContextIntegrityError:
		return "ContextIntegrityError"
	case *param.UnboundedDomainError:
		return "UnboundedDomainError"
	case *param.TooFewContextsError:
		return "BadRequest"
	case *logic.ParseError:
		return "ParseError"
	case *logic.EncodingError:
		return "EncodingError"
	case *derive.RuleError:
		return "RuleError"
	case *scenario.NoSuchScenarioError, *scenario.NoSuchContextError, *scenario.NoSuchFormulaError:
		return "NotFound"
	case *unknownOp, *badRequest:
		return "BadRequest"
	default:
		return "InternalError"
	}
}

type unknownOp struct {
	Op string
}

func (e *unknownOp) Error() string {
	return fmt.Sprintf("unknown op: %q", e.Op)
}

type badRequest struct {
	Reason string
}

func (e *badRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.Reason)
}

// RemoteError is an error reported by the server.
type RemoteError struct {
	Kind    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
