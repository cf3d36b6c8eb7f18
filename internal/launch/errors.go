package launch

import (
	"errors"
	"fmt"

	"tokenLauncher/internal/chain"
	"tokenLauncher/internal/pinning"
)

// Kind classifies why a launch failed.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindUpstream        Kind = "upstream"
	KindChainSimulation Kind = "chain_simulation"
	KindChainExecution  Kind = "chain_execution"
	KindInternal        Kind = "internal"
)

// ErrValidation is wrapped by every request validation failure.
var ErrValidation = errors.New("invalid launch request")

// Error is returned by Launcher implementations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf maps err to a Kind. A nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var launchErr *Error
	if errors.As(err, &launchErr) {
		return launchErr.Kind
	}
	var upstream *pinning.UpstreamError
	var simErr *chain.SimulationError
	var execErr *chain.ExecutionError
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &simErr):
		return KindChainSimulation
	case errors.As(err, &execErr):
		return KindChainExecution
	default:
		return KindInternal
	}
}

func validationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))}
}
