package vergraph

import "github.com/pkg/errors"

// Kind classifies the sentinel error a failed operation wraps. Callers use
// KindOf to recover it from any error this package returns.
type Kind int

const (
	// Unknown is returned only on defensive assertion failures that should
	// be unreachable (an impossible-path check in root rewiring).
	Unknown Kind = iota
	// Uninitialized means an input VersionName was required to be
	// initialized but was not.
	Uninitialized
	// InvalidParameter means the caller's claim contradicts stored state.
	InvalidParameter
	// NoSuchElement means the operation referenced a VersionName that is
	// not stored.
	NoSuchElement
	// CannotExceedLimit means Put would exceed max branches and no
	// eviction is possible.
	CannotExceedLimit
	// ParsingError means serialized input is malformed, internally
	// inconsistent, or exceeds its own declared limits.
	ParsingError
)

// Sentinel errors, one per Kind, in the style of the teacher's
// ErrVersionDoesNotExist: compare against these with errors.Cause(err).
var (
	ErrUnknown           = errors.New("vergraph: unknown error")
	ErrUninitialized     = errors.New("vergraph: version name is uninitialized")
	ErrInvalidParameter  = errors.New("vergraph: invalid parameter")
	ErrNoSuchElement     = errors.New("vergraph: no such element")
	ErrCannotExceedLimit = errors.New("vergraph: cannot exceed limit")
	ErrParsingError      = errors.New("vergraph: parsing error")
)

func sentinelFor(kind Kind) error {
	switch kind {
	case Uninitialized:
		return ErrUninitialized
	case InvalidParameter:
		return ErrInvalidParameter
	case NoSuchElement:
		return ErrNoSuchElement
	case CannotExceedLimit:
		return ErrCannotExceedLimit
	case ParsingError:
		return ErrParsingError
	default:
		return ErrUnknown
	}
}

// newError wraps the sentinel for kind with a formatted message, the way the
// teacher wraps ErrVersionDoesNotExist via errors.Wrap.
func newError(kind Kind, format string, args ...interface{}) error {
	return errors.Wrapf(sentinelFor(kind), format, args...)
}

// KindOf recovers the Kind a vergraph error was constructed with. It returns
// Unknown for any error not produced by this package.
func KindOf(err error) Kind {
	switch errors.Cause(err) {
	case ErrUninitialized:
		return Uninitialized
	case ErrInvalidParameter:
		return InvalidParameter
	case ErrNoSuchElement:
		return NoSuchElement
	case ErrCannotExceedLimit:
		return CannotExceedLimit
	case ErrParsingError:
		return ParsingError
	default:
		return Unknown
	}
}
