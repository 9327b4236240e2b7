// Package errors provides structured error handling for the game engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeNotFound indicates a referenced entity is absent.
	CodeNotFound Code = "NOT_FOUND"

	// CodeConflict indicates a version fence mismatch or concurrent
	// resource contention. Callers should re-read and retry.
	CodeConflict Code = "CONFLICT"

	// CodeValidation indicates malformed or inconsistent input.
	CodeValidation Code = "VALIDATION_ERROR"

	// CodeOwnershipMismatch indicates items spanning more than one owner.
	CodeOwnershipMismatch Code = "OWNERSHIP_MISMATCH"

	// CodeNoMatchingRecipe indicates no recipe matches the submitted items.
	CodeNoMatchingRecipe Code = "NO_MATCHING_RECIPE"

	// CodePropagation indicates a downstream cascade failed and was rolled back.
	CodePropagation Code = "PROPAGATION_ERROR"

	// CodeTimeout indicates a transaction exceeded its bounded duration.
	CodeTimeout Code = "TIMEOUT"
)

// GRPCCode maps domain codes to gRPC status codes. The gRPC code space is the
// transport-neutral taxonomy; the REST layer derives HTTP statuses from it.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeNotFound:
		return codes.NotFound

	case CodeConflict:
		return codes.Aborted

	case CodeValidation:
		return codes.InvalidArgument

	case CodeOwnershipMismatch:
		return codes.PermissionDenied

	case CodeNoMatchingRecipe,
		CodePropagation:
		return codes.FailedPrecondition

	case CodeTimeout:
		return codes.DeadlineExceeded

	default:
		return codes.Internal
	}
}
