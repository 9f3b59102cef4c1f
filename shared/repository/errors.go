package repository

import (
	"errors"
	"karaoke/shared/constant"
	"karaoke/shared/failure"

	"github.com/lib/pq"
)

type operation int

const (
	opRead operation = iota
	opInsert
	opUpdate
	opDelete
)

var (
	errRequiredFilter = errors.New("required filter")
)

// TranslateError maps driver errors onto typed failures. Callers never
// inspect error strings; they switch on failure.Kind instead.
func TranslateError(err error, entity string) error {
	return translate(err, entity, opRead)
}

func translate(err error, entity string, op operation) error {
	if err == nil {
		return nil
	}

	var fail *failure.Failure
	if errors.As(err, &fail) {
		return err
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return failure.Persistence(err) //nolint:wrapcheck
	}

	switch string(pqErr.Code) {
	case constant.PqErrorCodeUniqueViolation:
		return failure.Conflict(entity + " already exists") //nolint:wrapcheck
	case constant.PqErrorCodeFkViolation:
		if op == opDelete {
			return failure.Conflict(entity + " is still referenced by other records") //nolint:wrapcheck
		}

		return failure.NotFound("referenced record for " + entity + " not found") //nolint:wrapcheck
	case constant.PqErrorCodeExclusionViolation:
		return failure.Conflict("time slot overlaps an existing booking") //nolint:wrapcheck
	case constant.PqErrorCodeCheckViolation:
		return failure.BadRequestFromString(entity + " violates constraint " + pqErr.Constraint) //nolint:wrapcheck
	default:
		return failure.Persistence(err) //nolint:wrapcheck
	}
}
