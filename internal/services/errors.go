package services

import (
	"errors"
	"fmt"

	"github.com/praticos/api/internal/repositories"
)

var (
	// ErrInvalidToken covers every token resolution failure: malformed,
	// unknown, expired, revoked. Callers get one uniform condition so the
	// lookup cannot be used as a token-guessing oracle.
	ErrInvalidToken = errors.New("order link: invalid or expired")
	// ErrPermissionDenied indicates the token lacks the scope for the action.
	ErrPermissionDenied = errors.New("order link: permission denied")
	// ErrInvalidTransition is returned when approve/reject is attempted from a
	// non-quote status.
	ErrInvalidTransition = errors.New("order: invalid status transition")
	// ErrAlreadyApproved is the transition conflict observed when the order was
	// approved earlier, by this or a racing request.
	ErrAlreadyApproved = fmt.Errorf("%w: already approved", ErrInvalidTransition)
	// ErrAlreadyRejected is the transition conflict observed when the order was
	// already canceled through a prior rejection.
	ErrAlreadyRejected = fmt.Errorf("%w: already rejected", ErrInvalidTransition)
	// ErrInvalidInput indicates validation failures on customer-supplied data.
	ErrInvalidInput = errors.New("order: invalid input")
	// ErrAlreadyRated indicates a second rating submission for the same order.
	ErrAlreadyRated = errors.New("order: already rated")
	// ErrOrderNotFound indicates the token references an order that no longer exists.
	ErrOrderNotFound = errors.New("order: not found")
)

// IsStoreUnavailable reports whether the error represents a transient backend
// outage that the caller may retry.
func IsStoreUnavailable(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsUnavailable()
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}

func isConflict(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsConflict()
}
