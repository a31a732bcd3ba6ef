package repositories

import (
	"context"
	"time"

	domain "github.com/praticos/api/internal/domain"
)

// Registry exposes typed repository accessors and lifecycle hooks for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Orders() OrderRepository
	Tokens() TokenRepository
	Comments() CommentRepository
	Ratings() RatingRepository
	Companies() CompanyRepository
	Health() HealthRepository
}

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderMutation describes the fields a status transition writes. Status and its
// timestamps are applied in a single atomic update.
type OrderMutation struct {
	Status          domain.OrderStatus
	ApprovedAt      *time.Time
	RejectedAt      *time.Time
	RejectionReason *string
	UpdatedAt       time.Time
}

// TransitionFunc inspects the current order inside the transaction and decides
// the mutation to apply. Returning an error aborts the transaction without
// writing. The function may be invoked more than once if the transaction
// retries, so it must be free of side effects.
type TransitionFunc func(current domain.Order) (OrderMutation, error)

// OrderRepository persists orders and applies status transitions atomically.
type OrderRepository interface {
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	// ApplyTransition runs decide against the freshly read order inside a
	// transaction and writes the returned mutation. It returns the order as
	// written.
	ApplyTransition(ctx context.Context, orderID string, decide TransitionFunc) (domain.Order, error)
}

// TokenRepository reads share tokens and records analytics markers. Token
// scope is immutable; only the counters and approval markers are ever written.
type TokenRepository interface {
	FindByToken(ctx context.Context, token string) (domain.ShareToken, error)
	RecordView(ctx context.Context, token string, viewedAt time.Time) error
	MarkApproved(ctx context.Context, token string, approvedAt time.Time) error
	MarkRejected(ctx context.Context, token string, rejectedAt time.Time) error
}

// CommentRepository owns the append-only comment thread attached to an order.
type CommentRepository interface {
	Append(ctx context.Context, orderID string, comment domain.Comment) (domain.Comment, error)
	// ListByOrder returns the full thread in ascending creation order,
	// internal comments included; callers filter for the public surface.
	ListByOrder(ctx context.Context, orderID string) ([]domain.Comment, error)
}

// RatingRepository persists the at-most-once rating for an order. Create fails
// with a conflict when a rating already exists.
type RatingRepository interface {
	Create(ctx context.Context, rating domain.Rating) (domain.Rating, error)
	FindByOrder(ctx context.Context, orderID string) (domain.Rating, error)
}

// CompanyRepository reads the shop display document shown on the public view.
type CompanyRepository interface {
	Get(ctx context.Context, companyID string) (domain.Company, error)
}

// HealthRepository verifies connectivity with the backing store.
type HealthRepository interface {
	Ping(ctx context.Context) error
}
