package firestore

import (
	"context"
	"errors"

	pfirestore "github.com/praticos/api/internal/platform/firestore"
	"github.com/praticos/api/internal/repositories"
)

// Registry implements repositories.Registry with Firestore-backed repositories
// sharing one provider.
type Registry struct {
	provider  *pfirestore.Provider
	orders    *OrderRepository
	tokens    *TokenRepository
	comments  *CommentRepository
	ratings   *RatingRepository
	companies *CompanyRepository
	health    *HealthRepository
}

// NewRegistry wires the repository set over the given provider.
func NewRegistry(provider *pfirestore.Provider) (*Registry, error) {
	if provider == nil {
		return nil, errors.New("registry requires firestore provider")
	}

	orders, err := NewOrderRepository(provider)
	if err != nil {
		return nil, err
	}
	tokens, err := NewTokenRepository(provider)
	if err != nil {
		return nil, err
	}
	comments, err := NewCommentRepository(provider)
	if err != nil {
		return nil, err
	}
	ratings, err := NewRatingRepository(provider)
	if err != nil {
		return nil, err
	}
	companies, err := NewCompanyRepository(provider)
	if err != nil {
		return nil, err
	}
	health, err := NewHealthRepository(provider)
	if err != nil {
		return nil, err
	}

	return &Registry{
		provider:  provider,
		orders:    orders,
		tokens:    tokens,
		comments:  comments,
		ratings:   ratings,
		companies: companies,
		health:    health,
	}, nil
}

// Close releases the underlying Firestore client.
func (r *Registry) Close(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return nil
	}
	return r.provider.Close(ctx)
}

// Orders returns the order repository.
func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

// Tokens returns the share token repository.
func (r *Registry) Tokens() repositories.TokenRepository { return r.tokens }

// Comments returns the comment repository.
func (r *Registry) Comments() repositories.CommentRepository { return r.comments }

// Ratings returns the rating repository.
func (r *Registry) Ratings() repositories.RatingRepository { return r.ratings }

// Companies returns the company repository.
func (r *Registry) Companies() repositories.CompanyRepository { return r.companies }

// Health returns the health repository.
func (r *Registry) Health() repositories.HealthRepository { return r.health }

var _ repositories.Registry = (*Registry)(nil)
