package firestore

import (
	"context"
	"errors"
	"strings"

	"github.com/praticos/api/internal/domain"
	pfirestore "github.com/praticos/api/internal/platform/firestore"
	"github.com/praticos/api/internal/repositories"
)

const ratingsCollection = "ratings"

// RatingRepository implements repositories.RatingRepository. The rating
// document is keyed by the order ID, which makes the at-most-once invariant a
// store-level guarantee: a second Create observes AlreadyExists.
type RatingRepository struct {
	provider *pfirestore.Provider
	ratings  *pfirestore.BaseRepository[domain.Rating]
}

// NewRatingRepository constructs a Firestore-backed rating repository.
func NewRatingRepository(provider *pfirestore.Provider) (*RatingRepository, error) {
	if provider == nil {
		return nil, errors.New("rating repository requires firestore provider")
	}
	return &RatingRepository{
		provider: provider,
		ratings:  pfirestore.NewBaseRepository[domain.Rating](provider, ratingsCollection, nil),
	}, nil
}

// Create persists the rating, failing with a conflict when one already exists
// for the order.
func (r *RatingRepository) Create(ctx context.Context, rating domain.Rating) (domain.Rating, error) {
	if r == nil || r.provider == nil {
		return domain.Rating{}, errors.New("rating repository not initialised")
	}
	orderID := strings.TrimSpace(rating.OrderID)
	if orderID == "" {
		return domain.Rating{}, pfirestore.WrapError("ratings.create", errors.New("firestore: order id is required"))
	}

	if _, err := r.ratings.Create(ctx, orderID, rating); err != nil {
		return domain.Rating{}, err
	}
	rating.ID = orderID
	return rating, nil
}

// FindByOrder fetches the rating for the order.
func (r *RatingRepository) FindByOrder(ctx context.Context, orderID string) (domain.Rating, error) {
	if r == nil || r.provider == nil {
		return domain.Rating{}, errors.New("rating repository not initialised")
	}

	doc, err := r.ratings.Get(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return domain.Rating{}, err
	}
	rating := doc.Data
	rating.ID = doc.ID
	return rating, nil
}

var _ repositories.RatingRepository = (*RatingRepository)(nil)
