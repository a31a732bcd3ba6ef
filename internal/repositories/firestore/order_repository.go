package firestore

import (
	"context"
	"errors"
	"strings"

	"cloud.google.com/go/firestore"

	"github.com/praticos/api/internal/domain"
	pfirestore "github.com/praticos/api/internal/platform/firestore"
	"github.com/praticos/api/internal/repositories"
)

const ordersCollection = "orders"

// OrderRepository implements repositories.OrderRepository backed by Firestore.
type OrderRepository struct {
	provider *pfirestore.Provider
	orders   *pfirestore.BaseRepository[domain.Order]
}

// NewOrderRepository constructs a Firestore-backed order repository.
func NewOrderRepository(provider *pfirestore.Provider) (*OrderRepository, error) {
	if provider == nil {
		return nil, errors.New("order repository requires firestore provider")
	}
	return &OrderRepository{
		provider: provider,
		orders:   pfirestore.NewBaseRepository[domain.Order](provider, ordersCollection, nil),
	}, nil
}

// FindByID fetches the order document.
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}

	doc, err := r.orders.Get(ctx, strings.TrimSpace(orderID))
	if err != nil {
		return domain.Order{}, err
	}
	order := doc.Data
	order.ID = doc.ID
	return order, nil
}

// ApplyTransition reads the order inside a transaction, lets decide inspect the
// current state, and writes the returned mutation atomically. The status and
// its timestamps land in a single update, so a racing reader never observes a
// mixed write.
func (r *OrderRepository) ApplyTransition(ctx context.Context, orderID string, decide repositories.TransitionFunc) (domain.Order, error) {
	if r == nil || r.provider == nil {
		return domain.Order{}, errors.New("order repository not initialised")
	}
	if decide == nil {
		return domain.Order{}, errors.New("order repository requires a transition func")
	}

	id := strings.TrimSpace(orderID)
	var result domain.Order

	err := r.provider.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		ref, err := r.orders.DocumentRef(ctx, id)
		if err != nil {
			return err
		}

		snapshot, err := tx.Get(ref)
		if err != nil {
			return err
		}
		doc, err := r.orders.DecodeDocument(ctx, snapshot)
		if err != nil {
			return err
		}
		current := doc.Data
		current.ID = doc.ID

		mutation, err := decide(current)
		if err != nil {
			return err
		}

		updates := []firestore.Update{
			{Path: "status", Value: mutation.Status},
			{Path: "updatedAt", Value: mutation.UpdatedAt},
		}
		if mutation.ApprovedAt != nil {
			updates = append(updates, firestore.Update{Path: "approvedAt", Value: *mutation.ApprovedAt})
		}
		if mutation.RejectedAt != nil {
			updates = append(updates, firestore.Update{Path: "rejectedAt", Value: *mutation.RejectedAt})
		}
		if mutation.RejectionReason != nil {
			updates = append(updates, firestore.Update{Path: "rejectionReason", Value: *mutation.RejectionReason})
		}
		if err := tx.Update(ref, updates); err != nil {
			return err
		}

		result = current
		result.Status = mutation.Status
		result.UpdatedAt = mutation.UpdatedAt
		if mutation.ApprovedAt != nil {
			result.ApprovedAt = mutation.ApprovedAt
		}
		if mutation.RejectedAt != nil {
			result.RejectedAt = mutation.RejectedAt
		}
		if mutation.RejectionReason != nil {
			result.RejectionReason = *mutation.RejectionReason
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, pfirestore.WrapError("orders.transition", err)
	}
	return result, nil
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)
