package firestore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/praticos/api/internal/domain"
	pfirestore "github.com/praticos/api/internal/platform/firestore"
	"github.com/praticos/api/internal/repositories"
)

const commentsSubcollection = "comments"

// CommentRepository implements repositories.CommentRepository. Comments live
// in a subcollection under their order document, so this repository addresses
// the client directly rather than going through a fixed collection path.
type CommentRepository struct {
	provider *pfirestore.Provider
}

// NewCommentRepository constructs a Firestore-backed comment repository.
func NewCommentRepository(provider *pfirestore.Provider) (*CommentRepository, error) {
	if provider == nil {
		return nil, errors.New("comment repository requires firestore provider")
	}
	return &CommentRepository{provider: provider}, nil
}

// Append adds a comment to the order's thread. A caller-assigned ID is
// honoured; otherwise Firestore assigns one.
func (r *CommentRepository) Append(ctx context.Context, orderID string, comment domain.Comment) (domain.Comment, error) {
	coll, err := r.threadRef(ctx, orderID)
	if err != nil {
		return domain.Comment{}, err
	}

	ref := coll.NewDoc()
	if id := strings.TrimSpace(comment.ID); id != "" {
		ref = coll.Doc(id)
	}
	if _, err := ref.Create(ctx, comment); err != nil {
		return domain.Comment{}, pfirestore.WrapError("comments.append", err)
	}
	comment.ID = ref.ID
	return comment, nil
}

// ListByOrder returns the order's full thread in ascending creation order.
func (r *CommentRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Comment, error) {
	coll, err := r.threadRef(ctx, orderID)
	if err != nil {
		return nil, err
	}

	iter := coll.OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	comments := []domain.Comment{}
	for {
		snapshot, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, pfirestore.WrapError("comments.list", err)
		}
		var comment domain.Comment
		if err := snapshot.DataTo(&comment); err != nil {
			return nil, fmt.Errorf("firestore: decode comment %s: %w", snapshot.Ref.ID, err)
		}
		comment.ID = snapshot.Ref.ID
		comments = append(comments, comment)
	}
	return comments, nil
}

func (r *CommentRepository) threadRef(ctx context.Context, orderID string) (*firestore.CollectionRef, error) {
	if r == nil || r.provider == nil {
		return nil, errors.New("comment repository not initialised")
	}
	id := strings.TrimSpace(orderID)
	if id == "" {
		return nil, pfirestore.WrapError("comments", errors.New("firestore: order id is required"))
	}
	client, err := r.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(ordersCollection).Doc(id).Collection(commentsSubcollection), nil
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)
