package firestore

import (
	"context"
	"errors"
	"time"

	"google.golang.org/api/iterator"

	pfirestore "github.com/praticos/api/internal/platform/firestore"
	"github.com/praticos/api/internal/repositories"
)

const defaultPingTimeout = 1500 * time.Millisecond

// HealthRepository implements repositories.HealthRepository by probing the
// Firestore backend with a bounded read.
type HealthRepository struct {
	provider *pfirestore.Provider
	timeout  time.Duration
}

// NewHealthRepository constructs a Firestore-backed health repository.
func NewHealthRepository(provider *pfirestore.Provider) (*HealthRepository, error) {
	if provider == nil {
		return nil, errors.New("health repository requires firestore provider")
	}
	return &HealthRepository{provider: provider, timeout: defaultPingTimeout}, nil
}

// Ping issues a single-document read against the store. An empty collection is
// healthy; only transport and backend failures count as unhealthy.
func (r *HealthRepository) Ping(ctx context.Context) error {
	if r == nil || r.provider == nil {
		return errors.New("health repository not initialised")
	}

	pingCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	client, err := r.provider.Client(pingCtx)
	if err != nil {
		return err
	}

	iter := client.Collection(companiesCollection).Limit(1).Documents(pingCtx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return pfirestore.WrapError("health.ping", err)
	}
	return nil
}

var _ repositories.HealthRepository = (*HealthRepository)(nil)
