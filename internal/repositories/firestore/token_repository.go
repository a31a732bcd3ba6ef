package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/praticos/api/internal/domain"
	pfirestore "github.com/praticos/api/internal/platform/firestore"
	"github.com/praticos/api/internal/repositories"
)

const shareTokensCollection = "shareTokens"

// TokenRepository implements repositories.TokenRepository backed by Firestore.
// The token string is the document ID.
type TokenRepository struct {
	provider *pfirestore.Provider
	tokens   *pfirestore.BaseRepository[domain.ShareToken]
}

// NewTokenRepository constructs a Firestore-backed share token repository.
func NewTokenRepository(provider *pfirestore.Provider) (*TokenRepository, error) {
	if provider == nil {
		return nil, errors.New("token repository requires firestore provider")
	}
	return &TokenRepository{
		provider: provider,
		tokens:   pfirestore.NewBaseRepository[domain.ShareToken](provider, shareTokensCollection, nil),
	}, nil
}

// FindByToken fetches the share token document.
func (r *TokenRepository) FindByToken(ctx context.Context, token string) (domain.ShareToken, error) {
	if r == nil || r.provider == nil {
		return domain.ShareToken{}, errors.New("token repository not initialised")
	}

	doc, err := r.tokens.Get(ctx, strings.TrimSpace(token))
	if err != nil {
		return domain.ShareToken{}, err
	}
	resolved := doc.Data
	resolved.Token = doc.ID
	resolved.Permissions = resolved.Permissions.Normalize()
	return resolved, nil
}

// RecordView bumps the analytics counters. Callers treat failures as
// non-fatal; the view count is informational only.
func (r *TokenRepository) RecordView(ctx context.Context, token string, viewedAt time.Time) error {
	_, err := r.tokens.Update(ctx, strings.TrimSpace(token), []firestore.Update{
		{Path: "viewCount", Value: firestore.Increment(1)},
		{Path: "lastViewedAt", Value: viewedAt},
	})
	return err
}

// MarkApproved stamps the token with the approval time.
func (r *TokenRepository) MarkApproved(ctx context.Context, token string, approvedAt time.Time) error {
	_, err := r.tokens.Update(ctx, strings.TrimSpace(token), []firestore.Update{
		{Path: "approvedAt", Value: approvedAt},
	})
	return err
}

// MarkRejected stamps the token with the rejection time.
func (r *TokenRepository) MarkRejected(ctx context.Context, token string, rejectedAt time.Time) error {
	_, err := r.tokens.Update(ctx, strings.TrimSpace(token), []firestore.Update{
		{Path: "rejectedAt", Value: rejectedAt},
	})
	return err
}

var _ repositories.TokenRepository = (*TokenRepository)(nil)
