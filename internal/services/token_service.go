package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/praticos/api/internal/domain"
	"github.com/praticos/api/internal/platform/requestctx"
	"github.com/praticos/api/internal/repositories"
)

const viewRecordTimeout = 5 * time.Second

// TokenServiceDeps bundles collaborators required to construct a TokenService.
type TokenServiceDeps struct {
	Tokens repositories.TokenRepository
	Clock  func() time.Time
	// RecordViews disables the analytics side effect when false is injected
	// explicitly; defaults to enabled.
	RecordViews *bool
}

type tokenService struct {
	tokens      repositories.TokenRepository
	clock       func() time.Time
	recordViews bool
}

// NewTokenService wires dependencies into a concrete TokenService implementation.
func NewTokenService(deps TokenServiceDeps) (TokenService, error) {
	if deps.Tokens == nil {
		return nil, errors.New("token service: token repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	recordViews := true
	if deps.RecordViews != nil {
		recordViews = *deps.RecordViews
	}

	return &tokenService{
		tokens:      deps.Tokens,
		clock:       clock,
		recordViews: recordViews,
	}, nil
}

// Resolve validates the raw token string and returns its scope. The analytics
// view counter is bumped on a detached context; its outcome never reaches the
// caller.
func (s *tokenService) Resolve(ctx context.Context, raw string) (domain.ShareToken, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.ShareToken{}, ErrInvalidToken
	}

	token, err := s.tokens.FindByToken(ctx, trimmed)
	if err != nil {
		if IsStoreUnavailable(err) {
			return domain.ShareToken{}, fmt.Errorf("token service: resolve: %w", err)
		}
		return domain.ShareToken{}, ErrInvalidToken
	}

	now := s.clock().UTC()
	if token.Expired(now) {
		return domain.ShareToken{}, ErrInvalidToken
	}

	if s.recordViews {
		go s.recordView(requestctx.Detach(ctx), trimmed, now)
	}

	return token, nil
}

func (s *tokenService) recordView(ctx context.Context, token string, viewedAt time.Time) {
	viewCtx, cancel := context.WithTimeout(ctx, viewRecordTimeout)
	defer cancel()

	if err := s.tokens.RecordView(viewCtx, token, viewedAt); err != nil {
		requestctx.Logger(viewCtx).Debug("record link view failed", zap.Error(err))
	}
}
