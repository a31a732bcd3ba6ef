package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/praticos/api/internal/domain"
)

func TestTokenServiceResolveReturnsScope(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	repo := newStubTokenRepo(domain.ShareToken{
		Token:       "ST_abc123",
		OrderID:     "order-1",
		Permissions: domain.PermissionSet{domain.PermissionView, domain.PermissionApprove},
	})

	svc, err := NewTokenService(TokenServiceDeps{Tokens: repo, Clock: fixedClock(now)})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := svc.Resolve(context.Background(), "  ST_abc123  ")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if token.OrderID != "order-1" {
		t.Fatalf("unexpected order id %q", token.OrderID)
	}
	if !token.Permissions.Has(domain.PermissionApprove) {
		t.Fatalf("expected approve permission, got %v", token.Permissions)
	}

	select {
	case <-repo.viewed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected view to be recorded")
	}
}

func TestTokenServiceResolveUniformFailure(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	repo := newStubTokenRepo(domain.ShareToken{
		Token:       "ST_expired",
		OrderID:     "order-1",
		Permissions: domain.PermissionSet{domain.PermissionView},
		ExpiresAt:   &expired,
	})

	svc, err := NewTokenService(TokenServiceDeps{Tokens: repo, Clock: fixedClock(now)})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	cases := map[string]string{
		"empty":     "",
		"blank":     "   ",
		"malformed": "not a token at all // %",
		"unknown":   "ST_nobody",
		"expired":   "ST_expired",
	}
	for name, raw := range cases {
		if _, err := svc.Resolve(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestTokenServiceResolveSurfacesOutage(t *testing.T) {
	repo := newStubTokenRepo()
	repo.findErr = &repoError{unavailable: true}

	svc, err := NewTokenService(TokenServiceDeps{Tokens: repo})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	_, err = svc.Resolve(context.Background(), "ST_any")
	if errors.Is(err, ErrInvalidToken) {
		t.Fatalf("outage must not look like an invalid link: %v", err)
	}
	if !IsStoreUnavailable(err) {
		t.Fatalf("expected store unavailable, got %v", err)
	}
}

func TestTokenServiceResolveWithoutExpiryNeverExpires(t *testing.T) {
	repo := newStubTokenRepo(domain.ShareToken{
		Token:       "ST_forever",
		OrderID:     "order-2",
		Permissions: domain.PermissionSet{domain.PermissionView},
	})
	disabled := false

	svc, err := NewTokenService(TokenServiceDeps{Tokens: repo, RecordViews: &disabled})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	if _, err := svc.Resolve(context.Background(), "ST_forever"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	select {
	case token := <-repo.viewed:
		t.Fatalf("view recording disabled, got view for %q", token)
	case <-time.After(50 * time.Millisecond):
	}
}
