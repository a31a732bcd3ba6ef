package domain

import (
	"testing"
	"time"
)

func TestPermissionSetHas(t *testing.T) {
	set := PermissionSet{PermissionView, PermissionComment}
	if !set.Has(PermissionView) || !set.Has(PermissionComment) {
		t.Fatal("expected granted permissions present")
	}
	if set.Has(PermissionApprove) {
		t.Fatal("approve was not granted")
	}
	if !set.HasAny(PermissionApprove, PermissionComment) {
		t.Fatal("HasAny should match comment")
	}
	if set.HasAny(PermissionApprove) {
		t.Fatal("HasAny must not match missing permission")
	}
}

func TestPermissionSetNormalize(t *testing.T) {
	set := PermissionSet{PermissionView, Permission("admin"), PermissionView, PermissionApprove}
	normalized := set.Normalize()
	if len(normalized) != 2 {
		t.Fatalf("expected 2 permissions, got %v", normalized)
	}
	if !normalized.Has(PermissionView) || !normalized.Has(PermissionApprove) {
		t.Fatalf("unexpected set %v", normalized)
	}
}

func TestShareTokenExpired(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (ShareToken{}).Expired(now) {
		t.Fatal("token without expiry never expires")
	}
	if (ShareToken{ExpiresAt: &future}).Expired(now) {
		t.Fatal("future expiry is not expired")
	}
	if !(ShareToken{ExpiresAt: &past}).Expired(now) {
		t.Fatal("past expiry is expired")
	}
}
