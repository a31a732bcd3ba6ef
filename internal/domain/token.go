package domain

import "time"

// Permission is one capability a share token can grant.
type Permission string

const (
	PermissionView    Permission = "view"
	PermissionApprove Permission = "approve"
	PermissionComment Permission = "comment"
)

// IsValid reports whether the permission belongs to the closed capability set.
func (p Permission) IsValid() bool {
	switch p {
	case PermissionView, PermissionApprove, PermissionComment:
		return true
	}
	return false
}

// PermissionSet is the subset of capabilities a token grants. Stored and
// serialised as an array of strings.
type PermissionSet []Permission

// Has reports whether the set contains the given permission.
func (s PermissionSet) Has(p Permission) bool {
	for _, candidate := range s {
		if candidate == p {
			return true
		}
	}
	return false
}

// HasAny reports whether the set contains at least one of the given permissions.
func (s PermissionSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// Normalize drops unknown values and duplicates, preserving first-seen order.
func (s PermissionSet) Normalize() PermissionSet {
	normalized := make(PermissionSet, 0, len(s))
	for _, p := range s {
		if !p.IsValid() || normalized.Has(p) {
			continue
		}
		normalized = append(normalized, p)
	}
	return normalized
}

// Strings returns the set as plain strings for serialisation.
func (s PermissionSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		out = append(out, string(p))
	}
	return out
}

// ShareToken is a capability granting scoped, unauthenticated access to one
// order. The token string doubles as the document ID. Its scope is immutable
// once issued; customer actions only touch the analytics counters and the
// approval markers.
type ShareToken struct {
	Token        string        `firestore:"-" json:"-"`
	OrderID      string        `firestore:"orderId" json:"order_id"`
	Customer     CustomerRef   `firestore:"customer,omitempty" json:"customer,omitempty"`
	Permissions  PermissionSet `firestore:"permissions" json:"permissions"`
	ExpiresAt    *time.Time    `firestore:"expiresAt,omitempty" json:"expires_at,omitempty"`
	ViewCount    int64         `firestore:"viewCount" json:"view_count"`
	LastViewedAt *time.Time    `firestore:"lastViewedAt,omitempty" json:"last_viewed_at,omitempty"`
	ApprovedAt   *time.Time    `firestore:"approvedAt,omitempty" json:"approved_at,omitempty"`
	RejectedAt   *time.Time    `firestore:"rejectedAt,omitempty" json:"rejected_at,omitempty"`
	CreatedAt    time.Time     `firestore:"createdAt" json:"created_at"`
}

// Expired reports whether the token has an expiry in the past relative to now.
func (t ShareToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
