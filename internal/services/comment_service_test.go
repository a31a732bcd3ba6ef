package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/praticos/api/internal/domain"
)

func commenterToken(orderID string, perms ...domain.Permission) domain.ShareToken {
	return domain.ShareToken{
		Token:       "ST_" + orderID,
		OrderID:     orderID,
		Customer:    domain.CustomerRef{Name: "Alex Costa"},
		Permissions: perms,
	}
}

func newTestCommentService(t *testing.T, comments *inMemoryCommentRepo, events *capturePublisher, now time.Time) CommentService {
	t.Helper()
	svc, err := NewCommentService(CommentServiceDeps{
		Comments: comments,
		Events:   events,
		Clock:    fixedClock(now),
	})
	if err != nil {
		t.Fatalf("NewCommentService: %v", err)
	}
	return svc
}

func TestCommentServiceAddAndListRoundTrip(t *testing.T) {
	now := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	comments := newInMemoryCommentRepo()
	events := newCapturePublisher()
	svc := newTestCommentService(t, comments, events, now)

	token := commenterToken("order-1", domain.PermissionComment)
	created, err := svc.Add(context.Background(), AddCommentCommand{Token: token, Text: "Hello"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.Text != "Hello" {
		t.Fatalf("unexpected text %q", created.Text)
	}
	if created.AuthorType != string(domain.AuthorTypeCustomer) {
		t.Fatalf("unexpected author type %q", created.AuthorType)
	}
	if created.AuthorName != "Alex Costa" {
		t.Fatalf("unexpected author name %q", created.AuthorName)
	}
	if created.ID == "" {
		t.Fatal("expected assigned id")
	}
	if created.CreatedAt.Before(now) {
		t.Fatalf("timestamp %v before request time %v", created.CreatedAt, now)
	}

	listed, err := svc.List(context.Background(), ListCommentsCommand{Token: token})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 || listed[0].Text != "Hello" {
		t.Fatalf("unexpected thread %#v", listed)
	}

	event, ok := waitForEvent(events, 2*time.Second)
	if !ok {
		t.Fatal("expected comment event")
	}
	if event.Type != OrderEventCommentCreated || event.CommentID != created.ID {
		t.Fatalf("unexpected event %#v", event)
	}
}

func TestCommentServiceAddRequiresCommentPermission(t *testing.T) {
	svc := newTestCommentService(t, newInMemoryCommentRepo(), newCapturePublisher(), time.Now())

	token := commenterToken("order-1", domain.PermissionView)
	if _, err := svc.Add(context.Background(), AddCommentCommand{Token: token, Text: "Hello"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestCommentServiceListPermissions(t *testing.T) {
	svc := newTestCommentService(t, newInMemoryCommentRepo(), newCapturePublisher(), time.Now())

	for _, perm := range []domain.Permission{domain.PermissionView, domain.PermissionComment} {
		if _, err := svc.List(context.Background(), ListCommentsCommand{Token: commenterToken("order-1", perm)}); err != nil {
			t.Fatalf("List with %s: %v", perm, err)
		}
	}

	if _, err := svc.List(context.Background(), ListCommentsCommand{Token: commenterToken("order-1", domain.PermissionApprove)}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestCommentServiceListEmptyThread(t *testing.T) {
	svc := newTestCommentService(t, newInMemoryCommentRepo(), newCapturePublisher(), time.Now())

	listed, err := svc.List(context.Background(), ListCommentsCommand{Token: commenterToken("order-1", domain.PermissionView)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listed == nil || len(listed) != 0 {
		t.Fatalf("expected empty slice, got %#v", listed)
	}
}

func TestCommentServiceAddValidation(t *testing.T) {
	comments := newInMemoryCommentRepo()
	svc := newTestCommentService(t, comments, newCapturePublisher(), time.Now())
	token := commenterToken("order-1", domain.PermissionComment)

	cases := map[string]string{
		"empty":       "",
		"whitespace":  "   \n\t  ",
		"markup only": "<script>alert(1)</script>",
		"too long":    strings.Repeat("a", 2001),
	}
	for name, text := range cases {
		if _, err := svc.Add(context.Background(), AddCommentCommand{Token: token, Text: text}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	if thread, _ := comments.ListByOrder(context.Background(), "order-1"); len(thread) != 0 {
		t.Fatalf("invalid comments must not be persisted, got %d", len(thread))
	}
}

func TestCommentServiceSanitisesMarkup(t *testing.T) {
	svc := newTestCommentService(t, newInMemoryCommentRepo(), newCapturePublisher(), time.Now())
	token := commenterToken("order-1", domain.PermissionComment)

	created, err := svc.Add(context.Background(), AddCommentCommand{Token: token, Text: "  <b>Hello</b>   there\r\nsecond   line  "})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if created.Text != "Hello there\nsecond line" {
		t.Fatalf("unexpected sanitised text %q", created.Text)
	}
}
