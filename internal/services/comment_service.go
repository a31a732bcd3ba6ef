package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	domain "github.com/praticos/api/internal/domain"
	"github.com/praticos/api/internal/platform/requestctx"
	"github.com/praticos/api/internal/repositories"
)

// CommentServiceDeps bundles collaborators required to construct a CommentService.
type CommentServiceDeps struct {
	Comments    repositories.CommentRepository
	Events      OrderEventPublisher
	Clock       func() time.Time
	IDGenerator func() string
	Sanitizer   func(string) string
	// MaxLength bounds the sanitised comment text; zero applies the default.
	MaxLength int
}

const defaultCommentMaxLength = 2000

type commentService struct {
	comments  repositories.CommentRepository
	events    OrderEventPublisher
	clock     func() time.Time
	newID     func() string
	sanitize  func(string) string
	maxLength int
}

// NewCommentService wires dependencies into a concrete CommentService implementation.
func NewCommentService(deps CommentServiceDeps) (CommentService, error) {
	if deps.Comments == nil {
		return nil, errors.New("comment service: comment repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return commentIDPrefix + ulid.Make().String()
		}
	}
	sanitize := deps.Sanitizer
	if sanitize == nil {
		sanitize = sanitizeCustomerText
	}
	maxLength := deps.MaxLength
	if maxLength <= 0 {
		maxLength = defaultCommentMaxLength
	}

	return &commentService{
		comments:  deps.Comments,
		events:    deps.Events,
		clock:     clock,
		newID:     idGen,
		sanitize:  sanitize,
		maxLength: maxLength,
	}, nil
}

// Add appends a customer comment to the order thread and returns the stored
// entry, so callers can render it without a second read.
func (s *commentService) Add(ctx context.Context, cmd AddCommentCommand) (CommentView, error) {
	if !cmd.Token.Permissions.Has(domain.PermissionComment) {
		return CommentView{}, ErrPermissionDenied
	}

	text := s.sanitize(cmd.Text)
	if text == "" {
		return CommentView{}, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(text) > s.maxLength {
		return CommentView{}, fmt.Errorf("%w: comment text exceeds %d characters", ErrInvalidInput, s.maxLength)
	}

	comment := domain.Comment{
		ID:         s.newID(),
		AuthorType: domain.AuthorTypeCustomer,
		AuthorName: cmd.Token.Customer.Name,
		Text:       text,
		CreatedAt:  s.clock().UTC(),
	}

	stored, err := s.comments.Append(ctx, cmd.Token.OrderID, comment)
	if err != nil {
		if isNotFound(err) {
			return CommentView{}, ErrOrderNotFound
		}
		return CommentView{}, fmt.Errorf("comment service: append: %w", err)
	}

	if s.events != nil {
		go func(ctx context.Context) {
			eventCtx, cancel := context.WithTimeout(ctx, followUpTimeout)
			defer cancel()
			_ = s.events.PublishOrderEvent(eventCtx, OrderEvent{
				Type:       OrderEventCommentCreated,
				OrderID:    cmd.Token.OrderID,
				CommentID:  stored.ID,
				OccurredAt: stored.CreatedAt,
			})
		}(requestctx.Detach(ctx))
	}

	return CommentView{
		ID:         stored.ID,
		AuthorType: string(stored.AuthorType),
		AuthorName: stored.AuthorName,
		Text:       stored.Text,
		CreatedAt:  stored.CreatedAt,
	}, nil
}

// List returns the order's public thread in ascending creation order. An
// empty thread is an empty slice, not an error.
func (s *commentService) List(ctx context.Context, cmd ListCommentsCommand) ([]CommentView, error) {
	if !cmd.Token.Permissions.HasAny(domain.PermissionView, domain.PermissionComment) {
		return nil, ErrPermissionDenied
	}

	comments, err := s.comments.ListByOrder(ctx, cmd.Token.OrderID)
	if err != nil {
		return nil, fmt.Errorf("comment service: list: %w", err)
	}
	return publicCommentViews(comments), nil
}

var strictTextPolicy = bluemonday.StrictPolicy()

// sanitizeCustomerText strips markup and control characters from
// customer-submitted text and normalises spacing while preserving intentional
// newlines.
func sanitizeCustomerText(input string) string {
	stripped := html.UnescapeString(strictTextPolicy.Sanitize(input))
	trimmed := strings.TrimSpace(stripped)
	if trimmed == "" {
		return ""
	}

	normalized := strings.ReplaceAll(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\r", "\n")
	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) && r != '\n' {
				return -1
			}
			return r
		}, line)
		lines[i] = strings.Join(strings.Fields(line), " ")
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
