package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	domain "github.com/praticos/api/internal/domain"
	"github.com/praticos/api/internal/platform/requestctx"
	"github.com/praticos/api/internal/repositories"
)

const (
	defaultRatingMin              = 1
	defaultRatingMax              = 5
	defaultRatingCommentMaxLength = 500
)

// RatingServiceDeps bundles collaborators required to construct a RatingService.
type RatingServiceDeps struct {
	Ratings   repositories.RatingRepository
	Events    OrderEventPublisher
	Clock     func() time.Time
	Sanitizer func(string) string
	// Score bounds; zero values apply the defaults.
	MinScore         int
	MaxScore         int
	CommentMaxLength int
}

type ratingService struct {
	ratings          repositories.RatingRepository
	events           OrderEventPublisher
	clock            func() time.Time
	sanitize         func(string) string
	minScore         int
	maxScore         int
	commentMaxLength int
}

// NewRatingService wires dependencies into a concrete RatingService implementation.
func NewRatingService(deps RatingServiceDeps) (RatingService, error) {
	if deps.Ratings == nil {
		return nil, errors.New("rating service: rating repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	sanitize := deps.Sanitizer
	if sanitize == nil {
		sanitize = sanitizeCustomerText
	}
	minScore := deps.MinScore
	if minScore <= 0 {
		minScore = defaultRatingMin
	}
	maxScore := deps.MaxScore
	if maxScore <= minScore {
		maxScore = defaultRatingMax
	}
	commentMax := deps.CommentMaxLength
	if commentMax <= 0 {
		commentMax = defaultRatingCommentMaxLength
	}

	return &ratingService{
		ratings:          deps.Ratings,
		events:           deps.Events,
		clock:            clock,
		sanitize:         sanitize,
		minScore:         minScore,
		maxScore:         maxScore,
		commentMaxLength: commentMax,
	}, nil
}

// Submit records the customer's score for the order. The rating document is
// keyed by the order, so the first submission wins and every later one
// observes the conflict.
func (s *ratingService) Submit(ctx context.Context, cmd SubmitRatingCommand) (RatingView, error) {
	if cmd.Score < s.minScore || cmd.Score > s.maxScore {
		return RatingView{}, fmt.Errorf("%w: score must be between %d and %d", ErrInvalidInput, s.minScore, s.maxScore)
	}

	comment := s.sanitize(cmd.Comment)
	if utf8.RuneCountInString(comment) > s.commentMaxLength {
		return RatingView{}, fmt.Errorf("%w: rating comment exceeds %d characters", ErrInvalidInput, s.commentMaxLength)
	}

	rating := domain.Rating{
		OrderID:      cmd.Token.OrderID,
		Score:        cmd.Score,
		Comment:      comment,
		CustomerName: cmd.Token.Customer.Name,
		CreatedAt:    s.clock().UTC(),
	}

	stored, err := s.ratings.Create(ctx, rating)
	if err != nil {
		if isConflict(err) {
			return RatingView{}, ErrAlreadyRated
		}
		if isNotFound(err) {
			return RatingView{}, ErrOrderNotFound
		}
		return RatingView{}, fmt.Errorf("rating service: submit: %w", err)
	}

	if s.events != nil {
		go func(ctx context.Context) {
			eventCtx, cancel := context.WithTimeout(ctx, followUpTimeout)
			defer cancel()
			_ = s.events.PublishOrderEvent(eventCtx, OrderEvent{
				Type:       OrderEventRated,
				OrderID:    stored.OrderID,
				Score:      stored.Score,
				OccurredAt: stored.CreatedAt,
			})
		}(requestctx.Detach(ctx))
	}

	return RatingView{Score: stored.Score, Comment: stored.Comment, CreatedAt: stored.CreatedAt}, nil
}
