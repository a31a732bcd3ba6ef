package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/praticos/api/internal/domain"
	"github.com/praticos/api/internal/repositories"
)

type repoError struct {
	msg         string
	notFound    bool
	conflict    bool
	unavailable bool
}

func (e *repoError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return "repository error"
}

func (e *repoError) IsNotFound() bool    { return e.notFound }
func (e *repoError) IsConflict() bool    { return e.conflict }
func (e *repoError) IsUnavailable() bool { return e.unavailable }

var _ repositories.RepositoryError = (*repoError)(nil)

type inMemoryOrderRepo struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	err    error
}

func newInMemoryOrderRepo(orders ...domain.Order) *inMemoryOrderRepo {
	repo := &inMemoryOrderRepo{orders: map[string]domain.Order{}}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (r *inMemoryOrderRepo) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Order{}, r.err
	}
	order, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, &repoError{notFound: true}
	}
	return order, nil
}

func (r *inMemoryOrderRepo) ApplyTransition(_ context.Context, orderID string, decide repositories.TransitionFunc) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Order{}, r.err
	}
	current, ok := r.orders[orderID]
	if !ok {
		return domain.Order{}, &repoError{notFound: true}
	}

	mutation, err := decide(current)
	if err != nil {
		return domain.Order{}, err
	}

	current.Status = mutation.Status
	current.UpdatedAt = mutation.UpdatedAt
	if mutation.ApprovedAt != nil {
		current.ApprovedAt = mutation.ApprovedAt
	}
	if mutation.RejectedAt != nil {
		current.RejectedAt = mutation.RejectedAt
	}
	if mutation.RejectionReason != nil {
		current.RejectionReason = *mutation.RejectionReason
	}
	r.orders[orderID] = current
	return current, nil
}

func (r *inMemoryOrderRepo) get(orderID string) (domain.Order, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	return order, ok
}

type inMemoryCommentRepo struct {
	mu       sync.Mutex
	threads  map[string][]domain.Comment
	appended chan domain.Comment
	err      error
}

func newInMemoryCommentRepo() *inMemoryCommentRepo {
	return &inMemoryCommentRepo{
		threads:  map[string][]domain.Comment{},
		appended: make(chan domain.Comment, 16),
	}
}

func (r *inMemoryCommentRepo) Append(_ context.Context, orderID string, comment domain.Comment) (domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Comment{}, r.err
	}
	if comment.ID == "" {
		comment.ID = fmt.Sprintf("cmt_%d", len(r.threads[orderID])+1)
	}
	r.threads[orderID] = append(r.threads[orderID], comment)
	select {
	case r.appended <- comment:
	default:
	}
	return comment, nil
}

func (r *inMemoryCommentRepo) ListByOrder(_ context.Context, orderID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	thread := append([]domain.Comment(nil), r.threads[orderID]...)
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})
	return thread, nil
}

type inMemoryRatingRepo struct {
	mu      sync.Mutex
	ratings map[string]domain.Rating
	err     error
}

func newInMemoryRatingRepo() *inMemoryRatingRepo {
	return &inMemoryRatingRepo{ratings: map[string]domain.Rating{}}
}

func (r *inMemoryRatingRepo) Create(_ context.Context, rating domain.Rating) (domain.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Rating{}, r.err
	}
	if _, exists := r.ratings[rating.OrderID]; exists {
		return domain.Rating{}, &repoError{conflict: true}
	}
	rating.ID = rating.OrderID
	r.ratings[rating.OrderID] = rating
	return rating, nil
}

func (r *inMemoryRatingRepo) FindByOrder(_ context.Context, orderID string) (domain.Rating, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return domain.Rating{}, r.err
	}
	rating, ok := r.ratings[orderID]
	if !ok {
		return domain.Rating{}, &repoError{notFound: true}
	}
	return rating, nil
}

type stubTokenRepo struct {
	mu       sync.Mutex
	tokens   map[string]domain.ShareToken
	findErr  error
	views    map[string]int
	viewed   chan string
	approved []string
	rejected []string
	marked   chan string
}

func newStubTokenRepo(tokens ...domain.ShareToken) *stubTokenRepo {
	repo := &stubTokenRepo{
		tokens: map[string]domain.ShareToken{},
		views:  map[string]int{},
		viewed: make(chan string, 16),
		marked: make(chan string, 16),
	}
	for _, token := range tokens {
		repo.tokens[token.Token] = token
	}
	return repo
}

func (r *stubTokenRepo) FindByToken(_ context.Context, token string) (domain.ShareToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return domain.ShareToken{}, r.findErr
	}
	resolved, ok := r.tokens[token]
	if !ok {
		return domain.ShareToken{}, &repoError{notFound: true}
	}
	return resolved, nil
}

func (r *stubTokenRepo) RecordView(_ context.Context, token string, _ time.Time) error {
	r.mu.Lock()
	r.views[token]++
	r.mu.Unlock()
	select {
	case r.viewed <- token:
	default:
	}
	return nil
}

func (r *stubTokenRepo) MarkApproved(_ context.Context, token string, _ time.Time) error {
	r.mu.Lock()
	r.approved = append(r.approved, token)
	r.mu.Unlock()
	select {
	case r.marked <- token:
	default:
	}
	return nil
}

func (r *stubTokenRepo) MarkRejected(_ context.Context, token string, _ time.Time) error {
	r.mu.Lock()
	r.rejected = append(r.rejected, token)
	r.mu.Unlock()
	select {
	case r.marked <- token:
	default:
	}
	return nil
}

type stubCompanyRepo struct {
	company domain.Company
	err     error
}

func (r *stubCompanyRepo) Get(_ context.Context, _ string) (domain.Company, error) {
	if r.err != nil {
		return domain.Company{}, r.err
	}
	return r.company, nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []OrderEvent
	signal chan OrderEvent
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{signal: make(chan OrderEvent, 16)}
}

func (p *capturePublisher) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	select {
	case p.signal <- event:
	default:
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func waitForEvent(p *capturePublisher, timeout time.Duration) (OrderEvent, bool) {
	select {
	case event := <-p.signal:
		return event, true
	case <-time.After(timeout):
		return OrderEvent{}, false
	}
}
