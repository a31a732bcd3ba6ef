package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type stubHealthRepo struct {
	err error
}

func (s *stubHealthRepo) Ping(context.Context) error { return s.err }

func TestHealthzAlwaysOK(t *testing.T) {
	router := NewRouter(WithHealthHandlers(NewHealthHandlers(&stubHealthRepo{err: errors.New("down")})))

	rec, envelope := doRequest(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !envelope.Success {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
}

func TestReadyzReflectsStore(t *testing.T) {
	repo := &stubHealthRepo{}
	router := NewRouter(WithHealthHandlers(NewHealthHandlers(repo)))

	rec, _ := doRequest(t, router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: status %d", rec.Code)
	}

	repo.err = errors.New("store down")
	rec, envelope := doRequest(t, router, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unready: status %d", rec.Code)
	}
	if envelope.Error == nil || envelope.Error.Code != "store_unavailable" {
		t.Fatalf("unexpected envelope %#v", envelope)
	}
}
