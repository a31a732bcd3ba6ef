package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteDataEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]string{"id": "order-1"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["id"] != "order-1" {
		t.Fatalf("unexpected body %#v", body)
	}
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("invalid_link", "this link is invalid or has expired", http.StatusUnauthorized))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d", rec.Code)
	}

	var body struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Success {
		t.Fatal("success must be false")
	}
	if body.Error == nil || body.Error.Code != "invalid_link" {
		t.Fatalf("unexpected body %#v", body)
	}
}

func TestNewErrorSanitisesControlCharacters(t *testing.T) {
	err := NewError("bad\ncode", "line one\nline two", http.StatusBadRequest)
	if err.Code == "bad\ncode" {
		t.Fatalf("code not sanitised: %q", err.Code)
	}
	if err.Status != http.StatusBadRequest {
		t.Fatalf("status %d", err.Status)
	}
}
