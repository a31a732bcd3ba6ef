package secrets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type stubSecretClient struct {
	values map[string]string
	calls  int
	closed bool
}

func (s *stubSecretClient) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	s.calls++
	value, ok := s.values[req.GetName()]
	if !ok {
		return nil, status.Error(codes.NotFound, "secret not found")
	}
	return &secretmanagerpb.AccessSecretVersionResponse{
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(value)},
	}, nil
}

func (s *stubSecretClient) Close() error {
	s.closed = true
	return nil
}

func writeFallbackFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".secrets.local")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fallback file: %v", err)
	}
	return path
}

func TestFetcherResolvesFromSecretManager(t *testing.T) {
	client := &stubSecretClient{values: map[string]string{
		"projects/praticos-test/secrets/events-topic/versions/latest": "order-events",
	}}

	fetcher, err := NewFetcher(context.Background(),
		WithEnvironment("production"),
		WithProject("praticos-test"),
		WithClient(client),
	)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.Resolve(context.Background(), "events-topic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if value != "order-events" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestFetcherCachesResolvedValues(t *testing.T) {
	client := &stubSecretClient{values: map[string]string{
		"projects/praticos-test/secrets/events-topic/versions/latest": "order-events",
	}}

	fetcher, err := NewFetcher(context.Background(),
		WithEnvironment("production"),
		WithProject("praticos-test"),
		WithClient(client),
	)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := fetcher.Resolve(context.Background(), "events-topic"); err != nil {
			t.Fatalf("Resolve #%d: %v", i+1, err)
		}
	}
	if client.calls != 1 {
		t.Fatalf("expected a single client call, got %d", client.calls)
	}
}

func TestFetcherLocalEnvironmentUsesFallbackFile(t *testing.T) {
	path := writeFallbackFile(t, "# local secrets\nevents-topic=local-events\n\nmalformed line\nempty-key=\n")

	fetcher, err := NewFetcher(context.Background(),
		WithEnvironment("local"),
		WithFallbackFile(path),
	)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	if fetcher.client != nil {
		t.Fatal("local environment must not construct a secret manager client")
	}

	value, err := fetcher.Resolve(context.Background(), "events-topic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if value != "local-events" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestFetcherFallsBackWhenSecretMissing(t *testing.T) {
	path := writeFallbackFile(t, "events-topic=fallback-events\n")
	client := &stubSecretClient{values: map[string]string{}}

	fetcher, err := NewFetcher(context.Background(),
		WithEnvironment("staging"),
		WithProject("praticos-test"),
		WithClient(client),
		WithFallbackFile(path),
	)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	value, err := fetcher.Resolve(context.Background(), "events-topic")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if value != "fallback-events" {
		t.Fatalf("unexpected value %q", value)
	}
}

func TestFetcherUnknownSecret(t *testing.T) {
	fetcher, err := NewFetcher(context.Background(),
		WithEnvironment("local"),
		WithFallbackFile(filepath.Join(t.TempDir(), "missing-file")),
	)
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}

	if _, err := fetcher.Resolve(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown secret")
	}
	if _, err := fetcher.Resolve(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank secret name")
	}
}
