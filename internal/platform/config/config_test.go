package config

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.Server.ReadTimeout)
	}
	if cfg.Public.CommentMaxLength != 2000 {
		t.Fatalf("unexpected comment max %d", cfg.Public.CommentMaxLength)
	}
	if cfg.Public.RatingMin != 1 || cfg.Public.RatingMax != 5 {
		t.Fatalf("unexpected rating bounds %d..%d", cfg.Public.RatingMin, cfg.Public.RatingMax)
	}
	if cfg.Public.CompanyDocID != "default" {
		t.Fatalf("unexpected company doc %q", cfg.Public.CompanyDocID)
	}
	if cfg.Security.Environment != "local" {
		t.Fatalf("unexpected environment %q", cfg.Security.Environment)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"PORT":                      "9090",
		"SERVER_READ_TIMEOUT":       "5s",
		"FIRESTORE_PROJECT_ID":      "praticos-prod",
		"PUBSUB_ORDER_EVENTS_TOPIC": "order-events",
		"PUBLIC_COMMENT_MAX_LENGTH": "500",
		"PUBLIC_RATING_MAX":         "10",
		"ENVIRONMENT":               "Production",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("unexpected read timeout %v", cfg.Server.ReadTimeout)
	}
	if cfg.Firestore.ProjectID != "praticos-prod" {
		t.Fatalf("unexpected firestore project %q", cfg.Firestore.ProjectID)
	}
	if cfg.PubSub.EventsTopic != "order-events" {
		t.Fatalf("unexpected topic %q", cfg.PubSub.EventsTopic)
	}
	if cfg.Public.CommentMaxLength != 500 {
		t.Fatalf("unexpected comment max %d", cfg.Public.CommentMaxLength)
	}
	if cfg.Public.RatingMax != 10 {
		t.Fatalf("unexpected rating max %d", cfg.Public.RatingMax)
	}
	if cfg.Security.Environment != "production" {
		t.Fatalf("environment not lowercased: %q", cfg.Security.Environment)
	}
}

func TestLoadGoogleCloudProjectFallback(t *testing.T) {
	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"GOOGLE_CLOUD_PROJECT": "praticos-shared",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Firestore.ProjectID != "praticos-shared" || cfg.PubSub.ProjectID != "praticos-shared" {
		t.Fatalf("fallback not applied: %q / %q", cfg.Firestore.ProjectID, cfg.PubSub.ProjectID)
	}
}

func TestLoadResolvesSecretReferences(t *testing.T) {
	resolver := SecretResolverFunc(func(_ context.Context, ref string) (string, error) {
		if ref != "firestore-project" {
			t.Fatalf("unexpected ref %q", ref)
		}
		return "resolved-project", nil
	})

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithSecretResolver(resolver), WithEnvMap(map[string]string{
		"FIRESTORE_PROJECT_ID": "secret://firestore-project",
	}))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Firestore.ProjectID != "resolved-project" {
		t.Fatalf("secret not resolved: %q", cfg.Firestore.ProjectID)
	}
}

func TestLoadSecretReferenceWithoutResolverFails(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"FIRESTORE_PROJECT_ID": "secret://firestore-project",
	}))
	if err == nil {
		t.Fatal("expected error for unresolved secret reference")
	}
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithEnvMap(map[string]string{
		"PUBLIC_RATING_MIN": "5",
		"PUBLIC_RATING_MAX": "2",
	}))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	fields := validation.Fields()
	if len(fields) != 1 || fields[0] != "public.rating_bounds" {
		t.Fatalf("unexpected fields %v", fields)
	}
}
