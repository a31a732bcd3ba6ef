package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile      = ".env"
	defaultPort         = "8080"
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 120 * time.Second
	defaultEnvironment  = "local"

	defaultCommentMaxLength       = 2000
	defaultRatingCommentMaxLength = 500
	defaultRatingMin              = 1
	defaultRatingMax              = 5
	defaultCompanyDocID           = "default"

	secretPrefix = "secret://"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	Firestore FirestoreConfig
	PubSub    PubSubConfig
	Public    PublicConfig
	Security  SecurityConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// PubSubConfig names the topic that order lifecycle events are published to.
// An empty topic disables event publishing.
type PubSubConfig struct {
	ProjectID    string
	EventsTopic  string
	EmulatorHost string
}

// PublicConfig tunes the customer-facing order surface.
type PublicConfig struct {
	CompanyDocID           string
	CommentMaxLength       int
	RatingCommentMaxLength int
	RatingMin              int
	RatingMax              int
}

// SecurityConfig groups deployment environment metadata.
type SecurityConfig struct {
	Environment string
}

// SecretResolver resolves secret:// references found in environment values.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, ref string) (string, error)
}

// SecretResolverFunc adapts a function to the SecretResolver interface.
type SecretResolverFunc func(context.Context, string) (string, error)

// ResolveSecret implements SecretResolver.
func (f SecretResolverFunc) ResolveSecret(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ValidationError reports configuration fields that failed validation.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	sorted := append([]string(nil), e.fields...)
	sort.Strings(sorted)
	return "invalid configuration: " + strings.Join(sorted, ", ")
}

// Fields returns the invalid field names.
func (e *ValidationError) Fields() []string {
	return append([]string(nil), e.fields...)
}

// Option customises the loader behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile   string
	envMap    map[string]string
	systemEnv bool
	resolver  SecretResolver
}

// WithEnvFile overrides the .env file consulted during loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies explicit values taking precedence over the environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading the process environment, useful in tests.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.systemEnv = false
	}
}

// WithSecretResolver installs the resolver used for secret:// references.
func WithSecretResolver(resolver SecretResolver) Option {
	return func(o *loaderOptions) {
		o.resolver = resolver
	}
}

// Load assembles the configuration from the environment, an optional .env
// file, and any secret references, then validates it.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, systemEnv: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	values, err := environmentValues(options)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}

	cfg := Config{
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "FIRESTORE_PROJECT_ID", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
			EmulatorHost: stringWithDefault(lookup, "FIRESTORE_EMULATOR_HOST", ""),
		},
		PubSub: PubSubConfig{
			ProjectID:    stringWithDefault(lookup, "PUBSUB_PROJECT_ID", stringWithDefault(lookup, "GOOGLE_CLOUD_PROJECT", "")),
			EventsTopic:  stringWithDefault(lookup, "PUBSUB_ORDER_EVENTS_TOPIC", ""),
			EmulatorHost: stringWithDefault(lookup, "PUBSUB_EMULATOR_HOST", ""),
		},
		Public: PublicConfig{
			CompanyDocID:           stringWithDefault(lookup, "PUBLIC_COMPANY_DOC_ID", defaultCompanyDocID),
			CommentMaxLength:       intWithDefault(lookup, "PUBLIC_COMMENT_MAX_LENGTH", defaultCommentMaxLength),
			RatingCommentMaxLength: intWithDefault(lookup, "PUBLIC_RATING_COMMENT_MAX_LENGTH", defaultRatingCommentMaxLength),
			RatingMin:              intWithDefault(lookup, "PUBLIC_RATING_MIN", defaultRatingMin),
			RatingMax:              intWithDefault(lookup, "PUBLIC_RATING_MAX", defaultRatingMax),
		},
		Security: SecurityConfig{
			Environment: strings.ToLower(stringWithDefault(lookup, "ENVIRONMENT", defaultEnvironment)),
		},
	}

	if err := resolveSecrets(ctx, &cfg, options.resolver); err != nil {
		return Config{}, err
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func environmentValues(options loaderOptions) (map[string]string, error) {
	values := map[string]string{}

	if options.envFile != "" {
		fileValues, err := loadDotEnv(options.envFile)
		if err != nil {
			return nil, err
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	if options.systemEnv {
		for _, entry := range os.Environ() {
			if idx := strings.Index(entry, "="); idx > 0 {
				values[entry[:idx]] = entry[idx+1:]
			}
		}
	}

	for k, v := range options.envMap {
		values[k] = v
	}

	return values, nil
}

func resolveSecrets(ctx context.Context, cfg *Config, resolver SecretResolver) error {
	targets := []*string{
		&cfg.Firestore.ProjectID,
		&cfg.PubSub.ProjectID,
		&cfg.PubSub.EventsTopic,
	}
	for _, target := range targets {
		value := strings.TrimSpace(*target)
		if !strings.HasPrefix(value, secretPrefix) {
			continue
		}
		if resolver == nil {
			return fmt.Errorf("config: secret reference %q requires a secret resolver", redactSecretRef(value))
		}
		resolved, err := resolver.ResolveSecret(ctx, strings.TrimPrefix(value, secretPrefix))
		if err != nil {
			return fmt.Errorf("config: resolve %s: %w", redactSecretRef(value), err)
		}
		*target = resolved
	}
	return nil
}

func validateConfig(cfg Config) error {
	var invalid []string

	if strings.TrimSpace(cfg.Server.Port) == "" {
		invalid = append(invalid, "server.port")
	}
	if cfg.Server.ReadTimeout <= 0 {
		invalid = append(invalid, "server.read_timeout")
	}
	if cfg.Server.WriteTimeout <= 0 {
		invalid = append(invalid, "server.write_timeout")
	}
	if cfg.Public.CommentMaxLength <= 0 {
		invalid = append(invalid, "public.comment_max_length")
	}
	if cfg.Public.RatingMin < 0 || cfg.Public.RatingMax <= cfg.Public.RatingMin {
		invalid = append(invalid, "public.rating_bounds")
	}

	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

func redactSecretRef(value string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), secretPrefix)
	if len(trimmed) <= 4 {
		return secretPrefix + "****"
	}
	return secretPrefix + trimmed[:4] + "****"
}

func loadDotEnv(path string) (map[string]string, error) {
	values := map[string]string{}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("config: open env file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key != "" {
			values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read env file %s: %w", path, err)
	}

	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	value, ok := lookup(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
