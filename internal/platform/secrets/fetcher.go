package secrets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultEnvironment  = "local"
	defaultFallbackPath = ".secrets.local"
)

var secretManagerClientFactory = func(ctx context.Context, opts ...option.ClientOption) (*secretmanager.Client, error) {
	return secretmanager.NewClient(ctx, opts...)
}

type secretManagerClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// Fetcher resolves secret references through Google Secret Manager, with a
// local fallback file for the local environment and an in-process cache.
type Fetcher struct {
	client     secretManagerClient
	ownsClient bool

	logger    *zap.Logger
	env       string
	projectID string

	fallbackPath string
	fallbackOnce sync.Once
	fallbackVals map[string]string
	fallbackErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// Option customises Fetcher construction.
type Option func(*fetcherConfig)

type fetcherConfig struct {
	logger       *zap.Logger
	env          string
	projectID    string
	fallbackPath string
	client       secretManagerClient
	clientOpts   []option.ClientOption
}

// WithLogger sets the logger used for diagnostic output.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *fetcherConfig) {
		cfg.logger = logger
	}
}

// WithEnvironment selects the environment; the local environment reads the fallback file only.
func WithEnvironment(env string) Option {
	return func(cfg *fetcherConfig) {
		cfg.env = strings.ToLower(strings.TrimSpace(env))
	}
}

// WithProject sets the project hosting the secrets.
func WithProject(projectID string) Option {
	return func(cfg *fetcherConfig) {
		cfg.projectID = strings.TrimSpace(projectID)
	}
}

// WithFallbackFile overrides the local fallback file path.
func WithFallbackFile(path string) Option {
	return func(cfg *fetcherConfig) {
		cfg.fallbackPath = path
	}
}

// WithClient injects a pre-built Secret Manager client, used by tests.
func WithClient(client secretManagerClient) Option {
	return func(cfg *fetcherConfig) {
		cfg.client = client
	}
}

// WithClientOptions appends options used when the fetcher constructs its own client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(cfg *fetcherConfig) {
		cfg.clientOpts = append(cfg.clientOpts, opts...)
	}
}

// NewFetcher constructs a Fetcher for the given environment.
func NewFetcher(ctx context.Context, opts ...Option) (*Fetcher, error) {
	cfg := fetcherConfig{
		env:          defaultEnvironment,
		fallbackPath: defaultFallbackPath,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fetcher := &Fetcher{
		client:       cfg.client,
		logger:       logger,
		env:          cfg.env,
		projectID:    cfg.projectID,
		fallbackPath: cfg.fallbackPath,
		cache:        map[string]string{},
	}

	if fetcher.client == nil && fetcher.env != defaultEnvironment {
		client, err := secretManagerClientFactory(ctx, cfg.clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("secrets: create client: %w", err)
		}
		fetcher.client = client
		fetcher.ownsClient = true
	}

	return fetcher, nil
}

// Resolve satisfies config.SecretResolverFunc: it maps a secret name to its
// current value, consulting the cache, Secret Manager, and the local fallback
// file in that order.
func (f *Fetcher) Resolve(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secrets: secret name is required")
	}

	f.mu.RLock()
	if cached, ok := f.cache[name]; ok {
		f.mu.RUnlock()
		return cached, nil
	}
	f.mu.RUnlock()

	value, err := f.fetch(ctx, name)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.cache[name] = value
	f.mu.Unlock()
	return value, nil
}

func (f *Fetcher) fetch(ctx context.Context, name string) (string, error) {
	if f.client != nil {
		value, err := f.accessSecret(ctx, name)
		if err == nil {
			return value, nil
		}
		if status.Code(err) != codes.NotFound {
			return "", err
		}
		f.logger.Debug("secret not found in secret manager, trying fallback", zap.String("secret", redactName(name)))
	}

	value, ok, err := f.fallbackValue(name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("secrets: %s not found", redactName(name))
	}
	return value, nil
}

func (f *Fetcher) accessSecret(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(f.projectID) == "" {
		return "", errors.New("secrets: project id is required")
	}
	resource := name
	if !strings.HasPrefix(resource, "projects/") {
		resource = fmt.Sprintf("projects/%s/secrets/%s/versions/latest", f.projectID, name)
	}
	resp, err := f.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: resource})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Payload == nil {
		return "", fmt.Errorf("secrets: empty payload for %s", redactName(name))
	}
	return string(resp.Payload.Data), nil
}

func (f *Fetcher) fallbackValue(name string) (string, bool, error) {
	f.fallbackOnce.Do(func() {
		f.fallbackVals, f.fallbackErr = loadFallbackFile(f.fallbackPath)
	})
	if f.fallbackErr != nil {
		return "", false, f.fallbackErr
	}
	value, ok := f.fallbackVals[name]
	return value, ok, nil
}

// Close releases the Secret Manager client when the fetcher owns it.
func (f *Fetcher) Close() error {
	if f == nil || !f.ownsClient || f.client == nil {
		return nil
	}
	return f.client.Close()
}

func loadFallbackFile(path string) (map[string]string, error) {
	values := map[string]string{}
	if strings.TrimSpace(path) == "" {
		return values, nil
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, fmt.Errorf("secrets: open fallback file %s: %w", path, err)
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
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if key != "" {
			values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("secrets: read fallback file %s: %w", path, err)
	}
	return values, nil
}

func redactName(name string) string {
	if len(name) <= 4 {
		return "****"
	}
	return name[:4] + "****"
}
