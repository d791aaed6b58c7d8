package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gomcpgo/replicate/pkg/config"
	"github.com/gomcpgo/replicate/pkg/prediction"
	"github.com/gomcpgo/replicate/pkg/resolver"
	"github.com/gomcpgo/replicate/pkg/transport"
	"github.com/gomcpgo/replicate/pkg/types"
	"github.com/rs/zerolog"
)

// ReplicateClient is the entry point for talking to the Replicate API.
// It is safe for concurrent use; each call runs independently.
type ReplicateClient struct {
	cfg       config.Config
	transport transport.Transport
	resolver  *resolver.Resolver
	driver    *prediction.Driver
	logger    zerolog.Logger
}

type options struct {
	transport     transport.Transport
	httpClient    *http.Client
	logger        zerolog.Logger
	tokenProvider config.TokenProvider
}

// Option configures a ReplicateClient
type Option func(*options)

// WithTransport replaces the HTTP transport, e.g. with a transport.MockTransport
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithHTTPClient sets the http.Client used by the default transport
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithLogger sets a structured logger. If not set, the client is silent.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithTokenProvider sets where the token comes from when cfg.Token is empty.
// Defaults to the REPLICATE_API_TOKEN environment variable.
func WithTokenProvider(p config.TokenProvider) Option {
	return func(o *options) {
		o.tokenProvider = p
	}
}

// NewReplicateClient creates a new Replicate API client. It fails with
// config.ErrMissingCredentials when neither a token nor a proxy URL is available.
func NewReplicateClient(cfg config.Config, opts ...Option) (*ReplicateClient, error) {
	o := options{
		logger:        zerolog.Nop(),
		tokenProvider: config.EnvTokenProvider{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.WithDefaults().ResolveToken(o.tokenProvider)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("replicate: invalid configuration: %w", err)
	}

	t := o.transport
	if t == nil {
		httpTransport, err := transport.New(transport.Config{
			BaseURL:    cfg.BaseURL,
			ProxyURL:   cfg.ProxyURL,
			Token:      cfg.Token,
			Headers:    cfg.Headers,
			HTTPClient: o.httpClient,
			Logger:     o.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("replicate: failed to create transport: %w", err)
		}
		t = httpTransport
	}

	return &ReplicateClient{
		cfg:       cfg,
		transport: t,
		resolver:  resolver.New(t, o.logger),
		driver:    prediction.NewDriver(t, cfg.PollInterval(), o.logger),
		logger:    o.logger,
	}, nil
}

// Config returns the effective configuration
func (c *ReplicateClient) Config() config.Config {
	return c.cfg
}

// GetModel resolves a model path to a version. An empty version selects the
// most recent one; an unknown version falls back to it with a warning.
func (c *ReplicateClient) GetModel(ctx context.Context, path, version string) (*Model, error) {
	resolved, err := c.resolver.Resolve(ctx, path, version)
	if err != nil {
		return nil, err
	}
	return &Model{resolved: resolved, driver: c.driver}, nil
}

// ListVersions lists the published versions of a model, newest first
func (c *ReplicateClient) ListVersions(ctx context.Context, path string) ([]types.ModelVersion, error) {
	return c.resolver.ListVersions(ctx, path)
}

// GetPrediction gets the status of a prediction
func (c *ReplicateClient) GetPrediction(ctx context.Context, predictionID string) (*types.Prediction, error) {
	return c.driver.Get(ctx, predictionID)
}

// CancelPrediction cancels a running prediction
func (c *ReplicateClient) CancelPrediction(ctx context.Context, predictionID string) error {
	return c.driver.Cancel(ctx, predictionID)
}
