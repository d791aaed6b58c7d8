package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/gomcpgo/replicate/pkg/metrics"
	"github.com/gomcpgo/replicate/pkg/transport"
	"github.com/gomcpgo/replicate/pkg/types"
	"github.com/rs/zerolog"
)

var (
	// ErrNoVersions is returned when a model has no published versions
	ErrNoVersions = errors.New("model has no versions")

	// ErrInvalidPath is returned for an empty model path
	ErrInvalidPath = errors.New("model path is required")
)

// Resolver selects a concrete version of a model
type Resolver struct {
	transport transport.Transport
	logger    zerolog.Logger
}

// New creates a new Resolver
func New(t transport.Transport, logger zerolog.Logger) *Resolver {
	return &Resolver{
		transport: t,
		logger:    logger,
	}
}

// ListVersions fetches the versions of a model, newest first
func (r *Resolver) ListVersions(ctx context.Context, path string) ([]types.ModelVersion, error) {
	if path == "" {
		return nil, ErrInvalidPath
	}

	var list types.VersionList
	if err := r.transport.Get(ctx, fmt.Sprintf("/models/%s/versions", path), &list); err != nil {
		return nil, fmt.Errorf("failed to list versions of %s: %w", path, err)
	}
	return list.Results, nil
}

// Resolve binds path to desiredVersion, or to the most recent version when
// desiredVersion is empty or not published. A missing desired version is
// logged as a warning, not returned as an error.
// The version list is fetched on every call.
func (r *Resolver) Resolve(ctx context.Context, path, desiredVersion string) (types.ResolvedModel, error) {
	versions, err := r.ListVersions(ctx, path)
	if err != nil {
		return types.ResolvedModel{}, err
	}
	if len(versions) == 0 {
		return types.ResolvedModel{}, fmt.Errorf("%s: %w", path, ErrNoVersions)
	}

	mostRecent := versions[0]
	if desiredVersion == "" {
		return types.ResolvedModel{Path: path, Version: mostRecent}, nil
	}

	for _, v := range versions {
		if v.ID == desiredVersion {
			return types.ResolvedModel{Path: path, Version: v}, nil
		}
	}

	metrics.VersionFallbacks.Inc()
	r.logger.Warn().
		Str("model", path).
		Str("requested_version", desiredVersion).
		Str("selected_version", mostRecent.ID).
		Msgf("Model (version:%s) not found, defaulting to %s", desiredVersion, mostRecent.ID)

	return types.ResolvedModel{Path: path, Version: mostRecent}, nil
}
