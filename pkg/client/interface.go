package client

import (
	"context"

	"github.com/gomcpgo/replicate/pkg/types"
)

// Client defines the interface for interacting with the Replicate API
type Client interface {
	// GetModel resolves a model path and optional version
	GetModel(ctx context.Context, path, version string) (*Model, error)

	// ListVersions lists the versions of a model, newest first
	ListVersions(ctx context.Context, path string) ([]types.ModelVersion, error)

	// GetPrediction gets the status of a prediction
	GetPrediction(ctx context.Context, predictionID string) (*types.Prediction, error)

	// CancelPrediction cancels a running prediction
	CancelPrediction(ctx context.Context, predictionID string) error
}

// Ensure ReplicateClient implements the Client interface
var _ Client = (*ReplicateClient)(nil)
