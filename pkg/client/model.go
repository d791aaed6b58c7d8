package client

import (
	"context"

	"github.com/gomcpgo/replicate/pkg/prediction"
	"github.com/gomcpgo/replicate/pkg/types"
)

// Model is a model bound to one version, ready to run predictions
type Model struct {
	resolved types.ResolvedModel
	driver   *prediction.Driver
}

// Resolved returns the path and selected version
func (m *Model) Resolved() types.ResolvedModel {
	return m.resolved
}

// Start creates a prediction without waiting for it
func (m *Model) Start(ctx context.Context, input map[string]interface{}) (string, error) {
	return m.driver.Start(ctx, m.resolved, input)
}

// Stream returns the incremental outputs of a new prediction
func (m *Model) Stream(input map[string]interface{}) *prediction.Stream {
	return m.driver.Stream(m.resolved, input)
}

// Run waits for a new prediction and returns its final snapshot
func (m *Model) Run(ctx context.Context, input map[string]interface{}) (prediction.Snapshot, error) {
	return m.driver.Run(ctx, m.resolved, input)
}

// Predict waits for a new prediction and returns its final output
func (m *Model) Predict(ctx context.Context, input map[string]interface{}) (interface{}, error) {
	snap, err := m.driver.Run(ctx, m.resolved, input)
	return snap.Output, err
}
