package prediction

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gomcpgo/replicate/pkg/transport"
	"github.com/gomcpgo/replicate/pkg/types"
	"github.com/rs/zerolog"
)

// Driver starts predictions and polls them to completion
type Driver struct {
	transport    transport.Transport
	pollInterval time.Duration
	logger       zerolog.Logger
}

// NewDriver creates a new Driver polling every pollInterval
func NewDriver(t transport.Transport, pollInterval time.Duration, logger zerolog.Logger) *Driver {
	return &Driver{
		transport:    t,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// PollInterval returns the delay between status checks
func (d *Driver) PollInterval() time.Duration {
	return d.pollInterval
}

// Start creates a prediction for model and returns its id
func (d *Driver) Start(ctx context.Context, model types.ResolvedModel, input map[string]interface{}) (string, error) {
	if model.VersionID() == "" {
		return "", fmt.Errorf("model %q has no resolved version", model.Path)
	}
	if input == nil {
		input = map[string]interface{}{}
	}

	req := types.PredictionRequest{
		Version: model.VersionID(),
		Input:   input,
	}

	var prediction types.Prediction
	if err := d.transport.Post(ctx, "/predictions", req, &prediction); err != nil {
		return "", fmt.Errorf("failed to create prediction: %w", err)
	}
	if prediction.ID == "" {
		return "", fmt.Errorf("failed to create prediction: response has no id")
	}

	d.logger.Debug().
		Str("prediction_id", prediction.ID).
		Str("model", model.Path).
		Str("version", model.VersionID()).
		Msg("prediction started")
	return prediction.ID, nil
}

// Get fetches the current state of a prediction
func (d *Driver) Get(ctx context.Context, predictionID string) (*types.Prediction, error) {
	var prediction types.Prediction
	if err := d.transport.Get(ctx, "/predictions/"+predictionID, &prediction); err != nil {
		return nil, fmt.Errorf("failed to get prediction status: %w", err)
	}
	return &prediction, nil
}

// Cancel asks the API to stop a running prediction
func (d *Driver) Cancel(ctx context.Context, predictionID string) error {
	if err := d.transport.Post(ctx, "/predictions/"+predictionID+"/cancel", nil, nil); err != nil {
		return fmt.Errorf("failed to cancel prediction: %w", err)
	}
	return nil
}

// Stream returns a lazy sequence of output snapshots for a new prediction.
// Nothing is sent until the first call to Next.
func (d *Driver) Stream(model types.ResolvedModel, input map[string]interface{}) *Stream {
	return &Stream{
		driver: d,
		model:  model,
		input:  input,
		state:  StateIdle,
	}
}

// Run drains a stream and returns only the last snapshot. A prediction that
// ends in any status other than succeeded yields the final snapshot together
// with a *PredictionError.
func (d *Driver) Run(ctx context.Context, model types.ResolvedModel, input map[string]interface{}) (Snapshot, error) {
	stream := d.Stream(model, input)

	var last Snapshot
	for {
		snap, err := stream.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return last, err
		}
		last = snap
	}

	return last, Outcome(last)
}
