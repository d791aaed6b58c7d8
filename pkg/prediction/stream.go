package prediction

import (
	"context"
	"io"
	"time"

	"github.com/gomcpgo/replicate/pkg/metrics"
	"github.com/gomcpgo/replicate/pkg/types"
)

// State is the position of a Stream in the prediction lifecycle
type State int

const (
	// StateIdle means the prediction has not been created yet
	StateIdle State = iota
	// StateStarting means the last poll reported "starting"
	StateStarting
	// StateProcessing means the last poll reported "processing"
	StateProcessing
	// StateTerminal means a terminal snapshot has been returned; the stream is exhausted
	StateTerminal
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateProcessing:
		return "processing"
	case StateTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Snapshot is one observation of a running prediction
type Snapshot struct {
	Poll       int
	Status     types.Status
	Output     interface{}
	Prediction *types.Prediction
	At         time.Time
}

// Stream polls one prediction. Each call to Next fetches the status, waits
// one polling interval, and then returns the snapshot. The snapshot carrying
// the first terminal status is returned like any other; the call after it
// returns io.EOF.
//
// A Stream is not safe for concurrent use.
type Stream struct {
	driver *Driver
	model  types.ResolvedModel
	input  map[string]interface{}

	state        State
	predictionID string
	polls        int
	err          error
}

// State returns the current lifecycle state
func (s *Stream) State() State {
	return s.state
}

// PredictionID returns the remote id, empty before the first Next
func (s *Stream) PredictionID() string {
	return s.predictionID
}

// Next returns the next snapshot, io.EOF once the prediction has finished,
// or the first error encountered. Errors are sticky.
func (s *Stream) Next(ctx context.Context) (Snapshot, error) {
	if s.err != nil {
		return Snapshot{}, s.err
	}
	if s.state == StateTerminal {
		return Snapshot{}, io.EOF
	}

	if s.state == StateIdle {
		id, err := s.driver.Start(ctx, s.model, s.input)
		if err != nil {
			return s.fail(err)
		}
		s.predictionID = id
		s.state = StateStarting
	}

	prediction, err := s.driver.Get(ctx, s.predictionID)
	if err != nil {
		return s.fail(err)
	}
	s.polls++
	metrics.PollsTotal.Inc()

	snap := Snapshot{
		Poll:       s.polls,
		Status:     prediction.Status,
		Output:     prediction.Output,
		Prediction: prediction,
		At:         time.Now(),
	}

	next := stateFor(prediction.Status)
	s.driver.logger.Debug().
		Str("prediction_id", s.predictionID).
		Int("poll", s.polls).
		Str("status", string(prediction.Status)).
		Msg("poll")

	if err := sleep(ctx, s.driver.pollInterval); err != nil {
		return s.fail(err)
	}

	s.state = next
	if next == StateTerminal {
		metrics.PredictionsFinished.WithLabelValues(string(prediction.Status)).Inc()
	}
	return snap, nil
}

func (s *Stream) fail(err error) (Snapshot, error) {
	s.err = err
	return Snapshot{}, err
}

func stateFor(status types.Status) State {
	switch status {
	case types.StatusStarting:
		return StateStarting
	case types.StatusProcessing:
		return StateProcessing
	default:
		return StateTerminal
	}
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
