package prediction

import (
	"errors"
	"fmt"

	"github.com/gomcpgo/replicate/pkg/types"
)

var (
	// ErrPredictionFailed matches a PredictionError with status failed
	ErrPredictionFailed = errors.New("prediction failed")

	// ErrPredictionCanceled matches a PredictionError with status canceled
	ErrPredictionCanceled = errors.New("prediction was canceled")

	// ErrUnexpectedStatus matches a PredictionError with any other terminal status
	ErrUnexpectedStatus = errors.New("prediction ended with unexpected status")
)

// PredictionError is returned by Run when the prediction did not succeed
type PredictionError struct {
	PredictionID string
	Status       types.Status
	Message      string
}

// Error implements the error interface
func (e *PredictionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("prediction %s %s: %s", e.PredictionID, e.Status, e.Message)
	}
	return fmt.Sprintf("prediction %s %s", e.PredictionID, e.Status)
}

// Is lets errors.Is match the status sentinels
func (e *PredictionError) Is(target error) bool {
	switch target {
	case ErrPredictionFailed:
		return e.Status == types.StatusFailed
	case ErrPredictionCanceled:
		return e.Status == types.StatusCanceled
	case ErrUnexpectedStatus:
		return e.Status != types.StatusFailed && e.Status != types.StatusCanceled
	}
	return false
}

// Outcome returns nil for a succeeded snapshot and a *PredictionError for
// anything else
func Outcome(snap Snapshot) error {
	if snap.Status == types.StatusSucceeded {
		return nil
	}
	return newPredictionError(snap)
}

func newPredictionError(snap Snapshot) *PredictionError {
	pe := &PredictionError{Status: snap.Status}
	if snap.Prediction == nil {
		return pe
	}
	pe.PredictionID = snap.Prediction.ID
	pe.Message = errorMessage(snap.Prediction.Error)
	return pe
}

// errorMessage extracts a readable message from Replicate's error field,
// which is either a string or an object with a message.
func errorMessage(v interface{}) string {
	switch e := v.(type) {
	case nil:
		return ""
	case string:
		return e
	case map[string]interface{}:
		if msg, exists := e["message"]; exists {
			return fmt.Sprintf("%v", msg)
		}
		if detail, exists := e["detail"]; exists {
			return fmt.Sprintf("%v", detail)
		}
	}
	return fmt.Sprintf("%v", v)
}
