package client

import (
	"errors"

	"github.com/gomcpgo/replicate/pkg/config"
	"github.com/gomcpgo/replicate/pkg/prediction"
	"github.com/gomcpgo/replicate/pkg/transport"
)

// APIError represents an error response from the Replicate API
type APIError = transport.APIError

// PredictionError is returned when a prediction ends without succeeding
type PredictionError = prediction.PredictionError

// IsNotFound reports whether err indicates a resource was not found (404)
func IsNotFound(err error) bool {
	return transport.IsNotFound(err)
}

// IsUnauthorized reports whether err indicates an invalid or missing token (401)
func IsUnauthorized(err error) bool {
	return transport.IsUnauthorized(err)
}

// IsConfigError reports whether err is the missing credentials error
func IsConfigError(err error) bool {
	return errors.Is(err, config.ErrMissingCredentials)
}

// IsPredictionFailed reports whether err is a prediction that ended failed or canceled
func IsPredictionFailed(err error) bool {
	var pe *prediction.PredictionError
	return errors.As(err, &pe)
}
