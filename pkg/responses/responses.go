package responses

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gomcpgo/replicate/pkg/catalog"
	"github.com/gomcpgo/replicate/pkg/config"
	"github.com/gomcpgo/replicate/pkg/prediction"
	"github.com/gomcpgo/replicate/pkg/resolver"
	"github.com/gomcpgo/replicate/pkg/transport"
	"github.com/gomcpgo/replicate/pkg/types"
)

// Error classes reported in error responses
const (
	ErrorConfiguration    = "configuration"
	ErrorUnauthorized     = "unauthorized"
	ErrorNotFound         = "not_found"
	ErrorBilling          = "billing"
	ErrorRateLimited      = "rate_limited"
	ErrorPredictionFailed = "prediction_failed"
	ErrorCanceled         = "canceled"
	ErrorTimeout          = "timeout"
	ErrorInvalidResponse  = "invalid_response"
	ErrorAPI              = "api_error"
	ErrorTransport        = "transport"
)

// BuildPredictionResponse creates a standardized success response for a prediction
func BuildPredictionResponse(operation string, model types.ResolvedModel, snap prediction.Snapshot) string {
	response := map[string]interface{}{
		"success":   snap.Status == types.StatusSucceeded,
		"operation": operation,
		"model": map[string]string{
			"path":    model.Path,
			"version": model.VersionID(),
		},
		"status": snap.Status,
		"output": snap.Output,
		"polls":  snap.Poll,
	}
	if snap.Prediction != nil {
		response["prediction_id"] = snap.Prediction.ID
	}
	return marshal(response)
}

// BuildSnapshotLine renders one stream snapshot as a single JSON line
func BuildSnapshotLine(snap prediction.Snapshot) string {
	line := map[string]interface{}{
		"poll":   snap.Poll,
		"status": snap.Status,
		"output": snap.Output,
	}
	data, _ := json.Marshal(line)
	return string(data)
}

// BuildVersionsResponse lists model versions
func BuildVersionsResponse(path string, versions []types.ModelVersion) string {
	ids := make([]map[string]string, len(versions))
	for i, v := range versions {
		ids[i] = map[string]string{"id": v.ID, "created_at": v.CreatedAt}
	}
	return marshal(map[string]interface{}{
		"success":  true,
		"model":    path,
		"versions": ids,
		"latest":   latest(versions),
	})
}

func latest(versions []types.ModelVersion) string {
	if len(versions) == 0 {
		return ""
	}
	return versions[0].ID
}

// BuildCatalogResponse lists the known model aliases
func BuildCatalogResponse(entries []catalog.Entry) string {
	models := make([]map[string]string, len(entries))
	for i, e := range entries {
		models[i] = map[string]string{
			"alias":       e.Alias,
			"ref":         e.Ref,
			"name":        e.Name,
			"description": e.Description,
		}
	}
	return marshal(map[string]interface{}{
		"success": true,
		"models":  models,
		"total":   len(entries),
	})
}

// BuildPredictionStatusResponse reports the raw state of a prediction
func BuildPredictionStatusResponse(operation string, p *types.Prediction) string {
	return marshal(map[string]interface{}{
		"success":    true,
		"operation":  operation,
		"prediction": p,
	})
}

// BuildRecordsResponse lists stored prediction records
func BuildRecordsResponse(records []*types.PredictionRecord) string {
	items := make([]map[string]interface{}, len(records))
	for i, r := range records {
		items[i] = map[string]interface{}{
			"prediction_id": r.PredictionID,
			"model":         r.Model,
			"version":       r.ModelVersion,
			"status":        r.Status,
			"finished_at":   r.FinishedAt,
			"duration_s":    r.Duration().Seconds(),
		}
	}
	return marshal(map[string]interface{}{
		"success": true,
		"records": items,
		"total":   len(records),
	})
}

// BuildErrorResponse creates a standardized error response
func BuildErrorResponse(operation string, err error) string {
	errorType := Classify(err)
	details := map[string]interface{}{}
	if status := transport.StatusCode(err); status != 0 {
		details["status_code"] = status
	}
	var pe *prediction.PredictionError
	if errors.As(err, &pe) {
		details["prediction_id"] = pe.PredictionID
		details["status"] = pe.Status
	}

	return marshal(map[string]interface{}{
		"success":   false,
		"operation": operation,
		"error": map[string]interface{}{
			"type":       errorType,
			"message":    err.Error(),
			"details":    details,
			"suggestion": GetSuggestion(errorType),
		},
	})
}

// Classify maps an error from the client packages to an error class
func Classify(err error) string {
	switch {
	case errors.Is(err, config.ErrMissingCredentials):
		return ErrorConfiguration
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTimeout
	case errors.Is(err, prediction.ErrPredictionCanceled), errors.Is(err, context.Canceled):
		return ErrorCanceled
	case errors.Is(err, prediction.ErrPredictionFailed), errors.Is(err, prediction.ErrUnexpectedStatus):
		return ErrorPredictionFailed
	case errors.Is(err, resolver.ErrNoVersions), transport.IsNotFound(err):
		return ErrorNotFound
	case transport.IsUnauthorized(err):
		return ErrorUnauthorized
	case transport.IsPaymentRequired(err):
		return ErrorBilling
	case transport.IsRateLimited(err):
		return ErrorRateLimited
	case transport.IsDecode(err):
		return ErrorInvalidResponse
	case transport.StatusCode(err) != 0:
		return ErrorAPI
	default:
		return ErrorTransport
	}
}

// GetSuggestion provides helpful suggestions for different error types
func GetSuggestion(errorType string) string {
	suggestions := map[string]string{
		ErrorConfiguration:    "Set REPLICATE_API_TOKEN, pass --token, or configure a proxy URL",
		ErrorUnauthorized:     "Check your API token",
		ErrorNotFound:         "Check the model path (owner/name) and version id",
		ErrorBilling:          "Set up billing for your Replicate account",
		ErrorRateLimited:      "Wait a few seconds before retrying",
		ErrorPredictionFailed: "Inspect the prediction logs with the get command",
		ErrorCanceled:         "The prediction was canceled; start a new one to retry",
		ErrorTimeout:          "The prediction is still running remotely; check it later with the get command",
		ErrorInvalidResponse:  "The server did not return JSON; check the base and proxy URLs",
		ErrorAPI:              "Check the request parameters against the model's input schema",
	}

	if suggestion, ok := suggestions[errorType]; ok {
		return suggestion
	}
	return "Check your network connection and try again"
}

func marshal(v interface{}) string {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ")
	return string(jsonBytes)
}
