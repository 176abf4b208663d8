/*
dto.go - API response envelope and error codes

PURPOSE:
  Every endpoint answers with the same envelope, success or failure:

    {"success": true,  "data": {...}, "meta": {...}}
    {"success": false, "error": {"code": "...", "message": "..."}, "meta": {...}}

  The meta block carries a per-request ID and timestamp for tracing.
  Handlers never write partial results: a request either produces a full
  report or an error envelope.

ERROR CODES:
  INTERNAL_ERROR    Uncaught computation fault
  CONNECTION_ERROR  Upstream provider unreachable
  SCHEMA_ERROR      Dataset could not be read as rows
  NO_RESULTS        Dataset identifier unknown / empty collaborator reply

SEE ALSO:
  - handlers.go: Uses these writers
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/warp/sales-analytics/dataset"
)

// Error codes of the response contract.
const (
	CodeInternalError   = "INTERNAL_ERROR"
	CodeConnectionError = "CONNECTION_ERROR"
	CodeSchemaError     = "SCHEMA_ERROR"
	CodeNoResults       = "NO_RESULTS"
)

// Response is the success/failure envelope shared by every endpoint.
type Response struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Meta    ResponseMeta `json:"meta"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// ResponseMeta carries request tracing fields.
type ResponseMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

func responseMeta(r *http.Request) ResponseMeta {
	id := middleware.GetReqID(r.Context())
	if id == "" {
		id = uuid.NewString()
	}
	return ResponseMeta{RequestID: id, Timestamp: time.Now().UTC()}
}

// writeSuccess writes a success envelope.
func writeSuccess(w http.ResponseWriter, r *http.Request, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{
		Success: true,
		Data:    data,
		Meta:    responseMeta(r),
	})
}

// writeError writes a failure envelope with the given code.
func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	// The contract reports failure in the envelope, not the status line;
	// dashboard clients branch on the success flag.
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{
		Success: false,
		Meta:    responseMeta(r),
		Error:   &ErrorDetail{Code: code, Message: message},
	})
}

// writeProviderError classifies a dataset-layer failure into a contract
// error code.
func writeProviderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, dataset.ErrNotFound):
		writeError(w, r, CodeNoResults, err.Error())
	case errors.Is(err, dataset.ErrSchema):
		writeError(w, r, CodeSchemaError, err.Error())
	case errors.Is(err, dataset.ErrConnection):
		writeError(w, r, CodeConnectionError, err.Error())
	default:
		writeError(w, r, CodeInternalError, err.Error())
	}
}
