package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/coderunr/judgeproxy/internal/job"
	"github.com/coderunr/judgeproxy/internal/language"
	"github.com/coderunr/judgeproxy/internal/types"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

const timeoutMessage = "Timeout: Code execution took too long"

// Handler contains the dependencies for HTTP handlers
type Handler struct {
	jobManager *job.Manager
	languages  *language.Registry
	logger     *logrus.Logger
}

// NewHandler creates a new handler instance
func NewHandler(jobManager *job.Manager, languages *language.Registry, logger *logrus.Logger) *Handler {
	return &Handler{
		jobManager: jobManager,
		languages:  languages,
		logger:     logger,
	}
}

// GetVersion returns the API version
func (h *Handler) GetVersion(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, map[string]string{
		"message": "judgeproxy v" + Version,
	}, http.StatusOK)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ExecuteCode runs the submitted code on the judge and waits for the verdict
func (h *Handler) ExecuteCode(w http.ResponseWriter, r *http.Request) {
	var request types.ExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			h.sendError(w, types.ErrorResponse{Error: "request body too large"}, http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.WithError(err).Error("Error executing code")
		h.sendError(w, types.ErrorResponse{Error: err.Error()}, http.StatusInternalServerError)
		return
	}

	j := h.jobManager.NewJob(&request)
	w.Header().Set("X-Execution-ID", j.ID)

	result, err := j.Execute(r.Context())
	if err != nil {
		if r.Context().Err() != nil {
			// The caller is gone or the route timeout already answered
			h.logger.WithError(err).WithField("execution_id", j.ID).Warn("Execution abandoned")
			return
		}

		status, response := errorResponse(err)
		if status == http.StatusInternalServerError {
			h.logger.WithError(err).WithField("execution_id", j.ID).Error("Error executing code")
		}
		h.sendError(w, response, status)
		return
	}

	h.sendJSON(w, result, http.StatusOK)
}

// errorResponse maps an execution error onto an HTTP status and body
func errorResponse(err error) (int, types.ErrorResponse) {
	var submissionErr *job.SubmissionError

	switch {
	case errors.Is(err, language.ErrUnsupported):
		return http.StatusBadRequest, types.ErrorResponse{Error: err.Error()}
	case errors.As(err, &submissionErr):
		return http.StatusInternalServerError, types.ErrorResponse{
			Error:   "Failed to submit code for execution",
			Details: submissionErr.Details(),
		}
	case errors.Is(err, job.ErrExecutionTimeout):
		return http.StatusRequestTimeout, types.ErrorResponse{Error: timeoutMessage}
	default:
		return http.StatusInternalServerError, types.ErrorResponse{Error: err.Error()}
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, response types.ErrorResponse, statusCode int) {
	h.sendJSON(w, response, statusCode)
}

// sendJSON sends a JSON response
func (h *Handler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.WithError(err).Error("Failed to encode JSON response")
	}
}
