package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coderunr/judgeproxy/internal/job"
	"github.com/coderunr/judgeproxy/internal/judge"
	"github.com/coderunr/judgeproxy/internal/language"
	"github.com/coderunr/judgeproxy/internal/types"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		response types.ErrorResponse
	}{
		{
			name:     "unsupported language",
			err:      &language.UnsupportedError{Key: "brainfuck"},
			status:   http.StatusBadRequest,
			response: types.ErrorResponse{Error: "Unsupported language: brainfuck"},
		},
		{
			name: "judge rejected submission",
			err: &job.SubmissionError{Err: &judge.StatusError{
				Op:         "submit",
				StatusCode: http.StatusTooManyRequests,
				Status:     "429 Too Many Requests",
				Body:       `{"error":"quota exceeded"}`,
			}},
			status: http.StatusInternalServerError,
			response: types.ErrorResponse{
				Error:   "Failed to submit code for execution",
				Details: `judge responded 429 Too Many Requests: {"error":"quota exceeded"}`,
			},
		},
		{
			name:   "judge unreachable",
			err:    &job.SubmissionError{Err: errors.New("dial tcp: connection refused")},
			status: http.StatusInternalServerError,
			response: types.ErrorResponse{
				Error:   "Failed to submit code for execution",
				Details: "dial tcp: connection refused",
			},
		},
		{
			name:     "poll budget exhausted",
			err:      job.ErrExecutionTimeout,
			status:   http.StatusRequestTimeout,
			response: types.ErrorResponse{Error: "Timeout: Code execution took too long"},
		},
		{
			name:     "malformed poll response",
			err:      fmt.Errorf("failed to read submission status: %w", judge.ErrMalformedResponse),
			status:   http.StatusInternalServerError,
			response: types.ErrorResponse{Error: "failed to read submission status: " + judge.ErrMalformedResponse.Error()},
		},
		{
			name:     "aborted",
			err:      fmt.Errorf("polling aborted: %w", context.Canceled),
			status:   http.StatusInternalServerError,
			response: types.ErrorResponse{Error: "polling aborted: context canceled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, response := errorResponse(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.response, response)
		})
	}
}
