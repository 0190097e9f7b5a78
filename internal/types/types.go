package types

// Judge0 status ids. Everything below StatusAccepted is still in flight.
const (
	StatusInQueue          = 1
	StatusProcessing       = 2
	StatusAccepted         = 3
	StatusTimeLimit        = 5
	StatusCompilationError = 6
	StatusRuntimeError     = 11
	StatusInternalError    = 13
)

// ExecutionRequest represents an incoming code execution request
type ExecutionRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// ExecutionResult is the normalized outcome returned to the editor
type ExecutionResult struct {
	Output *string `json:"output"`
	Error  *string `json:"error"`
	Status string  `json:"status"`
}

// JudgeStatus represents the lifecycle stage reported by the judge
type JudgeStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Terminal reports whether the judge has finished with the submission
func (s *JudgeStatus) Terminal() bool {
	return s != nil && s.ID >= StatusAccepted
}

// SubmissionRequest is the body posted to the judge's submissions endpoint
type SubmissionRequest struct {
	LanguageID int    `json:"language_id"`
	SourceCode string `json:"source_code"`
	Stdin      string `json:"stdin"`
}

// Submission is the judge's view of a submission. Null text fields decode
// to the empty string, which counts as absent.
type Submission struct {
	Token         string       `json:"token"`
	Status        *JudgeStatus `json:"status"`
	Stdout        string       `json:"stdout"`
	Stderr        string       `json:"stderr"`
	CompileOutput string       `json:"compile_output"`
	Message       string       `json:"message"`
	Time          string       `json:"time"`
	Memory        int64        `json:"memory"`
}

// LanguageInfo represents language information for API responses
type LanguageInfo struct {
	Language string `json:"language"`
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Version  string `json:"version"`
}

// WebSocketMessage represents a WebSocket message
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Data    string      `json:"data,omitempty"`
	Attempt int         `json:"attempt,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    int         `json:"code,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
