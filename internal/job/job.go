package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/coderunr/judgeproxy/internal/config"
	"github.com/coderunr/judgeproxy/internal/judge"
	"github.com/coderunr/judgeproxy/internal/language"
	"github.com/coderunr/judgeproxy/internal/metrics"
	"github.com/coderunr/judgeproxy/internal/types"
)

// Judge is the remote service that compiles and runs submissions
type Judge interface {
	Submit(ctx context.Context, languageID int, source string) (string, error)
	Fetch(ctx context.Context, token string) (*types.Submission, error)
}

// Resolver maps a language key to the judge's language id
type Resolver interface {
	Resolve(key string) (int, error)
}

// Observer is called with every status fetched while polling
type Observer func(attempt int, status types.JudgeStatus)

// Manager creates and runs execution jobs
type Manager struct {
	judge       Judge
	languages   Resolver
	classifier  *Classifier
	interval    time.Duration
	maxAttempts int
	ceiling     time.Duration
	metrics     *metrics.Metrics
	logger      *logrus.Entry
}

// NewManager creates a new job manager
func NewManager(cfg *config.Config, j Judge, languages Resolver, m *metrics.Metrics, logger *logrus.Logger) (*Manager, error) {
	noise, err := cfg.NoisePatterns()
	if err != nil {
		return nil, err
	}

	return &Manager{
		judge:       j,
		languages:   languages,
		classifier:  NewClassifier(noise),
		interval:    cfg.PollInterval,
		maxAttempts: cfg.MaxPollAttempts,
		ceiling:     cfg.PollCeiling(),
		metrics:     m,
		logger:      logger.WithField("component", "job"),
	}, nil
}

// Job represents one code execution request
type Job struct {
	ID       string
	Language string
	Code     string

	// OnStatus, when set, observes every polled status
	OnStatus Observer

	logger  *logrus.Entry
	manager *Manager
}

// NewJob creates a new job from a request
func (m *Manager) NewJob(request *types.ExecutionRequest) *Job {
	jobID := uuid.New().String()

	return &Job{
		ID:       jobID,
		Language: request.Language,
		Code:     request.Code,
		logger: m.logger.WithFields(logrus.Fields{
			"execution_id": jobID,
			"language":     request.Language,
		}),
		manager: m,
	}
}

// Execute resolves the language, submits the code and waits for the verdict
func (j *Job) Execute(ctx context.Context) (*types.ExecutionResult, error) {
	m := j.manager

	languageID, err := m.languages.Resolve(j.Language)
	if err != nil {
		m.metrics.Execution(outcome(err))
		return nil, err
	}

	j.logger.Infof("Executing %s code", j.Language)

	token, err := m.judge.Submit(ctx, languageID, j.Code)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			m.metrics.Execution(metrics.OutcomeCanceled)
			return nil, fmt.Errorf("submission aborted: %w", ctxErr)
		}
		j.logger.WithError(err).Error("Judge submission error")
		err = &SubmissionError{Err: err}
		m.metrics.Execution(outcome(err))
		return nil, err
	}

	submission, attempts, err := j.poll(ctx, token)
	m.metrics.PollAttempts(attempts)
	if err != nil {
		m.metrics.Execution(outcome(err))
		return nil, err
	}

	result := m.classifier.Classify(submission)
	m.metrics.Execution(metrics.OutcomeCompleted)

	j.logger.WithFields(logrus.Fields{
		"status":   result.Status,
		"attempts": attempts,
	}).Info("Execution complete")

	return &result, nil
}

// poll waits one interval before every fetch and stops at the first terminal
// status. It returns the number of attempts used.
func (j *Job) poll(ctx context.Context, token string) (*types.Submission, int, error) {
	m := j.manager

	pollCtx, cancel := context.WithTimeout(ctx, m.ceiling)
	defer cancel()

	timer := time.NewTimer(m.interval)
	defer timer.Stop()

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		select {
		case <-pollCtx.Done():
			return nil, attempt - 1, j.stopReason(ctx)
		case <-timer.C:
		}

		submission, err := m.judge.Fetch(pollCtx, token)
		if err != nil {
			if errors.Is(err, judge.ErrMalformedResponse) {
				return nil, attempt, fmt.Errorf("failed to read submission status: %w", err)
			}
			if ctx.Err() != nil {
				return nil, attempt, j.stopReason(ctx)
			}
			j.logger.WithError(err).Warnf("Failed to get submission status (attempt %d/%d)", attempt, m.maxAttempts)
			timer.Reset(m.interval)
			continue
		}

		if submission.Status != nil {
			j.logger.Debugf("Status: %s", submission.Status.Description)
			if j.OnStatus != nil {
				j.OnStatus(attempt, *submission.Status)
			}
		}

		if submission.Status.Terminal() {
			return submission, attempt, nil
		}

		timer.Reset(m.interval)
	}

	j.logger.Warnf("No terminal status after %d attempts", m.maxAttempts)
	return nil, m.maxAttempts, ErrExecutionTimeout
}

// stopReason tells a caller cancellation apart from the poll ceiling
func (j *Job) stopReason(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("polling aborted: %w", err)
	}
	return ErrExecutionTimeout
}

// outcome maps an execution error to its metrics label
func outcome(err error) string {
	switch {
	case errors.Is(err, language.ErrUnsupported):
		return metrics.OutcomeUnsupported
	case errors.Is(err, ErrSubmissionFailed):
		return metrics.OutcomeSubmission
	case errors.Is(err, ErrExecutionTimeout):
		return metrics.OutcomeTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}
