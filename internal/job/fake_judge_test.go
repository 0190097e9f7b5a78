package job

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/coderunr/judgeproxy/internal/config"
	"github.com/coderunr/judgeproxy/internal/language"
	"github.com/coderunr/judgeproxy/internal/metrics"
	"github.com/coderunr/judgeproxy/internal/types"
)

var errUnavailable = errors.New("judge unavailable")

// fetchStep is one scripted answer to Fetch
type fetchStep struct {
	submission *types.Submission
	err        error
}

// fakeJudge replays scripted poll answers. The last step repeats forever.
type fakeJudge struct {
	mu          sync.Mutex
	submitErr   error
	steps       []fetchStep
	submits     int
	fetches     int
	languageIDs []int
	sources     []string
}

func (f *fakeJudge) Submit(ctx context.Context, languageID int, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submits++
	f.languageIDs = append(f.languageIDs, languageID)
	f.sources = append(f.sources, source)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "token-1", nil
}

func (f *fakeJudge) Fetch(ctx context.Context, token string) (*types.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.fetches
	f.fetches++
	if len(f.steps) == 0 {
		return nil, errUnavailable
	}
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	step := f.steps[i]
	return step.submission, step.err
}

func (f *fakeJudge) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submits, f.fetches
}

func status(id int, description string) *types.Submission {
	return &types.Submission{Status: &types.JudgeStatus{ID: id, Description: description}}
}

func queued() fetchStep     { return fetchStep{submission: status(1, "In Queue")} }
func processing() fetchStep { return fetchStep{submission: status(2, "Processing")} }
func failing() fetchStep    { return fetchStep{err: errUnavailable} }

func accepted(stdout string) fetchStep {
	s := status(3, "Accepted")
	s.Stdout = stdout
	return fetchStep{submission: s}
}

func testConfig() *config.Config {
	return &config.Config{
		JudgeURL:            config.DefaultJudgeURL,
		JudgeRequestTimeout: time.Second,
		PollInterval:        time.Millisecond,
		MaxPollAttempts:     30,
		StderrNoisePatterns: config.DefaultNoisePatterns,
	}
}

func newTestManager(t *testing.T, cfg *config.Config, judge Judge) (*Manager, *metrics.Metrics) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	m := metrics.New()
	manager, err := NewManager(cfg, judge, language.Default(), m, logger)
	require.NoError(t, err)
	return manager, m
}
