package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/coderunr/judgeproxy/internal/config"
	"github.com/coderunr/judgeproxy/internal/metrics"
	"github.com/coderunr/judgeproxy/internal/types"
)

// maxErrorBody bounds how much of an upstream error body is kept for diagnostics
const maxErrorBody = 4096

// ErrMalformedResponse is returned when a successful judge response cannot be decoded
var ErrMalformedResponse = errors.New("malformed judge response")

// StatusError is returned when the judge answers with a non-2xx status
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("judge %s: %s", e.Op, e.Status)
	}
	return fmt.Sprintf("judge %s: %s: %s", e.Op, e.Status, e.Body)
}

// Client talks to a Judge0-compatible judge over HTTP
type Client struct {
	baseURL    *url.URL
	authToken  string
	httpClient *http.Client
	logger     *logrus.Entry
	metrics    *metrics.Metrics
}

// NewClient creates a judge client from the configuration
func NewClient(cfg *config.Config, logger *logrus.Logger, m *metrics.Metrics) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.JudgeURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid judge url: %w", err)
	}

	return &Client{
		baseURL:    base,
		authToken:  cfg.JudgeAuthToken,
		httpClient: &http.Client{Timeout: cfg.JudgeRequestTimeout},
		logger:     logger.WithField("component", "judge"),
		metrics:    m,
	}, nil
}

// Submit creates an asynchronous submission and returns its token.
// Standard input is always empty.
func (c *Client) Submit(ctx context.Context, languageID int, source string) (string, error) {
	body, err := json.Marshal(types.SubmissionRequest{
		LanguageID: languageID,
		SourceCode: source,
		Stdin:      "",
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode submission: %w", err)
	}

	endpoint := c.endpoint(url.Values{
		"base64_encoded": {"false"},
		"wait":           {"false"},
	}, "submissions")

	var created types.Submission
	err = c.do(ctx, "submit", http.MethodPost, endpoint, bytes.NewReader(body), &created)
	c.metrics.JudgeRequest("submit", err)
	if err != nil {
		return "", err
	}

	if created.Token == "" {
		return "", fmt.Errorf("%w: submission response has no token", ErrMalformedResponse)
	}

	c.logger.Debugf("Submission token: %s", created.Token)
	return created.Token, nil
}

// Fetch returns the current state of the submission identified by token
func (c *Client) Fetch(ctx context.Context, token string) (*types.Submission, error) {
	endpoint := c.endpoint(url.Values{"base64_encoded": {"false"}}, "submissions", token)

	var submission types.Submission
	err := c.do(ctx, "poll", http.MethodGet, endpoint, nil, &submission)
	c.metrics.JudgeRequest("poll", err)
	if err != nil {
		return nil, err
	}

	return &submission, nil
}

// endpoint builds an absolute URL below the judge base URL
func (c *Client) endpoint(query url.Values, elem ...string) string {
	u := c.baseURL.JoinPath(elem...)
	u.RawQuery = query.Encode()
	return u.String()
}

// do performs one request and decodes a 2xx JSON body into out
func (c *Client) do(ctx context.Context, op, method, endpoint string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("X-Auth-Token", c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("judge %s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}

	return nil
}
