package job

import (
	"regexp"
	"strings"

	"github.com/coderunr/judgeproxy/internal/types"
)

// verdict accumulates the caller-facing fields while rules are applied
type verdict struct {
	output *string
	err    *string
}

// rule inspects the submission (with stderr already cleaned) and may
// overwrite fields of the verdict.
type rule struct {
	name  string
	apply func(s *types.Submission, stderr string, v *verdict)
}

// classificationRules run in order; a later rule overrides an earlier one.
//
// compile_output replaces stderr even when the status is not a compilation
// error. That matches the judge proxy this service replaced and is kept as is.
var classificationRules = []rule{
	{"stdout", func(s *types.Submission, _ string, v *verdict) {
		if s.Stdout != "" {
			v.output = str(s.Stdout)
		}
	}},
	{"stderr", func(_ *types.Submission, stderr string, v *verdict) {
		if stderr != "" {
			v.err = str(stderr)
		}
	}},
	{"compile_output", func(s *types.Submission, _ string, v *verdict) {
		if s.CompileOutput != "" {
			v.err = str(s.CompileOutput)
		}
	}},
	{"compilation_error", func(s *types.Submission, _ string, v *verdict) {
		if statusIs(s, types.StatusCompilationError) {
			v.err = str(firstOf(s.CompileOutput, "Compilation error"))
		}
	}},
	{"runtime_error", func(s *types.Submission, stderr string, v *verdict) {
		if statusIs(s, types.StatusRuntimeError) {
			v.err = str(firstOf(stderr, "Runtime error"))
		}
	}},
	{"time_limit", func(s *types.Submission, _ string, v *verdict) {
		if statusIs(s, types.StatusTimeLimit) {
			v.err = str("Time limit exceeded")
		}
	}},
	{"internal_error", func(s *types.Submission, _ string, v *verdict) {
		if statusIs(s, types.StatusInternalError) {
			v.err = str("Internal error occurred")
		}
	}},
}

// Classifier maps a finished judge submission to an ExecutionResult
type Classifier struct {
	noise []*regexp.Regexp
}

// NewClassifier creates a classifier that strips the given stderr noise patterns
func NewClassifier(noise []*regexp.Regexp) *Classifier {
	return &Classifier{noise: noise}
}

// Classify applies classificationRules to the submission
func (c *Classifier) Classify(s *types.Submission) types.ExecutionResult {
	stderr := c.cleanStderr(s.Stderr)

	var v verdict
	for _, r := range classificationRules {
		r.apply(s, stderr, &v)
	}

	result := types.ExecutionResult{
		Output: v.output,
		Error:  v.err,
	}
	if s.Status != nil {
		result.Status = s.Status.Description
	}
	return result
}

// cleanStderr removes known benign runtime warnings. A remainder that is
// only whitespace counts as no stderr at all.
func (c *Classifier) cleanStderr(stderr string) string {
	if stderr == "" {
		return ""
	}
	for _, re := range c.noise {
		stderr = re.ReplaceAllString(stderr, "")
	}
	if strings.TrimSpace(stderr) == "" {
		return ""
	}
	return stderr
}

func statusIs(s *types.Submission, id int) bool {
	return s.Status != nil && s.Status.ID == id
}

func firstOf(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func str(s string) *string {
	return &s
}
