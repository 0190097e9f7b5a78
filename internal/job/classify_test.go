package job

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderunr/judgeproxy/internal/config"
	"github.com/coderunr/judgeproxy/internal/types"
)

const nodeDeprecation = "(node:42) [DEP0005] DeprecationWarning: Buffer() is deprecated due to security and usability issues.\n" +
	"(Use `node --trace-deprecation ...` to show where the warning was created)\n"

func defaultClassifier(t *testing.T) *Classifier {
	t.Helper()
	cfg := &config.Config{StderrNoisePatterns: config.DefaultNoisePatterns}
	noise, err := cfg.NoisePatterns()
	require.NoError(t, err)
	return NewClassifier(noise)
}

func submission(id int, description string) *types.Submission {
	return &types.Submission{Status: &types.JudgeStatus{ID: id, Description: description}}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		submission func() *types.Submission
		output     *string
		err        *string
		status     string
	}{
		{
			name: "accepted with stdout",
			submission: func() *types.Submission {
				s := submission(3, "Accepted")
				s.Stdout = "hi\n"
				return s
			},
			output: str("hi\n"),
			status: "Accepted",
		},
		{
			name: "accepted without output",
			submission: func() *types.Submission {
				return submission(3, "Accepted")
			},
			status: "Accepted",
		},
		{
			name: "stderr alongside stdout",
			submission: func() *types.Submission {
				s := submission(3, "Accepted")
				s.Stdout = "partial"
				s.Stderr = "warning: something\n"
				return s
			},
			output: str("partial"),
			err:    str("warning: something\n"),
			status: "Accepted",
		},
		{
			name: "compile output overrides stderr under compilation error",
			submission: func() *types.Submission {
				s := submission(6, "Compilation Error")
				s.Stderr = "W"
				s.CompileOutput = "C"
				return s
			},
			err:    str("C"),
			status: "Compilation Error",
		},
		{
			name: "compilation error without compiler output",
			submission: func() *types.Submission {
				return submission(6, "Compilation Error")
			},
			err:    str("Compilation error"),
			status: "Compilation Error",
		},
		{
			// Documented behaviour: compile_output wins over stderr for any status.
			name: "compile output overrides stderr outside compilation error",
			submission: func() *types.Submission {
				s := submission(3, "Accepted")
				s.Stdout = "out"
				s.Stderr = "runtime warning"
				s.CompileOutput = "main.c:1: warning: unused variable"
				return s
			},
			output: str("out"),
			err:    str("main.c:1: warning: unused variable"),
			status: "Accepted",
		},
		{
			name: "runtime error uses stderr",
			submission: func() *types.Submission {
				s := submission(11, "Runtime Error (NZEC)")
				s.Stderr = "Traceback: ZeroDivisionError\n"
				s.CompileOutput = "ignored"
				return s
			},
			err:    str("Traceback: ZeroDivisionError\n"),
			status: "Runtime Error (NZEC)",
		},
		{
			name: "runtime error without stderr",
			submission: func() *types.Submission {
				return submission(11, "Runtime Error (NZEC)")
			},
			err:    str("Runtime error"),
			status: "Runtime Error (NZEC)",
		},
		{
			name: "time limit overrides stderr and keeps stdout",
			submission: func() *types.Submission {
				s := submission(5, "Time Limit Exceeded")
				s.Stdout = "1\n2\n3\n"
				s.Stderr = "killed"
				return s
			},
			output: str("1\n2\n3\n"),
			err:    str("Time limit exceeded"),
			status: "Time Limit Exceeded",
		},
		{
			name: "internal error",
			submission: func() *types.Submission {
				s := submission(13, "Internal Error")
				s.Stderr = "boom"
				return s
			},
			err:    str("Internal error occurred"),
			status: "Internal Error",
		},
		{
			name: "other runtime error ids keep raw stderr",
			submission: func() *types.Submission {
				s := submission(7, "Runtime Error (SIGSEGV)")
				s.Stderr = "Segmentation fault"
				return s
			},
			err:    str("Segmentation fault"),
			status: "Runtime Error (SIGSEGV)",
		},
		{
			name: "noise only stderr is no error",
			submission: func() *types.Submission {
				s := submission(3, "Accepted")
				s.Stdout = "ok\n"
				s.Stderr = nodeDeprecation
				return s
			},
			output: str("ok\n"),
			status: "Accepted",
		},
		{
			name: "noise is stripped from real stderr",
			submission: func() *types.Submission {
				s := submission(3, "Accepted")
				s.Stderr = nodeDeprecation + "real problem\n"
				return s
			},
			err:    str("real problem\n"),
			status: "Accepted",
		},
		{
			name: "runtime error with noise only stderr falls back",
			submission: func() *types.Submission {
				s := submission(11, "Runtime Error (NZEC)")
				s.Stderr = nodeDeprecation
				return s
			},
			err:    str("Runtime error"),
			status: "Runtime Error (NZEC)",
		},
	}

	classifier := defaultClassifier(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Classify(tt.submission())

			assert.Equal(t, tt.output, result.Output)
			assert.Equal(t, tt.err, result.Error)
			assert.Equal(t, tt.status, result.Status)
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	classifier := defaultClassifier(t)
	s := submission(6, "Compilation Error")
	s.Stderr = "W"
	s.CompileOutput = "C"

	first := classifier.Classify(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classifier.Classify(s))
	}
}

func TestClassifyWithoutNoisePatterns(t *testing.T) {
	s := submission(3, "Accepted")
	s.Stderr = nodeDeprecation

	result := NewClassifier(nil).Classify(s)
	require.NotNil(t, result.Error)
	assert.Equal(t, nodeDeprecation, *result.Error)
}

func TestClassifyCustomNoise(t *testing.T) {
	classifier := NewClassifier([]*regexp.Regexp{regexp.MustCompile(`(?m)^Picked up JAVA_TOOL_OPTIONS:.*\n?`)})

	s := submission(3, "Accepted")
	s.Stderr = "Picked up JAVA_TOOL_OPTIONS: -Xss64m\n"
	assert.Nil(t, classifier.Classify(s).Error)
}

func TestClassificationRuleOrder(t *testing.T) {
	var names []string
	for _, r := range classificationRules {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{
		"stdout",
		"stderr",
		"compile_output",
		"compilation_error",
		"runtime_error",
		"time_limit",
		"internal_error",
	}, names)
}
