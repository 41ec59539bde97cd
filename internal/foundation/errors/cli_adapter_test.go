package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: 0,
		},
		{
			name: "classified validation error",
			err: NewError(CategoryValidation, "invalid input").
				WithSeverity(SeverityError).
				Build(),
			expected: 2,
		},
		{
			name:     "config error",
			err:      ConfigError("bad config").Build(),
			expected: 7,
		},
		{
			name:     "parse error",
			err:      ParseError("unterminated frontmatter").Build(),
			expected: 4,
		},
		{
			name:     "wrapped export error",
			err:      fmt.Errorf("writing catalog: %w", ExportError("disk full").Build()),
			expected: 11,
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{
			name:     "nil error",
			err:      nil,
			contains: "",
		},
		{
			name: "internal error in non-verbose mode",
			err: NewError(CategoryInternal, "internal issue").
				WithSeverity(SeverityError).
				Build(),
			contains: "Internal error occurred (use -v for details)",
		},
		{
			name:     "config error shows message",
			err:      ConfigError("bad config").Build(),
			contains: "bad config",
		},
		{
			name:     "unclassified error",
			err:      &customError{msg: "unknown error"},
			contains: "Error: unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.FormatError(tt.err)
			if tt.contains == "" {
				if got != "" {
					t.Errorf("FormatError() = %q, want empty string", got)
				}
				return
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("FormatError() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var logs, stderr bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	adapter := NewCLIErrorAdapter(false, logger)
	adapter.stderr = &stderr

	code := adapter.Report(ConfigError("missing extract section").WithContext("path", "mdpo.yaml").Build())

	if code != 7 {
		t.Errorf("Report() = %d, want 7", code)
	}
	if !strings.Contains(stderr.String(), "missing extract section") {
		t.Errorf("stderr %q does not contain message", stderr.String())
	}
	if !strings.Contains(logs.String(), "path=mdpo.yaml") {
		t.Errorf("log output %q does not contain context", logs.String())
	}
}

// customError is a test helper for unclassified errors
type customError struct {
	msg string
}

func (e *customError) Error() string {
	return e.msg
}
