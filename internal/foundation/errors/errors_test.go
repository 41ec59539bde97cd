package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "mdpo.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "mdpo.yaml" {
			t.Errorf("expected context file=mdpo.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("load: %w", ConfigError("test error").Build())

		if !IsClassified(err) {
			t.Error("expected error to be classified")
		}
		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if !HasSeverity(err, SeverityFatal) {
			t.Error("expected error to have fatal severity")
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected plain errors to default to internal")
		}
	})

	t.Run("WithContext does not mutate the receiver", func(t *testing.T) {
		base := ParseError("bad frontmatter").Build()
		derived := base.WithContext("path", "a.md")

		if _, ok := base.Context().Get("path"); ok {
			t.Error("expected base context to stay untouched")
		}
		if p, _ := derived.Context().GetString("path"); p != "a.md" {
			t.Errorf("expected derived path a.md, got %q", p)
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("original error")
		err := WrapError(originalErr, CategoryFileSystem, "write catalog").
			Warning().
			Retryable().
			WithContext("path", "out/guide.po").
			Build()

		if err.Category() != CategoryFileSystem {
			t.Errorf("expected category %s, got %s", CategoryFileSystem, err.Category())
		}
		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if err.RetryStrategy() != RetryBackoff {
			t.Errorf("expected retry strategy %s, got %s", RetryBackoff, err.RetryStrategy())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if !err.CanRetry() {
			t.Error("expected backoff error to be retryable")
		}
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
			retry    RetryStrategy
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal, RetryUserAction},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal, RetryNever},
			{"GitError", GitError("test"), CategoryGit, SeverityError, RetryNever},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityError, RetryBackoff},
			{"ParseError", ParseError("test"), CategoryParse, SeverityError, RetryNever},
			{"ExportError", ExportError("test"), CategoryExport, SeverityError, RetryNever},
			{"RuntimeError", RuntimeError("test"), CategoryRuntime, SeverityFatal, RetryNever},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal, RetryNever},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				if err.Category() != tt.category {
					t.Errorf("expected category %s, got %s", tt.category, err.Category())
				}
				if err.Severity() != tt.severity {
					t.Errorf("expected severity %s, got %s", tt.severity, err.Severity())
				}
				if err.RetryStrategy() != tt.retry {
					t.Errorf("expected retry strategy %s, got %s", tt.retry, err.RetryStrategy())
				}
			})
		}
	})
}

func TestClassifiedError_LogValue(t *testing.T) {
	err := ExportError("write failed").WithContext("path", "x.po").Build()
	v := err.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("expected group value, got %s", v.Kind())
	}
	found := map[string]bool{}
	for _, a := range v.Group() {
		found[a.Key] = true
	}
	for _, key := range []string{"category", "severity", "message", "path"} {
		if !found[key] {
			t.Errorf("expected attribute %q in log value", key)
		}
	}
}

func TestErrorContext(t *testing.T) {
	t.Run("Context merge", func(t *testing.T) {
		ctx1 := make(ErrorContext)
		ctx1 = ctx1.Set("key1", "value1")
		ctx1 = ctx1.Set("shared", "original")

		ctx2 := make(ErrorContext)
		ctx2 = ctx2.Set("key2", "value2")
		ctx2 = ctx2.Set("shared", "overridden")

		merged := ctx1.Merge(ctx2)

		value1, _ := merged.GetString("key1")
		value2, _ := merged.GetString("key2")
		shared, _ := merged.GetString("shared")

		if value1 != "value1" {
			t.Errorf("expected key1=value1, got %s", value1)
		}
		if value2 != "value2" {
			t.Errorf("expected key2=value2, got %s", value2)
		}
		if shared != "overridden" {
			t.Errorf("expected shared=overridden, got %s", shared)
		}
	})

	t.Run("Nil context", func(t *testing.T) {
		var ctx ErrorContext
		if _, ok := ctx.Get("missing"); ok {
			t.Error("expected nil context lookup to miss")
		}
		ctx = ctx.Set("k", 1)
		if v, ok := ctx.Get("k"); !ok || v != 1 {
			t.Errorf("expected k=1 after Set on nil context, got %v", v)
		}
	})
}
