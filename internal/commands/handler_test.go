package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

type testMessage struct{}

func (testMessage) Type() string { return "blog.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "blog.test.invalid" }

func (invalidMessage) Validate() error {
	return validationError()
}

func validationError() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !goerrors.HasCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category to propagate, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(20 * time.Millisecond):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func textCode(t *testing.T, err error) string {
	t.Helper()
	var typed *goerrors.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected go-errors error, got %T: %v", err, err)
	}
	return typed.TextCode
}

func TestHandlerTextCodes(t *testing.T) {
	slow := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout[testMessage](5*time.Millisecond))
	if code := textCode(t, slow.Execute(context.Background(), testMessage{})); code != TextCodeTimeout {
		t.Fatalf("expected %s, got %s", TextCodeTimeout, code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if code := textCode(t, slow.Execute(ctx, testMessage{})); code != TextCodeCanceled {
		t.Fatalf("expected %s, got %s", TextCodeCanceled, code)
	}

	failing := NewHandler[testMessage](func(context.Context, testMessage) error {
		return errors.New("boom")
	})
	if code := textCode(t, failing.Execute(context.Background(), testMessage{})); code != TextCodeFailed {
		t.Fatalf("expected %s, got %s", TextCodeFailed, code)
	}
}

func TestHandlerErrorClassifier(t *testing.T) {
	errMissingRepo := errors.New("repo missing")
	errOther := errors.New("other")
	classify := FirstClass(
		nil,
		ClassifyAs(ErrorClass{Category: goerrors.CategoryBadInput, TextCode: "TEST_CONFIG", Message: "bad config"}, errMissingRepo),
	)

	var next error
	h := NewHandler[testMessage](func(context.Context, testMessage) error {
		return next
	}, WithErrorClassifier[testMessage](classify))

	next = fmt.Errorf("load: %w", errMissingRepo)
	err := h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) || textCode(t, err) != "TEST_CONFIG" {
		t.Fatalf("expected classified error, got %v", err)
	}
	if !errors.Is(err, errMissingRepo) {
		t.Fatalf("expected cause preserved, got %v", err)
	}

	next = errOther
	err = h.Execute(context.Background(), testMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) || textCode(t, err) != TextCodeFailed {
		t.Fatalf("expected fallback classification, got %v", err)
	}
}

type recordingLogger struct {
	fields []map[string]any
	errors []string
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(msg string, _ ...any) {
	r.errors = append(r.errors, msg)
}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func TestHandlerTelemetryReceivesMessageFields(t *testing.T) {
	var got TelemetryInfo
	h := NewHandler[testMessage](func(context.Context, testMessage) error { return nil },
		WithOperation[testMessage]("seed.blog"),
		WithMessageFields(func(testMessage) map[string]any {
			return map[string]any{"dry_run": true}
		}),
		WithTelemetry(func(_ context.Context, _ testMessage, info TelemetryInfo) {
			got = info
		}),
	)

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got.Status != TelemetryStatusSuccess {
		t.Fatalf("expected success status, got %s", got.Status)
	}
	if got.Command != "blog.test.message" || got.Operation != "seed.blog" {
		t.Fatalf("unexpected telemetry identity %+v", got)
	}
	if got.Fields["dry_run"] != true {
		t.Fatalf("expected message fields in telemetry, got %v", got.Fields)
	}
}

func TestDefaultTelemetryLogsFailures(t *testing.T) {
	logger := &recordingLogger{}
	h := NewHandler[testMessage](func(context.Context, testMessage) error {
		return errors.New("boom")
	}, WithTelemetry(DefaultTelemetry[testMessage](logger)))

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected error")
	}
	if len(logger.errors) != 1 || logger.errors[0] != "command.execute.failed" {
		t.Fatalf("expected failure log entry, got %v", logger.errors)
	}
	if len(logger.fields) == 0 || logger.fields[0]["command"] != "blog.test.message" {
		t.Fatalf("expected command field, got %v", logger.fields)
	}
}
