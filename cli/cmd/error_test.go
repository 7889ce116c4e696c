package cmd

import (
	"errors"
	"log/slog"
	"testing"
)

func TestError_IsSentinel(t *testing.T) {
	cause := errors.New("permission denied")
	err := ErrWriteConfig.With(slog.String("file", "x")).Wrap(cause)

	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("errors.Is(%v, ErrWriteConfig) = false", err)
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(%v, cause) = false", err)
	}

	if errors.Is(err, ErrReadSource) {
		t.Errorf("errors.Is(%v, ErrReadSource) = true", err)
	}

	if got, want := err.Error(), "write configuration file: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_LogValue(t *testing.T) {
	err := ErrUsage.With(slog.Int("want", 3)).Wrap(errors.New("expected FROM TO AMOUNT"))

	attrs := err.LogValue().Group()
	if len(attrs) != 3 {
		t.Fatalf("LogValue() = %v, want 3 attrs", attrs)
	}

	if attrs[0].Key != "error" || attrs[1].Key != "cause" || attrs[2].Key != "want" {
		t.Errorf("LogValue() keys = %s, %s, %s", attrs[0].Key, attrs[1].Key, attrs[2].Key)
	}
}
