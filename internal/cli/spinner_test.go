package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWithSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	err := withSpinner(context.Background(), &buf, "Connecting to redis...", func(context.Context) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("withSpinner = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Connecting to redis...") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("line not cleared at the end: %q", out)
	}
}

func TestWithSpinnerReturnsStepError(t *testing.T) {
	want := errors.New("render failed")
	var buf bytes.Buffer
	got := withSpinner(context.Background(), &buf, "Rendering SVG...", func(context.Context) error {
		return want
	})
	if got != want {
		t.Errorf("withSpinner = %v, want %v", got, want)
	}
}

func TestWithSpinnerPassesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	err := withSpinner(ctx, &buf, "Reading import...", func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("withSpinner = %v, want context.Canceled", err)
	}
}

func TestSpinnerLineEndIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerLine(&buf, "Loading graph...")
	s.start(context.Background())
	s.end()
	n := buf.Len()
	s.end()
	if buf.Len() != n {
		t.Errorf("second end wrote %q", buf.String()[n:])
	}
}
