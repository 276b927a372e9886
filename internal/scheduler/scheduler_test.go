package scheduler_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"hrdesk/recruitment-service/internal/scheduler"
)

func TestRunOnce_ContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	var ran []string
	s := scheduler.New(time.Hour, slog.New(slog.NewTextHandler(&buf, nil)),
		scheduler.Job{Name: "offers", Run: func(context.Context) (int, error) {
			ran = append(ran, "offers")
			return 0, errors.New("db down")
		}},
		scheduler.Job{Name: "onboarding", Run: func(context.Context) (int, error) {
			ran = append(ran, "onboarding")
			return 3, nil
		}},
	)

	s.RunOnce(context.Background())

	if len(ran) != 2 {
		t.Fatalf("expected both jobs to run, got %v", ran)
	}
	if !strings.Contains(buf.String(), "db down") {
		t.Errorf("expected failure to be logged, got %q", buf.String())
	}
}

func TestRunOnce_StopsOnCancelledContext(t *testing.T) {
	called := false
	s := scheduler.New(time.Hour, nil, scheduler.Job{Name: "offers", Run: func(context.Context) (int, error) {
		called = true
		return 0, nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.RunOnce(ctx)
	if called {
		t.Error("job ran on a cancelled context")
	}
}

func TestStart_RunsImmediately(t *testing.T) {
	done := make(chan struct{}, 1)
	s := scheduler.New(time.Hour, nil, scheduler.Job{Name: "offers", Run: func(context.Context) (int, error) {
		done <- struct{}{}
		return 1, nil
	}})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate sweep after Start")
	}
}
