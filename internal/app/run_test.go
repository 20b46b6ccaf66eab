package app

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"go.uber.org/fx"
)

type runnableStub struct {
	startErr error
	stopErr  error
	done     chan os.Signal
	stopped  bool
}

func (r *runnableStub) Start(context.Context) error { return r.startErr }
func (r *runnableStub) Stop(context.Context) error {
	r.stopped = true
	return r.stopErr
}
func (r *runnableStub) Done() <-chan os.Signal { return r.done }

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &runnableStub{done: make(chan os.Signal)}
	if err := run(ctx, stub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stub.stopped {
		t.Fatal("expected application to be stopped")
	}
}

func TestRunStopsOnShutdownSignal(t *testing.T) {
	stub := &runnableStub{done: make(chan os.Signal, 1)}
	stub.done <- os.Interrupt

	if err := run(context.Background(), stub); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stub.stopped {
		t.Fatal("expected application to be stopped")
	}
}

func TestRunReportsFailures(t *testing.T) {
	stub := &runnableStub{startErr: errors.New("port in use")}
	err := run(context.Background(), stub)
	if err == nil || !strings.Contains(err.Error(), "failed to start") {
		t.Fatalf("expected start failure, got %v", err)
	}
	if stub.stopped {
		t.Fatal("stop must not run after failed start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub = &runnableStub{stopErr: errors.New("timeout"), done: make(chan os.Signal)}
	err = run(ctx, stub)
	if err == nil || !strings.Contains(err.Error(), "failed to stop") {
		t.Fatalf("expected stop failure, got %v", err)
	}
}

func TestRunWithFxApp(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	app := fx.New(fx.NopLogger)
	if err := run(ctx, app); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
