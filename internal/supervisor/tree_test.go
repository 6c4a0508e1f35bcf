// Simrec - Item Similarity and Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/simrec

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"github.com/tomtom215/simrec/internal/config"
	"github.com/tomtom215/simrec/internal/logging"
)

// countingService runs until canceled, failing its first fails starts.
type countingService struct {
	name   string
	fails  int32
	starts atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	if n := s.starts.Add(1); n <= s.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string {
	return s.name
}

func testLogger() *slog.Logger {
	return slog.New(logging.NewSlogHandlerWithLogger(zerolog.Nop()))
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("Root() = nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}
}

func TestTreeConfigFrom(t *testing.T) {
	got := TreeConfigFrom(&config.SupervisorConfig{
		FailureThreshold: 3,
		FailureDecay:     10,
		FailureBackoff:   time.Second,
		ShutdownTimeout:  2 * time.Second,
	})
	want := TreeConfig{FailureThreshold: 3, FailureDecay: 10, FailureBackoff: time.Second, ShutdownTimeout: 2 * time.Second}
	if got != want {
		t.Errorf("TreeConfigFrom() = %+v, want %+v", got, want)
	}
}

func TestSupervisorTree_StartsEveryLayer(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})

	layers := []struct {
		name string
		add  func(suture.Service) suture.ServiceToken
	}{
		{"data", tree.AddDataService},
		{"queue", tree.AddQueueService},
		{"ops", tree.AddOpsService},
	}
	svcs := make([]*countingService, len(layers))
	for i, layer := range layers {
		svcs[i] = &countingService{name: layer.name}
		layer.add(svcs[i])
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	time.Sleep(100 * time.Millisecond)
	for i, layer := range layers {
		if svcs[i].starts.Load() < 1 {
			t.Errorf("%s layer service was not started", layer.name)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("tree did not shut down in time")
	}
}

func TestSupervisorTree_RestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	failing := &countingService{name: "failing", fails: 2}
	stable := &countingService{name: "stable"}
	tree.AddQueueService(failing)
	tree.AddOpsService(stable)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()
	time.Sleep(200 * time.Millisecond)

	if got := failing.starts.Load(); got < 3 {
		t.Errorf("failing service starts = %d, want >= 3", got)
	}
	if stable.starts.Load() != 1 {
		t.Errorf("stable service starts = %d, want 1", stable.starts.Load())
	}
}

func TestSupervisorTree_RemoveQueueService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	svc := &countingService{name: "removable"}
	token := tree.AddQueueService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = tree.Serve(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := tree.RemoveQueueService(token); err != nil {
		t.Errorf("RemoveQueueService() error = %v", err)
	}
}
