package cleanup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

type mockSessionPurger struct {
	deleteExpiredFn func(ctx context.Context) (int64, error)

	calls int
}

func (m *mockSessionPurger) DeleteExpired(ctx context.Context) (int64, error) {
	m.calls++
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return 0, nil
}

type mockCleanupMetrics struct {
	counts []int64
}

func (m *mockCleanupMetrics) RecordSessionsCleaned(count int64) {
	m.counts = append(m.counts, count)
}

var _ SessionPurger = (*mockSessionPurger)(nil)
var _ CleanupMetrics = (*mockCleanupMetrics)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRun_DeletesExpiredSessions(t *testing.T) {
	purger := &mockSessionPurger{
		deleteExpiredFn: func(context.Context) (int64, error) {
			return 5, nil
		},
	}
	metrics := &mockCleanupMetrics{}
	job := NewCleanupJob(purger, discardLogger(), metrics)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purger.calls != 1 {
		t.Errorf("expected 1 purge call, got %d", purger.calls)
	}
	if len(metrics.counts) != 1 || metrics.counts[0] != 5 {
		t.Errorf("deleted count should be recorded, got %v", metrics.counts)
	}
}

// 削除対象がなくてもエラーにならない。
func TestRun_NoExpiredSessions_Succeeds(t *testing.T) {
	job := NewCleanupJob(&mockSessionPurger{}, discardLogger(), nil)

	if err := job.Run(context.Background()); err != nil {
		t.Errorf("idempotent run should not fail: %v", err)
	}
}

func TestRun_StoreError_Propagates(t *testing.T) {
	purger := &mockSessionPurger{
		deleteExpiredFn: func(context.Context) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	job := NewCleanupJob(purger, discardLogger(), nil)

	if err := job.Run(context.Background()); err == nil {
		t.Error("store failure should propagate")
	}
}

// Startは起動直後に1回実行し、ctxキャンセルで停止する。
func TestStart_RunsImmediatelyAndStopsOnCancel(t *testing.T) {
	ran := make(chan struct{}, 1)
	purger := &mockSessionPurger{
		deleteExpiredFn: func(context.Context) (int64, error) {
			select {
			case ran <- struct{}{}:
			default:
			}
			return 0, nil
		},
	}
	job := NewCleanupJob(purger, discardLogger(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx, time.Hour)
		close(done)
	}()

	<-ran
	cancel()
	<-done

	if purger.calls < 1 {
		t.Errorf("expected at least 1 run, got %d", purger.calls)
	}
}
