package jobs

import (
	"testing"

	"audio-convert/internal/domain"
)

// TestManagerLifecycle verifies normal progression to done state.
func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	if m.IsRunning() {
		t.Fatal("new manager should be idle")
	}

	if err := m.Start("batch-1", 4); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !m.IsRunning() {
		t.Fatal("expected running after start")
	}

	for _, status := range []domain.BatchStatus{
		domain.BatchStatusConverting,
		domain.BatchStatusDone,
	} {
		if err := m.Transition(status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	m.SetCounts(3, 1)
	current := m.Current()
	if current.Status != domain.BatchStatusDone {
		t.Fatalf("current status = %s, want done", current.Status)
	}
	if current.Succeeded != 3 || current.Failed != 1 || current.Total != 4 {
		t.Fatalf("current = %+v", current)
	}
}

// TestManagerRejectsInvalidTransition checks state machine constraints.
func TestManagerRejectsInvalidTransition(t *testing.T) {
	m := NewManager()
	if err := m.Start("batch-1", 1); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := m.Transition(domain.BatchStatusDone); err == nil {
		t.Fatal("expected invalid transition error")
	}
}

// TestManagerRejectsSecondBatch checks the single-active-batch guard.
func TestManagerRejectsSecondBatch(t *testing.T) {
	m := NewManager()
	if err := m.Start("batch-1", 1); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Start("batch-2", 1); err != ErrBatchAlreadyRunning {
		t.Fatalf("second start error = %v, want %v", err, ErrBatchAlreadyRunning)
	}
}

// TestManagerCancel verifies cancel behavior and repeated cancel handling.
func TestManagerCancel(t *testing.T) {
	m := NewManager()
	if err := m.Start("batch-1", 2); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := m.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if m.Current().Status != domain.BatchStatusCancelled {
		t.Fatalf("status = %s, want cancelled", m.Current().Status)
	}

	if err := m.Cancel(); err != ErrNoRunningBatch {
		t.Fatalf("second cancel error = %v, want %v", err, ErrNoRunningBatch)
	}
}
