package tracker

import (
	"testing"

	"fabricstore/internal/domain"
)

func completed(steps []Step) []bool {
	out := make([]bool, len(steps))
	for i, s := range steps {
		out[i] = s.Completed
	}
	return out
}

func TestStepsShipped(t *testing.T) {
	steps := Steps(domain.StatusShipped)
	want := []bool{true, true, true, false}
	got := completed(steps)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %s completed=%v, want %v", steps[i].Label, got[i], want[i])
		}
	}
	if !steps[2].Current || steps[2].Stage != domain.StageShipped {
		t.Fatalf("shipped should be current: %+v", steps[2])
	}
}

func TestStepsConfirmedAndProcessingShareRank(t *testing.T) {
	for _, st := range []domain.OrderStatus{domain.StatusConfirmed, domain.StatusProcessing} {
		got := completed(Steps(st))
		if !got[0] || !got[1] || got[2] || got[3] {
			t.Fatalf("%s: unexpected completion %v", st, got)
		}
	}
}

func TestStepsEndpoints(t *testing.T) {
	if got := completed(Steps(domain.StatusPending)); !got[0] || got[1] {
		t.Fatalf("pending: unexpected completion %v", got)
	}
	for i, done := range completed(Steps(domain.StatusDelivered)) {
		if !done {
			t.Fatalf("delivered: step %d incomplete", i)
		}
	}
}

func TestStepsCancelledAndUnknownCompleteNothing(t *testing.T) {
	for _, st := range []domain.OrderStatus{domain.StatusCancelled, "ON_HOLD", ""} {
		for i, done := range completed(Steps(st)) {
			if done {
				t.Fatalf("%q: step %d should not be complete", st, i)
			}
		}
	}
}

func TestStepsLowercaseStatus(t *testing.T) {
	if got := completed(Steps("shipped")); !got[2] {
		t.Fatalf("lowercase status should classify, got %v", got)
	}
}
