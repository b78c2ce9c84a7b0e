package batch

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()

	q, err := OpenQueue(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { q.Close() })
	return q
}

func TestEnqueueAndPending(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id1, err := q.Enqueue(ctx, "analyze breakfast", "")
	if err != nil {
		t.Fatal(err)
	}
	id2, err := q.Enqueue(ctx, "analyze lunch", "be terse")
	if err != nil {
		t.Fatal(err)
	}

	units, err := q.Pending(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 pending units, got %d", len(units))
	}
	if units[0].ID != id1 || units[1].ID != id2 {
		t.Errorf("expected insertion order, got %d then %d", units[0].ID, units[1].ID)
	}
	if units[1].SystemInstruction != "be terse" {
		t.Errorf("unexpected system instruction: %q", units[1].SystemInstruction)
	}
}

func TestEnqueueEmptyPrompt(t *testing.T) {
	q := newTestQueue(t)
	if _, err := q.Enqueue(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty prompt")
	}
}

func TestPendingLimit(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := q.Enqueue(ctx, "prompt", ""); err != nil {
			t.Fatal(err)
		}
	}

	units, err := q.Pending(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 3 {
		t.Errorf("expected limit of 3, got %d", len(units))
	}
}

func TestMarkDoneRemovesFromPending(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "analyze dinner", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := q.MarkDone(ctx, id, "gemini-2.0-flash", "pasta, 600 kcal"); err != nil {
		t.Fatal(err)
	}

	units, err := q.Pending(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 0 {
		t.Errorf("done unit must leave the pending set, got %d", len(units))
	}

	counts, err := q.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusDone] != 1 {
		t.Errorf("expected 1 done unit, got %v", counts)
	}
}

func TestMarkFailed(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	id, err := q.Enqueue(ctx, "analyze snack", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := q.MarkFailed(ctx, id, "provider rejected request"); err != nil {
		t.Fatal(err)
	}

	counts, err := q.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusFailed] != 1 || counts[StatusPending] != 0 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestQueueSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.db")
	ctx := context.Background()

	q, err := OpenQueue(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.Enqueue(ctx, "persisted prompt", ""); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	q2, err := OpenQueue(path)
	if err != nil {
		t.Fatal(err)
	}
	defer q2.Close()

	units, err := q2.Pending(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units[0].Prompt != "persisted prompt" {
		t.Errorf("expected the unit to survive reopen, got %+v", units)
	}
}
