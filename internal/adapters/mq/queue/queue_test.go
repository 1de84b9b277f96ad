package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/model"
)

func batch(userID string) Batch {
	return Batch{
		UserID:          userID,
		Recommendations: []model.Recommendation{{UserID: userID, ProjectID: "p1", Score: 80}},
		EnqueuedAt:      time.Now(),
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, batch("u1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if l := q.Len(); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	b := <-q.Dequeue(ctx)
	if b.UserID != "u1" {
		t.Errorf("expected u1, got %v", b.UserID)
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.Enqueue(ctx, batch("u1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if err := q.Enqueue(ctx, batch("u2")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}

	if err := q.Enqueue(ctx, batch("u3")); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull when full, got %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
	if c := q.Capacity(); c != 2 {
		t.Errorf("expected capacity 2, got %d", c)
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	producers := 10
	perProducer := 100

	done := make(chan bool, producers)
	for i := 0; i < producers; i++ {
		go func(id int) {
			for j := 0; j < perProducer; j++ {
				for q.Enqueue(ctx, batch(fmt.Sprintf("u%d_%d", id, j))) != nil {
					time.Sleep(time.Millisecond)
				}
			}
			done <- true
		}(i)
	}

	consumed := make(chan string, producers*perProducer)
	for i := 0; i < 4; i++ {
		go func() {
			for b := range q.Dequeue(ctx) {
				consumed <- b.UserID
			}
		}()
	}

	for i := 0; i < producers; i++ {
		<-done
	}

	deadline := time.After(2 * time.Second)
	seen := 0
	for seen < producers*perProducer {
		select {
		case <-consumed:
			seen++
		case <-deadline:
			t.Fatalf("consumed %d of %d batches", seen, producers*perProducer)
		}
	}
	if l := q.Len(); l != 0 {
		t.Errorf("expected final length 0, got %d", l)
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Enqueue(ctx, batch("u1")); err != nil {
		t.Errorf("expected enqueue to succeed, got %v", err)
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if err := q.Enqueue(ctx, batch("u2")); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped after closing, got %v", err)
	}

	// Queued batches are still delivered before the channel closes.
	ch := q.Dequeue(ctx)
	timeout := time.After(time.Second)
	got := 0
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				if got != 1 {
					t.Errorf("expected 1 drained batch, got %d", got)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			got++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_ = q.Enqueue(context.Background(), batch("u1"))
	if err := q.Enqueue(ctx, batch("u2")); err == nil {
		t.Error("expected enqueue on a full queue with a cancelled context to fail")
	}
}
