package admission

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestPriority(t *testing.T) {
	Convey("Priority classes parse and print", t, func() {
		for _, p := range []Priority{Critical, High, Normal, Low, Background} {
			parsed, err := ParsePriority(p.String())
			So(err, ShouldBeNil)
			So(parsed, ShouldEqual, p)
		}
		So(Critical < High && High < Normal && Normal < Low && Low < Background, ShouldBeTrue)

		_, err := ParsePriority("urgent")
		So(err, ShouldNotBeNil)
		So(Priority(4).String(), ShouldEqual, "priority(4)")
	})
}

func TestQueueOrdering(t *testing.T) {
	Convey("Given a queue that runs one task at a time", t, func() {
		m := NewManager([]string{"work"}, WithMaxConcurrent(1))
		gate := make(chan struct{})

		var mu sync.Mutex
		var order []string
		record := func(name string) func() {
			return func() {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
			}
		}

		So(m.Enqueue("work", func() { <-gate }, Normal), ShouldBeNil)
		So(eventually(func() bool { q, _ := m.Queue("work"); return q.Stats().Running == 1 }), ShouldBeTrue)

		So(m.Enqueue("work", record("bg"), Background), ShouldBeNil)
		So(m.Enqueue("work", record("low-1"), Low), ShouldBeNil)
		So(m.Enqueue("work", record("crit"), Critical), ShouldBeNil)
		So(m.Enqueue("work", record("low-2"), Low), ShouldBeNil)
		So(m.Enqueue("work", record("high"), High), ShouldBeNil)

		q, _ := m.Queue("work")
		So(q.Stats().Pending, ShouldEqual, 5)

		close(gate)

		Convey("Then pending tasks run by priority, FIFO within a class", func() {
			So(eventually(func() bool { return q.Stats().Completed == 6 }), ShouldBeTrue)
			mu.Lock()
			defer mu.Unlock()
			So(order, ShouldResemble, []string{"crit", "high", "low-1", "low-2", "bg"})
		})
	})
}

func TestQueueBounds(t *testing.T) {
	Convey("Given a queue with two slots and room for one waiter", t, func() {
		m := NewManager([]string{"q"}, WithMaxConcurrent(2), WithMaxLength(1))
		gate := make(chan struct{})
		var peak, current atomic.Int32
		task := func() {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			<-gate
			current.Add(-1)
		}

		So(m.Enqueue("q", task, Normal), ShouldBeNil)
		So(m.Enqueue("q", task, Normal), ShouldBeNil)
		So(m.Enqueue("q", task, Normal), ShouldBeNil)

		Convey("Then a fourth task is rejected as full", func() {
			So(eventually(func() bool { return current.Load() == 2 }), ShouldBeTrue)
			err := m.Enqueue("q", task, Normal)
			So(errors.Is(err, ErrRejected), ShouldBeTrue)
			So(errors.Is(err, ErrQueueFull), ShouldBeTrue)
			close(gate)

			q, _ := m.Queue("q")
			So(eventually(func() bool { return q.Stats().Completed == 3 }), ShouldBeTrue)
			So(peak.Load(), ShouldEqual, 2)
			So(q.Stats().Rejected, ShouldEqual, 1)
		})

		Convey("Then unknown queues are rejected", func() {
			err := m.Enqueue("nope", task, Normal)
			So(errors.Is(err, ErrUnknownQueue), ShouldBeTrue)
			So(errors.Is(err, ErrRejected), ShouldBeTrue)
			close(gate)
		})
	})
}

func TestQueuePanics(t *testing.T) {
	Convey("A panicking task frees its slot", t, func() {
		m := NewManager([]string{"q"}, WithMaxConcurrent(1))
		So(m.Enqueue("q", func() { panic("boom") }, Normal), ShouldBeNil)

		ran := make(chan struct{})
		So(m.Enqueue("q", func() { close(ran) }, Normal), ShouldBeNil)

		select {
		case <-ran:
		case <-time.After(2 * time.Second):
			t.Fatal("second task never ran")
		}
		q, _ := m.Queue("q")
		So(eventually(func() bool { return q.Stats().Panicked == 1 && q.Stats().Running == 0 }), ShouldBeTrue)
	})
}

func TestClose(t *testing.T) {
	Convey("Given a manager with a pending task", t, func() {
		m := NewManager([]string{"a", "b"}, WithMaxConcurrent(1))
		gate := make(chan struct{})
		var finished atomic.Int32
		So(m.Enqueue("a", func() { <-gate; finished.Add(1) }, Normal), ShouldBeNil)
		So(m.Enqueue("a", func() { finished.Add(1) }, Normal), ShouldBeNil)

		Convey("When closing with a short deadline", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := m.Close(ctx)

			Convey("Then the drain times out and new work is refused", func() {
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
				So(errors.Is(m.Enqueue("b", func() {}, Normal), ErrClosed), ShouldBeTrue)
				close(gate)
			})
		})

		Convey("When the running task finishes", func() {
			close(gate)
			So(m.Close(context.Background()), ShouldBeNil)
			So(finished.Load(), ShouldEqual, 2)
		})
	})
}

func TestSnapshot(t *testing.T) {
	Convey("Snapshots list queues by name", t, func() {
		m := NewManager([]string{"recommendations", "evaluations"}, WithMaxConcurrent(3), WithMaxLength(7))
		So(m.Register("evaluations"), ShouldNotBeNil)
		snap := m.Snapshot()
		So(snap, ShouldHaveLength, 2)
		So(snap[0].Name, ShouldEqual, "evaluations")
		So(snap[1].MaxConcurrent, ShouldEqual, 3)
		So(snap[1].MaxLength, ShouldEqual, 7)
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given an admission middleware", t, func() {
		m := NewManager([]string{"api"}, WithMaxConcurrent(1), WithMaxLength(1), WithBypass("/health", "/static/"))
		var hits atomic.Int32
		gate := make(chan struct{})
		slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if r.URL.Path == "/slow" {
				<-gate
			}
			w.WriteHeader(http.StatusNoContent)
		})
		h := m.Middleware("api", Normal)(slow)

		Convey("Then admitted requests reach the handler", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fast", nil))
			So(rec.Code, ShouldEqual, http.StatusNoContent)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("Then bypassed paths skip the queue", func() {
			So(m.Bypassed("/health"), ShouldBeTrue)
			So(m.Bypassed("/healthz"), ShouldBeFalse)
			So(m.Bypassed("/static/app.js"), ShouldBeTrue)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			So(rec.Code, ShouldEqual, http.StatusNoContent)
			q, _ := m.Queue("api")
			So(q.Stats().Admitted, ShouldEqual, 0)
		})

		Convey("Then an overflowing request gets 503 with Retry-After", func() {
			var wg sync.WaitGroup
			wg.Add(2)
			for i := 0; i < 2; i++ {
				go func() {
					defer wg.Done()
					h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
				}()
			}
			q, _ := m.Queue("api")
			So(eventually(func() bool { s := q.Stats(); return s.Running == 1 && s.Pending == 1 }), ShouldBeTrue)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
			So(rec.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(rec.Header().Get("Retry-After"), ShouldEqual, "1")
			So(rec.Body.String(), ShouldContainSubstring, "service_busy")

			close(gate)
			wg.Wait()
			So(hits.Load(), ShouldEqual, 2)
		})

		Convey("Then a client that leaves while waiting is dropped", func() {
			go h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
			q, _ := m.Queue("api")
			So(eventually(func() bool { return q.Stats().Running == 1 }), ShouldBeTrue)

			ctx, cancel := context.WithCancel(context.Background())
			returned := make(chan struct{})
			go func() {
				h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fast", nil).WithContext(ctx))
				close(returned)
			}()
			So(eventually(func() bool { return q.Stats().Pending == 1 }), ShouldBeTrue)
			cancel()
			<-returned

			close(gate)
			So(eventually(func() bool { return q.Stats().Completed == 2 }), ShouldBeTrue)
			So(hits.Load(), ShouldEqual, 1)
		})
	})
}
