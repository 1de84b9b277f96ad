package admission

import (
	"net/http"
	"sync/atomic"

	"github.com/goccy/go-json"
)

// RejectHandler answers a request that was not admitted.
type RejectHandler func(w http.ResponseWriter, r *http.Request, err error)

const (
	taskWaiting int32 = iota
	taskStarted
	taskAbandoned
)

// Middleware runs each request as a task on the named queue. Bypassed paths
// go straight to next. A request whose client leaves before its task starts
// is dropped; a started request always runs to completion.
func (m *Manager) Middleware(queue string, p Priority) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.Bypassed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			var state atomic.Int32
			done := make(chan struct{})
			task := func() {
				defer close(done)
				if !state.CompareAndSwap(taskWaiting, taskStarted) {
					return
				}
				defer func() {
					if rec := recover(); rec != nil {
						http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
						panic(rec)
					}
				}()
				next.ServeHTTP(w, r)
			}
			if err := m.Enqueue(queue, task, p); err != nil {
				m.reject(w, r, err)
				return
			}

			select {
			case <-done:
			case <-r.Context().Done():
				if state.CompareAndSwap(taskWaiting, taskAbandoned) {
					return
				}
				<-done
			}
		})
	}
}

type busyBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeBusy(w http.ResponseWriter, _ *http.Request, _ error) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_ = json.NewEncoder(w).Encode(busyBody{Code: "service_busy", Message: "server is busy, retry later"})
}
