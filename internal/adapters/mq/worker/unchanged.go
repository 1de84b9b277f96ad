package worker

import (
	"context"
	"strconv"
	"sync"

	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/adapters/mq/queue"
	"github.com/Souleilune/TechSyncDevVersion-sub000/internal/domain/dedupe"
	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
)

// unchanged skips a batch identical to the last one written for its user.
// One instance is shared by every worker of a pool.
type unchanged struct {
	seen dedupe.Deduper

	mu   sync.Mutex
	last map[string]string // user -> fingerprint of the last written batch
}

func newUnchanged(d dedupe.Deduper) *unchanged {
	return &unchanged{seen: d, last: make(map[string]string)}
}

// skip reports whether b repeats the user's last written batch. Otherwise it
// returns the fingerprint to pass to failed if the write does not succeed.
func (u *unchanged) skip(ctx context.Context, b *queue.Batch) (key string, skip bool) {
	key = fingerprint(b)
	if u.seen.SeenAndRecord(ctx, key) {
		return key, true
	}
	u.mu.Lock()
	prev, ok := u.last[b.UserID]
	u.last[b.UserID] = key
	u.mu.Unlock()
	if ok && prev != key {
		u.seen.Unrecord(ctx, prev)
	}
	return key, false
}

func (u *unchanged) failed(ctx context.Context, userID, key string) {
	u.seen.Unrecord(ctx, key)
	u.mu.Lock()
	if u.last[userID] == key {
		delete(u.last, userID)
	}
	u.mu.Unlock()
}

// fingerprint hashes what a batch stores, leaving out ids and timestamps.
func fingerprint(b *queue.Batch) string {
	h := xxhash.New()
	_, _ = h.WriteString(b.UserID)
	for i := range b.Recommendations {
		r := &b.Recommendations[i]
		_, _ = h.WriteString("\x00" + r.ProjectID + "\x00" + strconv.Itoa(r.Score))
		if factors, err := json.Marshal(r.MatchFactors); err == nil {
			_, _ = h.Write(factors)
		}
	}
	return b.UserID + ":" + strconv.FormatUint(h.Sum64(), 16)
}
