// Package reranking reorders score-sorted recommendations for diversity.
package reranking

import (
	"math"
	"strings"
)

const (
	defaultLambda       = 0.25
	defaultWindowFactor = 2
	similarityScale     = 100
)

// Item is a scored candidate with the technologies used for similarity.
type Item struct {
	ID    string
	Score float64
	Tech  []string
}

// MMR is a greedy Maximal Marginal Relevance re-ranker. Each pick maximizes
//
//	(1-lambda)*score - lambda*100*max(jaccard(tech, selected))
//
// over a head window of windowFactor*limit items. Ties keep the earlier item,
// so output is deterministic for a given input order.
type MMR struct {
	lambda       float64
	windowFactor int
}

// Option configures an MMR.
type Option func(*MMR)

// WithWindowFactor sets how many candidates per requested slot are re-ranked.
func WithWindowFactor(factor int) Option {
	return func(m *MMR) {
		if factor >= 1 {
			m.windowFactor = factor
		}
	}
}

// NewMMR creates an MMR re-ranker. lambda is clamped to [0,1].
func NewMMR(lambda float64, opts ...Option) *MMR {
	if math.IsNaN(lambda) {
		lambda = defaultLambda
	}
	m := &MMR{lambda: math.Max(0, math.Min(1, lambda)), windowFactor: defaultWindowFactor}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name returns the reranker identifier.
func (m *MMR) Name() string { return "mmr" }

// Lambda returns the diversity weight.
func (m *MMR) Lambda() float64 { return m.lambda }

// Rerank returns at most limit items picked from the head window of items,
// which must already be sorted by descending score. A limit of zero or less
// means no limit. Zero or one item is returned unchanged.
func (m *MMR) Rerank(items []Item, limit int) []Item {
	if len(items) <= 1 {
		return items
	}
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	window := items
	if w := limit * m.windowFactor; w < len(items) {
		window = items[:w]
	}

	if m.lambda == 0 {
		out := make([]Item, limit)
		copy(out, window[:limit])
		return out
	}

	sets := make([]map[string]struct{}, len(window))
	for i, it := range window {
		sets[i] = techSet(it.Tech)
	}

	selected := make([]Item, 0, limit)
	picked := make([]bool, len(window))
	maxSim := make([]float64, len(window))

	for len(selected) < limit {
		best := -1
		bestValue := math.Inf(-1)
		for i, it := range window {
			if picked[i] {
				continue
			}
			v := (1-m.lambda)*it.Score - m.lambda*similarityScale*maxSim[i]
			if best < 0 || v > bestValue {
				best, bestValue = i, v
			}
		}
		if best < 0 {
			break
		}
		picked[best] = true
		selected = append(selected, window[best])

		for i := range window {
			if picked[i] {
				continue
			}
			if s := Jaccard(sets[i], sets[best]); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}
	return selected
}

// Jaccard returns |a∩b| / |a∪b|, or 0 when both sets are empty.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func techSet(tech []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tech))
	for _, t := range tech {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}
