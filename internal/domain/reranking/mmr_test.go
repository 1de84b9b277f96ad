package reranking

import (
	"testing"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewMMR(t *testing.T) {
	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"default value", 0.25, 0.25},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMMR(tt.lambda)
			if m.Lambda() != tt.wantLambda {
				t.Errorf("lambda = %f, want %f", m.Lambda(), tt.wantLambda)
			}
		})
	}
	if NewMMR(0.25).Name() != "mmr" {
		t.Error("unexpected name")
	}
}

func TestMMR_Trivial(t *testing.T) {
	m := NewMMR(0.25)

	if got := m.Rerank(nil, 10); len(got) != 0 {
		t.Errorf("Rerank(nil) = %v, want empty", got)
	}
	if got := m.Rerank([]Item{}, 10); len(got) != 0 {
		t.Errorf("Rerank([]) = %v, want empty", got)
	}
	single := []Item{{ID: "x", Score: 70, Tech: []string{"go"}}}
	got := m.Rerank(single, 10)
	if len(got) != 1 || got[0].ID != "x" || got[0].Score != 70 {
		t.Errorf("Rerank([x]) = %v, want [x]", got)
	}
}

func TestMMR_PrefersDisjointPair(t *testing.T) {
	overlapping := []Item{
		{ID: "a", Score: 80, Tech: []string{"Go", "SQL"}},
		{ID: "b", Score: 80, Tech: []string{"go", "sql"}},
		{ID: "c", Score: 80, Tech: []string{"Rust"}},
	}
	m := NewMMR(0.25)

	got := ids(m.Rerank(overlapping, 2))
	if !equal(got, []string{"a", "c"}) {
		t.Errorf("Rerank = %v, want [a c]", got)
	}

	first := ids(m.Rerank(overlapping, 1))
	if !equal(first, []string{"a"}) {
		t.Errorf("Rerank limit 1 = %v, want [a]", first)
	}
}

func TestMMR_Window(t *testing.T) {
	items := []Item{
		{ID: "1", Score: 90, Tech: []string{"go"}},
		{ID: "2", Score: 89, Tech: []string{"go"}},
		{ID: "3", Score: 88, Tech: []string{"go"}},
		{ID: "4", Score: 87, Tech: []string{"go"}},
		{ID: "5", Score: 60, Tech: []string{"haskell"}},
	}

	tests := []struct {
		name   string
		factor int
		limit  int
		want   []string
	}{
		{"window excludes the diverse tail", 2, 2, []string{"1", "2"}},
		{"wide window lets it in", 3, 2, []string{"1", "5"}},
		{"no limit re-ranks everything", 2, 0, []string{"1", "5", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(NewMMR(0.25, WithWindowFactor(tt.factor)).Rerank(items, tt.limit))
			if !equal(got, tt.want) {
				t.Errorf("Rerank = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMMR_PureRelevance(t *testing.T) {
	items := []Item{
		{ID: "a", Score: 90, Tech: []string{"go"}},
		{ID: "b", Score: 80, Tech: []string{"go"}},
		{ID: "c", Score: 70, Tech: []string{"rust"}},
	}
	got := ids(NewMMR(0).Rerank(items, 2))
	if !equal(got, []string{"a", "b"}) {
		t.Errorf("Rerank = %v, want [a b]", got)
	}
}

func TestMMR_Deterministic(t *testing.T) {
	items := []Item{
		{ID: "a", Score: 75, Tech: []string{"go", "js"}},
		{ID: "b", Score: 74, Tech: []string{"js"}},
		{ID: "c", Score: 74, Tech: []string{"python"}},
		{ID: "d", Score: 70, Tech: nil},
	}
	m := NewMMR(0.25)
	first := ids(m.Rerank(items, 3))
	for i := 0; i < 20; i++ {
		if got := ids(m.Rerank(items, 3)); !equal(got, first) {
			t.Fatalf("run %d = %v, want %v", i, got, first)
		}
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"identical", []string{"go"}, []string{"GO"}, 1},
		{"disjoint", []string{"go"}, []string{"rust"}, 0},
		{"half", []string{"go", "sql"}, []string{"go", "rust", "sql", "js"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Jaccard(techSet(tt.a), techSet(tt.b)); got != tt.want {
				t.Errorf("Jaccard = %f, want %f", got, tt.want)
			}
		})
	}
}
