package domain

import (
	"sort"
	"strings"
	"time"
)

// KnowledgeBase is an immutable snapshot of fact -> answer pairs.
// Keys are trimmed and lower-cased; answers are trimmed.
type KnowledgeBase struct {
	facts    map[string]string
	keys     []string
	Source   string
	LoadedAt time.Time
}

// NewKnowledgeBase builds a snapshot from raw source rows. Only the first two
// columns of each row are used; rows with fewer than two columns are skipped.
// When a key repeats, the last row wins.
func NewKnowledgeBase(source string, rows [][]string) *KnowledgeBase {
	facts := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		facts[strings.ToLower(strings.TrimSpace(row[0]))] = strings.TrimSpace(row[1])
	}

	keys := make([]string, 0, len(facts))
	for k := range facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return &KnowledgeBase{
		facts:    facts,
		keys:     keys,
		Source:   source,
		LoadedAt: time.Now().UTC(),
	}
}

func (kb *KnowledgeBase) Lookup(key string) (string, bool) {
	if kb == nil {
		return "", false
	}
	answer, ok := kb.facts[key]
	return answer, ok
}

// Keys returns the fact keys in sorted order. The slice must not be modified.
func (kb *KnowledgeBase) Keys() []string {
	if kb == nil {
		return nil
	}
	return kb.keys
}

func (kb *KnowledgeBase) Len() int {
	if kb == nil {
		return 0
	}
	return len(kb.facts)
}

// Facts returns a copy of the mapping.
func (kb *KnowledgeBase) Facts() map[string]string {
	out := make(map[string]string, kb.Len())
	if kb == nil {
		return out
	}
	for k, v := range kb.facts {
		out[k] = v
	}
	return out
}

type ResolutionSource string

const (
	ResolutionKnowledgeBase ResolutionSource = "knowledge_base"
	ResolutionFallback      ResolutionSource = "fallback"
)

// Resolution is an answer together with where it came from.
type Resolution struct {
	Answer      string           `json:"answer"`
	Source      ResolutionSource `json:"source"`
	LookupKey   string           `json:"lookup_key"`
	MatchedFact string           `json:"matched_fact,omitempty"`
	Score       float64          `json:"score,omitempty"`

	// Describe the snapshot the answer was resolved against.
	KnowledgeLoadedAt time.Time `json:"knowledge_loaded_at"`
	Stale             bool      `json:"stale"`
}
