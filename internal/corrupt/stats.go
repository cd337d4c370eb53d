package corrupt

import (
	"fmt"
	"sort"
	"strings"
)

// Stats accumulates what a corruption pass did. It is returned by value
// and merged by the caller.
type Stats struct {
	Sentences int
	Entities  int
	Corrupted int
	Unknown   int
	Aborted   int
	ByPolicy  map[Policy]int
}

func newStats() Stats {
	return Stats{Sentences: 1, ByPolicy: make(map[Policy]int)}
}

// Add merges other into s
func (s *Stats) Add(other Stats) {
	if s.ByPolicy == nil {
		s.ByPolicy = make(map[Policy]int)
	}
	s.Sentences += other.Sentences
	s.Entities += other.Entities
	s.Corrupted += other.Corrupted
	s.Unknown += other.Unknown
	s.Aborted += other.Aborted
	for p, n := range other.ByPolicy {
		s.ByPolicy[p] += n
	}
}

// String renders a one-line summary
func (s Stats) String() string {
	policies := make([]string, 0, len(s.ByPolicy))
	for p := range s.ByPolicy {
		policies = append(policies, string(p))
	}
	sort.Strings(policies)

	parts := make([]string, 0, len(policies))
	for _, p := range policies {
		parts = append(parts, fmt.Sprintf("%s=%d", p, s.ByPolicy[Policy(p)]))
	}

	return fmt.Sprintf("sentences=%d entities=%d corrupted=%d unknown=%d aborted=%d [%s]",
		s.Sentences, s.Entities, s.Corrupted, s.Unknown, s.Aborted, strings.Join(parts, " "))
}
