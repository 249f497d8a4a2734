// Package ranking merges per-resume scores into one company's leaderboard using
// competition ranking ("1224"): tied scores share a rank and the next distinct
// score is ranked by the number of entries above it plus one.
package ranking

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Entry is a resume's score against one company. Entries are passed in
// discovery order: DiscoveredAt ascending, then ResumeID.
type Entry struct {
	ResumeID     uuid.UUID
	Score        float64
	DiscoveredAt time.Time
}

// Standing is an entry with its assigned rank.
type Standing struct {
	ResumeID uuid.UUID
	Score    float64
	Rank     int
}

// Merge adds or replaces subject in existing and re-ranks the whole set. Any
// existing entry of the subject is dropped so each resume appears at most once.
// The subject is placed at its discovery position, or last when DiscoveredAt is
// zero. A nil subject just re-ranks.
func Merge(subject *Entry, existing []Entry) []Standing {
	candidates := make([]Entry, 0, len(existing)+1)
	seen := make(map[uuid.UUID]struct{}, len(existing)+1)
	for _, e := range existing {
		if subject != nil && e.ResumeID == subject.ResumeID {
			continue
		}
		if _, dup := seen[e.ResumeID]; dup {
			continue
		}
		seen[e.ResumeID] = struct{}{}
		candidates = append(candidates, e)
	}
	if subject != nil {
		candidates = insertAt(candidates, *subject)
	}
	return rank(candidates)
}

func insertAt(entries []Entry, subject Entry) []Entry {
	pos := len(entries)
	if !subject.DiscoveredAt.IsZero() {
		for i, e := range entries {
			if DiscoveredBefore(subject, e) {
				pos = i
				break
			}
		}
	}
	entries = append(entries, Entry{})
	copy(entries[pos+1:], entries[pos:])
	entries[pos] = subject
	return entries
}

// DiscoveredBefore orders entries the way stored resumes are listed: by
// DiscoveredAt, then by resume id bytes.
func DiscoveredBefore(a, b Entry) bool {
	if !a.DiscoveredAt.Equal(b.DiscoveredAt) {
		return a.DiscoveredAt.Before(b.DiscoveredAt)
	}
	return bytes.Compare(a.ResumeID[:], b.ResumeID[:]) < 0
}

// Rank ranks entries from scratch. When a resume appears more than once only
// its first entry counts.
func Rank(entries []Entry) []Standing {
	return Merge(nil, entries)
}

// rank stable-sorts by score descending, so equal scores keep discovery order.
func rank(entries []Entry) []Standing {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	standings := make([]Standing, len(entries))
	for i, e := range entries {
		r := i + 1
		if i > 0 && e.Score == entries[i-1].Score {
			r = standings[i-1].Rank
		}
		standings[i] = Standing{ResumeID: e.ResumeID, Score: e.Score, Rank: r}
	}
	return standings
}

// Changed returns the standings of next that are new or whose score or rank
// differs from previous. Those are the only rows that need to be written.
func Changed(previous map[uuid.UUID]Standing, next []Standing) []Standing {
	var out []Standing
	for _, s := range next {
		old, ok := previous[s.ResumeID]
		if ok && old.Score == s.Score && old.Rank == s.Rank {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Removed returns the resumes present in previous but absent from next.
func Removed(previous map[uuid.UUID]Standing, next []Standing) []uuid.UUID {
	keep := make(map[uuid.UUID]struct{}, len(next))
	for _, s := range next {
		keep[s.ResumeID] = struct{}{}
	}
	var out []uuid.UUID
	for id := range previous {
		if _, ok := keep[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

// Index keys standings by resume.
func Index(standings []Standing) map[uuid.UUID]Standing {
	out := make(map[uuid.UUID]Standing, len(standings))
	for _, s := range standings {
		out[s.ResumeID] = s
	}
	return out
}

// Find returns the standing of resumeID, if ranked.
func Find(standings []Standing, resumeID uuid.UUID) (Standing, bool) {
	for _, s := range standings {
		if s.ResumeID == resumeID {
			return s, true
		}
	}
	return Standing{}, false
}
