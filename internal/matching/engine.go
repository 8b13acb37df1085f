// Package matching ranks candidates against job postings by skill
// overlap.
package matching

import (
	"sort"
	"strings"
)

// Match is one ranked candidate for an opening.
type Match struct {
	CandidateID   int64    `json:"candidate_id"`
	CandidateName string   `json:"candidate_name"`
	Score         int      `json:"score"`
	MatchedSkills []string `json:"matched_skills"`
}

// Profile is the candidate slice the engine scores.
type Profile struct {
	ID     int64
	Name   string
	Skills []string
}

// Score rates a candidate against required skills on a 0..100 scale.
// A posting without skill requirements matches nobody.
func Score(required, offered []string) (int, []string) {
	if len(required) == 0 {
		return 0, nil
	}
	have := make(map[string]struct{}, len(offered))
	for _, s := range offered {
		have[normalize(s)] = struct{}{}
	}
	matched := make([]string, 0, len(required))
	for _, s := range required {
		key := normalize(s)
		if _, ok := have[key]; ok {
			matched = append(matched, key)
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	return 100 * len(matched) / len(required), matched
}

// Rank scores every profile and returns matches sorted best first.
// Candidates with no overlap are omitted. Ties order by candidate id so
// output is stable across runs.
func Rank(required []string, profiles []Profile) []Match {
	matches := make([]Match, 0, len(profiles))
	for _, p := range profiles {
		score, matched := Score(required, p.Skills)
		if score == 0 {
			continue
		}
		matches = append(matches, Match{
			CandidateID:   p.ID,
			CandidateName: p.Name,
			Score:         score,
			MatchedSkills: matched,
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].CandidateID < matches[j].CandidateID
	})
	return matches
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
