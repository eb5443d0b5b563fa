package quiz

import (
	"sort"

	"github.com/test-pad/testpad/internal/grading"
)

// SanitizeQuestions strips answer keys before a test or an in-progress
// attempt is served to a student. Match questions keep their left column but
// the right values are re-emitted as a sorted option list, since the authored
// pair order is the answer key.
func SanitizeQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		q.Answer = nil
		q.TextKey = ""
		if q.Type == TypeMatch {
			lefts := make([]MatchPair, len(q.Matches))
			rights := make([]string, len(q.Matches))
			for j, p := range q.Matches {
				lefts[j] = MatchPair{Left: p.Left}
				rights[j] = p.Right
			}
			sort.Strings(rights)
			q.Matches = lefts
			q.RightOptions = rights
		}
		out[i] = q
	}
	return out
}

// gradeViews projects questions into the grading package's view.
func gradeViews(qs []Question) []grading.Q {
	out := make([]grading.Q, len(qs))
	for i, q := range qs {
		gq := grading.Q{
			Type:    q.Type,
			Points:  q.Points,
			Answer:  q.Answer,
			TextKey: q.TextKey,
		}
		for _, p := range q.Matches {
			gq.Rights = append(gq.Rights, p.Right)
		}
		out[i] = gq
	}
	return out
}
