package quiz

import "math/rand"

// AssembleInstance builds the question list a single attempt runs against.
// When selection rules are present, each rule draws Count questions from its
// topic at random without replacement; questions with no topic are always
// included. With Shuffle set the final order is randomized, otherwise the
// authored order is kept. Callers freeze the returned slice into the attempt
// so grading is stable under later edits.
func AssembleInstance(t Test, rng *rand.Rand) []Question {
	qs := t.Questions
	if len(t.Settings.SelectionRules) > 0 {
		qs = drawByTopic(t, rng)
	}
	out := append([]Question(nil), qs...)
	if t.Settings.Shuffle {
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if !t.Settings.EnforceTime {
		// Authored limits stay on the test; the instance only carries them
		// when enforcement is on, so the flow can trust TimeLimitSec alone.
		for i := range out {
			out[i].TimeLimitSec = 0
		}
	}
	return out
}

func drawByTopic(t Test, rng *rand.Rand) []Question {
	quota := map[string]int{}
	for _, r := range t.Settings.SelectionRules {
		quota[r.Topic] = r.Count
	}

	// Pick indices per topic, then emit in authored order so the instance
	// reads like the original test minus the undrawn questions.
	byTopic := map[string][]int{}
	for i, q := range t.Questions {
		byTopic[q.Topic] = append(byTopic[q.Topic], i)
	}

	keep := map[int]bool{}
	for topic, idxs := range byTopic {
		n, limited := quota[topic]
		if !limited {
			for _, i := range idxs {
				keep[i] = true
			}
			continue
		}
		if n > len(idxs) {
			n = len(idxs)
		}
		perm := rng.Perm(len(idxs))
		for _, p := range perm[:n] {
			keep[idxs[p]] = true
		}
	}

	out := make([]Question, 0, len(keep))
	for i, q := range t.Questions {
		if keep[i] {
			out = append(out, q)
		}
	}
	return out
}
