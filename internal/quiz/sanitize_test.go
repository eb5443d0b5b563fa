package quiz

import (
	"reflect"
	"testing"
)

func TestSanitizeStripsKeys(t *testing.T) {
	qs := []Question{
		{Text: "pick", Type: TypeSingle, Options: []string{"a", "b"}, Answer: []int{1}},
		{Text: "say", Type: TypeText, TextKey: "secret"},
	}
	out := SanitizeQuestions(qs)
	for i, q := range out {
		if q.Answer != nil || q.TextKey != "" {
			t.Fatalf("question %d still carries its key: %+v", i, q)
		}
	}
	// Originals untouched.
	if len(qs[0].Answer) != 1 || qs[1].TextKey != "secret" {
		t.Fatal("sanitize mutated the input")
	}
}

func TestSanitizeMatchHidesPairing(t *testing.T) {
	qs := []Question{{
		Text: "countries",
		Type: TypeMatch,
		Matches: []MatchPair{
			{Left: "France", Right: "Paris"},
			{Left: "Germany", Right: "Berlin"},
			{Left: "Italy", Right: "Rome"},
		},
	}}
	out := SanitizeQuestions(qs)
	q := out[0]
	for _, p := range q.Matches {
		if p.Right != "" {
			t.Fatalf("right value leaked: %+v", q.Matches)
		}
	}
	wantLefts := []string{"France", "Germany", "Italy"}
	for i, p := range q.Matches {
		if p.Left != wantLefts[i] {
			t.Fatalf("left column reordered: %+v", q.Matches)
		}
	}
	// Right values come back as a sorted pool, not in pair order.
	if !reflect.DeepEqual(q.RightOptions, []string{"Berlin", "Paris", "Rome"}) {
		t.Fatalf("right options = %v", q.RightOptions)
	}
}
