package grading

import (
	"encoding/json"
	"testing"
)

func TestSingleChoice(t *testing.T) {
	q := Q{Type: "single", Answer: []int{0}}
	g := NewGrader()

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"correct index", `0`, true},
		{"correct index as string", `"0"`, true},
		{"wrong index", `1`, false},
		{"out of range index", `7`, false},
		{"fractional number", `0.9`, false},
		{"fractional string", `"0.9"`, false},
		{"empty string", `""`, false},
		{"null", `null`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Grade(q, json.RawMessage(tc.answer))
			if got.Correct != tc.correct {
				t.Fatalf("Grade(%s).Correct = %v, want %v", tc.answer, got.Correct, tc.correct)
			}
		})
	}

	if res := g.Grade(q, nil); res.Correct {
		t.Fatal("empty submission must not match")
	}
}

func TestMultipleChoice(t *testing.T) {
	q := Q{Type: "multiple", Answer: []int{0, 2}}
	g := NewGrader()

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"exact set", `[0,2]`, true},
		{"order independent", `[2,0]`, true},
		{"string coerced", `["2","0"]`, true},
		{"subset", `[0]`, false},
		{"superset", `[0,1,2]`, false},
		{"empty never matches", `[]`, false},
		{"not an array", `0`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Grade(q, json.RawMessage(tc.answer))
			if got.Correct != tc.correct {
				t.Fatalf("Grade(%s).Correct = %v, want %v", tc.answer, got.Correct, tc.correct)
			}
		})
	}
}

func TestMatchIsPositional(t *testing.T) {
	// Pairs [{A,1},{B,2}]: ["1","2"] is correct, ["2","1"] is not, even
	// though both pairs are individually right.
	q := Q{Type: "match", Rights: []string{"1", "2"}}
	g := NewGrader()

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"authored order", `["1","2"]`, true},
		{"swapped order", `["2","1"]`, false},
		{"case and space insensitive", `[" 1 ","2"]`, true},
		{"short submission", `["1"]`, false},
		{"empty", `[]`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Grade(q, json.RawMessage(tc.answer))
			if got.Correct != tc.correct {
				t.Fatalf("Grade(%s).Correct = %v, want %v", tc.answer, got.Correct, tc.correct)
			}
		})
	}
}

func TestTextAnswer(t *testing.T) {
	q := Q{Type: "text", TextKey: "Paris"}
	g := NewGrader()

	tests := []struct {
		name    string
		answer  string
		correct bool
	}{
		{"exact", `"Paris"`, true},
		{"lowercase", `"paris"`, true},
		{"surrounding whitespace", `" Paris "`, true},
		{"trailing space", `"paris "`, true},
		{"misspelled", `"Pariss"`, false},
		{"empty", `""`, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Grade(q, json.RawMessage(tc.answer))
			if got.Correct != tc.correct {
				t.Fatalf("Grade(%s).Correct = %v, want %v", tc.answer, got.Correct, tc.correct)
			}
		})
	}
}

func TestScoreTest(t *testing.T) {
	// Three questions worth [1,2,1]; only the second is answered correctly.
	qs := []Q{
		{Type: "single", Points: 1, Answer: []int{0}},
		{Type: "multiple", Points: 2, Answer: []int{1, 2}},
		{Type: "text", Points: 1, TextKey: "Paris"},
	}
	answers := []json.RawMessage{
		json.RawMessage(`1`),
		json.RawMessage(`[2,1]`),
		json.RawMessage(`"London"`),
	}

	score, max := ScoreTest(NewGrader(), qs, answers)
	if score != 2 {
		t.Fatalf("score = %d, want 2", score)
	}
	if max != 4 {
		t.Fatalf("max = %d, want 4", max)
	}
}

func TestDefaultPointValue(t *testing.T) {
	qs := []Q{{Type: "single", Answer: []int{1}}}
	answers := []json.RawMessage{json.RawMessage(`1`)}
	score, max := ScoreTest(NewGrader(), qs, answers)
	if score != 1 || max != 1 {
		t.Fatalf("score,max = %d,%d; want 1,1 (points default to 1)", score, max)
	}
}

func TestUnknownTypeNeverScores(t *testing.T) {
	g := NewGrader()
	res := g.Grade(Q{Type: "essay", Points: 3}, json.RawMessage(`"anything"`))
	if res.Correct || res.Points != 0 {
		t.Fatalf("unknown type graded as correct: %+v", res)
	}
	if res.MaxPoints != 3 {
		t.Fatalf("MaxPoints = %d, want 3", res.MaxPoints)
	}
}
