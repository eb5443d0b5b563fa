package quiz

import (
	"math/rand"
	"testing"
)

func topicTest() Test {
	return Test{
		ID:    "t1",
		Title: "Mixed",
		Questions: []Question{
			{Text: "a1", Type: TypeText, TextKey: "x", Topic: "alpha"},
			{Text: "a2", Type: TypeText, TextKey: "x", Topic: "alpha"},
			{Text: "a3", Type: TypeText, TextKey: "x", Topic: "alpha"},
			{Text: "b1", Type: TypeText, TextKey: "x", Topic: "beta"},
			{Text: "b2", Type: TypeText, TextKey: "x", Topic: "beta"},
			{Text: "u1", Type: TypeText, TextKey: "x"},
		},
		Settings: Settings{
			SelectionRules: []SelectionRule{
				{Topic: "alpha", Count: 2},
				{Topic: "beta", Count: 1},
			},
		},
	}
}

func TestAssembleDrawsPerTopicQuota(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		got := AssembleInstance(topicTest(), rng)
		counts := map[string]int{}
		seen := map[string]bool{}
		for _, q := range got {
			counts[q.Topic]++
			if seen[q.Text] {
				t.Fatalf("question %q drawn twice", q.Text)
			}
			seen[q.Text] = true
		}
		if counts["alpha"] != 2 || counts["beta"] != 1 || counts[""] != 1 {
			t.Fatalf("draw %d: counts = %v, want alpha:2 beta:1 untopiced:1", i, counts)
		}
	}
}

func TestAssembleKeepsAuthoredOrderWithoutShuffle(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	got := AssembleInstance(topicTest(), rng)
	pos := map[string]int{}
	for i, q := range topicTest().Questions {
		pos[q.Text] = i
	}
	for i := 1; i < len(got); i++ {
		if pos[got[i-1].Text] > pos[got[i].Text] {
			t.Fatalf("instance out of authored order: %q before %q", got[i-1].Text, got[i].Text)
		}
	}
}

func TestAssembleWithoutRulesKeepsEverything(t *testing.T) {
	tt := topicTest()
	tt.Settings.SelectionRules = nil
	got := AssembleInstance(tt, rand.New(rand.NewSource(3)))
	if len(got) != len(tt.Questions) {
		t.Fatalf("len = %d, want %d", len(got), len(tt.Questions))
	}
}

func TestAssembleTimeLimitsFollowEnforceTime(t *testing.T) {
	tt := Test{
		ID:    "t1",
		Title: "Timed",
		Questions: []Question{
			{Text: "q1", Type: TypeText, TextKey: "x", TimeLimitSec: 60},
			{Text: "q2", Type: TypeText, TextKey: "x", TimeLimitSec: 30},
			{Text: "q3", Type: TypeText, TextKey: "x"},
		},
	}
	rng := rand.New(rand.NewSource(5))

	// Enforcement off: authored limits stay off the instance.
	got := AssembleInstance(tt, rng)
	for i, q := range got {
		if q.TimeLimitSec != 0 {
			t.Fatalf("question %d carries limit %d with enforcement off", i, q.TimeLimitSec)
		}
	}
	// The authored test keeps its limits.
	if tt.Questions[0].TimeLimitSec != 60 {
		t.Fatal("authored limit mutated")
	}

	tt.Settings.EnforceTime = true
	got = AssembleInstance(tt, rng)
	want := []int{60, 30, 0}
	for i, q := range got {
		if q.TimeLimitSec != want[i] {
			t.Fatalf("question %d limit = %d, want %d", i, q.TimeLimitSec, want[i])
		}
	}
}

func TestAssembleShuffleKeepsQuestionSet(t *testing.T) {
	tt := topicTest()
	tt.Settings.SelectionRules = nil
	tt.Settings.Shuffle = true
	got := AssembleInstance(tt, rand.New(rand.NewSource(4)))
	if len(got) != len(tt.Questions) {
		t.Fatalf("len = %d, want %d", len(got), len(tt.Questions))
	}
	seen := map[string]bool{}
	for _, q := range got {
		seen[q.Text] = true
	}
	for _, q := range tt.Questions {
		if !seen[q.Text] {
			t.Fatalf("question %q lost in shuffle", q.Text)
		}
	}
}
