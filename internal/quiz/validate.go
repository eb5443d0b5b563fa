package quiz

import (
	"fmt"
	"strings"
)

// ValidationError reports why a test cannot be saved. The message is safe to
// return to the authoring client verbatim.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Validate checks a test before save: every question complete for its type,
// point values positive, time limits positive when enforcement is on, and
// every selection rule satisfiable by its topic's question count. The whole
// test is rejected on the first problem found.
func Validate(t *Test) error {
	if strings.TrimSpace(t.Title) == "" {
		return invalidf("test title is required")
	}
	if len(t.Questions) == 0 {
		return invalidf("test needs at least one question")
	}

	for i := range t.Questions {
		if err := validateQuestion(i, &t.Questions[i]); err != nil {
			return err
		}
	}

	return validateSelectionRules(t)
}

func validateQuestion(i int, q *Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return invalidf("question %d: text is required", i+1)
	}
	if q.Points < 0 {
		return invalidf("question %d: points cannot be negative", i+1)
	}
	if q.TimeLimitSec < 0 {
		return invalidf("question %d: time limit cannot be negative", i+1)
	}

	switch q.Type {
	case TypeSingle:
		if len(q.Options) < 2 {
			return invalidf("question %d: choice questions need at least 2 options", i+1)
		}
		if len(q.Answer) != 1 {
			return invalidf("question %d: single-choice needs exactly one correct option", i+1)
		}
		return validateAnswerIndices(i, q)
	case TypeMultiple:
		if len(q.Options) < 2 {
			return invalidf("question %d: choice questions need at least 2 options", i+1)
		}
		if len(q.Answer) == 0 {
			return invalidf("question %d: multiple-choice needs at least one correct option", i+1)
		}
		return validateAnswerIndices(i, q)
	case TypeMatch:
		if len(q.Matches) == 0 {
			return invalidf("question %d: matching needs at least one pair", i+1)
		}
		for _, p := range q.Matches {
			if strings.TrimSpace(p.Left) == "" || strings.TrimSpace(p.Right) == "" {
				return invalidf("question %d: matching pairs must have both sides filled", i+1)
			}
		}
	case TypeText:
		if strings.TrimSpace(q.TextKey) == "" {
			return invalidf("question %d: text answer is required", i+1)
		}
	default:
		return invalidf("question %d: unknown type %q", i+1, q.Type)
	}
	return nil
}

func validateAnswerIndices(i int, q *Question) error {
	seen := map[int]bool{}
	for _, idx := range q.Answer {
		if idx < 0 || idx >= len(q.Options) {
			return invalidf("question %d: answer index %d is out of range", i+1, idx)
		}
		if seen[idx] {
			return invalidf("question %d: duplicate answer index %d", i+1, idx)
		}
		seen[idx] = true
	}
	return nil
}

// validateSelectionRules rejects a save when a rule asks for more questions
// than its topic has; the error names the topic.
func validateSelectionRules(t *Test) error {
	if len(t.Settings.SelectionRules) == 0 {
		return nil
	}
	perTopic := map[string]int{}
	for _, q := range t.Questions {
		perTopic[q.Topic]++
	}
	seen := map[string]bool{}
	for _, r := range t.Settings.SelectionRules {
		if r.Count <= 0 {
			return invalidf("selection rule for topic %q: count must be positive", r.Topic)
		}
		if seen[r.Topic] {
			return invalidf("duplicate selection rule for topic %q", r.Topic)
		}
		seen[r.Topic] = true
		if have := perTopic[r.Topic]; have < r.Count {
			return invalidf("topic %q has %d questions but its selection rule requires %d", r.Topic, have, r.Count)
		}
	}
	// Every declared topic must have a rule once rules are in use.
	for topic := range perTopic {
		if topic != "" && !seen[topic] {
			return invalidf("topic %q has no selection rule", topic)
		}
	}
	return nil
}
