package grading

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Q is a minimal view of a question needed for grading. The quiz package
// projects its Question into this to keep the dependency one-way.
type Q struct {
	Type    string
	Points  int
	Answer  []int    // correct option indices (single, multiple)
	Rights  []string // right-hand values in authored pair order (match)
	TextKey string   // expected answer (text)
}

// Result is the outcome of grading a single question response. Credit is
// binary per question, weighted by points.
type Result struct {
	Correct   bool
	Points    int // awarded: 0 or MaxPoints
	MaxPoints int
}

// Strategy grades a single question.
type Strategy interface {
	Grade(q Q, answer json.RawMessage) Result
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(q Q, answer json.RawMessage) Result
}

type defaultGrader struct {
	strategies map[string]Strategy
}

// NewGrader installs the built-in per-type strategies.
func NewGrader() Grader {
	return &defaultGrader{
		strategies: map[string]Strategy{
			"single":   singleStrategy{},
			"multiple": multipleStrategy{},
			"match":    matchStrategy{},
			"text":     textStrategy{},
		},
	}
}

func (g *defaultGrader) Grade(q Q, answer json.RawMessage) Result {
	res := Result{MaxPoints: PointsOf(q.Points)}
	s, ok := g.strategies[q.Type]
	if !ok || !Answered(answer) {
		return res
	}
	if s.Grade(q, answer).Correct {
		res.Correct = true
		res.Points = res.MaxPoints
	}
	return res
}

// Answered reports whether a raw answer value carries a response. Unanswered
// slots round-trip through JSON storage as the literal null, which must not
// reach the strategies (null coerces to 0, a valid option index).
func Answered(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// PointsOf applies the default point value of 1.
func PointsOf(points int) int {
	if points <= 0 {
		return 1
	}
	return points
}

// ScoreTest sums points over the questions the matcher accepts. Answers are
// index-aligned to questions; a short answers slice leaves the tail ungraded.
func ScoreTest(g Grader, qs []Q, answers []json.RawMessage) (score, max int) {
	for i, q := range qs {
		var ans json.RawMessage
		if i < len(answers) {
			ans = answers[i]
		}
		res := g.Grade(q, ans)
		max += res.MaxPoints
		score += res.Points
	}
	return score, max
}

// --- Strategies ---

type singleStrategy struct{}

func (singleStrategy) Grade(q Q, answer json.RawMessage) Result {
	idx, ok := toIndex(answer)
	if !ok || len(q.Answer) == 0 {
		return Result{}
	}
	return Result{Correct: idx == q.Answer[0]}
}

type multipleStrategy struct{}

// Set equality of submitted and correct indices, order-independent. An empty
// submission never matches.
func (multipleStrategy) Grade(q Q, answer json.RawMessage) Result {
	idxs, ok := toIndexSlice(answer)
	if !ok || len(idxs) == 0 {
		return Result{}
	}
	return Result{Correct: equalIntSets(idxs, q.Answer)}
}

type matchStrategy struct{}

// Positional comparison: the submitted right-hand values, trimmed and
// lowercased, must equal the authored right values pair by pair in the order
// the pairs were authored. Pairs answered correctly but out of that order do
// not count.
func (matchStrategy) Grade(q Q, answer json.RawMessage) Result {
	vals, ok := toStringSlice(answer)
	if !ok || len(vals) != len(q.Rights) || len(q.Rights) == 0 {
		return Result{}
	}
	for i, want := range q.Rights {
		if normalize(vals[i]) != normalize(want) {
			return Result{}
		}
	}
	return Result{Correct: true}
}

type textStrategy struct{}

func (textStrategy) Grade(q Q, answer json.RawMessage) Result {
	var s string
	if err := json.Unmarshal(answer, &s); err != nil {
		return Result{}
	}
	if normalize(q.TextKey) == "" {
		return Result{}
	}
	return Result{Correct: normalize(s) == normalize(q.TextKey)}
}

// --- helpers ---

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// toIndex accepts a JSON number or a numeric string; clients have submitted
// both shapes for single-choice answers. Only whole numbers are indices;
// 0.9 must not truncate into a match for option 0.
func toIndex(raw json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return 0, false
}

func toIndexSlice(raw json.RawMessage) ([]int, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, it := range items {
		v, ok := toIndex(it)
		if !ok {
			return nil, false
		}
		out = append(out, v)
	}
	return out, true
}

func toStringSlice(raw json.RawMessage) ([]string, bool) {
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func equalIntSets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]int(nil), a...)
	bs := append([]int(nil), b...)
	sort.Ints(as)
	sort.Ints(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
