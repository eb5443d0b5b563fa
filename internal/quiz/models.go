package quiz

import "encoding/json"

// Question types. Answer payloads depend on the type: an option index for
// single, an index array for multiple, a right-value array aligned to the
// pairs for match, and a plain string for text.
const (
	TypeSingle   = "single"
	TypeMultiple = "multiple"
	TypeMatch    = "match"
	TypeText     = "text"
)

// MatchPair is one authored left/right pairing of a match question.
type MatchPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type Question struct {
	Text  string `json:"text"`
	Type  string `json:"type"` // single|multiple|match|text
	Topic string `json:"topic,omitempty"`

	Options []string    `json:"options,omitempty"` // single, multiple
	Answer  []int       `json:"answer,omitempty"`  // correct option indices
	Matches []MatchPair `json:"matches,omitempty"` // match
	TextKey string      `json:"text_key,omitempty"`

	// RightOptions is only populated on student-safe views of match
	// questions: the right-hand values, sorted, with the pairing hidden.
	RightOptions []string `json:"right_options,omitempty"`

	Points       int `json:"points,omitempty"` // defaults to 1 if zero
	TimeLimitSec int `json:"time_limit_sec,omitempty"`
}

// SelectionRule draws Count questions at random (without replacement) from
// the named topic when a test instance is assembled.
type SelectionRule struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type Settings struct {
	OneAtATime     bool            `json:"one_at_a_time,omitempty"`
	Shuffle        bool            `json:"shuffle,omitempty"`
	EnforceTime    bool            `json:"enforce_time,omitempty"`
	SelectionRules []SelectionRule `json:"selection_rules,omitempty"`
}

type Test struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	CreatorID   string     `json:"creator_id"`
	Published   bool       `json:"published"`
	Settings    Settings   `json:"settings"`
	Questions   []Question `json:"questions"`
	CreatedAt   int64      `json:"created_at,omitempty"`
}

// TestSummary is the listing view; question bodies stay out of it.
type TestSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	CreatorID     string `json:"creator_id"`
	Published     bool   `json:"published"`
	QuestionCount int    `json:"question_count"`
	CreatedAt     int64  `json:"created_at,omitempty"`
}

// Attempt statuses.
const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

// Attempt is one student's run through an assembled test instance. Questions
// holds the frozen post-assembly snapshot (selection rules and shuffle
// applied), so grading stays stable even if the test is edited mid-attempt.
// Answers are index-aligned to that snapshot.
type Attempt struct {
	ID          string            `json:"id"`
	TestID      string            `json:"test_id"`
	UserID      string            `json:"user_id"`
	Status      string            `json:"status"` // in_progress|submitted
	Questions   []Question        `json:"questions"`
	Answers     []json.RawMessage `json:"answers"`
	Score       int               `json:"score"`
	MaxScore    int               `json:"max_score"`
	StartedAt   int64             `json:"started_at"`
	SubmittedAt int64             `json:"submitted_at,omitempty"`
}

// Session is the one-shot submit variant: answers arrive in a single request
// and the server grades and records them together.
type Session struct {
	ID        string            `json:"id"`
	TestID    string            `json:"test_id"`
	Student   string            `json:"student"`
	Answers   []json.RawMessage `json:"answers"`
	Score     int               `json:"score"`
	MaxScore  int               `json:"max_score"`
	CreatedAt int64             `json:"created_at"`
}
