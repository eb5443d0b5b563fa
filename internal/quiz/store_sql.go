package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/test-pad/testpad/internal/eventlog"
	"github.com/test-pad/testpad/internal/grading"
)

type SQLStore struct {
	db     *sql.DB
	grader grading.Grader
	events *eventlog.Repo // optional
}

func NewSQLStore(db *sql.DB, events *eventlog.Repo) *SQLStore {
	return &SQLStore{db: db, grader: grading.NewGrader(), events: events}
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	sj, err := json.Marshal(t.Settings)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,title,description,creator_id,published,settings_json,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		published=EXCLUDED.published, settings_json=EXCLUDED.settings_json, questions_json=EXCLUDED.questions_json`,
		t.ID, t.Title, t.Description, t.CreatorID, t.Published, string(sj), string(qj), t.CreatedAt)
	if err != nil {
		return err
	}
	s.append(ctx, eventlog.TestCreated, t.ID, fmt.Sprintf(`{"creator_id":%q}`, t.CreatorID))
	return nil
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,creator_id,published,settings_json,questions_json,created_at FROM tests WHERE id=$1`, id)
	var t Test
	var sjson, qjson string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.CreatorID, &t.Published, &sjson, &qjson, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrTestNotFound
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(sjson), &t.Settings); err != nil {
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) DeleteTest(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrTestNotFound
	}
	return nil
}

func (s *SQLStore) ListTests(ctx context.Context, opts ListOpts) ([]TestSummary, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	where, args := []string{"1=1"}, []any{}
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}
	if opts.CreatorID != "" {
		where = append(where, "creator_id="+arg(opts.CreatorID))
	}
	if opts.Published {
		where = append(where, "published="+arg(true))
	}
	if opts.Q != "" {
		where = append(where, "title LIKE "+arg("%"+opts.Q+"%"))
	}
	query := `SELECT id,title,description,creator_id,published,questions_json,created_at FROM tests WHERE ` +
		joinAnd(where) + ` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TestSummary{}
	for rows.Next() {
		var ts TestSummary
		var qjson string
		if err := rows.Scan(&ts.ID, &ts.Title, &ts.Description, &ts.CreatorID, &ts.Published, &qjson, &ts.CreatedAt); err != nil {
			return nil, err
		}
		var qs []Question
		if err := json.Unmarshal([]byte(qjson), &qs); err == nil {
			ts.QuestionCount = len(qs)
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *SQLStore) NewAttempt(ctx context.Context, testID, userID string) (Attempt, error) {
	t, err := s.GetTest(ctx, testID)
	if err != nil {
		return Attempt{}, err
	}
	rng := rand.New(rand.NewSource(rand.Int63()))
	questions := AssembleInstance(t, rng)

	a := Attempt{
		ID:        uuid.NewString(),
		TestID:    testID,
		UserID:    userID,
		Status:    StatusInProgress,
		Questions: questions,
		Answers:   make([]json.RawMessage, len(questions)),
		StartedAt: time.Now().Unix(),
	}
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return Attempt{}, err
	}
	aj, _ := json.Marshal(a.Answers)
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,test_id,user_id,status,score,max_score,questions_json,answers_json,started_at)
		VALUES ($1,$2,$3,$4,0,0,$5,$6,$7)`,
		a.ID, a.TestID, a.UserID, a.Status, string(qj), string(aj), a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveAnswer(ctx context.Context, attemptID string, index int, answer json.RawMessage) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, ErrAttemptSubmitted
	}
	if index < 0 || index >= len(a.Questions) {
		return Attempt{}, fmt.Errorf("question index %d out of range", index)
	}
	a.Answers[index] = answer
	aj, err := json.Marshal(a.Answers)
	if err != nil {
		return Attempt{}, err
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE attempts SET answers_json=$1 WHERE id=$2`, string(aj), attemptID); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SubmitAttempt(ctx context.Context, attemptID string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}

	a.Score, a.MaxScore = grading.ScoreTest(s.grader, gradeViews(a.Questions), a.Answers)
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()

	aj, _ := json.Marshal(a.Answers)
	_, err = s.db.ExecContext(ctx, `UPDATE attempts SET status=$1, score=$2, max_score=$3, answers_json=$4, submitted_at=$5 WHERE id=$6`,
		a.Status, a.Score, a.MaxScore, string(aj), a.SubmittedAt, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	s.append(ctx, eventlog.AttemptSubmitted, a.ID,
		fmt.Sprintf(`{"test_id":%q,"user_id":%q,"score":%d}`, a.TestID, a.UserID, a.Score))
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,test_id,user_id,status,score,max_score,questions_json,answers_json,started_at,COALESCE(submitted_at,0) FROM attempts WHERE id=$1`, id)
	var a Attempt
	var qjson, ajson string
	if err := row.Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.Score, &a.MaxScore, &qjson, &ajson, &a.StartedAt, &a.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		a.Answers = make([]json.RawMessage, len(a.Questions))
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	where, args := []string{"1=1"}, []any{}
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}
	if opts.TestID != "" {
		where = append(where, "test_id="+arg(opts.TestID))
	}
	if opts.UserID != "" {
		where = append(where, "user_id="+arg(opts.UserID))
	}
	if opts.Status != "" {
		where = append(where, "status="+arg(opts.Status))
	}
	query := `SELECT id,test_id,user_id,status,score,max_score,questions_json,answers_json,started_at,COALESCE(submitted_at,0) FROM attempts WHERE ` +
		joinAnd(where) + ` ORDER BY started_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		var qjson, ajson string
		if err := rows.Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.Score, &a.MaxScore, &qjson, &ajson, &a.StartedAt, &a.SubmittedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(qjson), &a.Questions)
		_ = json.Unmarshal([]byte(ajson), &a.Answers)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateSession(ctx context.Context, testID, student string, answers []json.RawMessage) (Session, error) {
	t, err := s.GetTest(ctx, testID)
	if err != nil {
		return Session{}, err
	}
	score, max := grading.ScoreTest(s.grader, gradeViews(t.Questions), answers)

	sess := Session{
		ID:        uuid.NewString(),
		TestID:    testID,
		Student:   student,
		Answers:   answers,
		Score:     score,
		MaxScore:  max,
		CreatedAt: time.Now().Unix(),
	}
	aj, err := json.Marshal(answers)
	if err != nil {
		return Session{}, err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO sessions (id,test_id,student,answers_json,score,max_score,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sess.ID, sess.TestID, sess.Student, string(aj), sess.Score, sess.MaxScore, sess.CreatedAt)
	if err != nil {
		return Session{}, err
	}
	s.append(ctx, eventlog.SessionCreated, sess.ID,
		fmt.Sprintf(`{"test_id":%q,"student":%q,"score":%d}`, sess.TestID, sess.Student, sess.Score))
	return sess, nil
}

func (s *SQLStore) GetSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,test_id,student,answers_json,score,max_score,created_at FROM sessions WHERE id=$1`, id)
	var sess Session
	var ajson string
	if err := row.Scan(&sess.ID, &sess.TestID, &sess.Student, &ajson, &sess.Score, &sess.MaxScore, &sess.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	_ = json.Unmarshal([]byte(ajson), &sess.Answers)
	return sess, nil
}

func (s *SQLStore) ListSessions(ctx context.Context, opts SessionListOpts) ([]Session, error) {
	limit, offset := clampPage(opts.Limit, opts.Offset)
	where, args := []string{"1=1"}, []any{}
	n := 0
	arg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}
	if opts.TestID != "" {
		where = append(where, "test_id="+arg(opts.TestID))
	}
	if opts.Student != "" {
		where = append(where, "student="+arg(opts.Student))
	}
	query := `SELECT id,test_id,student,answers_json,score,max_score,created_at FROM sessions WHERE ` +
		joinAnd(where) + ` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Session{}
	for rows.Next() {
		var sess Session
		var ajson string
		if err := rows.Scan(&sess.ID, &sess.TestID, &sess.Student, &ajson, &sess.Score, &sess.MaxScore, &sess.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(ajson), &sess.Answers)
		out = append(out, sess)
	}
	return out, rows.Err()
}

// append is best-effort; the event log is an audit trail, not a dependency.
func (s *SQLStore) append(ctx context.Context, typ, key, data string) {
	if s.events == nil {
		return
	}
	_ = s.events.Append(ctx, typ, key, data)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func joinAnd(parts []string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += " AND " + p
	}
	return out
}
