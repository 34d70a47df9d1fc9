package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/techops-academy/certifier/internal/model"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'trainee',
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS modules (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		read_time TEXT NOT NULL DEFAULT '',
		track TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		quizzes_json TEXT NOT NULL DEFAULT '[]'
	);

	CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL DEFAULT 'general',
		type TEXT NOT NULL DEFAULT 'multiple',
		text TEXT NOT NULL,
		options_json TEXT NOT NULL DEFAULT '[]',
		correct_index INTEGER NOT NULL DEFAULT 0,
		accepted_answers_json TEXT NOT NULL DEFAULT '[]',
		hidden_answers_json TEXT NOT NULL DEFAULT '[]',
		explanation TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS simulation_cases (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		meta_json TEXT NOT NULL DEFAULT '{}',
		description TEXT NOT NULL DEFAULT '',
		correct_action TEXT NOT NULL,
		explanation TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		track TEXT NOT NULL,
		module_id TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		xp INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL,
		UNIQUE(user_id, module_id),
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS exam_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		exam_type TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		passed INTEGER NOT NULL DEFAULT 0,
		theory_percent INTEGER NOT NULL DEFAULT 0,
		simulation_percent INTEGER NOT NULL DEFAULT 0,
		result_json TEXT NOT NULL DEFAULT '{}',
		attempt_no INTEGER NOT NULL DEFAULT 1,
		duration_seconds INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS exam_metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		filename TEXT PRIMARY KEY,
		sha256 TEXT NOT NULL,
		imported_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceQuestions swaps the whole question bank in one transaction.
func (s *Store) ReplaceQuestions(questions []model.Question) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM questions`); err != nil {
		return err
	}
	for _, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return err
		}
		accepted, err := json.Marshal(q.AcceptedAnswers)
		if err != nil {
			return err
		}
		hidden, err := json.Marshal(q.HiddenAnswers)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO questions (id, category, type, text, options_json, correct_index, accepted_answers_json, hidden_answers_json, explanation)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			q.ID, q.Category, q.Type, q.Text, string(options), q.CorrectIndex, string(accepted), string(hidden), q.Explanation,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListQuestions returns the whole question bank.
func (s *Store) ListQuestions() ([]model.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, category, type, text, options_json, correct_index, accepted_answers_json, hidden_answers_json, explanation
		 FROM questions ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		var options, accepted, hidden string
		if err := rows.Scan(&q.ID, &q.Category, &q.Type, &q.Text, &options, &q.CorrectIndex, &accepted, &hidden, &q.Explanation); err != nil {
			return nil, err
		}
		q.Options = decodeList(options)
		q.AcceptedAnswers = decodeList(accepted)
		q.HiddenAnswers = decodeList(hidden)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// QuestionCount returns the number of questions in the bank.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

// ReplaceSimulationCases swaps the simulation case set in one transaction.
func (s *Store) ReplaceSimulationCases(cases []model.SimulationCase) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM simulation_cases`); err != nil {
		return err
	}
	for _, c := range cases {
		meta, err := json.Marshal(c.Meta)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			`INSERT INTO simulation_cases (id, title, meta_json, description, correct_action, explanation)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Title, string(meta), c.Description, c.CorrectAction, c.Explanation,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListSimulationCases returns all simulation cases.
func (s *Store) ListSimulationCases() ([]model.SimulationCase, error) {
	rows, err := s.db.Query(
		`SELECT id, title, meta_json, description, correct_action, explanation FROM simulation_cases ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cases []model.SimulationCase
	for rows.Next() {
		var c model.SimulationCase
		var meta string
		if err := rows.Scan(&c.ID, &c.Title, &meta, &c.Description, &c.CorrectAction, &c.Explanation); err != nil {
			return nil, err
		}
		if meta != "" && meta != "null" {
			_ = json.Unmarshal([]byte(meta), &c.Meta)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// UpsertModule inserts or replaces a training module.
func (s *Store) UpsertModule(m model.Module) error {
	quizzes, err := json.Marshal(m.Quizzes)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO modules (id, title, icon, read_time, track, content, quizzes_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = ?, icon = ?, read_time = ?, track = ?, content = ?, quizzes_json = ?`,
		m.ID, m.Title, m.Icon, m.ReadTime, m.Track, m.Content, string(quizzes),
		m.Title, m.Icon, m.ReadTime, m.Track, m.Content, string(quizzes),
	)
	return err
}

// ListModules returns all modules for a track; an empty track means all
// tracks.
func (s *Store) ListModules(track string) ([]model.Module, error) {
	query := `SELECT id, title, icon, read_time, track, content, quizzes_json FROM modules`
	var args []any
	if track != "" {
		query += ` WHERE track = ?`
		args = append(args, track)
	}
	query += ` ORDER BY id`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var modules []model.Module
	for rows.Next() {
		var m model.Module
		var quizzes string
		if err := rows.Scan(&m.ID, &m.Title, &m.Icon, &m.ReadTime, &m.Track, &m.Content, &quizzes); err != nil {
			return nil, err
		}
		if quizzes != "" && quizzes != "null" {
			_ = json.Unmarshal([]byte(quizzes), &m.Quizzes)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// GetModule returns a module by ID, or nil if not found.
func (s *Store) GetModule(id string) (*model.Module, error) {
	var m model.Module
	var quizzes string
	err := s.db.QueryRow(
		`SELECT id, title, icon, read_time, track, content, quizzes_json FROM modules WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Icon, &m.ReadTime, &m.Track, &m.Content, &quizzes)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if quizzes != "" && quizzes != "null" {
		_ = json.Unmarshal([]byte(quizzes), &m.Quizzes)
	}
	return &m, nil
}

// decodeList tolerates legacy rows where a list column holds garbage; the
// caller gets an empty list and grading marks the question malformed.
func decodeList(raw string) []string {
	if raw == "" || raw == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}
