package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/techops-academy/certifier/internal/model"
)

const examConfigKey = "exam_config"

// SetMetadata upserts a key-value pair in the exam_metadata table.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO exam_metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, value, value,
	)
	return err
}

// GetMetadata returns the value for a metadata key.
// Returns empty string and nil error if the key is missing.
func (s *Store) GetMetadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM exam_metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetExamConfig stores the exam sampling configuration.
func (s *Store) SetExamConfig(cfg model.ExamConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.SetMetadata(examConfigKey, string(data))
}

// GetExamConfig reads the stored exam configuration. A missing or unreadable
// row yields an error; callers fall back to defaults.
func (s *Store) GetExamConfig() (model.ExamConfig, error) {
	var cfg model.ExamConfig
	raw, err := s.GetMetadata(examConfigKey)
	if err != nil {
		return cfg, err
	}
	if raw == "" {
		return cfg, fmt.Errorf("exam config not set")
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return cfg, fmt.Errorf("decode exam config: %w", err)
	}
	return cfg, nil
}

// GetImportedFileHash returns the recorded content hash for a seed file, or
// empty string if it was never imported.
func (s *Store) GetImportedFileHash(filename string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT sha256 FROM imported_files WHERE filename = ?`, filename).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the content hash of a seed file after import.
func (s *Store) SetImportedFileHash(filename, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (filename, sha256, imported_at) VALUES (?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET sha256 = ?, imported_at = ?`,
		filename, hash, time.Now(), hash, time.Now(),
	)
	return err
}
