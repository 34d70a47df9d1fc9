package model

import (
	"context"
	"time"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleTrainee is a regular trainee working through the track.
	UserRoleTrainee UserRole = "trainee"
	// UserRoleTrainer can view the dashboard and exam results.
	UserRoleTrainer UserRole = "trainer"
	// UserRoleAdmin is an admin user role.
	UserRoleAdmin UserRole = "admin"
)

// User represents a platform user.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
}

// AuthSession represents an authentication token session.
type AuthSession struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

// QuestionType distinguishes multiple-choice from open-answer questions.
type QuestionType string

const (
	QuestionMultiple QuestionType = "multiple"
	QuestionFreeText QuestionType = "freetext"
)

// DefaultCategory is assigned to bank entries that carry no category tag.
const DefaultCategory = "general"

// Question is one canonical question-bank entry. All field-name aliasing and
// stringified-JSON payloads from imported content are resolved before a
// Question is constructed; code past the bank boundary never branches on
// source naming.
type Question struct {
	ID              string       `json:"id"`
	Category        string       `json:"category"`
	Type            QuestionType `json:"type"`
	Text            string       `json:"text"`
	Options         []string     `json:"options,omitempty"`
	CorrectIndex    int          `json:"correct_index"`
	AcceptedAnswers []string     `json:"accepted_answers,omitempty"`
	// HiddenAnswers are typo-tolerant synonyms accepted during grading but
	// never shown to the trainee.
	HiddenAnswers []string `json:"hidden_answers,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}

// WellFormed reports whether the question can be graded at all: a
// multiple-choice question needs a valid correct index, a free-text question
// needs at least one accepted answer.
func (q Question) WellFormed() bool {
	switch q.Type {
	case QuestionFreeText:
		return len(q.AcceptedAnswers) > 0
	default:
		return q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options)
	}
}

// SimulationDecision is a trainee's verdict on a simulation case.
type SimulationDecision string

const (
	DecisionAccept SimulationDecision = "accept"
	DecisionDeny   SimulationDecision = "deny"
)

// SimulationCase is one scenario of the simulation stage: a realistic
// customer situation the trainee must either fulfil or escalate.
type SimulationCase struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Meta          map[string]string  `json:"meta,omitempty"`
	Description   string             `json:"description"`
	CorrectAction SimulationDecision `json:"correct_action"`
	Explanation   string             `json:"explanation,omitempty"`
}

// ExamConfig holds the sampling parameters for one exam attempt. It is
// fetched once per attempt and immutable for its duration.
type ExamConfig struct {
	TotalQuestions int `json:"totalQuestions"`
	FreeTextCount  int `json:"freeTextCount"`
	// CategoryDistribution allocation order is its slice order; the JSON
	// object's insertion order is preserved on decode.
	CategoryDistribution CategoryDistribution `json:"categoryDistribution"`
}

// CategoryQuota is the target question count for one category.
type CategoryQuota struct {
	Category string
	Count    int
}

// DefaultExamConfig is used whenever the configured values cannot be fetched.
func DefaultExamConfig() ExamConfig {
	return ExamConfig{TotalQuestions: 18, FreeTextCount: 3}
}

// AnswerRecord is one graded theory answer, snapshotted at grading time.
// Records are append-only and owned by the session that produced them.
type AnswerRecord struct {
	Index    int          `json:"questionIndex"` // 1-based display order
	Question string       `json:"question"`
	Type     QuestionType `json:"type"`

	// Multiple-choice fields.
	Selected     int    `json:"selected,omitempty"`
	SelectedText string `json:"selectedText,omitempty"`
	CorrectIndex int    `json:"correctIndex,omitempty"`
	CorrectText  string `json:"correctText,omitempty"`

	// Free-text fields.
	UserAnswer      string   `json:"userAnswer,omitempty"`
	AcceptedAnswers []string `json:"acceptedAnswers,omitempty"`

	Correct bool `json:"correct"`
}

// DecisionRecord is one graded simulation decision.
type DecisionRecord struct {
	Index         int                `json:"caseIndex"` // 1-based display order
	Title         string             `json:"title"`
	Selected      SimulationDecision `json:"selected"`
	CorrectAction SimulationDecision `json:"correctAction"`
	Correct       bool               `json:"correct"`
}

// ExamResult is the immutable output of a completed exam session. It embeds
// both full answer logs so downstream certificate generation never has to
// re-query exam state.
type ExamResult struct {
	TraineeName  string `json:"name"`
	TraineeEmail string `json:"email"`

	TheoryScore   int `json:"theoryScore"`
	TheoryTotal   int `json:"theoryTotal"`
	TheoryPercent int `json:"theoryPercent"`

	SimulationScore   int `json:"simulationScore"`
	SimulationTotal   int `json:"simTotal"`
	SimulationPercent int `json:"simulationPercent"`

	Passed bool `json:"passed"`

	TheoryAnswers     []AnswerRecord   `json:"theoryAnswers"`
	SimulationAnswers []DecisionRecord `json:"simulationAnswers"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ExamAttempt is one persisted attempt row, numbered per user and exam type.
type ExamAttempt struct {
	ID                int64
	UserID            int64
	ExamType          string
	Score             int
	Passed            bool
	TheoryPercent     int
	SimulationPercent int
	Result            ExamResult
	AttemptNo         int
	DurationSeconds   int
	StartedAt         time.Time
	FinishedAt        time.Time
}

// Quiz is one inline checkpoint question inside a training module.
type Quiz struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Explanation  string   `json:"explanation,omitempty"`
}

// Module is one training module of a track.
type Module struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Icon     string `json:"icon,omitempty"`
	ReadTime string `json:"readTime,omitempty"`
	Track    string `json:"track"`
	Content  string `json:"content"`
	Quizzes  []Quiz `json:"quizzes,omitempty"`
}

// Progress is a trainee's per-module completion state.
type Progress struct {
	UserID    int64     `json:"-"`
	Track     string    `json:"track"`
	ModuleID  string    `json:"moduleId"`
	Completed bool      `json:"completed"`
	XP        int       `json:"xp"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TraineeSummary is one dashboard row aggregating a user's training state.
type TraineeSummary struct {
	UserID           int64      `json:"userId"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	Role             UserRole   `json:"role"`
	TotalXP          int        `json:"totalXp"`
	ModulesCompleted int        `json:"modulesCompleted"`
	LastProgressAt   *time.Time `json:"lastProgressAt,omitempty"`
	LastExamAt       *time.Time `json:"lastExamAt,omitempty"`
	LastExamScore    int        `json:"lastExamScore"`
	AttemptsCount    int        `json:"attemptsCount"`
}
