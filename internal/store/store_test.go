package store

import (
	"testing"
	"time"

	"github.com/techops-academy/certifier/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *Store, email string, role model.UserRole) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		Email: email,
		Name:  "Test " + email,
		Role:  role,
	})
	if err != nil {
		t.Fatalf("createTestUser: %v", err)
	}
	return id
}

func TestQuestionBankRoundTrip(t *testing.T) {
	s := newTestStore(t)

	count, err := s.QuestionCount()
	if err != nil {
		t.Fatalf("QuestionCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 questions, got %d", count)
	}

	bank := []model.Question{
		{
			ID: "dns_1", Category: "dns", Type: model.QuestionMultiple,
			Text: "What does an A record map?", Options: []string{"v4", "v6"}, CorrectIndex: 0,
			Explanation: "AAAA is the IPv6 variant.",
		},
		{
			ID: "dns_ft_1", Category: "dns", Type: model.QuestionFreeText,
			Text:            "Name the protocol.",
			AcceptedAnswers: []string{"dns"},
			HiddenAnswers:   []string{"domain name system"},
		},
	}
	if err := s.ReplaceQuestions(bank); err != nil {
		t.Fatalf("ReplaceQuestions: %v", err)
	}

	list, err := s.ListQuestions()
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(list))
	}
	ft := list[1]
	if ft.Type != model.QuestionFreeText || len(ft.AcceptedAnswers) != 1 || len(ft.HiddenAnswers) != 1 {
		t.Errorf("free-text lists did not survive storage: %+v", ft)
	}
	if list[0].Options[1] != "v6" || list[0].CorrectIndex != 0 {
		t.Errorf("multiple-choice fields did not survive storage: %+v", list[0])
	}

	// Replacing again fully swaps the bank.
	if err := s.ReplaceQuestions(bank[:1]); err != nil {
		t.Fatalf("ReplaceQuestions: %v", err)
	}
	count, err = s.QuestionCount()
	if err != nil {
		t.Fatalf("QuestionCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 question after replace, got %d", count)
	}
}

func TestSimulationCaseRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cases := []model.SimulationCase{
		{
			ID: "sim_1", Title: "Subdomain request",
			Meta:          map[string]string{"customer": "ACME Kft."},
			Description:   "Customer asks for a subdomain pointing at a third party.",
			CorrectAction: model.DecisionDeny,
		},
	}
	if err := s.ReplaceSimulationCases(cases); err != nil {
		t.Fatalf("ReplaceSimulationCases: %v", err)
	}
	got, err := s.ListSimulationCases()
	if err != nil {
		t.Fatalf("ListSimulationCases: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 case, got %d", len(got))
	}
	if got[0].CorrectAction != model.DecisionDeny || got[0].Meta["customer"] != "ACME Kft." {
		t.Errorf("case did not survive storage: %+v", got[0])
	}
}

func TestModuleUpsert(t *testing.T) {
	s := newTestStore(t)

	m := model.Module{
		ID: "mod_dns", Title: "DNS basics", Track: "hosting",
		Content: "records, zones, delegation",
		Quizzes: []model.Quiz{{Question: "pick", Options: []string{"a", "b"}, CorrectIndex: 1}},
	}
	if err := s.UpsertModule(m); err != nil {
		t.Fatalf("UpsertModule: %v", err)
	}

	m.Title = "DNS fundamentals"
	if err := s.UpsertModule(m); err != nil {
		t.Fatalf("UpsertModule update: %v", err)
	}

	got, err := s.GetModule("mod_dns")
	if err != nil {
		t.Fatalf("GetModule: %v", err)
	}
	if got == nil || got.Title != "DNS fundamentals" {
		t.Fatalf("upsert did not update: %+v", got)
	}
	if len(got.Quizzes) != 1 || got.Quizzes[0].CorrectIndex != 1 {
		t.Errorf("quizzes did not survive storage: %+v", got.Quizzes)
	}

	missing, err := s.GetModule("nope")
	if err != nil {
		t.Fatalf("GetModule missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing module, got %+v", missing)
	}

	modules, err := s.ListModules("hosting")
	if err != nil {
		t.Fatalf("ListModules: %v", err)
	}
	if len(modules) != 1 {
		t.Fatalf("expected 1 module on track, got %d", len(modules))
	}
	other, err := s.ListModules("networking")
	if err != nil {
		t.Fatalf("ListModules other track: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no modules on other track, got %d", len(other))
	}
}

func TestUserCRUDAndAuthSessions(t *testing.T) {
	s := newTestStore(t)

	id := createTestUser(t, s, "anna@example.com", model.UserRoleTrainee)

	u, err := s.GetUserByEmail("anna@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if u == nil || u.ID != id || u.Role != model.UserRoleTrainee {
		t.Fatalf("unexpected user: %+v", u)
	}

	missing, err := s.GetUserByEmail("nobody@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing user, got %+v", missing)
	}

	// Duplicate email must be rejected by the unique constraint.
	if _, err := s.CreateUser(model.User{Email: "anna@example.com", Name: "Dup"}); err == nil {
		t.Error("expected duplicate email to fail")
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Error("expected deleted session to be gone")
	}
}

func TestAttemptNumbering(t *testing.T) {
	s := newTestStore(t)
	anna := createTestUser(t, s, "anna@example.com", model.UserRoleTrainee)
	bela := createTestUser(t, s, "bela@example.com", model.UserRoleTrainee)

	now := time.Now()
	attempt := func(userID int64, examType string) model.ExamAttempt {
		return model.ExamAttempt{
			UserID: userID, ExamType: examType, Score: 85, Passed: true,
			TheoryPercent: 90, SimulationPercent: 80,
			Result:    model.ExamResult{TraineeEmail: "x", TheoryPercent: 90},
			StartedAt: now, FinishedAt: now,
		}
	}

	a1, err := s.InsertAttempt(attempt(anna, "certification"))
	if err != nil {
		t.Fatalf("InsertAttempt: %v", err)
	}
	a2, err := s.InsertAttempt(attempt(anna, "certification"))
	if err != nil {
		t.Fatalf("InsertAttempt: %v", err)
	}
	b1, err := s.InsertAttempt(attempt(bela, "certification"))
	if err != nil {
		t.Fatalf("InsertAttempt: %v", err)
	}
	a3, err := s.InsertAttempt(attempt(anna, "recert"))
	if err != nil {
		t.Fatalf("InsertAttempt: %v", err)
	}

	// Numbering is per user and exam type.
	if a1.AttemptNo != 1 || a2.AttemptNo != 2 {
		t.Errorf("same-user numbering wrong: %d, %d", a1.AttemptNo, a2.AttemptNo)
	}
	if b1.AttemptNo != 1 {
		t.Errorf("other users must not inherit numbering: %d", b1.AttemptNo)
	}
	if a3.AttemptNo != 1 {
		t.Errorf("other exam types must not inherit numbering: %d", a3.AttemptNo)
	}

	attempts, err := s.ListAttempts(anna)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(attempts) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(attempts))
	}
	if attempts[0].ID != a3.ID {
		t.Errorf("expected newest first, got id %d", attempts[0].ID)
	}
	if attempts[0].Result.TheoryPercent != 90 {
		t.Errorf("result payload did not survive storage: %+v", attempts[0].Result)
	}
}

func TestProgressUpsertKeepsHighestXP(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "anna@example.com", model.UserRoleTrainee)

	p := model.Progress{UserID: id, Track: "hosting", ModuleID: "mod_dns", Completed: true, XP: 250}
	if err := s.UpsertProgress(p); err != nil {
		t.Fatalf("UpsertProgress: %v", err)
	}

	// A later write with lower XP must not claw back earned points.
	p.XP = 100
	p.Completed = false
	if err := s.UpsertProgress(p); err != nil {
		t.Fatalf("UpsertProgress again: %v", err)
	}

	list, err := s.ListProgress(id)
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected a single row per module, got %d", len(list))
	}
	if list[0].XP != 250 || !list[0].Completed {
		t.Errorf("XP/completion regressed: %+v", list[0])
	}
}

func TestExamConfigMetadata(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetExamConfig(); err == nil {
		t.Fatal("expected error when config is unset")
	}

	cfg := model.ExamConfig{
		TotalQuestions: 12,
		FreeTextCount:  2,
		CategoryDistribution: model.CategoryDistribution{
			{Category: "dns", Count: 4},
			{Category: "security", Count: 3},
		},
	}
	if err := s.SetExamConfig(cfg); err != nil {
		t.Fatalf("SetExamConfig: %v", err)
	}

	got, err := s.GetExamConfig()
	if err != nil {
		t.Fatalf("GetExamConfig: %v", err)
	}
	if got.TotalQuestions != 12 || got.FreeTextCount != 2 {
		t.Errorf("config did not survive storage: %+v", got)
	}
	if len(got.CategoryDistribution) != 2 || got.CategoryDistribution[0].Category != "dns" {
		t.Errorf("distribution order lost: %+v", got.CategoryDistribution)
	}
}

func TestImportedFileHashes(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.GetImportedFileHash("questions.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Fatalf("expected empty hash for unseen file, got %q", hash)
	}

	if err := s.SetImportedFileHash("questions.json", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	if err := s.SetImportedFileHash("questions.json", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, err = s.GetImportedFileHash("questions.json")
	if err != nil {
		t.Fatalf("GetImportedFileHash again: %v", err)
	}
	if hash != "def456" {
		t.Errorf("expected updated hash, got %q", hash)
	}
}

func TestDashboardSummary(t *testing.T) {
	s := newTestStore(t)
	id := createTestUser(t, s, "anna@example.com", model.UserRoleTrainee)

	for _, p := range []model.Progress{
		{UserID: id, Track: "hosting", ModuleID: "mod_dns", Completed: true, XP: 250},
		{UserID: id, Track: "hosting", ModuleID: "mod_sec", Completed: false, XP: 50},
	} {
		if err := s.UpsertProgress(p); err != nil {
			t.Fatalf("UpsertProgress: %v", err)
		}
	}
	now := time.Now()
	if _, err := s.InsertAttempt(model.ExamAttempt{
		UserID: id, ExamType: "certification", Score: 88, Passed: true,
		StartedAt: now, FinishedAt: now,
	}); err != nil {
		t.Fatalf("InsertAttempt: %v", err)
	}

	rows, err := s.DashboardSummary()
	if err != nil {
		t.Fatalf("DashboardSummary: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 summary row, got %d", len(rows))
	}
	sum := rows[0]
	if sum.TotalXP != 300 || sum.ModulesCompleted != 1 {
		t.Errorf("progress aggregation wrong: %+v", sum)
	}
	if sum.AttemptsCount != 1 || sum.LastExamScore != 88 || sum.LastExamAt == nil {
		t.Errorf("exam aggregation wrong: %+v", sum)
	}
	if sum.LastProgressAt == nil {
		t.Error("expected last progress timestamp")
	}
}
