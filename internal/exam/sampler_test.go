package exam

import (
	"math/rand/v2"
	"testing"

	"github.com/techops-academy/certifier/internal/model"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func mcQuestion(id, category string) model.Question {
	return model.Question{
		ID:           id,
		Category:     category,
		Type:         model.QuestionMultiple,
		Text:         "text for " + id,
		Options:      []string{"a", "b", "c"},
		CorrectIndex: 1,
	}
}

func ftQuestion(id, category string) model.Question {
	return model.Question{
		ID:              id,
		Category:        category,
		Type:            model.QuestionFreeText,
		Text:            "text for " + id,
		AcceptedAnswers: []string{"answer"},
	}
}

func countBy(qs []model.Question, pred func(model.Question) bool) int {
	n := 0
	for _, q := range qs {
		if pred(q) {
			n++
		}
	}
	return n
}

func TestSelectQuestionsCategoryQuotas(t *testing.T) {
	// 2 categories: dns has 3 multiple + 1 freetext, security 2 multiple + 1 freetext.
	bank := []model.Question{
		mcQuestion("dns_01", "dns"),
		mcQuestion("dns_02", "dns"),
		mcQuestion("dns_03", "dns"),
		ftQuestion("dns_ft_01", "dns"),
		mcQuestion("sec_01", "security"),
		mcQuestion("sec_02", "security"),
		ftQuestion("sec_ft_01", "security"),
	}
	cfg := model.ExamConfig{
		TotalQuestions: 4,
		FreeTextCount:  1,
		CategoryDistribution: model.CategoryDistribution{
			{Category: "dns", Count: 2},
			{Category: "security", Count: 2},
		},
	}

	for seed := uint64(1); seed <= 20; seed++ {
		got := SelectQuestions(bank, cfg, testRand(seed))

		if len(got) != 4 {
			t.Fatalf("seed %d: expected 4 questions, got %d", seed, len(got))
		}
		ft := countBy(got, func(q model.Question) bool { return q.Type == model.QuestionFreeText })
		if ft != 1 {
			t.Errorf("seed %d: expected exactly 1 free-text question, got %d", seed, ft)
		}
		dns := countBy(got, func(q model.Question) bool { return q.Category == "dns" })
		sec := countBy(got, func(q model.Question) bool { return q.Category == "security" })
		if dns != 2 || sec != 2 {
			t.Errorf("seed %d: expected 2 dns + 2 security, got %d + %d", seed, dns, sec)
		}
	}
}

func TestSelectQuestionsFreeTextCap(t *testing.T) {
	// Plenty of free-text available everywhere; the shared budget still caps
	// the total number drawn.
	bank := []model.Question{
		ftQuestion("a_ft_1", "a"), ftQuestion("a_ft_2", "a"), mcQuestion("a_1", "a"), mcQuestion("a_2", "a"),
		ftQuestion("b_ft_1", "b"), ftQuestion("b_ft_2", "b"), mcQuestion("b_1", "b"), mcQuestion("b_2", "b"),
	}
	cfg := model.ExamConfig{
		TotalQuestions: 4,
		FreeTextCount:  1,
		CategoryDistribution: model.CategoryDistribution{
			{Category: "a", Count: 2},
			{Category: "b", Count: 2},
		},
	}

	for seed := uint64(1); seed <= 20; seed++ {
		got := SelectQuestions(bank, cfg, testRand(seed))
		ft := countBy(got, func(q model.Question) bool { return q.Type == model.QuestionFreeText })
		if ft > 1 {
			t.Errorf("seed %d: free-text count %d exceeds budget 1", seed, ft)
		}
	}
}

func TestSelectQuestionsQuotaExceedsAvailable(t *testing.T) {
	bank := []model.Question{
		mcQuestion("dns_01", "dns"),
		mcQuestion("dns_02", "dns"),
		mcQuestion("sec_01", "security"),
	}
	cfg := model.ExamConfig{
		TotalQuestions: 10,
		CategoryDistribution: model.CategoryDistribution{
			{Category: "dns", Count: 5},
			{Category: "security", Count: 5},
		},
	}

	got := SelectQuestions(bank, cfg, testRand(7))

	// Take all available, never compensate from other categories.
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	if n := countBy(got, func(q model.Question) bool { return q.Category == "dns" }); n != 2 {
		t.Errorf("expected 2 dns questions, got %d", n)
	}
}

func TestSelectQuestionsSkipsMissingCategory(t *testing.T) {
	bank := []model.Question{mcQuestion("dns_01", "dns")}
	cfg := model.ExamConfig{
		TotalQuestions: 2,
		CategoryDistribution: model.CategoryDistribution{
			{Category: "storage", Count: 1},
			{Category: "dns", Count: 1},
		},
	}

	got := SelectQuestions(bank, cfg, testRand(3))
	if len(got) != 1 || got[0].ID != "dns_01" {
		t.Fatalf("expected only dns_01, got %v", got)
	}
}

func TestSelectQuestionsEmptyBank(t *testing.T) {
	got := SelectQuestions(nil, model.DefaultExamConfig(), testRand(1))
	if len(got) != 0 {
		t.Fatalf("expected empty selection, got %d questions", len(got))
	}
}

func TestSelectQuestionsNoDistribution(t *testing.T) {
	var bank []model.Question
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5"} {
		bank = append(bank, mcQuestion(id, "general"))
	}
	cfg := model.ExamConfig{TotalQuestions: 3}

	got := SelectQuestions(bank, cfg, testRand(11))
	if len(got) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(got))
	}
	seen := make(map[string]bool)
	for _, q := range got {
		if seen[q.ID] {
			t.Errorf("question %s selected twice", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectQuestionsDeterministicForSeed(t *testing.T) {
	var bank []model.Question
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5", "q6"} {
		bank = append(bank, mcQuestion(id, "general"))
	}
	cfg := model.ExamConfig{TotalQuestions: 4}

	first := SelectQuestions(bank, cfg, testRand(42))
	second := SelectQuestions(bank, cfg, testRand(42))

	if len(first) != len(second) {
		t.Fatalf("runs differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("runs diverge at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	var bank []model.Question
	for _, id := range []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"} {
		bank = append(bank, mcQuestion(id, "general"))
	}

	shuffled := shuffleQuestions(bank, testRand(5))

	if len(shuffled) != len(bank) {
		t.Fatalf("length changed: %d vs %d", len(shuffled), len(bank))
	}
	counts := make(map[string]int)
	for _, q := range shuffled {
		counts[q.ID]++
	}
	for _, q := range bank {
		if counts[q.ID] != 1 {
			t.Errorf("question %s appears %d times after shuffle", q.ID, counts[q.ID])
		}
	}
	// Input must be untouched.
	for i, q := range bank {
		if q.ID != []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"}[i] {
			t.Fatal("shuffle mutated its input")
		}
	}
}
