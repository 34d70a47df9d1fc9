package exam

import (
	"math/rand/v2"
	"slices"

	"github.com/techops-academy/certifier/internal/model"
)

// NewRand returns a sampler RNG seeded from the process-wide source.
// Tests construct their own rand.New(rand.NewPCG(...)) for reproducible
// permutations.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// categoryPools holds one category's questions split by answer type.
type categoryPools struct {
	multiple []model.Question
	freetext []model.Question
}

// partitionBank groups the bank by category and, within each category, by
// question type. Question.Type is already canonical at this point (the
// "_ft_" ID inference happens at the import boundary).
func partitionBank(bank []model.Question) map[string]*categoryPools {
	byCategory := make(map[string]*categoryPools)
	for _, q := range bank {
		cat := q.Category
		if cat == "" {
			cat = model.DefaultCategory
		}
		pools := byCategory[cat]
		if pools == nil {
			pools = &categoryPools{}
			byCategory[cat] = pools
		}
		if q.Type == model.QuestionFreeText {
			pools.freetext = append(pools.freetext, q)
		} else {
			pools.multiple = append(pools.multiple, q)
		}
	}
	return byCategory
}

// shuffleQuestions returns a uniformly random permutation of qs using the
// Fisher-Yates algorithm. The input is never mutated.
func shuffleQuestions(qs []model.Question, rng *rand.Rand) []model.Question {
	shuffled := slices.Clone(qs)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// SelectQuestions draws one exam's worth of questions from the bank.
//
// With a non-empty category distribution, each category's quota is filled in
// allocation order: free-text questions first while the shared free-text
// budget lasts, multiple-choice for the rest. A quota larger than the
// category's pool takes what is available without over-drawing from other
// categories, so the final set may be smaller than requested. Categories
// missing from the bank are skipped. The combined selection is reshuffled so
// allocation order is not observable in presentation order.
//
// With an empty distribution, the whole bank is shuffled and truncated to
// TotalQuestions.
//
// An empty bank yields an empty selection; callers treat that as "no exam
// available", not as an error.
func SelectQuestions(bank []model.Question, cfg model.ExamConfig, rng *rand.Rand) []model.Question {
	if len(bank) == 0 {
		return nil
	}

	if len(cfg.CategoryDistribution) == 0 {
		shuffled := shuffleQuestions(bank, rng)
		total := cfg.TotalQuestions
		if total <= 0 || total > len(shuffled) {
			total = len(shuffled)
		}
		return shuffleQuestions(shuffled[:total], rng)
	}

	byCategory := partitionBank(bank)
	freeTextRemaining := cfg.FreeTextCount

	var selected []model.Question
	for _, quota := range cfg.CategoryDistribution {
		pools, ok := byCategory[quota.Category]
		if !ok {
			continue
		}

		catFreetext := shuffleQuestions(pools.freetext, rng)
		catMultiple := shuffleQuestions(pools.multiple, rng)

		added := 0
		for added < quota.Count && freeTextRemaining > 0 && len(catFreetext) > 0 {
			selected = append(selected, catFreetext[len(catFreetext)-1])
			catFreetext = catFreetext[:len(catFreetext)-1]
			freeTextRemaining--
			added++
		}
		for added < quota.Count && len(catMultiple) > 0 {
			selected = append(selected, catMultiple[len(catMultiple)-1])
			catMultiple = catMultiple[:len(catMultiple)-1]
			added++
		}
	}

	return shuffleQuestions(selected, rng)
}
