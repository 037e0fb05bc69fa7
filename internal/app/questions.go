package app

import (
	"math/rand"

	"invite-quiz-service/internal/domain"
)

// QuestionsPerDifficulty is how many easy and how many hard questions a mix holds.
const QuestionsPerDifficulty = 5

// MixQuestions picks up to perDifficulty easy and perDifficulty hard questions
// at random and returns them shuffled. Questions without a known difficulty are dropped.
func MixQuestions(all []domain.Question, perDifficulty int, rnd *rand.Rand) []domain.Question {
	var easy, hard []domain.Question
	for _, q := range all {
		switch q.Difficulty {
		case domain.DifficultyEasy:
			easy = append(easy, q)
		case domain.DifficultyHard:
			hard = append(hard, q)
		}
	}

	mixed := make([]domain.Question, 0, 2*perDifficulty)
	mixed = append(mixed, pick(easy, perDifficulty, rnd)...)
	mixed = append(mixed, pick(hard, perDifficulty, rnd)...)
	shuffleQuestions(mixed, rnd)
	return mixed
}

func pick(from []domain.Question, n int, rnd *rand.Rand) []domain.Question {
	cp := append([]domain.Question(nil), from...)
	shuffleQuestions(cp, rnd)
	if n < len(cp) {
		cp = cp[:n]
	}
	return cp
}

func shuffleQuestions(qs []domain.Question, rnd *rand.Rand) {
	rnd.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}

func shuffledOptions(options []string, rnd *rand.Rand) []string {
	cp := append([]string(nil), options...)
	rnd.Shuffle(len(cp), func(i, j int) { cp[i], cp[j] = cp[j], cp[i] })
	return cp
}
