package services

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// NewExamRand returns the randomness source used for per-student question
// sampling. Each caller gets its own source so draws stay independent.
func NewExamRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// SampleQuestionIDs draws a uniformly random permutation of ids and truncates
// it to count. A count of 0 or one at least the bank size returns the full
// permutation. The input slice is never mutated.
func SampleQuestionIDs(ids []uuid.UUID, count int, r *rand.Rand) []uuid.UUID {
	if len(ids) == 0 {
		return []uuid.UUID{}
	}

	perm := r.Perm(len(ids))
	sampled := make([]uuid.UUID, len(ids))
	for i, j := range perm {
		sampled[i] = ids[j]
	}

	if count > 0 && count < len(sampled) {
		sampled = sampled[:count]
	}
	return sampled
}
