package services

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func newBank(size int) []uuid.UUID {
	ids := make([]uuid.UUID, size)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestSampleQuestionIDsCount(t *testing.T) {
	tests := []struct {
		name     string
		bankSize int
		count    int
		wantLen  int
	}{
		{"subset", 10, 4, 4},
		{"count zero takes all", 10, 0, 10},
		{"count equals bank", 5, 5, 5},
		{"count exceeds bank", 5, 8, 5},
		{"empty bank", 0, 3, 0},
	}

	r := rand.New(rand.NewSource(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := newBank(tt.bankSize)
			got := SampleQuestionIDs(bank, tt.count, r)
			if len(got) != tt.wantLen {
				t.Fatalf("got %d ids, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestSampleQuestionIDsIsSubsetWithoutDuplicates(t *testing.T) {
	bank := newBank(20)
	inBank := map[uuid.UUID]bool{}
	for _, id := range bank {
		inBank[id] = true
	}

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		sampled := SampleQuestionIDs(bank, 7, r)
		seen := map[uuid.UUID]bool{}
		for _, id := range sampled {
			if !inBank[id] {
				t.Fatalf("sampled id %s not in bank", id)
			}
			if seen[id] {
				t.Fatalf("duplicate id %s in sample", id)
			}
			seen[id] = true
		}
	}
}

func TestSampleQuestionIDsDoesNotMutateInput(t *testing.T) {
	bank := newBank(10)
	original := make([]uuid.UUID, len(bank))
	copy(original, bank)

	r := rand.New(rand.NewSource(7))
	SampleQuestionIDs(bank, 3, r)

	for i := range bank {
		if bank[i] != original[i] {
			t.Fatalf("input slice mutated at index %d", i)
		}
	}
}

func TestSampleQuestionIDsVariesAcrossStudents(t *testing.T) {
	bank := newBank(30)
	r := rand.New(rand.NewSource(99))

	first := SampleQuestionIDs(bank, 30, r)
	second := SampleQuestionIDs(bank, 30, r)

	same := true
	for i := range first {
		if first[i] != second[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("two draws produced identical orderings; permutation looks broken")
	}
}
