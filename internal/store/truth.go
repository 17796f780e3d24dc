package store

import (
	"sort"

	"github.com/credencelab/credence/internal/domain"
)

// TruthStore is the in-memory truth vector table, keyed by content hash.
// The engine is its single owner; there is no locking here and no
// persistence, the table lives and dies with the process.
type TruthStore struct {
	vectors map[string]*domain.TruthVector
}

func NewTruthStore() *TruthStore {
	return &TruthStore{vectors: make(map[string]*domain.TruthVector)}
}

// Put stores v under its content hash, replacing any prior vector there.
func (s *TruthStore) Put(v *domain.TruthVector) {
	s.vectors[v.ContentHash] = v
}

// Get returns the vector stored under hash.
func (s *TruthStore) Get(hash string) (*domain.TruthVector, bool) {
	v, ok := s.vectors[hash]
	return v, ok
}

// Hashes returns all stored content hashes in ascending order.
func (s *TruthStore) Hashes() []string {
	out := make([]string, 0, len(s.vectors))
	for h := range s.vectors {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of stored vectors.
func (s *TruthStore) Len() int {
	return len(s.vectors)
}
