package domain

// TruthStore is the content-hash keyed table of truth vectors. The engine
// is its single owner and writer; implementations are not required to be
// safe for concurrent use.
type TruthStore interface {
	Put(v *TruthVector)
	Get(hash string) (*TruthVector, bool)
	Hashes() []string
	Len() int
}
