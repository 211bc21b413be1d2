// Package lexical defines the contract between the orchestrator and the
// lexical (keyword) scorer, plus the tokenizer collaborator seam.
package lexical

import "github.com/hupe1980/vexo/model"

// FieldBoost selects a field for scoring together with its boost factor.
type FieldBoost struct {
	Field string
	Boost float64
}

// Query is one lexical scoring request. Nil K1/B select the defaults, so an
// explicit zero stays a valid setting.
type Query struct {
	Text string

	// Fields restricts and boosts the searched fields. Empty means all
	// indexed fields at boost 1.0.
	Fields []FieldBoost

	// K1 controls term-frequency saturation (default 1.2).
	K1 *float64

	// B controls document-length normalization (default 0.75).
	B *float64
}

// Index is the inverted-index abstraction the scorer runs against.
// Implementations own the postings and the corpus statistics exclusively;
// both mutate transactionally on Add/Remove.
type Index interface {
	// Add indexes a document's fields. Re-adding an id replaces it.
	Add(id model.ID, fields map[string]string) error

	// Remove deletes a document and rolls its corpus statistics back.
	Remove(id model.ID) error

	// Search scores the query against the corpus. Documents with zero term
	// overlap are absent from the result, never retained with a default.
	Search(q Query) (map[model.ID]float32, error)

	// DocCount returns the number of indexed documents.
	DocCount() int

	// Close releases resources.
	Close() error
}
