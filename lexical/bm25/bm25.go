// Package bm25 implements an in-memory inverted index scored with BM25 and
// its multi-field BM25F extension.
//
// BM25F combines boosted term frequencies and boosted lengths across fields
// first and applies the BM25 formula once. Summing independent per-field
// BM25 scores would break term-frequency saturation, so that is never done.
package bm25

import (
	"math"
	"sync"

	"github.com/hupe1980/vexo/lexical"
	"github.com/hupe1980/vexo/model"
)

const (
	// DefaultK1 is the default term-frequency saturation parameter.
	DefaultK1 = 1.2

	// DefaultB is the default length-normalization parameter.
	DefaultB = 0.75
)

// posting records how often a term occurs in one field of one document.
type posting struct {
	id    model.ID
	count int
}

// fieldIndex holds the postings and length bookkeeping of a single field.
type fieldIndex struct {
	inverted    map[string][]posting
	docLengths  map[model.ID]int
	totalLength int64
}

func newFieldIndex() *fieldIndex {
	return &fieldIndex{
		inverted:   make(map[string][]posting),
		docLengths: make(map[model.ID]int),
	}
}

// MemoryIndex is an in-memory BM25/BM25F index.
//
// Mutations are single-writer: Add/Remove update postings and corpus
// statistics under one write lock, so a concurrent Search always sees both
// or neither. Reads take the read lock for their full duration.
type MemoryIndex struct {
	mu        sync.RWMutex
	fields    map[string]*fieldIndex
	docFields map[model.ID][]string // which fields each doc was indexed under
	docCount  int
	tokenizer lexical.Tokenizer
}

var _ lexical.Index = (*MemoryIndex)(nil)

// Options configures a MemoryIndex.
type Options struct {
	// Tokenizer converts field text to terms. Defaults to
	// lexical.SimpleTokenizer.
	Tokenizer lexical.Tokenizer
}

// New creates a new MemoryIndex.
func New(optFns ...func(o *Options)) *MemoryIndex {
	opts := Options{Tokenizer: lexical.SimpleTokenizer{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Tokenizer == nil {
		opts.Tokenizer = lexical.SimpleTokenizer{}
	}
	return &MemoryIndex{
		fields:    make(map[string]*fieldIndex),
		docFields: make(map[model.ID][]string),
		tokenizer: opts.Tokenizer,
	}
}

// Add indexes a document's fields. Re-adding an existing id replaces the
// previous document atomically.
func (idx *MemoryIndex) Add(id model.ID, fields map[string]string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.docFields[id]; ok {
		idx.removeLocked(id)
	}

	names := make([]string, 0, len(fields))
	for name, text := range fields {
		tokens := idx.tokenizer.Tokenize(text)
		if len(tokens) == 0 {
			continue
		}

		fi, ok := idx.fields[name]
		if !ok {
			fi = newFieldIndex()
			idx.fields[name] = fi
		}

		fi.docLengths[id] = len(tokens)
		fi.totalLength += int64(len(tokens))

		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t, count := range tf {
			fi.inverted[t] = append(fi.inverted[t], posting{id: id, count: count})
		}

		names = append(names, name)
	}

	idx.docFields[id] = names
	idx.docCount++
	return nil
}

// Remove deletes a document. Removing an unknown id is a no-op.
func (idx *MemoryIndex) Remove(id model.ID) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
	return nil
}

func (idx *MemoryIndex) removeLocked(id model.ID) {
	names, ok := idx.docFields[id]
	if !ok {
		return
	}

	for _, name := range names {
		fi := idx.fields[name]
		if fi == nil {
			continue
		}
		length := fi.docLengths[id]
		delete(fi.docLengths, id)
		fi.totalLength -= int64(length)

		// O(terms * postings); acceptable for an in-memory reference index,
		// physical posting purges are otherwise a compaction concern.
		for t := range fi.inverted {
			postings := fi.inverted[t]
			for i, p := range postings {
				if p.id == id {
					fi.inverted[t] = append(postings[:i], postings[i+1:]...)
					break
				}
			}
			if len(fi.inverted[t]) == 0 {
				delete(fi.inverted, t)
			}
		}
	}

	delete(idx.docFields, id)
	idx.docCount--
}

// DocCount returns the number of indexed documents.
func (idx *MemoryIndex) DocCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.docCount
}

// Close implements lexical.Index.
func (idx *MemoryIndex) Close() error { return nil }

// Search scores q against the corpus. Single-field queries reduce to plain
// BM25; multi-field queries are scored as BM25F with the supplied boosts.
func (idx *MemoryIndex) Search(q lexical.Query) (map[model.ID]float32, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	scores := make(map[model.ID]float32)
	if idx.docCount == 0 {
		return scores, nil
	}

	k1 := DefaultK1
	if q.K1 != nil {
		k1 = *q.K1
	}
	b := DefaultB
	if q.B != nil {
		b = *q.B
	}

	fields := q.Fields
	if len(fields) == 0 {
		fields = make([]lexical.FieldBoost, 0, len(idx.fields))
		for name := range idx.fields {
			fields = append(fields, lexical.FieldBoost{Field: name, Boost: 1.0})
		}
	}

	terms := idx.tokenizer.Tokenize(q.Text)
	if len(terms) == 0 {
		return scores, nil
	}

	// Boosted document length and its corpus average: dl(d) = sum over
	// fields of boost*len(field), avgdl = sum of boosted totals / N.
	docLen := func(id model.ID) float64 {
		var dl float64
		for _, fb := range fields {
			if fi := idx.fields[fb.Field]; fi != nil {
				dl += fb.Boost * float64(fi.docLengths[id])
			}
		}
		return dl
	}

	var totalBoosted float64
	for _, fb := range fields {
		if fi := idx.fields[fb.Field]; fi != nil {
			totalBoosted += fb.Boost * float64(fi.totalLength)
		}
	}
	avgDL := totalBoosted / float64(idx.docCount)
	if avgDL == 0 {
		return scores, nil
	}

	seenTerm := make(map[string]bool, len(terms))
	combined := make(map[model.ID]float64)

	for _, term := range terms {
		if seenTerm[term] {
			continue // each unique query term contributes once
		}
		seenTerm[term] = true

		// Combine boosted term frequencies across fields BEFORE the BM25
		// formula (the BM25F invariant).
		clear(combined)
		for _, fb := range fields {
			fi := idx.fields[fb.Field]
			if fi == nil {
				continue
			}
			for _, p := range fi.inverted[term] {
				combined[p.id] += fb.Boost * float64(p.count)
			}
		}
		if len(combined) == 0 {
			continue
		}

		idf := idx.computeIDF(len(combined))
		if idf == 0 {
			continue
		}

		for id, tf := range combined {
			dl := docLen(id)
			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(dl/avgDL))
			scores[id] += float32(idf * (num / denom))
		}
	}

	// Zero-score documents are dropped, not retained with a default.
	for id, s := range scores {
		if s == 0 {
			delete(scores, id)
		}
	}

	return scores, nil
}

// computeIDF returns ln((N-df+0.5)/(df+0.5)). The raw Robertson form is
// used (no +1 smoothing): terms present in most documents score negative,
// which downstream fusion normalization absorbs.
func (idx *MemoryIndex) computeIDF(df int) float64 {
	n := float64(idx.docCount)
	return math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
}
