package bm25

import (
	"strconv"
	"strings"

	"github.com/hupe1980/vexo/lexical"
)

// ParseFieldBoost parses a "field^boost" token into a FieldBoost.
// A missing or unparseable boost degrades to 1.0; it never fails the query.
func ParseFieldBoost(token string) lexical.FieldBoost {
	field, boostStr, found := strings.Cut(token, "^")
	fb := lexical.FieldBoost{Field: field, Boost: 1.0}
	if !found {
		return fb
	}
	boost, err := strconv.ParseFloat(boostStr, 64)
	if err != nil || boost <= 0 {
		return fb
	}
	fb.Boost = boost
	return fb
}

// ParseFieldBoosts parses a list of "field^boost" tokens.
func ParseFieldBoosts(tokens []string) []lexical.FieldBoost {
	out := make([]lexical.FieldBoost, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, ParseFieldBoost(t))
	}
	return out
}
