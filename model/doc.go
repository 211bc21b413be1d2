// Package model defines the shared data types of the search core:
// identifiers, sparse vectors, candidates and fused results.
//
// Types here are plain data with no behavior beyond validation, so that
// every other package can depend on model without cycles.
package model
