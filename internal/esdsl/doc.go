// Package esdsl models Elasticsearch query documents as an immutable
// clause tree.
//
// A Document is built once by the synthesizer and never mutated afterwards:
// the validator and ranker only read it. Builders emit only non-empty
// branches, so there is no cleanup pass over the assembled tree.
//
// Clause and Agg are sealed - only types in this package implement them.
// The marker method pattern enables exhaustive type switches in the
// validator and the ranker without runtime reflection.
package esdsl
