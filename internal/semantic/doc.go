// Package semantic provides fuzzy-matching helpers used to suggest near-miss
// names when an exact-match query comes back empty.
//
// FuzzyMatcher scores two strings by Jaro-Winkler, Levenshtein, or
// bigram-cosine similarity; search_find and search_definitions use it to
// offer "did you mean" suggestions over indexed basenames and definition
// names. It is independent of the literal "IFoo matches Foo" DI-prefix rule
// in the definition index's call-tree resolution, which is an exact
// string rule, not a similarity score.
package semantic
