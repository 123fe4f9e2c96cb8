// Package matcher finds the best approximate match for a composite key among candidate keys.
//
// Similarity is token-sort based: both strings are split on whitespace, the tokens are
// sorted and re-joined, and the results are compared with a normalized Indel similarity
// (100 * 2 * LCS / total length, on runes). Word order therefore does not matter.
//
// Best is pure and deterministic: when several candidates share the top score the first
// one in input order wins.
package matcher
