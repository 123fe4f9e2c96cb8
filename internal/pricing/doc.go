// Package pricing locates a provider's pricing page or document on the web.
//
// Finder runs a fallback chain of search queries from broad to narrow. For each result it
// loads the landing page and, when the page is not relevant, each of its outbound links.
// The first URL the relevance classifier accepts ends the chain with a Found outcome; if
// every query tier is exhausted the outcome is NotFound and lists the queries tried.
//
// Evaluation is strictly sequential. Search and fetch failures are logged and skipped so
// a single bad link or query never aborts the rest of the chain.
package pricing
