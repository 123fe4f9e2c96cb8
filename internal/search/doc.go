// Package search issues web search queries and returns ranked organic result links.
//
// Two providers are supported: SerpAPI's Google engine and the Brave Search API. Both
// return the top-N organic results for a text query. Limited wraps any Searcher with a
// rate limiter so long batches stay within an API plan's request rate.
package search
