package pricing

import (
	"context"
	"fmt"
	"strings"

	"github.com/pfrederiksen/agedcare-docs/internal/fetch"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/search"
)

const (
	StrategyBroad    = "broad query"
	StrategySubLink  = "sub-link"
	StrategyNotFound = "not found"

	// DefaultResultLimit caps the organic results inspected per query.
	DefaultResultLimit = 5
)

// DefaultFallbackKeywords are tried one query at a time after the broad query, in order.
var DefaultFallbackKeywords = []string{"pricing", "cost", "rates"}

// PageFetcher loads a page's content and outbound links.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*fetch.Page, error)
}

// Config tunes the fallback chain. Zero values use the package defaults.
type Config struct {
	ResultLimit       int
	FallbackKeywords  []string
	RelevanceKeywords []string
}

// Finder runs the search-and-fetch fallback chain for one provider at a time.
type Finder struct {
	searcher   search.Searcher
	fetcher    PageFetcher
	classifier Classifier
	cfg        Config
	log        *logger.Logger
}

// NewFinder creates a Finder. A nil log uses the default logger.
func NewFinder(searcher search.Searcher, fetcher PageFetcher, cfg Config, log *logger.Logger) *Finder {
	if cfg.ResultLimit <= 0 {
		cfg.ResultLimit = DefaultResultLimit
	}
	if len(cfg.FallbackKeywords) == 0 {
		cfg.FallbackKeywords = DefaultFallbackKeywords
	}
	if log == nil {
		log = logger.Default()
	}
	return &Finder{
		searcher:   searcher,
		fetcher:    fetcher,
		classifier: NewClassifier(cfg.RelevanceKeywords),
		cfg:        cfg,
		log:        log.With(logger.Fields{"component": "pricing"}),
	}
}

// tier is one query in the chain and the strategy labels it reports.
type tier struct {
	query        string
	pageStrategy string
	linkStrategy string
}

func (f *Finder) tiers(provider string) []tier {
	tiers := make([]tier, 0, len(f.cfg.FallbackKeywords)+1)
	tiers = append(tiers, tier{
		query:        fmt.Sprintf("%s home care %s", provider, strings.Join(f.cfg.FallbackKeywords, " OR ")),
		pageStrategy: StrategyBroad,
		linkStrategy: StrategySubLink,
	})
	for _, kw := range f.cfg.FallbackKeywords {
		tiers = append(tiers, tier{
			query:        fmt.Sprintf("%s home care %s", provider, kw),
			pageStrategy: "fallback: " + kw,
			linkStrategy: "fallback: " + kw + " (sub-link)",
		})
	}
	return tiers
}

// hit is a relevant URL and how it was reached.
type hit struct {
	url            string
	strategy       string
	downloadedPath string
}

// Find runs every tier until a relevant page is found. It always returns an Outcome;
// a cancelled context ends the chain as not found.
func (f *Finder) Find(ctx context.Context, provider string) Outcome {
	provider = strings.TrimSpace(provider)
	log := f.log.With(logger.Fields{"provider": provider})
	out := Outcome{Provider: provider}

	for _, t := range f.tiers(provider) {
		if ctx.Err() != nil {
			log.Warn("search chain cancelled", logger.Fields{"tried": len(out.Tried)}, ctx.Err())
			break
		}

		out.Tried = append(out.Tried, t.query)
		attempt, h := f.runTier(ctx, log, t)
		out.Attempts = append(out.Attempts, attempt)

		if h != nil {
			out.Found = true
			out.URL = h.url
			out.Strategy = h.strategy
			out.Query = t.query
			out.DownloadedPath = h.downloadedPath
			logger.IncrCounter("pricing.found")
			log.Info("pricing page found", logger.Fields{"url": h.url, "strategy": h.strategy, "query": t.query})
			return out
		}
	}

	out.Strategy = StrategyNotFound
	logger.IncrCounter("pricing.not_found")
	log.Info("no pricing page found", logger.Fields{"tried": out.Tried})
	return out
}

// runTier searches one query and inspects its results in rank order.
func (f *Finder) runTier(ctx context.Context, log *logger.Logger, t tier) (SearchAttempt, *hit) {
	attempt := SearchAttempt{Query: t.query}

	logger.IncrCounter("search.queries")
	results, err := f.searcher.Search(ctx, t.query, f.cfg.ResultLimit)
	if err != nil {
		logger.IncrCounter("search.errors")
		log.Warn("search failed", logger.Fields{"query": t.query}, err)
		return attempt, nil
	}
	if len(results) > f.cfg.ResultLimit {
		results = results[:f.cfg.ResultLimit]
	}
	log.Debug("search results", logger.Fields{"query": t.query, "count": len(results)})

	for _, r := range results {
		if r.URL == "" {
			continue
		}
		if ctx.Err() != nil {
			return attempt, nil
		}
		attempt.Links = append(attempt.Links, r.URL)

		page := f.load(ctx, log, r.URL)
		if f.classifier.IsRelevant(r.URL, page.Content) {
			return attempt, &hit{url: r.URL, strategy: t.pageStrategy, downloadedPath: page.DownloadedPath}
		}

		for _, href := range page.Links {
			if ctx.Err() != nil {
				return attempt, nil
			}
			sub := f.load(ctx, log, href)
			if f.classifier.IsRelevant(href, sub.Content) {
				path := sub.DownloadedPath
				if path == "" {
					path = page.DownloadedPath
				}
				return attempt, &hit{url: href, strategy: t.linkStrategy, downloadedPath: path}
			}
		}
	}

	return attempt, nil
}

// load fetches url. A failure is logged and yields an empty page: no content,
// no outbound links, nothing downloaded.
func (f *Finder) load(ctx context.Context, log *logger.Logger, url string) *fetch.Page {
	page, err := f.fetcher.FetchPage(ctx, url)
	if err != nil {
		log.Warn("page fetch failed", logger.Fields{"url": url}, err)
		return &fetch.Page{URL: url}
	}
	if page == nil {
		return &fetch.Page{URL: url}
	}
	return page
}
