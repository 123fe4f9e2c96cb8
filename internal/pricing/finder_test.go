package pricing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/agedcare-docs/internal/fetch"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/search"
)

const provider = "Acme Care"

var (
	broadQuery   = "Acme Care home care pricing OR cost OR rates"
	pricingQuery = "Acme Care home care pricing"
	costQuery    = "Acme Care home care cost"
	ratesQuery   = "Acme Care home care rates"
)

type fakeSearcher struct {
	results map[string][]string
	errs    map[string]error
	queries []string
	limits  []int
}

func (s *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	s.limits = append(s.limits, limit)
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	var out []search.Result
	for _, u := range s.results[query] {
		out = append(out, search.Result{URL: u})
	}
	return out, nil
}

type fakeFetcher struct {
	pages   map[string]*fetch.Page
	errs    map[string]error
	fetched []string
}

func (f *fakeFetcher) FetchPage(ctx context.Context, url string) (*fetch.Page, error) {
	f.fetched = append(f.fetched, url)
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	if p, ok := f.pages[url]; ok {
		return p, nil
	}
	return &fetch.Page{URL: url, Content: "Welcome to our home"}, nil
}

func newFinder(s *fakeSearcher, f *fakeFetcher) *Finder {
	quiet := logger.New(logger.LevelError, &bytes.Buffer{})
	return NewFinder(s, f, Config{}, quiet)
}

func TestFind_BroadQueryLandingPage(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		broadQuery: {"https://a.example/", "https://b.example/fees"},
	}}
	f := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://b.example/fees": {Content: "Our fee schedule"},
	}}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "https://b.example/fees", out.URL)
	assert.Equal(t, StrategyBroad, out.Strategy)
	assert.Equal(t, broadQuery, out.Query)
	assert.Equal(t, []string{broadQuery}, s.queries)
	assert.Equal(t, []int{DefaultResultLimit}, s.limits)
	assert.Equal(t, []string{"https://a.example/", "https://b.example/fees"}, f.fetched)
}

func TestFind_BroadQuerySubLink(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		broadQuery: {"https://a.example/"},
	}}
	f := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://a.example/": {
			Content: "Home care services",
			Links:   []string{"https://a.example/about", "https://a.example/charges"},
		},
		"https://a.example/charges": {Content: "Package management $45 per fortnight"},
	}}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "https://a.example/charges", out.URL)
	assert.Equal(t, StrategySubLink, out.Strategy)
	assert.Equal(t, broadQuery, out.Query)
	assert.Equal(t, []string{"https://a.example/", "https://a.example/about", "https://a.example/charges"}, f.fetched)
}

func TestFind_FallbackPricingAfterEmptyBroadQuery(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		pricingQuery: {"https://acme.example/pricing"},
	}}
	f := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://acme.example/pricing": {Content: "Price list"},
	}}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "fallback: pricing", out.Strategy)
	assert.Equal(t, pricingQuery, out.Query)
	assert.Equal(t, []string{broadQuery, pricingQuery}, out.Tried)

	// found rows omit the tried list
	rec := out.Record()
	assert.Empty(t, rec.Tried)
	assert.Equal(t, "https://acme.example/pricing", rec.URL)
}

func TestFind_FallbackSubLink(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		costQuery: {"https://acme.example/services"},
	}}
	f := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://acme.example/services": {
			Content: "Our services",
			Links:   []string{"https://acme.example/docs/schedule.pdf"},
		},
	}}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "fallback: cost (sub-link)", out.Strategy)
	assert.Equal(t, "https://acme.example/docs/schedule.pdf", out.URL)
	assert.Equal(t, []string{broadQuery, pricingQuery, costQuery}, out.Tried)
}

func TestFind_NotFoundListsEveryQueryInOrder(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		broadQuery: {"https://a.example/"},
		ratesQuery: {"https://b.example/"},
	}}
	f := &fakeFetcher{}

	out := newFinder(s, f).Find(context.Background(), provider)

	assert.False(t, out.Found)
	assert.Equal(t, StrategyNotFound, out.Strategy)
	assert.Equal(t, []string{broadQuery, pricingQuery, costQuery, ratesQuery}, out.Tried)
	assert.Len(t, out.Attempts, 4)
	assert.Equal(t, []string{"https://a.example/"}, out.Attempts[0].Links)
	assert.Equal(t, []string{"https://b.example/"}, out.Attempts[3].Links)

	rec := out.Record()
	assert.Equal(t, StrategyNotFound, rec.Strategy)
	assert.Empty(t, rec.URL)
	assert.Equal(t, out.Tried, rec.Tried)
}

func TestFind_FetchErrorDoesNotStopChain(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		broadQuery: {"https://broken.example/", "https://ok.example/"},
	}}
	f := &fakeFetcher{
		errs: map[string]error{"https://broken.example/": errors.New("navigation timeout")},
		pages: map[string]*fetch.Page{
			"https://ok.example/": {Content: "Fees and charges"},
		},
	}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "https://ok.example/", out.URL)
	assert.Equal(t, StrategyBroad, out.Strategy)
}

func TestFind_FetchErrorsOnEveryBroadLinkFallThrough(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		broadQuery:   {"https://broken.example/"},
		pricingQuery: {"https://ok.example/"},
	}}
	f := &fakeFetcher{
		errs: map[string]error{"https://broken.example/": errors.New("connection reset")},
		pages: map[string]*fetch.Page{
			"https://ok.example/": {Content: "Fees"},
		},
	}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "fallback: pricing", out.Strategy)
}

func TestFind_FailedFetchOfPDFResultIsStillRelevant(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		broadQuery: {"https://acme.example/fees.pdf"},
	}}
	f := &fakeFetcher{errs: map[string]error{"https://acme.example/fees.pdf": errors.New("download started")}}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "https://acme.example/fees.pdf", out.URL)
	assert.Equal(t, StrategyBroad, out.Strategy)
}

func TestFind_SearchErrorSkipsOnlyThatTier(t *testing.T) {
	s := &fakeSearcher{
		errs: map[string]error{broadQuery: errors.New("quota exceeded")},
		results: map[string][]string{
			pricingQuery: {"https://acme.example/p"},
		},
	}
	f := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://acme.example/p": {Content: "$120 per day"},
	}}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, "fallback: pricing", out.Strategy)
	assert.Equal(t, []string{broadQuery, pricingQuery}, s.queries)
}

func TestFind_ResultLimit(t *testing.T) {
	links := []string{
		"https://1.example/", "https://2.example/", "https://3.example/",
		"https://4.example/", "https://5.example/", "https://6.example/",
	}
	s := &fakeSearcher{results: map[string][]string{broadQuery: links}}
	f := &fakeFetcher{pages: map[string]*fetch.Page{
		"https://6.example/": {Content: "fees"},
	}}

	out := newFinder(s, f).Find(context.Background(), provider)

	assert.False(t, out.Found)
	assert.NotContains(t, f.fetched, "https://6.example/")
	assert.Equal(t, links[:5], out.Attempts[0].Links)
}

func TestFind_GoldenDownloadCarriedToOutcome(t *testing.T) {
	golden := "https://acme.example/docs/fees.pdf"
	s := &fakeSearcher{results: map[string][]string{
		broadQuery: {"https://acme.example/"},
	}}
	f := &fakeFetcher{
		pages: map[string]*fetch.Page{
			"https://acme.example/": {
				Content:        "Services",
				Links:          []string{golden},
				DownloadedPath: "downloads/fees.pdf",
			},
		},
		errs: map[string]error{golden: errors.New("not html")},
	}

	out := newFinder(s, f).Find(context.Background(), provider)

	require.True(t, out.Found)
	assert.Equal(t, golden, out.URL)
	assert.Equal(t, StrategySubLink, out.Strategy)
	assert.Equal(t, "downloads/fees.pdf", out.DownloadedPath)
}

func TestFind_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &fakeSearcher{}
	out := newFinder(s, &fakeFetcher{}).Find(ctx, provider)

	assert.False(t, out.Found)
	assert.Equal(t, StrategyNotFound, out.Strategy)
	assert.Empty(t, out.Tried)
	assert.Empty(t, s.queries)
}

func TestFind_CustomKeywords(t *testing.T) {
	s := &fakeSearcher{}
	quiet := logger.New(logger.LevelError, &bytes.Buffer{})
	finder := NewFinder(s, &fakeFetcher{}, Config{FallbackKeywords: []string{"fees", "charges"}}, quiet)

	out := finder.Find(context.Background(), "  Acme Care ")

	assert.Equal(t, "Acme Care", out.Provider)
	assert.Equal(t, []string{
		"Acme Care home care fees OR charges",
		"Acme Care home care fees",
		"Acme Care home care charges",
	}, out.Tried)
}

func TestRecord_CSV(t *testing.T) {
	rec := Outcome{Provider: "Acme", Strategy: StrategyNotFound, Tried: []string{"a", "b"}}.Record()
	assert.Len(t, rec.CSVRecord(), len(rec.CSVHeader()))
	assert.Equal(t, "a | b", rec.CSVRecord()[4])
}
