package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
)

const (
	// NavigationTimeout bounds a single page load.
	NavigationTimeout = 15 * time.Second
	// MaxBodySize is the largest page body read (10MB).
	MaxBodySize = 10 * 1024 * 1024
)

// DefaultGoldenKeywords mark a PDF link as a pricing document by its URL alone.
var DefaultGoldenKeywords = []string{"cost", "price", "package", "fees", "charges"}

// Page is the result of loading one URL.
type Page struct {
	URL            string   `json:"url"`
	Content        string   `json:"content,omitempty"`
	Links          []string `json:"links,omitempty"`
	DownloadedPath string   `json:"downloaded_path,omitempty"`
}

// Options configures a Fetcher.
type Options struct {
	NavigationTimeout time.Duration
	// GoldenKeywords enables the golden-link fast path when non-empty.
	GoldenKeywords []string
	// Downloader saves golden PDFs; nil reports the link without downloading it.
	Downloader *Downloader
	Logger     *logger.Logger
}

// Fetcher loads pages over HTTP.
type Fetcher struct {
	client *http.Client
	opts   Options
	log    *logger.Logger
}

// New creates a Fetcher. Zero option values fall back to package defaults.
func New(opts Options) *Fetcher {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = NavigationTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}
	return &Fetcher{
		client: &http.Client{},
		opts:   opts,
		log:    log.With(logger.Fields{"component": "fetch"}),
	}
}

// FetchPage loads rawURL and returns its text content and outbound links.
// Non-HTML responses (PDFs, images) return a Page with neither.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (*Page, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("fetch.page", time.Since(start)) }()
	logger.IncrCounter("fetch.pages")

	page, err := f.fetch(ctx, rawURL)
	if err != nil {
		logger.IncrCounter("fetch.errors")
		return nil, err
	}
	return page, nil
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (*Page, error) {
	navCtx, cancel := context.WithTimeout(ctx, f.opts.NavigationTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(navCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	SetBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	finalURL := resp.Request.URL
	if !isHTML(resp.Header.Get("Content-Type")) {
		return &Page{URL: finalURL.String()}, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("page exceeds maximum size of %d bytes", MaxBodySize)
	}

	return f.parsePage(ctx, body, finalURL)
}

// parsePage extracts text and links from an HTML body. ctx is the caller's context,
// not the navigation one, so a golden download gets its own timeout.
func (f *Fetcher) parsePage(ctx context.Context, body []byte, base *url.URL) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := &Page{
		URL:     base.String(),
		Content: renderText(body, doc),
	}

	self := withoutFragment(base)
	seen := map[string]bool{self: true}
	var golden string

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		link, ok := resolveLink(base, href)
		if !ok {
			return true
		}
		if f.isGolden(link) {
			golden = link
			return false
		}
		if !seen[link] {
			seen[link] = true
			page.Links = append(page.Links, link)
		}
		return true
	})

	if golden == "" {
		return page, nil
	}

	page.Links = []string{golden}
	f.log.Info("golden pricing link found", logger.Fields{"page": page.URL, "link": golden})

	if f.opts.Downloader != nil {
		path, err := f.opts.Downloader.Download(ctx, golden, "")
		if err != nil {
			f.log.Warn("golden PDF download failed", logger.Fields{"link": golden}, err)
		} else {
			page.DownloadedPath = path
		}
	}

	return page, nil
}

// isGolden reports whether link is a PDF whose URL names a cost document.
func (f *Fetcher) isGolden(link string) bool {
	if len(f.opts.GoldenKeywords) == 0 {
		return false
	}
	u, err := url.Parse(link)
	if err != nil || !strings.HasSuffix(strings.ToLower(u.Path), ".pdf") {
		return false
	}
	lower := strings.ToLower(link)
	for _, kw := range f.opts.GoldenKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// renderText converts the page to Markdown, falling back to goquery's text.
func renderText(body []byte, doc *goquery.Document) string {
	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil || strings.TrimSpace(markdown) == "" {
		return strings.TrimSpace(doc.Text())
	}
	return strings.TrimSpace(markdown)
}

// resolveLink makes href absolute against base. Only http(s) links are kept.
func resolveLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	return withoutFragment(abs), true
}

func withoutFragment(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "html")
}
