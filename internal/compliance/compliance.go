package compliance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/agedcare-docs/internal/fetch"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/provider"
)

const (
	// DefaultBaseURL is the regulator's site.
	DefaultBaseURL = "https://www.agedcarequality.gov.au"
	// SearchPath is the service and reports search page.
	SearchPath = "/service-and-reports"
	// Timeout is the default bound on each page load.
	Timeout = 30 * time.Second
)

var (
	// ErrNoServicePage means the search returned no service detail link.
	ErrNoServicePage = errors.New("no service page found")
	// ErrNoReport means the service page links no .docx report.
	ErrNoReport = errors.New("no compliance report found")
)

// Result is one downloaded report.
type Result struct {
	Provider  string `json:"provider" yaml:"provider"`
	Suburb    string `json:"suburb" yaml:"suburb"`
	Postcode  string `json:"postcode" yaml:"postcode"`
	ReportURL string `json:"report_url" yaml:"report_url"`
	LocalPath string `json:"local_path,omitempty" yaml:"local_path,omitempty"`
}

// CSVHeader implements report.Row.
func (r Result) CSVHeader() []string {
	return []string{"provider", "suburb", "postcode", "report_url", "local_path"}
}

// CSVRecord implements report.Row.
func (r Result) CSVRecord() []string {
	return []string{r.Provider, r.Suburb, r.Postcode, r.ReportURL, r.LocalPath}
}

// Client looks up and downloads compliance reports.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	downloader *fetch.Downloader
	log        *logger.Logger
}

// NewClient creates a Client for baseURL (DefaultBaseURL when empty) saving reports
// with downloader. timeout bounds each page load; zero uses Timeout.
func NewClient(baseURL string, downloader *fetch.Downloader, timeout time.Duration, log *logger.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if timeout <= 0 {
		timeout = Timeout
	}
	if log == nil {
		log = logger.Default()
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		downloader: downloader,
		log:        log.With(logger.Fields{"component": "compliance"}),
	}, nil
}

// SearchURL returns the search page URL for loc.
func (c *Client) SearchURL(loc provider.Location) string {
	q := url.Values{}
	q.Set("field_acqsc_report_provider_name", loc.Provider)
	q.Set("field_acqsc_service_postcode", loc.Postcode)
	q.Set("field_acqsc_service_suburb", loc.Suburb)
	q.Set("sort_by", "title")

	u := c.baseURL.ResolveReference(&url.URL{Path: SearchPath})
	u.RawQuery = q.Encode()
	return u.String()
}

// Download finds and saves the compliance report for loc.
func (c *Client) Download(ctx context.Context, loc provider.Location) (Result, error) {
	log := c.log.With(logger.Fields{"provider": loc.Provider, "suburb": loc.Suburb, "postcode": loc.Postcode})
	res := Result{Provider: loc.Provider, Suburb: loc.Suburb, Postcode: loc.Postcode}

	detailURL, err := c.firstLink(ctx, c.SearchURL(loc), "a[href^='/services/']")
	if err != nil {
		return res, fmt.Errorf("searching services: %w", err)
	}
	if detailURL == "" {
		logger.IncrCounter("compliance.no_service")
		return res, ErrNoServicePage
	}
	log.Debug("opening service page", logger.Fields{"url": detailURL})

	reportURL, err := c.firstLink(ctx, detailURL, "a[href$='.docx']")
	if err != nil {
		return res, fmt.Errorf("loading service page: %w", err)
	}
	if reportURL == "" {
		logger.IncrCounter("compliance.no_report")
		return res, ErrNoReport
	}
	res.ReportURL = reportURL

	path, err := c.downloader.Download(ctx, reportURL, Filename(loc))
	if err != nil {
		return res, fmt.Errorf("downloading report: %w", err)
	}
	res.LocalPath = path

	logger.IncrCounter("compliance.downloaded")
	log.Info("compliance report downloaded", logger.Fields{"url": reportURL, "path": path})
	return res, nil
}

// firstLink loads pageURL and returns the first href matching selector, resolved
// against the base URL. It returns "" when nothing matches.
func (c *Client) firstLink(ctx context.Context, pageURL, selector string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	fetch.SetBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	href, ok := doc.Find(selector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return "", nil
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// Filename is the local report name: "<provider>_<suburb>_<postcode>.docx" with spaces
// in the provider replaced by "_" and "&" by "and".
func Filename(loc provider.Location) string {
	safe := strings.NewReplacer(" ", "_", "&", "and").Replace(loc.Provider)
	name := fmt.Sprintf("%s_%s_%s.docx", safe, loc.Suburb, loc.Postcode)
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}
