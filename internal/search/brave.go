package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const braveBaseURL = "https://api.search.brave.com/res/v1"

// Brave queries the Brave Search web endpoint.
type Brave struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewBrave creates a Brave Search client. An empty baseURL uses the public API.
func NewBrave(apiKey, baseURL string, client *http.Client) *Brave {
	if baseURL == "" {
		baseURL = braveBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &Brave{apiKey: apiKey, baseURL: baseURL, httpClient: client}
}

type braveResponse struct {
	Web *struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs query and returns web results. Brave caps count at 20.
func (b *Brave) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("result_filter", "web")
	if limit > 0 {
		params.Add("count", strconv.Itoa(min(limit, 20)))
	}

	reqURL := fmt.Sprintf("%s/web/search?%s", b.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if parsed.Web == nil {
		return nil, nil
	}

	results := make([]Result, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Description})
	}
	return truncate(results, limit), nil
}
