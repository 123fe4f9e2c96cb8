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

const serpAPIBaseURL = "https://serpapi.com"

// SerpAPI queries Google through serpapi.com.
type SerpAPI struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerpAPI creates a SerpAPI client. An empty baseURL uses serpapi.com.
func NewSerpAPI(apiKey, baseURL string, client *http.Client) *SerpAPI {
	if baseURL == "" {
		baseURL = serpAPIBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &SerpAPI{apiKey: apiKey, baseURL: baseURL, httpClient: client}
}

type serpAPIResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error"`
}

// Search runs query on the Google engine and returns organic results.
func (s *SerpAPI) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Add("engine", "google")
	params.Add("q", query)
	params.Add("api_key", s.apiKey)
	if limit > 0 {
		params.Add("num", strconv.Itoa(limit))
	}

	reqURL := fmt.Sprintf("%s/search.json?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed serpAPIResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && parsed.Error != "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, parsed.Error)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("parsing response: %w", decodeErr)
	}
	if parsed.Error != "" && len(parsed.OrganicResults) == 0 {
		// "Google hasn't returned any results for this query." arrives as an error with 200
		return nil, nil
	}

	results := make([]Result, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		if r.Link == "" {
			continue
		}
		results = append(results, Result{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	return truncate(results, limit), nil
}
