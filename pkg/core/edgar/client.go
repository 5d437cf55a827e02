package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"proxyfacts/pkg/core/ratelimit"
)

const (
	companyTickersURL = "https://www.sec.gov/files/company_tickers.json"
	submissionsURL    = "https://data.sec.gov/submissions/CIK%s.json"
	archiveBaseURL    = "https://www.sec.gov/Archives/edgar/data"
)

// Client talks to the SEC EDGAR endpoints. Every request passes through
// the shared rate limiter and carries the contact identification header
// SEC's usage policy requires.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	userAgent  string

	tickerMu    sync.Mutex
	tickerCache map[string]Company // ticker -> Company, loaded once per process

	// Endpoint URLs, overridable in tests.
	tickersURL     string
	submissionsFmt string
	factsFmt       string
	conceptFmt     string
}

// NewClient creates an EDGAR client. contactEmail is mandatory: SEC
// rejects anonymous traffic, so the constructor refuses to proceed
// without one rather than failing on the first request.
func NewClient(contactEmail string, limiter *ratelimit.Limiter) (*Client, error) {
	if strings.TrimSpace(contactEmail) == "" {
		return nil, fmt.Errorf("contact email is required by SEC EDGAR usage policy")
	}
	if limiter == nil {
		limiter = ratelimit.New(10, time.Second)
	}
	return &Client{
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		limiter:        limiter,
		userAgent:      contactEmail,
		tickersURL:     companyTickersURL,
		submissionsFmt: submissionsURL,
		factsFmt:       companyFactsURL,
		conceptFmt:     companyConceptURL,
	}, nil
}

// SetEndpoints overrides the upstream endpoint URLs. Tests point these
// at a local server; production code keeps the defaults.
func (c *Client) SetEndpoints(tickersURL, submissionsFmt, factsFmt, conceptFmt string) {
	c.tickersURL = tickersURL
	c.submissionsFmt = submissionsFmt
	c.factsFmt = factsFmt
	c.conceptFmt = conceptFmt
}

// fetchURL performs one rate-limited GET and returns the body.
func (c *Client) fetchURL(ctx context.Context, url string) ([]byte, error) {
	c.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("EDGAR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("EDGAR returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// FetchURL exposes the rate-limited GET for document downloads that live
// outside this package (statement sub-documents, proxy HTML).
func (c *Client) FetchURL(ctx context.Context, url string) ([]byte, error) {
	return c.fetchURL(ctx, url)
}

// UserAgent returns the configured contact header value.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Resolve maps a ticker to its Company entry. The ticker table is fetched
// once per process and cached in memory for the process lifetime. An
// unknown ticker is reported as absent, not as an error: callers skip the
// company and continue the batch.
func (c *Client) Resolve(ctx context.Context, ticker string) (Company, bool, error) {
	normalized := strings.ToUpper(strings.TrimSpace(ticker))

	c.tickerMu.Lock()
	defer c.tickerMu.Unlock()

	if c.tickerCache == nil {
		if err := c.loadTickerTable(ctx); err != nil {
			return Company{}, false, err
		}
	}

	company, ok := c.tickerCache[normalized]
	return company, ok, nil
}

// loadTickerTable fetches company_tickers.json, a JSON object keyed by
// numeric index: {"0": {"cik_str": 320193, "ticker": "AAPL", "title": ...}}.
// Caller must hold tickerMu.
func (c *Client) loadTickerTable(ctx context.Context) error {
	body, err := c.fetchURL(ctx, c.tickersURL)
	if err != nil {
		return fmt.Errorf("failed to fetch company tickers: %w", err)
	}

	type tickerEntry struct {
		CIK    int    `json:"cik_str"`
		Ticker string `json:"ticker"`
		Title  string `json:"title"`
	}

	var table map[string]tickerEntry
	if err := json.Unmarshal(body, &table); err != nil {
		return fmt.Errorf("failed to parse ticker table: %w", err)
	}

	c.tickerCache = make(map[string]Company, len(table))
	for _, entry := range table {
		ticker := strings.ToUpper(entry.Ticker)
		c.tickerCache[ticker] = Company{
			Ticker: ticker,
			CIK:    fmt.Sprintf("%010d", entry.CIK),
			Title:  entry.Title,
		}
	}
	return nil
}

// submissionsResponse mirrors the submissions API shape: recent filings
// arrive as parallel arrays, one index per filing event.
type submissionsResponse struct {
	CIK     string   `json:"cik"`
	Name    string   `json:"name"`
	Tickers []string `json:"tickers"`
	Filings struct {
		Recent recentFilings `json:"recent"`
	} `json:"filings"`
}

type recentFilings struct {
	AccessionNumber       []string `json:"accessionNumber"`
	FilingDate            []string `json:"filingDate"`
	ReportDate            []string `json:"reportDate"`
	Form                  []string `json:"form"`
	PrimaryDocument       []string `json:"primaryDocument"`
	PrimaryDocDescription []string `json:"primaryDocDescription"`
	FileNumber            []string `json:"fileNumber"`
	FilmNumber            []string `json:"filmNumber"`
}

// FetchIndex returns the company's chronological filing index in upstream
// order (most recent first). A non-2xx response is a hard failure for
// this company only; batch callers log it and move on.
func (c *Client) FetchIndex(ctx context.Context, company Company) ([]Filing, error) {
	body, err := c.fetchURL(ctx, fmt.Sprintf(c.submissionsFmt, company.CIK))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for %s: %w", company.Ticker, err)
	}

	var resp submissionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse submissions for %s: %w", company.Ticker, err)
	}

	recent := resp.Filings.Recent
	filings := make([]Filing, 0, len(recent.AccessionNumber))
	for i := range recent.AccessionNumber {
		filingDate, _ := time.Parse("2006-01-02", at(recent.FilingDate, i))
		reportDate, _ := time.Parse("2006-01-02", at(recent.ReportDate, i))

		filings = append(filings, Filing{
			AccessionNumber:       recent.AccessionNumber[i],
			Form:                  at(recent.Form, i),
			FilingDate:            filingDate,
			ReportDate:            reportDate,
			PrimaryDocument:       at(recent.PrimaryDocument, i),
			PrimaryDocDescription: at(recent.PrimaryDocDescription, i),
			FileNumber:            at(recent.FileNumber, i),
			FilmNumber:            at(recent.FilmNumber, i),
		})
	}
	return filings, nil
}

// at guards against ragged parallel arrays in the upstream payload.
func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
