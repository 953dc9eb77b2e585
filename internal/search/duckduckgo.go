package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DuckDuckGoEndpoint is the lite HTML interface, which is stable to scrape.
const DuckDuckGoEndpoint = "https://lite.duckduckgo.com/lite/"

const ddgUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ddgRateLimit is shared by all DuckDuckGo instances and goroutines.
var ddgRateLimit struct {
	mu   sync.Mutex
	last time.Time
}

// DuckDuckGo scrapes DuckDuckGo's lite HTML results page. It needs no API key.
type DuckDuckGo struct {
	endpoint    string
	maxResults  int
	minInterval time.Duration
	client      *http.Client
}

// DuckDuckGoOption configures a DuckDuckGo provider.
type DuckDuckGoOption func(*DuckDuckGo)

// WithDuckDuckGoEndpoint overrides the lite endpoint.
func WithDuckDuckGoEndpoint(endpoint string) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		if endpoint != "" {
			d.endpoint = endpoint
		}
	}
}

// WithDuckDuckGoClient sets the HTTP client.
func WithDuckDuckGoClient(client *http.Client) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.client = client
	}
}

// WithDuckDuckGoMaxResults caps the number of returned results.
func WithDuckDuckGoMaxResults(n int) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.maxResults = n
	}
}

// WithDuckDuckGoInterval sets the minimum delay between queries.
func WithDuckDuckGoInterval(interval time.Duration) DuckDuckGoOption {
	return func(d *DuckDuckGo) {
		d.minInterval = interval
	}
}

// NewDuckDuckGo creates a DuckDuckGo provider limited to one query per second.
func NewDuckDuckGo(opts ...DuckDuckGoOption) *DuckDuckGo {
	d := &DuckDuckGo{
		endpoint:    DuckDuckGoEndpoint,
		maxResults:  5,
		minInterval: time.Second,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}

	if err := d.wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ddgUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(d.Name(), resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return limit(parseLiteResults(doc), d.maxResults), nil
}

func (d *DuckDuckGo) wait(ctx context.Context) error {
	if d.minInterval <= 0 {
		return nil
	}
	ddgRateLimit.mu.Lock()
	defer ddgRateLimit.mu.Unlock()

	if wait := time.Until(ddgRateLimit.last.Add(d.minInterval)); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	ddgRateLimit.last = time.Now()
	return nil
}

// parseLiteResults pairs each result link with the snippet row that follows it.
func parseLiteResults(doc *goquery.Document) []Result {
	var results []Result
	doc.Find("a.result-link").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		target := resolveRedirect(strings.TrimSpace(href))
		title := strings.TrimSpace(link.Text())
		if target == "" || title == "" {
			return
		}

		// The snippet lives in a later row, before the next result link.
		var snippet string
		for row := link.Closest("tr").Next(); row.Length() > 0; row = row.Next() {
			if row.Find("a.result-link").Length() > 0 {
				break
			}
			if cell := row.Find("td.result-snippet"); cell.Length() > 0 {
				snippet = cell.First().Text()
				break
			}
		}

		results = append(results, Result{
			Title:   title,
			URL:     target,
			Snippet: strings.Join(strings.Fields(snippet), " "),
		})
	})
	return results
}

// resolveRedirect unwraps DuckDuckGo's //duckduckgo.com/l/?uddg= links.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
