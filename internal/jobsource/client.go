package jobsource

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spigell/jobmatch/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultBaseURL  = "https://www.indeed.com"
	searchPath      = "/jobs"
	defaultPageSize = 10
)

// userAgents is the identity pool requests rotate through to reduce
// fingerprinting by the source.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// DelayRange bounds the randomized pause drawn before the next request.
// Tests pin both ends to zero for determinism.
type DelayRange struct {
	Min time.Duration
	Max time.Duration
}

// Client retrieves job listings from the external source. Fields are exported
// the same way the HTTP client is: set them after New, before the first call.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	PageSize   int
	// PageDelay separates search result page fetches, FetchDelay follows
	// single-listing enrichment fetches.
	PageDelay  DelayRange
	FetchDelay DelayRange

	cache  *Cache
	logger *zap.Logger
	rand   *rand.Rand
}

func New(logger *zap.Logger, cache *Cache) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		PageSize:   defaultPageSize,
		PageDelay:  DelayRange{Min: 2 * time.Second, Max: 5 * time.Second},
		FetchDelay: DelayRange{Min: 1 * time.Second, Max: 3 * time.Second},
		cache:      cache,
		logger:     logger,
		rand:       rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// get fetches a single URL with a randomized request identity and returns the
// raw body. Any non-200 response is an error.
func (c *Client) get(ctx context.Context, rawURL string, q url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}

	c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	return string(body), nil
}

// searchPageQuery builds the paginated query string for one result page.
func (c *Client) searchPageQuery(query, location string, page int) url.Values {
	q := url.Values{}
	q.Set("q", query)
	q.Set("l", location)
	q.Set("sort", "date")
	q.Set("start", strconv.Itoa(page*c.PageSize))
	return q
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[c.rand.IntN(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Referer", "https://www.google.com/")
	req.Header.Set("DNT", "1")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// delay pauses for a duration drawn uniformly from the range. The pause stops
// early only when the caller's context is done.
func (c *Client) delay(ctx context.Context, r DelayRange) {
	d := r.Min
	if span := r.Max - r.Min; span > 0 {
		d += time.Duration(c.rand.Int64N(int64(span)))
	}

	if err := utils.WaitFor(ctx, d); err != nil {
		c.logger.Debug("delay interrupted", zap.Error(err))
	}
}
