package jobsource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/jobmatch/internal/utils"
	"go.uber.org/zap"
)

// ErrUnsupportedSource is returned when a caller asks for a job source this
// client does not implement.
var ErrUnsupportedSource = errors.New("unsupported job source")

const (
	// SourceIndeed is the only source identifier accepted by RetrieveFrom.
	SourceIndeed = "indeed"

	// sourceLabel is stamped on every listing produced by this client.
	sourceLabel = "Indeed"
)

// RetrieveFrom dispatches retrieval by source identifier. Unknown identifiers
// are a caller-contract violation and propagate as an error.
func (c *Client) RetrieveFrom(ctx context.Context, source, query, location string, pages int) ([]*Listing, error) {
	if !strings.EqualFold(strings.TrimSpace(source), SourceIndeed) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}
	return c.Retrieve(ctx, query, location, pages)
}

// Retrieve fetches up to pages result pages for the query/location pair.
// A fresh cache entry short-circuits all network activity. On a miss every
// page failure is logged and skipped, partial results are acceptable, and the
// merged result (possibly empty) is always written back to the cache so a
// fruitless query does not trigger repeated fetch storms within the freshness
// window.
func (c *Client) Retrieve(ctx context.Context, query, location string, pages int) ([]*Listing, error) {
	if pages < 1 {
		return nil, fmt.Errorf("page count must be at least 1, got %d", pages)
	}

	if cached, ok := c.cache.Lookup(query, location); ok {
		c.logger.Info("loading listings from cache",
			zap.String("query", query),
			zap.Int("count", len(cached)),
		)
		return cached, nil
	}

	extractor := NewExtractor(c.BaseURL, c.logger)
	listings := make([]*Listing, 0)

	for page := 0; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("retrieval aborted by caller", zap.Int("page", page+1), zap.Error(err))
			break
		}

		c.logger.Debug("scraping page", zap.Int("page", page+1), zap.Int("pages", pages))

		markup, err := c.get(ctx, c.BaseURL+searchPath, c.searchPageQuery(query, location, page))
		if err != nil {
			c.logger.Warn("skipping page", zap.Int("page", page+1), zap.Error(err))
		} else if extracted, err := extractor.Extract(markup); err != nil {
			c.logger.Warn("skipping unparseable page", zap.Int("page", page+1), zap.Error(err))
		} else {
			for _, l := range extracted {
				l.Source = sourceLabel
				l.Query = query
			}
			listings = append(listings, extracted...)
			c.logger.Debug("page scraped", zap.Int("page", page+1), zap.Int("listings", len(extracted)))
		}

		// The pause is unconditional between iterations, failed page or not,
		// so an erroring source never turns into a hot retry loop.
		if page < pages-1 {
			c.delay(ctx, c.PageDelay)
		}
	}

	if err := c.cache.Store(query, location, listings); err != nil {
		c.logger.Warn("storing listings in cache", zap.Error(err))
	}

	return listings, nil
}

// Enrich fetches the listing's own page to populate the full description.
// It is a no-op when the description is already set or the listing has no
// URL, and every failure is non-fatal: the description simply stays empty.
func (c *Client) Enrich(ctx context.Context, l *Listing) {
	if l == nil || l.FullDescription != "" || l.URL == "" {
		return
	}

	markup, err := c.get(ctx, l.URL, nil)
	if err != nil {
		c.logger.Warn("fetching full description", zap.String("url", l.URL), zap.Error(err))
		return
	}

	if description := ExtractDescription(markup); description != "" {
		l.FullDescription = description
		c.logger.Debug("fetched full description",
			zap.String("url", l.URL),
			zap.String("preview", utils.TruncateForLog(description, 120)),
		)
	}

	c.delay(ctx, c.FetchDelay)
}
