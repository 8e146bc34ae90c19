package jobsource

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// The source shuffles its markup frequently. Every field is extracted through
// an ordered chain of selectors, newest layout first; the first selector that
// yields non-empty content wins. Supporting a new layout means appending a
// selector, not touching the extraction code.
var (
	cardSelectors = []string{
		"div.job_seen_beacon",
		"div.jobsearch-SerpJobCard",
		"div.tapItem",
		`div[data-testid="job-card"]`,
	}
	titleSelectors    = []string{"h2.jobTitle", "a.jobtitle", "h2.title", "h2 a"}
	companySelectors  = []string{"span.companyName", "div.company", `[data-testid="company-name"]`}
	locationSelectors = []string{"div.companyLocation", ".location", `[data-testid="text-location"]`}
	linkSelectors     = []string{`a[id^="job_"]`, "a.jobtitle", "h2 a"}
	dateSelectors     = []string{"span.date", ".result-link-bar-container .date", `[data-testid="text-date"]`}
	snippetSelectors  = []string{".job-snippet", ".summary", `[data-testid="job-snippet"]`}
	salarySelectors   = []string{".salary-snippet", ".salaryText", `[data-testid="text-salary"]`}

	descriptionSelectors = []string{"#jobDescriptionText", ".jobsearch-jobDescriptionText", ".description"}
)

// Extractor pulls structured listings out of raw search result markup.
type Extractor struct {
	origin string
	logger *zap.Logger
}

func NewExtractor(origin string, logger *zap.Logger) *Extractor {
	return &Extractor{
		origin: strings.TrimSuffix(origin, "/"),
		logger: logger,
	}
}

// Extract parses one page of search results. A page where no listing block
// matches any known layout is a valid empty result, not an error: it means
// the markup has drifted past every selector chain.
func (e *Extractor) Extract(markup string) ([]*Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing page markup: %w", err)
	}

	var cards *goquery.Selection
	for _, selector := range cardSelectors {
		if found := doc.Find(selector); found.Length() > 0 {
			cards = found
			break
		}
	}

	if cards == nil {
		e.logger.Debug("no listing blocks matched any known layout")
		return []*Listing{}, nil
	}

	listings := make([]*Listing, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		listings = append(listings, e.extractCard(card))
	})

	return listings, nil
}

// extractCard builds one listing from a single result block. Fields that
// cannot be extracted get their sentinel defaults; the record is always emitted.
func (e *Extractor) extractCard(card *goquery.Selection) *Listing {
	l := &Listing{
		Title:      e.extractTitle(card),
		Company:    firstText(card, companySelectors, UnknownCompany),
		Location:   firstText(card, locationSelectors, UnknownLocation),
		URL:        e.extractLink(card),
		DatePosted: firstText(card, dateSelectors, ""),
		Snippet:    firstText(card, snippetSelectors, ""),
		Salary:     firstText(card, salarySelectors, UnknownSalary),
	}

	return l
}

func (e *Extractor) extractTitle(card *goquery.Selection) string {
	for _, selector := range titleSelectors {
		found := card.Find(selector)
		if found.Length() == 0 {
			continue
		}

		// The title element often wraps its text in a span child.
		elem := found.First()
		text := strings.TrimSpace(elem.Find("span").First().Text())
		if text == "" {
			text = strings.TrimSpace(elem.Text())
		}
		if text != "" {
			return text
		}
	}
	return UnknownTitle
}

func (e *Extractor) extractLink(card *goquery.Selection) string {
	for _, selector := range linkSelectors {
		found := card.Find(selector)
		if found.Length() == 0 {
			continue
		}

		href, ok := found.First().Attr("href")
		if !ok || href == "" {
			continue
		}

		// Host-relative links get the source origin prepended.
		if strings.HasPrefix(href, "/") {
			return e.origin + href
		}
		return href
	}
	return ""
}

// ExtractDescription pulls the full description text from a single job page.
// An empty result means no description block was found.
func ExtractDescription(markup string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	for _, selector := range descriptionSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(found.First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// firstText returns the trimmed text of the first selector with non-empty
// content, or the fallback when every selector misses.
func firstText(card *goquery.Selection, selectors []string, fallback string) string {
	for _, selector := range selectors {
		found := card.Find(selector)
		if found.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(found.First().Text()); text != "" {
			return text
		}
	}
	return fallback
}
