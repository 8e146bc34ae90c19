package jobsource

import (
	"encoding/json"
	"os"
)

// Sentinel values substituted when a field cannot be extracted from the page.
// Downstream code can rely on title/company/location never being empty.
const (
	UnknownTitle    = "Unknown Position"
	UnknownCompany  = "Unknown Company"
	UnknownLocation = "Unknown Location"
	UnknownSalary   = "Not specified"
)

// Listing is one structured job posting record scraped from the source.
type Listing struct {
	Title           string `json:"title"`
	Company         string `json:"company"`
	Location        string `json:"location"`
	URL             string `json:"url,omitempty"`
	DatePosted      string `json:"date_posted,omitempty"`
	Snippet         string `json:"snippet,omitempty"`
	FullDescription string `json:"full_description,omitempty"`
	Salary          string `json:"salary,omitempty"`
	Source          string `json:"source,omitempty"`
	Query           string `json:"query,omitempty"`
}

// DescriptionText returns the best available description for matching:
// the full description when it has been fetched, the search snippet otherwise.
func (l *Listing) DescriptionText() string {
	if l.FullDescription != "" {
		return l.FullDescription
	}
	return l.Snippet
}

// DumpToTmpFile writes the listings to a temporary JSON file and returns its path.
func DumpToTmpFile(listings []*Listing) (string, error) {
	file, err := os.CreateTemp("", "listings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(listings); err != nil {
		return "", err
	}
	return file.Name(), nil
}
