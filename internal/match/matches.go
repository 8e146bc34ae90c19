package match

import (
	"encoding/json"
	"fmt"
	"os"
)

// Matches is a ranked result set, highest aggregate score first.
type Matches []*Match

func (m Matches) Len() int {
	return len(m)
}

// Top returns the best n matches. Values below 1 or beyond the result size
// return the whole set.
func (m Matches) Top(n int) Matches {
	if n < 1 || n >= len(m) {
		return m
	}
	return m[:n]
}

// Report flattens the matches into rows suitable for rendering or
// serialization by the caller.
func (m Matches) Report() []map[string]string {
	report := make([]map[string]string, 0, len(m))
	for i, match := range m {
		report = append(report, map[string]string{
			"rank":            fmt.Sprintf("%d", i+1),
			"title":           match.Listing.Title,
			"company":         match.Listing.Company,
			"location":        match.Listing.Location,
			"url":             match.Listing.URL,
			"score":           fmt.Sprintf("%.2f", match.Score),
			"overall":         match.Reasons.Overall,
			"skills":          match.Reasons.Skills,
			"matching skills": fmt.Sprintf("%v", match.MatchingSkills),
		})
	}
	return report
}

// DumpToTmpFile writes the full match records to a temporary JSON file.
func (m Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}
