package match

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// locationUnspecified is the placeholder the resume parsing pipeline emits
// when a candidate stated no location preference.
const locationUnspecified = "Not specified"

// Profile is the structured candidate record produced by the external resume
// parsing pipeline. The engine treats it as read-only.
type Profile struct {
	Name               string   `json:"name"`
	Skills             []string `json:"skills"`
	Experience         []string `json:"experience"`
	Degrees            []string `json:"degrees"`
	LocationPreference string   `json:"location_preference"`
}

// LoadProfile reads a candidate profile from a JSON file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("parsing profile file %q: %w", path, err)
	}

	return &profile, nil
}

// The projections below flatten the structured profile into the comparable
// text fields the similarity components operate on.

func (p *Profile) SkillsText() string {
	return strings.Join(p.Skills, ", ")
}

func (p *Profile) ExperienceText() string {
	return strings.Join(p.Experience, " ")
}

func (p *Profile) EducationText() string {
	return strings.Join(p.Degrees, " ")
}

// Location returns the candidate's location preference, with the parser's
// "Not specified" placeholder normalized to empty.
func (p *Profile) Location() string {
	location := strings.TrimSpace(p.LocationPreference)
	if strings.EqualFold(location, locationUnspecified) {
		return ""
	}
	return location
}

// Summary composes the full labeled profile text used for title matching.
// Empty sections are skipped.
func (p *Profile) Summary() string {
	var parts []string

	if p.Name != "" {
		parts = append(parts, "Name: "+p.Name)
	}
	if s := p.SkillsText(); s != "" {
		parts = append(parts, "Skills: "+s)
	}
	if s := p.ExperienceText(); s != "" {
		parts = append(parts, "Experience: "+s)
	}
	if s := p.EducationText(); s != "" {
		parts = append(parts, "Education: "+s)
	}
	if s := p.Location(); s != "" {
		parts = append(parts, "Location: "+s)
	}

	return strings.Join(parts, " ")
}
