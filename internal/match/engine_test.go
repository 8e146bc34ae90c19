package match

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/spigell/jobmatch/internal/jobsource"
	"go.uber.org/zap"
)

// stubScorer scores text pairs from a fixed table, falling back to a default.
type stubScorer struct {
	scores map[string]float64
	def    float64
	err    error
}

func (s *stubScorer) Similarity(_ context.Context, a, b string) (float64, error) {
	if s.err != nil {
		return 0, s.err
	}
	if score, ok := s.scores[a+"|"+b]; ok {
		return score, nil
	}
	return s.def, nil
}

func testProfile() *Profile {
	return &Profile{
		Name:               "Jordan Doe",
		Skills:             []string{"Python", "SQL", "Go"},
		Experience:         []string{"5 years backend development"},
		Degrees:            []string{"BSc Computer Science"},
		LocationPreference: "Remote",
	}
}

func TestEvaluateWeightedAggregate(t *testing.T) {
	profile := testProfile()
	listing := &jobsource.Listing{
		Title:    "Backend Developer",
		Location: "Remote",
		Snippet:  "Backend work with Python and SQL.",
	}

	description := listing.DescriptionText()
	scorer := &stubScorer{scores: map[string]float64{
		profile.SkillsText() + "|" + description:     1.0,
		profile.ExperienceText() + "|" + description: 0.8,
		profile.EducationText() + "|" + description:  0.6,
		profile.Location() + "|" + listing.Location:  1.0,
		profile.Summary() + "|" + listing.Title:      0.4,
	}}

	engine := NewEngine(scorer, zap.NewNop())
	matches := engine.Rank(context.Background(), profile, []*jobsource.Listing{listing})
	if matches.Len() != 1 {
		t.Fatalf("expected 1 match, got %d", matches.Len())
	}

	m := matches[0]
	expected := 0.35*1.0 + 0.30*0.8 + 0.15*0.6 + 0.10*1.0 + 0.10*0.4
	if diff := m.Score - expected; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("score = %v, expected %v", m.Score, expected)
	}
	if m.Components.Skills != 1.0 || m.Components.Experience != 0.8 {
		t.Fatalf("unexpected components: %+v", m.Components)
	}
}

func TestEvaluateNeutralLocationScore(t *testing.T) {
	tests := []struct {
		name       string
		preference string
		location   string
	}{
		{"no preference", "", "Remote"},
		{"placeholder preference", "Not specified", "Remote"},
		{"no listing location", "Remote", ""},
		{"whitespace listing location", "Remote", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := testProfile()
			profile.LocationPreference = tt.preference
			listing := &jobsource.Listing{Title: "Dev", Location: tt.location, Snippet: "work"}

			// Any real similarity call would return 0.9, so a 0.5 can only
			// come from the neutral path.
			engine := NewEngine(&stubScorer{def: 0.9}, zap.NewNop())
			m := engine.Rank(context.Background(), profile, []*jobsource.Listing{listing})[0]

			if m.Components.Location != neutralLocationScore {
				t.Fatalf("location component = %v, expected %v", m.Components.Location, neutralLocationScore)
			}
			if m.Reasons.Location != "Location match: good" {
				t.Fatalf("location reason = %q", m.Reasons.Location)
			}
		})
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	profile := testProfile()
	listings := []*jobsource.Listing{
		{Title: "Low", Snippet: "low"},
		{Title: "High", Snippet: "high"},
		{Title: "Mid", Snippet: "mid"},
	}

	scorer := &stubScorer{scores: map[string]float64{}}
	for _, pair := range []struct {
		snippet string
		score   float64
	}{{"low", 0.1}, {"high", 0.9}, {"mid", 0.5}} {
		scorer.scores[profile.SkillsText()+"|"+pair.snippet] = pair.score
		scorer.scores[profile.ExperienceText()+"|"+pair.snippet] = pair.score
		scorer.scores[profile.EducationText()+"|"+pair.snippet] = pair.score
	}

	engine := NewEngine(scorer, zap.NewNop())
	matches := engine.Rank(context.Background(), profile, listings)

	titles := []string{matches[0].Listing.Title, matches[1].Listing.Title, matches[2].Listing.Title}
	if !reflect.DeepEqual(titles, []string{"High", "Mid", "Low"}) {
		t.Fatalf("unexpected order: %v", titles)
	}
}

func TestRankEqualScoresKeepInputOrder(t *testing.T) {
	profile := testProfile()
	listings := []*jobsource.Listing{
		{Title: "First", Snippet: "same"},
		{Title: "Second", Snippet: "same"},
		{Title: "Third", Snippet: "same"},
	}

	engine := NewEngine(&stubScorer{def: 0.5}, zap.NewNop())
	matches := engine.Rank(context.Background(), profile, listings)

	for i, title := range []string{"First", "Second", "Third"} {
		if matches[i].Listing.Title != title {
			t.Fatalf("position %d: got %q, expected %q", i, matches[i].Listing.Title, title)
		}
	}
}

func TestRankIsIdempotent(t *testing.T) {
	profile := testProfile()
	listings := []*jobsource.Listing{
		{Title: "A", Snippet: "python developer"},
		{Title: "B", Snippet: "sql analyst"},
	}

	engine := NewEngine(&stubScorer{def: 0.42}, zap.NewNop())

	first := engine.Rank(context.Background(), profile, listings)
	second := engine.Rank(context.Background(), profile, listings)

	if first.Len() != second.Len() {
		t.Fatalf("result sizes differ: %d vs %d", first.Len(), second.Len())
	}
	for i := range first {
		if first[i].Score != second[i].Score {
			t.Errorf("score %d differs: %v vs %v", i, first[i].Score, second[i].Score)
		}
		if !reflect.DeepEqual(first[i].MatchingSkills, second[i].MatchingSkills) {
			t.Errorf("matching skills %d differ: %v vs %v", i, first[i].MatchingSkills, second[i].MatchingSkills)
		}
	}
}

func TestScoringFailureContributesZero(t *testing.T) {
	profile := testProfile()
	listing := &jobsource.Listing{Title: "Dev", Location: "Remote", Snippet: "work"}

	engine := NewEngine(&stubScorer{err: errors.New("backend down")}, zap.NewNop())
	m := engine.Rank(context.Background(), profile, []*jobsource.Listing{listing})[0]

	if m.Components.Skills != 0 || m.Components.Experience != 0 || m.Components.Title != 0 {
		t.Fatalf("failed components must score 0: %+v", m.Components)
	}
	if m.Score != 0 {
		t.Fatalf("aggregate = %v, expected 0", m.Score)
	}
}

func TestReasonTemplates(t *testing.T) {
	profile := testProfile()
	listing := &jobsource.Listing{Title: "Dev", Location: "Remote", Snippet: "work"}

	engine := NewEngine(&stubScorer{def: 0.85}, zap.NewNop())
	m := engine.Rank(context.Background(), profile, []*jobsource.Listing{listing})[0]

	expectations := map[string]string{
		m.Reasons.Skills:     "Skills match: excellent",
		m.Reasons.Experience: "Experience relevance: excellent",
		m.Reasons.Education:  "Education match: excellent",
		m.Reasons.Location:   "Location match: excellent",
		m.Reasons.Title:      "Job title match: excellent",
	}
	for got, expected := range expectations {
		if got != expected {
			t.Errorf("reason = %q, expected %q", got, expected)
		}
	}

	expectedOverall := fmt.Sprintf("Overall match score: %.2f/1.00", m.Score)
	if m.Reasons.Overall != expectedOverall {
		t.Errorf("overall reason = %q, expected %q", m.Reasons.Overall, expectedOverall)
	}
}

func TestBandBoundaries(t *testing.T) {
	tests := []struct {
		score  float64
		expect string
	}{
		{0.81, "excellent"},
		{0.8, "strong"},
		{0.61, "strong"},
		{0.6, "good"},
		{0.41, "good"},
		{0.4, "moderate"},
		{0.21, "moderate"},
		{0.2, "limited"},
		{0.0, "limited"},
	}

	for _, tt := range tests {
		if got := band(tt.score); got != tt.expect {
			t.Errorf("band(%v) = %q, expected %q", tt.score, got, tt.expect)
		}
	}
}

func TestMatchingSkills(t *testing.T) {
	description := "We need PYTHON and sql experience. Python is a must."

	got := matchingSkills([]string{"Python", "SQL", "Go", "Python"}, description)
	if !reflect.DeepEqual(got, []string{"Python", "SQL"}) {
		t.Fatalf("matching skills = %v, expected [Python SQL]", got)
	}

	if got := matchingSkills(nil, description); len(got) != 0 {
		t.Fatalf("no skills should match nothing, got %v", got)
	}
	if got := matchingSkills([]string{"Rust"}, description); len(got) != 0 {
		t.Fatalf("absent skill should not match, got %v", got)
	}
}

func TestMatchingSkillsPreferFullDescription(t *testing.T) {
	profile := testProfile()
	listing := &jobsource.Listing{
		Title:           "Dev",
		Snippet:         "short snippet mentioning go",
		FullDescription: "Full text needs Python and SQL.",
	}

	engine := NewEngine(&stubScorer{def: 0.5}, zap.NewNop())
	m := engine.Rank(context.Background(), profile, []*jobsource.Listing{listing})[0]

	if !reflect.DeepEqual(m.MatchingSkills, []string{"Python", "SQL"}) {
		t.Fatalf("matching skills = %v, expected full description to win over snippet", m.MatchingSkills)
	}
	if strings.Contains(strings.Join(m.MatchingSkills, " "), "Go") {
		t.Fatalf("snippet-only skill leaked in: %v", m.MatchingSkills)
	}
}
