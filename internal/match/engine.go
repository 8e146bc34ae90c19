package match

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spigell/jobmatch/internal/jobsource"
	"go.uber.org/zap"
)

// Component weights of the aggregate score. They sum to 1.0, so the aggregate
// of component scores in [0, 1] stays in [0, 1].
const (
	weightSkills     = 0.35
	weightExperience = 0.30
	weightEducation  = 0.15
	weightLocation   = 0.10
	weightTitle      = 0.10
)

// neutralLocationScore is assigned when either side has no usable location
// text, so an unspecified preference is never penalized.
const neutralLocationScore = 0.5

// similarityScorer is the slice of Scorer the engine depends on.
type similarityScorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// ComponentScores holds the five weighted similarity components, each in [0, 1].
type ComponentScores struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Location   float64 `json:"location"`
	Title      float64 `json:"title"`
}

// Reasons carries one human-readable justification per component plus an
// overall line with the numeric aggregate.
type Reasons struct {
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	Location   string `json:"location"`
	Title      string `json:"title"`
	Overall    string `json:"overall"`
}

// Match is one listing's computed ranking result against a profile. Records
// are immutable once built; ranking only reorders them.
type Match struct {
	Listing        *jobsource.Listing `json:"listing"`
	Score          float64            `json:"match_score"`
	Components     ComponentScores    `json:"component_scores"`
	Reasons        Reasons            `json:"match_reasons"`
	MatchingSkills []string           `json:"matching_skills"`
}

type Engine struct {
	scorer similarityScorer
	logger *zap.Logger
}

func NewEngine(scorer similarityScorer, logger *zap.Logger) *Engine {
	return &Engine{
		scorer: scorer,
		logger: logger,
	}
}

// Rank scores every listing against the profile and returns the results
// ordered by aggregate score, highest first. Listings are evaluated
// independently, and equal scores keep their input order.
func (e *Engine) Rank(ctx context.Context, profile *Profile, listings []*jobsource.Listing) Matches {
	matches := make(Matches, 0, len(listings))
	for _, listing := range listings {
		matches = append(matches, e.evaluate(ctx, profile, listing))
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

func (e *Engine) evaluate(ctx context.Context, profile *Profile, listing *jobsource.Listing) *Match {
	description := listing.DescriptionText()

	components := ComponentScores{
		Skills:     e.similarity(ctx, profile.SkillsText(), description),
		Experience: e.similarity(ctx, profile.ExperienceText(), description),
		Education:  e.similarity(ctx, profile.EducationText(), description),
		Location:   e.locationScore(ctx, profile, listing),
		Title:      e.similarity(ctx, profile.Summary(), listing.Title),
	}

	score := weightSkills*components.Skills +
		weightExperience*components.Experience +
		weightEducation*components.Education +
		weightLocation*components.Location +
		weightTitle*components.Title

	return &Match{
		Listing:    listing,
		Score:      score,
		Components: components,
		Reasons: Reasons{
			Skills:     fmt.Sprintf("Skills match: %s", band(components.Skills)),
			Experience: fmt.Sprintf("Experience relevance: %s", band(components.Experience)),
			Education:  fmt.Sprintf("Education match: %s", band(components.Education)),
			Location:   fmt.Sprintf("Location match: %s", band(components.Location)),
			Title:      fmt.Sprintf("Job title match: %s", band(components.Title)),
			Overall:    fmt.Sprintf("Overall match score: %.2f/1.00", score),
		},
		MatchingSkills: matchingSkills(profile.Skills, description),
	}
}

// similarity absorbs backend failures: a component that cannot be scored
// contributes nothing instead of failing the whole ranking.
func (e *Engine) similarity(ctx context.Context, a, b string) float64 {
	score, err := e.scorer.Similarity(ctx, a, b)
	if err != nil {
		e.logger.Warn("similarity scoring failed", zap.Error(err))
		return 0
	}
	return score
}

func (e *Engine) locationScore(ctx context.Context, profile *Profile, listing *jobsource.Listing) float64 {
	profileLocation := profile.Location()
	listingLocation := strings.TrimSpace(listing.Location)

	if profileLocation == "" || listingLocation == "" {
		return neutralLocationScore
	}

	return e.similarity(ctx, profileLocation, listingLocation)
}

// band maps a numeric component score to its qualitative description.
func band(score float64) string {
	switch {
	case score > 0.8:
		return "excellent"
	case score > 0.6:
		return "strong"
	case score > 0.4:
		return "good"
	case score > 0.2:
		return "moderate"
	default:
		return "limited"
	}
}

// matchingSkills reports the profile skills literally present in the listing
// text, case-insensitively, preserving the profile's skill order and dropping
// duplicates. This is an explanatory artifact and carries no scoring weight.
func matchingSkills(skills []string, description string) []string {
	lowered := strings.ToLower(description)
	seen := make(map[string]bool)
	matched := make([]string, 0)

	for _, skill := range skills {
		key := strings.ToLower(strings.TrimSpace(skill))
		if key == "" || seen[key] {
			continue
		}
		if strings.Contains(lowered, key) {
			seen[key] = true
			matched = append(matched, skill)
		}
	}

	return matched
}
