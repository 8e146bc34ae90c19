package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spigell/jobmatch/internal/ai/gemini"
	"github.com/spigell/jobmatch/internal/jobsource"
	"github.com/spigell/jobmatch/internal/logger"
	"github.com/spigell/jobmatch/internal/match"
	"github.com/spigell/jobmatch/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowReport   = "Show match report"
	PromptDumpToFile   = "Dump matches to file"
	PromptDumpListings = "Dump raw listings to file"
	PromptExit         = "Exit"
	defaultCacheDir    = "./data"
	defaultSearchPages = 3
	defaultSearchLoc   = "United States"
	defaultTop         = 10
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReport, PromptDumpToFile, PromptDumpListings, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jobmatch main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-approve", "y", false, "print the report once and exit instead of prompting")
	runCmd.Flags().BoolP("enrich", "e", false, "fetch full descriptions before ranking (slower, better scores)")

	viper.BindPFlag("source.enrich", runCmd.Flags().Lookup("enrich"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting jobmatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Search == nil || config.Search.Query == "" {
		logger.Fatal("a search query is required under search.query")
	}

	if config.Profile == "" {
		logger.Fatal("a candidate profile path is required under profile")
	}

	profile, err := match.LoadProfile(config.Profile)
	if err != nil {
		logger.Fatal("loading candidate profile", zap.Error(err))
	}

	logger.Info("loaded candidate profile",
		zap.String("name", profile.Name),
		zap.Int("skills", len(profile.Skills)),
	)

	source, err := prepareSource(config, logger)
	if err != nil {
		logger.Fatal("preparing the job source", zap.Error(err))
	}

	engine, err := prepareEngine(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"preparing the match engine",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	search := config.Search
	if search.Location == "" {
		search.Location = defaultSearchLoc
	}
	if search.Pages < 1 {
		search.Pages = defaultSearchPages
	}

	logger.Info("starting the search",
		zap.String("query", search.Query),
		zap.String("location", search.Location),
		zap.Int("pages", search.Pages),
	)

	sourceName := jobsource.SourceIndeed
	if config.Source != nil && config.Source.Name != "" {
		sourceName = config.Source.Name
	}

	listings, err := source.RetrieveFrom(ctx, sourceName, search.Query, search.Location, search.Pages)
	if err != nil {
		logger.Fatal("retrieving listings", zap.Error(err))
	}

	if len(listings) == 0 {
		logger.Info("exiting", zap.String("reason", "no listings found"))
		return
	}

	logger.Info("retrieved listings", zap.Int("count", len(listings)))

	if viper.GetBool("source.enrich") {
		logger.Info("fetching full descriptions", zap.Int("count", len(listings)))
		for _, listing := range listings {
			source.Enrich(ctx, listing)
		}
	}

	top := config.Top
	if top < 1 {
		top = defaultTop
	}

	matches := engine.Rank(ctx, profile, listings).Top(top)

	logger.Info("ranking complete", zap.Int("matches", matches.Len()))
	for _, m := range matches {
		logger.Info(m.Reasons.Overall,
			zap.String("title", m.Listing.Title),
			zap.String("company", m.Listing.Company),
			zap.Strings("matching_skills", m.MatchingSkills),
		)
	}

	if cmd.Flag("auto-approve").Value.String() == "true" {
		reportMatches(matches, logger)
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, matches, listings, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, matches match.Matches, listings []*jobsource.Listing, logger *zap.Logger) error {
	switch action {
	case PromptShowReport:
		reportMatches(matches, logger)
		return nil
	case PromptDumpToFile:
		filename, err := matches.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump matches to file: %w", err)
		}
		logger.Info("dumping matches to file", zap.String("filename", filename))
		return nil
	case PromptDumpListings:
		filename, err := jobsource.DumpToTmpFile(listings)
		if err != nil {
			return fmt.Errorf("dump listings to file: %w", err)
		}
		logger.Info("dumping listings to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func reportMatches(matches match.Matches, logger *zap.Logger) {
	pretty, _ := json.MarshalIndent(matches.Report(), "", "  ")
	logger.Info(string(pretty), zap.Int("matches count", matches.Len()))
}

// prepareSource builds the retrieval client with its cache behind it.
func prepareSource(config *Config, logger *zap.Logger) (*jobsource.Client, error) {
	cacheDir := defaultCacheDir
	freshness := jobsource.DefaultFreshness

	if config.Cache != nil {
		if config.Cache.Dir != "" {
			cacheDir = config.Cache.Dir
		}
		if config.Cache.FreshnessHours > 0 {
			freshness = time.Duration(config.Cache.FreshnessHours) * time.Hour
		}
	}

	cache, err := jobsource.NewCache(cacheDir, freshness, logger)
	if err != nil {
		return nil, fmt.Errorf("creating listings cache: %w", err)
	}

	source := jobsource.New(logger, cache)

	if config.Source != nil {
		if config.Source.BaseURL != "" {
			source.BaseURL = strings.TrimSuffix(config.Source.BaseURL, "/")
		}
		if config.Source.PageSize > 0 {
			source.PageSize = config.Source.PageSize
		}
	}

	return source, nil
}

// prepareEngine loads the embedding backend once and hands it to the engine.
// A model that cannot be loaded is fatal: the engine cannot produce a single
// score without it.
func prepareEngine(ctx context.Context, config *Config, logger *zap.Logger) (*match.Engine, error) {
	if config.AI == nil || config.AI.Gemini == nil {
		return nil, errors.New("gemini configuration is required under ai.gemini")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	embedder, err := gemini.NewEmbedder(ctx, apiKey, config.AI.Gemini.Model)
	if err != nil {
		return nil, fmt.Errorf("building embedding backend: %w", err)
	}

	logger.Info("embedding backend ready", zap.String("model", embedder.Model()))

	return match.NewEngine(match.NewScorer(embedder), logger), nil
}
