package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobmatch"
)

type Config struct {
	Profile string        `mapstructure:"profile"`
	Top     int           `mapstructure:"top"`
	Search  *SearchConfig `mapstructure:"search"`
	Source  *SourceConfig `mapstructure:"source"`
	Cache   *CacheConfig  `mapstructure:"cache"`
	AI      *AIConfig     `mapstructure:"ai"`
}

type SearchConfig struct {
	Query    string `mapstructure:"query"`
	Location string `mapstructure:"location"`
	Pages    int    `mapstructure:"pages"`
}

type SourceConfig struct {
	Name     string `mapstructure:"name"`
	BaseURL  string `mapstructure:"base-url"`
	PageSize int    `mapstructure:"page-size"`
	Enrich   bool   `mapstructure:"enrich"`
}

type CacheConfig struct {
	Dir            string `mapstructure:"dir"`
	FreshnessHours int    `mapstructure:"freshness-hours"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobmatch is a simple cli for scraping job listings and ranking them against a candidate profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
