package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bb-after/status-score/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "statusscore",
	Short: "StatusScore - transparent reputation scoring for people and companies",
	Long: `StatusScore computes a deterministic 0-100 reputation score for a person,
company, or public figure from observable online signals: positive and
negative coverage, Wikipedia presence, owned web properties, social
profiles, and AI assistant visibility.

The score measures presence, not character. Every point is traceable to a
weighted factor, every factor to concrete evidence, and every user
correction recomputes the score from scratch.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("statusscore v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.statusscore/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(home + "/.statusscore")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match STATUSSCORE_*
	viper.SetEnvPrefix("STATUSSCORE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the effective configuration: defaults, then config
// file and environment values, with flag overrides applied by the caller.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("search.base_url"); v != "" {
		cfg.Search.BaseURL = v
	}
	if v := viper.GetString("search.api_key"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := viper.GetStringSlice("probe.owned_domains"); len(v) > 0 {
		cfg.Probe.OwnedDomains = v
	}
	if v := viper.GetStringSlice("probe.social_hosts"); len(v) > 0 {
		cfg.Probe.SocialHosts = v
	}
	if v := viper.GetString("probe.homepage"); v != "" {
		cfg.Probe.Homepage = v
	}
	if viper.IsSet("probe.enabled") {
		cfg.Probe.Enabled = viper.GetBool("probe.enabled")
	}
	if v := viper.GetString("store.dir"); v != "" {
		cfg.Store.Dir = v
	}
	if v := viper.GetString("llm.provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.LLM.Model = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if viper.IsSet("llm.geo_probe") {
		cfg.LLM.GeoProbe = viper.GetBool("llm.geo_probe")
	}
	if v := viper.GetDuration("http.timeout"); v > 0 {
		cfg.HTTP.Timeout = v
	}

	cfg.Output.Verbose = verbose
	return cfg
}

// applyLLMEnv resolves provider credentials from the environment, the way
// API keys should travel.
func applyLLMEnv(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// entityTypeHelp documents the shared --entity-type flag.
const entityTypeHelp = "entity type: individual, company, or public-figure"

// commandTimeout is the default per-command deadline.
const commandTimeout = 2 * time.Minute
