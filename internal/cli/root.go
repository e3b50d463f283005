package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/factcheck/internal/model"
)

const version = "factcheck v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "factcheck",
	Short: "factcheck - evidence-backed verification of historical claims",
	Long: `factcheck verifies natural-language historical claims.

Each query is routed (fact check, clarify, or out of scope), evidence is
retrieved from search, every sub-claim is judged against the most credible
sources, and a cited answer is produced with a confidence score.

Answers cite only retrieved evidence. When evidence is missing, conflicting,
or cannot be cited safely, factcheck says so instead of guessing.`,
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
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.factcheck/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("llm-provider", "", "judgment model provider (openai, ollama)")
	flags.String("llm-model", "", "judgment model name")
	flags.String("search-provider", "", "search provider (google, duckduckgo)")
	flags.String("checkpoint", "", "checkpoint backend (memory, badger, redis, none)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", flags.Lookup("llm-provider"))
	_ = viper.BindPFlag("llm.model", flags.Lookup("llm-model"))
	_ = viper.BindPFlag("search.provider", flags.Lookup("search-provider"))
	_ = viper.BindPFlag("checkpoint.backend", flags.Lookup("checkpoint"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// configDir returns ~/.factcheck
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".factcheck"), nil
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering config defaults: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// FACTCHECK_LLM_PROVIDER overrides llm.provider, and so on
	viper.SetEnvPrefix("FACTCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so that
// environment overrides reach nested fields on Unmarshal
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaults(v, "", tree)
	return nil
}

func setDefaults(v *viper.Viper, prefix string, tree map[string]any) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]any); ok && len(sub) > 0 {
			setDefaults(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// loadConfig resolves flags > env > file > defaults into a Config and
// applies the well-known provider environment variables
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyProviderEnv(cfg, os.Getenv)

	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		if dir, err := configDir(); err == nil {
			cfg.Cache.Dir = filepath.Join(dir, "cache")
		}
	}
	if cfg.Checkpoint.Path == "" {
		if dir, err := configDir(); err == nil {
			cfg.Checkpoint.Path = filepath.Join(dir, "checkpoints")
		}
	}
	if verbose && strings.EqualFold(cfg.Log.Level, "info") {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// applyProviderEnv fills API credentials from the conventional variables
// when the config leaves them empty
func applyProviderEnv(cfg *model.Config, getenv func(string) string) {
	if cfg.LLM.APIKey == "" && strings.EqualFold(cfg.LLM.Provider, "openai") {
		cfg.LLM.APIKey = getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.BaseURL == "" && strings.EqualFold(cfg.LLM.Provider, "ollama") {
		cfg.LLM.BaseURL = getenv("OLLAMA_BASE_URL")
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = getenv("GOOGLE_API_KEY")
	}
	if cfg.Search.EngineID == "" {
		cfg.Search.EngineID = getenv("GOOGLE_CSE_ID")
	}
}
