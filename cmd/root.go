package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/talentscout/internal/storage"
)

const (
	app = "talentscout"
)

type Config struct {
	AI       *AIConfig       `mapstructure:"ai"`
	Storage  *storage.Config `mapstructure:"storage"`
	Fallback *FallbackConfig `mapstructure:"fallback"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey          string  `mapstructure:"api-key" json:"-"`
	APIKeyFile      string  `mapstructure:"api-key-file"`
	Model           string  `mapstructure:"model"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
	MaxLogLength    int     `mapstructure:"max-log-length"`
}

type FallbackConfig struct {
	BankFile string `mapstructure:"bank-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentscout is an interactive hiring assistant that screens candidates with technical questions",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindEnv("ai.gemini.api-key", "GEMINI_API_KEY")
	bindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE")
	bindEnv("storage.path", "TALENTSCOUT_STORAGE_PATH")

	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.max-output-tokens", 1024)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("storage.driver", storage.DriverJSON)
	viper.SetDefault("storage.path", storage.DefaultPath)
	viper.SetDefault("fallback.bank-file", "")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("storage-path", "s", "", "file (or sqlite database) with screening records")
	rootCmd.PersistentFlags().String("storage-driver", "", "storage driver: json or sqlite")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("storage.path", rootCmd.PersistentFlags().Lookup("storage-path"))
	viper.BindPFlag("storage.driver", rootCmd.PersistentFlags().Lookup("storage-driver"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func initConfig() {
	// Only commands that touch the screening need a config.
	if runCmd.CalledAs() == "" && recordsCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless given explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
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
