package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "interview-coach"
)

type Config struct {
	AI             *AIConfig             `mapstructure:"ai"`
	JobDescription *JobDescriptionConfig `mapstructure:"job-description"`
	Cache          *CacheConfig          `mapstructure:"cache"`
	Server         *ServerConfig         `mapstructure:"server"`
}

type AIConfig struct {
	Provider     string         `mapstructure:"provider"`
	APIKey       string         `mapstructure:"api-key"`
	APIKeyFile   string         `mapstructure:"api-key-file"`
	BaseURL      string         `mapstructure:"base-url"`
	Timeout      time.Duration  `mapstructure:"timeout"`
	MaxLogLength int            `mapstructure:"max-log-length"`
	Interviewer  *PersonaConfig `mapstructure:"interviewer"`
	Reviewer     *PersonaConfig `mapstructure:"reviewer"`
}

type PersonaConfig struct {
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max-tokens"`
}

type JobDescriptionConfig struct {
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	// Backend is one of memory, lru or redis.
	Backend  string       `mapstructure:"backend"`
	Capacity int          `mapstructure:"capacity"`
	Redis    *RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Addr          string `mapstructure:"addr"`
	MaxUploadSize int64  `mapstructure:"max-upload-size"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-coach runs mock job interviews against your resume and a job description and grades your answers",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.api-key", "INTERVIEW_COACH_API_KEY", "KEY"); err != nil {
		log.Fatalf("binding api key environment variables: %v", err)
	}
	if err := viper.BindEnv("ai.api-key-file", "INTERVIEW_COACH_API_KEY_FILE"); err != nil {
		log.Fatalf("binding INTERVIEW_COACH_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("ai.provider", providerOpenAI)
	viper.SetDefault("ai.max-log-length", 200)
	viper.SetDefault("cache.backend", cacheMemory)
	viper.SetDefault("cache.capacity", 128)
	viper.SetDefault("server.addr", ":8080")

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-coach.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The credential may live in a local .env file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly requested config must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
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
