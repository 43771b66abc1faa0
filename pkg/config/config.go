package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch"`
	Profiles   ProfilesConfig   `mapstructure:"profiles"`
	Database   DatabaseConfig   `mapstructure:"database"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type OpenRouterConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	MaxTokens      int    `mapstructure:"max_tokens"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type DispatchConfig struct {
	Prefix        string   `mapstructure:"prefix"`
	CooldownMs    int      `mapstructure:"cooldown_ms"`
	AmbientChance float64  `mapstructure:"ambient_chance"`
	MessageLimit  int      `mapstructure:"message_limit"`
	ChunkDelayMs  int      `mapstructure:"chunk_delay_ms"`
	MaxHistory    int      `mapstructure:"max_history"`
	BannedWords   []string `mapstructure:"banned_words"`
	AdminRoles    []string `mapstructure:"admin_roles"`
}

type ProfilesConfig struct {
	Path                string `mapstructure:"path"`
	SaveIntervalMinutes int    `mapstructure:"save_interval_minutes"`
}

type DatabaseConfig struct {
	UsePostgres bool   `mapstructure:"use_postgres"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		UsePostgres: true,
		Host:        u.Hostname(),
		Port:        port,
		User:        u.User.Username(),
		Password:    password,
		DBName:      dbName,
		SSLMode:     "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.max_tokens", 800)
	v.SetDefault("openrouter.timeout_seconds", 60)
	v.SetDefault("dispatch.prefix", "!")
	v.SetDefault("dispatch.cooldown_ms", 3000)
	v.SetDefault("dispatch.ambient_chance", 0.01)
	v.SetDefault("dispatch.message_limit", 2000)
	v.SetDefault("dispatch.chunk_delay_ms", 1000)
	v.SetDefault("dispatch.max_history", 20)
	v.SetDefault("dispatch.banned_words", []string{"spam", "advertisement"})
	v.SetDefault("dispatch.admin_roles", []string{"Admin", "Moderator"})
	v.SetDefault("profiles.path", "userdata.json")
	v.SetDefault("profiles.save_interval_minutes", 5)
	v.SetDefault("database.use_postgres", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENROUTER_API_KEY"); apiKey != "" {
		config.OpenRouter.APIKey = apiKey
	}

	return &config, nil
}
