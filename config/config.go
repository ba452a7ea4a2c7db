// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// DSN renders the pgx connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode, c.MaxOpenConns,
	)
}

type AuthConfig struct {
	URL       string
	APIKey    string
	CacheSize int
	CacheTTL  time.Duration
	Timeout   time.Duration
}

type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

type ChatConfig struct {
	HistoryFetchLimit int
	HistorySendLimit  int
	PersistAttempts   int
	PersistBackoff    time.Duration
	PersistTimeout    time.Duration
}

type Config struct {
	Telegram struct {
		Token string
	}
	DB       DBConfig
	Auth     AuthConfig
	Provider ProviderConfig
	Chat     ChatConfig
	Server   struct {
		Port string
	}
	Log struct {
		Development bool
	}
	ShutdownTimeout time.Duration
}

// Load reads config.yaml from the usual search paths, layering environment
// variables on top. A missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given file when path is set.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("../config")
		v.AddConfigPath("$HOME/.futureself")
	}

	setDefaults(v)

	// DB.HOST -> DB_HOST, PROVIDER.API_KEY style keys map onto env names.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Process any ${ENV_VAR} syntax in the config values
	for _, key := range v.AllKeys() {
		value := v.GetString(key)
		if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
			envVar := strings.TrimPrefix(strings.TrimSuffix(value, "}"), "${")
			if envValue := os.Getenv(envVar); envValue != "" {
				v.Set(key, envValue)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ShutdownTimeout", 10*time.Second)

	v.SetDefault("Server.Port", "8080")

	v.SetDefault("DB.Host", "localhost")
	v.SetDefault("DB.Port", "5432")
	v.SetDefault("DB.User", "postgres")
	v.SetDefault("DB.Password", "postgres")
	v.SetDefault("DB.DBName", "futureself")
	v.SetDefault("DB.SSLMode", "disable")
	v.SetDefault("DB.MaxOpenConns", 20)
	v.SetDefault("DB.MaxIdleConns", 10)
	v.SetDefault("DB.ConnLifetime", 5*time.Minute)

	v.SetDefault("Auth.CacheSize", 1024)
	v.SetDefault("Auth.CacheTTL", time.Minute)
	v.SetDefault("Auth.Timeout", 10*time.Second)

	v.SetDefault("Provider.BaseURL", "https://api.deepseek.com")
	v.SetDefault("Provider.Model", "deepseek-chat")
	v.SetDefault("Provider.Temperature", 0.7)
	v.SetDefault("Provider.MaxTokens", 500)
	v.SetDefault("Provider.Timeout", 60*time.Second)

	v.SetDefault("Chat.HistoryFetchLimit", 20)
	v.SetDefault("Chat.HistorySendLimit", 10)
	v.SetDefault("Chat.PersistAttempts", 3)
	v.SetDefault("Chat.PersistBackoff", 200*time.Millisecond)
	v.SetDefault("Chat.PersistTimeout", 10*time.Second)
}

// bindEnv keeps the flat variable names used by the deployment (and by the
// original edge function) working alongside the nested ones.
func bindEnv(v *viper.Viper) {
	aliases := map[string][]string{
		"Telegram.Token":  {"TELEGRAM_TOKEN"},
		"DB.Host":         {"DB_HOST"},
		"DB.Port":         {"DB_PORT"},
		"DB.User":         {"DB_USER"},
		"DB.Password":     {"DB_PASSWORD"},
		"DB.DBName":       {"DB_NAME"},
		"DB.SSLMode":      {"DB_SSL_MODE"},
		"Auth.URL":        {"AUTH_URL", "SUPABASE_URL"},
		"Auth.APIKey":     {"AUTH_API_KEY", "SUPABASE_SERVICE_ROLE_KEY"},
		"Provider.APIKey": {"PROVIDER_API_KEY", "DEEPSEEK_API_KEY"},
		"Provider.Model":  {"PROVIDER_MODEL"},
		"Server.Port":     {"SERVER_PORT", "PORT"},
	}
	for key, envs := range aliases {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// ValidateServe checks the keys the HTTP server and Telegram channel need.
func (c *Config) ValidateServe() error {
	var missing []string
	if c.Auth.URL == "" {
		missing = append(missing, "Auth.URL")
	}
	if c.Provider.APIKey == "" {
		missing = append(missing, "Provider.APIKey")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateTelegram additionally requires the bot token.
func (c *Config) ValidateTelegram() error {
	if err := c.ValidateServe(); err != nil {
		return err
	}
	if c.Telegram.Token == "" {
		return errors.New("missing required configuration: Telegram.Token")
	}
	return nil
}
