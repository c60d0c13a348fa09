package configuration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"linkedin-publisher/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App      App      `mapstructure:"app"`
	LinkedIn LinkedIn `mapstructure:"linkedin"`
	Database Database `mapstructure:"database"`
	Logger   Logger   `mapstructure:"logger"`
}

// App configures the local bridge API started by `serve`.
type App struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	SecretKey string `mapstructure:"secretKey"`
	// AllowOrigins lists browser origins allowed to call the bridge.
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type LinkedIn struct {
	ClientID               string   `mapstructure:"clientId"`
	ClientSecret           string   `mapstructure:"clientSecret"`
	CallbackPort           int      `mapstructure:"callbackPort"`
	CallbackTimeoutSeconds int      `mapstructure:"callbackTimeoutSeconds"`
	RequestTimeoutSeconds  int      `mapstructure:"requestTimeoutSeconds"`
	AuthURL                string   `mapstructure:"authURL"`
	TokenURL               string   `mapstructure:"tokenURL"`
	UserInfoURL            string   `mapstructure:"userInfoURL"`
	APIBaseURL             string   `mapstructure:"apiBaseURL"`
	APIVersion             string   `mapstructure:"apiVersion"`
	Scopes                 []string `mapstructure:"scopes"`
	TruncationThreshold    int      `mapstructure:"truncationThreshold"`
	CredentialsPath        string   `mapstructure:"credentialsPath"`
}

type Database struct {
	Psql Db `mapstructure:"psql"`
}

type Db struct {
	Name     string `mapstructure:"name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslMode"`
}

// Enabled reports whether enough is configured to open a connection.
func (d Db) Enabled() bool {
	return d.Host != "" && d.Name != ""
}

type Logger struct {
	Format string `mapstructure:"format"`
}

// C holds the configuration loaded for this invocation.
var C Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.host", "127.0.0.1")
	v.SetDefault("app.port", 10001)
	v.SetDefault("app.allowOrigins", []string{"http://localhost:4200"})
	v.SetDefault("linkedin.callbackPort", 9876)
	v.SetDefault("linkedin.callbackTimeoutSeconds", 120)
	v.SetDefault("linkedin.requestTimeoutSeconds", 30)
	v.SetDefault("linkedin.authURL", "https://www.linkedin.com/oauth/v2/authorization")
	v.SetDefault("linkedin.tokenURL", "https://www.linkedin.com/oauth/v2/accessToken")
	v.SetDefault("linkedin.userInfoURL", "https://api.linkedin.com/v2/userinfo")
	v.SetDefault("linkedin.apiBaseURL", "https://api.linkedin.com/rest")
	v.SetDefault("linkedin.apiVersion", "202601")
	v.SetDefault("linkedin.scopes", []string{"openid", "profile", "w_member_social"})
	v.SetDefault("linkedin.truncationThreshold", 3000)
	v.SetDefault("database.psql.port", "5432")
	v.SetDefault("database.psql.sslMode", "disable")
	v.SetDefault("logger.format", "json")
}

// LoadConfig reads config.json (or config-$ENV.json) from the working directory
// and the user config directory, then applies environment overrides.
func LoadConfig() (Config, error) {
	return load(getConfig(), ".", userConfigDir())
}

func load(name string, paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(name)
	v.SetConfigType("json")
	for _, p := range paths {
		if p != "" {
			v.AddConfigPath(p)
		}
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		logger.GetLogger().WithField("config", name).Debug("Config file not found, using defaults and environment")
	} else {
		logger.GetLogger().WithField("config", v.ConfigFileUsed()).Debug("Config file loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	initDatabase(&cfg)
	initApp(&cfg)
	C = cfg
	return cfg, nil
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func userConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "linkedin-publisher")
}

func initDatabase(c *Config) {
	c.Database.Psql.Name = getConfigValue(c.Database.Psql.Name, "DB_NAME", "")
	c.Database.Psql.Host = getConfigValue(c.Database.Psql.Host, "DB_HOST", "")
	c.Database.Psql.User = getConfigValue(c.Database.Psql.User, "DB_USER", "")
	c.Database.Psql.Password = getConfigValue(c.Database.Psql.Password, "DB_PASSWORD", "")
	c.Database.Psql.Port = getConfigValue(c.Database.Psql.Port, "DB_PORT", "5432")
}

func initApp(c *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.App.Port = p
		}
	}
	if c.App.Port == 0 {
		c.App.Port = 10001
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logger.Format = strings.ToLower(v)
	}
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	// Otherwise use config value if set and not a placeholder
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a fallback
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
