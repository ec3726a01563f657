package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env                string        `mapstructure:"env"`
	Port               string        `mapstructure:"port"`
	FrontendURL        string        `mapstructure:"frontendUrl"`
	FrontendURL2       string        `mapstructure:"frontendUrl2"`
	Store              StoreConfig   `mapstructure:"store"`
	Sanity             SanityConfig  `mapstructure:"sanity"`
	Revalidate         time.Duration `mapstructure:"revalidate"`
	Mail               MailConfig    `mapstructure:"mail"`
	Studio             StudioConfig  `mapstructure:"studio"`
	JWTSecret          string        `mapstructure:"jwtSecret"`
	RevalidationSecret string        `mapstructure:"revalidationSecret"`
	RevalidationURL    string        `mapstructure:"revalidationUrl"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlitePath"`
}

type SanityConfig struct {
	ProjectID  string `mapstructure:"projectId"`
	Dataset    string `mapstructure:"dataset"`
	APIVersion string `mapstructure:"apiVersion"`
	Token      string `mapstructure:"token"`
}

type MailConfig struct {
	ResendAPIKey      string `mapstructure:"resendApiKey"`
	From              string `mapstructure:"from"`
	FallbackRecipient string `mapstructure:"fallbackRecipient"`
}

type StudioConfig struct {
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
	Dir  string `mapstructure:"dir"`
}

// env lists the environment variables read for each key, first match wins.
var env = map[string][]string{
	"env":                    {"APP_ENV", "NODE_ENV"},
	"port":                   {"PORT"},
	"frontendUrl":            {"FRONTEND_URL"},
	"frontendUrl2":           {"FRONTEND_URL2"},
	"store.driver":           {"STORE_DRIVER"},
	"store.sqlitePath":       {"SQLITE_PATH"},
	"sanity.projectId":       {"SANITY_PROJECT_ID", "NEXT_PUBLIC_SANITY_PROJECT_ID"},
	"sanity.dataset":         {"SANITY_DATASET", "NEXT_PUBLIC_SANITY_DATASET"},
	"sanity.apiVersion":      {"SANITY_API_VERSION"},
	"sanity.token":           {"SANITY_API_TOKEN"},
	"revalidate":             {"CONTENT_REVALIDATE"},
	"mail.resendApiKey":      {"RESEND_API_KEY"},
	"mail.from":              {"CONTACT_FROM"},
	"mail.fallbackRecipient": {"CONTACT_FALLBACK_EMAIL"},
	"studio.user":            {"STUDIO_AUTH_USER"},
	"studio.pass":            {"STUDIO_AUTH_PASS"},
	"studio.dir":             {"STUDIO_DIR"},
	"jwtSecret":              {"JWT_SECRET"},
	"revalidationSecret":     {"REVALIDATION_SECRET"},
	"revalidationUrl":        {"NEXT_REVALIDATION_URL"},
}

// Load reads defaults, then the config file, then the environment. An
// explicit file that does not exist is an error; a missing ./config.yaml
// is not.
func Load(file string) (*Config, error) {
	v := viper.New()

	v.SetDefault("env", "production")
	v.SetDefault("port", "8080")
	v.SetDefault("frontendUrl", "http://localhost:3000")
	v.SetDefault("store.driver", "sanity")
	v.SetDefault("store.sqlitePath", "portfolio.db")
	v.SetDefault("sanity.apiVersion", "2024-01-01")
	v.SetDefault("revalidate", 60*time.Second)
	v.SetDefault("mail.from", "Portfolio Contact <onboarding@resend.dev>")
	v.SetDefault("mail.fallbackRecipient", "syifarpratama@gmail.com")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	for key, names := range env {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		found = false
	}

	// A bare number of seconds is accepted alongside durations like "90s".
	if secs, err := strconv.Atoi(strings.TrimSpace(v.GetString("revalidate"))); err == nil {
		v.Set("revalidate", time.Duration(secs)*time.Second)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if found {
		cfg.File = v.ConfigFileUsed()
	}
	return &cfg, nil
}

// IsDevelopment reports whether the process runs in local development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// FrontendOrigins are the origins allowed by CORS.
func (c *Config) FrontendOrigins() []string {
	var out []string
	for _, o := range []string{c.FrontendURL, c.FrontendURL2} {
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}

// StudioAuthConfigured reports whether studio credentials are set.
func (c *Config) StudioAuthConfigured() bool {
	return c.Studio.User != "" && c.Studio.Pass != ""
}
