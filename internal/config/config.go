package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix                  = "WORKLANE"
	defaultAPIBaseURL          = "http://localhost:8080"
	defaultWSURL               = "ws://localhost:8080"
	defaultLogLevel            = "info"
	defaultSandboxHTTPAddress  = "127.0.0.1:8080"
	defaultSandboxDatabasePath = "worklane-sandbox.db"
	defaultSandboxUploadDir    = "worklane-uploads"
)

// AppConfig captures runtime configuration for the Worklane client.
type AppConfig struct {
	APIBaseURL   string
	WSURL        string
	LogLevel     string
	LogFile      string
	SessionToken string

	SandboxHTTPAddress   string
	SandboxDatabasePath  string
	SandboxUploadDir     string
	SandboxSigningSecret string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("api.base_url", defaultAPIBaseURL)
	configViper.SetDefault("ws.url", defaultWSURL)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.file", "")
	configViper.SetDefault("session.token", "")
	configViper.SetDefault("sandbox.http_address", defaultSandboxHTTPAddress)
	configViper.SetDefault("sandbox.database_path", defaultSandboxDatabasePath)
	configViper.SetDefault("sandbox.upload_dir", defaultSandboxUploadDir)
	configViper.SetDefault("sandbox.signing_secret", "")
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		APIBaseURL:           configViper.GetString("api.base_url"),
		WSURL:                configViper.GetString("ws.url"),
		LogLevel:             configViper.GetString("log.level"),
		LogFile:              configViper.GetString("log.file"),
		SessionToken:         configViper.GetString("session.token"),
		SandboxHTTPAddress:   configViper.GetString("sandbox.http_address"),
		SandboxDatabasePath:  configViper.GetString("sandbox.database_path"),
		SandboxUploadDir:     configViper.GetString("sandbox.upload_dir"),
		SandboxSigningSecret: configViper.GetString("sandbox.signing_secret"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if strings.TrimSpace(c.WSURL) == "" {
		return fmt.Errorf("ws.url is required")
	}
	return nil
}
