package util

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/proseplay/proseplay/annotation"
	"github.com/spf13/viper"
)

type Config struct {
	Environment       string        `mapstructure:"ENVIRONMENT"`
	HTTPServerAddress string        `mapstructure:"HTTP_SERVER_ADDRESS"`
	RedisAddress      string        `mapstructure:"REDIS_ADDRESS"`
	SessionTTL        time.Duration `mapstructure:"SESSION_TTL"`
	AllowedOrigins    []string      `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel          string        `mapstructure:"LOG_LEVEL"`
	LogFile           string        `mapstructure:"LOG_FILE"`
	MaxTextLength     int           `mapstructure:"MAX_TEXT_LENGTH"`
	DefaultTransition time.Duration `mapstructure:"DEFAULT_TRANSITION"`
	MaxWarnings       int           `mapstructure:"MAX_WARNINGS"`
}

// Defaults are applied before the config file and the environment are read.
var defaults = map[string]any{
	"ENVIRONMENT":         "development",
	"HTTP_SERVER_ADDRESS": "0.0.0.0:8080",
	"REDIS_ADDRESS":       "localhost:6379",
	"SESSION_TTL":         "24h",
	"ALLOWED_ORIGINS":     "",
	"LOG_LEVEL":           "info",
	"LOG_FILE":            "",
	"MAX_TEXT_LENGTH":     20000,
	"DEFAULT_TRANSITION":  "300ms",
	"MAX_WARNINGS":        annotation.DefaultMaxWarnings,
}

// LoadConfig reads app.env from the path, environment variables take precedence.
// A missing app.env is not an error, the defaults and the environment are used.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	// env files carry lists as a comma separated string
	config.AllowedOrigins = splitList(config.AllowedOrigins)

	return
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ExtractHostPort parses the HTTP server address and returns the host and port components.
// If no port is specified in the URL, port will be an empty string.
func (config *Config) ExtractHostPort() (host string, port string, err error) {
	addr := config.HTTPServerAddress
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	urlStr, err := url.Parse(addr)
	if err != nil {
		err = fmt.Errorf("error parsing http server url: %w", err)
		return
	}

	if urlStr.Hostname() == "" {
		err = fmt.Errorf("http server url %q has no host", config.HTTPServerAddress)
		return
	}

	host, port, err = net.SplitHostPort(urlStr.Host)
	if err != nil {
		// If there's no port, SplitHostPort returns an error,
		// in which case the host itself is the hostname.
		host = urlStr.Hostname()
		err = nil
	}

	return
}

// ListenAddress returns the address for http.Server, without the scheme.
func (config *Config) ListenAddress() (string, error) {
	host, port, err := config.ExtractHostPort()
	if err != nil {
		return "", err
	}

	if port == "" {
		port = "80"
	}

	return net.JoinHostPort(host, port), nil
}
