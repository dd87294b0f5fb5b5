package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultWordPressAPIURL  = "http://localhost/testing/graphql"
	defaultWordPressTimeout = 10 * time.Second
	defaultPostLimit        = 50
	defaultRevalidate       = 60 * time.Second
	defaultSiteName         = "Blog"
	defaultLanguage         = "en"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	WordPress WordPressConfig
	Pages     PagesConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// WordPressConfig points the content fetcher at the GraphQL endpoint.
type WordPressConfig struct {
	APIURL    string
	Timeout   time.Duration
	AuthToken string
	PostLimit int
}

// PagesConfig controls rendered page output.
type PagesConfig struct {
	Revalidate time.Duration
	Prerender  bool
	SiteName   string
	Language   string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	configFile   string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. An empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithConfigFile loads a YAML file whose values sit below every environment source.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) {
		o.configFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// fileConfig mirrors the YAML layout accepted by WithConfigFile.
type fileConfig struct {
	Server struct {
		Port         string `yaml:"port"`
		ReadTimeout  string `yaml:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout"`
		IdleTimeout  string `yaml:"idle_timeout"`
	} `yaml:"server"`
	WordPress struct {
		APIURL    string `yaml:"api_url"`
		Timeout   string `yaml:"timeout"`
		AuthToken string `yaml:"auth_token"`
		PostLimit int    `yaml:"post_limit"`
	} `yaml:"wordpress"`
	Pages struct {
		Revalidate string `yaml:"revalidate"`
		Prerender  *bool  `yaml:"prerender"`
		SiteName   string `yaml:"site_name"`
		Language   string `yaml:"language"`
	} `yaml:"pages"`
}

// values flattens the file into the same keys the environment uses.
func (f fileConfig) values() map[string]string {
	out := map[string]string{
		"BLOG_SERVER_PORT":          f.Server.Port,
		"BLOG_SERVER_READ_TIMEOUT":  f.Server.ReadTimeout,
		"BLOG_SERVER_WRITE_TIMEOUT": f.Server.WriteTimeout,
		"BLOG_SERVER_IDLE_TIMEOUT":  f.Server.IdleTimeout,
		"BLOG_WORDPRESS_API_URL":    f.WordPress.APIURL,
		"BLOG_WORDPRESS_TIMEOUT":    f.WordPress.Timeout,
		"BLOG_WORDPRESS_AUTH_TOKEN": f.WordPress.AuthToken,
		"BLOG_PAGES_REVALIDATE":     f.Pages.Revalidate,
		"BLOG_PAGES_SITE_NAME":      f.Pages.SiteName,
		"BLOG_PAGES_LANGUAGE":       f.Pages.Language,
	}
	if f.WordPress.PostLimit != 0 {
		out["BLOG_WORDPRESS_POST_LIMIT"] = strconv.Itoa(f.WordPress.PostLimit)
	}
	if f.Pages.Prerender != nil {
		out["BLOG_PAGES_PRERENDER"] = strconv.FormatBool(*f.Pages.Prerender)
	}
	for key, value := range out {
		if strings.TrimSpace(value) == "" {
			delete(out, key)
		}
	}
	return out
}

// Load assembles the application configuration by combining defaults, an optional YAML file,
// .env overrides, environment variables and explicit overrides, in increasing precedence.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	envLookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	configFile := options.configFile
	if configFile == "" {
		configFile, _ = envLookup("BLOG_CONFIG_FILE")
	}
	fileValues, err := loadConfigFile(configFile)
	if err != nil {
		return Config{}, err
	}

	fileLookup := func(key string) (string, bool) {
		value, ok := fileValues[key]
		return value, ok
	}
	// Every environment layer outranks the file, including for aliased keys such as PORT.
	v := &valueReader{sources: []lookupFunc{envLookup, fileLookup}}

	cfg := Config{
		Server: ServerConfig{
			Port:         v.stringOr(defaultPort, "BLOG_SERVER_PORT", "PORT"),
			ReadTimeout:  v.durationOr("Server.ReadTimeout", "BLOG_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: v.durationOr("Server.WriteTimeout", "BLOG_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  v.durationOr("Server.IdleTimeout", "BLOG_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		WordPress: WordPressConfig{
			APIURL:    strings.TrimSpace(v.stringOr(defaultWordPressAPIURL, "BLOG_WORDPRESS_API_URL", "WORDPRESS_API_URL")),
			Timeout:   v.durationOr("WordPress.Timeout", "BLOG_WORDPRESS_TIMEOUT", defaultWordPressTimeout),
			AuthToken: strings.TrimSpace(v.stringOr("", "BLOG_WORDPRESS_AUTH_TOKEN")),
			PostLimit: v.intOr("WordPress.PostLimit", "BLOG_WORDPRESS_POST_LIMIT", defaultPostLimit),
		},
		Pages: PagesConfig{
			Revalidate: v.durationOr("Pages.Revalidate", "BLOG_PAGES_REVALIDATE", defaultRevalidate),
			Prerender:  v.boolOr("Pages.Prerender", "BLOG_PAGES_PRERENDER", true),
			SiteName:   v.stringOr(defaultSiteName, "BLOG_PAGES_SITE_NAME"),
			Language:   v.stringOr(defaultLanguage, "BLOG_PAGES_LANGUAGE"),
		},
	}
	if tag, err := canonicaliseLanguageTag(cfg.Pages.Language); err == nil {
		cfg.Pages.Language = tag
	} else {
		cfg.Pages.Language = ""
	}

	if err := validateConfig(cfg, v.invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validateConfig reports malformed fields first, then fields whose values are unusable.
func validateConfig(cfg Config, malformed []string) error {
	missing := append([]string(nil), malformed...)

	if strings.TrimSpace(cfg.Server.Port) == "" {
		missing = append(missing, "Server.Port")
	}
	if u, err := url.Parse(cfg.WordPress.APIURL); err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		missing = append(missing, "WordPress.APIURL")
	}
	if cfg.WordPress.Timeout <= 0 {
		missing = append(missing, "WordPress.Timeout")
	}
	if cfg.WordPress.PostLimit <= 0 {
		missing = append(missing, "WordPress.PostLimit")
	}
	if cfg.Pages.Revalidate <= 0 {
		missing = append(missing, "Pages.Revalidate")
	}
	if cfg.Pages.Language == "" {
		missing = append(missing, "Pages.Language")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: dedupe(missing)}
	}
	return nil
}

// canonicaliseLanguageTag accepts BCP 47 tags, tolerating underscores, and returns the canonical form.
func canonicaliseLanguageTag(tag string) (string, error) {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return "", errors.New("config: empty language tag")
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return "", fmt.Errorf("config: invalid language tag %q: %w", tag, err)
	}
	return parsed.String(), nil
}

func loadConfigFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", path, err)
	}
	return fc.values(), nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

type lookupFunc func(key string) (string, bool)

// valueReader resolves keys across layered sources, highest precedence first, and remembers
// which typed fields held values that did not parse.
type valueReader struct {
	sources []lookupFunc
	invalid []string
}

// raw returns the first non-blank value, trying every key in a source before the next source.
func (v *valueReader) raw(keys ...string) (string, bool) {
	for _, source := range v.sources {
		for _, key := range keys {
			if value, ok := source(key); ok && strings.TrimSpace(value) != "" {
				return strings.TrimSpace(value), true
			}
		}
	}
	return "", false
}

func (v *valueReader) stringOr(fallback string, keys ...string) string {
	if value, ok := v.raw(keys...); ok {
		return value
	}
	return fallback
}

func (v *valueReader) durationOr(field, key string, fallback time.Duration) time.Duration {
	value, ok := v.raw(key)
	if !ok {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare integers are seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	v.invalid = append(v.invalid, field)
	return fallback
}

func (v *valueReader) intOr(field, key string, fallback int) int {
	value, ok := v.raw(key)
	if !ok {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		v.invalid = append(v.invalid, field)
		return fallback
	}
	return i
}

func (v *valueReader) boolOr(field, key string, fallback bool) bool {
	value, ok := v.raw(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		v.invalid = append(v.invalid, field)
		return fallback
	}
	return b
}

func dedupe(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
