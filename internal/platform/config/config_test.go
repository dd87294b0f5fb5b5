package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Addr() != ":8080" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.WordPress.APIURL != defaultWordPressAPIURL {
		t.Errorf("expected default endpoint, got %s", cfg.WordPress.APIURL)
	}
	if cfg.WordPress.PostLimit != 50 {
		t.Errorf("expected default post limit 50, got %d", cfg.WordPress.PostLimit)
	}
	if cfg.Pages.Revalidate != 60*time.Second {
		t.Errorf("expected 60s revalidate, got %s", cfg.Pages.Revalidate)
	}
	if !cfg.Pages.Prerender {
		t.Errorf("expected prerender enabled by default")
	}
	if cfg.Pages.SiteName != "Blog" {
		t.Errorf("unexpected site name %q", cfg.Pages.SiteName)
	}
	if cfg.Pages.Language != "en" {
		t.Errorf("unexpected language %q", cfg.Pages.Language)
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"PORT":                      "9090",
		"WORDPRESS_API_URL":         "https://cms.example.com/graphql",
		"BLOG_WORDPRESS_TIMEOUT":    "3s",
		"BLOG_WORDPRESS_AUTH_TOKEN": " token ",
		"BLOG_WORDPRESS_POST_LIMIT": "12",
		"BLOG_PAGES_REVALIDATE":     "120",
		"BLOG_PAGES_PRERENDER":      "false",
		"BLOG_PAGES_SITE_NAME":      "Field Notes",
		"BLOG_PAGES_LANGUAGE":       "ja_JP",
	}

	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected PORT fallback 9090, got %s", cfg.Server.Port)
	}
	if cfg.WordPress.APIURL != "https://cms.example.com/graphql" {
		t.Errorf("unexpected endpoint %s", cfg.WordPress.APIURL)
	}
	if cfg.WordPress.Timeout != 3*time.Second {
		t.Errorf("unexpected timeout %s", cfg.WordPress.Timeout)
	}
	if cfg.WordPress.AuthToken != "token" {
		t.Errorf("expected trimmed token, got %q", cfg.WordPress.AuthToken)
	}
	if cfg.WordPress.PostLimit != 12 {
		t.Errorf("unexpected post limit %d", cfg.WordPress.PostLimit)
	}
	if cfg.Pages.Revalidate != 2*time.Minute {
		t.Errorf("expected bare seconds to parse, got %s", cfg.Pages.Revalidate)
	}
	if cfg.Pages.Prerender {
		t.Errorf("expected prerender disabled")
	}
	if cfg.Pages.SiteName != "Field Notes" {
		t.Errorf("unexpected site name %q", cfg.Pages.SiteName)
	}
	if cfg.Pages.Language != "ja-JP" {
		t.Errorf("expected canonical language tag, got %q", cfg.Pages.Language)
	}
}

func TestLoadPrefersPrefixedKeys(t *testing.T) {
	env := map[string]string{
		"PORT":                   "9090",
		"BLOG_SERVER_PORT":       "7070",
		"WORDPRESS_API_URL":      "https://legacy.example.com/graphql",
		"BLOG_WORDPRESS_API_URL": "https://cms.example.com/graphql",
	}
	cfg, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected BLOG_SERVER_PORT to win, got %s", cfg.Server.Port)
	}
	if cfg.WordPress.APIURL != "https://cms.example.com/graphql" {
		t.Errorf("expected BLOG_WORDPRESS_API_URL to win, got %s", cfg.WordPress.APIURL)
	}
}

func TestLoadFromDotEnvAndYAML(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("# comment\nexport BLOG_WORDPRESS_POST_LIMIT=\"7\"\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	yamlPath := filepath.Join(dir, "blog.yaml")
	yamlBody := `
server:
  port: "6060"
wordpress:
  api_url: https://yaml.example.com/graphql
  post_limit: 20
pages:
  revalidate: 30s
  prerender: false
`
	if err := os.WriteFile(yamlPath, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write yaml file: %v", err)
	}

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(envPath), WithConfigFile(yamlPath))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "6060" {
		t.Errorf("expected yaml port, got %s", cfg.Server.Port)
	}
	if cfg.WordPress.APIURL != "https://yaml.example.com/graphql" {
		t.Errorf("expected yaml endpoint, got %s", cfg.WordPress.APIURL)
	}
	if cfg.WordPress.PostLimit != 7 {
		t.Errorf("expected .env to override yaml post limit, got %d", cfg.WordPress.PostLimit)
	}
	if cfg.Pages.Revalidate != 30*time.Second {
		t.Errorf("unexpected revalidate %s", cfg.Pages.Revalidate)
	}
	if cfg.Pages.Prerender {
		t.Errorf("expected yaml to disable prerender")
	}
}

func TestLoadConfigFileFromEnv(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "blog.yaml")
	if err := os.WriteFile(yamlPath, []byte("pages:\n  site_name: From File\n"), 0o600); err != nil {
		t.Fatalf("write yaml file: %v", err)
	}
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{"BLOG_CONFIG_FILE": yamlPath}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Pages.SiteName != "From File" {
		t.Errorf("expected site name from file, got %q", cfg.Pages.SiteName)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(""), WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadValidation(t *testing.T) {
	env := map[string]string{
		"BLOG_WORDPRESS_API_URL":    "ftp://cms.example.com",
		"BLOG_WORDPRESS_POST_LIMIT": "-1",
		"BLOG_PAGES_LANGUAGE":       "not a tag!",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	fields := vErr.Fields()
	if len(fields) != 3 || fields[0] != "WordPress.APIURL" || fields[1] != "WordPress.PostLimit" || fields[2] != "Pages.Language" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	env := map[string]string{
		"BLOG_PAGES_REVALIDATE":     "abc",
		"BLOG_WORDPRESS_POST_LIMIT": "ten",
		"BLOG_PAGES_PRERENDER":      "maybe",
		"BLOG_SERVER_READ_TIMEOUT":  "soon",
	}
	_, err := Load(context.Background(), WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{"Server.ReadTimeout", "WordPress.PostLimit", "Pages.Revalidate", "Pages.Prerender"}
	fields := vErr.Fields()
	if len(fields) != len(want) {
		t.Fatalf("unexpected fields: %v", fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("unexpected fields: %v", fields)
		}
	}
}

func TestLoadEnvironmentPortBeatsConfigFile(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "blog.yaml")
	if err := os.WriteFile(yamlPath, []byte("server:\n  port: \"6060\"\n"), 0o600); err != nil {
		t.Fatalf("write yaml file: %v", err)
	}
	cfg, err := Load(context.Background(), WithEnvMap(map[string]string{"PORT": "9090"}), WithoutSystemEnv(), WithEnvFile(""), WithConfigFile(yamlPath))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected PORT from the environment to beat the file, got %s", cfg.Server.Port)
	}
}
