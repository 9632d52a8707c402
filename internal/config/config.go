// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset or empty.
const (
	DefaultPort           = "3000"
	DefaultObjectType     = "p243994756_pet"
	DefaultProperties     = "name,species,bio"
	DefaultRichProperties = "bio"
	DefaultAPIBaseURL     = "https://api.hubapi.com"
	DefaultDBPath         = "cobjpanel.db"
)

// Config holds the application configuration loaded from environment variables.
// It is built once at startup and never mutated afterwards.
type Config struct {
	ListenAddr     string
	APIBaseURL     string
	Token          string
	ObjectType     string
	Properties     []string
	RichProperties []string
	DBPath         string
	SecretKey      []byte
}

// HasToken returns true when a bearer token is configured.
func (c *Config) HasToken() bool {
	return c.Token != ""
}

// HasSecretKey returns true when the credential store encryption key is configured.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) > 0
}

// propertyNameRule accepts CRM internal property names, which begin with a
// letter. Form fields outside that shape stay free for the web adapter.
var propertyNameRule = validation.Match(regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)).
	Error("must be property internal names: a letter followed by letters, digits or underscores")

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ListenAddr, validation.Required),
		validation.Field(&c.APIBaseURL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&c.ObjectType, validation.Required),
		validation.Field(&c.Properties, validation.Each(propertyNameRule)),
		validation.Field(&c.RichProperties, validation.Each(propertyNameRule)),
		validation.Field(&c.SecretKey, validation.Length(32, 32).Error("must decode to exactly 32 bytes")),
	)
}

// LoadDotEnv reads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Variables that are already set win.
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// HUBSPOT_ACCESS_TOKEN is optional; without it the app starts and every API call
// fails with an authentication error that is shown on the page.
// Optional variables with defaults: PORT (3000), COBJPANEL_LISTEN_ADDR (overrides PORT),
// HS_OBJECT (p243994756_pet), HS_PROPERTIES (name,species,bio), HS_RICH_PROPERTIES (bio),
// HUBSPOT_API_BASE_URL (https://api.hubapi.com), COBJPANEL_DB_PATH (cobjpanel.db),
// COBJPANEL_SECRET_KEY (unset disables the credential store).
func Load() (*Config, error) {
	port := envOr("PORT", DefaultPort)
	listenAddr := ":" + port
	if v, ok := os.LookupEnv("COBJPANEL_LISTEN_ADDR"); ok && v != "" {
		listenAddr = v
	}

	var secretKey []byte
	if v, ok := os.LookupEnv("COBJPANEL_SECRET_KEY"); ok && v != "" {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("COBJPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		secretKey = decoded
	}

	cfg := &Config{
		ListenAddr:     listenAddr,
		APIBaseURL:     strings.TrimRight(envOr("HUBSPOT_API_BASE_URL", DefaultAPIBaseURL), "/"),
		Token:          os.Getenv("HUBSPOT_ACCESS_TOKEN"),
		ObjectType:     envOr("HS_OBJECT", DefaultObjectType),
		Properties:     SplitList(envOr("HS_PROPERTIES", DefaultProperties)),
		RichProperties: SplitList(envOr("HS_RICH_PROPERTIES", DefaultRichProperties)),
		DBPath:         envOr("COBJPANEL_DB_PATH", DefaultDBPath),
		SecretKey:      secretKey,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// SplitList splits a comma-separated list, trimming whitespace and dropping
// empty entries. Duplicates are kept. The result is never nil.
func SplitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func absoluteURL(value any) error {
	s, _ := value.(string)
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}
